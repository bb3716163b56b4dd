package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const signInScript = `name: sign_in
description: Password sign-in.
users:
  - username: alice
    password: correct-horse
steps:
  - send: authn.configure
    expect: SignedOut
  - send: authn.signInRequested
    args: {method: srp, username: alice, password: correct-horse}
    expect: SignedIn
assertions:
  - type: trace_order
    actions: [ConfigureAuthN, StartSRPAuth, InitiateSRPAuth, VerifyPasswordSRP]
`

const wrongPasswordScript = `name: wrong_password
description: Expects a sign-in that cannot succeed.
users:
  - username: alice
    password: correct-horse
steps:
  - send: authn.configure
  - send: authn.signInRequested
    args: {method: srp, username: alice, password: nope}
    expect: SignedIn
assertions:
  - type: state
    state: SignedIn
`

const restoreScript = `name: restore
description: A stored session is restored on configure.
steps:
  - send: authn.configure
    expect: SignedIn
assertions:
  - type: no_actions
    event: authn.initializedSignedIn
`

const validConfig = `provider:
  region: us-east-1
  user_pool_id: us-east-1_Abc123
  client_id: client-1
store:
  driver: memory
`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
