package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/store"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestGoldenTraces(t *testing.T) {
	for _, name := range []string{"srp_sign_in", "mfa_cancel"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/mfa_retry.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(first.Trace)
	require.NoError(t, err)
	b, err := MarshalTrace(second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectations
description: Every expectation here is false.
users: [{username: alice, password: pw}]
steps:
  - send: authn.configure
    expect: SignedIn
assertions:
  - {type: state, state: SignedIn}
  - {type: trace_contains, event: srp.finalize}
  - {type: no_actions, event: authn.configure}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "SignedOut", result.Final)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "steps[0]: expected state SignedIn, got SignedOut")
	assert.Contains(t, result.Errors[3], "authn.configure to be a no-op")
}

func TestRun_BadArgs(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad_args
description: Unknown event field.
steps:
  - send: authn.signInRequested
    args: {method: srp, user: alice}
assertions:
  - {type: state, state: SignedOut}
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), scenario)
	assert.ErrorContains(t, err, "steps[0]")
	assert.ErrorContains(t, err, "user")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nstepz: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing steps",
			yaml: "name: x\ndescription: y\nassertions: [{type: state, state: SignedIn}]\n",
			want: "steps list is required",
		},
		{
			name: "unknown event",
			yaml: "name: x\ndescription: y\nsteps: [{send: srp.finalize}]\nassertions: [{type: state, state: SignedIn}]\n",
			want: `unknown event "srp.finalize"`,
		},
		{
			name: "two step kinds",
			yaml: "name: x\ndescription: y\nsteps: [{send: authn.configure, advance: 1h}]\nassertions: [{type: state, state: SignedIn}]\n",
			want: "exactly one of",
		},
		{
			name: "bad duration",
			yaml: "name: x\ndescription: y\nsteps: [{advance: soon}]\nassertions: [{type: state, state: SignedIn}]\n",
			want: "advance",
		},
		{
			name: "bad provider",
			yaml: "name: x\ndescription: y\nsteps: [{provider: flaky}]\nassertions: [{type: state, state: SignedIn}]\n",
			want: "provider must be",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: y\nsteps: [{send: authn.configure}]\nassertions: [{type: final_state}]\n",
			want: `unknown assertion type "final_state"`,
		},
		{
			name: "empty trace_contains",
			yaml: "name: x\ndescription: y\nsteps: [{send: authn.configure}]\nassertions: [{type: trace_contains}]\n",
			want: "one of event, action or to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent("authn.signInRequested", map[string]any{
		"method":    "hosted_ui",
		"metadata":  map[string]any{"k": "v"},
		"hosted_ui": map[string]any{"identity_provider": "Google", "scopes": []any{"openid"}},
	})
	require.NoError(t, err)
	req := ev.(authn.SignInRequested).SignIn
	assert.Equal(t, data.MethodHostedUI, req.Method)
	assert.Equal(t, map[string]string{"k": "v"}, req.ClientMetadata)
	assert.Equal(t, data.HostedUIOptions{IdentityProvider: "Google", Scopes: []string{"openid"}}, req.HostedUI)

	ev, err = DecodeEvent("challenge.verifyChallengeAnswer", map[string]any{"answer": "42"})
	require.NoError(t, err)
	assert.Equal(t, challenge.VerifyChallengeAnswer{Answer: "42"}, ev)

	ev, err = DecodeEvent("authn.signOutRequested", map[string]any{"global": true})
	require.NoError(t, err)
	assert.Equal(t, authn.SignOutRequested{SignOut: data.SignOutData{GlobalSignOut: true}}, ev)

	_, err = DecodeEvent("authn.reset", map[string]any{"now": true})
	assert.ErrorContains(t, err, "takes no args")

	_, err = DecodeEvent("authn.bogus", nil)
	assert.ErrorContains(t, err, "unknown event")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := []store.Record{
		{Seq: 1, Event: "a", Actions: []string{"First"}},
		{Seq: 2, Event: "b", Actions: []string{"Second", "Third"}},
	}

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"First", "Third"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"Third", "First"}})
	assert.ErrorContains(t, err, "Third (pos 3) should be before First (pos 1)")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"Missing"}})
	assert.ErrorContains(t, err, "missing action: Missing")
}

func TestAssertNoActions(t *testing.T) {
	trace := []store.Record{
		{Seq: 1, Event: "late", From: "SignedOut", To: "SignedOut", Actions: []string{}},
		{Seq: 2, Event: "busy", From: "SignedIn", To: "SignedIn", Actions: []string{"RefreshSession"}},
	}

	assert.NoError(t, assertNoActions(trace, Assertion{Event: "late"}))
	assert.ErrorContains(t, assertNoActions(trace, Assertion{Event: "busy"}), "RefreshSession")
	assert.ErrorContains(t, assertNoActions(trace, Assertion{Event: "absent"}), "not found in trace")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertState,
		Expected: "SignedIn",
		Actual:   "SignedOut",
		Trace:    []store.Record{{Seq: 7, Event: "authn.cancelSignIn", From: "SigningIn/NotStarted", To: "SignedOut"}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Expected: SignedIn")
	assert.Contains(t, msg, "[7] authn.cancelSignIn: SigningIn/NotStarted -> SignedOut")
}
