package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sign_in.yaml", signInScript)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sign_in")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sign_in.yaml", signInScript)
	writeFile(t, dir, "wrong_password.yaml", wrongPasswordScript)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_password")
	assert.Contains(t, out, "expected state SignedIn, got SignedOut")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sign_in.yaml", signInScript)
	writeFile(t, dir, "wrong_password.yaml", wrongPasswordScript)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir, "--filter", "sign_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "wrong_password")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\ndescription: x\nsteps: [{send: authn.nope}]\nassertions: [{type: state, state: SignedIn}]\n")

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sign_in.yaml", signInScript)

	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "sign_in.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"event":"srp.finalize"`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ sign_in")

	writeFile(t, dir, "golden/sign_in.golden", "{}\n")
	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sign_in.yaml", signInScript)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "SignedIn", resp.Data.Scenarios[0].Final)
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", signInScript)
	writeFile(t, dir, "nested/b.yml", signInScript)
	writeFile(t, dir, "golden/c.yaml", signInScript)
	writeFile(t, dir, "notes.txt", "x")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "nested", "b.yml")}, files)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
}
