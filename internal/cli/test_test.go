package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: worked_example
description: "Worked example at 40% support"
transactions:
  - [1, 2, 3]
  - [1, 2]
  - [1, 3]
  - [2, 3]
  - [1]
min_support: 0.4
expect:
  count: 6
  itemsets:
    - { items: [2, 3], support: 2 }
`

const failingScenario = `name: wrong_count
description: "Expects one itemset too many"
transactions:
  - [1, 2]
min_support: 1
expect:
  count: 4
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario path not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.NotNil(t, resp.Data.Scenarios)
}

func TestTestCommandPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "worked_example.yaml", passingScenario)

	out, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ worked_example")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	scenario := writeFile(t, dir, "worked_example.yaml", passingScenario)

	_, err := execute(t, "test", "--update", scenario)
	require.NoError(t, err)

	golden, err := os.ReadFile(goldenFilePath(scenario))
	require.NoError(t, err)
	assert.Equal(t, ""+
		`{"itemSet":[],"item":1,"support":4}`+"\n"+
		`{"itemSet":[],"item":2,"support":3}`+"\n"+
		`{"itemSet":[],"item":3,"support":3}`+"\n"+
		`{"itemSet":[2],"item":3,"support":2}`+"\n"+
		`{"itemSet":[2],"item":1,"support":2}`+"\n"+
		`{"itemSet":[3],"item":1,"support":2}`+"\n",
		string(golden))

	_, err = execute(t, "test", scenario)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenFilePath(scenario), []byte("stale\n"), 0o644))
	out, err := execute(t, "test", scenario)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pass.yaml", passingScenario)
	writeFile(t, dir, "fail.yaml", failingScenario)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "Expectation failed: count")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFailureJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fail.yaml", failingScenario)
	writeFile(t, dir, "broken.yaml", "name: [\n")

	out, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
}

func TestTestHelpText(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	assert.Contains(t, cmd.Long, "Exit codes")
	assert.Contains(t, cmd.Long, "--update")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.yml", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "c.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "a*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, files)

	files, err = findScenarioFiles(filepath.Join(dir, "b.yml"), "")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "baskets.golden"),
		goldenFilePath(filepath.Join("scenarios", "baskets.yaml")))
}
