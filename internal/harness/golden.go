package harness

import (
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot returns the golden form of a result: one JSON record per line in
// emission order. Parallel runs emit in no fixed order, so their lines are
// sorted.
func Snapshot(scenario *Scenario, result *Result) []byte {
	if scenario.Config().Workers <= 1 || result.Output == "" {
		return []byte(result.Output)
	}
	lines := strings.Split(strings.TrimSuffix(result.Output, "\n"), "\n")
	slices.Sort(lines)
	return []byte(strings.Join(lines, "\n") + "\n")
}

// RunWithGolden executes a scenario and compares its output against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie) occurs
// if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, Snapshot(scenario, result))
	return result, nil
}

// AssertGolden compares output against the named golden file.
func AssertGolden(t *testing.T, name string, output []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, output)
}
