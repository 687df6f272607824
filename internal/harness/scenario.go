package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eclat/internal/config"
)

// Scenario is a mining run with the outcome it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Transactions are inline rows of item tokens.
	Transactions [][]string `yaml:"transactions,omitempty"`

	// Input is a transaction text file, relative to the scenario file.
	// Exactly one of Transactions and Input must be set.
	Input string `yaml:"input,omitempty"`

	// Separator splits Input lines. Defaults to a single space.
	Separator string `yaml:"separator,omitempty"`

	// ItemKind is "int" (default) or "string".
	ItemKind string `yaml:"item_kind,omitempty"`

	MinSupport float64 `yaml:"min_support"`
	Matrix     *bool   `yaml:"matrix,omitempty"`
	MatrixKind string  `yaml:"matrix_kind,omitempty"`
	TidsetKind string  `yaml:"tidset_kind,omitempty"`
	Workers    int     `yaml:"workers,omitempty"`

	// RunID is the fixed run id. Defaults to "test-run".
	RunID string `yaml:"run_id,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists what a run must produce. Every set field is checked.
type Expect struct {
	// Itemsets must all be emitted with the given support.
	Itemsets []ExpectedItemset `yaml:"itemsets,omitempty"`

	// Exact additionally forbids itemsets not listed in Itemsets.
	Exact bool `yaml:"exact,omitempty"`

	// Absent itemsets must not be emitted.
	Absent [][]string `yaml:"absent,omitempty"`

	// Count is the exact number of emitted itemsets.
	Count *int `yaml:"count,omitempty"`

	// Order itemsets must be emitted in this relative order.
	Order [][]string `yaml:"order,omitempty"`

	// Rules must exist in the association graph written during the run.
	Rules []ExpectedRule `yaml:"rules,omitempty"`

	// Error is a substring of the error the run must fail with.
	Error string `yaml:"error,omitempty"`
}

// ExpectedItemset is an itemset and its absolute support.
type ExpectedItemset struct {
	Items   []string `yaml:"items"`
	Support int      `yaml:"support"`
}

// ExpectedRule is an association edge between two itemsets.
type ExpectedRule struct {
	Source     []string `yaml:"source"`
	Target     []string `yaml:"target"`
	Confidence float64  `yaml:"confidence"`
}

func (e Expect) empty() bool {
	return len(e.Itemsets) == 0 && len(e.Absent) == 0 && e.Count == nil &&
		len(e.Order) == 0 && len(e.Rules) == 0 && e.Error == ""
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Input path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Input != "" && !filepath.IsAbs(scenario.Input) {
		scenario.Input = filepath.Join(filepath.Dir(path), scenario.Input)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Run settings themselves are validated by the config schema at run time,
// so that a scenario can expect a configuration error.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Input != "" && s.Transactions != nil:
		return fmt.Errorf("transactions and input are mutually exclusive")
	case s.Input != "":
		if _, err := os.Stat(s.Input); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", s.Input)
		}
	case s.Transactions == nil:
		return fmt.Errorf("one of transactions or input is required")
	}

	if s.Expect.empty() {
		return fmt.Errorf("expect must check at least one outcome")
	}

	for i, is := range s.Expect.Itemsets {
		if len(is.Items) == 0 {
			return fmt.Errorf("expect.itemsets[%d]: items is required", i)
		}
		if is.Support <= 0 {
			return fmt.Errorf("expect.itemsets[%d]: support must be positive", i)
		}
	}
	if s.Expect.Exact && len(s.Expect.Itemsets) == 0 {
		return fmt.Errorf("expect.exact requires expect.itemsets")
	}
	if s.Expect.Count != nil && *s.Expect.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}
	for i, items := range s.Expect.Absent {
		if len(items) == 0 {
			return fmt.Errorf("expect.absent[%d]: empty itemset", i)
		}
	}
	if len(s.Expect.Order) == 1 {
		return fmt.Errorf("expect.order needs at least two itemsets")
	}
	for i, r := range s.Expect.Rules {
		if len(r.Source) == 0 || len(r.Target) == 0 {
			return fmt.Errorf("expect.rules[%d]: source and target are required", i)
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			return fmt.Errorf("expect.rules[%d]: confidence must be in (0, 1]", i)
		}
	}

	return nil
}

// Config returns the run settings of s as a mining config.
// Settings the scenario omits keep their defaults.
func (s *Scenario) Config() config.Config {
	cfg := config.Default()
	cfg.MinSupport = s.MinSupport
	if s.Matrix != nil {
		cfg.Matrix = *s.Matrix
	}
	if s.MatrixKind != "" {
		cfg.MatrixKind = s.MatrixKind
	}
	if s.TidsetKind != "" {
		cfg.TidsetKind = s.TidsetKind
	}
	if s.Workers != 0 {
		cfg.Workers = s.Workers
	}
	if s.Separator != "" {
		cfg.Separator = s.Separator
	}
	if s.ItemKind != "" {
		cfg.ItemKind = s.ItemKind
	}
	return cfg
}
