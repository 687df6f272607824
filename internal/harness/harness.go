package harness

import (
	"context"
	"fmt"

	"github.com/roach88/eclat/internal/engine"
	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/source"
	"github.com/roach88/eclat/internal/store"
	"github.com/roach88/eclat/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory graph store, so scenarios are
// isolated from each other. The run id is fixed for reproducible output.
//
// Load and mining errors are checked against Expect.Error and reported in
// the result. The returned error is for failures of the harness itself.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	rows := scenario.Transactions
	if scenario.Input != "" {
		var err error
		rows, err = source.ReadFile(scenario.Input, scenario.Separator)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
	}

	var rules *store.Store
	if len(scenario.Expect.Rules) > 0 {
		st, err := store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		rules = st
	}

	buf := sink.NewBuffer()
	runErr := mine(ctx, scenario, rows, buf, rules, result)

	result.Itemsets = buf.Records()
	result.Output = buf.String()
	result.Err = runErr

	if rules != nil && runErr == nil {
		rs, err := rules.Rules(ctx, store.RuleQuery{})
		if err != nil {
			return nil, fmt.Errorf("failed to read rules: %w", err)
		}
		result.Rules = rs
	}

	// An invalid item kind has already failed the run.
	kind, err := scenario.Config().Items()
	if err != nil {
		kind = itemset.KindString
	}
	for _, msg := range evaluate(scenario, result, kind) {
		result.AddError(msg)
	}

	return result, nil
}

// mine validates the scenario's settings, loads rows and mines them into buf,
// and into the graph store when one is given.
func mine(ctx context.Context, scenario *Scenario, rows [][]string, buf *sink.Buffer, st *store.Store, result *Result) error {
	cfg := scenario.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	kind, err := cfg.Items()
	if err != nil {
		return err
	}

	db, err := itemset.Load(rows, kind)
	if err != nil {
		return err
	}

	runIDs := testutil.NewFixedRunID(scenario.RunID)
	var (
		out   sink.Sink = buf
		graph *sink.Graph
	)
	if st != nil {
		graph = sink.NewGraph(st, runIDs.Generate())
		out = sink.Tee(buf, graph)
	}

	stats, err := engine.Mine(ctx, db, out, opts, engine.WithRunIDGenerator(runIDs))
	result.Stats = stats
	if graph != nil {
		result.GraphFailures = graph.Failures()
	}
	return err
}
