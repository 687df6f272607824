package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/store"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	Database      string
	MinConfidence float64
	Level         int
	Source        string // comma-separated items
	ItemKind      string
	Limit         int
}

// RuleView is one association rule as printed by the rules command.
type RuleView struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	AssocItems string  `json:"assoc_items"`
	Confidence float64 `json:"confidence"`
	Level      int     `json:"level"`
	RunID      string  `json:"run_id"`
}

// RulesResult is the JSON payload of the rules command.
type RulesResult struct {
	Rules []RuleView `json:"rules"`
	Nodes int        `json:"nodes"`
	Total int        `json:"total"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List association rules from a graph database",
		Long: `List the association rules written by "eclat mine --output graph".

A rule A -> A∪B means that transactions containing A also contain B with
the given confidence, support(A∪B) / support(A). Rules are listed by
descending confidence.

Examples:
  eclat rules --db graph.db
  eclat rules --db graph.db --min-confidence 0.8 --limit 20
  eclat rules --db graph.db --source 12,40
  eclat rules --db graph.db --item-kind string --source milk --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite graph database (required)")
	cmd.Flags().Float64Var(&opts.MinConfidence, "min-confidence", 0, "only rules with at least this confidence")
	cmd.Flags().IntVar(&opts.Level, "level", 0, "only rules whose target has this many items")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only rules from this itemset (comma-separated items)")
	cmd.Flags().StringVar(&opts.ItemKind, "item-kind", itemset.KindInt.String(), "item type of --source (int|string)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rules (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		return out.Fail(ExitCommandError, CodeStore, fmt.Sprintf("database not found: %s", opts.Database), err)
	}

	q := store.RuleQuery{
		MinConfidence: opts.MinConfidence,
		Level:         opts.Level,
		Limit:         opts.Limit,
	}
	if opts.Source != "" {
		key, err := sourceKey(opts.Source, opts.ItemKind)
		if err != nil {
			return out.Fail(ExitCommandError, CodeConfig, "invalid --source", err)
		}
		q.Source = key
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	rules, err := st.Rules(ctx, q)
	if err != nil {
		return out.Fail(ExitFailure, CodeStore, "failed to read rules", err)
	}
	nodes, err := st.CountNodes(ctx)
	if err != nil {
		return out.Fail(ExitFailure, CodeStore, "failed to count itemsets", err)
	}
	total, err := st.CountRules(ctx)
	if err != nil {
		return out.Fail(ExitFailure, CodeStore, "failed to count rules", err)
	}

	result := RulesResult{Rules: make([]RuleView, len(rules)), Nodes: nodes, Total: total}
	for i, r := range rules {
		result.Rules[i] = RuleView(r)
	}

	return out.Success(result, func(w io.Writer) {
		printRulesText(w, result)
	})
}

// sourceKey turns "a,b" into the graph key of the itemset {a, b}.
func sourceKey(items, kind string) (string, error) {
	k, err := itemset.ParseKind(kind)
	if err != nil {
		return "", err
	}
	var labels []itemset.Label
	for _, raw := range strings.Split(items, ",") {
		l, err := itemset.ParseLabel(raw, k)
		if err != nil {
			return "", fmt.Errorf("item %q: %w", raw, err)
		}
		labels = append(labels, l)
	}
	return sink.SortedKey(labels)
}

func printRulesText(w io.Writer, r RulesResult) {
	if len(r.Rules) == 0 {
		fmt.Fprintln(w, "No rules found.")
	}
	for _, rule := range r.Rules {
		fmt.Fprintf(w, "%s -> %s  +%s  confidence %.3f\n", rule.Source, rule.Target, rule.AssocItems, rule.Confidence)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Showing %d of %d rules over %d itemsets\n", len(r.Rules), r.Total, r.Nodes)
}
