package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/eclat/internal/config"
	"github.com/roach88/eclat/internal/engine"
	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/source"
	"github.com/roach88/eclat/internal/store"
)

// MineOptions holds flags for the mine command.
type MineOptions struct {
	*RootOptions
	ConfigPath string

	// RunID tags the run and its graph writes. Empty means a fresh UUIDv7.
	RunID string

	// flags holds flag values. Only flags the user set override the config.
	flags config.Config
	query config.Query
}

// MineResult is the JSON payload of the mine command.
type MineResult struct {
	Stats    engine.Stats  `json:"stats"`
	Output   string        `json:"output"`
	Out      string        `json:"out,omitempty"`
	DB       string        `json:"db,omitempty"`
	Itemsets []sink.Record `json:"itemsets,omitempty"`

	// GraphFailures counts records the graph store rejected.
	GraphFailures int64 `json:"graph_failures,omitempty"`
}

// NewMineCommand creates the mine command.
func NewMineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MineOptions{RootOptions: rootOpts, flags: config.Default()}

	cmd := &cobra.Command{
		Use:   "mine [transactions-file]",
		Short: "Mine frequent itemsets",
		Long: `Mine every itemset whose support reaches --min-support.

Transactions come from a text file (one per line, items split on
--separator; "-" reads stdin) or from --query against a SQL database.
Settings can also come from a YAML or CUE --config file; flags given on
the command line take precedence over the file.

Exit codes:
  0 - Mining completed
  1 - Mining failed (output error, cancelled)
  2 - Command error (invalid settings, unreadable input)

Examples:
  eclat mine --min-support 0.05 baskets.txt
  eclat mine --item-kind string --separator , baskets.csv
  eclat mine --output file --out itemsets.jsonl --workers 4 baskets.txt
  eclat mine --output graph --db graph.db baskets.txt
  eclat mine --query "SELECT itemSet FROM orders" --query-dsn orders.db
  eclat mine --config run.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(opts, args, cmd)
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "", "YAML or CUE config file")
	f.StringVar(&opts.RunID, "run-id", "", "run id recorded in stats and graph writes (default: new UUIDv7)")
	f.Float64Var(&opts.flags.MinSupport, "min-support", d.MinSupport, "minimum support ratio in (0, 1]")
	f.BoolVar(&opts.flags.Matrix, "matrix", d.Matrix, "prune pairs with a co-occurrence matrix")
	f.StringVar(&opts.flags.MatrixKind, "matrix-kind", d.MatrixKind, "matrix representation (auto|dense|sparse)")
	f.StringVar(&opts.flags.TidsetKind, "tidset-kind", d.TidsetKind, "tidset representation (auto|bitset|sorted)")
	f.IntVar(&opts.flags.Workers, "workers", d.Workers, "root classes mined in parallel")
	f.StringVar(&opts.flags.Output, "output", d.Output, "where itemsets go (buffer|file|graph)")
	f.StringVarP(&opts.flags.Out, "out", "o", "", "output file for --output file")
	f.StringVar(&opts.flags.DB, "db", "", "SQLite graph database for --output graph")
	f.StringVar(&opts.flags.Separator, "separator", d.Separator, "item separator in transaction files")
	f.StringVar(&opts.flags.ItemKind, "item-kind", d.ItemKind, "item type (int|string)")
	f.StringVar(&opts.query.SQL, "query", "", "SQL query returning one transaction per row")
	f.StringVar(&opts.query.Driver, "query-driver", "sqlite3", "SQL driver for --query (sqlite3|mysql)")
	f.StringVar(&opts.query.DSN, "query-dsn", "", "data source name for --query")
	f.StringVar(&opts.query.Column, "query-column", source.DefaultColumn, "result column holding the item list")
	f.StringVar(&opts.query.Separator, "query-separator", ",", "item separator inside the item list column")

	return cmd
}

// resolveConfig applies defaults, then the config file, then the flags the
// user set, and validates the result.
func (opts *MineOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("min-support", func() { cfg.MinSupport = opts.flags.MinSupport })
	set("matrix", func() { cfg.Matrix = opts.flags.Matrix })
	set("matrix-kind", func() { cfg.MatrixKind = opts.flags.MatrixKind })
	set("tidset-kind", func() { cfg.TidsetKind = opts.flags.TidsetKind })
	set("workers", func() { cfg.Workers = opts.flags.Workers })
	set("output", func() { cfg.Output = opts.flags.Output })
	set("out", func() { cfg.Out = opts.flags.Out })
	set("db", func() { cfg.DB = opts.flags.DB })
	set("separator", func() { cfg.Separator = opts.flags.Separator })
	set("item-kind", func() { cfg.ItemKind = opts.flags.ItemKind })

	query := func() *config.Query {
		if cfg.Query == nil {
			q := opts.query
			cfg.Query = &q
		}
		return cfg.Query
	}
	set("query", func() { query().SQL = opts.query.SQL })
	set("query-driver", func() { query().Driver = opts.query.Driver })
	set("query-dsn", func() { query().DSN = opts.query.DSN })
	set("query-column", func() { query().Column = opts.query.Column })
	set("query-separator", func() { query().Separator = opts.query.Separator })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runMine(opts *MineOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}
	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}
	kind, err := cfg.Items()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}
	sinkKind, err := cfg.Sink()
	if err != nil {
		return out.Fail(ExitCommandError, CodeConfig, "invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	rows, err := readTransactions(ctx, cfg, args, cmd.InOrStdin())
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, "failed to read transactions", err)
	}
	db, err := itemset.Load(rows, kind)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, "failed to load transactions", err)
	}
	slog.Debug("transactions loaded",
		"transactions", db.TransactionCount(),
		"items", db.ItemCount(),
		"duration", time.Since(start),
	)

	runID := opts.RunID
	if runID == "" {
		runID = engine.UUIDv7Generator{}.Generate()
	}

	target := sink.Target{Path: cfg.Out, RunID: runID}
	if sinkKind == sink.KindGraph {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return out.Fail(ExitCommandError, CodeStore, "failed to open graph database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		target.Store = st
	}
	w, err := sink.Open(sinkKind, target)
	if err != nil {
		return out.Fail(ExitCommandError, CodeOutput, "failed to open output", err)
	}

	stats, mineErr := engine.Mine(ctx, db, w, engineOpts,
		engine.WithRunIDGenerator(engine.NewFixedGenerator(runID)))
	closeErr := w.Close()
	if mineErr != nil {
		return out.Fail(ExitFailure, CodeMine, "mining failed", mineErr)
	}
	if closeErr != nil {
		return out.Fail(ExitFailure, CodeOutput, "failed to write output", closeErr)
	}

	result := MineResult{Stats: stats, Output: cfg.Output}
	switch v := w.(type) {
	case *sink.Buffer:
		result.Itemsets = v.Records()
	case *sink.File:
		result.Out = v.Path()
	case *sink.Graph:
		result.DB = cfg.DB
		result.GraphFailures = v.Failures()
	}

	return out.Success(result, func(w io.Writer) {
		printMineText(w, result)
	})
}

// readTransactions reads raw rows from the configured query, the file named
// by args, or stdin when the file is "-".
func readTransactions(ctx context.Context, cfg config.Config, args []string, stdin io.Reader) ([][]string, error) {
	switch {
	case cfg.Query != nil && len(args) > 0:
		return nil, fmt.Errorf("a transactions file and --query are mutually exclusive")
	case cfg.Query != nil:
		q := cfg.Query
		db, err := source.OpenQuery(q.Driver, q.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return source.Query(ctx, db, q.SQL, q.Column, q.Separator)
	case len(args) == 0:
		return nil, fmt.Errorf("no input: give a transactions file or --query")
	case args[0] == "-":
		return source.ReadText(stdin, cfg.Separator)
	default:
		return source.ReadFile(args[0], cfg.Separator)
	}
}

func printMineText(w io.Writer, r MineResult) {
	for _, rec := range r.Itemsets {
		line, err := rec.MarshalJSON()
		if err != nil {
			continue
		}
		fmt.Fprintln(w, string(line))
	}

	s := r.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run:            %s\n", s.RunID)
	fmt.Fprintf(w, "Transactions:   %d\n", s.Transactions)
	fmt.Fprintf(w, "Items:          %d (%d frequent)\n", s.Items, s.FrequentItems)
	fmt.Fprintf(w, "Min support:    %d (ratio %g)\n", s.MinSupport, s.MinSupportRatio)
	fmt.Fprintf(w, "Itemsets:       %d (%d single items)\n", s.Itemsets, s.Singletons)
	fmt.Fprintf(w, "Duration:       %s\n", s.Duration)
	fmt.Fprintf(w, "Peak heap:      %d bytes\n", s.PeakHeapBytes)
	switch {
	case r.Out != "":
		fmt.Fprintf(w, "Output:         %s\n", r.Out)
	case r.DB != "":
		fmt.Fprintf(w, "Graph:          %s (%d failed writes)\n", r.DB, r.GraphFailures)
	}
}
