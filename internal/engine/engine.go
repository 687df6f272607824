package engine

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/matrix"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/tidset"
)

// Run is one mining invocation. All state lives here; nothing is shared
// between runs.
//
// Thread-safety model:
//   - Execute must be called once, from one goroutine
//   - with Workers > 1, root classes run concurrently; tidsets and the
//     matrix are read-only by then and emissions go through sink.Serialized
type Run struct {
	db     *itemset.Database
	opts   Options
	out    sink.Sink
	runIDs RunIDGenerator

	runID      string
	minSupport int
	tidKind    tidset.Kind
	tidsets    []tidset.Set // by internal id; nil for infrequent items
	order      []int        // frequent items, ascending support
	matrix     matrix.Matrix

	stage    Stage
	stats    Stats
	itemsets atomic.Int64
	heap     heapSampler
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithRunIDGenerator sets the generator for the run id.
//
// Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) RunOption {
	return func(r *Run) {
		r.runIDs = g
	}
}

// candidate is one member of an equivalence class: the suffix item and the
// tidset of prefix ∪ {item}.
type candidate struct {
	item int
	tids tidset.Set
}

// prefix is an append-only chain of internal ids shared by child classes.
type prefix struct {
	parent *prefix
	item   int
	size   int
}

func (p *prefix) extend(item int) *prefix {
	size := 1
	if p != nil {
		size = p.size + 1
	}
	return &prefix{parent: p, item: item, size: size}
}

// items returns the chain in insertion order.
func (p *prefix) items() []int {
	if p == nil {
		return nil
	}
	out := make([]int, p.size)
	for n := p; n != nil; n = n.parent {
		out[n.size-1] = n.item
	}
	return out
}

// NewRun validates opts and prepares a run over db that emits into out.
func NewRun(db *itemset.Database, out sink.Sink, opts Options, runOpts ...RunOption) (*Run, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, newConfigError(ErrCodeMissingInput, "database", "no transaction database")
	}
	if out == nil {
		return nil, newConfigError(ErrCodeMissingInput, "sink", "no result sink")
	}

	r := &Run{
		db:     db,
		opts:   opts,
		out:    out,
		runIDs: UUIDv7Generator{},
		stage:  StageInit,
	}
	for _, opt := range runOpts {
		opt(r)
	}

	r.runID = r.runIDs.Generate()
	r.minSupport = MinSupportAbsolute(opts.MinSupport, db.TransactionCount())
	r.tidKind = opts.TidsetKind.Resolve(db.TransactionCount())
	r.stats = Stats{
		RunID:           r.runID,
		Transactions:    db.TransactionCount(),
		Items:           db.ItemCount(),
		MinSupportRatio: opts.MinSupport,
		MinSupport:      r.minSupport,
		TidsetKind:      r.tidKind,
		Stage:           StageInit,
	}
	return r, nil
}

// Mine runs Eclat over db and emits every frequent itemset into out.
//
// The returned Stats are filled in even when an error is returned.
func Mine(ctx context.Context, db *itemset.Database, out sink.Sink, opts Options, runOpts ...RunOption) (Stats, error) {
	r, err := NewRun(db, out, opts, runOpts...)
	if err != nil {
		return Stats{Stage: StageInit}, err
	}
	return r.Execute(ctx)
}

// RunID returns the id generated for this run.
func (r *Run) RunID() string {
	return r.runID
}

// Execute runs all stages.
func (r *Run) Execute(ctx context.Context) (Stats, error) {
	start := time.Now()
	slog.Info("mining started",
		"run_id", r.runID,
		"transactions", r.stats.Transactions,
		"items", r.stats.Items,
		"min_support", r.minSupport,
		"tidset_kind", r.tidKind,
	)

	err := r.execute(ctx)

	r.heap.sample()
	r.stats.Duration = time.Since(start)
	r.stats.Itemsets = r.itemsets.Load()
	r.stats.PeakHeapBytes = r.heap.max()
	r.stats.Stage = r.stage

	if err != nil {
		slog.Error("mining failed",
			"run_id", r.runID,
			"stage", r.stage,
			"itemsets", r.stats.Itemsets,
			"error", err,
		)
		return r.stats, err
	}

	slog.Info("mining complete",
		"run_id", r.runID,
		"itemsets", r.stats.Itemsets,
		"frequent_items", r.stats.FrequentItems,
		"duration", r.stats.Duration,
	)
	return r.stats, nil
}

func (r *Run) execute(ctx context.Context) error {
	r.enter(StageSingleItemCount)
	if err := r.countSingles(ctx); err != nil {
		return err
	}

	if r.opts.UseMatrix && len(r.order) > 1 {
		r.enter(StageMatrixBuild)
		r.buildMatrix()
	}

	r.enter(StageSort)
	r.sortFrequent()

	r.enter(StageEnumerate)
	if err := r.enumerate(ctx); err != nil {
		return err
	}

	r.enter(StageDone)
	return nil
}

func (r *Run) enter(s Stage) {
	r.heap.sample()
	r.stage = s
	slog.Debug("stage", "run_id", r.runID, "stage", s)
}

// countSingles computes single-item supports, builds tidsets of the frequent
// items and emits each frequent item.
func (r *Run) countSingles(ctx context.Context) error {
	txs := r.db.Transactions()
	n := r.db.ItemCount()

	counts := make([]int, n)
	for _, tx := range txs {
		for _, id := range tx {
			counts[id]++
		}
	}

	builders := make([]tidset.Builder, n)
	for id, c := range counts {
		if c >= r.minSupport {
			builders[id] = tidset.NewBuilder(r.tidKind, len(txs))
		}
	}
	for tid, tx := range txs {
		for _, id := range tx {
			if b := builders[id]; b != nil {
				b.Add(tid)
			}
		}
	}

	r.tidsets = make([]tidset.Set, n)
	for id, b := range builders {
		if b == nil {
			continue
		}
		r.tidsets[id] = b.Build()
		r.order = append(r.order, id)
		if err := r.emit(ctx, r.out, nil, id, r.tidsets[id].Len()); err != nil {
			return err
		}
	}

	r.stats.FrequentItems = len(r.order)
	r.stats.Singletons = len(r.order)
	return nil
}

func (r *Run) buildMatrix() {
	kind := r.opts.MatrixKind.Resolve(r.db.ItemCount())
	r.matrix = matrix.New(kind, r.db.ItemCount())
	matrix.Build(r.matrix, r.db.Transactions())
	r.stats.MatrixKind = kind
}

// sortFrequent orders frequent items by ascending support. The sort is stable
// and order starts in internal id order, so ties keep first-seen order.
func (r *Run) sortFrequent() {
	slices.SortStableFunc(r.order, func(a, b int) int {
		return cmp.Compare(r.tidsets[a].Len(), r.tidsets[b].Len())
	})
}

func (r *Run) enumerate(ctx context.Context) error {
	if r.opts.Workers <= 1 {
		for i := range r.order {
			if err := r.processRoot(ctx, r.out, i); err != nil {
				return err
			}
			r.heap.sample()
		}
		return nil
	}

	out := sink.NewSerialized(r.out)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range r.order {
		g.Go(func() error {
			return r.processRoot(gctx, out, i)
		})
	}
	err := g.Wait()
	r.heap.sample()
	return err
}

// processRoot builds the equivalence class of 2-itemsets rooted at the i-th
// frequent item and explores it.
func (r *Run) processRoot(ctx context.Context, out sink.Sink, i int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enumerate: %w", err)
	}

	itemI := r.order[i]
	tidsI := r.tidsets[itemI]

	var class []candidate
	for _, itemJ := range r.order[i+1:] {
		if r.matrix != nil && r.matrix.Count(itemI, itemJ) < r.minSupport {
			continue
		}
		tids := tidset.Intersect(tidsI, r.tidsets[itemJ])
		if tids.Len() < r.minSupport {
			continue
		}
		class = append(class, candidate{item: itemJ, tids: tids})
	}
	if len(class) == 0 {
		return nil
	}
	return r.processClass(ctx, out, (*prefix)(nil).extend(itemI), class)
}

// processClass emits every member of an equivalence class and recurses into
// the classes they generate. The matrix is not consulted here; every support
// below the root comes from an exact intersection.
func (r *Run) processClass(ctx context.Context, out sink.Sink, p *prefix, class []candidate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enumerate: %w", err)
	}

	switch len(class) {
	case 1:
		return r.emit(ctx, out, p, class[0].item, class[0].tids.Len())

	case 2:
		a, b := class[0], class[1]
		if err := r.emit(ctx, out, p, a.item, a.tids.Len()); err != nil {
			return err
		}
		if err := r.emit(ctx, out, p, b.item, b.tids.Len()); err != nil {
			return err
		}
		ab := tidset.Intersect(a.tids, b.tids)
		if ab.Len() < r.minSupport {
			return nil
		}
		return r.emit(ctx, out, p.extend(a.item), b.item, ab.Len())
	}

	for i, ci := range class {
		if err := r.emit(ctx, out, p, ci.item, ci.tids.Len()); err != nil {
			return err
		}

		var child []candidate
		for _, cj := range class[i+1:] {
			tids := tidset.Intersect(ci.tids, cj.tids)
			if tids.Len() >= r.minSupport {
				child = append(child, candidate{item: cj.item, tids: tids})
			}
		}
		if len(child) == 0 {
			continue
		}
		if err := r.processClass(ctx, out, p.extend(ci.item), child); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) emit(ctx context.Context, out sink.Sink, p *prefix, item, support int) error {
	rec := sink.Record{
		Prefix:  r.db.Dictionary().Labels(p.items()),
		Item:    r.db.Label(item),
		Support: support,
	}
	if err := out.Emit(ctx, rec); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	r.itemsets.Add(1)
	return nil
}
