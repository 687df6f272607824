package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/store"
)

// Graph writes each record back into the graph store as a node plus two
// ASSOCIATES_WITH edges (see store.WriteAssociation).
//
// Writes are best-effort: a record that fails is logged and counted, and
// Emit still returns nil so enumeration continues. Compare Failures() with
// the run's itemset count to reconcile.
type Graph struct {
	store    *store.Store
	runID    string
	written  atomic.Int64
	failures atomic.Int64
}

// NewGraph returns a graph sink over s. The caller keeps ownership of s.
func NewGraph(s *store.Store, runID string) *Graph {
	return &Graph{store: s, runID: runID}
}

// Emit writes one record.
func (g *Graph) Emit(ctx context.Context, r Record) error {
	a, err := association(r, g.runID)
	if err == nil {
		err = g.store.WriteAssociation(ctx, a)
	}
	if err != nil {
		g.failures.Add(1)
		slog.Error("graph write failed",
			"item", r.Item.String(),
			"size", r.Size(),
			"support", r.Support,
			"error", err,
		)
		return nil
	}
	g.written.Add(1)
	return nil
}

// Written returns the number of records written successfully.
func (g *Graph) Written() int64 {
	return g.written.Load()
}

// Failures returns the number of records that could not be written.
func (g *Graph) Failures() int64 {
	return g.failures.Load()
}

// Close is a no-op; the store belongs to the caller.
func (g *Graph) Close() error {
	return nil
}

// association maps a record onto the graph write.
func association(r Record, runID string) (store.Association, error) {
	items := r.Items()
	key, err := SortedKey(items)
	if err != nil {
		return store.Association{}, fmt.Errorf("itemset key: %w", err)
	}
	display, err := json.Marshal(items)
	if err != nil {
		return store.Association{}, fmt.Errorf("itemset items: %w", err)
	}

	a := store.Association{
		RunID: runID,
		Itemset: store.Node{
			Key:     key,
			Items:   string(display),
			Size:    r.Size(),
			Support: r.Support,
			RunID:   runID,
		},
	}
	if len(r.Prefix) == 0 {
		a.Itemset.Title = r.Item.String()
		return a, nil
	}

	single := []itemset.Label{r.Item}
	if a.ItemKey, err = SortedKey(single); err != nil {
		return store.Association{}, fmt.Errorf("item key: %w", err)
	}
	if a.PrefixKey, err = SortedKey(r.Prefix); err != nil {
		return store.Association{}, fmt.Errorf("prefix key: %w", err)
	}
	// Edge from the item node carries the prefix; edge from the prefix node
	// carries the item.
	a.ItemAssoc = a.PrefixKey
	a.PrefixAssoc = a.ItemKey
	return a, nil
}
