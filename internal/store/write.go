package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Node is a frequent itemset in the graph.
type Node struct {
	Key     string // JSON array of sorted labels, e.g. [1,2]
	Items   string // same labels, kept separately for display
	Title   string // label text of singleton nodes
	Size    int
	Support int
	RunID   string
}

// Rule is an ASSOCIATES_WITH edge from Source to Target.
type Rule struct {
	Source     string
	Target     string
	AssocItems string // JSON array of the items added along the edge
	Confidence float64
	Level      int
	RunID      string
}

// Association is one mined record: the combined itemset plus the keys of the
// two nodes it extends. For singleton itemsets ItemKey and PrefixKey are empty
// and no edges are written.
type Association struct {
	RunID string

	// Itemset is the combined node (prefix ∪ {item}).
	Itemset Node

	// ItemKey is the singleton node of the appended item.
	ItemKey string
	// ItemAssoc is the JSON array of prefix items, stored on the edge ItemKey → Itemset.
	ItemAssoc string

	// PrefixKey is the node of the prefix itemset.
	PrefixKey string
	// PrefixAssoc is the JSON array [item], stored on the edge PrefixKey → Itemset.
	PrefixAssoc string
}

// ErrMissingNode is returned when an edge source has not been written yet.
var ErrMissingNode = errors.New("source itemset not found")

// UpsertNode inserts a node unless one with the same key exists.
func (s *Store) UpsertNode(ctx context.Context, n Node) error {
	if err := upsertNode(ctx, s.db, n); err != nil {
		return fmt.Errorf("upsert node: %w", err)
	}
	return nil
}

// WriteAssociation writes a mined record atomically.
//
// The combined node is merged first. For non-singleton itemsets the supports
// of the item node and prefix node are read back to compute confidence, and
// both edges are merged. A missing source node aborts the transaction with
// ErrMissingNode.
func (s *Store) WriteAssociation(ctx context.Context, a Association) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write association: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := upsertNode(ctx, tx, a.Itemset); err != nil {
		return fmt.Errorf("write association: %w", err)
	}

	if a.PrefixKey != "" {
		edges := []struct {
			source string
			assoc  string
		}{
			{a.ItemKey, a.ItemAssoc},
			{a.PrefixKey, a.PrefixAssoc},
		}
		for _, e := range edges {
			support, err := nodeSupport(ctx, tx, e.source)
			if err != nil {
				return fmt.Errorf("write association: %s: %w", e.source, err)
			}
			r := Rule{
				Source:     e.source,
				Target:     a.Itemset.Key,
				AssocItems: e.assoc,
				Confidence: float64(a.Itemset.Support) / float64(support),
				Level:      a.Itemset.Size,
				RunID:      a.RunID,
			}
			if err := upsertRule(ctx, tx, r); err != nil {
				return fmt.Errorf("write association: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write association: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertNode(ctx context.Context, db execer, n Node) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO itemsets (key, items, title, size, support, run_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		n.Key,
		n.Items,
		n.Title,
		n.Size,
		n.Support,
		n.RunID,
	)
	if err != nil {
		return fmt.Errorf("node %s: %w", n.Key, err)
	}
	return nil
}

func upsertRule(ctx context.Context, db execer, r Rule) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO rules (source, target, assoc_items, confidence, level, run_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, target) DO NOTHING
	`,
		r.Source,
		r.Target,
		r.AssocItems,
		r.Confidence,
		r.Level,
		r.RunID,
	)
	if err != nil {
		return fmt.Errorf("rule %s -> %s: %w", r.Source, r.Target, err)
	}
	return nil
}

func nodeSupport(ctx context.Context, tx *sql.Tx, key string) (int, error) {
	var support int
	err := tx.QueryRowContext(ctx, `SELECT support FROM itemsets WHERE key = ?`, key).Scan(&support)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMissingNode
	}
	if err != nil {
		return 0, err
	}
	return support, nil
}
