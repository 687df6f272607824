package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// RuleQuery filters Rules. Zero values disable a filter.
type RuleQuery struct {
	MinConfidence float64
	Level         int
	Source        string
	Limit         int
}

// Node returns the node with the given key.
// Returns (Node{}, false, nil) if no such node exists.
func (s *Store) Node(ctx context.Context, key string) (Node, bool, error) {
	var n Node
	err := s.db.QueryRowContext(ctx, `
		SELECT key, items, title, size, support, run_id
		FROM itemsets
		WHERE key = ?
	`, key).Scan(&n.Key, &n.Items, &n.Title, &n.Size, &n.Support, &n.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, fmt.Errorf("read node: %w", err)
	}
	return n, true, nil
}

// Rules returns edges ordered by confidence (highest first), then by source
// and target for a deterministic order.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Rules(ctx context.Context, q RuleQuery) ([]Rule, error) {
	var (
		where []string
		args  []any
	)
	if q.MinConfidence > 0 {
		where = append(where, "confidence >= ?")
		args = append(args, q.MinConfidence)
	}
	if q.Level > 0 {
		where = append(where, "level = ?")
		args = append(args, q.Level)
	}
	if q.Source != "" {
		where = append(where, "source = ?")
		args = append(args, q.Source)
	}

	query := `SELECT source, target, assoc_items, confidence, level, run_id FROM rules`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY confidence DESC, source COLLATE BINARY ASC, target COLLATE BINARY ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.Source, &r.Target, &r.AssocItems, &r.Confidence, &r.Level, &r.RunID); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}

	return rules, nil
}

// CountNodes returns the number of itemset nodes.
func (s *Store) CountNodes(ctx context.Context) (int, error) {
	return s.count(ctx, "itemsets")
}

// CountRules returns the number of rule edges.
func (s *Store) CountRules(ctx context.Context) (int, error) {
	return s.count(ctx, "rules")
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
