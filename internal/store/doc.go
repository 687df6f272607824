// Package store provides the SQLite-backed graph store that mined itemsets are
// written back to.
//
// The graph has two tables:
//   - itemsets: one node per frequent itemset, keyed by the JSON array of its
//     sorted labels, carrying its support
//   - rules: ASSOCIATES_WITH edges from a subset node to a superset node,
//     annotated with confidence = support(target) / support(source) and the
//     level (size of the target itemset)
//
// # Write Semantics
//
// Writes follow merge-on-create semantics: a node or edge that already exists
// is left untouched (ON CONFLICT DO NOTHING). Re-running a mining job over the
// same database is therefore idempotent.
//
// Each mined record is written in one transaction (WriteAssociation), so a
// failed record never leaves a node without its edges.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
