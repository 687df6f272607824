// Package harness runs mining scenarios as executable contract tests.
//
// A scenario names a transaction database, the run settings and the outcome
// the run must produce. Each scenario runs against a fresh in-memory graph
// store with a fixed run id, so its output is reproducible and can be
// compared against a golden file.
//
// # Scenario Format
//
//	name: worked_example
//	description: "Four transactions at 50% support"
//	transactions:
//	  - [1, 2, 3]
//	  - [1, 2]
//	  - [1, 3]
//	  - [1, 2, 3, 4]
//	min_support: 0.5
//	expect:
//	  exact: true
//	  itemsets:
//	    - { items: [1], support: 4 }
//	    - { items: [2, 3], support: 2 }
//	  rules:
//	    - { source: [2], target: [2, 3], confidence: 0.666667 }
//
// Instead of inline transactions, input names a text file (one transaction
// per line) relative to the scenario file. Run settings (matrix, matrix_kind,
// tidset_kind, workers, item_kind, separator) take their defaults when
// omitted and are validated against the config schema when the scenario runs.
//
// # Expectations
//
//   - itemsets: each listed itemset is emitted with the given support.
//     With exact, nothing else is emitted.
//   - absent: the listed itemsets are not emitted.
//   - count: the number of emitted itemsets.
//   - order: the listed itemsets are emitted in this relative order.
//   - rules: association edges written to the graph store.
//   - error: the run fails with an error containing this text.
//
// Every run is also checked for duplicate itemsets and for records the graph
// store rejected.
package harness
