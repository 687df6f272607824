// Package sink defines where mined itemsets go.
//
// The engine calls Emit once per frequent itemset with the prefix, the appended
// item and the support. Three variants exist, chosen once per run with Open:
//
//   - Buffer: JSON lines kept in memory
//   - File: JSON lines written to a file; any write error stops the run
//   - Graph: best-effort write-back into the SQLite graph store
//
// Counting and Serialized wrap any sink; the engine uses Serialized when root
// equivalence classes are mined in parallel.
package sink
