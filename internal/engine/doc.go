// Package engine implements Eclat frequent itemset mining.
//
// A Run moves through fixed stages:
//
//	INIT → SINGLE_ITEM_COUNT → [MATRIX_BUILD] → SORT → ENUMERATE → DONE
//
// Single-item supports are counted in one pass and each frequent item is
// emitted straight away. Frequent items are then ordered by ascending
// support, and for each item I an equivalence class is built from every later
// item J with frequent {I, J}. When matrix pruning is on, the co-occurrence
// matrix rejects a pair before its tidsets are intersected. Classes are
// explored depth-first; every support below the root is an exact tidset
// intersection.
//
// SUPPORT THRESHOLD:
//
// minSupport = ceil(ratio × transactions), fixed for the run. The ratio must
// lie in (0, 1]; anything else is a *ConfigError before counting starts.
//
// EMISSION ORDER:
//
// Singletons first, in first-seen order. Then classes in ascending support of
// their first item, each in DFS order. Items of equal support keep first-seen
// order. With Workers > 1 the root classes run on an errgroup and their output
// interleaves; the emitted set is unchanged.
//
// CANCELLATION:
//
// ctx is checked before each equivalence class is expanded. A cancelled run
// returns the context error wrapped, along with the Stats gathered so far.
package engine
