// Package testutil holds helpers shared by package tests: a brute-force
// support counter to check mined output against, and generators for
// reproducible random databases.
package testutil

import (
	"encoding/json"
	"math/bits"
	"math/rand/v2"
	"slices"
	"strconv"
)

// Key renders a set of integer items as a sorted JSON array, e.g. [1,2,3].
// It matches sink.SortedKey for integer labels.
func Key(items []int64) string {
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = []int64{}
	}
	slices.Sort(sorted)
	b, _ := json.Marshal(sorted)
	return string(b)
}

// BruteForce returns the support of every itemset occurring in at least
// minSupport transactions, keyed by Key.
//
// It enumerates every subset of every transaction, so transactions must stay
// short (at most 20 distinct items).
func BruteForce(rows [][]int64, minSupport int) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		items := slices.Compact(slices.Sorted(slices.Values(row)))
		if len(items) > 20 {
			panic("BruteForce: transaction too long")
		}
		for mask := uint32(1); mask < 1<<len(items); mask++ {
			subset := make([]int64, 0, bits.OnesCount32(mask))
			for i, item := range items {
				if mask&(1<<i) != 0 {
					subset = append(subset, item)
				}
			}
			counts[Key(subset)]++
		}
	}
	for k, c := range counts {
		if c < minSupport {
			delete(counts, k)
		}
	}
	return counts
}

// Support counts the rows containing every item of set.
func Support(rows [][]int64, set []int64) int {
	n := 0
	for _, row := range rows {
		all := true
		for _, item := range set {
			if !slices.Contains(row, item) {
				all = false
				break
			}
		}
		if all {
			n++
		}
	}
	return n
}

// RandomRows generates transactions over items 1..items, each with up to
// maxLen items (possibly repeated). The same seed yields the same rows.
func RandomRows(seed uint64, transactions, items, maxLen int) [][]int64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([][]int64, transactions)
	for i := range rows {
		n := rng.IntN(maxLen + 1)
		row := make([]int64, n)
		for j := range row {
			// Skew towards low ids so some itemsets are frequent.
			a, b := rng.IntN(items), rng.IntN(items)
			row[j] = int64(min(a, b) + 1)
		}
		rows[i] = row
	}
	return rows
}

// Strings converts integer rows into the raw form accepted by itemset.Load.
func Strings(rows [][]int64) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, item := range row {
			out[i][j] = strconv.FormatInt(item, 10)
		}
	}
	return out
}
