// Package matrix holds pairwise item co-occurrence counts.
//
// The matrix is built once after single-item counting and is read-only while
// itemsets are enumerated. It only prunes 2-item candidates; longer
// extensions are always resolved by exact tidset intersection.
//
// Two representations satisfy Matrix:
//   - Dense: a triangular array, O(N²) memory, O(1) access
//   - Sparse: a map of maps, memory proportional to observed pairs
//
// Both normalize (i, j) so callers need not order ids, and both must report
// identical counts for identical input.
package matrix

import "fmt"

// Matrix counts transactions containing both items of an unordered pair.
type Matrix interface {
	// Increment adds one to the count of {i, j}. Pairs with i == j are ignored.
	Increment(i, j int)
	// Count returns the count of {i, j}, 0 if never observed.
	Count(i, j int) int
}

// Kind selects a matrix representation.
type Kind string

const (
	// KindAuto chooses Dense when the triangle fits in DenseLimit counters.
	KindAuto Kind = "auto"
	// KindDense forces Dense.
	KindDense Kind = "dense"
	// KindSparse forces Sparse.
	KindSparse Kind = "sparse"
)

// DenseLimit is the largest number of counters KindAuto allocates densely.
const DenseLimit = 1 << 24

// ParseKind validates a kind name. An empty name yields KindAuto.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "":
		return KindAuto, nil
	case KindAuto, KindDense, KindSparse:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid matrix kind %q: must be auto, dense or sparse", s)
}

// Resolve turns KindAuto into a concrete kind for an item catalog of size n.
func (k Kind) Resolve(n int) Kind {
	if k != KindAuto && k != "" {
		return k
	}
	if triangle(n) <= DenseLimit {
		return KindDense
	}
	return KindSparse
}

// New creates an empty matrix over items [0, n).
func New(kind Kind, n int) Matrix {
	if kind.Resolve(n) == KindDense {
		return NewDense(n)
	}
	return NewSparse()
}

// Build increments m once for every unordered pair of items co-occurring in
// each transaction.
func Build[T ~[]int](m Matrix, transactions []T) {
	for _, tx := range transactions {
		for a := 0; a < len(tx); a++ {
			for b := a + 1; b < len(tx); b++ {
				m.Increment(tx[a], tx[b])
			}
		}
	}
}

// triangle returns the number of cells for n items, n(n-1)/2.
func triangle(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
