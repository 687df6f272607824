package matrix

// Dense stores the strict lower triangle of an n×n symmetric matrix in one
// flat slice. Row j (j ≥ 1) holds the counts of pairs (i, j) with i < j and
// starts at offset j(j-1)/2.
type Dense struct {
	n      int
	counts []int32
}

// NewDense allocates a dense matrix for items [0, n).
func NewDense(n int) *Dense {
	return &Dense{n: n, counts: make([]int32, triangle(n))}
}

// Increment adds one to {i, j}.
// Panics if either id is outside [0, n).
func (d *Dense) Increment(i, j int) {
	if i == j {
		return
	}
	d.counts[d.index(i, j)]++
}

// Count returns the count of {i, j}.
func (d *Dense) Count(i, j int) int {
	if i == j || i < 0 || j < 0 || i >= d.n || j >= d.n {
		return 0
	}
	return int(d.counts[d.index(i, j)])
}

// Size returns the catalog size the matrix was allocated for.
func (d *Dense) Size() int {
	return d.n
}

func (d *Dense) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return j*(j-1)/2 + i
}
