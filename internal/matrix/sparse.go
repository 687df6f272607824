package matrix

// Sparse keys counts by the smaller item id, then by the larger one.
// Only pairs that were observed at least once occupy memory.
type Sparse struct {
	rows map[int]map[int]int
}

// NewSparse returns an empty sparse matrix.
func NewSparse() *Sparse {
	return &Sparse{rows: make(map[int]map[int]int)}
}

// Increment adds one to {i, j}.
func (s *Sparse) Increment(i, j int) {
	if i == j {
		return
	}
	if i > j {
		i, j = j, i
	}
	row, ok := s.rows[i]
	if !ok {
		row = make(map[int]int)
		s.rows[i] = row
	}
	row[j]++
}

// Count returns the count of {i, j}.
func (s *Sparse) Count(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return s.rows[i][j]
}

// Pairs returns the number of distinct observed pairs.
func (s *Sparse) Pairs() int {
	n := 0
	for _, row := range s.rows {
		n += len(row)
	}
	return n
}
