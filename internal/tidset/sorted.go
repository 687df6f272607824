package tidset

import "sort"

// Sorted is a tidset stored as strictly ascending tids.
type Sorted []int32

// SortedOf builds a Sorted set from tids, which may be in any order and may
// contain duplicates.
func SortedOf(tids ...int) Sorted {
	out := make(Sorted, 0, len(tids))
	for _, tid := range tids {
		out = append(out, int32(tid))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	w := 0
	for i, tid := range out {
		if i > 0 && tid == out[w-1] {
			continue
		}
		out[w] = tid
		w++
	}
	return out[:w]
}

// Len returns the number of tids.
func (s Sorted) Len() int {
	return len(s)
}

// Contains reports whether tid is present, by binary search.
func (s Sorted) Contains(tid int) bool {
	t := int32(tid)
	i := sort.Search(len(s), func(i int) bool { return s[i] >= t })
	return i < len(s) && s[i] == t
}

// Each calls fn for every tid in ascending order.
func (s Sorted) Each(fn func(tid int)) {
	for _, tid := range s {
		fn(int(tid))
	}
}

// Intersect returns s ∩ other by iterating the smaller set.
func (s Sorted) Intersect(other Set) Set {
	o, ok := other.(Sorted)
	if !ok {
		return intersectGeneric(s, other)
	}

	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Sorted, 0, len(small))
	for _, tid := range small {
		if large.Contains(int(tid)) {
			out = append(out, tid)
		}
	}
	return out
}
