// Package tidset implements the vertical representation used by Eclat: the set
// of transaction ids (tids) that contain an item or itemset.
//
// Two interchangeable representations exist. Bitset is a fixed-size bitset
// over [0, M) and suits modest transaction counts. Sorted is an ascending tid
// slice whose memory is proportional to the support rather than to M.
// Support values never depend on the representation chosen.
package tidset

import "fmt"

// Set is an immutable set of transaction ids.
type Set interface {
	// Len returns the number of tids in the set (the support).
	Len() int
	// Contains reports whether tid is in the set.
	Contains(tid int) bool
	// Each calls fn for every tid in ascending order.
	Each(fn func(tid int))
	// Intersect returns the tids present in both sets.
	Intersect(other Set) Set
}

// Kind selects a tidset representation.
type Kind string

const (
	// KindAuto picks Bitset up to BitsetThreshold transactions, Sorted above.
	KindAuto Kind = "auto"
	// KindBitset forces Bitset.
	KindBitset Kind = "bitset"
	// KindSorted forces Sorted.
	KindSorted Kind = "sorted"
)

// BitsetThreshold is the largest transaction count for which KindAuto
// chooses Bitset.
const BitsetThreshold = 1 << 16

// ParseKind validates a kind name. An empty name yields KindAuto.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "":
		return KindAuto, nil
	case KindAuto, KindBitset, KindSorted:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid tidset kind %q: must be auto, bitset or sorted", s)
}

// Resolve turns KindAuto into a concrete kind for the given transaction count.
func (k Kind) Resolve(transactions int) Kind {
	if k != KindAuto && k != "" {
		return k
	}
	if transactions <= BitsetThreshold {
		return KindBitset
	}
	return KindSorted
}

// Builder accumulates tids for one item. Tids must be added in ascending order.
type Builder interface {
	Add(tid int)
	Build() Set
}

// NewBuilder returns a builder for a concrete kind over [0, transactions).
func NewBuilder(kind Kind, transactions int) Builder {
	if kind.Resolve(transactions) == KindBitset {
		return &bitsetBuilder{set: NewBitset(transactions)}
	}
	return &sortedBuilder{}
}

// Intersect returns a ∩ b by iterating the smaller set and probing the larger
// one, so the cost is bounded by min(|a|, |b|) membership tests.
func Intersect(a, b Set) Set {
	return a.Intersect(b)
}

type bitsetBuilder struct {
	set *Bitset
}

func (b *bitsetBuilder) Add(tid int) { b.set.add(tid) }

func (b *bitsetBuilder) Build() Set { return b.set }

type sortedBuilder struct {
	tids []int32
}

func (b *sortedBuilder) Add(tid int) { b.tids = append(b.tids, int32(tid)) }

func (b *sortedBuilder) Build() Set { return Sorted(b.tids) }

// intersectGeneric handles mixed representations.
func intersectGeneric(a, b Set) Set {
	small, large := a, b
	if large.Len() < small.Len() {
		small, large = large, small
	}
	out := make([]int32, 0, small.Len())
	small.Each(func(tid int) {
		if large.Contains(tid) {
			out = append(out, int32(tid))
		}
	})
	return Sorted(out)
}
