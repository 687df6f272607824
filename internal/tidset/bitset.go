package tidset

import "math/bits"

// Bitset is a fixed-size tidset over [0, size).
type Bitset struct {
	words []uint64
	size  int
	count int
}

// NewBitset returns an empty bitset covering [0, size).
func NewBitset(size int) *Bitset {
	if size < 0 {
		size = 0
	}
	return &Bitset{words: make([]uint64, (size+63)/64), size: size}
}

// BitsetOf builds a bitset over [0, size) holding tids.
func BitsetOf(size int, tids ...int) *Bitset {
	b := NewBitset(size)
	for _, tid := range tids {
		b.add(tid)
	}
	return b
}

// add sets tid. Out-of-range tids are ignored.
func (b *Bitset) add(tid int) {
	if tid < 0 || tid >= b.size {
		return
	}
	w, m := tid>>6, uint64(1)<<(uint(tid)&63)
	if b.words[w]&m == 0 {
		b.words[w] |= m
		b.count++
	}
}

// Len returns the number of set bits.
func (b *Bitset) Len() int {
	return b.count
}

// Contains reports whether tid is set.
func (b *Bitset) Contains(tid int) bool {
	if tid < 0 || tid >= b.size {
		return false
	}
	return b.words[tid>>6]&(1<<(uint(tid)&63)) != 0
}

// Each calls fn for every set tid in ascending order.
func (b *Bitset) Each(fn func(tid int)) {
	for i, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(i<<6 + tz)
			w &= w - 1
		}
	}
}

// Intersect returns b ∩ other. Two bitsets are combined word by word;
// anything else falls back to probing from the smaller side.
func (b *Bitset) Intersect(other Set) Set {
	o, ok := other.(*Bitset)
	if !ok {
		return intersectGeneric(b, other)
	}

	n := len(b.words)
	if len(o.words) < n {
		n = len(o.words)
	}
	size := b.size
	if o.size < size {
		size = o.size
	}
	out := &Bitset{words: make([]uint64, (size+63)/64), size: size}
	if b.count == 0 || o.count == 0 {
		return out
	}
	for i := 0; i < n && i < len(out.words); i++ {
		w := b.words[i] & o.words[i]
		out.words[i] = w
		out.count += bits.OnesCount64(w)
	}
	return out
}
