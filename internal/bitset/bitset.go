// Package bitset provides a dense 256-value boolean set used by the regex
// compiler for character classes (digit, letter, whitespace, and their
// complements and unions).
//
// The set covers code units 0..255; it has no notion of Unicode code points
// above that range, matching this library's ASCII-only character-class
// scope.
package bitset

import "math/bits"

// BitSet is a dense set of byte values in 0..255, backed by four 64-bit
// words. All operations are O(1) except ToSlice/Iter, which are O(256).
type BitSet struct {
	words [4]uint64
}

// New returns an empty BitSet.
func New() *BitSet {
	return &BitSet{}
}

// FromBytes returns a BitSet containing exactly the given byte values.
func FromBytes(bs ...byte) *BitSet {
	b := New()
	for _, v := range bs {
		b.Add(v)
	}
	return b
}

// FromStrings builds a BitSet from the first byte of each string in ss:
// construction from an iterable of single-character strings uses the
// first code unit of each string.
func FromStrings(ss ...string) *BitSet {
	b := New()
	for _, s := range ss {
		if len(s) == 0 {
			continue
		}
		b.Add(s[0])
	}
	return b
}

// Range returns a BitSet containing every byte in [lo, hi] inclusive.
func Range(lo, hi byte) *BitSet {
	b := New()
	for v := int(lo); v <= int(hi); v++ {
		b.Add(byte(v))
	}
	return b
}

func wordIndex(v byte) (word int, bit uint64) {
	return int(v) >> 6, uint64(1) << (uint(v) & 63)
}

// Add inserts v into the set.
func (b *BitSet) Add(v byte) {
	w, bit := wordIndex(v)
	b.words[w] |= bit
}

// Has reports whether v is a member of the set. Values are always in
// 0..255, so there is no out-of-range case to report for a byte-typed
// argument.
func (b *BitSet) Has(v byte) bool {
	w, bit := wordIndex(v)
	return b.words[w]&bit != 0
}

// Union returns a new BitSet containing every value in b or other.
func (b *BitSet) Union(other *BitSet) *BitSet {
	out := &BitSet{}
	for i := range out.words {
		out.words[i] = b.words[i] | other.words[i]
	}
	return out
}

// Intersect returns a new BitSet containing every value in both b and other.
func (b *BitSet) Intersect(other *BitSet) *BitSet {
	out := &BitSet{}
	for i := range out.words {
		out.words[i] = b.words[i] & other.words[i]
	}
	return out
}

// Complement returns a new BitSet containing every value in 0..255 not in b.
func (b *BitSet) Complement() *BitSet {
	out := &BitSet{}
	for i := range out.words {
		out.words[i] = ^b.words[i]
	}
	return out
}

// IsEmpty reports whether the set contains no values.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of values in the set.
func (b *BitSet) Len() int {
	n := 0
	for _, w := range b.words {
		for w != 0 {
			w &= w - 1
			n++
		}
	}
	return n
}

// ToSlice returns the set's values in ascending order.
func (b *BitSet) ToSlice() []byte {
	out := make([]byte, 0, b.Len())
	b.Iter(func(v byte) {
		out = append(out, v)
	})
	return out
}

// Iter calls f for every value in the set, in ascending order.
func (b *BitSet) Iter(f func(byte)) {
	for w := 0; w < 4; w++ {
		word := b.words[w]
		for word != 0 {
			idx := bits.TrailingZeros64(word)
			f(byte(w*64 + idx))
			word &^= 1 << uint(idx)
		}
	}
}

// Singleton reports whether the set contains exactly one value, returning
// it. Used by the regex compiler's toLiteral reduction.
func (b *BitSet) Singleton() (byte, bool) {
	var found byte
	count := 0
	b.Iter(func(v byte) {
		found = v
		count++
	})
	return found, count == 1
}

