package regex

import "github.com/coregx/pcomb/internal/bitset"

// scanRun returns the index of the first byte in input[from:] that is not
// a member of set, or len(input) if the whole remainder matches. It
// accelerates Repeat(OneOf(set), ...) matching for the derived helpers
// (Digits, Letters, Whitespace, AlphaNumerics) without changing their
// observable result — see scanRunFast/scanRunGeneric for the dispatch.
func scanRun(set *bitset.BitSet, input string, from int) int {
	if hasFastScan {
		return scanRunFast(set, input, from)
	}
	return scanRunGeneric(set, input, from)
}

// scanRunGeneric is the portable byte-at-a-time implementation; it is also
// the reference oracle scanRunFast must agree with.
func scanRunGeneric(set *bitset.BitSet, input string, from int) int {
	i := from
	for i < len(input) && set.Has(input[i]) {
		i++
	}
	return i
}
