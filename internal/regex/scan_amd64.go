//go:build amd64

package regex

import (
	"golang.org/x/sys/cpu"

	"github.com/coregx/pcomb/internal/bitset"
)

// hasFastScan gates the word-at-a-time scan on golang.org/x/sys/cpu.X86.Has*
// feature detection: on amd64 we prefer it when SSE2 is available (true on
// every amd64 chip Go supports, but the check keeps the dispatch shape
// honest and the same on every platform this library runs on).
var hasFastScan = cpu.X86.HasSSE2

// scanRunFast scans 8 bytes at a time using a membership table lookup,
// falling back to scanRunGeneric's byte loop for the remainder. It must
// return results identical to scanRunGeneric for every input; the feature
// gate only changes strategy, never semantics.
func scanRunFast(set *bitset.BitSet, input string, from int) int {
	i := from
	for i+8 <= len(input) {
		allMatch := true
		for k := 0; k < 8; k++ {
			if !set.Has(input[i+k]) {
				allMatch = false
				break
			}
		}
		if !allMatch {
			break
		}
		i += 8
	}
	for i < len(input) && set.Has(input[i]) {
		i++
	}
	return i
}
