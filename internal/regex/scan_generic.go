//go:build !amd64

package regex

import "github.com/coregx/pcomb/internal/bitset"

// hasFastScan is always false on non-amd64 platforms; scanRun falls
// through to the portable byte-at-a-time implementation.
const hasFastScan = false

// scanRunFast is unused on this platform (hasFastScan is always false) but
// must exist so scan.go's dispatch compiles uniformly across platforms.
func scanRunFast(set *bitset.BitSet, input string, from int) int {
	return scanRunGeneric(set, input, from)
}
