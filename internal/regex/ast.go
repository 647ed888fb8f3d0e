// Package regex implements the small regex sub-language used to accelerate
// character-class and literal matching inside the parser/printer
// combinators: Succeed, OneOf, And, Or, Sequence and Repeat, compiled
// directly to a deterministic matcher (no NFA construction — the supported
// operators compile structurally, see Compile).
package regex

import "github.com/coregx/pcomb/internal/bitset"

// Sentinel results for Compiled.Test.
const (
	// NeedMoreInput indicates the match could not be resolved because the
	// input ran out before a final verdict (match or no-match) could be
	// reached.
	NeedMoreInput = -2
	// NotMatched indicates the regex definitely does not match at the
	// given index, regardless of any further input.
	NotMatched = -1
)

// Regex is the closed set of regex AST node kinds. It is immutable and
// free of cycles; nothing in this package introduces recursion through a
// lazy/thunk node the way the parser AST's SuspendLazy does; regexes built
// by this library's combinators are always finite trees.
type Regex interface {
	isRegex()
}

// Succeed matches the empty prefix; it always consumes zero code units.
type Succeed struct{}

func (Succeed) isRegex() {}

// OneOf matches a single code unit whose value is a member of Set.
type OneOf struct {
	Set *bitset.BitSet
}

func (OneOf) isRegex() {}

// And is the intersection of L and R: both must match the same single
// prefix of equal consumed length.
type And struct {
	L, R Regex
}

func (And) isRegex() {}

// Or is the union of L and R: matches if either side matches, taking the
// longer match; ties go to L.
type Or struct {
	L, R Regex
}

func (Or) isRegex() {}

// Sequence matches L, then continues matching R from the new index.
type Sequence struct {
	L, R Regex
}

func (Sequence) isRegex() {}

// Repeat is greedy repetition of R, at least Min times and at most Max
// times. Max < 0 means unbounded.
type Repeat struct {
	R        Regex
	Min, Max int
}

func (Repeat) isRegex() {}

// unboundedMax is the sentinel stored in Repeat.Max for "no upper bound":
// max defaults to infinity if absent.
const unboundedMax = -1
