package regex

import "github.com/coregx/ahocorasick"

// Compiled is an immutable matcher derived from a Regex AST. Two
// structurally equal ASTs compile to behaviourally indistinguishable
// Compiled values; Compiled is immutable after compilation and safe to
// share and use concurrently across goroutines.
type Compiled struct {
	ast Regex

	// literal and automaton accelerate the common case where ast reduces
	// to a concrete byte sequence (ToLiteral succeeds): automaton is a
	// single-pattern Aho-Corasick search used as the matcher itself rather
	// than falling through the general recursive Test, building a literal
	// prefilter whenever literals are available (see DESIGN.md).
	literal   []byte
	automaton *ahocorasick.Automaton
}

// Compile derives a Compiled matcher from a Regex AST.
func Compile(r Regex) *Compiled {
	c := &Compiled{ast: r}
	if lit, ok := ToLiteral(r); ok && len(lit) > 0 {
		c.literal = lit
		builder := ahocorasick.NewBuilder()
		builder.AddPattern(lit)
		if auto, err := builder.Build(); err == nil {
			c.automaton = auto
		}
	}
	return c
}

// Test attempts to match c's regex starting at index in input. It returns
// the index immediately after the match, or one of the NeedMoreInput /
// NotMatched sentinels.
func (c *Compiled) Test(index int, input string) int {
	if c.automaton != nil {
		return c.testLiteral(index, input)
	}
	return test(c.ast, index, input)
}

// testLiteral matches c.literal at index using the Aho-Corasick automaton
// as a fast-path exact check: a literal regex has no alternation, so an
// automaton match that does not start exactly at index proves the regex
// cannot match there without re-running the general byte comparison.
func (c *Compiled) testLiteral(index int, input string) int {
	if index > len(input) {
		return NotMatched
	}
	need := index + len(c.literal)
	if need > len(input) {
		// Input may still grow to satisfy the literal; only report
		// NeedMoreInput if the bytes seen so far are a prefix of it.
		if input[index:] == string(c.literal[:len(input)-index]) {
			return NeedMoreInput
		}
		return NotMatched
	}
	m := c.automaton.Find([]byte(input[index:need]), 0)
	if m == nil || m.Start != 0 || m.End != len(c.literal) {
		return NotMatched
	}
	return need
}

// Matches reports whether c's regex matches the whole of s:
// matches is defined as test(0, s) = s.length.
func (c *Compiled) Matches(s string) bool {
	return c.Test(0, s) == len(s)
}

// test is the direct structural interpreter: each of the six constructors
// compiles to a fixed, deterministic evaluation rule. No NFA is built
// because the supported operators compile directly.
func test(r Regex, index int, input string) int {
	switch n := r.(type) {
	case Succeed:
		return index

	case OneOf:
		if index >= len(input) {
			return NeedMoreInput
		}
		if n.Set.Has(input[index]) {
			return index + 1
		}
		return NotMatched

	case Sequence:
		li := test(n.L, index, input)
		if li == NeedMoreInput || li == NotMatched {
			return li
		}
		return test(n.R, li, input)

	case And:
		return testAnd(n, index, input)

	case Or:
		return testOr(n, index, input)

	case Repeat:
		return testRepeat(n, index, input)

	default:
		return NotMatched
	}
}

func testAnd(n And, index int, input string) int {
	li := test(n.L, index, input)
	if li == NeedMoreInput {
		return NeedMoreInput
	}
	ri := test(n.R, index, input)
	if ri == NeedMoreInput {
		return NeedMoreInput
	}
	if li == NotMatched || ri == NotMatched {
		return NotMatched
	}
	if li != ri {
		return NotMatched
	}
	return li
}

func testOr(n Or, index int, input string) int {
	li := test(n.L, index, input)
	ri := test(n.R, index, input)

	if li == NeedMoreInput || ri == NeedMoreInput {
		return NeedMoreInput
	}
	if li == NotMatched && ri == NotMatched {
		return NotMatched
	}
	if li == NotMatched {
		return ri
	}
	if ri == NotMatched {
		return li
	}
	// Both matched: take the longer, ties go to L.
	if ri > li {
		return ri
	}
	return li
}

func testRepeat(n Repeat, index int, input string) int {
	// Fast path: Repeat(OneOf(set), ...) with no upper bound is the shape
	// produced by Digits/Letters/Whitespace/AlphaNumerics. scanRun finds
	// the whole run in one pass instead of one test() call per byte.
	if oneOf, ok := n.R.(OneOf); ok && n.Max < 0 && index <= len(input) {
		end := scanRun(oneOf.Set, input, index)
		if end-index < n.Min {
			return NotMatched
		}
		return end
	}

	idx := index
	count := 0
	for n.Max < 0 || count < n.Max {
		res := test(n.R, idx, input)
		if res == NeedMoreInput {
			if count < n.Min {
				return NeedMoreInput
			}
			break
		}
		if res == NotMatched {
			break
		}
		progressed := res != idx
		idx = res
		count++
		if !progressed {
			// A zero-length iteration would repeat identically forever;
			// count it once and stop.
			break
		}
	}
	if count < n.Min {
		return NotMatched
	}
	return idx
}
