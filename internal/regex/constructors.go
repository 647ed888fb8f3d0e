package regex

import "github.com/coregx/pcomb/internal/bitset"

// Character sets fixing the semantics of the derived Syntax helpers.
var (
	digitSet       = bitset.Range('0', '9')
	letterSet      = bitset.Range('a', 'z').Union(bitset.Range('A', 'Z'))
	whitespaceSet  = bitset.FromBytes(' ', '\t', '\r', '\n', '\v', '\f')
	alphaNumSetVal = digitSet.Union(letterSet)
)

// Char matches a single literal byte.
func Char(c byte) Regex {
	return OneOf{Set: bitset.FromBytes(c)}
}

// CharInSet matches a single code unit that is a member of set.
func CharInSet(set *bitset.BitSet) Regex {
	return OneOf{Set: set}
}

// CharIn matches a single code unit equal to the first byte of any of cs:
// charIn cs = OneOf(bitset(cs)).
func CharIn(cs ...string) Regex {
	return OneOf{Set: bitset.FromStrings(cs...)}
}

// CharNotIn matches a single code unit whose first byte is in none of cs:
// charNotIn cs = OneOf(complement(bitset(cs))).
func CharNotIn(cs ...string) Regex {
	return OneOf{Set: bitset.FromStrings(cs...).Complement()}
}

// AnyChar matches any single code unit in 0..255.
func AnyChar() Regex {
	return OneOf{Set: bitset.Range(0, 255)}
}

// AnyDigit matches a single ASCII digit 0-9.
func AnyDigit() Regex { return OneOf{Set: digitSet} }

// AnyLetter matches a single ASCII letter A-Z or a-z.
func AnyLetter() Regex { return OneOf{Set: letterSet} }

// AnyWhitespace matches a single whitespace code unit (space, tab, CR, LF,
// VT, FF).
func AnyWhitespace() Regex { return OneOf{Set: whitespaceSet} }

// AnyAlphaNumeric matches a single letter or digit.
func AnyAlphaNumeric() Regex { return OneOf{Set: alphaNumSetVal} }

// Digits matches zero or more ASCII digits, greedily.
func Digits() Regex { return Repeat{R: AnyDigit(), Min: 0, Max: unboundedMax} }

// Letters matches zero or more ASCII letters, greedily.
func Letters() Regex { return Repeat{R: AnyLetter(), Min: 0, Max: unboundedMax} }

// AlphaNumerics matches zero or more letters/digits, greedily.
func AlphaNumerics() Regex { return Repeat{R: AnyAlphaNumeric(), Min: 0, Max: unboundedMax} }

// Whitespace matches zero or more whitespace code units, greedily; it
// matches the empty string too.
func Whitespace() Regex { return Repeat{R: AnyWhitespace(), Min: 0, Max: unboundedMax} }

// String matches the exact literal string s:
// string s = Sequence(char(s0), ..., char(sn)).
func String(s string) Regex {
	var r Regex = Succeed{}
	for i := len(s) - 1; i >= 0; i-- {
		r = Sequence{L: Char(s[i]), R: r}
	}
	return r
}

// SequenceAll chains rs left-to-right with Sequence, Succeed if rs is empty.
func SequenceAll(rs ...Regex) Regex {
	if len(rs) == 0 {
		return Succeed{}
	}
	r := rs[len(rs)-1]
	for i := len(rs) - 2; i >= 0; i-- {
		r = Sequence{L: rs[i], R: r}
	}
	return r
}

// AndAll intersects rs left-to-right.
func AndAll(rs ...Regex) Regex {
	if len(rs) == 0 {
		return Succeed{}
	}
	r := rs[0]
	for _, n := range rs[1:] {
		r = And{L: r, R: n}
	}
	return r
}

// OrAll unions rs left-to-right, ties preferring the leftmost alternative.
func OrAll(rs ...Regex) Regex {
	if len(rs) == 0 {
		return Succeed{}
	}
	r := rs[0]
	for _, n := range rs[1:] {
		r = Or{L: r, R: n}
	}
	return r
}

// AtLeast matches r n or more times, greedily: "atLeast n = Repeat(min=n,
// max=infinity)".
func AtLeast(n int, r Regex) Regex {
	return Repeat{R: r, Min: n, Max: unboundedMax}
}

// AtMost matches r at most n times, greedily.
func AtMost(n int, r Regex) Regex {
	return Repeat{R: r, Min: 0, Max: n}
}

// Between matches r at least a and at most b times, greedily: "between a b
// = Repeat(min=a, max=b)".
func Between(a, b int, r Regex) Regex {
	return Repeat{R: r, Min: a, Max: b}
}

// Filter builds a regex that matches r only where pred accepts the single
// matched byte; it is realised as And(r, OneOf(set)) where set contains
// exactly the bytes pred accepts, keeping Filter within the intersection
// semantics of And rather than introducing a seventh AST node.
func Filter(r Regex, pred func(byte) bool) Regex {
	set := bitset.New()
	for v := 0; v < 256; v++ {
		if pred(byte(v)) {
			set.Add(byte(v))
		}
	}
	return And{L: r, R: OneOf{Set: set}}
}
