package recursive

import (
	"errors"
	"testing"

	"github.com/coregx/pcomb/internal/bitset"
	"github.com/coregx/pcomb/internal/regex"
	"github.com/coregx/pcomb/parser"
	"github.com/coregx/pcomb/perr"
	"github.com/coregx/pcomb/pval"
)

func digitParser() parser.Node {
	return parser.CharIn{Set: bitset.Range('0', '9'), Err: "expected digit"}
}

func TestSucceedAndFail(t *testing.T) {
	v, err := Run(parser.Succeed{Value: 42}, "")
	if err != nil || v != 42 {
		t.Fatalf("Succeed: got %v, %v", v, err)
	}

	_, err = Run(parser.Fail{Err: "nope"}, "x")
	if err == nil {
		t.Fatalf("expected failure")
	}
	var f *perr.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *perr.Failure, got %T", err)
	}
}

func TestNamedTracksChain(t *testing.T) {
	n := parser.Named{Name: "digit", Inner: digitParser()}
	_, err := Run(n, "x")
	var f *perr.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *perr.Failure, got %T", err)
	}
	if len(f.NameChain) != 1 || f.NameChain[0] != "digit" {
		t.Fatalf("NameChain = %v", f.NameChain)
	}
}

func TestZipFamily(t *testing.T) {
	a := parser.CharIn{Set: bitset.FromBytes('a'), Err: "a"}
	b := parser.CharIn{Set: bitset.FromBytes('b'), Err: "b"}

	v, err := Run(parser.Zip{L: a, R: b}, "ab")
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	pair, ok := v.(pval.Pair)
	if !ok || pair.First != "a" || pair.Second != "b" {
		t.Fatalf("Zip value = %#v", v)
	}

	v, err = Run(parser.ZipLeft{L: a, R: b}, "ab")
	if err != nil || v != "a" {
		t.Fatalf("ZipLeft = %v, %v", v, err)
	}

	v, err = Run(parser.ZipRight{L: a, R: b}, "ab")
	if err != nil || v != "b" {
		t.Fatalf("ZipRight = %v, %v", v, err)
	}
}

func TestOrElseBacktracksOnlyWhenPermitted(t *testing.T) {
	ab := parser.Zip{
		L: parser.CharIn{Set: bitset.FromBytes('a'), Err: "a"},
		R: parser.CharIn{Set: bitset.FromBytes('b'), Err: "b"},
	}
	cd := parser.Zip{
		L: parser.CharIn{Set: bitset.FromBytes('c'), Err: "c"},
		R: parser.CharIn{Set: bitset.FromBytes('d'), Err: "d"},
	}

	// ab fails after consuming 'a'; without Backtrack, the failure should
	// propagate rather than falling through to cd.
	plain := parser.OrElse{L: ab, RThunk: func() parser.Node { return cd }}
	_, err := Run(plain, "ac")
	if err == nil {
		t.Fatalf("expected propagated failure without backtracking")
	}
	var f *perr.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *perr.Failure, got %T", err)
	}

	// Wrapping the left branch in Backtrack restores the index so cd is
	// attempted. cd also fails ('a' != 'c'), giving AllBranchesFailed.
	bt := parser.OrElse{L: parser.Backtrack{Inner: ab}, RThunk: func() parser.Node { return cd }}
	_, err = Run(bt, "ac")
	var all *perr.AllBranchesFailed
	if !errors.As(err, &all) {
		t.Fatalf("expected *perr.AllBranchesFailed, got %T (%v)", err, err)
	}
}

func TestOrElseSucceedsOnRightAlternative(t *testing.T) {
	a := parser.CharIn{Set: bitset.FromBytes('a'), Err: "a"}
	b := parser.CharIn{Set: bitset.FromBytes('b'), Err: "b"}
	n := parser.OrElse{L: a, RThunk: func() parser.Node { return b }}
	v, err := Run(n, "b")
	if err != nil || v != "b" {
		t.Fatalf("OrElse right = %v, %v", v, err)
	}
}

func TestOptionalSwallowsBacktrackableFailure(t *testing.T) {
	n := parser.Optional{Inner: parser.Backtrack{Inner: digitParser()}}
	v, err := Run(n, "x")
	if err != nil {
		t.Fatalf("Optional: %v", err)
	}
	opt, ok := v.(pval.Option)
	if !ok || opt.Present {
		t.Fatalf("Optional value = %#v", v)
	}
}

func TestOptionalPropagatesNonBacktrackableFailure(t *testing.T) {
	ab := parser.Zip{
		L: parser.CharIn{Set: bitset.FromBytes('a'), Err: "a"},
		R: parser.CharIn{Set: bitset.FromBytes('b'), Err: "b"},
	}
	n := parser.Optional{Inner: ab}
	_, err := Run(n, "ac")
	if err == nil {
		t.Fatalf("expected propagated failure")
	}
}

func TestRepeatMinAndMax(t *testing.T) {
	d := parser.Backtrack{Inner: digitParser()}
	n := parser.Repeat{Inner: d, Min: 2, Max: 4}

	v, err := Run(n, "123456")
	if err != nil {
		t.Fatalf("Repeat: %v", err)
	}
	vals, ok := v.([]any)
	if !ok || len(vals) != 4 {
		t.Fatalf("Repeat matched %v, want 4 values", v)
	}

	_, err = Run(n, "1x")
	if err == nil {
		t.Fatalf("expected failure: fewer than Min matches")
	}
}

func TestRepeatUntil(t *testing.T) {
	d := parser.Backtrack{Inner: digitParser()}
	stop := parser.Backtrack{Inner: parser.CharIn{Set: bitset.FromBytes(';'), Err: ";"}}
	n := parser.RepeatUntil{Inner: d, Stop: stop}

	v, err := Run(n, "12;")
	if err != nil {
		t.Fatalf("RepeatUntil: %v", err)
	}
	vals := v.([]any)
	if len(vals) != 2 {
		t.Fatalf("RepeatUntil matched %v", v)
	}
}

func TestRepeatWithSep(t *testing.T) {
	d := parser.Backtrack{Inner: digitParser()}
	sep := parser.Backtrack{Inner: parser.CharIn{Set: bitset.FromBytes(','), Err: ","}}
	n := parser.RepeatWithSep{Inner: d, Sep: sep, AtLeastOne: true}

	v, err := Run(n, "1,2,3x")
	if err != nil {
		t.Fatalf("RepeatWithSep: %v", err)
	}
	vals := v.([]any)
	if len(vals) != 3 {
		t.Fatalf("RepeatWithSep matched %v", v)
	}
}

func TestRepeatWithSepAtLeastOneFalseAllowsEmpty(t *testing.T) {
	d := parser.Backtrack{Inner: digitParser()}
	sep := parser.Backtrack{Inner: parser.CharIn{Set: bitset.FromBytes(','), Err: ","}}
	n := parser.RepeatWithSep{Inner: d, Sep: sep, AtLeastOne: false}

	v, err := Run(n, "x")
	if err != nil {
		t.Fatalf("RepeatWithSep: %v", err)
	}
	vals := v.([]any)
	if len(vals) != 0 {
		t.Fatalf("expected empty result, got %v", v)
	}
}

func TestNotSucceedsOnFailureOfInner(t *testing.T) {
	n := parser.Not{Inner: digitParser(), Err: "unexpected digit"}
	_, err := Run(n, "x")
	if err != nil {
		t.Fatalf("Not: %v", err)
	}
	_, err = Run(n, "5")
	if err == nil {
		t.Fatalf("expected Not to fail when inner succeeds")
	}
}

func TestEndAndIndex(t *testing.T) {
	_, err := Run(parser.End{}, "")
	if err != nil {
		t.Fatalf("End on empty input: %v", err)
	}
	_, err = Run(parser.End{}, "x")
	var nc *perr.NotConsumedAll
	if !errors.As(err, &nc) {
		t.Fatalf("expected *perr.NotConsumedAll, got %T", err)
	}

	n := parser.ZipLeft{L: parser.Index{}, R: digitParser()}
	v, err := Run(n, "5")
	if err != nil || v != 0 {
		t.Fatalf("Index = %v, %v", v, err)
	}
}

func TestCaptureStringAndParseRegex(t *testing.T) {
	compiled := regex.Compile(regex.Digits())
	n := parser.CaptureString{Inner: parser.ParseRegex{Compiled: compiled, Err: "digits"}}
	v, err := Run(n, "123abc")
	if err != nil || v != "123" {
		t.Fatalf("CaptureString(ParseRegex) = %v, %v", v, err)
	}
}

func TestParseRegexLastChar(t *testing.T) {
	compiled := regex.Compile(regex.Digits())
	n := parser.ParseRegexLastChar{Compiled: compiled, Err: "digits"}
	v, err := Run(n, "129x")
	if err != nil || v != byte('9') {
		t.Fatalf("ParseRegexLastChar = %v, %v", v, err)
	}
}

func TestParseRegexNeedMoreInputBecomesUnexpectedEOF(t *testing.T) {
	compiled := regex.Compile(regex.String("abc"))
	n := parser.ParseRegex{Compiled: compiled, Err: "abc"}
	_, err := Run(n, "ab")
	var eof *perr.UnexpectedEndOfInput
	if !errors.As(err, &eof) {
		t.Fatalf("expected *perr.UnexpectedEndOfInput, got %T (%v)", err, err)
	}
}

func TestAnyCharAndCharNotIn(t *testing.T) {
	v, err := Run(parser.AnyChar{}, "z")
	if err != nil || v != byte('z') {
		t.Fatalf("AnyChar = %v, %v", v, err)
	}
	_, err = Run(parser.AnyChar{}, "")
	var eof *perr.UnexpectedEndOfInput
	if !errors.As(err, &eof) {
		t.Fatalf("expected EOF, got %T", err)
	}

	n := parser.CharNotIn{Set: bitset.FromBytes('x'), Err: "not x"}
	v, err = Run(n, "y")
	if err != nil || v != "y" {
		t.Fatalf("CharNotIn = %v, %v", v, err)
	}
	_, err = Run(n, "x")
	if err == nil {
		t.Fatalf("expected CharNotIn to reject member byte")
	}
}

func TestMapErrorAndFilter(t *testing.T) {
	mapped := parser.MapError{
		Inner: digitParser(),
		F:     func(e any) any { return "mapped: " + e.(string) },
	}
	_, err := Run(mapped, "x")
	var f *perr.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *perr.Failure, got %T", err)
	}
	if f.Err != "mapped: expected digit" {
		t.Fatalf("MapError did not rewrite: %v", f.Err)
	}

	filtered := parser.Filter{
		Inner: digitParser(),
		Pred:  func(v any) bool { return v.(string) != "0" },
		Err:   "zero not allowed",
	}
	_, err = Run(filtered, "0")
	if err == nil {
		t.Fatalf("expected Filter rejection")
	}
	v, err := Run(filtered, "5")
	if err != nil || v != "5" {
		t.Fatalf("Filter accept = %v, %v", v, err)
	}
}

func TestTransformEitherPropagatesConversionError(t *testing.T) {
	n := parser.TransformEither{
		Inner: digitParser(),
		F: func(v any) (any, error) {
			return nil, errors.New("always fails")
		},
	}
	_, err := Run(n, "5")
	var f *perr.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *perr.Failure, got %T", err)
	}
}

func TestSuspendLazyMemoizesAndSupportsRecursion(t *testing.T) {
	var node *parser.SuspendLazy
	node = &parser.SuspendLazy{Thunk: func() parser.Node {
		return parser.OrElse{
			L: parser.Backtrack{Inner: parser.Zip{L: digitParser(), R: node}},
			RThunk: func() parser.Node {
				return digitParser()
			},
		}
	}}
	v, err := Run(node, "123")
	if err != nil {
		t.Fatalf("recursive grammar: %v", err)
	}
	if v == nil {
		t.Fatalf("expected a value")
	}
}
