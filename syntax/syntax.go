// Package syntax is the façade pairing a parser.Node with a printer.Node
// into a single, type-safe Syntax[V]: every combinator here builds both
// halves consistently so a value produced by the parser half is exactly
// what the printer half expects to consume.
//
// Go has no higher-kinded types or declaration-site variance, so a
// variance-annotated F[-I, +E, +O, +V] shape is realised differently: the
// AST packages (parser, printer) carry untyped `any` payloads, and the
// generic functions in this package perform the necessary type assertions
// at the boundary — resolved with ordinary Go generics rather than
// invented type-level machinery.
package syntax

import (
	"errors"

	"github.com/coregx/pcomb/internal/bitset"
	"github.com/coregx/pcomb/internal/regex"
	"github.com/coregx/pcomb/parser"
	"github.com/coregx/pcomb/printer"
	"github.com/coregx/pcomb/pval"
)

// Syntax pairs a Parser description producing V with a Printer description
// consuming V.
type Syntax[V any] struct {
	P  parser.Node
	Pr printer.Node
}

// Pair is the typed result of Zip, converted from/to pval.Pair at the
// parser/printer boundary.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Option is the typed result of Optional, converted from/to pval.Option.
type Option[V any] struct {
	Value   V
	Present bool
}

// Either is the typed result of OrElseEither, converted from/to pval.Either.
type Either[A, B any] struct {
	IsLeft bool
	Left   A
	Right  B
}

var errRejected = errors.New("syntax: value rejected")

// Succeed builds a Syntax that always succeeds with v on parse and writes
// nothing on print, regardless of its input value.
func Succeed[V any](v V) Syntax[V] {
	return Syntax[V]{P: parser.Succeed{Value: v}, Pr: printer.SucceedUnit{}}
}

// Fail builds a Syntax that always fails with err, on both parse and print.
func Fail[V any](err any) Syntax[V] {
	return Syntax[V]{P: parser.Fail{Err: err}, Pr: printer.Fail{Err: err}}
}

// Named attaches name to s's parser scope; failures within s report name
// in their error's NameChain. Printer AST has no Named analogue: names
// are purely a parse-side diagnostic concern.
func Named[V any](s Syntax[V], name string) Syntax[V] {
	return Syntax[V]{P: parser.Named{Inner: s.P, Name: name}, Pr: s.Pr}
}

// Lazy defers building thunk()'s AST until first use on each side,
// enabling recursive grammars: SuspendLazy is the only node kind allowed
// to introduce a cycle once forced.
func Lazy[V any](thunk func() Syntax[V]) Syntax[V] {
	return Syntax[V]{
		P:  &parser.SuspendLazy{Thunk: func() parser.Node { return thunk().P }},
		Pr: &printer.SuspendLazy{Thunk: func() printer.Node { return thunk().Pr }},
	}
}

// Backtrack forces auto-backtracking on for s's parser regardless of the
// enclosing scope. Printer AST has no corresponding node (backtracking is
// purely a parse-side concept).
func Backtrack[V any](s Syntax[V]) Syntax[V] {
	return Syntax[V]{P: parser.Backtrack{Inner: s.P}, Pr: s.Pr}
}

// SetAutoBacktracking sets the auto-backtracking flag to flag for s's
// parser scope.
func SetAutoBacktracking[V any](s Syntax[V], flag bool) Syntax[V] {
	return Syntax[V]{P: parser.SetAutoBacktracking{Inner: s.P, Flag: flag}, Pr: s.Pr}
}

// MapError rewrites a failing s's error through f, on both parse and print.
func MapError[V any](s Syntax[V], f func(any) any) Syntax[V] {
	return Syntax[V]{P: parser.MapError{Inner: s.P, F: f}, Pr: printer.MapError{Inner: s.Pr, F: f}}
}

// Map transforms s's value through a total, invertible pair of functions.
// Use Transform instead when either direction can fail.
func Map[V, W any](s Syntax[V], to func(V) W, from func(W) V) Syntax[W] {
	return Syntax[W]{
		P: parser.TransformEither{
			Inner: s.P,
			F:     func(v any) (any, error) { return to(v.(V)), nil },
		},
		Pr: printer.Contramap{
			Inner: s.Pr,
			F:     func(w any) any { return from(w.(W)) },
		},
	}
}

// Transform transforms s's value through a fallible pair of functions (a
// TransformEither/ContramapEither pairing). err is the printer-side
// failure reported when from rejects a value.
func Transform[V, W any](s Syntax[V], to func(V) (W, error), from func(W) (V, error), err any) Syntax[W] {
	return Syntax[W]{
		P: parser.TransformEither{
			Inner: s.P,
			F:     func(v any) (any, error) { return to(v.(V)) },
		},
		Pr: printer.ContramapEither{
			Inner: s.Pr,
			F:     func(w any) (any, error) { return from(w.(W)) },
			Err:   err,
		},
	}
}

// Filter rejects s's value (on both parse and print) unless pred accepts
// it, failing with err at the entry index (parse) or immediately (print).
func Filter[V any](s Syntax[V], pred func(V) bool, err any) Syntax[V] {
	return Syntax[V]{
		P: parser.Filter{
			Inner: s.P,
			Pred:  func(v any) bool { return pred(v.(V)) },
			Err:   err,
		},
		Pr: printer.ContramapEither{
			Inner: s.Pr,
			F: func(v any) (any, error) {
				if pred(v.(V)) {
					return v, nil
				}
				return nil, errRejected
			},
			Err: err,
		},
	}
}

// Zip runs a then b, yielding both values as a Pair.
func Zip[A, B any](a Syntax[A], b Syntax[B]) Syntax[Pair[A, B]] {
	return Syntax[Pair[A, B]]{
		P: parser.TransformEither{
			Inner: parser.Zip{L: a.P, R: b.P},
			F: func(v any) (any, error) {
				p := v.(pval.Pair)
				return Pair[A, B]{First: p.First.(A), Second: p.Second.(B)}, nil
			},
		},
		Pr: printer.Contramap{
			Inner: printer.Zip{L: a.Pr, R: b.Pr},
			F: func(v any) any {
				p := v.(Pair[A, B])
				return pval.Pair{First: p.First, Second: p.Second}
			},
		},
	}
}

// ZipLeft runs a then b, yielding only a's value. b's printer always
// receives bRightVal: b's parsed value is discarded, so printing must be
// told what value to reconstruct in its place.
func ZipLeft[A, B any](a Syntax[A], b Syntax[B], bRightVal B) Syntax[A] {
	return Syntax[A]{
		P:  parser.ZipLeft{L: a.P, R: b.P},
		Pr: printer.ZipLeft{L: a.Pr, R: b.Pr, RightVal: bRightVal},
	}
}

// ZipRight runs a then b, yielding only b's value. a's printer always
// receives aLeftVal, symmetric to ZipLeft.
func ZipRight[A, B any](a Syntax[A], aLeftVal A, b Syntax[B]) Syntax[B] {
	return Syntax[B]{
		P:  parser.ZipRight{L: a.P, R: b.P},
		Pr: printer.ZipRight{L: a.Pr, R: b.Pr, LeftVal: aLeftVal},
	}
}

// OrElse tries a; on a backtrackable failure, tries b() instead. b is
// evaluated once when OrElse is called: true mutual recursion must go
// through Lazy, the only node kind allowed to introduce a cycle, since
// printer.OrElse (unlike parser.OrElse) has no thunk field.
func OrElse[V any](a Syntax[V], b func() Syntax[V]) Syntax[V] {
	bs := b()
	return Syntax[V]{
		P:  parser.OrElse{L: a.P, RThunk: func() parser.Node { return bs.P }},
		Pr: printer.OrElse{L: a.Pr, R: bs.Pr},
	}
}

// OrElseEither is OrElse but tags which side produced the value, allowing
// a and b to have different value types.
func OrElseEither[A, B any](a Syntax[A], b func() Syntax[B]) Syntax[Either[A, B]] {
	bs := b()
	return Syntax[Either[A, B]]{
		P: parser.TransformEither{
			Inner: parser.OrElseEither{L: a.P, RThunk: func() parser.Node { return bs.P }},
			F: func(v any) (any, error) {
				e := v.(pval.Either)
				if e.Left {
					return Either[A, B]{IsLeft: true, Left: e.Value.(A)}, nil
				}
				return Either[A, B]{IsLeft: false, Right: e.Value.(B)}, nil
			},
		},
		Pr: printer.Contramap{
			Inner: printer.OrElseEither{L: a.Pr, R: bs.Pr},
			F: func(v any) any {
				e := v.(Either[A, B])
				if e.IsLeft {
					return pval.Either{Left: true, Value: e.Left}
				}
				return pval.Either{Left: false, Value: e.Right}
			},
		},
	}
}

// Optional tries s; yields (value, true) on success or (zero, false) on a
// backtrackable failure.
func Optional[V any](s Syntax[V]) Syntax[Option[V]] {
	return Syntax[Option[V]]{
		P: parser.TransformEither{
			Inner: parser.Optional{Inner: s.P},
			F: func(v any) (any, error) {
				o := v.(pval.Option)
				if !o.Present {
					return Option[V]{}, nil
				}
				return Option[V]{Value: o.Value.(V), Present: true}, nil
			},
		},
		Pr: printer.Contramap{
			Inner: printer.Optional{Inner: s.Pr},
			F: func(v any) any {
				o := v.(Option[V])
				return pval.Option{Value: o.Value, Present: o.Present}
			},
		},
	}
}

// Repeat matches/prints s between min and max times (max < 0 means
// unbounded), yielding the ordered sequence of values.
func Repeat[V any](s Syntax[V], min, max int) Syntax[[]V] {
	return Syntax[[]V]{
		P: parser.TransformEither{
			Inner: parser.Repeat{Inner: s.P, Min: min, Max: max},
			F:     func(v any) (any, error) { return toTypedSlice[V](v), nil },
		},
		Pr: printer.Contramap{
			Inner: printer.Repeat{Inner: s.Pr, Min: min, Max: max},
			F:     func(v any) any { return toAnySlice(v.([]V)) },
		},
	}
}

// AtLeast matches/prints s n or more times, greedily.
func AtLeast[V any](s Syntax[V], n int) Syntax[[]V] { return Repeat(s, n, -1) }

// AtMost matches/prints s at most n times, greedily.
func AtMost[V any](s Syntax[V], n int) Syntax[[]V] { return Repeat(s, 0, n) }

// Between matches/prints s at least a and at most b times, greedily.
func Between[V any](s Syntax[V], a, b int) Syntax[[]V] { return Repeat(s, a, b) }

// RepeatUntil repeats inner until stop succeeds; stop's own value is
// discarded on both parse and print.
func RepeatUntil[V, S any](inner Syntax[V], stop Syntax[S]) Syntax[[]V] {
	return Syntax[[]V]{
		P: parser.TransformEither{
			Inner: parser.RepeatUntil{Inner: inner.P, Stop: stop.P},
			F:     func(v any) (any, error) { return toTypedSlice[V](v), nil },
		},
		Pr: printer.Contramap{
			Inner: printer.RepeatUntil{Inner: inner.Pr, Stop: stop.Pr},
			F:     func(v any) any { return toAnySlice(v.([]V)) },
		},
	}
}

// RepeatWithSep parses inner, then repeats (sep, inner) pairs; sep's value
// is discarded. atLeastOne governs only the parser: printing an empty
// slice always writes nothing, regardless of atLeastOne.
func RepeatWithSep[V, S any](inner Syntax[V], sep Syntax[S], atLeastOne bool) Syntax[[]V] {
	return Syntax[[]V]{
		P: parser.TransformEither{
			Inner: parser.RepeatWithSep{Inner: inner.P, Sep: sep.P, AtLeastOne: atLeastOne},
			F:     func(v any) (any, error) { return toTypedSlice[V](v), nil },
		},
		Pr: printer.Contramap{
			Inner: printer.RepeatWithSep{Inner: inner.Pr, Sep: sep.Pr},
			F:     func(v any) any { return toAnySlice(v.([]V)) },
		},
	}
}

// Not succeeds with unit iff s fails to match, without consuming input;
// the printer side is vacuous (there is no value to reconstruct from a
// deliberately-absent match), so it always succeeds writing nothing.
func Not[V any](s Syntax[V], err any) Syntax[struct{}] {
	return Syntax[struct{}]{P: parser.Not{Inner: s.P, Err: err}, Pr: printer.SucceedUnit{}}
}

// End succeeds iff the parser's current index equals the input length.
func End() Syntax[struct{}] {
	return Syntax[struct{}]{P: parser.End{}, Pr: printer.SucceedUnit{}}
}

// Index yields the parser's current input index without consuming
// anything; vacuous on print (there is nothing to write for a position).
func Index() Syntax[int] {
	return Syntax[int]{P: parser.Index{}, Pr: printer.SucceedUnit{}}
}

// CaptureString runs s for its consumption only, yielding the substring it
// consumed. Printing a captured string writes it back verbatim, rather
// than re-deriving it by printing through s: a raw capture does not retain
// enough of s's internal structure to reconstruct a typed value to print.
func CaptureString[V any](s Syntax[V]) Syntax[string] {
	return Syntax[string]{
		P:  parser.CaptureString{Inner: s.P},
		Pr: printer.FromInput{Fn: func(v any) any { return v }},
	}
}

// CharIn matches/prints a single code unit that is a member of set.
func CharIn(set *bitset.BitSet, err any) Syntax[string] {
	compiled := regex.Compile(regex.CharInSet(set))
	return Syntax[string]{P: parser.CharIn{Set: set, Err: err}, Pr: printer.PrintRegex{Compiled: compiled, Err: err}}
}

// CharNotIn matches/prints a single code unit that is not a member of set.
func CharNotIn(set *bitset.BitSet, err any) Syntax[string] {
	compiled := regex.Compile(regex.CharInSet(set.Complement()))
	return Syntax[string]{P: parser.CharNotIn{Set: set, Err: err}, Pr: printer.PrintRegex{Compiled: compiled, Err: err}}
}

// AnyChar matches/prints any single code unit in 0..255.
func AnyChar() Syntax[byte] {
	compiled := regex.Compile(regex.AnyChar())
	return Syntax[byte]{P: parser.AnyChar{}, Pr: printer.PrintRegexChar{Compiled: compiled, Err: "expected any character"}}
}

// RegexString matches r and yields the matched substring; printing re-
// validates the given string against r before writing it.
func RegexString(r regex.Regex, err any) Syntax[string] {
	c := regex.Compile(r)
	return Syntax[string]{P: parser.ParseRegex{Compiled: c, Err: err}, Pr: printer.PrintRegex{Compiled: c, Err: err}}
}

// Literal matches/prints the exact text lit, carrying no information of
// its own: parsing it yields value, and printing requires the given value
// to equal value (e.g. orElse(string("true", true), string("false",
// false))).
func Literal[V comparable](lit string, value V, err any) Syntax[V] {
	c := regex.Compile(regex.String(lit))
	return Syntax[V]{
		P: parser.ZipRight{
			L: parser.ParseRegexDiscard{Compiled: c, Err: err},
			R: parser.Succeed{Value: value},
		},
		Pr: printer.ZipRight{
			L:       printer.PrintRegexDiscard{Compiled: c, Chars: lit},
			R:       printer.ExactlyEqual{Value: value, Err: err},
			LeftVal: struct{}{},
		},
	}
}

func toTypedSlice[V any](v any) []V {
	raw := v.([]any)
	out := make([]V, len(raw))
	for i, e := range raw {
		out[i] = e.(V)
	}
	return out
}

func toAnySlice[V any](vs []V) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
