// Package perr implements the ParserError taxonomy: the closed set of
// structured error values a parse can fail with.
//
// Every ParserError implements the standard error interface so it can be
// returned as a plain Go error from the top-level façade, while still being
// recoverable via errors.As for callers that want the structured form:
// every variant is a concrete pointer-receiver struct carrying its
// position payload (there are no sentinel values), with Unwrap where
// there is a nested cause.
package perr

import "fmt"

// ParserError is the closed set of error values a parse can produce.
type ParserError interface {
	error
	isParserError()
}

// Failure is a user-visible failure: a Filter/TransformEither rejection, a
// CharIn/CharNotIn/ParseRegex mismatch, an explicit Fail(err), or a Not
// whose inner parser unexpectedly succeeded. It carries the accumulated
// chain of enclosing Named scopes active when the failure occurred.
type Failure struct {
	NameChain []string
	Pos       int
	Err       any
}

func (e *Failure) Error() string {
	if len(e.NameChain) == 0 {
		return fmt.Sprintf("parse failure at %d: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("parse failure at %d in %v: %v", e.Pos, e.NameChain, e.Err)
}

func (*Failure) isParserError() {}

// UnexpectedEndOfInput indicates the parse needed more characters than the
// input provided.
type UnexpectedEndOfInput struct {
	Pos int
}

func (e *UnexpectedEndOfInput) Error() string {
	return fmt.Sprintf("unexpected end of input at %d", e.Pos)
}

func (*UnexpectedEndOfInput) isParserError() {}

// UnknownFailure indicates an internal engine invariant was broken; it
// should never be observed from a well-formed Syntax on well-formed input.
type UnknownFailure struct {
	NameChain []string
	Pos       int
}

func (e *UnknownFailure) Error() string {
	return fmt.Sprintf("unknown parser failure at %d in %v", e.Pos, e.NameChain)
}

func (*UnknownFailure) isParserError() {}

// NotConsumedAll indicates the `end` combinator failed because input
// remained.
type NotConsumedAll struct {
	Pos int
}

func (e *NotConsumedAll) Error() string {
	return fmt.Sprintf("not all input consumed: remaining input starts at %d", e.Pos)
}

func (*NotConsumedAll) isParserError() {}

// AllBranchesFailed is built when both branches of an OrElse*/OrElseEither
// fail; both sub-errors are retained verbatim, with no flattening.
type AllBranchesFailed struct {
	Left, Right ParserError
}

func (e *AllBranchesFailed) Error() string {
	return fmt.Sprintf("all branches failed: left=(%v) right=(%v)", e.Left, e.Right)
}

// Unwrap exposes the left branch's error for errors.Is/errors.As chains,
// following Go's single-Unwrap convention; the right branch remains
// available via the Right field for callers that need both, with no
// flattening.
func (e *AllBranchesFailed) Unwrap() error { return e.Left }

func (*AllBranchesFailed) isParserError() {}

// Position returns the input position recorded on err, or -1 if err does
// not carry one (only AllBranchesFailed does not carry its own position —
// its branches do).
func Position(err ParserError) int {
	switch e := err.(type) {
	case *Failure:
		return e.Pos
	case *UnexpectedEndOfInput:
		return e.Pos
	case *UnknownFailure:
		return e.Pos
	case *NotConsumedAll:
		return e.Pos
	default:
		return -1
	}
}

// NameChain returns the enclosing Named scopes active when err occurred, or
// nil if err does not carry one.
func NameChain(err ParserError) []string {
	switch e := err.(type) {
	case *Failure:
		return e.NameChain
	case *UnknownFailure:
		return e.NameChain
	default:
		return nil
	}
}
