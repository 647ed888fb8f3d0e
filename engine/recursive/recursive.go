// Package recursive implements the reference parser engine: a
// straightforward tree-walking interpreter over the Parser AST. It is the
// oracle the stack-safe engine (package engine/stackvm) must agree with
// for every Syntax and every input — see engine/stackvm's equivalence
// tests.
//
// This engine is not intended for production use on deep or adversarial
// grammars: host recursion means a sufficiently nested AST (typically via
// SuspendLazy-built recursive grammars on long input) can overflow the Go
// runtime's stack. That trade is acceptable for an oracle exercised in
// tests against small-to-medium inputs.
package recursive

import (
	"github.com/coregx/pcomb/parser"
	"github.com/coregx/pcomb/perr"
	"github.com/coregx/pcomb/pval"
)

// Run parses input from index 0 using n, returning the produced value or a
// ParserError.
func Run(n parser.Node, input string) (any, perr.ParserError) {
	val, _, err := eval(n, input, 0, parser.Scope{})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// eval evaluates n against input starting at index, returning the produced
// value and the index immediately after it on success, or the index at
// which the failure was raised together with a non-nil error.
func eval(n parser.Node, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	switch node := n.(type) {
	case parser.Succeed:
		return node.Value, index, nil

	case parser.Fail:
		return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: node.Err}

	case parser.Named:
		return eval(node.Inner, input, index, scope.WithName(node.Name))

	case *parser.SuspendLazy:
		return eval(node.Force(), input, index, scope)

	case parser.Backtrack:
		return eval(node.Inner, input, index, scope.WithAutoBT(true))

	case parser.SetAutoBacktracking:
		return eval(node.Inner, input, index, scope.WithAutoBT(node.Flag))

	case parser.MapError:
		val, idx, err := eval(node.Inner, input, index, scope)
		if err == nil {
			return val, idx, nil
		}
		return nil, idx, mappedFailure(scope, idx, node.F, err)

	case parser.TransformEither:
		val, idx, err := eval(node.Inner, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		out, ferr := node.F(val)
		if ferr != nil {
			return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: ferr}
		}
		return out, idx, nil

	case parser.Filter:
		val, idx, err := eval(node.Inner, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		if !node.Pred(val) {
			return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: node.Err}
		}
		return val, idx, nil

	case parser.Zip:
		lv, idx, err := eval(node.L, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		rv, idx2, err := eval(node.R, input, idx, scope)
		if err != nil {
			return nil, idx2, err
		}
		return pval.Pair{First: lv, Second: rv}, idx2, nil

	case parser.ZipLeft:
		lv, idx, err := eval(node.L, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		_, idx2, err := eval(node.R, input, idx, scope)
		if err != nil {
			return nil, idx2, err
		}
		return lv, idx2, nil

	case parser.ZipRight:
		_, idx, err := eval(node.L, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		rv, idx2, err := eval(node.R, input, idx, scope)
		if err != nil {
			return nil, idx2, err
		}
		return rv, idx2, nil

	case parser.OrElse:
		return evalOrElse(node.L, node.RThunk, input, index, scope)

	case parser.OrElseEither:
		lNode, forced := parser.UnwrapBacktrack(node.L)
		lv, idx, err := eval(lNode, input, index, scope)
		if err == nil {
			return pval.Either{Left: true, Value: lv}, idx, nil
		}
		if idx > index && !parser.ShouldRestore(scope, forced) {
			return nil, idx, err
		}
		rv, idx2, rerr := eval(node.RThunk(), input, index, scope)
		if rerr != nil {
			return nil, idx2, &perr.AllBranchesFailed{Left: err, Right: rerr}
		}
		return pval.Either{Left: false, Value: rv}, idx2, nil

	case parser.Optional:
		return evalOptional(node.Inner, input, index, scope)

	case parser.Repeat:
		return evalRepeat(node, input, index, scope)

	case parser.RepeatUntil:
		return evalRepeatUntil(node, input, index, scope)

	case parser.RepeatWithSep:
		return evalRepeatWithSep(node, input, index, scope)

	case parser.Not:
		_, _, err := eval(node.Inner, input, index, scope)
		if err == nil {
			return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: node.Err}
		}
		return struct{}{}, index, nil

	case parser.End:
		if index == len(input) {
			return struct{}{}, index, nil
		}
		return nil, index, &perr.NotConsumedAll{Pos: index}

	case parser.Index:
		return index, index, nil

	case parser.CaptureString:
		_, idx, err := eval(node.Inner, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		return input[index:idx], idx, nil

	case parser.ParseRegex:
		return evalParseRegex(node.Compiled, node.Err, input, index, scope)

	case parser.ParseRegexLastChar:
		val, idx, err := evalParseRegex(node.Compiled, node.Err, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		s := val.(string)
		if len(s) == 0 {
			return byte(0), idx, nil
		}
		return s[len(s)-1], idx, nil

	case parser.ParseRegexDiscard:
		_, idx, err := evalParseRegex(node.Compiled, node.Err, input, index, scope)
		if err != nil {
			return nil, idx, err
		}
		return struct{}{}, idx, nil

	case parser.CharIn:
		return evalCharSet(node.Set, false, node.Err, input, index, scope)

	case parser.CharNotIn:
		return evalCharSet(node.Set, true, node.Err, input, index, scope)

	case parser.AnyChar:
		if index >= len(input) {
			return nil, index, &perr.UnexpectedEndOfInput{Pos: index}
		}
		return input[index], index + 1, nil

	default:
		return nil, index, &perr.UnknownFailure{NameChain: scope.NameChain, Pos: index}
	}
}

func mappedFailure(scope parser.Scope, idx int, f func(any) any, err perr.ParserError) perr.ParserError {
	switch e := err.(type) {
	case *perr.Failure:
		return &perr.Failure{NameChain: e.NameChain, Pos: e.Pos, Err: f(e.Err)}
	default:
		return err
	}
}

func evalCharSet(set parser.BitSet, negate bool, failErr any, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	if index >= len(input) {
		return nil, index, &perr.UnexpectedEndOfInput{Pos: index}
	}
	c := input[index]
	member := set.Has(c)
	if member == negate {
		return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: failErr}
	}
	return string(c), index + 1, nil
}

func evalParseRegex(compiled parser.Regex, failErr any, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	res := compiled.Test(index, input)
	switch {
	case res == -2: // NeedMoreInput
		return nil, index, &perr.UnexpectedEndOfInput{Pos: index}
	case res == -1: // NotMatched
		return nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: failErr}
	default:
		return input[index:res], res, nil
	}
}

func evalOrElse(l parser.Node, rThunk func() parser.Node, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	lNode, forced := parser.UnwrapBacktrack(l)
	lv, idx, err := eval(lNode, input, index, scope)
	if err == nil {
		return lv, idx, nil
	}
	if idx > index && !parser.ShouldRestore(scope, forced) {
		return nil, idx, err
	}
	rv, idx2, rerr := eval(rThunk(), input, index, scope)
	if rerr != nil {
		return nil, idx2, &perr.AllBranchesFailed{Left: err, Right: rerr}
	}
	return rv, idx2, nil
}

func evalOptional(inner parser.Node, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	innerNode, forced := parser.UnwrapBacktrack(inner)
	val, idx, err := eval(innerNode, input, index, scope)
	if err == nil {
		return pval.Option{Value: val, Present: true}, idx, nil
	}
	if idx > index && !parser.ShouldRestore(scope, forced) {
		return nil, idx, err
	}
	return pval.Option{Present: false}, index, nil
}

func evalRepeat(n parser.Repeat, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	innerNode, _ := parser.UnwrapBacktrack(n.Inner)
	values := []any{}
	idx := index
	for n.Max < 0 || len(values) < n.Max {
		prev := idx
		val, newIdx, err := eval(innerNode, input, idx, scope)
		if err != nil {
			if len(values) >= n.Min {
				break // swallowed: this iteration's failure is expected loop termination
			}
			// Fewer than Min matches: a genuine Repeat failure, reported at
			// the position the failing iteration actually reached.
			return nil, newIdx, err
		}
		values = append(values, val)
		idx = newIdx
		if idx == prev {
			break // zero-length match: count once, then stop to guarantee termination
		}
	}
	return values, idx, nil
}

func evalRepeatUntil(n parser.RepeatUntil, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	stopNode, forced := parser.UnwrapBacktrack(n.Stop)
	values := []any{}
	idx := index
	for {
		prev := idx
		val, newIdx, err := eval(n.Inner, input, idx, scope)
		if err != nil {
			return nil, newIdx, err
		}
		values = append(values, val)
		idx = newIdx

		_, stopIdx, stopErr := eval(stopNode, input, idx, scope)
		if stopErr == nil {
			idx = stopIdx
			break
		}
		if stopIdx > idx && !parser.ShouldRestore(scope, forced) {
			return nil, stopIdx, stopErr
		}
		if idx == prev {
			return nil, idx, &perr.UnknownFailure{NameChain: scope.NameChain, Pos: idx}
		}
	}
	return values, idx, nil
}

func evalRepeatWithSep(n parser.RepeatWithSep, input string, index int, scope parser.Scope) (any, int, perr.ParserError) {
	innerNode, forcedInner := parser.UnwrapBacktrack(n.Inner)
	val, idx, err := eval(innerNode, input, index, scope)
	if err != nil {
		if n.AtLeastOne || (idx > index && !parser.ShouldRestore(scope, forcedInner)) {
			return nil, idx, err
		}
		return []any{}, index, nil
	}
	values := []any{val}
	sepNode, forcedSep := parser.UnwrapBacktrack(n.Sep)
	for {
		_, sepIdx, sepErr := eval(sepNode, input, idx, scope)
		if sepErr != nil {
			if sepIdx > idx && !parser.ShouldRestore(scope, forcedSep) {
				return nil, sepIdx, sepErr
			}
			break
		}
		val2, idx2, err2 := eval(innerNode, input, sepIdx, scope)
		if err2 != nil {
			if idx2 > sepIdx && !parser.ShouldRestore(scope, forcedInner) {
				return nil, idx2, err2
			}
			break
		}
		values = append(values, val2)
		idx = idx2
	}
	return values, idx, nil
}
