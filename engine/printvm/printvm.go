// Package printvm implements the printer engine: a straightforward
// tree-walking interpreter over printer.Node that writes to a
// target.Target[O] sink. Unlike the parser side, no stack-safe variant is
// required — printer ASTs built by ordinary Syntax combinators are
// shallow enough in practice that host recursion is fine.
package printvm

import (
	"github.com/coregx/pcomb/perr"
	"github.com/coregx/pcomb/printer"
	"github.com/coregx/pcomb/pval"
	"github.com/coregx/pcomb/target"
)

// Print walks n, consuming val, and writes output through t. It returns nil
// on success or a ParserError describing why printing failed.
func Print[O any](n printer.Node, val any, t target.Target[O]) perr.ParserError {
	switch node := n.(type) {
	case printer.SucceedUnit:
		return nil

	case printer.Fail:
		return &perr.Failure{Err: node.Err}

	case printer.MapError:
		err := Print(node.Inner, val, t)
		if err == nil {
			return nil
		}
		return mapPrintError(err, node.F)

	case printer.Contramap:
		return Print(node.Inner, node.F(val), t)

	case printer.ContramapEither:
		out, ferr := node.F(val)
		if ferr != nil {
			return &perr.Failure{Err: node.Err}
		}
		return Print(node.Inner, out, t)

	case printer.Zip:
		pair := val.(pval.Pair)
		if err := Print(node.L, pair.First, t); err != nil {
			return err
		}
		return Print(node.R, pair.Second, t)

	case printer.ZipLeft:
		if err := Print(node.L, val, t); err != nil {
			return err
		}
		return Print(node.R, node.RightVal, t)

	case printer.ZipRight:
		if err := Print(node.L, node.LeftVal, t); err != nil {
			return err
		}
		return Print(node.R, val, t)

	case printer.OrElse:
		return printOrElse(node.L, node.R, val, t)

	case printer.OrElseEither:
		either := val.(pval.Either)
		if either.Left {
			return Print(node.L, either.Value, t)
		}
		return Print(node.R, either.Value, t)

	case printer.Optional:
		opt := val.(pval.Option)
		if !opt.Present {
			return nil
		}
		return Print(node.Inner, opt.Value, t)

	case printer.Repeat:
		return printRepeat(node, val, t)

	case printer.RepeatWithSep:
		return printRepeatWithSep(node, val, t)

	case printer.RepeatUntil:
		return printRepeatUntil(node, val, t)

	case printer.EmitOutput:
		t.Write(node.Value.(O))
		return nil

	case printer.ExactlyEqual:
		if val != node.Value {
			return &perr.Failure{Err: node.Err}
		}
		return nil

	case printer.ExceptEqual:
		if val == node.Value {
			return &perr.Failure{Err: node.Err}
		}
		return nil

	case printer.FilterInput:
		if !node.Pred(val) {
			return &perr.Failure{Err: node.Err}
		}
		return nil

	case printer.FromInput:
		t.Write(node.Fn(val).(O))
		return nil

	case *printer.SuspendLazy:
		return Print(node.Force(), val, t)

	case printer.Flatten:
		return Print(node.Inner, flattenValue(val), t)

	case printer.PrintRegex:
		s := val.(string)
		if !node.Compiled.Matches(s) {
			return &perr.Failure{Err: node.Err}
		}
		t.Write(any(s).(O))
		return nil

	case printer.PrintRegexChar:
		c := val.(byte)
		s := string(c)
		if !node.Compiled.Matches(s) {
			return &perr.Failure{Err: node.Err}
		}
		t.Write(any(s).(O))
		return nil

	case printer.PrintRegexDiscard:
		t.Write(any(node.Chars).(O))
		return nil

	default:
		return &perr.UnknownFailure{}
	}
}

func mapPrintError(err perr.ParserError, f func(any) any) perr.ParserError {
	if fl, ok := err.(*perr.Failure); ok {
		return &perr.Failure{NameChain: fl.NameChain, Pos: fl.Pos, Err: f(fl.Err)}
	}
	return err
}

func printOrElse[O any](l, r printer.Node, val any, t target.Target[O]) perr.ParserError {
	h := t.Checkpoint()
	lerr := Print(l, val, t)
	if lerr == nil {
		t.Commit(h)
		return nil
	}
	t.Rollback(h)

	h2 := t.Checkpoint()
	rerr := Print(r, val, t)
	if rerr != nil {
		t.Rollback(h2)
		return &perr.AllBranchesFailed{Left: lerr, Right: rerr}
	}
	t.Commit(h2)
	return nil
}

func printRepeat[O any](node printer.Repeat, val any, t target.Target[O]) perr.ParserError {
	seq := val.([]any)
	if len(seq) < node.Min || (node.Max >= 0 && len(seq) > node.Max) {
		return &perr.Failure{Err: "sequence length out of range"}
	}
	for _, elem := range seq {
		if err := Print(node.Inner, elem, t); err != nil {
			return err
		}
	}
	return nil
}

func printRepeatWithSep[O any](node printer.RepeatWithSep, val any, t target.Target[O]) perr.ParserError {
	seq := val.([]any)
	for i, elem := range seq {
		if i > 0 {
			if err := Print(node.Sep, struct{}{}, t); err != nil {
				return err
			}
		}
		if err := Print(node.Inner, elem, t); err != nil {
			return err
		}
	}
	return nil
}

func printRepeatUntil[O any](node printer.RepeatUntil, val any, t target.Target[O]) perr.ParserError {
	seq := val.([]any)
	for _, elem := range seq {
		if err := Print(node.Inner, elem, t); err != nil {
			return err
		}
		if err := Print(node.Stop, struct{}{}, t); err != nil {
			return err
		}
	}
	return nil
}

// flattenValue collapses nested pval.Pair values (as produced by a chain of
// parser-side Zips) into a flat slice, the shape printer.Repeat and its
// relatives expect.
func flattenValue(v any) []any {
	if pair, ok := v.(pval.Pair); ok {
		return append(flattenValue(pair.First), flattenValue(pair.Second)...)
	}
	return []any{v}
}
