// Package stackvm implements the stack-safe parser engine: a trampolined
// interpreter over parser.Node using two explicit stacks — an operand
// stack of in-flight values and a continuation stack of pending resumption
// frames — instead of Go's own call stack. It must produce results
// identical to package engine/recursive for every Syntax and every input;
// engine/recursive is the oracle this engine is checked against.
//
// The two stacks follow a "no per-step heap growth in the hot loop,
// pre-sized and geometrically grown" discipline: Run pre-allocates both to
// cfg.InitialStackCapacity and grows them with append rather than
// reallocating per node.
package stackvm

import (
	"github.com/coregx/pcomb/parser"
	"github.com/coregx/pcomb/perr"
	"github.com/coregx/pcomb/pval"
)

// Config tunes the VM's stack pre-sizing and its backtrack-depth safety
// bound. Mirrors pcomb.Config's corresponding fields, which construct and
// pass one of these through.
type Config struct {
	// InitialStackCapacity pre-sizes both the operand and continuation
	// stacks. 0 selects a small default.
	InitialStackCapacity int

	// MaxBacktrackDepth bounds the continuation stack depth. 0 means
	// unbounded. Exceeding it turns what would otherwise be unbounded
	// growth on a malformed (non-terminating) SuspendLazy thunk into a
	// returned perr.UnknownFailure instead of an out-of-memory condition
	// (see DESIGN.md).
	MaxBacktrackDepth int
}

// DefaultConfig returns the VM's default tuning.
func DefaultConfig() Config {
	return Config{InitialStackCapacity: 16, MaxBacktrackDepth: 0}
}

// Stats reports per-run counters, returned as plain data rather than
// logged.
type Stats struct {
	FramesPushed  int
	Backtracks    int
	MaxStackDepth int
}

// Run parses input from index 0 using n with the stack-safe engine.
func Run(n parser.Node, input string, cfg Config) (any, perr.ParserError, Stats) {
	val, _, err, stats := eval(n, input, 0, parser.Scope{}, cfg)
	return val, err, stats
}

// result is the outcome of evaluating one subtree: either a value and the
// index just past it, or a ParserError and the index the failure occurred
// at.
type result struct {
	val any
	idx int
	err perr.ParserError
}

// instr is the trampoline's unit of work: either "evaluate node at index in
// scope" (deliver == false) or "hand res to whichever frame is next on the
// continuation stack" (deliver == true).
type instr struct {
	deliver bool
	node    parser.Node
	index   int
	scope   parser.Scope
	res     result
}

// frame is a suspended continuation: the work remaining after one of a
// composite node's children finishes.
type frame interface {
	resume(m *machine, r result) instr
}

// machine holds the two explicit stacks and per-run diagnostics. frames is
// the continuation stack; values is the operand stack frames use to pass
// partial results (e.g. Zip's left value) across the eval of a sibling
// subtree without closing over them.
type machine struct {
	input     string
	cfg       Config
	stats     Stats
	frames    []frame
	values    []any
	lastIndex int
}

type stackLimitExceeded struct{ pos int }

func (m *machine) pushFrame(f frame) {
	m.frames = append(m.frames, f)
	m.stats.FramesPushed++
	if len(m.frames) > m.stats.MaxStackDepth {
		m.stats.MaxStackDepth = len(m.frames)
	}
	if m.cfg.MaxBacktrackDepth > 0 && len(m.frames) > m.cfg.MaxBacktrackDepth {
		panic(stackLimitExceeded{pos: m.lastIndex})
	}
}

func (m *machine) popFrame() frame {
	n := len(m.frames) - 1
	f := m.frames[n]
	m.frames = m.frames[:n]
	return f
}

func (m *machine) pushVal(v any) {
	m.values = append(m.values, v)
}

func (m *machine) popVal() any {
	n := len(m.values) - 1
	v := m.values[n]
	m.values = m.values[:n]
	return v
}

func eval(n parser.Node, input string, index int, scope parser.Scope, cfg Config) (val any, idx int, err perr.ParserError, stats Stats) {
	if cfg.InitialStackCapacity <= 0 {
		cfg.InitialStackCapacity = DefaultConfig().InitialStackCapacity
	}
	m := &machine{
		input:  input,
		cfg:    cfg,
		frames: make([]frame, 0, cfg.InitialStackCapacity),
		values: make([]any, 0, cfg.InitialStackCapacity),
	}

	defer func() {
		if p := recover(); p != nil {
			if sl, ok := p.(stackLimitExceeded); ok {
				val, idx, err, stats = nil, sl.pos, &perr.UnknownFailure{Pos: sl.pos}, m.stats
				return
			}
			panic(p)
		}
	}()

	cur := instr{node: n, index: index, scope: scope}
	for {
		if cur.deliver {
			if len(m.frames) == 0 {
				return cur.res.val, cur.res.idx, cur.res.err, m.stats
			}
			f := m.popFrame()
			cur = f.resume(m, cur.res)
			continue
		}
		cur = step(m, cur.node, cur.index, cur.scope)
	}
}

// step performs one unit of interpretation: a leaf node resolves directly
// to a deliver instruction, a pure rewrite (Named/SuspendLazy/Backtrack/
// SetAutoBacktracking) produces a new eval instruction with no frame, and a
// composite node pushes a frame and produces an eval instruction for its
// first child.
func step(m *machine, n parser.Node, index int, scope parser.Scope) instr {
	m.lastIndex = index
	switch node := n.(type) {
	case parser.Succeed:
		return deliver(node.Value, index, nil)

	case parser.Fail:
		return deliver(nil, index, &perr.Failure{NameChain: scope.NameChain, Pos: index, Err: node.Err})

	case parser.Named:
		return instr{node: node.Inner, index: index, scope: scope.WithName(node.Name)}

	case *parser.SuspendLazy:
		return instr{node: node.Force(), index: index, scope: scope}

	case parser.Backtrack:
		return instr{node: node.Inner, index: index, scope: scope.WithAutoBT(true)}

	case parser.SetAutoBacktracking:
		return instr{node: node.Inner, index: index, scope: scope.WithAutoBT(node.Flag)}

	case parser.MapError:
		m.pushFrame(mapErrorFrame{f: node.F, scope: scope})
		return instr{node: node.Inner, index: index, scope: scope}

	case parser.TransformEither:
		m.pushFrame(transformEitherFrame{f: node.F, scope: scope, entryIdx: index})
		return instr{node: node.Inner, index: index, scope: scope}

	case parser.Filter:
		m.pushFrame(filterFrame{pred: node.Pred, err: node.Err, scope: scope, entryIdx: index})
		return instr{node: node.Inner, index: index, scope: scope}

	case parser.Zip:
		m.pushFrame(zipAwaitRFrame{r: node.R, scope: scope, kind: zipBoth})
		return instr{node: node.L, index: index, scope: scope}

	case parser.ZipLeft:
		m.pushFrame(zipAwaitRFrame{r: node.R, scope: scope, kind: zipLeft})
		return instr{node: node.L, index: index, scope: scope}

	case parser.ZipRight:
		m.pushFrame(zipAwaitRFrame{r: node.R, scope: scope, kind: zipRight})
		return instr{node: node.L, index: index, scope: scope}

	case parser.OrElse:
		return stepOrElse(m, node.L, node.RThunk, index, scope, false)

	case parser.OrElseEither:
		return stepOrElse(m, node.L, node.RThunk, index, scope, true)

	case parser.Optional:
		inner, forced := parser.UnwrapBacktrack(node.Inner)
		m.pushFrame(optionalFrame{entryIdx: index, forced: forced, scope: scope})
		return instr{node: inner, index: index, scope: scope}

	case parser.Repeat:
		return stepRepeat(m, node, index, scope)

	case parser.RepeatUntil:
		return stepRepeatUntil(m, node, index, scope)

	case parser.RepeatWithSep:
		return stepRepeatWithSep(m, node, index, scope)

	case parser.Not:
		m.pushFrame(notFrame{entryIdx: index, err: node.Err, scope: scope})
		return instr{node: node.Inner, index: index, scope: scope}

	case parser.End:
		if index == len(m.input) {
			return deliver(struct{}{}, index, nil)
		}
		return deliver(nil, index, &perr.NotConsumedAll{Pos: index})

	case parser.Index:
		return deliver(index, index, nil)

	case parser.CaptureString:
		m.pushFrame(captureFrame{entryIdx: index})
		return instr{node: node.Inner, index: index, scope: scope}

	case parser.ParseRegex:
		return deliver(evalParseRegex(node.Compiled, node.Err, m.input, index, scope))

	case parser.ParseRegexLastChar:
		val, idx, err := evalParseRegex(node.Compiled, node.Err, m.input, index, scope)
		if err != nil {
			return deliver(nil, idx, err)
		}
		s := val.(string)
		if len(s) == 0 {
			return deliver(byte(0), idx, nil)
		}
		return deliver(s[len(s)-1], idx, nil)

	case parser.ParseRegexDiscard:
		_, idx, err := evalParseRegex(node.Compiled, node.Err, m.input, index, scope)
		if err != nil {
			return deliver(nil, idx, err)
		}
		return deliver(struct{}{}, idx, nil)

	case parser.CharIn:
		return deliver(evalCharSet(node.Set, false, node.Err, m.input, index, scope))

	case parser.CharNotIn:
		return deliver(evalCharSet(node.Set, true, node.Err, m.input, index, scope))

	case parser.AnyChar:
		if index >= len(m.input) {
			return deliver(nil, index, &perr.UnexpectedEndOfInput{Pos: index})
		}
		return deliver(m.input[index], index+1, nil)

	default:
		return deliver(nil, index, &perr.UnknownFailure{NameChain: scope.NameChain, Pos: index})
	}
}

func deliver(val any, idx int, err perr.ParserError) instr {
	return instr{deliver: true, res: result{val: val, idx: idx, err: err}}
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

// --- single-resumption frames ---

type mapErrorFrame struct {
	f     func(any) any
	scope parser.Scope
}

func (fr mapErrorFrame) resume(m *machine, r result) instr {
	if r.err == nil {
		return deliver(r.val, r.idx, nil)
	}
	if f, ok := r.err.(*perr.Failure); ok {
		return deliver(nil, r.idx, &perr.Failure{NameChain: f.NameChain, Pos: f.Pos, Err: fr.f(f.Err)})
	}
	return deliver(nil, r.idx, r.err)
}

type transformEitherFrame struct {
	f        func(any) (any, error)
	scope    parser.Scope
	entryIdx int
}

func (fr transformEitherFrame) resume(m *machine, r result) instr {
	if r.err != nil {
		return deliver(nil, r.idx, r.err)
	}
	out, ferr := fr.f(r.val)
	if ferr != nil {
		return deliver(nil, fr.entryIdx, &perr.Failure{NameChain: fr.scope.NameChain, Pos: fr.entryIdx, Err: ferr})
	}
	return deliver(out, r.idx, nil)
}

type filterFrame struct {
	pred     func(any) bool
	err      any
	scope    parser.Scope
	entryIdx int
}

func (fr filterFrame) resume(m *machine, r result) instr {
	if r.err != nil {
		return deliver(nil, r.idx, r.err)
	}
	if !fr.pred(r.val) {
		return deliver(nil, fr.entryIdx, &perr.Failure{NameChain: fr.scope.NameChain, Pos: fr.entryIdx, Err: fr.err})
	}
	return deliver(r.val, r.idx, nil)
}

type zipKind int

const (
	zipBoth zipKind = iota
	zipLeft
	zipRight
)

type zipAwaitRFrame struct {
	r     parser.Node
	scope parser.Scope
	kind  zipKind
}

func (fr zipAwaitRFrame) resume(m *machine, r result) instr {
	if r.err != nil {
		return deliver(nil, r.idx, r.err)
	}
	m.pushVal(r.val)
	m.pushFrame(zipCombineFrame{kind: fr.kind})
	return instr{node: fr.r, index: r.idx, scope: fr.scope}
}

type zipCombineFrame struct{ kind zipKind }

func (fr zipCombineFrame) resume(m *machine, r result) instr {
	leftVal := m.popVal()
	if r.err != nil {
		return deliver(nil, r.idx, r.err)
	}
	switch fr.kind {
	case zipLeft:
		return deliver(leftVal, r.idx, nil)
	case zipRight:
		return deliver(r.val, r.idx, nil)
	default:
		return deliver(pval.Pair{First: leftVal, Second: r.val}, r.idx, nil)
	}
}

func stepOrElse(m *machine, l parser.Node, rThunk func() parser.Node, index int, scope parser.Scope, either bool) instr {
	lNode, forced := parser.UnwrapBacktrack(l)
	m.pushFrame(orElseAwaitLFrame{rThunk: rThunk, scope: scope, entryIdx: index, forced: forced, either: either})
	return instr{node: lNode, index: index, scope: scope}
}

type orElseAwaitLFrame struct {
	rThunk   func() parser.Node
	scope    parser.Scope
	entryIdx int
	forced   bool
	either   bool
}

func (fr orElseAwaitLFrame) resume(m *machine, r result) instr {
	if r.err == nil {
		if fr.either {
			return deliver(pval.Either{Left: true, Value: r.val}, r.idx, nil)
		}
		return deliver(r.val, r.idx, nil)
	}
	if r.idx > fr.entryIdx && !parser.ShouldRestore(fr.scope, fr.forced) {
		return deliver(nil, r.idx, r.err)
	}
	m.stats.Backtracks++
	m.pushVal(r.err)
	m.pushFrame(orElseAwaitRFrame{either: fr.either})
	return instr{node: fr.rThunk(), index: fr.entryIdx, scope: fr.scope}
}

type orElseAwaitRFrame struct{ either bool }

func (fr orElseAwaitRFrame) resume(m *machine, r result) instr {
	leftErr := m.popVal().(perr.ParserError)
	if r.err != nil {
		return deliver(nil, r.idx, &perr.AllBranchesFailed{Left: leftErr, Right: r.err})
	}
	if fr.either {
		return deliver(pval.Either{Left: false, Value: r.val}, r.idx, nil)
	}
	return deliver(r.val, r.idx, nil)
}

type optionalFrame struct {
	entryIdx int
	forced   bool
	scope    parser.Scope
}

func (fr optionalFrame) resume(m *machine, r result) instr {
	if r.err == nil {
		return deliver(pval.Option{Value: r.val, Present: true}, r.idx, nil)
	}
	if r.idx > fr.entryIdx && !parser.ShouldRestore(fr.scope, fr.forced) {
		return deliver(nil, r.idx, r.err)
	}
	m.stats.Backtracks++
	return deliver(pval.Option{Present: false}, fr.entryIdx, nil)
}

type notFrame struct {
	entryIdx int
	err      any
	scope    parser.Scope
}

func (fr notFrame) resume(m *machine, r result) instr {
	if r.err == nil {
		return deliver(nil, fr.entryIdx, &perr.Failure{NameChain: fr.scope.NameChain, Pos: fr.entryIdx, Err: fr.err})
	}
	return deliver(struct{}{}, fr.entryIdx, nil)
}

type captureFrame struct{ entryIdx int }

func (fr captureFrame) resume(m *machine, r result) instr {
	if r.err != nil {
		return deliver(nil, r.idx, r.err)
	}
	return deliver(m.input[fr.entryIdx:r.idx], r.idx, nil)
}

// --- looping frames: Repeat, RepeatUntil, RepeatWithSep ---

func stepRepeat(m *machine, n parser.Repeat, index int, scope parser.Scope) instr {
	inner, _ := parser.UnwrapBacktrack(n.Inner)
	if n.Max == 0 {
		return deliver([]any{}, index, nil)
	}
	f := &repeatFrame{inner: inner, min: n.Min, max: n.Max, scope: scope, values: []any{}, prevIdx: index}
	m.pushFrame(f)
	return instr{node: inner, index: index, scope: scope}
}

type repeatFrame struct {
	inner    parser.Node
	min, max int
	scope    parser.Scope
	values   []any
	prevIdx  int
}

func (fr *repeatFrame) resume(m *machine, r result) instr {
	if r.err != nil {
		if len(fr.values) >= fr.min {
			return deliver(fr.values, fr.prevIdx, nil)
		}
		return deliver(nil, r.idx, r.err)
	}
	fr.values = append(fr.values, r.val)
	zeroLen := r.idx == fr.prevIdx
	fr.prevIdx = r.idx
	if zeroLen || (fr.max >= 0 && len(fr.values) >= fr.max) {
		return deliver(fr.values, fr.prevIdx, nil)
	}
	m.pushFrame(fr)
	return instr{node: fr.inner, index: fr.prevIdx, scope: fr.scope}
}

func stepRepeatUntil(m *machine, n parser.RepeatUntil, index int, scope parser.Scope) instr {
	stop, forced := parser.UnwrapBacktrack(n.Stop)
	f := &repeatUntilFrame{inner: n.Inner, stop: stop, forced: forced, scope: scope, values: []any{}, prevIdx: index, awaitingStop: false}
	m.pushFrame(f)
	return instr{node: n.Inner, index: index, scope: scope}
}

type repeatUntilFrame struct {
	inner        parser.Node
	stop         parser.Node
	forced       bool
	scope        parser.Scope
	values       []any
	prevIdx      int
	awaitingStop bool
	zeroLen      bool // the latest inner match consumed nothing
}

func (fr *repeatUntilFrame) resume(m *machine, r result) instr {
	if !fr.awaitingStop {
		if r.err != nil {
			return deliver(nil, r.idx, r.err)
		}
		fr.values = append(fr.values, r.val)
		fr.zeroLen = r.idx == fr.prevIdx
		fr.prevIdx = r.idx
		fr.awaitingStop = true
		m.pushFrame(fr)
		return instr{node: fr.stop, index: fr.prevIdx, scope: fr.scope}
	}

	if r.err == nil {
		return deliver(fr.values, r.idx, nil)
	}
	if r.idx > fr.prevIdx && !parser.ShouldRestore(fr.scope, fr.forced) {
		return deliver(nil, r.idx, r.err)
	}
	if fr.zeroLen {
		return deliver(nil, fr.prevIdx, &perr.UnknownFailure{NameChain: fr.scope.NameChain, Pos: fr.prevIdx})
	}
	startIdx := fr.prevIdx
	fr.awaitingStop = false
	m.pushFrame(fr)
	return instr{node: fr.inner, index: startIdx, scope: fr.scope}
}

func stepRepeatWithSep(m *machine, n parser.RepeatWithSep, index int, scope parser.Scope) instr {
	inner, forcedInner := parser.UnwrapBacktrack(n.Inner)
	sep, forcedSep := parser.UnwrapBacktrack(n.Sep)
	f := &repeatWithSepFrame{
		inner: inner, sep: sep, forcedInner: forcedInner, forcedSep: forcedSep,
		atLeastOne: n.AtLeastOne, scope: scope, entryIdx: index, stage: stageFirstInner,
	}
	m.pushFrame(f)
	return instr{node: inner, index: index, scope: scope}
}

type repeatWithSepStage int

const (
	stageFirstInner repeatWithSepStage = iota
	stageSep
	stageLoopInner
)

type repeatWithSepFrame struct {
	inner, sep             parser.Node
	forcedInner, forcedSep bool
	atLeastOne             bool
	scope                  parser.Scope
	entryIdx               int
	values                 []any
	idx                    int // loop position, before the next sep attempt
	sepIdx                 int // position after the most recent successful sep
	stage                  repeatWithSepStage
}

func (fr *repeatWithSepFrame) resume(m *machine, r result) instr {
	switch fr.stage {
	case stageFirstInner:
		if r.err != nil {
			if fr.atLeastOne || (r.idx > fr.entryIdx && !parser.ShouldRestore(fr.scope, fr.forcedInner)) {
				return deliver(nil, r.idx, r.err)
			}
			return deliver([]any{}, fr.entryIdx, nil)
		}
		fr.values = []any{r.val}
		fr.idx = r.idx
		fr.stage = stageSep
		m.pushFrame(fr)
		return instr{node: fr.sep, index: fr.idx, scope: fr.scope}

	case stageSep:
		if r.err != nil {
			if r.idx > fr.idx && !parser.ShouldRestore(fr.scope, fr.forcedSep) {
				return deliver(nil, r.idx, r.err)
			}
			return deliver(fr.values, fr.idx, nil)
		}
		fr.sepIdx = r.idx
		fr.stage = stageLoopInner
		m.pushFrame(fr)
		return instr{node: fr.inner, index: fr.sepIdx, scope: fr.scope}

	default: // stageLoopInner
		if r.err != nil {
			if r.idx > fr.sepIdx && !parser.ShouldRestore(fr.scope, fr.forcedInner) {
				return deliver(nil, r.idx, r.err)
			}
			return deliver(fr.values, fr.idx, nil)
		}
		fr.values = append(fr.values, r.val)
		fr.idx = r.idx
		fr.stage = stageSep
		m.pushFrame(fr)
		return instr{node: fr.sep, index: fr.idx, scope: fr.scope}
	}
}
