// Package pcomb is the top-level façade: the entry points a caller
// actually reaches for (ParseString, PrintString, ...), a construction-
// time config layer (Config, DefaultConfig), and the derived character-
// class Syntax helpers (Digit, Letter, Whitespace, AlphaNumeric).
package pcomb

import (
	"github.com/coregx/pcomb/engine/printvm"
	"github.com/coregx/pcomb/engine/recursive"
	"github.com/coregx/pcomb/engine/stackvm"
	"github.com/coregx/pcomb/internal/regex"
	"github.com/coregx/pcomb/syntax"
	"github.com/coregx/pcomb/target"
)

// Implementation selects which parser engine ParseStringWith runs.
type Implementation int

const (
	// StackSafe runs the trampoline VM (package engine/stackvm). This is
	// the default for ParseString.
	StackSafe Implementation = iota
	// Recursive runs the tree-walking oracle interpreter (package
	// engine/recursive). Provided so callers can cross-check the
	// stack-safe engine for engine equivalence; not recommended for
	// deeply nested grammars, since it uses Go's own call stack.
	Recursive
)

// Config holds construction-time tunables for the stack-safe engine and
// for Target buffer sizing.
type Config struct {
	// InitialStackCapacity pre-sizes the stack-safe engine's operand and
	// continuation stacks.
	InitialStackCapacity int
	// MaxBacktrackDepth bounds continuation-stack depth; exceeding it
	// returns *perr.UnknownFailure instead of letting the stack-safe
	// engine's continuation stack grow without limit on a malformed or
	// non-terminating grammar. 0 means unbounded.
	MaxBacktrackDepth int
	// InitialTargetCapacity pre-sizes the output buffer a String/Chunk
	// Target starts with.
	InitialTargetCapacity int
}

// DefaultConfig returns Config's zero-tuning defaults.
func DefaultConfig() Config {
	return Config{
		InitialStackCapacity:  16,
		MaxBacktrackDepth:     0,
		InitialTargetCapacity: 16,
	}
}

// Option mutates a Config, in the standard functional-option style.
type Option func(*Config)

// WithInitialStackCapacity overrides InitialStackCapacity.
func WithInitialStackCapacity(n int) Option {
	return func(c *Config) { c.InitialStackCapacity = n }
}

// WithMaxBacktrackDepth overrides MaxBacktrackDepth.
func WithMaxBacktrackDepth(n int) Option {
	return func(c *Config) { c.MaxBacktrackDepth = n }
}

// WithInitialTargetCapacity overrides InitialTargetCapacity.
func WithInitialTargetCapacity(n int) Option {
	return func(c *Config) { c.InitialTargetCapacity = n }
}

// NewConfig builds a Config from DefaultConfig with opts applied in order.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) toStackVMConfig() stackvm.Config {
	return stackvm.Config{
		InitialStackCapacity: c.InitialStackCapacity,
		MaxBacktrackDepth:    c.MaxBacktrackDepth,
	}
}

// ParseString runs s's parser against input using the stack-safe engine
// with DefaultConfig, requiring the full input be consumed by s itself
// (append syntax.End() to s if that is not already guaranteed).
func ParseString[V any](s syntax.Syntax[V], input string) (V, error) {
	return ParseStringWith(s, input, StackSafe)
}

// ParseStringConfig is ParseString with an explicit Config.
func ParseStringConfig[V any](s syntax.Syntax[V], input string, cfg Config) (V, error) {
	var zero V
	val, err, _ := stackvm.Run(s.P, input, cfg.toStackVMConfig())
	if err != nil {
		return zero, err
	}
	return val.(V), nil
}

// ParseStringWith runs s's parser against input using the named
// implementation. StackSafe and Recursive must agree on every Syntax and
// input (engine equivalence).
func ParseStringWith[V any](s syntax.Syntax[V], input string, impl Implementation) (V, error) {
	var zero V
	switch impl {
	case Recursive:
		val, err := recursive.Run(s.P, input)
		if err != nil {
			return zero, err
		}
		return val.(V), nil
	default:
		val, err, _ := stackvm.Run(s.P, input, stackvm.DefaultConfig())
		if err != nil {
			return zero, err
		}
		return val.(V), nil
	}
}

// PrintString prints value through s's printer into a String Target,
// returning the finished string.
func PrintString[V any](s syntax.Syntax[V], value V) (string, error) {
	return PrintStringConfig(s, value, DefaultConfig())
}

// PrintStringConfig is PrintString with an explicit Config (controlling
// the Target's initial buffer capacity).
func PrintStringConfig[V any](s syntax.Syntax[V], value V, cfg Config) (string, error) {
	t := target.NewStringTarget(cfg.InitialTargetCapacity)
	if err := printvm.Print[string](s.Pr, value, t); err != nil {
		return "", err
	}
	return t.Finish(), nil
}

// PrintToChunk prints value through s's printer into a fresh
// target.ChunkTarget[O], returning the finished chunk.
func PrintToChunk[V, O any](s syntax.Syntax[V], value V) ([]O, error) {
	t := target.NewChunkTarget[O](DefaultConfig().InitialTargetCapacity)
	if err := printvm.Print[O](s.Pr, value, t); err != nil {
		return nil, err
	}
	return t.Finish(), nil
}

// PrintToTarget prints value through s's printer into the caller-supplied
// Target, leaving Finish/checkpoint lifecycle to the caller.
func PrintToTarget[V, O any](s syntax.Syntax[V], value V, t target.Target[O]) error {
	if err := printvm.Print[O](s.Pr, value, t); err != nil {
		return err
	}
	return nil
}

// Digit matches/prints a single ASCII digit 0-9.
func Digit(err any) syntax.Syntax[string] { return syntax.RegexString(regex.AnyDigit(), err) }

// Letter matches/prints a single ASCII letter a-z or A-Z.
func Letter(err any) syntax.Syntax[string] { return syntax.RegexString(regex.AnyLetter(), err) }

// Whitespace matches/prints a single whitespace code unit.
func Whitespace(err any) syntax.Syntax[string] {
	return syntax.RegexString(regex.AnyWhitespace(), err)
}

// AlphaNumeric matches/prints a single letter or digit.
func AlphaNumeric(err any) syntax.Syntax[string] {
	return syntax.RegexString(regex.AnyAlphaNumeric(), err)
}

// Digits matches/prints zero or more ASCII digits, greedily, as one run.
func Digits(err any) syntax.Syntax[string] { return syntax.RegexString(regex.Digits(), err) }

// Letters matches/prints zero or more ASCII letters, greedily, as one run.
func Letters(err any) syntax.Syntax[string] { return syntax.RegexString(regex.Letters(), err) }

// WhitespaceRun matches/prints zero or more whitespace code units,
// greedily, as one run.
func WhitespaceRun(err any) syntax.Syntax[string] {
	return syntax.RegexString(regex.Whitespace(), err)
}

// AlphaNumerics matches/prints zero or more letters/digits, greedily, as
// one run.
func AlphaNumerics(err any) syntax.Syntax[string] {
	return syntax.RegexString(regex.AlphaNumerics(), err)
}
