package parser

// Scope carries the two pieces of evaluation context threaded through
// every Parser node: the contextual chain of enclosing
// Named labels (for error reporting) and the current auto-backtracking
// flag. Both engines (engine/recursive and engine/stackvm) share this type
// and its UnwrapBacktrack helper so their backtracking decisions are
// defined identically in one place, even though their control-flow
// strategies (host recursion vs. explicit stacks) differ.
type Scope struct {
	NameChain []string
	AutoBT    bool
}

// WithName returns a Scope with name appended to the chain.
func (s Scope) WithName(name string) Scope {
	chain := make([]string, len(s.NameChain)+1)
	copy(chain, s.NameChain)
	chain[len(chain)-1] = name
	return Scope{NameChain: chain, AutoBT: s.AutoBT}
}

// WithAutoBT returns a Scope with the auto-backtracking flag set to flag.
func (s Scope) WithAutoBT(flag bool) Scope {
	return Scope{NameChain: s.NameChain, AutoBT: flag}
}

// UnwrapBacktrack inspects the immediate node handed to an alternative
// combinator (OrElse/OrElseEither/Optional/Repeat/RepeatUntil/
// RepeatWithSep). If it is a Backtrack node, its Inner is returned together
// with forced=true: that alternative always restores the index on failure
// regardless of the enclosing scope's auto-backtracking
// flag. Otherwise n is returned unchanged with forced=false, and the
// caller falls back to Scope.AutoBT. Repeat is the exception: both engines
// discard forced and never consult Scope.AutoBT for it, so a failing
// iteration past Min always ends the loop at the end of the last
// successful iteration, even when that iteration consumed input before
// failing.
func UnwrapBacktrack(n Node) (inner Node, forced bool) {
	if b, ok := n.(Backtrack); ok {
		return b.Inner, true
	}
	return n, false
}

// ShouldRestore reports whether a failing alternative should have the
// input index restored to its entry point: true if the enclosing scope has
// auto-backtracking on, or the alternative was wrapped in Backtrack.
func ShouldRestore(scope Scope, forced bool) bool {
	return forced || scope.AutoBT
}
