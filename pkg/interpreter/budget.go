package interpreter

import "time"

// DefaultMaxCallDepth bounds recursion so a runaway program fails with a
// runtime error instead of exhausting the Go stack.
const DefaultMaxCallDepth = 1024

// Budget holds the resource limits for a program execution. Zero values
// mean the default call depth and no time limit.
type Budget struct {
	MaxCallDepth int
	Timeout      time.Duration
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	CallDepth  int
	Calls      int64
	Statements int64
}

func (b Budget) maxCallDepth() int {
	if b.MaxCallDepth <= 0 {
		return DefaultMaxCallDepth
	}
	return b.MaxCallDepth
}
