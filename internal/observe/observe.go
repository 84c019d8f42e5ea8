// Package observe provides an explicit observability collaborator for
// timing and progress, threaded through the Builder and Tabu Driver
// instead of a package-level logging singleton.
package observe

import (
	"log"
	"time"
)

// Observer receives progress events during a solve. The Builder runs its
// strategies one after another and the Tabu Driver runs on the caller's
// goroutine; an implementation shared across goroutines must be safe for
// concurrent use.
type Observer interface {
	Printf(format string, args ...any)
	Iteration(iter int, cost float64, feasible bool)
}

// StdObserver logs to the standard library logger and ignores iteration
// events beyond an optional callback, matching the plain log.Printf style
// used throughout this codebase.
type StdObserver struct {
	OnIteration func(iter int, cost float64, feasible bool)
}

func (o *StdObserver) Printf(format string, args ...any) {
	log.Printf(format, args...)
}

func (o *StdObserver) Iteration(iter int, cost float64, feasible bool) {
	if o.OnIteration != nil {
		o.OnIteration(iter, cost, feasible)
	}
}

// Noop discards everything; useful in tests.
type Noop struct{}

func (Noop) Printf(string, ...any)         {}
func (Noop) Iteration(int, float64, bool)  {}

// Time returns a deferred-closure timer: call it with defer, passing the
// address of the enclosing function's named error return, and it logs the
// elapsed duration and any error through obs when the enclosing function
// returns.
func Time(obs Observer, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		elapsed := time.Since(start)
		if errp != nil && *errp != nil {
			obs.Printf("%s: failed after %s: %v", op, elapsed, *errp)
			return
		}
		obs.Printf("%s: done in %s", op, elapsed)
	}
}
