package observe

import (
	"errors"
	"testing"
)

func TestStdObserverInvokesCallback(t *testing.T) {
	var gotIter int
	var gotCost float64
	var gotFeasible bool
	o := &StdObserver{OnIteration: func(iter int, cost float64, feasible bool) {
		gotIter, gotCost, gotFeasible = iter, cost, feasible
	}}
	o.Iteration(3, 42.5, true)
	if gotIter != 3 || gotCost != 42.5 || !gotFeasible {
		t.Fatalf("callback did not receive expected arguments: iter=%d cost=%.2f feasible=%v", gotIter, gotCost, gotFeasible)
	}
}

func TestStdObserverNilCallbackIsSafe(t *testing.T) {
	o := &StdObserver{}
	o.Iteration(1, 1, true) // must not panic
}

func TestTimeReportsSuccessAndFailure(t *testing.T) {
	var lines []string
	rec := recorder{lines: &lines}

	func() {
		var err error
		defer Time(rec, "op")(&err)
	}()
	if len(lines) != 1 {
		t.Fatalf("expected one log line for success, got %d", len(lines))
	}

	lines = nil
	func() {
		err := errors.New("boom")
		defer Time(rec, "op")(&err)
	}()
	if len(lines) != 1 {
		t.Fatalf("expected one log line for failure, got %d", len(lines))
	}
}

type recorder struct {
	lines *[]string
}

func (r recorder) Printf(format string, args ...any) {
	*r.lines = append(*r.lines, format)
}
func (r recorder) Iteration(int, float64, bool) {}
