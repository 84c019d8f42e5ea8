// Package routeplan implements the Route Model: a vehicle's ordered visit
// sequence together with cached per-position derived state, and the
// feasibility/delta-cost operations the Constructive Builder, Move
// Generator, and Fleet Optimizer all build on.
package routeplan

import (
	"context"
	"math"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/model"
	"trashcvrp/internal/oracle"
)

// Weights are the scalar cost-function coefficients. Time-window and
// capacity weights must dominate distance so that any infeasibility
// outweighs any improvement in pure travel cost.
type Weights struct {
	Dist       float64
	TW         float64
	Cap        float64
	Wait       float64
	Trips      float64
	Unassigned float64
}

// DefaultWeights matches the reference coefficients: feasibility
// violations dominate pure distance improvements by four orders of
// magnitude.
var DefaultWeights = Weights{
	Dist:       1,
	TW:         1e4,
	Cap:        1e4,
	Wait:       0.1,
	Trips:      1,
	Unassigned: 1e6,
}

// State is the cached, derived per-position data. ArrivalTime,
// DepartureTime, and LoadAfter describe this position; every Cum* and
// *Count field is a running total from route position 0 through this
// position, so Feasible and Cost read straight off the last entry in O(1).
type State struct {
	ArrivalTime   float64
	DepartureTime float64
	LoadAfter     float64
	CumTravel     float64
	CumLateness   float64 // sum of minutes late across all positions so far
	CumWait       float64 // sum of minutes waited across all positions so far
	CumCapOver    float64 // sum of load_after-capacity overflow across all positions so far
	TWVCount      int     // count of positions with arrival > closes
	CVCount       int     // count of positions with load_after > capacity
	DumpCount     int     // count of interior Dump positions so far
}

// Route is a single vehicle's ordered sequence of node ids, owned by
// exactly one Solution.
type Route struct {
	Vehicle  model.Vehicle
	Sequence []int
	State    []State

	catalog *catalog.Catalog
	oracle  oracle.CostOracle
}

// New builds the trivial [start, end] route for vehicle and evaluates it.
func New(ctx context.Context, v model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle) *Route {
	r := &Route{
		Vehicle:  v,
		Sequence: []int{v.StartDepotID, v.EndDepotID},
		catalog:  cat,
		oracle:   oc,
	}
	r.State = make([]State, len(r.Sequence))
	r.EvaluateFrom(ctx, 0)
	return r
}

// Clone deep-copies the route, required for best-known tracking and for
// move simulation when an in-place delta is impractical.
func (r *Route) Clone() *Route {
	out := &Route{
		Vehicle:  r.Vehicle,
		Sequence: append([]int(nil), r.Sequence...),
		State:    append([]State(nil), r.State...),
		catalog:  r.catalog,
		oracle:   r.oracle,
	}
	return out
}

// EvaluateFrom recomputes cached state from position i to the end in a
// single forward pass, in O(n-i).
func (r *Route) EvaluateFrom(ctx context.Context, i int) {
	if cap(r.State) < len(r.Sequence) || len(r.State) != len(r.Sequence) {
		ns := make([]State, len(r.Sequence))
		copy(ns, r.State)
		r.State = ns
	}
	for pos := i; pos < len(r.Sequence); pos++ {
		r.State[pos] = r.evaluatePosition(ctx, pos)
	}
}

func (r *Route) evaluatePosition(ctx context.Context, pos int) State {
	node := r.catalog.MustGet(r.Sequence[pos])

	if pos == 0 {
		arrival := r.Vehicle.ShiftStart
		wait := math.Max(0, node.Opens-arrival)
		departure := math.Max(arrival, node.Opens) + node.Service
		late := math.Max(0, arrival-node.Closes)
		s := State{
			ArrivalTime:   arrival,
			DepartureTime: departure,
			LoadAfter:     0,
			CumTravel:     0,
			CumLateness:   late,
			CumWait:       wait,
		}
		if late > 0 {
			s.TWVCount = 1
		}
		return s
	}

	prev := r.State[pos-1]
	travel, ok := r.oracle.Travel(ctx, r.Sequence[pos-1], r.Sequence[pos])
	if !ok {
		travel = oracle.Inf
	}
	arrival := prev.DepartureTime + travel
	wait := math.Max(0, node.Opens-arrival)
	departure := math.Max(arrival, node.Opens) + node.Service
	late := math.Max(0, arrival-node.Closes)

	var load float64
	dumpCount := prev.DumpCount
	isTerminal := pos == len(r.Sequence)-1
	switch {
	case isTerminal:
		// The final position is always the vehicle's end depot
		// structurally, even if the same node id also serves as a Dump
		// elsewhere in the network; it never resets cargo or counts as
		// a trip in that role.
		load = prev.LoadAfter
	case node.Kind == model.Dump:
		load = 0
		dumpCount++
	case node.Kind == model.Container:
		load = prev.LoadAfter + node.Demand
	default:
		load = prev.LoadAfter
	}

	capOver := 0.0
	if load > r.Vehicle.Capacity {
		capOver = load - r.Vehicle.Capacity
	}

	s := State{
		ArrivalTime:   arrival,
		DepartureTime: departure,
		LoadAfter:     load,
		CumTravel:     prev.CumTravel + travel,
		CumLateness:   prev.CumLateness + late,
		CumWait:       prev.CumWait + wait,
		CumCapOver:    prev.CumCapOver + capOver,
		TWVCount:      prev.TWVCount,
		CVCount:       prev.CVCount,
		DumpCount:     dumpCount,
	}
	if late > 0 {
		s.TWVCount++
	}
	if load > r.Vehicle.Capacity {
		s.CVCount++
	}
	return s
}

func (r *Route) last() State {
	return r.State[len(r.State)-1]
}

// Feasible reports whether the route currently satisfies every hard
// constraint, in O(1) from cached totals.
func (r *Route) Feasible() bool {
	l := r.last()
	return l.TWVCount == 0 &&
		l.CVCount == 0 &&
		l.ArrivalTime <= r.Vehicle.ShiftEnd &&
		l.DumpCount <= r.Vehicle.MaxTrips &&
		r.State[0].DepartureTime >= r.Vehicle.ShiftStart
}

// Cost returns the scalar cost of this route under weights, in O(1) from
// cached totals.
func (r *Route) Cost(w Weights) float64 {
	l := r.last()
	// CumCapOver sums the load-capacity overflow at every position visited
	// so far, so an interior excursion that a later Dump drains still
	// costs, mirroring CumLateness.
	return w.Dist*l.CumTravel + w.TW*l.CumLateness + w.Cap*l.CumCapOver +
		w.Wait*l.CumWait + w.Trips*float64(l.DumpCount)
}

// NumContainers returns the number of Container positions currently in
// the route.
func (r *Route) NumContainers() int {
	n := 0
	for _, id := range r.Sequence {
		if node, ok := r.catalog.Get(id); ok && node.Kind == model.Container {
			n++
		}
	}
	return n
}

// Insert places node_id at position i (pushing the rest of the sequence
// right) and re-evaluates from i, in O(n) amortized.
func (r *Route) Insert(ctx context.Context, i, nodeID int) {
	r.Sequence = append(r.Sequence, 0)
	copy(r.Sequence[i+1:], r.Sequence[i:])
	r.Sequence[i] = nodeID
	r.EvaluateFrom(ctx, i)
}

// Remove deletes the node at position i and re-evaluates from i, in O(n).
func (r *Route) Remove(ctx context.Context, i int) {
	r.Sequence = append(r.Sequence[:i], r.Sequence[i+1:]...)
	r.EvaluateFrom(ctx, i)
}

// Swap exchanges the nodes at positions i and j within this route and
// re-evaluates from min(i, j), in O(n).
func (r *Route) Swap(ctx context.Context, i, j int) {
	if i == j {
		return
	}
	r.Sequence[i], r.Sequence[j] = r.Sequence[j], r.Sequence[i]
	lo := i
	if j < lo {
		lo = j
	}
	r.EvaluateFrom(ctx, lo)
}

// DeltaInsert evaluates inserting node_id at position i without mutating
// the route, returning the cost delta and whether the route would remain
// feasible afterward.
func (r *Route) DeltaInsert(ctx context.Context, w Weights, i, nodeID int) (deltaCost float64, feasibleAfter bool) {
	before := r.Cost(w)
	clone := r.Clone()
	clone.Insert(ctx, i, nodeID)
	return clone.Cost(w) - before, clone.Feasible()
}

// DeltaRemove evaluates removing the node at position i without mutating
// the route.
func (r *Route) DeltaRemove(ctx context.Context, w Weights, i int) (deltaCost float64, feasibleAfter bool) {
	before := r.Cost(w)
	clone := r.Clone()
	clone.Remove(ctx, i)
	return clone.Cost(w) - before, clone.Feasible()
}

// DeltaSwap evaluates swapping positions i and j within this route
// without mutating it.
func (r *Route) DeltaSwap(ctx context.Context, w Weights, i, j int) (deltaCost float64, feasibleAfter bool) {
	before := r.Cost(w)
	clone := r.Clone()
	clone.Swap(ctx, i, j)
	return clone.Cost(w) - before, clone.Feasible()
}

// DeltaSwapBetween evaluates exchanging the container at position i in r
// with the container at position j in other, without mutating either
// route. It returns the combined delta cost of both routes and whether
// both remain feasible afterward.
func DeltaSwapBetween(ctx context.Context, w Weights, r *Route, i int, other *Route, j int) (deltaCost float64, feasibleAfter bool) {
	beforeA, beforeB := r.Cost(w), other.Cost(w)
	cloneA, cloneB := r.Clone(), other.Clone()
	cloneA.Sequence[i], cloneB.Sequence[j] = cloneB.Sequence[j], cloneA.Sequence[i]
	cloneA.EvaluateFrom(ctx, i)
	cloneB.EvaluateFrom(ctx, j)
	delta := (cloneA.Cost(w) - beforeA) + (cloneB.Cost(w) - beforeB)
	return delta, cloneA.Feasible() && cloneB.Feasible()
}

// NearestPrecedingDump returns the position of the nearest Dump at or
// before position i, or -1 if the route starts (position 0) before any
// Dump.
func (r *Route) NearestPrecedingDump(i int) int {
	for pos := i; pos >= 0; pos-- {
		if node, ok := r.catalog.Get(r.Sequence[pos]); ok && node.Kind == model.Dump {
			return pos
		}
	}
	return -1
}
