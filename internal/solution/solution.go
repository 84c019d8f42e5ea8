// Package solution implements the Solution aggregate: a set of routes
// plus the set of containers no route could feasibly accept.
package solution

import (
	"trashcvrp/internal/model"
	"trashcvrp/internal/routeplan"
)

// Solution owns its Routes exclusively; Routes are never shared between
// Solutions.
type Solution struct {
	Routes     []*routeplan.Route
	Unassigned map[int]struct{}
}

// New creates an empty Solution over the given routes with no unassigned
// containers.
func New(routes []*routeplan.Route) *Solution {
	return &Solution{
		Routes:     routes,
		Unassigned: make(map[int]struct{}),
	}
}

// TotalCost sums every route's cost plus the unassigned-container
// penalty.
func (s *Solution) TotalCost(w routeplan.Weights) float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += r.Cost(w)
	}
	total += w.Unassigned * float64(len(s.Unassigned))
	return total
}

// NumVehiclesUsed counts routes whose sequence contains at least one
// Container.
func (s *Solution) NumVehiclesUsed() int {
	n := 0
	for _, r := range s.Routes {
		if r.NumContainers() > 0 {
			n++
		}
	}
	return n
}

// IsFeasible reports whether every route is feasible. Unassigned
// containers do not make a Solution infeasible — they are penalized in
// cost instead, per the Infeasible error kind's "reported, not fatal"
// semantics.
func (s *Solution) IsFeasible() bool {
	for _, r := range s.Routes {
		if !r.Feasible() {
			return false
		}
	}
	return true
}

// Clone deep-copies the Solution, including every Route, required for
// best-known tracking and for move simulation when an in-place delta is
// impractical.
func (s *Solution) Clone() *Solution {
	out := &Solution{
		Routes:     make([]*routeplan.Route, len(s.Routes)),
		Unassigned: make(map[int]struct{}, len(s.Unassigned)),
	}
	for i, r := range s.Routes {
		out.Routes[i] = r.Clone()
	}
	for id := range s.Unassigned {
		out.Unassigned[id] = struct{}{}
	}
	return out
}

// MarkUnassigned records container id as unable to be placed feasibly.
func (s *Solution) MarkUnassigned(id int) {
	s.Unassigned[id] = struct{}{}
}

// UnmarkUnassigned records container id as now placed.
func (s *Solution) UnmarkUnassigned(id int) {
	delete(s.Unassigned, id)
}

// ContainerLocations returns, for every container currently in some
// route, the (route index, position) it occupies. Useful for move
// generation and for reporting.
func (s *Solution) ContainerLocations(kindOf func(id int) model.Kind) map[int][2]int {
	out := make(map[int][2]int)
	for ri, r := range s.Routes {
		for pos, id := range r.Sequence {
			if kindOf(id) == model.Container {
				out[id] = [2]int{ri, pos}
			}
		}
	}
	return out
}
