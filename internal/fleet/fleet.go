// Package fleet implements the Fleet Optimizer: a post-tabu pass that
// tries to empty and delete routes entirely, redistributing their
// containers to the remaining fleet.
package fleet

import (
	"context"
	"math"
	"sort"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/metrics"
	"trashcvrp/internal/model"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// Reduce attempts to remove routes from sol, in ascending order of
// container count, redistributing each removed route's containers via
// cheapest feasible insertion elsewhere. A removal is committed only if
// every container is re-placed feasibly and the resulting total cost
// does not exceed the pre-pass cost by more than slack (a fraction, e.g.
// 0.02 for 2%).
func Reduce(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, slack float64, obs observe.Observer) *solution.Solution {
	preCost := sol.TotalCost(w)

	for {
		order := routesByContainerCount(sol)
		removedAny := false
		for _, ri := range order {
			if len(sol.Routes) <= 1 {
				break
			}
			if ri >= len(sol.Routes) {
				continue
			}
			candidate, ok := tryRemove(ctx, sol, cat, w, ri)
			if !ok {
				metrics.FleetReductions.WithLabelValues("reverted").Inc()
				continue
			}
			newCost := candidate.TotalCost(w)
			if newCost > preCost*(1+slack) {
				metrics.FleetReductions.WithLabelValues("reverted").Inc()
				continue
			}
			sol = candidate
			metrics.FleetReductions.WithLabelValues("committed").Inc()
			obs.Printf("fleet: removed route index %d, cost now %.2f", ri, newCost)
			removedAny = true
			break // route indices shifted; restart the scan
		}
		if !removedAny {
			break
		}
	}
	return sol
}

func routesByContainerCount(sol *solution.Solution) []int {
	idx := make([]int, len(sol.Routes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return sol.Routes[idx[a]].NumContainers() < sol.Routes[idx[b]].NumContainers()
	})
	return idx
}

// tryRemove tentatively deletes route index victim and redistributes its
// containers; it returns a candidate Solution and true only if every
// container found a feasible new home.
func tryRemove(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, victim int) (*solution.Solution, bool) {
	victimRoute := sol.Routes[victim]
	var containers []int
	for _, id := range victimRoute.Sequence {
		if n, ok := cat.Get(id); ok && n.Kind == model.Container {
			containers = append(containers, id)
		}
	}

	candidate := sol.Clone()
	candidate.Routes = append(append([]*routeplan.Route{}, candidate.Routes[:victim]...), candidate.Routes[victim+1:]...)

	for _, c := range containers {
		if !placeCheapest(ctx, candidate, cat, w, c) {
			return nil, false
		}
	}
	return candidate, true
}

// placeCheapest inserts containerID at its cheapest feasible position
// across candidate's routes, chaining a dump if capacity requires it.
func placeCheapest(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, containerID int) bool {
	bestRoute, bestPos, bestDelta := -1, -1, math.Inf(1)
	bestUsedDump := false
	for ri, r := range sol.Routes {
		for pos := 1; pos < len(r.Sequence); pos++ {
			delta, feasible, usedDump := insertWithOptionalDump(ctx, r, pos, containerID, r.Vehicle.DumpID, w)
			if feasible && delta < bestDelta {
				bestRoute, bestPos, bestDelta, bestUsedDump = ri, pos, delta, usedDump
			}
		}
	}
	if bestRoute == -1 {
		return false
	}
	r := sol.Routes[bestRoute]
	if bestUsedDump {
		r.Insert(ctx, bestPos, r.Vehicle.DumpID)
		r.Insert(ctx, bestPos+1, containerID)
	} else {
		r.Insert(ctx, bestPos, containerID)
	}
	return true
}

func insertWithOptionalDump(ctx context.Context, route *routeplan.Route, pos, containerID, dumpID int, w routeplan.Weights) (delta float64, feasible bool, usedDump bool) {
	before := route.Cost(w)

	direct := route.Clone()
	direct.Insert(ctx, pos, containerID)
	if direct.Feasible() {
		return direct.Cost(w) - before, true, false
	}

	withDump := route.Clone()
	withDump.Insert(ctx, pos, dumpID)
	withDump.Insert(ctx, pos+1, containerID)
	if withDump.Feasible() {
		return withDump.Cost(w) - before, true, true
	}

	return 0, false, false
}
