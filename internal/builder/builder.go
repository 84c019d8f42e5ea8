// Package builder implements the Constructive Builder (TruckManyVisitsDump):
// seven greedy initialization strategies that each produce a feasible
// Solution, of which the caller keeps the cheapest.
package builder

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/metrics"
	"trashcvrp/internal/model"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/oracle"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// Strategy names, in the fixed numbering used for reporting and metrics.
const (
	EarliestClosing = 1
	LargestDemand   = 2
	FarthestFromDump = 3
	NearestSweep    = 4
	RandomPermuted  = 5
	AngularSweep    = 6
	CheapestRegret  = 7
)

var strategyNames = map[int]string{
	EarliestClosing:  "earliest_closing",
	LargestDemand:    "largest_demand",
	FarthestFromDump: "farthest_from_dump",
	NearestSweep:     "nearest_sweep",
	RandomPermuted:   "random_permuted",
	AngularSweep:     "angular_sweep",
	CheapestRegret:   "cheapest_regret",
}

// Outcome is the result of running every strategy: the winning Solution
// and which strategy produced it.
type Outcome struct {
	Solution *solution.Solution
	Strategy int
	Cost     float64
}

// RunAll executes all seven strategies and keeps the lowest-cost result,
// breaking ties by fewer vehicles used, then fewer unassigned containers.
func RunAll(ctx context.Context, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle, w routeplan.Weights, seed int64, obs observe.Observer) Outcome {
	var best Outcome
	best.Strategy = -1

	run := func(id int, sol *solution.Solution) {
		cost := sol.TotalCost(w)
		metrics.BuilderStrategyCost.WithLabelValues(strategyNames[id]).Observe(cost)
		obs.Printf("builder: strategy %s cost=%.2f vehicles=%d unassigned=%d",
			strategyNames[id], cost, sol.NumVehiclesUsed(), len(sol.Unassigned))
		if best.Strategy == -1 || better(sol, cost, best.Solution, best.Cost) {
			best = Outcome{Solution: sol, Strategy: id, Cost: cost}
		}
	}

	run(EarliestClosing, buildFromOrder(ctx, orderByClosing(cat), vehicles, cat, oc, w))
	run(LargestDemand, buildFromOrder(ctx, orderByDemandDesc(cat), vehicles, cat, oc, w))
	run(FarthestFromDump, buildFromOrder(ctx, orderByDumpDistanceDesc(cat), vehicles, cat, oc, w))
	run(NearestSweep, buildNearestSweep(ctx, vehicles, cat, oc, w))
	run(RandomPermuted, buildFromOrder(ctx, orderRandomPermutation(cat, seed), vehicles, cat, oc, w))
	run(AngularSweep, buildFromOrder(ctx, orderByAngularSweep(cat), vehicles, cat, oc, w))
	run(CheapestRegret, buildRegret(ctx, vehicles, cat, oc, w))

	return best
}

func better(sol *solution.Solution, cost float64, bestSol *solution.Solution, bestCost float64) bool {
	if cost != bestCost {
		return cost < bestCost
	}
	if v1, v2 := sol.NumVehiclesUsed(), bestSol.NumVehiclesUsed(); v1 != v2 {
		return v1 < v2
	}
	return len(sol.Unassigned) < len(bestSol.Unassigned)
}

func newEmptyRoutes(ctx context.Context, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle) []*routeplan.Route {
	routes := make([]*routeplan.Route, len(vehicles))
	for i, v := range vehicles {
		routes[i] = routeplan.New(ctx, v, cat, oc)
	}
	return routes
}

// ---- ordering strategies (1, 2, 3, 5, 6) ----

func orderByClosing(cat *catalog.Catalog) []int {
	ids := append([]int(nil), cat.Containers()...)
	sort.SliceStable(ids, func(i, j int) bool {
		return cat.MustGet(ids[i]).Closes < cat.MustGet(ids[j]).Closes
	})
	return ids
}

func orderByDemandDesc(cat *catalog.Catalog) []int {
	ids := append([]int(nil), cat.Containers()...)
	sort.SliceStable(ids, func(i, j int) bool {
		return cat.MustGet(ids[i]).Demand > cat.MustGet(ids[j]).Demand
	})
	return ids
}

func orderByDumpDistanceDesc(cat *catalog.Catalog) []int {
	ids := append([]int(nil), cat.Containers()...)
	dist := func(id int) float64 {
		n := cat.MustGet(id)
		best := math.Inf(1)
		for _, did := range cat.Dumps() {
			d := cat.MustGet(did)
			e := euclid(n.X, n.Y, d.X, d.Y)
			if e < best {
				best = e
			}
		}
		return best
	}
	sort.SliceStable(ids, func(i, j int) bool { return dist(ids[i]) > dist(ids[j]) })
	return ids
}

func orderRandomPermutation(cat *catalog.Catalog, seed int64) []int {
	ids := append([]int(nil), cat.Containers()...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

func orderByAngularSweep(cat *catalog.Catalog) []int {
	ids := append([]int(nil), cat.Containers()...)
	if len(ids) == 0 {
		return ids
	}
	var cx, cy float64
	for _, id := range ids {
		n := cat.MustGet(id)
		cx += n.X
		cy += n.Y
	}
	cx /= float64(len(ids))
	cy /= float64(len(ids))
	angle := func(id int) float64 {
		n := cat.MustGet(id)
		return math.Atan2(n.Y-cy, n.X-cx)
	}
	sort.SliceStable(ids, func(i, j int) bool { return angle(ids[i]) < angle(ids[j]) })
	return ids
}

func euclid(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}

// buildFromOrder places containers in the given fixed order, repeating
// passes over whatever remains until a full pass makes no progress.
func buildFromOrder(ctx context.Context, order []int, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle, w routeplan.Weights) *solution.Solution {
	routes := newEmptyRoutes(ctx, vehicles, cat, oc)
	sol := solution.New(routes)
	pending := append([]int(nil), order...)
	for len(pending) > 0 {
		var next []int
		progress := false
		for _, c := range pending {
			if placeContainer(ctx, sol, cat, w, c) {
				progress = true
			} else {
				next = append(next, c)
			}
		}
		pending = next
		if !progress {
			break
		}
	}
	for _, c := range pending {
		sol.MarkUnassigned(c)
	}
	return sol
}

// buildNearestSweep (#4) grows each vehicle's route by repeatedly
// appending whichever remaining container is nearest its current last
// position, chaining dumps as capacity requires.
func buildNearestSweep(ctx context.Context, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle, w routeplan.Weights) *solution.Solution {
	routes := newEmptyRoutes(ctx, vehicles, cat, oc)
	sol := solution.New(routes)
	pool := map[int]bool{}
	for _, id := range cat.Containers() {
		pool[id] = true
	}
	for {
		progress := false
		for _, r := range sol.Routes {
			if len(pool) == 0 {
				break
			}
			lastNode := cat.MustGet(r.Sequence[len(r.Sequence)-2])
			if len(r.Sequence) == 2 {
				lastNode = cat.MustGet(r.Sequence[0])
			}
			nearest, nearestDist := -1, math.Inf(1)
			for _, id := range sortedKeys(pool) {
				n := cat.MustGet(id)
				d := euclid(lastNode.X, lastNode.Y, n.X, n.Y)
				if d < nearestDist {
					nearestDist = d
					nearest = id
				}
			}
			if nearest == -1 {
				continue
			}
			pos := len(r.Sequence) - 1
			if delta, feasible, usedDump := insertWithOptionalDump(ctx, r, pos, nearest, r.Vehicle.DumpID, w); feasible {
				_ = delta
				if usedDump {
					r.Insert(ctx, pos, r.Vehicle.DumpID)
					r.Insert(ctx, pos+1, nearest)
				} else {
					r.Insert(ctx, pos, nearest)
				}
				delete(pool, nearest)
				progress = true
			}
		}
		if !progress || len(pool) == 0 {
			break
		}
	}
	for _, id := range sortedKeys(pool) {
		sol.MarkUnassigned(id)
	}
	return sol
}

// sortedKeys returns pool's keys in ascending order, so callers that pick
// a tie-broken winner (e.g. nearest-neighbor with equal distances) do not
// depend on Go's randomized map iteration order.
func sortedKeys(pool map[int]bool) []int {
	ids := make([]int, 0, len(pool))
	for id := range pool {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// buildRegret (#7) repeatedly inserts the container whose second-best
// insertion cost most exceeds its best, i.e. the one that becomes most
// expensive to defer.
func buildRegret(ctx context.Context, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle, w routeplan.Weights) *solution.Solution {
	routes := newEmptyRoutes(ctx, vehicles, cat, oc)
	sol := solution.New(routes)
	pending := append([]int(nil), cat.Containers()...)

	for len(pending) > 0 {
		bestIdx := -1
		bestRegret := math.Inf(-1)
		for i, c := range pending {
			costs := feasibleInsertionCosts(ctx, sol, cat, w, c)
			if len(costs) == 0 {
				continue
			}
			regret := 0.0
			if len(costs) >= 2 {
				regret = costs[1] - costs[0]
			}
			if bestIdx == -1 || regret > bestRegret {
				bestIdx = i
				bestRegret = regret
			}
		}
		if bestIdx == -1 {
			break
		}
		c := pending[bestIdx]
		placeContainer(ctx, sol, cat, w, c)
		pending = append(pending[:bestIdx], pending[bestIdx+1:]...)
	}
	for _, c := range pending {
		sol.MarkUnassigned(c)
	}
	return sol
}

// feasibleInsertionCosts returns the sorted (ascending) feasible
// insertion delta costs for containerID across every route and position,
// each already minimized over the plain-insert vs dump-chained options.
func feasibleInsertionCosts(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, containerID int) []float64 {
	var costs []float64
	for _, r := range sol.Routes {
		for pos := 1; pos < len(r.Sequence); pos++ {
			if delta, feasible, _ := insertWithOptionalDump(ctx, r, pos, containerID, r.Vehicle.DumpID, w); feasible {
				costs = append(costs, delta)
			}
		}
	}
	sort.Float64s(costs)
	return costs
}

// placeContainer inserts containerID at its globally cheapest feasible
// position across every route, chaining a dump when capacity requires
// it. Returns false if no feasible placement exists anywhere.
func placeContainer(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, containerID int) bool {
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

// insertWithOptionalDump tries inserting containerID directly at pos; if
// that would leave the route infeasible, it tries inserting dumpID
// immediately before it as well. It never mutates route.
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
