// Package tabu implements the Tabu Search Driver: the main
// generate-evaluate-apply loop that improves a Constructive Builder
// Solution using the Move Generator over the Route Model.
package tabu

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/config"
	"trashcvrp/internal/metrics"
	"trashcvrp/internal/moves"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// Result is what a Solve run returns: the best feasible Solution found
// and why the search stopped.
type Result struct {
	Best       *solution.Solution
	Iterations int
	Stopped    string // "converged", "patience", "max_iters", "timeout", "cancelled"
}

// Driver owns current and best exclusively for the lifetime of one
// Solve call; no operation suspends other than the cancellation check at
// the top of each iteration.
type Driver struct {
	cat *catalog.Catalog
	cfg config.Config
	obs observe.Observer
	rng *rand.Rand

	tabuMap map[moves.Attribute]int
}

// New builds a Driver over cat, configured by cfg, reporting through obs.
func New(cat *catalog.Catalog, cfg config.Config, obs observe.Observer) *Driver {
	return &Driver{
		cat:     cat,
		cfg:     cfg,
		obs:     obs,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		tabuMap: make(map[moves.Attribute]int),
	}
}

// Solve runs the tabu search loop starting from initial, returning the
// best feasible Solution encountered. Cancellation is checked at the top
// of every iteration; on cancel or timeout it returns best-so-far.
func (d *Driver) Solve(ctx context.Context, initial *solution.Solution) Result {
	current := initial.Clone()
	best := initial.Clone()

	nContainers := len(d.cat.Containers())
	tenure := d.cfg.TabuTenure(nContainers)
	maxIters := config.MaxIters(nContainers)
	patience := config.Patience(nContainers)
	if maxIters == 0 {
		maxIters = 1
	}
	if patience == 0 {
		patience = 1
	}

	deadline := time.Now().Add(d.cfg.TimeBudget)
	itersSinceImprove := 0
	iter := 0
	stopped := "converged"

loop:
	for {
		select {
		case <-ctx.Done():
			stopped = "cancelled"
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				stopped = "timeout"
			}
			break loop
		default:
		}
		if iter >= maxIters {
			stopped = "max_iters"
			break loop
		}
		if itersSinceImprove >= patience {
			stopped = "patience"
			break loop
		}
		if time.Now().After(deadline) {
			stopped = "timeout"
			break loop
		}

		candidates := moves.Generate(ctx, current, d.cat, d.cfg.Weights, d.cfg.NeighborhoodCap, d.rng)
		if len(candidates) == 0 {
			stopped = "converged"
			break loop
		}
		for _, c := range candidates {
			metrics.MovesEvaluated.WithLabelValues(c.Move.Kind.String()).Inc()
		}

		wasFeasible := current.IsFeasible()
		currentCost := current.TotalCost(d.cfg.Weights)
		bestCost := best.TotalCost(d.cfg.Weights)

		chosen, chosenIdx, found := d.pickBest(candidates, iter, currentCost, bestCost, wasFeasible)
		if !found {
			stopped = "converged"
			break loop
		}
		_ = chosenIdx

		moves.Apply(ctx, current, chosen.Move)
		attr := moves.AttributeOf(chosen.Move)
		d.tabuMap[attr] = iter + tenure
		d.sweepExpired(iter)

		iter++
		newCost := current.TotalCost(d.cfg.Weights)
		if current.IsFeasible() && newCost < bestCost {
			best = current.Clone()
			metrics.BestCost.Set(newCost)
			metrics.TabuIterations.WithLabelValues("improved").Inc()
			itersSinceImprove = 0
		} else {
			metrics.TabuIterations.WithLabelValues("accepted").Inc()
			itersSinceImprove++
		}
		d.obs.Iteration(iter, newCost, current.IsFeasible())

		if itersSinceImprove > patience/2 {
			d.diversify(ctx, current)
		}
	}

	return Result{Best: best, Iterations: iter, Stopped: stopped}
}

func (d *Driver) sweepExpired(iter int) {
	for attr, expiry := range d.tabuMap {
		if expiry <= iter {
			delete(d.tabuMap, attr)
		}
	}
}

// pickBest selects the admissible candidate with minimum delta cost,
// breaking ties by: feasibility-restoring first, then inter-route over
// intra-route, then lowest lexicographic order on the tabu attribute.
func (d *Driver) pickBest(candidates []moves.Candidate, iter int, currentCost, bestCost float64, wasFeasible bool) (moves.Candidate, int, bool) {
	bestIdx := -1
	var best moves.Candidate
	for i, c := range candidates {
		attr := moves.AttributeOf(c.Move)
		expiry, tabu := d.tabuMap[attr]
		isTabu := tabu && expiry > iter
		aspiration := c.FeasibleAfter && (currentCost+c.DeltaCost) < bestCost
		admissible := (c.FeasibleAfter && !isTabu) || aspiration
		if !admissible {
			continue
		}
		if bestIdx == -1 || betterCandidate(c, best, wasFeasible) {
			best = c
			bestIdx = i
		}
	}
	return best, bestIdx, bestIdx != -1
}

func betterCandidate(a, b moves.Candidate, wasFeasible bool) bool {
	if a.DeltaCost != b.DeltaCost {
		return a.DeltaCost < b.DeltaCost
	}
	if !wasFeasible {
		if a.FeasibleAfter != b.FeasibleAfter {
			return a.FeasibleAfter
		}
	}
	aInter := a.Move.Kind == moves.InterSwap || (a.Move.Kind == moves.Insert && a.Move.RouteA != a.Move.RouteB)
	bInter := b.Move.Kind == moves.InterSwap || (b.Move.Kind == moves.Insert && b.Move.RouteA != b.Move.RouteB)
	if aInter != bInter {
		return aInter
	}
	aa, ba := moves.AttributeOf(a.Move), moves.AttributeOf(b.Move)
	if aa.Kind != ba.Kind {
		return aa.Kind < ba.Kind
	}
	if aa.A != ba.A {
		return aa.A < ba.A
	}
	return aa.B < ba.B
}

// diversify perturbs current by forcing an inter-route insertion of a
// uniformly random container, when the search has been stuck for more
// than half the patience budget. How often a container has moved is not
// tracked and does not influence the choice.
func (d *Driver) diversify(ctx context.Context, current *solution.Solution) {
	if len(current.Routes) < 2 {
		return
	}
	containers := d.cat.Containers()
	if len(containers) == 0 {
		return
	}
	containerID := containers[d.rng.Intn(len(containers))]

	var srcRoute *routeplan.Route
	srcPos := -1
	srcIdx := -1
	for ri, r := range current.Routes {
		for pos, id := range r.Sequence {
			if id == containerID {
				srcRoute, srcPos, srcIdx = r, pos, ri
				break
			}
		}
	}
	if srcRoute == nil {
		return
	}
	dstIdx := d.rng.Intn(len(current.Routes))
	if dstIdx == srcIdx {
		dstIdx = (dstIdx + 1) % len(current.Routes)
	}
	dstRoute := current.Routes[dstIdx]
	if len(dstRoute.Sequence) < 2 {
		return
	}
	dstPos := 1 + d.rng.Intn(len(dstRoute.Sequence)-1)

	moves.Apply(ctx, current, moves.Move{
		Kind: moves.Insert, RouteA: srcIdx, PosA: srcPos, RouteB: dstIdx, PosB: dstPos,
		NodeA: containerID, TargetVID: dstRoute.Vehicle.VID,
	})
}
