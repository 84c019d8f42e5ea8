package builder

import (
	"context"
	"testing"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/model"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/oracle"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// tinyFixture mirrors the "Tiny" end-to-end scenario: 3 co-located
// containers, windows [480, 600], demand 1 each, one vehicle capacity 5,
// shift [360, 840], max_trips=1, start/end/dump at the same depot id D.
func tinyFixture(t *testing.T) (*catalog.Catalog, oracle.CostOracle, []model.Vehicle) {
	t.Helper()
	const D = 100
	nodes := []model.Node{
		{ID: D, Opens: 0, Closes: 1440, Kind: model.Depot},
		{ID: 1, Opens: 480, Closes: 600, Demand: 1, Kind: model.Container},
		{ID: 2, Opens: 480, Closes: 600, Demand: 1, Kind: model.Container},
		{ID: 3, Opens: 480, Closes: 600, Demand: 1, Kind: model.Container},
	}
	cat, err := catalog.New(nodes)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	edges := map[[2]int]float64{}
	ids := []int{D, 1, 2, 3}
	for _, a := range ids {
		for _, b := range ids {
			if a != b {
				edges[[2]int{a, b}] = 1
			}
		}
	}
	oc := oracle.NewMatrixOracle(edges)
	vehicles := []model.Vehicle{{VID: 1, StartDepotID: D, DumpID: D, EndDepotID: D, Capacity: 5, MaxTrips: 1, ShiftStart: 360, ShiftEnd: 840}}
	return cat, oc, vehicles
}

func TestRunAllTinyScenario(t *testing.T) {
	cat, oc, vehicles := tinyFixture(t)
	outcome := RunAll(context.Background(), vehicles, cat, oc, routeplan.DefaultWeights, 1, observe.Noop{})

	if outcome.Solution == nil {
		t.Fatal("expected a non-nil outcome solution")
	}
	if len(outcome.Solution.Unassigned) != 0 {
		t.Fatalf("expected all containers assigned, got %d unassigned", len(outcome.Solution.Unassigned))
	}
	if !outcome.Solution.IsFeasible() {
		t.Fatal("expected the tiny scenario to be feasible")
	}
	r := outcome.Solution.Routes[0]
	if r.Sequence[0] != 100 || r.Sequence[len(r.Sequence)-1] != 100 {
		t.Fatalf("expected sequence to start/end at depot 100, got %v", r.Sequence)
	}
}

// capacityForcesDumpFixture mirrors the "Capacity forces dump" scenario:
// 4 containers demand 3 each, capacity 5 — only one container fits per
// trip, so four trips and three dump visits are needed. D serves as
// start, dump, and end, so it carries Kind Dump, as the parser assigns to
// any id referenced as a dump_id.
func capacityForcesDumpFixture(t *testing.T) (*catalog.Catalog, oracle.CostOracle, []model.Vehicle) {
	t.Helper()
	const D = 100
	nodes := []model.Node{
		{ID: D, Opens: 0, Closes: 1440, Kind: model.Dump},
		{ID: 1, Opens: 0, Closes: 1440, Demand: 3, Kind: model.Container},
		{ID: 2, Opens: 0, Closes: 1440, Demand: 3, Kind: model.Container},
		{ID: 3, Opens: 0, Closes: 1440, Demand: 3, Kind: model.Container},
		{ID: 4, Opens: 0, Closes: 1440, Demand: 3, Kind: model.Container},
	}
	cat, err := catalog.New(nodes)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	edges := map[[2]int]float64{}
	ids := []int{D, 1, 2, 3, 4}
	for _, a := range ids {
		for _, b := range ids {
			if a != b {
				edges[[2]int{a, b}] = 1
			}
		}
	}
	oc := oracle.NewMatrixOracle(edges)
	vehicles := []model.Vehicle{{VID: 1, StartDepotID: D, DumpID: D, EndDepotID: D, Capacity: 5, MaxTrips: 3, ShiftStart: 0, ShiftEnd: 1440}}
	return cat, oc, vehicles
}

func TestRunAllCapacityForcesDump(t *testing.T) {
	cat, oc, vehicles := capacityForcesDumpFixture(t)
	outcome := RunAll(context.Background(), vehicles, cat, oc, routeplan.DefaultWeights, 1, observe.Noop{})

	if len(outcome.Solution.Unassigned) != 0 {
		t.Fatalf("expected all containers assigned with max_trips=3, got %d unassigned", len(outcome.Solution.Unassigned))
	}
	r := outcome.Solution.Routes[0]
	if r.State[len(r.State)-1].DumpCount < 3 {
		t.Fatalf("expected at least 3 dump visits, got %d", r.State[len(r.State)-1].DumpCount)
	}
}

func TestRunAllInsufficientMaxTripsLeavesUnassigned(t *testing.T) {
	cat, oc, vehicles := capacityForcesDumpFixture(t)
	vehicles[0].MaxTrips = 1
	outcome := RunAll(context.Background(), vehicles, cat, oc, routeplan.DefaultWeights, 1, observe.Noop{})

	if len(outcome.Solution.Unassigned) == 0 {
		t.Fatal("expected at least one unassigned container when max_trips is too small")
	}
}

func TestBetterPrefersLowerCost(t *testing.T) {
	cat, oc, vehicles := tinyFixture(t)
	ctx := context.Background()
	a := solutionOf(t, ctx, vehicles, cat, oc)
	b := solutionOf(t, ctx, vehicles, cat, oc)
	b.MarkUnassigned(1)

	if !better(a, a.TotalCost(routeplan.DefaultWeights), b, b.TotalCost(routeplan.DefaultWeights)) {
		t.Fatal("expected the solution with no unassigned containers to be preferred")
	}
}

func solutionOf(t *testing.T, ctx context.Context, vehicles []model.Vehicle, cat *catalog.Catalog, oc oracle.CostOracle) *solution.Solution {
	t.Helper()
	return buildFromOrder(ctx, orderByClosing(cat), vehicles, cat, oc, routeplan.DefaultWeights)
}
