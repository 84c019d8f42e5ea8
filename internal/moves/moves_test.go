package moves

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/model"
	"trashcvrp/internal/oracle"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

func twoRouteFixture(t *testing.T) (*catalog.Catalog, *solution.Solution) {
	t.Helper()
	nodes := []model.Node{
		{ID: 100, Opens: 0, Closes: 2000, Kind: model.Depot},
		{ID: 1, Opens: 0, Closes: 2000, Demand: 1, Kind: model.Container},
		{ID: 2, Opens: 0, Closes: 2000, Demand: 1, Kind: model.Container},
		{ID: 3, Opens: 0, Closes: 2000, Demand: 1, Kind: model.Container},
		{ID: 4, Opens: 0, Closes: 2000, Demand: 1, Kind: model.Container},
	}
	cat, err := catalog.New(nodes)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	ids := []int{100, 1, 2, 3, 4}
	edges := map[[2]int]float64{}
	for _, a := range ids {
		for _, b := range ids {
			if a != b {
				edges[[2]int{a, b}] = 1
			}
		}
	}
	oc := oracle.NewMatrixOracle(edges)
	v1 := model.Vehicle{VID: 1, StartDepotID: 100, DumpID: 100, EndDepotID: 100, Capacity: 5, MaxTrips: 1, ShiftStart: 0, ShiftEnd: 2000}
	v2 := model.Vehicle{VID: 2, StartDepotID: 100, DumpID: 100, EndDepotID: 100, Capacity: 5, MaxTrips: 1, ShiftStart: 0, ShiftEnd: 2000}
	ctx := context.Background()
	r1 := routeplan.New(ctx, v1, cat, oc)
	r1.Insert(ctx, 1, 1)
	r1.Insert(ctx, 2, 2)
	r2 := routeplan.New(ctx, v2, cat, oc)
	r2.Insert(ctx, 1, 3)
	r2.Insert(ctx, 2, 4)
	sol := solution.New([]*routeplan.Route{r1, r2})
	return cat, sol
}

func TestAttributeOfIsSymmetricForSwaps(t *testing.T) {
	m1 := Move{Kind: IntraSwap, NodeA: 3, NodeB: 7}
	m2 := Move{Kind: IntraSwap, NodeA: 7, NodeB: 3}
	if AttributeOf(m1) != AttributeOf(m2) {
		t.Fatal("expected AttributeOf to be order-independent for swaps")
	}
}

func TestAttributeOfInsertUsesTargetVID(t *testing.T) {
	m := Move{Kind: Insert, NodeA: 5, TargetVID: 2}
	attr := AttributeOf(m)
	if attr.A != 5 || attr.B != 2 || attr.Kind != Insert {
		t.Fatalf("unexpected insert attribute: %+v", attr)
	}
}

func TestGenerateProducesCandidates(t *testing.T) {
	cat, sol := twoRouteFixture(t)
	rng := rand.New(rand.NewSource(1))
	cands := Generate(context.Background(), sol, cat, routeplan.DefaultWeights, 20, rng)
	if len(cands) == 0 {
		t.Fatal("expected at least one candidate from a solution with 4 containers across 2 routes")
	}
}

func TestGenerateEmptySolutionReturnsNil(t *testing.T) {
	nodes := []model.Node{{ID: 100, Opens: 0, Closes: 100, Kind: model.Depot}}
	cat, err := catalog.New(nodes)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	oc := oracle.NewMatrixOracle(map[[2]int]float64{{100, 100}: 0})
	v := model.Vehicle{VID: 1, StartDepotID: 100, DumpID: 100, EndDepotID: 100, Capacity: 5, MaxTrips: 1, ShiftStart: 0, ShiftEnd: 100}
	r := routeplan.New(context.Background(), v, cat, oc)
	sol := solution.New([]*routeplan.Route{r})

	cands := Generate(context.Background(), sol, cat, routeplan.DefaultWeights, 20, rand.New(rand.NewSource(1)))
	if cands != nil {
		t.Fatalf("expected nil candidates for an empty solution, got %d", len(cands))
	}
}

func TestApplyIntraSwapMatchesDelta(t *testing.T) {
	_, sol := twoRouteFixture(t)
	ctx := context.Background()
	r := sol.Routes[0]
	before := r.Cost(routeplan.DefaultWeights)
	delta, _ := r.DeltaSwap(ctx, routeplan.DefaultWeights, 1, 2)

	Apply(ctx, sol, Move{Kind: IntraSwap, RouteA: 0, PosA: 1, RouteB: 0, PosB: 2, NodeA: r.Sequence[1], NodeB: r.Sequence[2]})

	after := sol.Routes[0].Cost(routeplan.DefaultWeights)
	if math.Abs((after-before)-delta) > 1e-6 {
		t.Fatalf("delta mismatch: predicted=%.6f observed=%.6f", delta, after-before)
	}
}

func TestApplyInterSwapExchangesNodes(t *testing.T) {
	_, sol := twoRouteFixture(t)
	ctx := context.Background()
	nodeA := sol.Routes[0].Sequence[1]
	nodeB := sol.Routes[1].Sequence[1]

	Apply(ctx, sol, Move{Kind: InterSwap, RouteA: 0, PosA: 1, RouteB: 1, PosB: 1, NodeA: nodeA, NodeB: nodeB})

	if sol.Routes[0].Sequence[1] != nodeB || sol.Routes[1].Sequence[1] != nodeA {
		t.Fatalf("expected nodes exchanged, got routeA=%v routeB=%v", sol.Routes[0].Sequence, sol.Routes[1].Sequence)
	}
}

func TestApplyInsertMovesNodeAcrossRoutes(t *testing.T) {
	_, sol := twoRouteFixture(t)
	ctx := context.Background()
	nodeA := sol.Routes[0].Sequence[1]

	Apply(ctx, sol, Move{Kind: Insert, RouteA: 0, PosA: 1, RouteB: 1, PosB: 1, NodeA: nodeA, TargetVID: sol.Routes[1].Vehicle.VID})

	for _, id := range sol.Routes[0].Sequence {
		if id == nodeA {
			t.Fatalf("expected node %d removed from source route, sequence=%v", nodeA, sol.Routes[0].Sequence)
		}
	}
	found := false
	for _, id := range sol.Routes[1].Sequence {
		if id == nodeA {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected node %d present in destination route, sequence=%v", nodeA, sol.Routes[1].Sequence)
	}
}
