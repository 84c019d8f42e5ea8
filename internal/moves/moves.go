// Package moves implements the Move Generator & Evaluator: it samples
// candidate intra-route swaps, inter-route swaps, and insertions from a
// Solution and scores each one against the Route Model without mutating
// it.
package moves

import (
	"context"
	"math/rand"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/model"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// Kind tags a Move's family. Represented as a tagged variant rather than
// an interface hierarchy: one struct, one Kind field, no per-family
// types.
type Kind int

const (
	IntraSwap Kind = iota
	InterSwap
	Insert
)

func (k Kind) String() string {
	switch k {
	case IntraSwap:
		return "intra_swap"
	case InterSwap:
		return "inter_swap"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// Move is a candidate edit to a Solution. Only the fields relevant to its
// Kind are meaningful: swaps use RouteA/PosA/RouteB/PosB/NodeA/NodeB;
// Insert uses RouteA/PosA (source), RouteB/PosB (destination), NodeA, and
// TargetVID.
type Move struct {
	Kind      Kind
	RouteA    int
	PosA      int
	RouteB    int
	PosB      int
	NodeA     int
	NodeB     int
	TargetVID int
}

// Attribute is the tabu-list key derived from a Move, per the pairing
// rules in the Move Generator's contract: swaps use an unordered node
// pair, inserts use (node, target vehicle id).
type Attribute struct {
	Kind Kind
	A, B int
}

// AttributeOf derives m's tabu attribute.
func AttributeOf(m Move) Attribute {
	switch m.Kind {
	case IntraSwap, InterSwap:
		a, b := m.NodeA, m.NodeB
		if a > b {
			a, b = b, a
		}
		return Attribute{Kind: m.Kind, A: a, B: b}
	default: // Insert
		return Attribute{Kind: Insert, A: m.NodeA, B: m.TargetVID}
	}
}

// Candidate is a scored Move: its cost delta and whether the affected
// route(s) remain feasible after applying it.
type Candidate struct {
	Move          Move
	DeltaCost     float64
	FeasibleAfter bool
}

// Generate samples up to cap candidate moves from sol, split across the
// three move families in proportion to each family's population, and
// scores every sampled move via the Route Model's delta_* dry-run
// operations. Infeasible-after candidates are still returned; the caller
// (the Tabu Driver) is responsible for discarding them except under
// aspiration.
func Generate(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, cap int, rng *rand.Rand) []Candidate {
	intraPos := containerPositionsByRoute(sol, cat)

	intraPop, interPop, insertPop := populations(sol, intraPos)
	total := intraPop + interPop + insertPop
	if total == 0 {
		return nil
	}

	intraN := cap * intraPop / total
	interN := cap * interPop / total
	insertN := cap - intraN - interN

	out := make([]Candidate, 0, cap)
	out = append(out, sampleIntraSwaps(ctx, sol, w, intraPos, intraN, rng)...)
	out = append(out, sampleInterSwaps(ctx, sol, w, intraPos, interN, rng)...)
	out = append(out, sampleInserts(ctx, sol, cat, w, insertN, rng)...)
	return out
}

func containerPositionsByRoute(sol *solution.Solution, cat *catalog.Catalog) [][]int {
	out := make([][]int, len(sol.Routes))
	for ri, r := range sol.Routes {
		for pos := 1; pos < len(r.Sequence)-1; pos++ {
			if n, ok := cat.Get(r.Sequence[pos]); ok && n.Kind == model.Container {
				out[ri] = append(out[ri], pos)
			}
		}
	}
	return out
}

func populations(sol *solution.Solution, intraPos [][]int) (intra, inter, insert int) {
	for _, positions := range intraPos {
		k := len(positions)
		intra += k * (k - 1) / 2
	}
	for i := range intraPos {
		for j := i + 1; j < len(intraPos); j++ {
			inter += len(intraPos[i]) * len(intraPos[j])
		}
	}
	totalContainers := 0
	totalPositions := 0
	for i, r := range sol.Routes {
		totalContainers += len(intraPos[i])
		totalPositions += len(r.Sequence)
	}
	insert = totalContainers * totalPositions
	return
}

func sampleIntraSwaps(ctx context.Context, sol *solution.Solution, w routeplan.Weights, intraPos [][]int, n int, rng *rand.Rand) []Candidate {
	var out []Candidate
	attempts := 0
	for len(out) < n && attempts < n*20+50 {
		attempts++
		ri := pickNonEmpty(intraPos, rng)
		if ri < 0 {
			break
		}
		positions := intraPos[ri]
		if len(positions) < 2 {
			continue
		}
		a := positions[rng.Intn(len(positions))]
		b := positions[rng.Intn(len(positions))]
		if a == b {
			continue
		}
		r := sol.Routes[ri]
		nodeA, nodeB := r.Sequence[a], r.Sequence[b]
		delta, feasible := r.DeltaSwap(ctx, w, a, b)
		out = append(out, Candidate{
			Move: Move{Kind: IntraSwap, RouteA: ri, PosA: a, RouteB: ri, PosB: b, NodeA: nodeA, NodeB: nodeB},
			DeltaCost:     delta,
			FeasibleAfter: feasible,
		})
	}
	return out
}

func sampleInterSwaps(ctx context.Context, sol *solution.Solution, w routeplan.Weights, intraPos [][]int, n int, rng *rand.Rand) []Candidate {
	var out []Candidate
	if len(sol.Routes) < 2 {
		return out
	}
	attempts := 0
	for len(out) < n && attempts < n*20+50 {
		attempts++
		ra := rng.Intn(len(sol.Routes))
		rb := rng.Intn(len(sol.Routes))
		if ra == rb || len(intraPos[ra]) == 0 || len(intraPos[rb]) == 0 {
			continue
		}
		posA := intraPos[ra][rng.Intn(len(intraPos[ra]))]
		posB := intraPos[rb][rng.Intn(len(intraPos[rb]))]
		routeA, routeB := sol.Routes[ra], sol.Routes[rb]
		nodeA, nodeB := routeA.Sequence[posA], routeB.Sequence[posB]
		delta, feasible := routeplan.DeltaSwapBetween(ctx, w, routeA, posA, routeB, posB)
		out = append(out, Candidate{
			Move: Move{Kind: InterSwap, RouteA: ra, PosA: posA, RouteB: rb, PosB: posB, NodeA: nodeA, NodeB: nodeB},
			DeltaCost:     delta,
			FeasibleAfter: feasible,
		})
	}
	return out
}

func sampleInserts(ctx context.Context, sol *solution.Solution, cat *catalog.Catalog, w routeplan.Weights, n int, rng *rand.Rand) []Candidate {
	var out []Candidate
	if len(sol.Routes) == 0 {
		return out
	}
	attempts := 0
	for len(out) < n && attempts < n*20+50 {
		attempts++
		ra := rng.Intn(len(sol.Routes))
		routeA := sol.Routes[ra]
		if len(routeA.Sequence) <= 2 {
			continue
		}
		posA := 1 + rng.Intn(len(routeA.Sequence)-2)
		nodeA := routeA.Sequence[posA]
		if n2, ok := cat.Get(nodeA); !ok || n2.Kind != model.Container {
			continue
		}
		rb := rng.Intn(len(sol.Routes))
		routeB := sol.Routes[rb]
		if len(routeB.Sequence) < 2 {
			continue
		}
		posB := 1 + rng.Intn(len(routeB.Sequence)-1)
		if ra == rb && posB == posA {
			continue
		}

		// Simulate remove-then-insert as one combined delta.
		srcClone := routeA.Clone()
		srcClone.Remove(ctx, posA)
		beforeSrc := routeA.Cost(w)
		afterSrc := srcClone.Cost(w)

		var dstBefore, dstAfter float64
		var dstFeasible bool
		if ra == rb {
			insertPos := posB
			if posB > posA {
				insertPos--
			}
			dstBefore = afterSrc
			dstClone := srcClone.Clone()
			dstClone.Insert(ctx, insertPos, nodeA)
			dstAfter = dstClone.Cost(w)
			dstFeasible = dstClone.Feasible()
		} else {
			dstBefore = routeB.Cost(w)
			dstClone := routeB.Clone()
			dstClone.Insert(ctx, posB, nodeA)
			dstAfter = dstClone.Cost(w)
			dstFeasible = dstClone.Feasible() && srcClone.Feasible()
		}

		delta := (afterSrc - beforeSrc) + (dstAfter - dstBefore)
		out = append(out, Candidate{
			Move: Move{
				Kind: Insert, RouteA: ra, PosA: posA, RouteB: rb, PosB: posB,
				NodeA: nodeA, TargetVID: sol.Routes[rb].Vehicle.VID,
			},
			DeltaCost:     delta,
			FeasibleAfter: dstFeasible,
		})
	}
	return out
}

func pickNonEmpty(positions [][]int, rng *rand.Rand) int {
	candidates := make([]int, 0, len(positions))
	for i, p := range positions {
		if len(p) >= 2 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[rng.Intn(len(candidates))]
}

// Apply mutates sol in place according to m.
func Apply(ctx context.Context, sol *solution.Solution, m Move) {
	switch m.Kind {
	case IntraSwap:
		sol.Routes[m.RouteA].Swap(ctx, m.PosA, m.PosB)
	case InterSwap:
		routeA, routeB := sol.Routes[m.RouteA], sol.Routes[m.RouteB]
		routeA.Sequence[m.PosA], routeB.Sequence[m.PosB] = routeB.Sequence[m.PosB], routeA.Sequence[m.PosA]
		routeA.EvaluateFrom(ctx, m.PosA)
		routeB.EvaluateFrom(ctx, m.PosB)
	case Insert:
		routeA := sol.Routes[m.RouteA]
		routeA.Remove(ctx, m.PosA)
		insertPos := m.PosB
		if m.RouteA == m.RouteB && m.PosB > m.PosA {
			insertPos--
		}
		sol.Routes[m.RouteB].Insert(ctx, insertPos, m.NodeA)
	}
}
