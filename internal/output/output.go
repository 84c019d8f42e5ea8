// Package output formats a Solution as the text report and the
// machine-readable per-visit record stream described for the CLI.
package output

import (
	"fmt"
	"io"
	"sort"

	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
)

// WriteText writes, per vehicle, its ordered node ids, arrival/departure
// times, load trace, and total travel time, followed by a summary line.
func WriteText(w io.Writer, sol *solution.Solution, weights routeplan.Weights) error {
	for _, r := range sol.Routes {
		fmt.Fprintf(w, "vehicle %d:\n", r.Vehicle.VID)
		for pos, id := range r.Sequence {
			s := r.State[pos]
			fmt.Fprintf(w, "  [%3d] node=%-6d arrival=%8.2f departure=%8.2f load=%8.2f\n",
				pos, id, s.ArrivalTime, s.DepartureTime, s.LoadAfter)
		}
		last := r.State[len(r.State)-1]
		fmt.Fprintf(w, "  total_travel=%.2f cost=%.2f feasible=%t\n\n", last.CumTravel, r.Cost(weights), r.Feasible())
	}
	fmt.Fprintf(w, "summary: total_cost=%.2f vehicles_used=%d unassigned=%d\n",
		sol.TotalCost(weights), sol.NumVehiclesUsed(), len(sol.Unassigned))
	if len(sol.Unassigned) > 0 {
		ids := make([]int, 0, len(sol.Unassigned))
		for id := range sol.Unassigned {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fmt.Fprintf(w, "unassigned containers:")
		for _, id := range ids {
			fmt.Fprintf(w, " %d", id)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteMachine emits a "# run <run_id>" header followed by one record per
// visit: "vid seq_index node_id arrival departure load", suitable for
// downstream loading (e.g. into a database).
func WriteMachine(w io.Writer, sol *solution.Solution, runID string) error {
	fmt.Fprintf(w, "# run %s\n", runID)
	for _, r := range sol.Routes {
		for pos, id := range r.Sequence {
			s := r.State[pos]
			fmt.Fprintf(w, "%d %d %d %.4f %.4f %.4f\n",
				r.Vehicle.VID, pos, id, s.ArrivalTime, s.DepartureTime, s.LoadAfter)
		}
	}
	return nil
}
