// Package oracle defines the CostOracle contract and the concrete
// implementations that satisfy it: a dense pre-supplied matrix, an OSRM
// HTTP backend, and decorators that rate-limit or cache an inner oracle.
package oracle

import "context"

// Inf is the sentinel travel time reported for a missing (from, to) pair.
// Any move that relies on it becomes infeasible by construction, since the
// arrival time it produces lies past every time window and shift end.
const Inf = 1e18

// CostOracle answers travel(from_id, to_id) -> minutes. Implementations
// must be pure and safe for concurrent reads; no implementation may cache
// a mutable answer that changes between calls with the same arguments.
type CostOracle interface {
	Travel(ctx context.Context, fromID, toID int) (minutes float64, ok bool)
}

// BatchOracle is an optional upgrade a CostOracle implementation may also
// satisfy: callers that need many lookups from one origin should try this
// type assertion first, mirroring the ports.DistanceMatrixProvider upgrade
// pattern used for batched distance lookups elsewhere in this codebase.
type BatchOracle interface {
	CostOracle
	TravelMany(ctx context.Context, fromID int, toIDs []int) (map[int]float64, error)
}

// TravelMany calls the batch path when the oracle supports it, and falls
// back to one Travel call per destination otherwise.
func TravelMany(ctx context.Context, o CostOracle, fromID int, toIDs []int) map[int]float64 {
	if b, ok := o.(BatchOracle); ok {
		if out, err := b.TravelMany(ctx, fromID, toIDs); err == nil {
			return out
		}
	}
	out := make(map[int]float64, len(toIDs))
	for _, id := range toIDs {
		if m, ok := o.Travel(ctx, fromID, id); ok {
			out[id] = m
		} else {
			out[id] = Inf
		}
	}
	return out
}
