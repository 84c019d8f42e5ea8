package oracle

import (
	"context"
	"errors"
	"time"

	"trashcvrp/internal/metrics"
)

// InstrumentedOracle wraps an inner CostOracle and records each Travel
// call's latency, so a slow OSRM backend or matrix lookup shows up in the
// prometheus registry alongside the search metrics it gates.
type InstrumentedOracle struct {
	inner CostOracle
}

// NewInstrumentedOracle wraps inner so every Travel (and, when inner
// supports it, TravelMany) call is timed.
func NewInstrumentedOracle(inner CostOracle) *InstrumentedOracle {
	return &InstrumentedOracle{inner: inner}
}

func (o *InstrumentedOracle) Travel(ctx context.Context, fromID, toID int) (float64, bool) {
	start := time.Now()
	defer func() { metrics.OracleLatency.Observe(time.Since(start).Seconds()) }()
	return o.inner.Travel(ctx, fromID, toID)
}

var errNotBatch = errors.New("oracle: inner oracle does not support TravelMany")

func (o *InstrumentedOracle) TravelMany(ctx context.Context, fromID int, toIDs []int) (map[int]float64, error) {
	b, ok := o.inner.(BatchOracle)
	if !ok {
		return nil, errNotBatch
	}
	start := time.Now()
	defer func() { metrics.OracleLatency.Observe(time.Since(start).Seconds()) }()
	return b.TravelMany(ctx, fromID, toIDs)
}
