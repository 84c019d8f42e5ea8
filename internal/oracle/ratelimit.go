package oracle

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedOracle throttles calls to a slower inner oracle (typically an
// OSRMOracle hitting a network service) so a burst of move evaluations in
// the Tabu Driver cannot stall the whole solve behind an external rate
// limit.
type RateLimitedOracle struct {
	inner   CostOracle
	limiter *rate.Limiter
}

// NewRateLimitedOracle wraps inner with a token-bucket limiter allowing
// ratePerSec requests per second, up to burst at once.
func NewRateLimitedOracle(inner CostOracle, ratePerSec float64, burst int) *RateLimitedOracle {
	return &RateLimitedOracle{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

func (r *RateLimitedOracle) Travel(ctx context.Context, fromID, toID int) (float64, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Inf, false
	}
	return r.inner.Travel(ctx, fromID, toID)
}
