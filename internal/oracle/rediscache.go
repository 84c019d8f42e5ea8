package oracle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache decorates an inner CostOracle with a Redis-backed cache of
// travel(from, to) lookups, activated when REDIS_URL is set. It never
// changes the answer an inner oracle would give — a miss falls through
// to the inner oracle and is written back, so RedisCache stays a pure
// read-through cache and does not violate the CostOracle purity contract.
type RedisCache struct {
	inner CostOracle
	rdb   *redis.Client
	ttl   time.Duration
}

// NewRedisCache builds a RedisCache in front of inner using rdb, caching
// entries for ttl (0 means never expire).
func NewRedisCache(inner CostOracle, rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(fromID, toID int) string {
	return fmt.Sprintf("travel:%d:%d", fromID, toID)
}

func (c *RedisCache) Travel(ctx context.Context, fromID, toID int) (float64, bool) {
	key := cacheKey(fromID, toID)
	if s, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if v, perr := strconv.ParseFloat(s, 64); perr == nil {
			return v, v < Inf
		}
	}

	v, ok := c.inner.Travel(ctx, fromID, toID)
	stored := v
	if !ok {
		stored = Inf
	}
	_ = c.rdb.Set(ctx, key, strconv.FormatFloat(stored, 'g', -1, 64), c.ttl).Err()
	return v, ok
}
