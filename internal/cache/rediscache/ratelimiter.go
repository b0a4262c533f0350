package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per key. The window starts with the
// first hit and is not extended by later ones.
type RateLimiter struct {
	c     *redis.Client
	owned bool
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c:     redis.NewClient(&redis.Options{Addr: addr}),
		owned: true,
	}
}

// RateLimiter shares the cache connection pool; closing it is a no-op.
func (r *RedisCache) RateLimiter() *RateLimiter {
	return &RateLimiter{c: r.c}
}

// Allow counts one hit for key and reports whether the count is within limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}

	// negative TTL: the key was just created or lost its expiry
	if ttl.Val() < 0 {
		if err := rl.c.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, errors.Wrap(err, "redis ratelimit expire")
		}
	}
	n := incr.Val()
	return n <= limit, n, nil
}

func (rl *RateLimiter) Close() error {
	if !rl.owned {
		return nil
	}
	return rl.c.Close()
}
