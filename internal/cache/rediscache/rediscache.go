package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	c *redis.Client
}

func New(addr string) *RedisCache {
	return &RedisCache{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.c.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// PushCapped кладёт value в голову списка и обрезает его до max элементов.
func (r *RedisCache) PushCapped(ctx context.Context, key string, value []byte, max int64) error {
	if max <= 0 {
		max = 1
	}
	pipe := r.c.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "redis push capped")
	}
	return nil
}

// Latest returns up to n newest entries.
func (r *RedisCache) Latest(ctx context.Context, key string, n int64) ([][]byte, error) {
	if n <= 0 {
		return [][]byte{}, nil
	}
	vals, err := r.c.LRange(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis lrange")
	}
	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		out = append(out, []byte(v))
	}
	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return errors.Wrap(r.c.Ping(ctx).Err(), "redis ping")
}

func (r *RedisCache) Close() error {
	return r.c.Close()
}
