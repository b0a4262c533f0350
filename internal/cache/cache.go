package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort key/value cache. A miss is (nil, false, nil).
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Feed is a capped newest-first list.
type Feed interface {
	PushCapped(ctx context.Context, key string, value []byte, max int64) error
	Latest(ctx context.Context, key string, n int64) ([][]byte, error)
}
