package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	defer c.Close()

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "dashboard:metrics")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "dashboard:metrics", []byte(`{"totalShipments":3}`), time.Minute))

	b, ok, err := c.Get(ctx, "dashboard:metrics")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"totalShipments":3}`), b)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "dashboard:metrics")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_PushCappedLatest(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	ctx := context.Background()

	for _, v := range []string{"e1", "e2", "e3", "e4"} {
		require.NoError(t, c.PushCapped(ctx, "activity:feed", []byte(v), 3))
	}

	got, err := c.Latest(ctx, "activity:feed", 10)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("e4"), []byte("e3"), []byte("e2")}, got)

	got, err = c.Latest(ctx, "activity:feed", 1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("e4")}, got)

	got, err = c.Latest(ctx, "missing", 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRedisCache_ErrorsWhenDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	mr.Close()

	ctx := context.Background()
	require.Error(t, c.Ping(ctx))
	require.Error(t, c.PushCapped(ctx, "k", []byte("v"), 5))
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:login:10.0.0.1", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:login:10.0.0.1", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)

	mr.FastForward(2 * time.Minute)
	ok, n, _ = rl.Allow(ctx, "rl:login:10.0.0.1", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestRateLimiter_WindowNotExtended(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := New(mr.Addr())
	defer rc.Close()
	rl := rc.RateLimiter()

	ctx := context.Background()
	_, _, err := rl.Allow(ctx, "rl:notify:10.0.0.2", 5, time.Minute)
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, n, err := rl.Allow(ctx, "rl:notify:10.0.0.2", 5, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// the second hit must not have pushed the window out
	mr.FastForward(30 * time.Second)
	_, n, err = rl.Allow(ctx, "rl:notify:10.0.0.2", 5, time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// shared client stays usable after closing the limiter
	require.NoError(t, rl.Close())
	require.NoError(t, rc.Ping(ctx))
}
