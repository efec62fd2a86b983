package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/internal/config"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 5})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)
}

func TestRedisCache_AcquireAndReleaseLock(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock:device-1", "session-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A second holder cannot acquire while held.
	ok, err = c.AcquireLock(ctx, "lock:device-1", "session-b", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// The wrong token cannot release someone else's lock.
	released, err := c.ReleaseLock(ctx, "lock:device-1", "session-b")
	require.NoError(t, err)
	require.False(t, released)

	released, err = c.ReleaseLock(ctx, "lock:device-1", "session-a")
	require.NoError(t, err)
	require.True(t, released)

	ok, err = c.AcquireLock(ctx, "lock:device-1", "session-b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisCache_LockHolder(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	holder, err := c.LockHolder(ctx, "lock:device-2")
	require.NoError(t, err)
	require.Empty(t, holder)

	_, err = c.AcquireLock(ctx, "lock:device-2", "session-a", time.Minute)
	require.NoError(t, err)

	holder, err = c.LockHolder(ctx, "lock:device-2")
	require.NoError(t, err)
	require.Equal(t, "session-a", holder)
}
