package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache().(*memoryCache)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "dash", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "dash", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "dash", &got), ErrCacheMiss)
}

func TestMemoryCacheDeleteAndEmptyKey(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", 1, 0))
	require.NoError(t, c.Delete(ctx, "k", "missing"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
	assert.ErrorIs(t, c.Set(ctx, "", 1, 0), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Get(ctx, "", &v), ErrCacheKeyEmpty)
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{Addr: "  "}.Enabled())
	assert.True(t, Config{Addr: "localhost:6379"}.Enabled())
}
