package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "places:nearby", `[{"name":"Parque"}]`, 10*time.Minute))

	got, err := c.Get(ctx, "places:nearby")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Parque"}]`, got)

	now = now.Add(10 * time.Minute)
	_, err = c.Get(ctx, "places:nearby")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
