package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Options{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	hit, err := c.GetJSON(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Delete(ctx, "k"))

	require.NoError(t, c.Bump(ctx, "v"))
	v, err := c.Version(ctx, "v")
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, c.Close())
}

func TestNilCache(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	hit, err := c.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestKeyPrefix(t *testing.T) {
	c := &Cache{prefix: "cineadmin"}
	assert.Equal(t, "cineadmin:movies:all", c.key("movies:all"))
	assert.Equal(t, "x", (&Cache{}).key("x"))
}

// TestRedisRoundTrip runs only when REDIS_ADDR points at a live server.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not provided")
	}
	ctx := context.Background()
	c, err := New(ctx, Options{Addr: addr, Prefix: "cineadmin-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	type payload struct{ Titles []string }
	require.NoError(t, c.SetJSON(ctx, "roundtrip", payload{Titles: []string{"Heat"}}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"Heat"}, got.Titles)

	require.NoError(t, c.Delete(ctx, "roundtrip"))
	hit, err = c.GetJSON(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Delete(ctx, "version"))
	before, err := c.Version(ctx, "version")
	require.NoError(t, err)
	assert.Zero(t, before)
	require.NoError(t, c.Bump(ctx, "version"))
	require.NoError(t, c.Bump(ctx, "version"))
	after, err := c.Version(ctx, "version")
	require.NoError(t, err)
	assert.Equal(t, int64(2), after)
	require.NoError(t, c.Delete(ctx, "version"))
}
