package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-io/dagflow/pkg/models"
)

func redisFixture(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCacheWithClient(client), mr
}

func TestRedisCache_PutGet(t *testing.T) {
	c, _ := redisFixture(t)
	ctx := context.Background()

	result := &models.NodeResult{Success: true, Output: "v1", Duration: 5}
	c.Put(ctx, "k1", result, time.Minute)

	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", got.Output)
	assert.True(t, got.Success)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestRedisCache_NeverStoresFailures(t *testing.T) {
	c, _ := redisFixture(t)
	ctx := context.Background()

	c.Put(ctx, "k1", &models.NodeResult{Success: false, Error: "boom"}, time.Minute)

	_, ok := c.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := redisFixture(t)
	ctx := context.Background()

	c.Put(ctx, "k1", &models.NodeResult{Success: true, Output: "v1"}, time.Minute)

	_, ok := c.Get(ctx, "k1")
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	_, ok = c.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestRedisCache_StructuredOutputRoundtrip(t *testing.T) {
	c, _ := redisFixture(t)
	ctx := context.Background()

	result := &models.NodeResult{
		Success: true,
		Output:  map[string]any{"nested": []any{float64(1), "two"}},
	}
	c.Put(ctx, "k1", result, time.Minute)

	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, result.Output, got.Output)
}
