// Package cache provides the Redis-backed result cache for deployments
// that share memoized node results across processes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	dagcache "github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

// RedisCache implements the result cache on Redis. Entry expiry rides on
// Redis TTLs; the LRU bound is Redis's own maxmemory policy, so no local
// eviction is performed.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	hits      atomic.Uint64
	misses    atomic.Uint64
}

var _ dagcache.ResultCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client:    client,
		keyPrefix: "dagflow:result:",
	}, nil
}

// NewRedisCacheWithClient wraps an existing client. For tests.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: "dagflow:result:",
	}
}

// Get returns the stored result if present and not expired.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.NodeResult, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		// Absent key and connectivity trouble both count as a miss; the
		// node just runs.
		c.misses.Add(1)
		return nil, false
	}

	var result models.NodeResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return &result, true
}

// Put stores a successful result with the given TTL.
func (c *RedisCache) Put(ctx context.Context, key string, result *models.NodeResult, ttl time.Duration) {
	if result == nil || !result.Success || ttl <= 0 {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	// Best effort: a failed write only costs a future cache miss.
	_ = c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err()
}

// Stats returns cumulative hit/miss counters for this process.
func (c *RedisCache) Stats() dagcache.Stats {
	return dagcache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Health checks the Redis connection.
func (c *RedisCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
