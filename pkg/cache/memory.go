package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// DefaultMaxEntries bounds the in-memory cache when no capacity is given.
const DefaultMaxEntries = 1000

// MemoryCache is a thread-safe in-process result cache with TTL expiry and
// LRU eviction. The lock is held only across map mutations, never across I/O.
type MemoryCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	hits     uint64
	misses   uint64
	mu       sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

type memoryEntry struct {
	key       string
	result    *models.NodeResult
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory result cache.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultMaxEntries
	}

	return &MemoryCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
		now:      time.Now,
	}
}

// Get returns the stored result if present and not expired. Expired entries
// are removed on lookup.
func (c *MemoryCache) Get(ctx context.Context, key string) (*models.NodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, found := c.cache[key]
	if !found {
		c.misses++
		return nil, false
	}

	entry := element.Value.(*memoryEntry)
	if c.now().After(entry.expiresAt) {
		c.lruList.Remove(element)
		delete(c.cache, key)
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(element)
	c.hits++
	return cloneResult(entry.result), true
}

// Put stores a successful result with absolute expiry now + ttl. Storing an
// identical key twice is idempotent, so concurrent writers may race freely.
func (c *MemoryCache) Put(ctx context.Context, key string, result *models.NodeResult, ttl time.Duration) {
	if result == nil || !result.Success || ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if element, found := c.cache[key]; found {
		entry := element.Value.(*memoryEntry)
		entry.result = cloneResult(result)
		entry.expiresAt = expiresAt
		c.lruList.MoveToFront(element)
		return
	}

	element := c.lruList.PushFront(&memoryEntry{
		key:       key,
		result:    cloneResult(result),
		expiresAt: expiresAt,
	})
	c.cache[key] = element

	if c.lruList.Len() > c.capacity {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*memoryEntry).key)
		}
	}
}

// Stats returns cumulative hit/miss counters and the current entry count.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: c.lruList.Len(),
	}
}

// Len returns the current number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// cloneResult copies a result so callers cannot mutate cached state.
func cloneResult(r *models.NodeResult) *models.NodeResult {
	clone := *r
	if r.Metadata != nil {
		clone.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
