package provider

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/better-bets/internal/metrics"
)

// DefaultCacheTTL is how long an upstream payload is served from memory
const DefaultCacheTTL = 15 * time.Second

// Clock returns the current time
type Clock func() time.Time

type cacheEntry struct {
	result   *FetchResult
	storedAt time.Time
}

// Cache memoizes fetch results per request key. Freshness is judged against
// the injected clock; go-cache holds the entries and reclaims them in the background.
type Cache struct {
	store     *cache.Cache
	ttl       time.Duration
	clock     Clock
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewCache creates a new cache; a nil clock uses time.Now
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		store: cache.New(ttl*2, ttl*4),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns a fresh cached result for the key
func (c *Cache) Get(key string) (*FetchResult, bool) {
	result := c.peek(key)

	c.mu.Lock()
	if result != nil {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.mu.Unlock()

	metrics.RecordCacheLookup(result != nil)
	c.updateMetrics()
	return result, result != nil
}

func (c *Cache) peek(key string) *FetchResult {
	v, found := c.store.Get(key)
	if !found {
		return nil
	}
	entry, ok := v.(cacheEntry)
	if !ok || c.clock().Sub(entry.storedAt) >= c.ttl {
		return nil
	}
	return entry.result
}

// Set stores a result under key, stamped with the current clock time
func (c *Cache) Set(key string, result *FetchResult) {
	c.store.Set(key, cacheEntry{result: result, storedAt: c.clock()}, cache.DefaultExpiration)
	metrics.UpdateCacheEntries(c.ItemCount())
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses uint64, ratio float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits = c.hitCount
	misses = c.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// TTL returns the freshness window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// ItemCount returns the number of stored items, stale ones included until the janitor runs
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

func (c *Cache) updateMetrics() {
	_, _, ratio := c.Stats()
	metrics.UpdateCacheHitRatio(ratio)
	metrics.UpdateCacheEntries(c.ItemCount())
}
