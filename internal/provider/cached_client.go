package provider

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/better-bets/internal/logger"
)

// CachedClient wraps a Fetcher with the TTL cache and coalesces concurrent
// misses, so at most one upstream request per key is in flight.
type CachedClient struct {
	fetcher Fetcher
	cache   *Cache
	group   singleflight.Group
	logger  *logrus.Entry
}

// NewCachedClient creates a new cached client
func NewCachedClient(fetcher Fetcher, c *Cache, log *logrus.Logger) *CachedClient {
	if c == nil {
		c = NewCache(DefaultCacheTTL, nil)
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &CachedClient{
		fetcher: fetcher,
		cache:   c,
		logger:  log.WithField("component", "provider_cache"),
	}
}

// FetchOdds serves from cache when fresh, otherwise joins or starts the upstream fetch
func (c *CachedClient) FetchOdds(ctx context.Context, req Request) (*FetchResult, error) {
	req = req.WithDefaults()
	if req.Sport == "" {
		return nil, ErrMissingSport
	}
	key := req.Key()

	if cached, ok := c.cache.Get(key); ok {
		c.logger.WithField("cache_key", key).Debug("Cache hit for odds")
		return markCached(cached), nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// a caller that lost the race to the previous flight may find it stored already
		if cached := c.cache.peek(key); cached != nil {
			return markCached(cached), nil
		}
		c.logger.WithField("cache_key", key).Debug("Cache miss, fetching odds from upstream")

		// detached from the first caller so its cancellation does not fail the others
		result, err := c.fetcher.FetchOdds(context.WithoutCancel(ctx), req)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, result)
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := res.Val.(*FetchResult)
		if res.Shared && !result.Cached {
			c.logger.WithField("cache_key", key).Debug("Joined in-flight odds fetch")
		}
		return result, nil
	}
}

// Cache returns the underlying cache
func (c *CachedClient) Cache() *Cache {
	return c.cache
}

func markCached(r *FetchResult) *FetchResult {
	cp := *r
	cp.Cached = true
	return &cp
}
