package source

import (
	"context"

	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/port"
)

// Cached keeps the last fetched text of a remote source for the cache TTL.
type Cached struct {
	src     port.LedgerSource
	cache   port.Cache[string]
	metrics CacheRecorder
}

// NewCached wraps src. metrics may be nil.
func NewCached(src port.LedgerSource, cache port.Cache[string], metrics CacheRecorder) *Cached {
	return &Cached{src: src, cache: cache, metrics: metrics}
}

// Name implements port.LedgerSource.
func (c *Cached) Name() string { return c.src.Name() }

// Fetch returns the cached text when fresh, otherwise fetches and caches it.
// Failed fetches are never cached.
func (c *Cached) Fetch(ctx context.Context) (string, error) {
	key := c.src.Name()
	if text, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.IncrCacheHit(observability.SourceCache)
		}
		return text, nil
	}
	if c.metrics != nil {
		c.metrics.IncrCacheMiss(observability.SourceCache)
	}

	text, err := c.src.Fetch(ctx)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text)
	return text, nil
}

// Invalidate drops the cached text so the next Fetch goes to the source.
func (c *Cached) Invalidate() {
	c.cache.Delete(c.src.Name())
}
