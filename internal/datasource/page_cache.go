package datasource

import (
	"context"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// PageFetcher downloads a page body
type PageFetcher interface {
	FetchPage(ctx context.Context, source, url string) ([]byte, error)
}

// PageCache keeps fetched pages for a TTL so scheduled runs inside the
// window do not hit the provider again.
type PageCache struct {
	fetcher   PageFetcher
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewPageCache wraps fetcher. A zero ttl disables caching.
func NewPageCache(fetcher PageFetcher, ttl time.Duration) *PageCache {
	return &PageCache{
		fetcher: fetcher,
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
	}
}

// FetchPage returns the cached body for url or fetches and stores it
func (pc *PageCache) FetchPage(ctx context.Context, source, url string) ([]byte, error) {
	if pc.ttl <= 0 {
		return pc.fetcher.FetchPage(ctx, source, url)
	}

	if body, found := pc.cache.Get(url); found {
		pc.hitCount.Add(1)
		return body.([]byte), nil
	}
	pc.missCount.Add(1)

	body, err := pc.fetcher.FetchPage(ctx, source, url)
	if err != nil {
		return nil, err
	}
	pc.cache.Set(url, body, pc.ttl)
	return body, nil
}

// Invalidate drops every cached page
func (pc *PageCache) Invalidate() {
	pc.cache.Flush()
}

// Stats returns hit and miss counts
func (pc *PageCache) Stats() (hits, misses uint64) {
	return pc.hitCount.Load(), pc.missCount.Load()
}
