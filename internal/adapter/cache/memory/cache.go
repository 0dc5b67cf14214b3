// Package memory implements the lookaside cache and the fixed-window rate
// counters in process, for single-instance deployments and tests.
package memory

import (
	"context"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/patrickmn/go-cache"
)

type URLCache struct {
	cache *cache.Cache
}

func NewURLCache(ttl, cleanupInterval time.Duration) *URLCache {
	return &URLCache{cache: cache.New(ttl, cleanupInterval)}
}

func (c *URLCache) Get(_ context.Context, shortCode string) (*entity.CacheEntry, error) {
	v, ok := c.cache.Get(shortCode)
	if !ok {
		return nil, nil
	}

	entry := v.(entity.CacheEntry)
	return &entry, nil
}

func (c *URLCache) Set(_ context.Context, shortCode string, entry entity.CacheEntry) error {
	c.cache.SetDefault(shortCode, entry)
	return nil
}
