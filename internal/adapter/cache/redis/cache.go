// Package redis implements the lookaside cache and the fixed-window rate
// counters on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	goredis "github.com/redis/go-redis/v9"
)

const (
	urlKeyPrefix = "url:"
	defaultTTL   = 5 * time.Minute
)

type URLCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewURLCache returns a cache whose entries live for ttl. A non-positive
// ttl falls back to five minutes.
func NewURLCache(client goredis.UniversalClient, ttl time.Duration) *URLCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &URLCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns nil, nil when nothing is cached under shortCode.
func (c *URLCache) Get(ctx context.Context, shortCode string) (*entity.CacheEntry, error) {
	const op = "adapter.cache.redis.URLCache.Get"

	data, err := c.client.Get(ctx, urlKeyPrefix+shortCode).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	var entry entity.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%s: failed to decode entry: %w", op, err)
	}

	return &entry, nil
}

func (c *URLCache) Set(ctx context.Context, shortCode string, entry entity.CacheEntry) error {
	const op = "adapter.cache.redis.URLCache.Set"

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: failed to encode entry: %w", op, err)
	}

	if err := c.client.Set(ctx, urlKeyPrefix+shortCode, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}
