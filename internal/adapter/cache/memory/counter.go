package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type WindowCounter struct {
	cache *cache.Cache
}

func NewWindowCounter(cleanupInterval time.Duration) *WindowCounter {
	return &WindowCounter{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

// Increment starts a window with Add and bumps a running one in place,
// which keeps its original expiration.
func (c *WindowCounter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	for {
		if err := c.cache.Add(key, int64(1), window); err == nil {
			return 1, nil
		}

		// The window may close between Add and IncrementInt64.
		if n, err := c.cache.IncrementInt64(key, 1); err == nil {
			return n, nil
		}
	}
}
