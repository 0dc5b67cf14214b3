package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		c := NewURLCache(time.Minute, time.Minute)

		entry, err := c.Get(ctx, "abc123")

		assert.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("round trip", func(t *testing.T) {
		c := NewURLCache(time.Minute, time.Minute)
		require.NoError(t, c.Set(ctx, "abc123", entity.CacheEntry{Valid: true, URL: "https://example.com"}))

		entry, err := c.Get(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, &entity.CacheEntry{Valid: true, URL: "https://example.com"}, entry)
	})

	t.Run("entries expire", func(t *testing.T) {
		c := NewURLCache(20*time.Millisecond, time.Minute)
		require.NoError(t, c.Set(ctx, "abc123", entity.CacheEntry{Valid: true, URL: "https://example.com"}))

		assert.Eventually(t, func() bool {
			entry, _ := c.Get(ctx, "abc123")
			return entry == nil
		}, time.Second, 10*time.Millisecond)
	})
}

func TestWindowCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("counts within a window", func(t *testing.T) {
		c := NewWindowCounter(time.Minute)

		for i := int64(1); i <= 3; i++ {
			n, err := c.Increment(ctx, "rate:key:global", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		c := NewWindowCounter(time.Minute)

		_, err := c.Increment(ctx, "rate:a:global", time.Minute)
		require.NoError(t, err)

		n, err := c.Increment(ctx, "rate:b:global", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("restarts after the window", func(t *testing.T) {
		c := NewWindowCounter(time.Minute)

		_, err := c.Increment(ctx, "rate:key:global", 20*time.Millisecond)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			n, err := c.Increment(ctx, "rate:key:global", 20*time.Millisecond)
			return err == nil && n == 1
		}, time.Second, 30*time.Millisecond)
	})

	t.Run("concurrent increments", func(t *testing.T) {
		c := NewWindowCounter(time.Minute)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = c.Increment(ctx, "rate:key:global", time.Minute)
			}()
		}
		wg.Wait()

		n, err := c.Increment(ctx, "rate:key:global", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(51), n)
	})
}
