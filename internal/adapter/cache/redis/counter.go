package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type WindowCounter struct {
	client goredis.UniversalClient
}

func NewWindowCounter(client goredis.UniversalClient) *WindowCounter {
	return &WindowCounter{client: client}
}

// Increment bumps the counter under key and starts its window on the first
// hit. EXPIRE NX leaves the deadline of a running window untouched.
func (c *WindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	const op = "adapter.cache.redis.WindowCounter.Increment"

	var incr *goredis.IntCmd

	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: failed to increment window: %w", op, err)
	}

	return incr.Val(), nil
}
