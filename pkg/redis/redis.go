package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

type Option func(*goredis.Options)

func WithPassword(password string) Option {
	return func(o *goredis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *goredis.Options) {
		o.DB = db
	}
}

func WithPoolSize(n int) Option {
	return func(o *goredis.Options) {
		o.PoolSize = n
	}
}

func WithMinIdleConns(n int) Option {
	return func(o *goredis.Options) {
		o.MinIdleConns = n
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *goredis.Options) {
		o.DialTimeout = d
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *goredis.Options) {
		o.ReadTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *goredis.Options) {
		o.WriteTimeout = d
	}
}

// New connects to the Redis server at addr and verifies the connection.
func New(ctx context.Context, addr string, opts ...Option) (*goredis.Client, error) {
	const op = "redis.New"

	options := &goredis.Options{
		Addr:         addr,
		PoolSize:     defaultPoolSize,
		MinIdleConns: defaultMinIdleConns,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := goredis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}

	return client, nil
}
