package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/keyshort/url-shortener/internal/adapter/cache/memory"
	"github.com/keyshort/url-shortener/internal/adapter/repository/postgres"
	"github.com/keyshort/url-shortener/internal/config"
	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/keyshort/url-shortener/internal/usecase"
	"github.com/keyshort/url-shortener/pkg/redis"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/keyshort/url-shortener/internal/adapter/cache/redis"
	delivery "github.com/keyshort/url-shortener/internal/adapter/delivery/http"
	pgclient "github.com/keyshort/url-shortener/pkg/postgres"
)

const shutdownTimeout = 10 * time.Second

type urlCache interface {
	Get(ctx context.Context, shortCode string) (*entity.CacheEntry, error)
	Set(ctx context.Context, shortCode string, entry entity.CacheEntry) error
}

type windowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg)

	db, err := pgclient.New(
		ctx,
		cfg.Postgres.DSN(),
		pgclient.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pgclient.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pgclient.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pgclient.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	version, err := pgclient.RunMigrations("file://migrations", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	var (
		cache   urlCache
		counter windowCounter
	)

	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		cache = memory.NewURLCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		counter = memory.NewWindowCounter(cfg.Cache.CleanupInterval)
	default:
		client, err := redis.New(
			ctx,
			cfg.Redis.Addr,
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithPoolSize(cfg.Redis.PoolSize),
			redis.WithMinIdleConns(cfg.Redis.MinIdleConns),
			redis.WithDialTimeout(cfg.Redis.DialTimeout),
			redis.WithReadTimeout(cfg.Redis.ReadTimeout),
			redis.WithWriteTimeout(cfg.Redis.WriteTimeout),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer client.Close()

		cache = rediscache.NewURLCache(client, cfg.Cache.TTL)
		counter = rediscache.NewWindowCounter(client)
	}

	logger.Info("dependencies initialized",
		slog.String("env", cfg.Env),
		slog.Uint64("schema_version", uint64(version)),
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        newRouter(cfg, logger, db, cache, counter),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", slog.String("addr", server.Addr))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// newRouter wires repositories and use cases over the shared pools.
func newRouter(cfg *config.Config, logger *httplog.Logger, db *sqlx.DB, cache urlCache, counter windowCounter) http.Handler {
	urlRepo := postgres.NewURLRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	requestLogRepo := postgres.NewRequestLogRepository(db)

	allocator := usecase.NewAllocator(urlRepo, cfg.Shortener.CodeLength, cfg.Shortener.MaxAttempts)

	useCases := delivery.UseCases{
		URL: usecase.NewURLUseCase(allocator, urlRepo, cache, logger.Logger,
			usecase.WithBulkConcurrency(cfg.Postgres.MaxOpenConns/2),
		),
		Account:    usecase.NewAccountUseCase(accountRepo),
		RequestLog: usecase.NewRequestLogUseCase(requestLogRepo),
	}
	if cfg.RateLimit.Enabled {
		useCases.RateLimit = usecase.NewRateLimitUseCase(counter, rateLimitPolicy(cfg.RateLimit))
	}

	return delivery.NewRouter(logger, cfg.BlacklistedKeys, useCases)
}

func newLogger(cfg *config.Config) *httplog.Logger {
	return httplog.NewLogger("url-shortener", httplog.Options{
		JSON:            cfg.Env == config.EnvProd,
		Concise:         cfg.Env == config.EnvDev,
		LogLevel:        cfg.SlogLevel(),
		RequestHeaders:  cfg.Env != config.EnvProd,
		QuietDownRoutes: []string{"/api/v1/ping"},
		QuietDownPeriod: 10 * time.Second,
	})
}

func rateLimitPolicy(cfg config.RateLimit) usecase.RateLimitPolicy {
	tierLimits := make(map[entity.Tier]int64, len(cfg.TierLimits))
	for tier, limit := range cfg.TierLimits {
		tierLimits[entity.Tier(tier)] = limit
	}

	return usecase.RateLimitPolicy{
		Window:         cfg.Window,
		TierLimits:     tierLimits,
		EndpointLimits: cfg.EndpointLimits,
	}
}
