package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/keyshort/url-shortener/pkg/response"
)

const apiKeyHeader = "api-key"

type accountUseCase interface {
	Authenticate(ctx context.Context, apiKey string) (*entity.Account, error)
}

type rateLimitUseCase interface {
	Allow(ctx context.Context, account *entity.Account, endpoint string) (bool, error)
}

type accountCtxKey struct{}

func withAccount(ctx context.Context, account *entity.Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, account)
}

func accountFromContext(ctx context.Context) *entity.Account {
	account, _ := ctx.Value(accountCtxKey{}).(*entity.Account)
	return account
}

func blacklist(keys []string) func(http.Handler) http.Handler {
	blacklisted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		blacklisted[key] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := blacklisted[r.Header.Get(apiKeyHeader)]; ok {
				renderResponse(w, r, response.APIKeyBlacklisted)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate resolves the api-key header to an account and stores it in
// the request context.
func authenticate(useCase accountUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := useCase.Authenticate(r.Context(), r.Header.Get(apiKeyHeader))
			if err != nil {
				renderResponse(w, r, errorResponse(r, err))
				return
			}

			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account)))
		})
	}
}

// rateLimit rejects the request with 429 once the caller has used up either
// its global window or the window of endpoint. A failing limiter lets the
// request through.
func rateLimit(useCase rateLimitUseCase, logger *slog.Logger, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if useCase == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := useCase.Allow(r.Context(), accountFromContext(r.Context()), endpoint)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable",
					slog.String("endpoint", endpoint),
					slog.Any("err", err),
				)
			}

			if !allowed {
				renderResponse(w, r, response.TooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func recordRequest(useCase requestLogUseCase, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := &entity.RequestLog{
				Timestamp: time.Now(),
				Method:    r.Method,
				URL:       r.URL.RequestURI(),
				UserAgent: r.UserAgent(),
				IP:        clientIP(r),
			}

			if err := useCase.RecordRequest(r.Context(), entry); err != nil {
				logger.WarnContext(r.Context(), "failed to record request", slog.Any("err", err))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the first X-Forwarded-For entry, else the host part of
// the remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
