package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type middlewareMocks struct {
	url        *mockURLUseCase
	account    *mockAccountUseCase
	rateLimit  *mockRateLimitUseCase
	requestLog *mockRequestLogUseCase
}

func setupMiddlewareServer(t *testing.T, blacklistedKeys []string) (*httpexpect.Expect, *middlewareMocks) {
	t.Helper()

	m := &middlewareMocks{
		url:        new(mockURLUseCase),
		account:    new(mockAccountUseCase),
		rateLimit:  new(mockRateLimitUseCase),
		requestLog: new(mockRequestLogUseCase),
	}
	t.Cleanup(func() {
		m.url.AssertExpectations(t)
		m.account.AssertExpectations(t)
		m.rateLimit.AssertExpectations(t)
		m.requestLog.AssertExpectations(t)
	})

	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	router := NewRouter(logger, blacklistedKeys, UseCases{
		URL:        m.url,
		Account:    m.account,
		RateLimit:  m.rateLimit,
		RequestLog: m.requestLog,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return httpexpect.Default(t, server.URL), m
}

func TestMiddlewareChain(t *testing.T) {
	account := &entity.Account{ID: 1, APIKey: "key", Tier: entity.TierFree}

	t.Run("blacklisted key is refused before authentication", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, []string{"banned"})

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "banned").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			HasValue("error", "Access denied: API key is blacklisted.")

		m.account.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("api key required", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "").Once().Return(nil, entity.ErrAPIKeyRequired)

		e.GET("/api/v1/list").
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			HasValue("status_code", http.StatusForbidden).
			HasValue("error", "API key is required.")
	})

	t.Run("unknown key", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "unknown").Once().Return(nil, entity.ErrAccountNotFound)

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "unknown").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("error", "User does not exist.")
	})

	t.Run("identity provider failure", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(nil, errors.New("unknown error"))

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "key").
			Expect().
			Status(http.StatusInternalServerError)
	})

	t.Run("rate limited request stops the chain", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(account, nil)
		m.rateLimit.On("Allow", mock.Anything, account, "GET /list").Once().Return(false, nil)

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "key").
			Expect().
			Status(http.StatusTooManyRequests).
			JSON().Object().
			HasValue("status_code", http.StatusTooManyRequests).
			HasValue("error", "Too many requests, please try again later.")

		m.requestLog.AssertNotCalled(t, "RecordRequest", mock.Anything, mock.Anything)
		m.url.AssertNotCalled(t, "ListURLs", mock.Anything, mock.Anything)
	})

	t.Run("endpoint key uses the route pattern", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(account, nil)
		m.rateLimit.On("Allow", mock.Anything, account, "PUT /shorten/{code}").Once().Return(false, nil)

		e.PUT("/api/v1/shorten/abc123").
			WithHeader(apiKeyHeader, "key").
			Expect().
			Status(http.StatusTooManyRequests)
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(account, nil)
		m.rateLimit.On("Allow", mock.Anything, account, "GET /list").Once().Return(true, errors.New("redis down"))
		m.requestLog.On("RecordRequest", mock.Anything, mock.Anything).Once().Return(nil)
		m.url.On("ListURLs", mock.Anything, account).Once().Return([]*entity.URL{}, nil)

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "key").
			Expect().
			Status(http.StatusOK).
			JSON().Array().IsEmpty()
	})

	t.Run("request is recorded", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(account, nil)
		m.rateLimit.On("Allow", mock.Anything, account, "GET /list").Once().Return(true, nil)
		m.requestLog.
			On("RecordRequest", mock.Anything, mock.MatchedBy(func(entry *entity.RequestLog) bool {
				return entry.Method == http.MethodGet &&
					entry.URL == "/api/v1/list?page=1" &&
					entry.UserAgent == "test-agent" &&
					entry.IP == "203.0.113.7" &&
					!entry.Timestamp.IsZero()
			})).
			Once().
			Return(nil)
		m.url.On("ListURLs", mock.Anything, account).Once().Return([]*entity.URL{}, nil)

		e.GET("/api/v1/list").
			WithQuery("page", 1).
			WithHeader(apiKeyHeader, "key").
			WithHeader("User-Agent", "test-agent").
			WithHeader("X-Forwarded-For", "203.0.113.7, 10.0.0.1").
			Expect().
			Status(http.StatusOK)
	})

	t.Run("request log failure is not an error", func(t *testing.T) {
		e, m := setupMiddlewareServer(t, nil)
		m.account.On("Authenticate", mock.Anything, "key").Once().Return(account, nil)
		m.rateLimit.On("Allow", mock.Anything, account, "GET /list").Once().Return(true, nil)
		m.requestLog.On("RecordRequest", mock.Anything, mock.Anything).Once().Return(errors.New("db down"))
		m.url.On("ListURLs", mock.Anything, account).Once().Return([]*entity.URL{}, nil)

		e.GET("/api/v1/list").
			WithHeader(apiKeyHeader, "key").
			Expect().
			Status(http.StatusOK)
	})
}

func TestRateLimitDisabled(t *testing.T) {
	h := rateLimit(nil, nil, "GET /list")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/list", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "10.0.0.1:5000", "203.0.113.7"},
		{"forwarded chain", " 203.0.113.7 , 10.0.0.2", "10.0.0.1:5000", "203.0.113.7"},
		{"remote addr", "", "10.0.0.1:5000", "10.0.0.1"},
		{"remote addr without port", "", "10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}
