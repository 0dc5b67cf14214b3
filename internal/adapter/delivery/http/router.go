package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/keyshort/url-shortener/pkg/middleware/recoverer"
	httpSwagger "github.com/swaggo/http-swagger"
)

// UseCases groups the use cases served by the router. A nil RateLimit
// disables rate limiting.
type UseCases struct {
	URL        urlUseCase
	Account    accountUseCase
	RateLimit  rateLimitUseCase
	RequestLog requestLogUseCase
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, blacklistedKeys []string, uc UseCases) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", apiKeyHeader},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Group(func(r chi.Router) {
			r.Use(blacklist(blacklistedKeys))
			r.Use(authenticate(uc.Account))

			endpoint := func(name string) chi.Middlewares {
				return chi.Middlewares{
					rateLimit(uc.RateLimit, logger.Logger, name),
					recordRequest(uc.RequestLog, logger.Logger),
				}
			}

			h := newURLHandler(uc.URL, newValidator())
			lh := newRequestLogHandler(uc.RequestLog)

			r.With(endpoint("POST /shorten")...).Post("/shorten", h.shortenURL)
			r.With(endpoint("PUT /shorten/{code}")...).Put("/shorten/{code}", h.modifyURL)
			r.With(endpoint("POST /shorten-bulk")...).Post("/shorten-bulk", h.shortenURLs)
			r.With(endpoint("GET /redirect")...).Get("/redirect", h.redirect)
			r.With(endpoint("DELETE /delete")...).Delete("/delete", h.deactivateURL)
			r.With(endpoint("GET /list")...).Get("/list", h.listURLs)
			r.With(endpoint("GET /logs")...).Get("/logs", lh.listRequests)
		})
	})

	return r
}
