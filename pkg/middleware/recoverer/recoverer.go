package recoverer

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
	"github.com/keyshort/url-shortener/pkg/response"
)

// New recovers from panics in next and answers with the server error body.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func New(logger *slog.Logger) func(http.Handler) http.Handler {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.ErrorContext(r.Context(), "something went wrong, panic occurred",
					slog.Group(op,
						slog.Any("err", rvr),
						slog.String("stack", string(debug.Stack())),
					),
				)

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
