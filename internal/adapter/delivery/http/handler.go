// Package http provides the HTTP delivery layer of the URL shortener: the
// router, the authentication and rate limiting middleware chain, and the
// handlers that map use case outcomes to status codes and stable messages.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/keyshort/url-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// decodeRequest reads an optional JSON body into v and validates it. An
// empty body leaves v zeroed so that missing fields are reported by the use
// case with their own messages.
func decodeRequest(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		renderResponse(w, r, response.InvalidRequestBody)
		return false
	}

	if err := validate.Struct(v); err != nil {
		renderResponse(w, r, response.WithDetails(response.InvalidRequestBody, getValidationErrors(err)...))
		return false
	}

	return true
}

func renderResponse(w http.ResponseWriter, r *http.Request, resp response.Response) {
	render.Status(r, resp.StatusCode)
	render.JSON(w, r, resp)
}

// errorResponse maps a use case error to its response. Unclassified errors
// are attached to the request log entry and answered with the generic
// server error.
func errorResponse(r *http.Request, err error) response.Response {
	kind := entity.KindOf(err)
	if kind == entity.KindInfrastructure {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		return response.ServerError
	}

	httplog.LogEntrySetField(r.Context(), "err_kind", slog.StringValue(kind.String()))

	switch {
	case errors.Is(err, entity.ErrCodeMissing):
		return response.ShortCodeRequired
	case errors.Is(err, entity.ErrURLRequired):
		return response.OriginalURLRequired
	case errors.Is(err, entity.ErrCustomCodeEmpty):
		return response.CustomCodeEmpty
	case errors.Is(err, entity.ErrPasswordEmpty):
		return response.PasswordEmpty
	case errors.Is(err, entity.ErrURLNotFound):
		return response.ShortCodeNotFound
	case errors.Is(err, entity.ErrAccountNotFound):
		return response.UserNotFound
	case errors.Is(err, entity.ErrAPIKeyRequired):
		return response.APIKeyRequired
	case errors.Is(err, entity.ErrAccessDenied):
		return response.AccessDenied
	case errors.Is(err, entity.ErrURLExpired):
		return response.ShortCodeExpired
	case errors.Is(err, entity.ErrPasswordRequired):
		return response.NeedsPassword
	case errors.Is(err, entity.ErrPasswordIncorrect):
		return response.IncorrectPassword
	case errors.Is(err, entity.ErrShortCodeExists):
		return response.ShortCodeExists
	}

	return response.ServerError
}
