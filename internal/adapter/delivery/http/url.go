package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/keyshort/url-shortener/internal/usecase"
	"github.com/keyshort/url-shortener/pkg/response"
)

type urlUseCase interface {
	ShortenURL(ctx context.Context, account *entity.Account, in usecase.ShortenInput) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, account *entity.Account, shortCode string, password *string) (*entity.Resolution, error)
	ModifyURL(ctx context.Context, account *entity.Account, shortCode string, in usecase.UpdateInput) (*entity.URL, error)
	DeactivateURL(ctx context.Context, account *entity.Account, shortCode string) error
	ShortenURLs(ctx context.Context, account *entity.Account, originalURLs []string, password *string) ([]*entity.URL, error)
	ListURLs(ctx context.Context, account *entity.Account) ([]*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	now      func() time.Time
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		now:      time.Now,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), accountFromContext(r.Context()), usecase.ShortenInput{
		OriginalURL: req.TargetURL,
		ExpiresAt:   req.Expiry,
		CustomCode:  req.CustomCode,
		Password:    req.Password,
	})
	if err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, shortenResponse{
		StatusCode: http.StatusCreated,
		Code:       url.ShortCode,
		Expiry:     url.ExpiresAt,
	})
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var password *string
	if query.Has("password") {
		p := query.Get("password")
		password = &p
	}

	res, err := h.useCase.ResolveShortCode(r.Context(), accountFromContext(r.Context()), query.Get("code"), password)
	if err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	httplog.LogEntrySetField(r.Context(), "from_cache", slog.BoolValue(res.FromCache))

	http.Redirect(w, r, res.URL, http.StatusFound)
}

// modifyURL answers 201 on success and 400 for an unknown code, which is
// what existing clients expect from this endpoint.
func (h *urlHandler) modifyURL(w http.ResponseWriter, r *http.Request) {
	var req updateRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	shortCode := chi.URLParam(r, "code")

	url, err := h.useCase.ModifyURL(r.Context(), accountFromContext(r.Context()), shortCode, usecase.UpdateInput{
		ExpiresAt: req.Expiry,
		Password:  req.Password,
	})
	if err != nil {
		resp := errorResponse(r, err)
		if errors.Is(err, entity.ErrURLNotFound) {
			resp = response.WithStatus(resp, http.StatusBadRequest)
		}

		renderResponse(w, r, resp)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, updateResponse{
		StatusCode: http.StatusCreated,
		Code:       url.ShortCode,
	})
}

func (h *urlHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	if err := h.useCase.DeactivateURL(r.Context(), accountFromContext(r.Context()), req.Code); err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	renderResponse(w, r, response.DeleteSuccess(req.Code))
}

func (h *urlHandler) shortenURLs(w http.ResponseWriter, r *http.Request) {
	var req bulkShortenRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	urls, err := h.useCase.ShortenURLs(r.Context(), accountFromContext(r.Context()), req.TargetURLs, req.Password)
	if err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	batch := make([]batchItem, 0, len(urls))
	for i, url := range urls {
		batch = append(batch, batchItem{
			OriginalURL: req.TargetURLs[i],
			Code:        url.ShortCode,
		})
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, bulkShortenResponse{
		StatusCode: http.StatusCreated,
		Batch:      batch,
	})
}

func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.useCase.ListURLs(r.Context(), accountFromContext(r.Context()))
	if err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	now := h.now()

	resp := make([]urlResponse, 0, len(urls))
	for _, url := range urls {
		resp = append(resp, toURLResponse(url, now))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}
