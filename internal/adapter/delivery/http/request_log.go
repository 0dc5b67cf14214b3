package http

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/keyshort/url-shortener/internal/entity"
)

type requestLogUseCase interface {
	RecordRequest(ctx context.Context, entry *entity.RequestLog) error
	ListRequests(ctx context.Context) ([]*entity.RequestLog, error)
}

type requestLogHandler struct {
	useCase requestLogUseCase
}

func newRequestLogHandler(useCase requestLogUseCase) *requestLogHandler {
	return &requestLogHandler{useCase: useCase}
}

func (h *requestLogHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	entries, err := h.useCase.ListRequests(r.Context())
	if err != nil {
		renderResponse(w, r, errorResponse(r, err))
		return
	}

	resp := make([]requestLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toRequestLogResponse(entry))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}
