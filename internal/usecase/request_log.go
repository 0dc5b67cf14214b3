package usecase

import (
	"context"
	"fmt"

	"github.com/keyshort/url-shortener/internal/entity"
)

type requestLogRepository interface {
	Save(ctx context.Context, entry *entity.RequestLog) error
	List(ctx context.Context) ([]*entity.RequestLog, error)
}

type RequestLogUseCase struct {
	requestLogRepo requestLogRepository
}

func NewRequestLogUseCase(requestLogRepo requestLogRepository) *RequestLogUseCase {
	return &RequestLogUseCase{requestLogRepo: requestLogRepo}
}

func (uc *RequestLogUseCase) RecordRequest(ctx context.Context, entry *entity.RequestLog) error {
	const op = "usecase.RequestLogUseCase.RecordRequest"

	if err := uc.requestLogRepo.Save(ctx, entry); err != nil {
		return fmt.Errorf("%s: failed to record request: %w", op, err)
	}

	return nil
}

func (uc *RequestLogUseCase) ListRequests(ctx context.Context) ([]*entity.RequestLog, error) {
	const op = "usecase.RequestLogUseCase.ListRequests"

	entries, err := uc.requestLogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list requests: %w", op, err)
	}

	return entries, nil
}
