package http

import (
	"context"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/keyshort/url-shortener/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type mockURLUseCase struct {
	mock.Mock
}

func (m *mockURLUseCase) ShortenURL(ctx context.Context, account *entity.Account, in usecase.ShortenInput) (*entity.URL, error) {
	args := m.Called(ctx, account, in)
	res, _ := args.Get(0).(*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLUseCase) ResolveShortCode(ctx context.Context, account *entity.Account, shortCode string, password *string) (*entity.Resolution, error) {
	args := m.Called(ctx, account, shortCode, password)
	res, _ := args.Get(0).(*entity.Resolution)
	return res, args.Error(1)
}

func (m *mockURLUseCase) ModifyURL(ctx context.Context, account *entity.Account, shortCode string, in usecase.UpdateInput) (*entity.URL, error) {
	args := m.Called(ctx, account, shortCode, in)
	res, _ := args.Get(0).(*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLUseCase) DeactivateURL(ctx context.Context, account *entity.Account, shortCode string) error {
	args := m.Called(ctx, account, shortCode)
	return args.Error(0)
}

func (m *mockURLUseCase) ShortenURLs(ctx context.Context, account *entity.Account, originalURLs []string, password *string) ([]*entity.URL, error) {
	args := m.Called(ctx, account, originalURLs, password)
	res, _ := args.Get(0).([]*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLUseCase) ListURLs(ctx context.Context, account *entity.Account) ([]*entity.URL, error) {
	args := m.Called(ctx, account)
	res, _ := args.Get(0).([]*entity.URL)
	return res, args.Error(1)
}

type mockAccountUseCase struct {
	mock.Mock
}

func (m *mockAccountUseCase) Authenticate(ctx context.Context, apiKey string) (*entity.Account, error) {
	args := m.Called(ctx, apiKey)
	res, _ := args.Get(0).(*entity.Account)
	return res, args.Error(1)
}

type mockRateLimitUseCase struct {
	mock.Mock
}

func (m *mockRateLimitUseCase) Allow(ctx context.Context, account *entity.Account, endpoint string) (bool, error) {
	args := m.Called(ctx, account, endpoint)
	return args.Bool(0), args.Error(1)
}

type mockRequestLogUseCase struct {
	mock.Mock
}

func (m *mockRequestLogUseCase) RecordRequest(ctx context.Context, entry *entity.RequestLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockRequestLogUseCase) ListRequests(ctx context.Context) ([]*entity.RequestLog, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]*entity.RequestLog)
	return res, args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}
