package usecase

import (
	"context"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockURLRepository struct {
	mock.Mock
}

func (m *mockURLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	args := m.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (m *mockURLRepository) Insert(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	args := m.Called(ctx, url)
	res, _ := args.Get(0).(*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLRepository) Upsert(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	args := m.Called(ctx, url)
	res, _ := args.Get(0).(*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLRepository) RetrieveByShortCodeAndOwner(ctx context.Context, shortCode string, ownerID int64) (*entity.URL, error) {
	args := m.Called(ctx, shortCode, ownerID)
	res, _ := args.Get(0).(*entity.URL)
	return res, args.Error(1)
}

func (m *mockURLRepository) RecordVisit(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockURLRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.URL, error) {
	args := m.Called(ctx, ownerID)
	res, _ := args.Get(0).([]*entity.URL)
	return res, args.Error(1)
}

type mockURLCache struct {
	mock.Mock
}

func (m *mockURLCache) Get(ctx context.Context, shortCode string) (*entity.CacheEntry, error) {
	args := m.Called(ctx, shortCode)
	res, _ := args.Get(0).(*entity.CacheEntry)
	return res, args.Error(1)
}

func (m *mockURLCache) Set(ctx context.Context, shortCode string, entry entity.CacheEntry) error {
	args := m.Called(ctx, shortCode, entry)
	return args.Error(0)
}

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) RetrieveByAPIKey(ctx context.Context, apiKey string) (*entity.Account, error) {
	args := m.Called(ctx, apiKey)
	res, _ := args.Get(0).(*entity.Account)
	return res, args.Error(1)
}

type mockRequestLogRepository struct {
	mock.Mock
}

func (m *mockRequestLogRepository) Save(ctx context.Context, entry *entity.RequestLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockRequestLogRepository) List(ctx context.Context) ([]*entity.RequestLog, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]*entity.RequestLog)
	return res, args.Error(1)
}

type mockWindowCounter struct {
	mock.Mock
}

func (m *mockWindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}
