// Package usecase implements the business rules of the URL shortener:
// short code allocation, the redirect resolution pipeline, in-place update
// and soft deletion, bulk creation, authentication and rate limiting.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"golang.org/x/sync/errgroup"
)

type urlRepository interface {
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)
	Insert(ctx context.Context, url *entity.URL) (*entity.URL, error)
	Upsert(ctx context.Context, url *entity.URL) (*entity.URL, error)
	RetrieveByShortCodeAndOwner(ctx context.Context, shortCode string, ownerID int64) (*entity.URL, error)
	RecordVisit(ctx context.Context, id int64, at time.Time) error
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.URL, error)
}

// urlCache is the lookaside cache. Get returns nil, nil on a miss.
type urlCache interface {
	Get(ctx context.Context, shortCode string) (*entity.CacheEntry, error)
	Set(ctx context.Context, shortCode string, entry entity.CacheEntry) error
}

// ShortenInput carries the fields of a shorten request.
type ShortenInput struct {
	OriginalURL string
	ExpiresAt   *time.Time
	CustomCode  *string
	Password    *string
}

// UpdateInput carries the fields of an update request. Nil fields keep
// their stored value.
type UpdateInput struct {
	ExpiresAt *time.Time
	Password  *string
}

const defaultBulkConcurrency = 8

type URLUseCase struct {
	allocator       *Allocator
	urlRepo         urlRepository
	cache           urlCache
	logger          *slog.Logger
	bulkConcurrency int
	now             func() time.Time
}

type URLOption func(*URLUseCase)

// WithBulkConcurrency bounds how many creations of one bulk request run at
// once. Non-positive values keep the default.
func WithBulkConcurrency(n int) URLOption {
	return func(uc *URLUseCase) {
		if n > 0 {
			uc.bulkConcurrency = n
		}
	}
}

func NewURLUseCase(allocator *Allocator, urlRepo urlRepository, cache urlCache, logger *slog.Logger, opts ...URLOption) *URLUseCase {
	uc := &URLUseCase{
		allocator:       allocator,
		urlRepo:         urlRepo,
		cache:           cache,
		logger:          logger,
		bulkConcurrency: defaultBulkConcurrency,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL creates a URL owned by account. A custom code is checked for
// existence first; the insert itself is the authoritative uniqueness check.
// A generated code that loses the insert race is replaced by a new one.
func (uc *URLUseCase) ShortenURL(ctx context.Context, account *entity.Account, in ShortenInput) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if in.OriginalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLRequired)
	}
	if in.CustomCode != nil && *in.CustomCode == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrCustomCodeEmpty)
	}
	if in.Password != nil && *in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrPasswordEmpty)
	}

	if in.CustomCode != nil {
		exists, err := uc.urlRepo.ExistsByShortCode(ctx, *in.CustomCode)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check custom code: %w", op, err)
		}
		if exists {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}
	}

	for i := 0; i < uc.allocator.MaxAttempts(); i++ {
		shortCode, err := uc.allocator.Allocate(ctx, in.CustomCode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		url, err := uc.urlRepo.Insert(ctx, &entity.URL{
			ShortCode:   shortCode,
			OriginalURL: in.OriginalURL,
			Password:    in.Password,
			ExpiresAt:   in.ExpiresAt,
			OwnerID:     account.ID,
		})
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) && in.CustomCode == nil {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode runs the redirect pipeline: cache probe, store lookup
// scoped to the caller, expiry check, password check, visit commit and
// cache populate, in that order. A valid cache entry short-circuits every
// later stage.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, account *entity.Account, shortCode string, password *string) (*entity.Resolution, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	if shortCode == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrCodeMissing)
	}

	entry, err := uc.cache.Get(ctx, shortCode)
	if err != nil {
		uc.logger.WarnContext(ctx, "lookaside cache read failed", slog.String("op", op), slog.Any("err", err))
	} else if entry != nil && entry.Valid {
		return &entity.Resolution{URL: entry.URL, FromCache: true}, nil
	}

	url, err := uc.urlRepo.RetrieveByShortCodeAndOwner(ctx, shortCode, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	now := uc.now()

	if url.IsExpired(now) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
	}

	if err := url.CheckPassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := uc.urlRepo.RecordVisit(ctx, url.ID, now); err != nil {
		return nil, fmt.Errorf("%s: failed to record visit: %w", op, err)
	}

	uc.setCache(ctx, op, shortCode, entity.CacheEntry{Valid: true, URL: url.OriginalURL})

	return &entity.Resolution{URL: url.OriginalURL}, nil
}

// ModifyURL rewrites expiry and password of an active URL in place and
// marks its cache entry invalid.
func (uc *URLUseCase) ModifyURL(ctx context.Context, account *entity.Account, shortCode string, in UpdateInput) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ModifyURL"

	if shortCode == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrCodeMissing)
	}
	if in.Password != nil && *in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrPasswordEmpty)
	}

	url, err := uc.retrieveActive(ctx, account, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.ExpiresAt != nil {
		url.ExpiresAt = in.ExpiresAt
	}
	if in.Password != nil {
		url.Password = in.Password
	}

	url, err = uc.rewrite(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, err)
	}

	uc.setCache(ctx, op, shortCode, entity.CacheEntry{Valid: false})

	return url, nil
}

// DeactivateURL soft-deletes an active URL by expiring it now. The row is
// kept and the cache is left untouched.
func (uc *URLUseCase) DeactivateURL(ctx context.Context, account *entity.Account, shortCode string) error {
	const op = "usecase.URLUseCase.DeactivateURL"

	if shortCode == "" {
		return fmt.Errorf("%s: %w", op, entity.ErrCodeMissing)
	}

	url, err := uc.retrieveActive(ctx, account, shortCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := uc.now()
	url.ExpiresAt = &now

	if _, err := uc.rewrite(ctx, url); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

// ShortenURLs creates one URL per target concurrently, at most
// bulkConcurrency at a time. It is reserved to enterprise accounts and fails
// as a whole if any creation fails.
func (uc *URLUseCase) ShortenURLs(ctx context.Context, account *entity.Account, originalURLs []string, password *string) ([]*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURLs"

	if !account.CanBulkShorten() {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrAccessDenied)
	}
	if len(originalURLs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLRequired)
	}
	if password != nil && *password == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrPasswordEmpty)
	}

	urls := make([]*entity.URL, len(originalURLs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(uc.bulkConcurrency)

	for i, originalURL := range originalURLs {
		g.Go(func() error {
			url, err := uc.ShortenURL(gCtx, account, ShortenInput{
				OriginalURL: originalURL,
				Password:    password,
			})
			if err != nil {
				return err
			}

			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return urls, nil
}

// ListURLs returns every URL owned by account.
func (uc *URLUseCase) ListURLs(ctx context.Context, account *entity.Account) ([]*entity.URL, error) {
	const op = "usecase.URLUseCase.ListURLs"

	urls, err := uc.urlRepo.ListByOwner(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

func (uc *URLUseCase) retrieveActive(ctx context.Context, account *entity.Account, shortCode string) (*entity.URL, error) {
	url, err := uc.urlRepo.RetrieveByShortCodeAndOwner(ctx, shortCode, account.ID)
	if err != nil {
		return nil, err
	}

	if url.IsExpired(uc.now()) {
		return nil, entity.ErrURLExpired
	}

	return url, nil
}

// rewrite overwrites the row keyed by the URL's own short code, passed to
// the allocator as a forced custom code.
func (uc *URLUseCase) rewrite(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	shortCode, err := uc.allocator.Allocate(ctx, &url.ShortCode)
	if err != nil {
		return nil, err
	}

	return uc.urlRepo.Upsert(ctx, &entity.URL{
		ShortCode:   shortCode,
		OriginalURL: url.OriginalURL,
		Password:    url.Password,
		ExpiresAt:   url.ExpiresAt,
		OwnerID:     url.OwnerID,
	})
}

func (uc *URLUseCase) setCache(ctx context.Context, op, shortCode string, entry entity.CacheEntry) {
	if err := uc.cache.Set(ctx, shortCode, entry); err != nil {
		uc.logger.WarnContext(ctx, "lookaside cache write failed",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}
}
