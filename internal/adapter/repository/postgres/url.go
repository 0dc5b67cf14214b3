package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/keyshort/url-shortener/internal/entity"
)

const urlColumns = `id, short_code, original_url, password, visit_count, last_accessed_at, created_at, expiry_date, user_id`

type urlDB struct {
	ID             int64          `db:"id"`
	ShortCode      string         `db:"short_code"`
	OriginalURL    string         `db:"original_url"`
	Password       sql.NullString `db:"password"`
	VisitCount     int64          `db:"visit_count"`
	LastAccessedAt time.Time      `db:"last_accessed_at"`
	CreatedAt      time.Time      `db:"created_at"`
	ExpiryDate     sql.NullTime   `db:"expiry_date"`
	UserID         int64          `db:"user_id"`
}

func (u *urlDB) toEntity() *entity.URL {
	url := &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		OwnerID:     u.UserID,
		URLStats: entity.URLStats{
			VisitCount:     u.VisitCount,
			LastAccessedAt: u.LastAccessedAt,
		},
		CreatedAt: u.CreatedAt,
	}

	if u.Password.Valid {
		url.Password = &u.Password.String
	}
	if u.ExpiryDate.Valid {
		url.ExpiresAt = &u.ExpiryDate.Time
	}

	return url
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.ExistsByShortCode"
	const query = `SELECT EXISTS(SELECT 1 FROM url_shortener WHERE short_code = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to check url_shortener table: %w", op, err)
	}

	return exists, nil
}

// Insert creates the row only when the short code is free. A taken code
// yields entity.ErrShortCodeExists and leaves the existing row untouched.
func (r *URLRepository) Insert(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Insert"
	const query = `INSERT INTO url_shortener(short_code, original_url, password, expiry_date, user_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING ` + urlColumns

	var row urlDB

	err := r.db.GetContext(ctx, &row, query,
		url.ShortCode, url.OriginalURL, nullString(url.Password), nullTime(url.ExpiresAt), url.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into url_shortener table: %w", op, err)
	}

	return row.toEntity(), nil
}

// Upsert writes the row keyed by its short code. An existing row is only
// overwritten when it belongs to the same owner; otherwise
// entity.ErrURLNotFound is returned. Visit statistics are preserved.
func (r *URLRepository) Upsert(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Upsert"
	const query = `INSERT INTO url_shortener(short_code, original_url, password, expiry_date, user_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (short_code) DO UPDATE SET
			original_url = EXCLUDED.original_url,
			password = EXCLUDED.password,
			expiry_date = EXCLUDED.expiry_date
		WHERE url_shortener.user_id = EXCLUDED.user_id
		RETURNING ` + urlColumns

	var row urlDB

	err := r.db.GetContext(ctx, &row, query,
		url.ShortCode, url.OriginalURL, nullString(url.Password), nullTime(url.ExpiresAt), url.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to upsert url_shortener table row: %w", op, err)
	}

	return row.toEntity(), nil
}

func (r *URLRepository) RetrieveByShortCodeAndOwner(ctx context.Context, shortCode string, ownerID int64) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCodeAndOwner"
	const query = `SELECT ` + urlColumns + ` FROM url_shortener WHERE short_code = $1 AND user_id = $2`

	var row urlDB

	if err := r.db.GetContext(ctx, &row, query, shortCode, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from url_shortener table: %w", op, err)
	}

	return row.toEntity(), nil
}

// RecordVisit increments the visit counter in a single statement so
// concurrent visits are never lost.
func (r *URLRepository) RecordVisit(ctx context.Context, id int64, at time.Time) error {
	const op = "adapter.repository.postgres.URLRepository.RecordVisit"
	const query = `UPDATE url_shortener SET visit_count = visit_count + 1, last_accessed_at = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("%s: failed to update url_shortener table row: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}

func (r *URLRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.ListByOwner"
	const query = `SELECT ` + urlColumns + ` FROM url_shortener WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	var rows []urlDB

	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: failed to select from url_shortener table: %w", op, err)
	}

	urls := make([]*entity.URL, 0, len(rows))
	for i := range rows {
		urls = append(urls, rows[i].toEntity())
	}

	return urls, nil
}
