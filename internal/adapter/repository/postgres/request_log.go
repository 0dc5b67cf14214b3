package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/keyshort/url-shortener/internal/entity"
)

const defaultRequestLogLimit = 1000

type requestLogDB struct {
	ID        int64     `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Method    string    `db:"method"`
	UserAgent string    `db:"user_agent"`
	URL       string    `db:"url"`
	IP        string    `db:"ip"`
}

func (l *requestLogDB) toEntity() *entity.RequestLog {
	return &entity.RequestLog{
		ID:        l.ID,
		Timestamp: l.Timestamp,
		Method:    l.Method,
		URL:       l.URL,
		UserAgent: l.UserAgent,
		IP:        l.IP,
	}
}

type RequestLogRepository struct {
	db *sqlx.DB
}

func NewRequestLogRepository(db *sqlx.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

func (r *RequestLogRepository) Save(ctx context.Context, entry *entity.RequestLog) error {
	const op = "adapter.repository.postgres.RequestLogRepository.Save"
	const query = `INSERT INTO logs(timestamp, method, "user-agent", url, ip) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, entry.Timestamp, entry.Method, entry.UserAgent, entry.URL, entry.IP); err != nil {
		return fmt.Errorf("%s: failed to insert into logs table: %w", op, err)
	}

	return nil
}

// List returns the most recent request log entries, newest first.
func (r *RequestLogRepository) List(ctx context.Context) ([]*entity.RequestLog, error) {
	const op = "adapter.repository.postgres.RequestLogRepository.List"
	const query = `SELECT id, timestamp, method, "user-agent" AS user_agent, url, ip
		FROM logs ORDER BY id DESC LIMIT $1`

	var rows []requestLogDB

	if err := r.db.SelectContext(ctx, &rows, query, defaultRequestLogLimit); err != nil {
		return nil, fmt.Errorf("%s: failed to select from logs table: %w", op, err)
	}

	entries := make([]*entity.RequestLog, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toEntity())
	}

	return entries, nil
}
