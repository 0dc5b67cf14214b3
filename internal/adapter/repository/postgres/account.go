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

type accountDB struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Tier      string    `db:"tier"`
	APIKey    string    `db:"api_key"`
	CreatedAt time.Time `db:"created_at"`
}

func (a *accountDB) toEntity() *entity.Account {
	return &entity.Account{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Tier:      entity.Tier(a.Tier),
		APIKey:    a.APIKey,
		CreatedAt: a.CreatedAt,
	}
}

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) RetrieveByAPIKey(ctx context.Context, apiKey string) (*entity.Account, error) {
	const op = "adapter.repository.postgres.AccountRepository.RetrieveByAPIKey"
	const query = `SELECT id, email, name, tier, api_key, created_at FROM users WHERE api_key = $1`

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, apiKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from users table: %w", op, err)
	}

	return account.toEntity(), nil
}
