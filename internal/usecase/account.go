package usecase

import (
	"context"
	"fmt"

	"github.com/keyshort/url-shortener/internal/entity"
)

type accountRepository interface {
	RetrieveByAPIKey(ctx context.Context, apiKey string) (*entity.Account, error)
}

type AccountUseCase struct {
	accountRepo accountRepository
}

func NewAccountUseCase(accountRepo accountRepository) *AccountUseCase {
	return &AccountUseCase{accountRepo: accountRepo}
}

// Authenticate resolves an API key to its account.
func (uc *AccountUseCase) Authenticate(ctx context.Context, apiKey string) (*entity.Account, error) {
	const op = "usecase.AccountUseCase.Authenticate"

	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrAPIKeyRequired)
	}

	account, err := uc.accountRepo.RetrieveByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to authenticate: %w", op, err)
	}

	return account, nil
}
