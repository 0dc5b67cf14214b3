package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
)

// windowCounter increments the fixed-window counter stored under key and
// returns its value after the increment. The window starts with the first
// increment and lasts window.
type windowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitPolicy sizes the fixed windows. A zero or missing limit disables
// the corresponding check.
type RateLimitPolicy struct {
	Window         time.Duration
	TierLimits     map[entity.Tier]int64
	EndpointLimits map[string]int64
}

type RateLimitUseCase struct {
	counter windowCounter
	policy  RateLimitPolicy
}

func NewRateLimitUseCase(counter windowCounter, policy RateLimitPolicy) *RateLimitUseCase {
	if policy.Window <= 0 {
		policy.Window = time.Minute
	}

	return &RateLimitUseCase{
		counter: counter,
		policy:  policy,
	}
}

// Allow enforces the per-account global window and the per-endpoint window
// together. The endpoint counter is not consumed once the global one is
// exhausted.
func (uc *RateLimitUseCase) Allow(ctx context.Context, account *entity.Account, endpoint string) (bool, error) {
	const op = "usecase.RateLimitUseCase.Allow"

	if limit := uc.policy.TierLimits[account.Tier]; limit > 0 {
		n, err := uc.counter.Increment(ctx, globalRateKey(account), uc.policy.Window)
		if err != nil {
			return true, fmt.Errorf("%s: failed to count global window: %w", op, err)
		}
		if n > limit {
			return false, nil
		}
	}

	if limit := uc.policy.EndpointLimits[endpoint]; limit > 0 {
		n, err := uc.counter.Increment(ctx, endpointRateKey(account, endpoint), uc.policy.Window)
		if err != nil {
			return true, fmt.Errorf("%s: failed to count endpoint window: %w", op, err)
		}
		if n > limit {
			return false, nil
		}
	}

	return true, nil
}

func globalRateKey(account *entity.Account) string {
	return "rate:" + account.APIKey + ":global"
}

func endpointRateKey(account *entity.Account, endpoint string) string {
	return "rate:" + account.APIKey + ":" + endpoint
}
