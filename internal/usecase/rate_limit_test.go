package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keyshort/url-shortener/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// The global and endpoint windows compose: a request has to fit both.
// An earlier implementation wrote a 429 for the global window and kept
// going, which would make the global limit advisory. These cases pin the
// composed behaviour down.
func TestRateLimitUseCase_Allow(t *testing.T) {
	ctx := context.Background()
	errUnknown := errors.New("unknown error")
	account := &entity.Account{ID: 1, APIKey: "key", Tier: entity.TierFree}
	policy := RateLimitPolicy{
		Window:         time.Minute,
		TierLimits:     map[entity.Tier]int64{entity.TierFree: 10},
		EndpointLimits: map[string]int64{"POST /shorten": 3},
	}

	t.Run("default window", func(t *testing.T) {
		uc := NewRateLimitUseCase(new(mockWindowCounter), RateLimitPolicy{})

		assert.Equal(t, time.Minute, uc.policy.Window)
	})

	t.Run("no limits configured", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		uc := NewRateLimitUseCase(counterMock, RateLimitPolicy{Window: time.Minute})

		allowed, err := uc.Allow(ctx, account, "POST /shorten")

		assert.NoError(t, err)
		assert.True(t, allowed)
		counterMock.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("within both windows", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		counterMock.On("Increment", ctx, "rate:key:global", time.Minute).Once().Return(int64(10), nil)
		counterMock.On("Increment", ctx, "rate:key:POST /shorten", time.Minute).Once().Return(int64(3), nil)
		uc := NewRateLimitUseCase(counterMock, policy)

		allowed, err := uc.Allow(ctx, account, "POST /shorten")

		assert.NoError(t, err)
		assert.True(t, allowed)
		counterMock.AssertExpectations(t)
	})

	t.Run("global window exceeded stops before endpoint window", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		counterMock.On("Increment", ctx, "rate:key:global", time.Minute).Once().Return(int64(11), nil)
		uc := NewRateLimitUseCase(counterMock, policy)

		allowed, err := uc.Allow(ctx, account, "POST /shorten")

		assert.NoError(t, err)
		assert.False(t, allowed)
		counterMock.AssertNotCalled(t, "Increment", ctx, "rate:key:POST /shorten", time.Minute)
		counterMock.AssertExpectations(t)
	})

	t.Run("endpoint window exceeded", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		counterMock.On("Increment", ctx, "rate:key:global", time.Minute).Once().Return(int64(1), nil)
		counterMock.On("Increment", ctx, "rate:key:POST /shorten", time.Minute).Once().Return(int64(4), nil)
		uc := NewRateLimitUseCase(counterMock, policy)

		allowed, err := uc.Allow(ctx, account, "POST /shorten")

		assert.NoError(t, err)
		assert.False(t, allowed)
		counterMock.AssertExpectations(t)
	})

	t.Run("endpoint without a limit only counts the global window", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		counterMock.On("Increment", ctx, "rate:key:global", time.Minute).Once().Return(int64(1), nil)
		uc := NewRateLimitUseCase(counterMock, policy)

		allowed, err := uc.Allow(ctx, account, "GET /list")

		assert.NoError(t, err)
		assert.True(t, allowed)
		counterMock.AssertExpectations(t)
	})

	t.Run("backend error fails open", func(t *testing.T) {
		counterMock := new(mockWindowCounter)
		counterMock.On("Increment", ctx, "rate:key:global", time.Minute).Once().Return(int64(0), errUnknown)
		uc := NewRateLimitUseCase(counterMock, policy)

		allowed, err := uc.Allow(ctx, account, "POST /shorten")

		assert.ErrorIs(t, err, errUnknown)
		assert.True(t, allowed)
		counterMock.AssertExpectations(t)
	})
}
