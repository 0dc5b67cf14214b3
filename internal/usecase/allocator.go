package usecase

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// ShortCodeAlphabet is the 62-symbol alphabet generated codes are drawn from.
	ShortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	DefaultShortCodeLength = 6
	DefaultMaxAttempts     = 10
)

// ErrMaxRetriesExceeded is returned when no free short code was found within the attempt budget.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

type shortCodeChecker interface {
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)
}

// Allocator hands out short codes. Its existence check is an early exit
// only: uniqueness is decided by the store when the code is written.
type Allocator struct {
	length      int
	maxAttempts int
	checker     shortCodeChecker
	generate    func(alphabet string, size int) (string, error)
}

// NewAllocator returns an allocator drawing codes of the given length.
// Non-positive arguments fall back to the defaults.
func NewAllocator(checker shortCodeChecker, length, maxAttempts int) *Allocator {
	if length <= 0 {
		length = DefaultShortCodeLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Allocator{
		length:      length,
		maxAttempts: maxAttempts,
		checker:     checker,
		generate:    gonanoid.Generate,
	}
}

// MaxAttempts returns the attempt budget of a single allocation.
func (a *Allocator) MaxAttempts() int {
	return a.maxAttempts
}

// Allocate returns customCode unchanged when it is given. Otherwise it draws
// random codes until one is not present in the store.
func (a *Allocator) Allocate(ctx context.Context, customCode *string) (string, error) {
	const op = "usecase.Allocator.Allocate"

	if customCode != nil {
		return *customCode, nil
	}

	for i := 0; i < a.maxAttempts; i++ {
		shortCode, err := a.generate(ShortCodeAlphabet, a.length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		exists, err := a.checker.ExistsByShortCode(ctx, shortCode)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if !exists {
			return shortCode, nil
		}
	}

	return "", fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}
