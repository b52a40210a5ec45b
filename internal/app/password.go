package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

const defaultHashTimeout = 5 * time.Second

// PasswordHasher hashes and verifies passwords with bcrypt on a bounded pool
// of workers, so that a burst of logins cannot starve unrelated requests.
// It is safe for concurrent use.
type PasswordHasher struct {
	cost    int
	timeout time.Duration
	sem     *semaphore.Weighted
	dummy   []byte
}

// NewPasswordHasher creates a hasher. A cost of zero selects bcrypt.DefaultCost;
// workers <= 0 selects runtime.NumCPU().
func NewPasswordHasher(cost, workers int, timeout time.Duration) *PasswordHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if timeout <= 0 {
		timeout = defaultHashTimeout
	}

	// Used to spend the same work on lookups that have no real hash to compare.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("no account matches this"), cost)

	return &PasswordHasher{
		cost:    cost,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(workers)),
		dummy:   dummy,
	}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	var (
		out  []byte
		herr error
	)
	if err := h.run(ctx, func() {
		out, herr = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); err != nil {
		return "", err
	}
	if herr != nil {
		return "", fmt.Errorf("hash password: %w", herr)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hashed. Malformed hashes, including
// domain.FederatedPasswordHash, never match but still cost a full comparison.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, hashed string) (bool, error) {
	target := []byte(hashed)
	matchable := true
	if _, err := bcrypt.Cost(target); err != nil {
		target, matchable = h.dummy, false
	}
	input := []byte(plaintext)
	if len(input) > maxPasswordBytes {
		input, matchable = input[:maxPasswordBytes], false
	}

	var cerr error
	if err := h.run(ctx, func() {
		cerr = bcrypt.CompareHashAndPassword(target, input)
	}); err != nil {
		return false, err
	}
	if cerr != nil && !errors.Is(cerr, bcrypt.ErrMismatchedHashAndPassword) {
		return false, fmt.Errorf("compare password: %w", cerr)
	}
	return matchable && cerr == nil, nil
}

// Burn performs a comparison against a throwaway hash and discards the result.
func (h *PasswordHasher) Burn(ctx context.Context, plaintext string) {
	_, _ = h.Verify(ctx, plaintext, "")
}

func (h *PasswordHasher) run(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, ErrHashTimeout, err)
	}

	done := make(chan struct{})
	go func() {
		defer h.sem.Release(1)
		defer close(done)
		fn()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, ErrHashTimeout, ctx.Err())
	}
}
