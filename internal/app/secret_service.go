package app

import (
	"context"
	"errors"
	"time"

	"secrets/internal/domain"
)

// SecretService reads and updates the single secret stored on an account.
type SecretService struct {
	accounts domain.AccountRepository
	timeout  time.Duration
}

// NewSecretService creates a SecretService backed by the given repository.
func NewSecretService(accounts domain.AccountRepository, storeTimeout time.Duration) *SecretService {
	return &SecretService{accounts: accounts, timeout: storeTimeoutOrDefault(storeTimeout)}
}

// Get returns the secret for identity, or nil when none has been submitted.
func (s *SecretService) Get(ctx context.Context, identity string) (*string, error) {
	acct, err := findAccount(ctx, s.accounts, s.timeout, identity)
	if err != nil {
		return nil, err
	}
	return acct.Secret, nil
}

// Submit replaces the secret for identity. An empty secret leaves the stored
// value untouched.
func (s *SecretService) Submit(ctx context.Context, identity, secret string) error {
	if secret == "" {
		return nil
	}

	wctx, cancel := writeContext(ctx, s.timeout)
	defer cancel()
	err := s.accounts.UpdateSecret(wctx, identity, secret)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return storeErr("update secret", err)
	}
	return nil
}
