package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secrets/internal/domain"
)

// LocalVerifier checks an identity/password pair against stored accounts.
type LocalVerifier struct {
	accounts domain.AccountRepository
	hasher   *PasswordHasher
	timeout  time.Duration
}

// NewLocalVerifier creates a verifier backed by the given repository and hasher.
func NewLocalVerifier(accounts domain.AccountRepository, hasher *PasswordHasher, storeTimeout time.Duration) *LocalVerifier {
	return &LocalVerifier{
		accounts: accounts,
		hasher:   hasher,
		timeout:  storeTimeoutOrDefault(storeTimeout),
	}
}

// Verify returns the account when plaintext matches its password. It returns
// ErrAccountNotFound or ErrInvalidPassword otherwise; both cost one bcrypt
// comparison so timing does not reveal which one occurred.
func (v *LocalVerifier) Verify(ctx context.Context, identity, plaintext string) (*domain.Account, error) {
	acct, err := findAccount(ctx, v.accounts, v.timeout, identity)
	if errors.Is(err, ErrAccountNotFound) {
		v.hasher.Burn(ctx, plaintext)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	ok, err := v.hasher.Verify(ctx, plaintext, acct.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidPassword
	}
	return acct, nil
}
