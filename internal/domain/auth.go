// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by repositories when a uniqueness constraint is violated.
	ErrConflict = errors.New("already exists")
)

// FederatedPasswordHash marks accounts that were created by a federated
// login. It is not a valid bcrypt hash, so no plaintext ever verifies against it.
const FederatedPasswordHash = "!federated"

// Account is a user of the system, keyed by identity (an email address).
type Account struct {
	Identity     string
	PasswordHash string
	Secret       *string
	CreatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a local password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != "" && a.PasswordHash != FederatedPasswordHash
}

// Session is a persisted login. Only the hash of the bearer token is stored.
type Session struct {
	TokenHash       string
	AccountIdentity string
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AccountRepository defines the port for account persistence operations.
type AccountRepository interface {
	FindByIdentity(ctx context.Context, identity string) (*Account, error)
	Create(ctx context.Context, identity, passwordHash string) (*Account, error)
	UpdateSecret(ctx context.Context, identity, secret string) error
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
