// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"secrets/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	sessions map[string]domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		accounts: make(map[string]*domain.Account),
		sessions: make(map[string]domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.AccountRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- AccountRepository ---

// FindByIdentity retrieves an account by exact identity.
func (db *DB) FindByIdentity(ctx context.Context, identity string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.accounts[identity]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyAccount(a), nil
}

// Create creates a new account.
func (db *DB) Create(ctx context.Context, identity, passwordHash string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.accounts[identity]; ok {
		return nil, domain.ErrConflict
	}

	a := &domain.Account{
		Identity:     identity,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.accounts[identity] = a
	return copyAccount(a), nil
}

// UpdateSecret sets the secret on an existing account.
func (db *DB) UpdateSecret(ctx context.Context, identity, secret string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.accounts[identity]
	if !ok {
		return domain.ErrNotFound
	}
	a.Secret = &secret
	return nil
}

// Count returns the total number of accounts.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.accounts), nil
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.Secret != nil {
		s := *a.Secret
		c.Secret = &s
	}
	return &c
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.sessions[s.TokenHash]; ok {
		return domain.ErrConflict
	}
	r.db.sessions[s.TokenHash] = s
	return nil
}

// GetByTokenHash retrieves a session, expired or not.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, tokenHash)
	return nil
}

// DeleteExpired deletes all sessions expired at now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for k, v := range r.db.sessions {
		if v.Expired(now) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}
