package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"secrets/internal/domain"
)

var _ domain.AccountRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// FindByIdentity retrieves an account by exact identity.
func (d *DB) FindByIdentity(ctx context.Context, identity string) (*domain.Account, error) {
	var (
		a      domain.Account
		secret sql.NullString
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT identity, password_hash, secret, created_at FROM accounts WHERE identity = $1",
		identity,
	).Scan(&a.Identity, &a.PasswordHash, &secret, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if secret.Valid {
		a.Secret = &secret.String
	}
	return &a, nil
}

// Create inserts a new account. Identity and hash are written in one statement.
func (d *DB) Create(ctx context.Context, identity, passwordHash string) (*domain.Account, error) {
	var a domain.Account
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO accounts (identity, password_hash, created_at) VALUES ($1, $2, $3) RETURNING identity, password_hash, created_at",
		identity, passwordHash, time.Now().UTC(),
	).Scan(&a.Identity, &a.PasswordHash, &a.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateSecret sets the secret on an existing account.
func (d *DB) UpdateSecret(ctx context.Context, identity, secret string) error {
	res, err := d.sql.ExecContext(ctx, "UPDATE accounts SET secret = $1 WHERE identity = $2", secret, identity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	return count, err
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, account_identity, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		s.TokenHash, s.AccountIdentity, s.ExpiresAt.UTC(), s.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetByTokenHash retrieves a session by token hash.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token_hash, account_identity, expires_at, created_at FROM sessions WHERE token_hash = $1",
		tokenHash,
	).Scan(&s.TokenHash, &s.AccountIdentity, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token hash.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	return err
}

// DeleteExpired deletes all sessions expired at now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
