package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"secrets/internal/adapter/memory"
	"secrets/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockAccountRepo struct {
	findFn         func(ctx context.Context, identity string) (*domain.Account, error)
	createFn       func(ctx context.Context, identity, passwordHash string) (*domain.Account, error)
	updateSecretFn func(ctx context.Context, identity, secret string) error
	countFn        func(ctx context.Context) (int, error)
}

func (m *mockAccountRepo) FindByIdentity(ctx context.Context, identity string) (*domain.Account, error) {
	if m.findFn != nil {
		return m.findFn(ctx, identity)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAccountRepo) Create(ctx context.Context, identity, passwordHash string) (*domain.Account, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identity, passwordHash)
	}
	return &domain.Account{Identity: identity, PasswordHash: passwordHash}, nil
}

func (m *mockAccountRepo) UpdateSecret(ctx context.Context, identity, secret string) error {
	if m.updateSecretFn != nil {
		return m.updateSecretFn(ctx, identity, secret)
	}
	return nil
}

func (m *mockAccountRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.Session) error
	getFn           func(ctx context.Context, tokenHash string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, tokenHash string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tokenHash)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionRepo) Delete(ctx context.Context, tokenHash string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tokenHash)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost, 4, time.Second)
}

// newMemoryAuth wires an AuthService over the in-memory store.
func newMemoryAuth(t *testing.T) (*AuthService, *memory.DB) {
	t.Helper()
	db := memory.New()
	log := discardLogger()
	sessions := NewSessionManager(db.NewSessionRepo(), time.Hour, time.Second, log)
	return NewAuthService(db, testHasher(), sessions, time.Second, log), db
}
