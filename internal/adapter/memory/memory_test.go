package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"secrets/internal/domain"
)

func TestAccountRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	a, err := db.Create(ctx, "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Identity != "bob@example.com" {
		t.Errorf("expected bob@example.com, got %s", a.Identity)
	}

	if _, err := db.Create(ctx, "bob@example.com", "other"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	got, err := db.FindByIdentity(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("FindByIdentity: %v", err)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("expected original hash to survive duplicate create, got %q", got.PasswordHash)
	}

	// Lookups are exact.
	if _, err := db.FindByIdentity(ctx, "Bob@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for different case, got %v", err)
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 account, got %d", count)
	}
}

func TestUpdateSecret(t *testing.T) {
	db := New()
	ctx := context.Background()

	if err := db.UpdateSecret(ctx, "nobody@example.com", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = db.Create(ctx, "amy@example.com", "hash")
	if err := db.UpdateSecret(ctx, "amy@example.com", "likes pineapple pizza"); err != nil {
		t.Fatalf("UpdateSecret: %v", err)
	}

	got, _ := db.FindByIdentity(ctx, "amy@example.com")
	if got.Secret == nil || *got.Secret != "likes pineapple pizza" {
		t.Fatalf("unexpected secret: %v", got.Secret)
	}

	// Returned accounts are copies.
	*got.Secret = "mutated"
	again, _ := db.FindByIdentity(ctx, "amy@example.com")
	if *again.Secret != "likes pineapple pizza" {
		t.Error("store was mutated through a returned account")
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()
	now := time.Now()

	err := repo.Create(ctx, domain.Session{TokenHash: "live", AccountIdentity: "a@example.com", ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = repo.Create(ctx, domain.Session{TokenHash: "stale", AccountIdentity: "a@example.com", ExpiresAt: now.Add(-time.Hour)})

	sess, err := repo.GetByTokenHash(ctx, "live")
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if sess.AccountIdentity != "a@example.com" {
		t.Errorf("unexpected identity %q", sess.AccountIdentity)
	}

	// Expired rows are still returned; expiry is the caller's decision.
	if _, err := repo.GetByTokenHash(ctx, "stale"); err != nil {
		t.Errorf("expected stale session to be readable, got %v", err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged session, got %d", n)
	}

	_ = repo.Delete(ctx, "live")
	if _, err := repo.GetByTokenHash(ctx, "live"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
