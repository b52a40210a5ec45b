package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"secrets/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := testHasher()
	ctx := context.Background()

	for _, pw := range []string{"pw1", "correct horse battery staple", "ünïcødé", strings.Repeat("a", 72)} {
		hashed, err := h.Hash(ctx, pw)
		if err != nil {
			t.Fatalf("Hash(%q): %v", pw, err)
		}
		if hashed == pw {
			t.Fatal("hash equals plaintext")
		}

		ok, err := h.Verify(ctx, pw, hashed)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) = %v, %v; want true", pw, ok, err)
		}
		ok, err = h.Verify(ctx, pw+"x", hashed)
		if err != nil || ok {
			t.Fatalf("Verify(%q+x) = %v, %v; want false", pw, ok, err)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	h := testHasher()
	a, err := h.Hash(context.Background(), "same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Hash(context.Background(), "same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected distinct salted hashes")
	}
}

func TestHashTooLong(t *testing.T) {
	h := testHasher()
	_, err := h.Hash(context.Background(), strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerifyNeverMatchesSentinel(t *testing.T) {
	h := testHasher()
	for _, pw := range []string{"", domain.FederatedPasswordHash, "anything"} {
		ok, err := h.Verify(context.Background(), pw, domain.FederatedPasswordHash)
		if err != nil || ok {
			t.Fatalf("Verify(%q, sentinel) = %v, %v; want false", pw, ok, err)
		}
	}
}

func TestNewPasswordHasherCost(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{bcrypt.MinCost, bcrypt.MinCost},
		{6, 6},
	}
	for _, tc := range tests {
		if got := NewPasswordHasher(tc.in, 1, time.Second).cost; got != tc.want {
			t.Errorf("cost %d: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHashTimeoutWhenPoolBusy(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1, 20*time.Millisecond)
	if err := h.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer h.sem.Release(1)

	_, err := h.Hash(context.Background(), "pw")
	if !errors.Is(err, ErrHashTimeout) || !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrHashTimeout and ErrStoreUnavailable, got %v", err)
	}
}
