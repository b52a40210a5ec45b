package adapthttp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"secrets/internal/app"
)

func TestStateSignerRoundTrip(t *testing.T) {
	s := newStateSigner([]byte("key-one-0123456789"))

	state, err := s.Sign("nonce-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Verify(state, "nonce-1"); err != nil {
		t.Fatalf("expected valid state, got %v", err)
	}
}

func TestStateSignerRejects(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := newStateSigner([]byte("key-one-0123456789"))
	signer.now = func() time.Time { return base }

	state, err := signer.Sign("nonce-1")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong nonce", func(t *testing.T) {
		if err := signer.Verify(state, "nonce-2"); !errors.Is(err, errStateMismatch) {
			t.Fatalf("expected mismatch, got %v", err)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		if err := signer.Verify(state, ""); !errors.Is(err, errStateMismatch) {
			t.Fatalf("expected mismatch, got %v", err)
		}
	})

	t.Run("other key", func(t *testing.T) {
		other := newStateSigner([]byte("key-two-0123456789"))
		other.now = signer.now
		if err := other.Verify(state, "nonce-1"); err == nil {
			t.Fatal("expected signature failure")
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := newStateSigner(signer.key)
		late.now = func() time.Time { return base.Add(stateTTL + time.Second) }
		if err := late.Verify(state, "nonce-1"); err == nil {
			t.Fatal("expected expiry failure")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if err := signer.Verify("not-a-token", "nonce-1"); err == nil {
			t.Fatal("expected parse failure")
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{app.ErrAccountNotFound, http.StatusUnauthorized},
		{app.ErrInvalidPassword, http.StatusUnauthorized},
		{app.ErrSessionExpired, http.StatusUnauthorized},
		{app.ErrAlreadyRegistered, http.StatusConflict},
		{app.ErrPasswordTooLong, http.StatusBadRequest},
		{fmt.Errorf("exchange: %w", app.ErrProviderError), http.StatusBadGateway},
		{fmt.Errorf("get: %w: %w", app.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
