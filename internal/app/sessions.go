package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"secrets/internal/domain"
)

const (
	defaultSessionTTL = 24 * time.Hour
	tokenBytes        = 32
)

// SessionManager issues bearer tokens for authenticated accounts and restores
// the account identity from a token on later requests.
type SessionManager struct {
	sessions domain.SessionRepository
	ttl      time.Duration
	timeout  time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewSessionManager creates a session manager. A zero ttl selects 24h.
func NewSessionManager(sessions domain.SessionRepository, ttl, storeTimeout time.Duration, log *slog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{
		sessions: sessions,
		ttl:      ttl,
		timeout:  storeTimeoutOrDefault(storeTimeout),
		log:      log,
		now:      time.Now,
	}
}

// TTL returns the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates and persists a new session for acct and returns its token.
func (m *SessionManager) Issue(ctx context.Context, acct *domain.Account) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.now()
	s := domain.Session{
		TokenHash:       hashToken(token),
		AccountIdentity: acct.Identity,
		ExpiresAt:       now.Add(m.ttl),
		CreatedAt:       now,
	}

	wctx, cancel := writeContext(ctx, m.timeout)
	defer cancel()
	if err := m.sessions.Create(wctx, s); err != nil {
		return "", time.Time{}, storeErr("create session", err)
	}
	return token, s.ExpiresAt, nil
}

// Restore returns the live session for token. Unknown and revoked tokens
// yield ErrSessionInvalid; expired ones are removed and yield ErrSessionExpired.
func (m *SessionManager) Restore(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	key := hashToken(token)

	rctx, cancel := context.WithTimeout(ctx, m.timeout)
	s, err := m.sessions.GetByTokenHash(rctx, key)
	cancel()
	if errors.Is(err, domain.ErrNotFound) || (err == nil && s == nil) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, storeErr("get session", err)
	}

	if s.Expired(m.now()) {
		wctx, cancel := writeContext(ctx, m.timeout)
		defer cancel()
		if err := m.sessions.Delete(wctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			m.log.WarnContext(ctx, "delete expired session", "err", err)
		}
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Revoke deletes the session for token. Revoking an unknown token is not an error.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	wctx, cancel := writeContext(ctx, m.timeout)
	defer cancel()
	if err := m.sessions.Delete(wctx, hashToken(token)); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return storeErr("delete session", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	wctx, cancel := writeContext(ctx, m.timeout)
	defer cancel()
	n, err := m.sessions.DeleteExpired(wctx, m.now())
	if err != nil {
		return 0, storeErr("purge sessions", err)
	}
	return n, nil
}

// RunJanitor purges expired sessions every interval until ctx is done.
func (m *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				m.log.ErrorContext(ctx, "purge expired sessions", "err", err)
				continue
			}
			if n > 0 {
				m.log.InfoContext(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
