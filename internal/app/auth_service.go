// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"secrets/internal/domain"
)

// Login is the outcome of a successful authentication.
type Login struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// AuthService drives local and federated logins, registration and logout.
type AuthService struct {
	accounts domain.AccountRepository
	hasher   *PasswordHasher
	verifier *LocalVerifier
	linker   *FederatedLinker
	sessions *SessionManager
	timeout  time.Duration
	log      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(accounts domain.AccountRepository, hasher *PasswordHasher, sessions *SessionManager, storeTimeout time.Duration, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	timeout := storeTimeoutOrDefault(storeTimeout)
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		verifier: NewLocalVerifier(accounts, hasher, timeout),
		linker:   NewFederatedLinker(accounts, timeout),
		sessions: sessions,
		timeout:  timeout,
		log:      log,
	}
}

// Sessions returns the session manager used by the service.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}

// AuthenticateLocal verifies a password login and issues a session.
func (s *AuthService) AuthenticateLocal(ctx context.Context, identity, plaintext string) (*Login, error) {
	acct, err := s.verifier.Verify(ctx, identity, plaintext)
	if err != nil {
		s.logFailure(ctx, "login", identity, err)
		return nil, err
	}
	return s.issue(ctx, "login", acct)
}

// AuthenticateFederated links a provider-verified email to an account and
// issues a session.
func (s *AuthService) AuthenticateFederated(ctx context.Context, providerEmail string) (*Login, error) {
	acct, err := s.linker.LinkOrCreate(ctx, providerEmail)
	if err != nil {
		s.logFailure(ctx, "federated login", providerEmail, err)
		return nil, err
	}
	return s.issue(ctx, "federated login", acct)
}

// Register creates a password account and logs it in.
func (s *AuthService) Register(ctx context.Context, identity, plaintext string) (*Login, error) {
	acct, err := s.CreateAccount(ctx, identity, plaintext)
	if err != nil {
		s.logFailure(ctx, "register", identity, err)
		return nil, err
	}
	s.log.InfoContext(ctx, "account registered", "identity", identity)
	return s.issue(ctx, "register", acct)
}

// CreateAccount stores a new password account without issuing a session.
func (s *AuthService) CreateAccount(ctx context.Context, identity, plaintext string) (*domain.Account, error) {
	if identity == "" {
		return nil, ErrIdentityRequired
	}
	if plaintext == "" {
		return nil, ErrPasswordRequired
	}

	_, err := findAccount(ctx, s.accounts, s.timeout, identity)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, plaintext)
	if err != nil {
		return nil, err
	}

	wctx, cancel := writeContext(ctx, s.timeout)
	defer cancel()
	acct, err := s.accounts.Create(wctx, identity, hash)
	if errors.Is(err, domain.ErrConflict) {
		return nil, ErrAlreadyRegistered
	}
	if err != nil {
		return nil, storeErr("create account", err)
	}
	return acct, nil
}

// Restore returns the session behind token.
func (s *AuthService) Restore(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.Restore(ctx, token)
	if err != nil && !IsUserError(err) {
		s.log.ErrorContext(ctx, "restore session", "err", err)
	}
	return sess, err
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		s.log.ErrorContext(ctx, "logout", "err", err)
		return err
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, op string, acct *domain.Account) (*Login, error) {
	token, expiresAt, err := s.sessions.Issue(ctx, acct)
	if err != nil {
		s.logFailure(ctx, op, acct.Identity, err)
		return nil, err
	}
	return &Login{Account: acct, Token: token, ExpiresAt: expiresAt}, nil
}

// logFailure records the precise reason internally. Expected user errors are
// informational; infrastructure failures are errors.
func (s *AuthService) logFailure(ctx context.Context, op, identity string, err error) {
	if IsUserError(err) {
		s.log.InfoContext(ctx, op+" rejected", "identity", identity, "reason", err.Error())
		return
	}
	s.log.ErrorContext(ctx, op+" failed", "identity", identity, "err", err)
}
