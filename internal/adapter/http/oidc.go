package adapthttp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"secrets/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// IdentityProvider completes the provider side of a federated login.
type IdentityProvider interface {
	// AuthCodeURL returns the provider consent URL carrying state.
	AuthCodeURL(state string) string
	// Email exchanges an authorization code for the user's verified email.
	Email(ctx context.Context, code string) (string, error)
}

// OIDCProvider is an IdentityProvider backed by an OpenID Connect issuer.
type OIDCProvider struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewOIDCProvider discovers the issuer and prepares the auth-code flow.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	p, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", cfg.Issuer, err)
	}
	return &OIDCProvider{
		provider: p,
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     p.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

// AuthCodeURL implements IdentityProvider.
func (o *OIDCProvider) AuthCodeURL(state string) string {
	return o.oauth2.AuthCodeURL(state)
}

// Email implements IdentityProvider. The email comes from the verified
// id_token, falling back to the userinfo endpoint when the token omits it.
func (o *OIDCProvider) Email(ctx context.Context, code string) (string, error) {
	token, err := o.oauth2.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", errors.New("no id_token in token response")
	}
	idToken, err := o.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("parse claims: %w", err)
	}

	if claims.Email == "" {
		info, err := o.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if err != nil {
			return "", fmt.Errorf("userinfo: %w", err)
		}
		claims.Email = info.Email
		claims.EmailVerified = &info.EmailVerified
	}

	if claims.Email == "" {
		return "", errors.New("provider returned no email")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return "", fmt.Errorf("email %s not verified by provider", claims.Email)
	}
	return claims.Email, nil
}

const stateTTL = 5 * time.Minute

var errStateMismatch = errors.New("oauth state mismatch")

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// stateSigner produces the OAuth state parameter: a short-lived HS256 token
// binding the round trip to a nonce held in the browser's cookie.
type stateSigner struct {
	key []byte
	now func() time.Time
}

func newStateSigner(key []byte) *stateSigner {
	return &stateSigner{key: key, now: time.Now}
}

func (s *stateSigner) Sign(nonce string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	})
	return token.SignedString(s.key)
}

func (s *stateSigner) Verify(state, nonce string) error {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("parse state: %w", err)
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return errStateMismatch
	}
	return nil
}
