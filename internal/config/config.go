// Package config loads runtime settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds runtime settings for the secrets server.
type Config struct {
	Addr   string `env:"ADDR" envDefault:":3000"`
	WebDir string `env:"WEB_DIR" envDefault:"public"`

	Store       string   `env:"STORE" envDefault:"postgres"`
	DatabaseURL string   `env:"DATABASE_URL"`
	PG          PGConfig `envPrefix:"PG_"`

	SessionSecret          string        `env:"SESSION_SECRET"`
	SessionTTL             time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionJanitorInterval time.Duration `env:"SESSION_JANITOR_INTERVAL" envDefault:"10m"`
	CookieSecure           bool          `env:"COOKIE_SECURE"`

	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers  int           `env:"HASH_WORKERS"`
	HashTimeout  time.Duration `env:"HASH_TIMEOUT" envDefault:"5s"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	OIDC OIDCConfig
}

// PGConfig holds discrete connection settings used when DATABASE_URL is unset.
type PGConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Database string `env:"DATABASE"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// OIDCConfig configures federated login. It is disabled unless a client ID
// and secret are set.
type OIDCConfig struct {
	Issuer       string `env:"OIDC_ISSUER" envDefault:"https://accounts.google.com"`
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"OIDC_REDIRECT_URL" envDefault:"http://localhost:3000/auth/google/secrets"`
}

// Enabled reports whether federated login is configured.
func (c OIDCConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DSN() == "" {
			return errors.New("config: DATABASE_URL or PG_USER and PG_DATABASE are required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: invalid STORE %q (supported: %s, %s)", c.Store, StorePostgres, StoreMemory)
	}
	if c.OIDC.Enabled() && len(c.SessionSecret) < 16 {
		return errors.New("config: SESSION_SECRET of at least 16 bytes is required for federated login")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.PG.User == "" || c.PG.Database == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PG.User, c.PG.Password),
		Host:     net.JoinHostPort(c.PG.Host, c.PG.Port),
		Path:     "/" + c.PG.Database,
		RawQuery: url.Values{"sslmode": {c.PG.SSLMode}}.Encode(),
	}
	return u.String()
}
