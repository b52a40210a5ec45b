package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "secrets/internal/adapter/http"
	"secrets/internal/adapter/memory"
	"secrets/internal/adapter/postgres"
	"secrets/internal/app"
	"secrets/internal/config"
	"secrets/internal/domain"
	"secrets/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, sessionRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store ready", "store", cfg.Store)

	hasher := app.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers, cfg.HashTimeout)
	sessions := app.NewSessionManager(sessionRepo, cfg.SessionTTL, cfg.StoreTimeout, log)
	authSvc := app.NewAuthService(accounts, hasher, sessions, cfg.StoreTimeout, log)
	secretSvc := app.NewSecretService(accounts, cfg.StoreTimeout)

	srv := adapthttp.New(authSvc, secretSvc, cfg.WebDir, log).WithSecureCookies(cfg.CookieSecure)
	if cfg.OIDC.Enabled() {
		idp, err := adapthttp.NewOIDCProvider(ctx, cfg.OIDC)
		if err != nil {
			return err
		}
		srv.WithIdentityProvider(idp, []byte(cfg.SessionSecret))
		log.Info("federated login enabled", "issuer", cfg.OIDC.Issuer)
	}

	go sessions.RunJanitor(ctx, cfg.SessionJanitorInterval)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (domain.AccountRepository, domain.SessionRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		db := memory.New()
		return db, db.NewSessionRepo(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db open: %w", err)
	}
	return db, postgres.NewSessionRepo(db), func() { _ = db.Close() }, nil
}
