package app

import (
	"context"
	"errors"
	"time"

	"secrets/internal/domain"
)

const defaultStoreTimeout = 5 * time.Second

func storeTimeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultStoreTimeout
	}
	return d
}

// writeContext bounds a store write by timeout but detaches it from the
// caller's cancellation, so an abandoned request cannot interrupt the write.
func writeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func findAccount(ctx context.Context, repo domain.AccountRepository, timeout time.Duration, identity string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acct, err := repo.FindByIdentity(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && acct == nil) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr("find account", err)
	}
	return acct, nil
}
