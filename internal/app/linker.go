package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secrets/internal/domain"
)

// FederatedLinker maps an identity-provider email to a local account,
// provisioning one on first login.
type FederatedLinker struct {
	accounts domain.AccountRepository
	timeout  time.Duration
}

// NewFederatedLinker creates a linker backed by the given repository.
func NewFederatedLinker(accounts domain.AccountRepository, storeTimeout time.Duration) *FederatedLinker {
	return &FederatedLinker{accounts: accounts, timeout: storeTimeoutOrDefault(storeTimeout)}
}

// LinkOrCreate returns the account for providerEmail, creating it with the
// federated sentinel hash when absent. Repeated calls return the same account.
func (l *FederatedLinker) LinkOrCreate(ctx context.Context, providerEmail string) (*domain.Account, error) {
	if providerEmail == "" {
		return nil, fmt.Errorf("%w: provider supplied no email", ErrProviderError)
	}

	acct, err := findAccount(ctx, l.accounts, l.timeout, providerEmail)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	wctx, cancel := writeContext(ctx, l.timeout)
	defer cancel()

	acct, err = l.accounts.Create(wctx, providerEmail, domain.FederatedPasswordHash)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent first login; the row exists now.
		acct, err = findAccount(ctx, l.accounts, l.timeout, providerEmail)
		if errors.Is(err, ErrAccountNotFound) {
			return nil, storeErr("link account", err)
		}
		return acct, err
	}
	if err != nil {
		return nil, storeErr("create account", err)
	}
	return acct, nil
}
