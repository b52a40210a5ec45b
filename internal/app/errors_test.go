package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrAccountNotFound, msgInvalidCredentials},
		{ErrInvalidPassword, msgInvalidCredentials},
		{fmt.Errorf("verify: %w", ErrInvalidPassword), msgInvalidCredentials},
		{ErrAlreadyRegistered, msgAlreadyRegistered},
		{ErrSessionExpired, msgSessionEnded},
		{ErrPasswordTooLong, msgPasswordTooLong},
		{storeErr("find account", errors.New("dial tcp: refused")), msgTryAgain},
		{ErrProviderError, msgTryAgain},
	}
	for _, tc := range tests {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestStoreErrWrapsBoth(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := storeErr("find account", cause)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinels in %v", err)
	}
	if IsUserError(err) {
		t.Fatal("store error reported as user error")
	}
}
