package app

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound indicates that no account exists for the identity.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidPassword indicates that the password did not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrAlreadyRegistered indicates that registration hit an existing identity.
	ErrAlreadyRegistered = errors.New("account already registered")
	// ErrProviderError indicates that the identity provider handshake or profile fetch failed.
	ErrProviderError = errors.New("identity provider error")
	// ErrStoreUnavailable indicates a backing store timeout or connection failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSessionInvalid indicates that the session does not exist or was revoked.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")

	// ErrIdentityRequired is returned when registering without an identity.
	ErrIdentityRequired = errors.New("identity required")
	// ErrPasswordRequired is returned when registering with an empty password.
	ErrPasswordRequired = errors.New("password required")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrHashTimeout is returned alongside ErrStoreUnavailable when hashing could
	// not finish in time.
	ErrHashTimeout = errors.New("password hashing timed out")
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgAlreadyRegistered  = "Email already registered. Please log in."
	msgSessionEnded       = "Please log in again."
	msgIdentityRequired   = "Please enter your email."
	msgPasswordRequired   = "Please choose a password."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
	msgTryAgain           = "Something went wrong. Please try again."
)

// UserMessage returns the text an end user should see for err.
// Account-not-found and wrong-password share one message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrInvalidPassword):
		return msgInvalidCredentials
	case errors.Is(err, ErrAlreadyRegistered):
		return msgAlreadyRegistered
	case errors.Is(err, ErrSessionInvalid), errors.Is(err, ErrSessionExpired):
		return msgSessionEnded
	case errors.Is(err, ErrIdentityRequired):
		return msgIdentityRequired
	case errors.Is(err, ErrPasswordRequired):
		return msgPasswordRequired
	case errors.Is(err, ErrPasswordTooLong):
		return msgPasswordTooLong
	default:
		return msgTryAgain
	}
}

// IsUserError reports whether err is an expected, user-caused failure that
// should not be logged as an error.
func IsUserError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrSessionInvalid) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrIdentityRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooLong)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
