package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the core wraps exactly one of these
// so the transport layer can map it to a status code with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUserNotFound    = errors.New("user not found")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

var (
	ErrUsernameExists = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailExists    = fmt.Errorf("%w: email already exists", ErrConflict)

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	ErrTokenInvalid       = fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token has expired", ErrUnauthorized)
)
