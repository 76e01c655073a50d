package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	ErrEventNotFound = errors.New("event not found")
	ErrCannotReuseID = errors.New("cannot create a new event with an existing id")

	// ErrStorage marks failures of the backing store. The cause is kept in the
	// chain for logs but never rendered to clients.
	ErrStorage = errors.New("storage error")
)

// Invalid wraps ErrValidation with a client-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
