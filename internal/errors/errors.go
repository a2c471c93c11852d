package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token available")

	// Transport and authorization errors
	ErrTransport    = errors.New("transport error")
	ErrUnauthorized = errors.New("unauthorized")

	// Refresh errors
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrMalformedRefresh = errors.New("refresh response is missing a token")
	ErrIncompleteLogin  = errors.New("login response is missing a token")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Storage errors
	ErrStorage = errors.New("session storage error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
