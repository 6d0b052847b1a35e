// Package common defines sentinel errors and small helpers shared by the
// repositories, services and HTTP layer. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email already registered")

	// Service-level errors.
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Input errors.
	ErrorValidation    = errors.New("validation error")
	ErrorInvalidFormat = errors.New("invalid format")

	// Object storage errors.
	ErrorRemoteStorage = errors.New("remote storage error")
	ErrorNoCredentials = fmt.Errorf("%w: credentials not available", ErrorRemoteStorage)

	// Auth errors (invalid or malformed token, expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError is a user-correctable input error. Message is shown to the
// user as is.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports ErrorValidation as a match so callers can branch on the class.
func (e *ValidationError) Is(target error) bool { return target == ErrorValidation }
