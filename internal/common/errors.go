// Package common defines shared constants, sentinel errors and small helpers
// used across the vaultx server, its transports and the CLI client.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Authentication failures. Messages are deliberately generic.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid two-factor code")
	ErrAuthorization      = errors.New("incorrect password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired wraps ErrInvalidToken so expired tokens match both.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)

	// Two-factor lifecycle errors.
	ErrTwoFactorNotPending     = errors.New("two-factor authentication is not set up")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// Crypto and startup errors.
	ErrDecryption    = errors.New("failed to decrypt secret")
	ErrConfiguration = errors.New("configuration error")

	ErrBackupDisabled = errors.New("backup storage is not configured")
)

// Validationf returns an error matching ErrorValidation with a caller-facing reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
