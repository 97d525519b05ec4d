package vaultx

import (
	"errors"

	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/reliability"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/vault"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrNotHydrated          = errors.New("session not hydrated")
	ErrProcessingSkipped    = errors.New("processing does not run from the current state")

	// Re-exported so callers need not import internal packages.
	ErrUnclassifiedField = policy.ErrUnclassifiedField
	ErrPolicyViolation   = policy.ErrPolicyViolation
	ErrDecryption        = crypto.ErrDecryption
	ErrMirrorWrite       = vault.ErrMirrorWrite
	ErrWalletRequired    = services.ErrWalletRequired
)

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsPolicyError returns true if the error comes from field classification or the
// public-projection invariant.
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrUnclassifiedField) ||
		errors.Is(err, ErrPolicyViolation)
}

// IsStorageError returns true if the error represents a persistence failure.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrMirrorWrite) ||
		errors.Is(err, ErrBackendUnavailable) ||
		reliability.IsCircuitOpenError(err)
}

// IsRetryableError returns true if the error represents a transient failure that might succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		reliability.IsCircuitOpenError(err)
}

// IsKeyMismatch returns true if a blob was sealed under a different device key or tampered with.
func IsKeyMismatch(err error) bool {
	return crypto.IsKeyMismatch(err)
}
