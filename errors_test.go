package vaultx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/reliability"
	"github.com/hengadev/vaultx/internal/vault"
)

func TestErrorClassification(t *testing.T) {
	key, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	blob, _ := crypto.Encrypt(map[string]int{"currentStep": 1}, key)
	var out map[string]any
	mismatch := crypto.Decrypt(blob, other, &out)

	breaker := reliability.NewCircuitBreaker("sqlite", reliability.CircuitBreakerConfig{FailureThreshold: 1})
	_ = breaker.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	open := breaker.Execute(context.Background(), func(context.Context) error { return nil })

	tests := []struct {
		name          string
		err           error
		configuration bool
		policy        bool
		storage       bool
		retryable     bool
		keyMismatch   bool
	}{
		{name: "configuration", err: fmt.Errorf("%w: bad", ErrInvalidConfiguration), configuration: true},
		{name: "unclassified field", err: policy.NewUnclassifiedFieldError("nickname"), policy: true},
		{name: "invariant violation", err: policy.NewInvariantViolationError("email", "registry"), policy: true},
		{name: "mirror write", err: fmt.Errorf("%w: quota", vault.ErrMirrorWrite), storage: true},
		{name: "backend unavailable", err: ErrBackendUnavailable, storage: true, retryable: true},
		{name: "open circuit", err: open, storage: true, retryable: true},
		{name: "key mismatch", err: mismatch, keyMismatch: true},
		{name: "plain", err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.configuration, IsConfigurationError(tt.err))
			assert.Equal(t, tt.policy, IsPolicyError(tt.err))
			assert.Equal(t, tt.storage, IsStorageError(tt.err))
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
			assert.Equal(t, tt.keyMismatch, IsKeyMismatch(tt.err))
		})
	}
}
