package vaultx

// Test helpers for callers that want a session without touching disk or network.

import (
	"context"
	"fmt"

	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/vault"
)

// TestBackends are the in-memory stores behind a test session, exposed so tests can
// inspect or corrupt them.
type TestBackends struct {
	Mirror  *vault.MemoryStringStore
	Durable *vault.MemoryAdapter
}

// NewMemoryStringStore returns an in-process mirror store.
func NewMemoryStringStore() *vault.MemoryStringStore { return vault.NewMemoryStringStore() }

// NewMemoryAdapter returns an in-process durable adapter.
func NewMemoryAdapter() *vault.MemoryAdapter { return vault.NewMemoryAdapter() }

// NewTestBackends returns empty in-memory backends.
func NewTestBackends() TestBackends {
	return TestBackends{Mirror: vault.NewMemoryStringStore(), Durable: vault.NewMemoryAdapter()}
}

// Options wires the backends into a session.
func (b TestBackends) Options() []Option {
	return []Option{
		WithMirror(b.Mirror),
		WithDurable(vault.Backend{Name: BackendMemory, Adapter: b.Durable}),
	}
}

// NewTestSession builds a session on fresh in-memory backends with instant mock
// services and a discarded log. Extra options are applied last.
func NewTestSession(ctx context.Context, opts ...Option) (*Session, TestBackends, error) {
	backends := NewTestBackends()
	set, err := services.NewMockSet(0)
	if err != nil {
		return nil, TestBackends{}, fmt.Errorf("failed to build mock services: %w", err)
	}

	all := append(backends.Options(),
		WithLogger(monitoring.Discard()),
		WithServices(set),
	)
	all = append(all, opts...)

	session, err := New(ctx, Config{Environment: "test", AutosaveDelay: DefaultAutosaveDelay}, all...)
	if err != nil {
		return nil, TestBackends{}, err
	}
	return session, backends, nil
}
