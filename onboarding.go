package vaultx

import (
	"context"
	"fmt"

	"github.com/hengadev/vaultx/internal/commitment"
	"github.com/hengadev/vaultx/internal/onboarding"
	"github.com/hengadev/vaultx/internal/vault"
)

// OnboardingVault persists the six-step onboarding record. Saves are immediate; there
// is no debounce on this record.
type OnboardingVault struct {
	store  *vault.Store[onboarding.State]
	hasher *commitment.Hasher
}

func newOnboardingVault(store *vault.Store[onboarding.State], hasher *commitment.Hasher) *OnboardingVault {
	return &OnboardingVault{store: store, hasher: hasher}
}

// Load returns the stored record, or the default record when nothing readable is stored.
func (o *OnboardingVault) Load(ctx context.Context) (onboarding.State, error) {
	saved, err := o.store.Load(ctx)
	if err != nil {
		return onboarding.State{}, err
	}
	if saved == nil {
		return onboarding.DefaultState(), nil
	}
	return *saved, nil
}

// Save validates s and writes it.
func (o *OnboardingVault) Save(ctx context.Context, s onboarding.State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid onboarding state: %w", err)
	}
	return o.store.Save(ctx, s)
}

// Confirm versions the current draft, stores the result and returns it.
func (o *OnboardingVault) Confirm(ctx context.Context, s onboarding.State) (onboarding.State, error) {
	next, err := onboarding.Confirm(s, o.hasher)
	if err != nil {
		return s, err
	}
	if err := o.Save(ctx, next); err != nil {
		return s, err
	}
	return next, nil
}

// Reset deletes the record and forgets the device key.
func (o *OnboardingVault) Reset(ctx context.Context) error {
	return o.store.Reset(ctx)
}
