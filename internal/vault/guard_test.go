package vault

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/onboarding"
	"github.com/hengadev/vaultx/internal/reliability"
	"github.com/hengadev/vaultx/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_OpensAndSkipsBackend(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	failing := &failingAdapter{err: errors.New("connection refused")}
	metrics := monitoring.NewInMemoryMetricsCollector()

	guarded := Guard(Backend{Name: "redis", Adapter: failing}, GuardConfig{
		FailureThreshold: 2,
		Cooldown:         time.Minute,
		Metrics:          metrics,
		Now:              func() time.Time { return now },
	})
	ctx := context.Background()

	assert.Error(t, guarded.Adapter.Put(ctx, "k", []byte("v")))
	assert.Error(t, guarded.Adapter.Put(ctx, "k", []byte("v")))
	require.Equal(t, reliability.StateOpen, guarded.Adapter.(*GuardedAdapter).State())
	assert.Equal(t, float64(reliability.StateOpen), metrics.GetGauge(monitoring.MetricBreakerState, map[string]string{monitoring.TagBackend: "redis"}))

	err := guarded.Adapter.Put(ctx, "k", []byte("v"))
	assert.True(t, reliability.IsCircuitOpenError(err))
	assert.Equal(t, int32(2), failing.puts.Load(), "open circuit skips the backend")
}

func TestGuard_NotFoundDoesNotTrip(t *testing.T) {
	guarded := Guard(Backend{Name: "memory", Adapter: NewMemoryAdapter()}, GuardConfig{FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		_, err := guarded.Adapter.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, reliability.StateClosed, guarded.Adapter.(*GuardedAdapter).State())
}

func TestGuard_StoreFallsBackWhileOpen(t *testing.T) {
	f := newFixture()
	failing := &failingAdapter{err: errors.New("timeout")}
	guarded := Guard(Backend{Name: "s3", Adapter: failing}, GuardConfig{FailureThreshold: 1, Cooldown: time.Hour})
	store := NewStore[wizard.State](WizardRecord, f.keys, Backend{Name: "mirror", Adapter: NewMirror(f.strings)},
		WithDurable(guarded))
	ctx := context.Background()

	state := sampleWizardState()
	require.NoError(t, store.Save(ctx, state))
	require.NoError(t, store.Save(ctx, state))
	assert.Equal(t, int32(1), failing.puts.Load())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, state, *loaded)
}

// switchableAdapter fails every call while down is set.
type switchableAdapter struct {
	*MemoryAdapter
	down atomic.Bool
}

var errBackendDown = errors.New("connection refused")

func (a *switchableAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if a.down.Load() {
		return nil, errBackendDown
	}
	return a.MemoryAdapter.Get(ctx, key)
}

func (a *switchableAdapter) Put(ctx context.Context, key string, blob []byte) error {
	if a.down.Load() {
		return errBackendDown
	}
	return a.MemoryAdapter.Put(ctx, key, blob)
}

func (a *switchableAdapter) Delete(ctx context.Context, key string) error {
	if a.down.Load() {
		return errBackendDown
	}
	return a.MemoryAdapter.Delete(ctx, key)
}

func TestGuard_RecoveredBackendDoesNotServeStaleCopy(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name    string
		restart bool
	}{
		{name: "same process after cooldown"},
		{name: "fresh process", restart: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			backend := &switchableAdapter{MemoryAdapter: NewMemoryAdapter()}
			build := func() *Store[onboarding.State] {
				guarded := Guard(Backend{Name: "redis", Adapter: backend}, GuardConfig{
					FailureThreshold: 1,
					Cooldown:         time.Minute,
					Now:              clock,
				})
				return NewStore[onboarding.State](OnboardingRecord, f.keys,
					Backend{Name: "mirror", Adapter: NewMirror(f.strings)}, WithDurable(guarded))
			}
			store := build()
			ctx := context.Background()

			state := onboarding.DefaultState()
			state.CurrentStep = 4
			require.NoError(t, store.Save(ctx, state))

			backend.down.Store(true)
			state.CurrentStep = 5
			require.NoError(t, store.Save(ctx, state))
			_, err := backend.MemoryAdapter.Get(ctx, OnboardingRecord.DurableKey)
			require.NoError(t, err, "the step 4 copy survives the outage")

			backend.down.Store(false)
			now = now.Add(2 * time.Minute)
			if tt.restart {
				store = build()
			}

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, 5, loaded.CurrentStep)
		})
	}
}
