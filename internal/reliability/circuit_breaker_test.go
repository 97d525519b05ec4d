package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errBackend = errors.New("backend unavailable")

func fail(context.Context) error    { return errBackend }
func succeed(context.Context) error { return nil }

func newTestBreaker(clock *fakeClock, transitions *[]CircuitState) *CircuitBreaker {
	return NewCircuitBreaker("durable", CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Cooldown:         time.Minute,
		Now:              clock.Now,
		OnStateChange: func(name string, from, to CircuitState) {
			*transitions = append(*transitions, to)
		},
	})
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var transitions []CircuitState
	cb := newTestBreaker(clock, &transitions)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.True(t, IsCircuitOpenError(err))
	assert.False(t, called, "open circuit must not call through")
	assert.Equal(t, []CircuitState{StateOpen}, transitions)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var transitions []CircuitState
	cb := newTestBreaker(clock, &transitions)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(time.Minute)
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBackend)
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")

	clock.Advance(time.Minute)
	assert.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []CircuitState{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	var transitions []CircuitState
	cb := newTestBreaker(clock, &transitions)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ShouldTrip(t *testing.T) {
	ignored := errors.New("not found")
	cb := NewCircuitBreaker("durable", CircuitBreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       func(err error) bool { return err != nil && !errors.Is(err, ignored) },
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error { return ignored })
	}
	assert.Equal(t, StateClosed, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitOpenError(t *testing.T) {
	err := NewCircuitOpenError("sqlite", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, err.Error(), "sqlite")
	assert.True(t, IsCircuitOpenError(err))
	assert.False(t, IsCircuitOpenError(errBackend))
}
