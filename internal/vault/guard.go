package vault

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/reliability"
)

// GuardedAdapter skips a failing backend for a cooldown once it has failed repeatedly.
// ErrNotFound never counts as a failure. While the circuit is open every call returns a
// *reliability.CircuitOpenError, which the store treats like any other durable failure.
type GuardedAdapter struct {
	inner   Adapter
	breaker *reliability.CircuitBreaker
}

// GuardConfig tunes a GuardedAdapter.
type GuardConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
	Logger           *slog.Logger
	Metrics          monitoring.MetricsCollector
	Now              func() time.Time
}

// Guard wraps b's adapter in a circuit breaker named after the backend.
func Guard(b Backend, cfg GuardConfig) Backend {
	if cfg.Logger == nil {
		cfg.Logger = monitoring.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitoring.NoOpMetricsCollector{}
	}
	breaker := reliability.NewCircuitBreaker(b.Name, reliability.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		Cooldown:         cfg.Cooldown,
		Now:              cfg.Now,
		ShouldTrip: func(err error) bool {
			return err != nil && !errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to reliability.CircuitState) {
			cfg.Logger.Warn("durable backend circuit changed", "backend", name, "from", from.String(), "to", to.String())
			cfg.Metrics.SetGauge(monitoring.MetricBreakerState, float64(to), map[string]string{monitoring.TagBackend: name})
		},
	})
	return Backend{Name: b.Name, Adapter: &GuardedAdapter{inner: b.Adapter, breaker: breaker}}
}

// State returns the breaker state.
func (g *GuardedAdapter) State() reliability.CircuitState {
	return g.breaker.State()
}

func (g *GuardedAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		blob, err = g.inner.Get(ctx, key)
		return err
	})
	return blob, err
}

func (g *GuardedAdapter) Put(ctx context.Context, key string, blob []byte) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.Put(ctx, key, blob)
	})
}

func (g *GuardedAdapter) Delete(ctx context.Context, key string) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.Delete(ctx, key)
	})
}
