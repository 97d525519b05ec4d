package vaultx

import (
	"log/slog"
	"time"

	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/vault"
)

// Option customises a Session beyond what Config expresses.
type Option func(*settings)

type settings struct {
	logger   *slog.Logger
	metrics  monitoring.MetricsCollector
	registry *policy.Registry
	mirror   vault.StringStore
	durables []vault.Backend
	clock    func() time.Time
	demoMode func() bool
	services *services.Set
	salt     func() string
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithMetrics(metrics monitoring.MetricsCollector) Option {
	return func(s *settings) { s.metrics = metrics }
}

// WithRegistry replaces the default field classification registry. The registry is
// checked against the public-projection invariant before the session is built.
func WithRegistry(r policy.Registry) Option {
	return func(s *settings) { s.registry = &r }
}

// WithMirror replaces the configured mirror store.
func WithMirror(store vault.StringStore) Option {
	return func(s *settings) { s.mirror = store }
}

// WithDurable replaces the configured durable backends. They are read in the given order.
func WithDurable(backends ...vault.Backend) Option {
	return func(s *settings) { s.durables = append(s.durables, backends...) }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// WithDemoModeSource replaces Config.DemoMode as the live demo-mode flag consulted on restore.
func WithDemoModeSource(fn func() bool) Option {
	return func(s *settings) { s.demoMode = fn }
}

func WithServices(set services.Set) Option {
	return func(s *settings) { s.services = &set }
}

// WithSaltFunc replaces the commitment salt generator.
func WithSaltFunc(fn func() string) Option {
	return func(s *settings) { s.salt = fn }
}
