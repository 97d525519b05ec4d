// Package autosave debounces writes: each Schedule supersedes the pending one, so a burst
// of changes produces a single save.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hengadev/vaultx/internal/monitoring"
)

// DefaultDelay is the quiet interval before a scheduled write runs.
const DefaultDelay = 500 * time.Millisecond

// SaveFunc persists one value.
type SaveFunc[T any] func(ctx context.Context, v T) error

// Scheduler owns at most one pending write.
type Scheduler[T any] struct {
	save    SaveFunc[T]
	delay   time.Duration
	logger  *slog.Logger
	metrics monitoring.MetricsCollector
	// base is the context timer-driven writes run under.
	base context.Context

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	pending    *T
	lastErr    error
	writes     sync.WaitGroup

	// writeMu serializes saves. written is the generation of the newest save that ran;
	// a save for an older generation is dropped.
	writeMu sync.Mutex
	written uint64
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	delay   time.Duration
	logger  *slog.Logger
	metrics monitoring.MetricsCollector
	base    context.Context
}

func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics monitoring.MetricsCollector) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithContext sets the context timer-driven writes run under.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.base = ctx
		}
	}
}

func New[T any](save SaveFunc[T], opts ...Option) *Scheduler[T] {
	o := options{
		delay:   DefaultDelay,
		logger:  monitoring.Discard(),
		metrics: monitoring.NoOpMetricsCollector{},
		base:    context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler[T]{
		save:    save,
		delay:   o.delay,
		logger:  o.logger,
		metrics: o.metrics,
		base:    o.base,
	}
}

// Delay returns the default quiet interval.
func (s *Scheduler[T]) Delay() time.Duration { return s.delay }

// Schedule cancels any pending write and arms a new one for v after the given delay.
// A non-positive after uses the scheduler's default delay.
func (s *Scheduler[T]) Schedule(v T, after time.Duration) {
	if after <= 0 {
		after = s.delay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.generation++
	gen := s.generation
	s.pending = &v
	s.timer = time.AfterFunc(after, func() { s.fire(gen) })
}

// Cancel drops the pending write, if any.
func (s *Scheduler[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.generation++
	s.pending = nil
}

// Pending reports whether a write is scheduled.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// FlushNow cancels the timer and saves the pending value immediately. It is a no-op
// when nothing is pending. A timer-driven write already running finishes first.
func (s *Scheduler[T]) FlushNow(ctx context.Context) error {
	s.mu.Lock()
	s.stopLocked()
	gen := s.generation
	s.generation++
	v := s.pending
	s.pending = nil
	if v == nil {
		s.mu.Unlock()
		return nil
	}
	s.writes.Add(1)
	s.mu.Unlock()

	defer s.writes.Done()
	return s.run(ctx, gen, *v, "flush")
}

// Wait blocks until every write already started has returned. After Cancel, Wait
// guarantees no save is running or about to run.
func (s *Scheduler[T]) Wait() {
	s.writes.Wait()
}

// LastError returns the error of the most recent timer-driven write.
func (s *Scheduler[T]) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Scheduler[T]) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.pending == nil {
		// superseded
		s.mu.Unlock()
		return
	}
	v := *s.pending
	s.pending = nil
	s.timer = nil
	s.writes.Add(1)
	s.mu.Unlock()

	defer s.writes.Done()
	err := s.run(s.base, gen, v, "debounce")

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Scheduler[T]) run(ctx context.Context, gen uint64, v T, trigger string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen < s.written {
		s.logger.Debug("older autosave dropped", "trigger", trigger, "generation", gen, "written", s.written)
		s.metrics.IncrementCounter(monitoring.MetricAutosaveWrite, map[string]string{
			monitoring.TagTrigger: trigger,
			monitoring.TagOutcome: "superseded",
		})
		return nil
	}
	err := s.save(ctx, v)
	s.written = gen
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Warn("autosave failed", "trigger", trigger, "error", err)
	}
	s.metrics.IncrementCounter(monitoring.MetricAutosaveWrite, map[string]string{
		monitoring.TagTrigger: trigger,
		monitoring.TagOutcome: outcome,
	})
	return err
}

func (s *Scheduler[T]) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
