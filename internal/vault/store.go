package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hengadev/errsx"
	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/serialization"
)

// DefaultDurableTimeout bounds each durable write.
const DefaultDurableTimeout = 5 * time.Second

var serializer serialization.Serializer = serialization.JSONSerializer{}

type storeConfig struct {
	durable        []Backend
	durableTimeout time.Duration
	logger         *slog.Logger
	metrics        monitoring.MetricsCollector
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

// WithDurable appends durable backends, read in the order given.
func WithDurable(backends ...Backend) StoreOption {
	return func(c *storeConfig) { c.durable = append(c.durable, backends...) }
}

func WithDurableTimeout(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		if d > 0 {
			c.durableTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(metrics monitoring.MetricsCollector) StoreOption {
	return func(c *storeConfig) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// Store persists values of type T as one encrypted record.
//
// Save writes the mirror first and synchronously, then every durable backend. Every save
// seals a sequence number next to the value, and Load returns the copy with the highest
// sequence across all backends, preferring durable backends on a tie.
type Store[T any] struct {
	record Record
	keys   *DeviceKeys
	mirror Backend
	storeConfig

	seqMu   sync.Mutex
	lastSeq int64
}

// envelope is the encrypted plaintext. A blob holding a bare record has sequence 0.
type envelope struct {
	Seq    int64           `json:"seq"`
	Record json.RawMessage `json:"record"`
}

// NewStore builds a store for record. mirror is the always-available backend; the
// device key lives in the same string store behind it.
func NewStore[T any](record Record, keys *DeviceKeys, mirror Backend, opts ...StoreOption) *Store[T] {
	cfg := storeConfig{
		durableTimeout: DefaultDurableTimeout,
		logger:         monitoring.Discard(),
		metrics:        monitoring.NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if mirror.Name == "" {
		mirror.Name = "mirror"
	}
	return &Store[T]{
		record:      record,
		keys:        keys,
		mirror:      mirror,
		storeConfig: cfg,
	}
}

// Record returns the record description.
func (s *Store[T]) Record() Record { return s.record }

// Save encrypts v and writes it to every backend. Durable failures are logged and
// swallowed; the error is non-nil only if the key, the encryption or the mirror write fails.
func (s *Store[T]) Save(ctx context.Context, v T) error {
	start := time.Now()
	defer s.observe("save", start)

	key, err := s.keys.GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain device key: %w", err)
	}
	record, err := serializer.Serialize(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s record: %w", s.record.Name, err)
	}
	blob, err := crypto.Encrypt(envelope{Seq: s.nextSeq(), Record: record}, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s record: %w", s.record.Name, err)
	}

	if err := s.mirror.Adapter.Put(ctx, s.record.MirrorKey, blob); err != nil {
		s.countSave(s.mirror.Name, "error")
		s.logger.Error("mirror write failed", "record", s.record.Name, "backend", s.mirror.Name, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrMirrorWrite, s.mirror.Name, err)
	}
	s.countSave(s.mirror.Name, "ok")

	for _, b := range s.durable {
		s.saveDurable(ctx, b, blob)
	}
	return nil
}

func (s *Store[T]) saveDurable(ctx context.Context, b Backend, blob []byte) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.durableTimeout)
	defer cancel()

	err := b.Adapter.Put(wctx, s.record.DurableKey, blob)
	if err == nil {
		s.countSave(b.Name, "ok")
		return
	}
	s.countSave(b.Name, "error")
	s.logger.Warn("durable write failed, mirror holds the record", "record", s.record.Name, "backend", b.Name, "error", err)

	// Load already prefers the newer mirror copy; removing the old one is best-effort.
	if derr := b.Adapter.Delete(wctx, s.record.DurableKey); derr != nil {
		s.logger.Warn("stale durable copy not removed", "record", s.record.Name, "backend", b.Name, "error", derr)
	}
}

// Load returns the newest stored value, or nil when nothing usable is stored. A blob that
// cannot be read, decrypted or validated is discarded and the other backends still count.
// It never returns an error for missing, unreadable, undecryptable or malformed records;
// the error is reserved for a cancelled context.
func (s *Store[T]) Load(ctx context.Context) (*T, error) {
	start := time.Now()
	defer s.observe("load", start)

	var (
		best     *T
		bestSeq  int64
		bestName string
	)
	for _, src := range s.readOrder() {
		b := src.Backend
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blob, err := b.Adapter.Get(ctx, src.key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if errors.Is(err, ErrCorruptBlob) {
			s.discard(b.Name, "corrupt_encoding", err)
			continue
		}
		if err != nil {
			s.logger.Warn("read failed, trying next backend", "record", s.record.Name, "backend", b.Name, "error", err)
			s.countLoad(b.Name, "read_error")
			continue
		}

		v, seq, reason, err := s.open(ctx, blob)
		if err != nil {
			s.discard(b.Name, reason, err)
			continue
		}
		if best != nil && seq <= bestSeq {
			s.stale(b.Name, seq, bestName, bestSeq)
			continue
		}
		if best != nil {
			s.stale(bestName, bestSeq, b.Name, seq)
		}
		best, bestSeq, bestName = v, seq, b.Name
	}
	if best == nil {
		s.countLoad("none", "empty")
		return nil, nil
	}
	s.observeSeq(bestSeq)
	s.countLoad(bestName, "ok")
	return best, nil
}

func (s *Store[T]) open(ctx context.Context, blob []byte) (*T, int64, string, error) {
	key, err := s.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, 0, "device_key", err
	}
	plaintext, err := crypto.DecryptData(blob, key)
	if err != nil {
		var de *crypto.DecryptionError
		if errors.As(err, &de) {
			return nil, 0, string(de.Reason), err
		}
		return nil, 0, "decrypt", err
	}
	seq, record := unwrap(plaintext)
	if err := validateShape(record, s.record.StepField); err != nil {
		return nil, 0, "shape", err
	}
	var v T
	if err := serializer.Deserialize(record, &v); err != nil {
		return nil, 0, "shape", err
	}
	return &v, seq, "", nil
}

// unwrap splits an envelope. Anything else is returned whole with sequence 0.
func unwrap(plaintext []byte) (int64, []byte) {
	var env envelope
	if err := serializer.Deserialize(plaintext, &env); err != nil || len(env.Record) == 0 {
		return 0, plaintext
	}
	return env.Seq, env.Record
}

// nextSeq is strictly greater than every sequence this store has written or loaded. The
// wall clock keeps it increasing across restarts.
func (s *Store[T]) nextSeq() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

func (s *Store[T]) observeSeq(seq int64) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
}

func validateShape(plaintext []byte, stepField string) error {
	var fields map[string]any
	if err := serializer.Deserialize(plaintext, &fields); err != nil {
		return fmt.Errorf("record is not an object: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("record is null")
	}
	if stepField == "" {
		return nil
	}
	if _, ok := fields[stepField].(float64); !ok {
		return fmt.Errorf("field %q is missing or not a number", stepField)
	}
	return nil
}

// Reset deletes the record from every backend and clears the device key. Resetting an
// empty vault is not an error; durable delete failures are logged and swallowed.
func (s *Store[T]) Reset(ctx context.Context) error {
	errs := errsx.Map{}

	if err := s.mirror.Adapter.Delete(ctx, s.record.MirrorKey); err != nil {
		errs.Set(s.mirror.Name, err)
	}
	for _, b := range s.durable {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.durableTimeout)
		if err := b.Adapter.Delete(dctx, s.record.DurableKey); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("durable delete failed during reset", "record", s.record.Name, "backend", b.Name, "error", err)
		}
		cancel()
	}
	if err := s.keys.Clear(ctx); err != nil {
		errs.Set("deviceKey", err)
	}

	s.metrics.IncrementCounter(monitoring.MetricVaultReset, map[string]string{monitoring.TagRecord: s.record.Name})
	s.logger.Info("vault reset", "record", s.record.Name)
	return errs.AsError()
}

type source struct {
	Backend
	key string
}

func (s *Store[T]) readOrder() []source {
	order := make([]source, 0, len(s.durable)+1)
	for _, b := range s.durable {
		order = append(order, source{Backend: b, key: s.record.DurableKey})
	}
	return append(order, source{Backend: s.mirror, key: s.record.MirrorKey})
}

func (s *Store[T]) discard(backend, reason string, err error) {
	s.countLoad(backend, "discarded")
	s.logger.Warn("stored record discarded", "record", s.record.Name, "backend", backend, "reason", reason, "error", err)
}

func (s *Store[T]) stale(backend string, seq int64, newer string, newerSeq int64) {
	s.countLoad(backend, "stale")
	s.logger.Warn("older copy ignored", "record", s.record.Name, "backend", backend, "seq", seq, "newer", newer, "newerSeq", newerSeq)
}

func (s *Store[T]) countSave(backend, outcome string) {
	s.metrics.IncrementCounter(monitoring.MetricVaultSave, map[string]string{
		monitoring.TagRecord:  s.record.Name,
		monitoring.TagBackend: backend,
		monitoring.TagOutcome: outcome,
	})
}

func (s *Store[T]) countLoad(source, outcome string) {
	s.metrics.IncrementCounter(monitoring.MetricVaultLoad, map[string]string{
		monitoring.TagRecord:  s.record.Name,
		monitoring.TagSource:  source,
		monitoring.TagOutcome: outcome,
	})
}

func (s *Store[T]) observe(operation string, start time.Time) {
	s.metrics.RecordTiming(monitoring.MetricVaultOperation, time.Since(start), map[string]string{
		monitoring.TagRecord:    s.record.Name,
		monitoring.TagOperation: operation,
	})
}
