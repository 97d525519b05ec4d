package vault

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/security"
)

// DeviceKeyName is the mirror-store key holding the device key material.
const DeviceKeyName = "vaultx_device_key_v1"

// DeviceKeys owns the device key. The material lives in the mirror store only, either as
// base64 of the raw key bytes or, with a passphrase, wrapped by crypto.WrapKey.
type DeviceKeys struct {
	store      StringStore
	passphrase string
	params     crypto.Argon2Params
	logger     *slog.Logger
	metrics    monitoring.MetricsCollector

	mu     sync.Mutex
	stored string
	cached crypto.Key
}

// KeyOption configures DeviceKeys.
type KeyOption func(*DeviceKeys)

// WithPassphrase wraps the stored key material under an Argon2id-derived key.
func WithPassphrase(passphrase string, params crypto.Argon2Params) KeyOption {
	return func(d *DeviceKeys) {
		d.passphrase = passphrase
		d.params = params
	}
}

func WithKeyLogger(logger *slog.Logger) KeyOption {
	return func(d *DeviceKeys) { d.logger = logger }
}

func WithKeyMetrics(metrics monitoring.MetricsCollector) KeyOption {
	return func(d *DeviceKeys) { d.metrics = metrics }
}

func NewDeviceKeys(store StringStore, opts ...KeyOption) *DeviceKeys {
	d := &DeviceKeys{
		store:   store,
		params:  crypto.DefaultArgon2Params(),
		logger:  monitoring.Discard(),
		metrics: monitoring.NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GetOrCreate returns the device key, generating and persisting a new one when the stored
// material is absent or unreadable. Unreadable material is replaced, never reported.
// A plain key found while a passphrase is configured is rewrapped in place.
func (d *DeviceKeys) GetOrCreate(ctx context.Context) (crypto.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, ok, err := d.store.GetItem(DeviceKeyName)
	if err != nil {
		d.logger.Warn("device key read failed, generating a new key", "error", err)
	} else if ok && stored != "" {
		if stored == d.stored && d.cached != nil {
			return d.cached, nil
		}
		key, err := d.decode(stored)
		if err == nil && d.passphrase != "" && !crypto.IsWrapped(stored) {
			return d.persist(key, "wrapped")
		}
		if err == nil {
			d.remember(stored, key)
			return key, nil
		}
		d.logger.Warn("device key material unreadable, regenerating", "reason", err)
		d.metrics.IncrementCounter(monitoring.MetricDeviceKey, map[string]string{monitoring.TagEvent: "regenerated"})
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return d.persist(key, "created")
}

func (d *DeviceKeys) persist(key crypto.Key, event string) (crypto.Key, error) {
	encoded, err := d.encode(key)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetItem(DeviceKeyName, encoded); err != nil {
		return nil, fmt.Errorf("failed to persist device key: %w", err)
	}
	d.remember(encoded, key)
	d.metrics.IncrementCounter(monitoring.MetricDeviceKey, map[string]string{monitoring.TagEvent: event})
	d.logger.Info("device key stored", "event", event, "wrapped", d.passphrase != "")
	return key, nil
}

// Clear removes the stored key material. Every blob sealed under it becomes undecryptable.
func (d *DeviceKeys) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.remember("", nil)
	if err := d.store.RemoveItem(DeviceKeyName); err != nil {
		return fmt.Errorf("failed to clear device key: %w", err)
	}
	d.metrics.IncrementCounter(monitoring.MetricDeviceKey, map[string]string{monitoring.TagEvent: "cleared"})
	return nil
}

func (d *DeviceKeys) remember(stored string, key crypto.Key) {
	d.stored, d.cached = stored, key
}

func (d *DeviceKeys) encode(key crypto.Key) (string, error) {
	if d.passphrase == "" {
		return base64.StdEncoding.EncodeToString(key), nil
	}
	return crypto.WrapKey(key, d.passphrase, d.params)
}

func (d *DeviceKeys) decode(stored string) (crypto.Key, error) {
	if crypto.IsWrapped(stored) {
		if d.passphrase == "" {
			return nil, fmt.Errorf("%w: key is wrapped but no passphrase is configured", crypto.ErrInvalidKey)
		}
		return crypto.UnwrapKey(stored, d.passphrase)
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrInvalidKey, err)
	}
	defer security.ZeroBytes(raw)
	return crypto.ParseKey(raw)
}
