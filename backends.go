package vaultx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/hengadev/vaultx/internal/health"
	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/vault"
	"github.com/hengadev/vaultx/providers/filestore"
	redisstore "github.com/hengadev/vaultx/providers/redis"
	s3bucket "github.com/hengadev/vaultx/providers/s3"
	"github.com/hengadev/vaultx/providers/sqlite"
)

// backends is the storage a session runs on.
type backends struct {
	mirror   vault.StringStore
	durables []vault.Backend
	closers  []io.Closer
}

func (b *backends) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBackends builds the mirror and durable backends from cfg unless opts replace them.
// A mirror that cannot be opened is fatal. A durable backend that cannot be opened is
// logged and left out: the mirror alone still persists every save.
func openBackends(ctx context.Context, cfg Config, s settings, logger *slog.Logger, metrics monitoring.MetricsCollector) (*backends, error) {
	b := &backends{}

	switch {
	case s.mirror != nil:
		b.mirror = s.mirror
	case cfg.Memory:
		b.mirror = vault.NewMemoryStringStore()
	default:
		path := filepath.Join(cfg.DataDir, cfg.MirrorFilename)
		store, err := filestore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: mirror: %w", ErrBackendUnavailable, err)
		}
		b.mirror = store
	}

	durables := s.durables
	if len(durables) == 0 {
		durables = b.openDurables(ctx, cfg, logger)
	}

	for _, d := range durables {
		b.durables = append(b.durables, vault.Guard(d, vault.GuardConfig{
			FailureThreshold: cfg.BreakerThreshold,
			Cooldown:         cfg.BreakerCooldown,
			Logger:           logger,
			Metrics:          metrics,
			Now:              s.clock,
		}))
	}
	return b, nil
}

func (b *backends) openDurables(ctx context.Context, cfg Config, logger *slog.Logger) []vault.Backend {
	if cfg.Memory {
		return []vault.Backend{{Name: BackendMemory, Adapter: vault.NewMemoryAdapter()}}
	}

	var out []vault.Backend
	skip := func(name string, err error) {
		logger.Warn("durable backend unavailable, continuing without it", "backend", name, "error", err)
	}

	db, err := sqlite.Open(ctx, filepath.Join(cfg.DataDir, cfg.SQLiteFilename))
	if err != nil {
		skip(BackendSQLite, err)
	} else {
		out = append(out, vault.Backend{Name: BackendSQLite, Adapter: db})
		b.closers = append(b.closers, db)
	}

	if cfg.RedisURL != "" {
		rdb, err := redisstore.Open(ctx, redisstore.Config{
			URL:          cfg.RedisURL,
			DialTimeout:  cfg.DurableTimeout,
			ReadTimeout:  cfg.DurableTimeout,
			WriteTimeout: cfg.DurableTimeout,
		})
		if err != nil {
			skip(BackendRedis, err)
		} else {
			out = append(out, vault.Backend{Name: BackendRedis, Adapter: rdb})
			b.closers = append(b.closers, rdb)
		}
	}

	if cfg.S3Bucket != "" {
		bucket, err := s3bucket.NewFromDefaultConfig(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			skip(BackendS3, err)
		} else {
			out = append(out, vault.Backend{Name: BackendS3, Adapter: bucket})
		}
	}
	return out
}

// checker registers one probe per backend. Only the mirror is critical.
func (b *backends) checker() *health.Checker {
	c := health.NewChecker(Version)
	_ = c.Register(health.AdapterCheck(BackendMirror, vault.NewMirror(b.mirror), true))
	for _, d := range b.durables {
		_ = c.Register(health.AdapterCheck(d.Name, d.Adapter, false))
	}
	return c
}
