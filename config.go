package vaultx

import (
	"fmt"
	"time"

	"github.com/hengadev/errsx"

	"github.com/hengadev/vaultx/internal/monitoring"
)

// Config holds the configuration for creating a Session.
//
// This struct contains only data, no behavior. It can be loaded from the environment
// (LoadConfigFromEnvironment), from a YAML file (LoadConfigFile) or built in code, and
// is passed explicitly to New.
//
// Every field is optional; Validate applies the defaults. Backends are enabled by
// configuration: the mirror file and SQLite database always live under DataDir unless
// Memory is set, and Redis and S3 are added when their URL or bucket is given.
type Config struct {
	// Environment drives field classification strictness. "production" is lenient.
	Environment string `yaml:"environment"`

	// DataDir holds the SQLite database and the mirror file. Default: .vaultx
	DataDir        string `yaml:"data_dir"`
	SQLiteFilename string `yaml:"sqlite_filename"`
	MirrorFilename string `yaml:"mirror_filename"`

	// Memory keeps every backend in process. Nothing survives the process.
	Memory bool `yaml:"memory"`

	RedisURL string `yaml:"redis_url"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`

	// AutosaveDelay is the debounce interval between a change and its write.
	AutosaveDelay time.Duration `yaml:"autosave_delay"`

	// DurableTimeout bounds each durable backend call made by a save.
	DurableTimeout time.Duration `yaml:"durable_timeout"`

	// BreakerThreshold consecutive durable failures open the circuit for BreakerCooldown.
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`

	DemoMode bool `yaml:"demo_mode"`

	// Passphrase is never read from a config file.
	Passphrase string `yaml:"-"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Validate checks the configuration and applies defaults to empty fields.
// Every problem is reported at once, keyed by field.
func (c *Config) Validate() error {
	errs := errsx.Map{}

	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.SQLiteFilename == "" {
		c.SQLiteFilename = DefaultSQLiteFilename
	}
	if c.MirrorFilename == "" {
		c.MirrorFilename = DefaultMirrorFilename
	}

	switch {
	case c.AutosaveDelay < 0:
		errs.Set("autosave_delay", fmt.Errorf("must not be negative, got %s", c.AutosaveDelay))
	case c.AutosaveDelay == 0:
		c.AutosaveDelay = DefaultAutosaveDelay
	}
	switch {
	case c.DurableTimeout < 0:
		errs.Set("durable_timeout", fmt.Errorf("must not be negative, got %s", c.DurableTimeout))
	case c.DurableTimeout == 0:
		c.DurableTimeout = DefaultDurableTimeout
	}
	switch {
	case c.BreakerThreshold < 0:
		errs.Set("breaker_threshold", fmt.Errorf("must not be negative, got %d", c.BreakerThreshold))
	case c.BreakerThreshold == 0:
		c.BreakerThreshold = DefaultBreakerThreshold
	}
	switch {
	case c.BreakerCooldown < 0:
		errs.Set("breaker_cooldown", fmt.Errorf("must not be negative, got %s", c.BreakerCooldown))
	case c.BreakerCooldown == 0:
		c.BreakerCooldown = DefaultBreakerCooldown
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := monitoring.ParseLogLevel(c.LogLevel); err != nil {
		errs.Set("log_level", err)
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if _, err := monitoring.ParseLogFormat(c.LogFormat); err != nil {
		errs.Set("log_format", err)
	}

	if err := errs.AsError(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// LoggerConfig derives the logger configuration. Call after Validate.
func (c Config) LoggerConfig(component string) monitoring.LoggerConfig {
	level, _ := monitoring.ParseLogLevel(c.LogLevel)
	format, _ := monitoring.ParseLogFormat(c.LogFormat)
	return monitoring.LoggerConfig{
		Level:     level,
		Format:    format,
		Component: component,
		Version:   Version,
	}
}
