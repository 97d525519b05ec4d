package vaultx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hengadev/errsx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfigFromEnvironment loads configuration from VAULTX_* environment variables and
// returns a validated Config.
//
// The given dotenv files are loaded first (".env" when none is given). Missing files are
// ignored and variables already set in the process environment win over file values.
//
// Example usage:
//
//	// export VAULTX_ENV=production
//	// export VAULTX_REDIS_URL=redis://localhost:6379/0
//	cfg, err := vaultx.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session, err := vaultx.New(ctx, cfg)
func LoadConfigFromEnvironment(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: load %s: %w", ErrInvalidConfiguration, f, err)
		}
	}

	var errs errsx.Map
	cfg := Config{
		Environment:    os.Getenv(EnvEnvironment),
		DataDir:        os.Getenv(EnvDataDir),
		SQLiteFilename: os.Getenv(EnvSQLiteFilename),
		MirrorFilename: os.Getenv(EnvMirrorFilename),
		RedisURL:       os.Getenv(EnvRedisURL),
		S3Bucket:       os.Getenv(EnvS3Bucket),
		S3Prefix:       os.Getenv(EnvS3Prefix),
		Passphrase:     os.Getenv(EnvPassphrase),
		LogLevel:       os.Getenv(EnvLogLevel),
		LogFormat:      os.Getenv(EnvLogFormat),
		AutosaveDelay:  durationFromEnv(EnvAutosaveDelay, &errs),
		DurableTimeout: durationFromEnv(EnvDurableTimeout, &errs),
		DemoMode:       boolFromEnv(EnvDemoMode, &errs),
	}
	if err := errs.AsError(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file and validates it. Durations are
// written as Go duration strings ("500ms", "5s"). The passphrase is only ever taken
// from VAULTX_PASSPHRASE.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfiguration, path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfiguration, path, err)
	}
	cfg.Passphrase = os.Getenv(EnvPassphrase)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func durationFromEnv(key string, errs *errsx.Map) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		errs.Set(key, err)
		return 0
	}
	return d
}

func boolFromEnv(key string, errs *errsx.Map) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		errs.Set(key, err)
		return false
	}
	return b
}
