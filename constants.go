package vaultx

import "time"

// Environment variable names
const (
	// EnvEnvironment selects the deployment environment. "production" makes field
	// classification lenient; every other value keeps it strict.
	EnvEnvironment = "VAULTX_ENV"

	// EnvDataDir is the directory holding the SQLite database and the mirror file.
	EnvDataDir = "VAULTX_DATA_DIR"

	EnvSQLiteFilename = "VAULTX_SQLITE_FILENAME"
	EnvMirrorFilename = "VAULTX_MIRROR_FILENAME"

	// EnvRedisURL enables the Redis durable backend, e.g. "redis://localhost:6379/0".
	EnvRedisURL = "VAULTX_REDIS_URL"

	// EnvS3Bucket enables the S3 durable backend. Credentials come from the default AWS chain.
	EnvS3Bucket = "VAULTX_S3_BUCKET"
	EnvS3Prefix = "VAULTX_S3_PREFIX"

	EnvAutosaveDelay  = "VAULTX_AUTOSAVE_DELAY"
	EnvDurableTimeout = "VAULTX_DURABLE_TIMEOUT"
	EnvDemoMode       = "VAULTX_DEMO_MODE"

	// EnvPassphrase wraps the device key with an Argon2id-derived key before it is stored.
	EnvPassphrase = "VAULTX_PASSPHRASE"

	EnvLogLevel  = "VAULTX_LOG_LEVEL"
	EnvLogFormat = "VAULTX_LOG_FORMAT"
)

// Default values
const (
	DefaultEnvironment      = "development"
	DefaultDataDir          = ".vaultx"
	DefaultSQLiteFilename   = "vault.db"
	DefaultMirrorFilename   = "mirror.yaml"
	DefaultAutosaveDelay    = 500 * time.Millisecond
	DefaultDurableTimeout   = 5 * time.Second
	DefaultBreakerThreshold = 3
	DefaultBreakerCooldown  = 30 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
)

// Backend names used in logs and metrics.
const (
	BackendMirror = "mirror"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendMemory = "memory"
)
