// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// SecretStoreKind selects the SecretStore adapter.
type SecretStoreKind string

const (
	SecretStoreSecretsManager SecretStoreKind = "secretsmanager"
	SecretStoreEnv            SecretStoreKind = "env" // Secret ID names an env var holding the JSON.
)

// DBDriver selects the database backend.
type DBDriver string

const (
	DBDriverPostgres DBDriver = "postgres"
	DBDriverSQLite   DBDriver = "sqlite"
)

// DBMode selects how Postgres connections are acquired.
type DBMode string

const (
	DBModePerRequest DBMode = "per-request" // Fetch secret and connect on every request.
	DBModePooled     DBMode = "pooled"      // Fetch secret once and keep a pool.
)

// Runtime selects how the process serves HTTP.
type Runtime string

const (
	RuntimeLambda Runtime = "lambda"
	RuntimeServer Runtime = "server"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SecretID       string
	SecretStore    SecretStoreKind
	DBDriver       DBDriver
	DBMode         DBMode
	DBSSLMode      string
	DBPath         string
	MigrateOnStart bool
	ListenAddr     string
	Runtime        Runtime
	LogLevel       slog.Level
	LogFormat      string
}

// HasSecretID reports whether a secret identifier was configured. Without one
// the process still starts and serves /, but /db always fails.
func (c *Config) HasSecretID() bool {
	return c.SecretID != ""
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Load reads configuration from environment variables and returns a validated Config.
// HITCOUNTER_SECRET_ID is optional; if absent, /db answers 500 until it is set.
// Optional variables with defaults: HITCOUNTER_SECRET_STORE (secretsmanager),
// HITCOUNTER_DB_DRIVER (postgres), HITCOUNTER_DB_MODE (per-request),
// HITCOUNTER_DB_SSLMODE (require), HITCOUNTER_DB_PATH (hitcounter.db),
// HITCOUNTER_MIGRATE_ON_START (true), HITCOUNTER_LISTEN_ADDR (127.0.0.1:8080),
// HITCOUNTER_RUNTIME (lambda when AWS_LAMBDA_RUNTIME_API is set, else server),
// HITCOUNTER_LOG_LEVEL (info), HITCOUNTER_LOG_FORMAT (json).
func Load() (*Config, error) {
	secretStore, err := oneOf("HITCOUNTER_SECRET_STORE", SecretStoreSecretsManager, SecretStoreEnv)
	if err != nil {
		return nil, err
	}

	driver, err := oneOf("HITCOUNTER_DB_DRIVER", DBDriverPostgres, DBDriverSQLite)
	if err != nil {
		return nil, err
	}

	mode, err := oneOf("HITCOUNTER_DB_MODE", DBModePerRequest, DBModePooled)
	if err != nil {
		return nil, err
	}

	sslmode := "require"
	if v, ok := os.LookupEnv("HITCOUNTER_DB_SSLMODE"); ok && v != "" {
		sslmode = v
	}

	dbPath := "hitcounter.db"
	if v, ok := os.LookupEnv("HITCOUNTER_DB_PATH"); ok {
		dbPath = v
	}

	migrateOnStart := true
	if v, ok := os.LookupEnv("HITCOUNTER_MIGRATE_ON_START"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("HITCOUNTER_MIGRATE_ON_START has invalid boolean %q: %w", v, err)
		}
		migrateOnStart = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("HITCOUNTER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	defaultRuntime := RuntimeServer
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		defaultRuntime = RuntimeLambda
	}
	runtime := defaultRuntime
	if v, ok := os.LookupEnv("HITCOUNTER_RUNTIME"); ok && v != "" {
		switch Runtime(v) {
		case RuntimeLambda, RuntimeServer:
			runtime = Runtime(v)
		default:
			return nil, fmt.Errorf("HITCOUNTER_RUNTIME has invalid value %q (want lambda or server)", v)
		}
	}

	var level slog.Level
	if v, ok := os.LookupEnv("HITCOUNTER_LOG_LEVEL"); ok && v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("HITCOUNTER_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	logFormat := "json"
	if v, ok := os.LookupEnv("HITCOUNTER_LOG_FORMAT"); ok && v != "" {
		v = strings.ToLower(v)
		if v != "json" && v != "text" {
			return nil, fmt.Errorf("HITCOUNTER_LOG_FORMAT has invalid value %q (want json or text)", v)
		}
		logFormat = v
	}

	return &Config{
		SecretID:       strings.TrimSpace(os.Getenv("HITCOUNTER_SECRET_ID")),
		SecretStore:    secretStore,
		DBDriver:       driver,
		DBMode:         mode,
		DBSSLMode:      sslmode,
		DBPath:         dbPath,
		MigrateOnStart: migrateOnStart,
		ListenAddr:     listenAddr,
		Runtime:        runtime,
		LogLevel:       level,
		LogFormat:      logFormat,
	}, nil
}

// oneOf reads key and checks it against the allowed values. The first allowed
// value is the default when key is unset or empty.
func oneOf[T ~string](key string, allowed ...T) (T, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return allowed[0], nil
	}
	for _, a := range allowed {
		if T(v) == a {
			return a, nil
		}
	}

	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", fmt.Errorf("%s has invalid value %q (want one of %s)", key, v, strings.Join(names, ", "))
}
