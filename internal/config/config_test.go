package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"HITCOUNTER_SECRET_ID",
	"HITCOUNTER_SECRET_STORE",
	"HITCOUNTER_DB_DRIVER",
	"HITCOUNTER_DB_MODE",
	"HITCOUNTER_DB_SSLMODE",
	"HITCOUNTER_DB_PATH",
	"HITCOUNTER_MIGRATE_ON_START",
	"HITCOUNTER_LISTEN_ADDR",
	"HITCOUNTER_RUNTIME",
	"HITCOUNTER_LOG_LEVEL",
	"HITCOUNTER_LOG_FORMAT",
	"AWS_LAMBDA_RUNTIME_API",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (e.g. a Lambda test harness).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("HITCOUNTER_SECRET_ID", "arn:aws:secretsmanager:eu-west-1:123456789012:secret:db-AbCdEf")
	t.Setenv("HITCOUNTER_SECRET_STORE", "env")
	t.Setenv("HITCOUNTER_DB_DRIVER", "sqlite")
	t.Setenv("HITCOUNTER_DB_MODE", "pooled")
	t.Setenv("HITCOUNTER_DB_SSLMODE", "disable")
	t.Setenv("HITCOUNTER_DB_PATH", "/tmp/hits.db")
	t.Setenv("HITCOUNTER_MIGRATE_ON_START", "false")
	t.Setenv("HITCOUNTER_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("HITCOUNTER_RUNTIME", "server")
	t.Setenv("HITCOUNTER_LOG_LEVEL", "debug")
	t.Setenv("HITCOUNTER_LOG_FORMAT", "TEXT")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "arn:aws:secretsmanager:eu-west-1:123456789012:secret:db-AbCdEf", cfg.SecretID)
	assert.True(t, cfg.HasSecretID())
	assert.Equal(t, SecretStoreEnv, cfg.SecretStore)
	assert.Equal(t, DBDriverSQLite, cfg.DBDriver)
	assert.Equal(t, DBModePooled, cfg.DBMode)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "/tmp/hits.db", cfg.DBPath)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, RuntimeServer, cfg.Runtime)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, SecretStoreSecretsManager, cfg.SecretStore)
	assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
	assert.Equal(t, DBModePerRequest, cfg.DBMode)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, "hitcounter.db", cfg.DBPath)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, RuntimeServer, cfg.Runtime)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

// TestLoad_MissingSecretID verifies that a missing secret identifier does not
// cause an error; /db reports it at request time instead.
func TestLoad_MissingSecretID(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("HITCOUNTER_SECRET_ID", "   ")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.SecretID)
	assert.False(t, cfg.HasSecretID())
}

func TestLoad_LambdaRuntimeDetected(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, RuntimeLambda, cfg.Runtime)
}

func TestLoad_RuntimeOverridesDetection(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")
	t.Setenv("HITCOUNTER_RUNTIME", "server")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, RuntimeServer, cfg.Runtime)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "HITCOUNTER_SECRET_STORE", value: "vault"},
		{key: "HITCOUNTER_DB_DRIVER", value: "mysql"},
		{key: "HITCOUNTER_DB_MODE", value: "sometimes"},
		{key: "HITCOUNTER_MIGRATE_ON_START", value: "maybe"},
		{key: "HITCOUNTER_RUNTIME", value: "k8s"},
		{key: "HITCOUNTER_LOG_LEVEL", value: "loud"},
		{key: "HITCOUNTER_LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	jsonCfg := &Config{LogFormat: "json", LogLevel: slog.LevelInfo}
	jsonCfg.NewLogger(&buf).Debug("hidden")
	assert.Empty(t, buf.String())

	jsonCfg.NewLogger(&buf).Info("shown", "count", 1)
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	textCfg := &Config{LogFormat: "text", LogLevel: slog.LevelDebug}
	textCfg.NewLogger(&buf).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
