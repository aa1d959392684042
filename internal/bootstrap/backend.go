// Package bootstrap builds the driven adapters selected by configuration.
// It is shared by the server binary and the migration CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/envsecret"
	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/secretsmanager"
	sqliteadapter "github.com/ericfisherdev/hitcounter/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/hitcounter/internal/config"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// Backend bundles the pool with its migrator and the cleanup to run on exit.
type Backend struct {
	Pool     driven.ConnPool
	Migrator driven.Migrator
	close    func() error
}

// Close releases whatever the backend holds open. Per-request pools hold nothing.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewBackend opens the pool for cfg.DBDriver and cfg.DBMode. Postgres pools
// read credentials through the configured SecretStore. An unreachable
// database or a missing secret identifier never fails here: the backend
// falls back to per-request connections, which report the cause on Acquire.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if cfg.DBDriver == config.DBDriverSQLite {
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "path", cfg.DBPath)
		pool := sqliteadapter.NewPool(db)
		return &Backend{Pool: pool, Migrator: pool, close: db.Close}, nil
	}

	store, err := NewSecretStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	perRequest := postgres.NewSecretPool(store, cfg.SecretID, cfg.DBSSLMode)
	if cfg.DBMode == config.DBModePerRequest {
		return &Backend{Pool: perRequest, Migrator: perRequest}, nil
	}

	if !cfg.HasSecretID() {
		logger.Warn("pooled mode without secret identifier, /db will fail until HITCOUNTER_SECRET_ID is set")
		return &Backend{Pool: perRequest, Migrator: perRequest}, nil
	}

	pool, err := postgres.NewPool(ctx, store, cfg.SecretID, cfg.DBSSLMode)
	if err != nil {
		logger.Error("failed to open database pool, falling back to per-request connections", "error", err)
		return &Backend{Pool: perRequest, Migrator: perRequest}, nil
	}
	logger.Info("database pool opened")
	return &Backend{Pool: pool, Migrator: pool, close: pool.Close}, nil
}

// NewSecretStore returns the SecretStore adapter named by cfg.SecretStore.
func NewSecretStore(ctx context.Context, cfg *config.Config) (driven.SecretStore, error) {
	switch cfg.SecretStore {
	case config.SecretStoreEnv:
		return envsecret.New(), nil
	case config.SecretStoreSecretsManager:
		store, err := secretsmanager.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("create secrets manager store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown secret store %q", cfg.SecretStore)
	}
}
