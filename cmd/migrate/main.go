// Command migrate applies the counter table migrations and exits. It is meant
// to run once per deployment, before traffic reaches the new version.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/hitcounter/internal/bootstrap"
	"github.com/ericfisherdev/hitcounter/internal/config"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

type args struct {
	Driver      string `arg:"-d,--driver" help:"postgres | sqlite (default from HITCOUNTER_DB_DRIVER)"`
	DBPath      string `arg:"--db-path" help:"sqlite database file"`
	SecretID    string `arg:"-s,--secret-id" help:"secret name or ARN holding the database credentials"`
	SecretStore string `arg:"--secret-store" help:"secretsmanager | env"`
	SSLMode     string `arg:"--sslmode" help:"postgres sslmode"`
}

func (args) Description() string {
	return "\napply pending hitcounter schema migrations\n"
}

func main() {
	var a args
	arg.MustParse(&a)

	if err := run(a); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(a args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyArgs(cfg, a)
	switch cfg.DBDriver {
	case config.DBDriverPostgres, config.DBDriverSQLite:
	default:
		return fmt.Errorf("unknown driver %q", cfg.DBDriver)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if cfg.DBDriver == config.DBDriverPostgres && !cfg.HasSecretID() {
		return driven.ErrSecretIDNotSet
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := backend.Migrator.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("migrations complete", "driver", cfg.DBDriver)
	return nil
}

// applyArgs overrides environment configuration with any flags that were set.
func applyArgs(cfg *config.Config, a args) {
	if a.Driver != "" {
		cfg.DBDriver = config.DBDriver(a.Driver)
	}
	if a.DBPath != "" {
		cfg.DBPath = a.DBPath
	}
	if a.SecretID != "" {
		cfg.SecretID = a.SecretID
	}
	if a.SecretStore != "" {
		cfg.SecretStore = config.SecretStoreKind(a.SecretStore)
	}
	if a.SSLMode != "" {
		cfg.DBSSLMode = a.SSLMode
	}
	// The CLI always migrates through a single short-lived connection.
	cfg.DBMode = config.DBModePerRequest
}
