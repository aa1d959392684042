package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	httphandler "github.com/ericfisherdev/hitcounter/internal/adapter/driving/http"
	lambdahandler "github.com/ericfisherdev/hitcounter/internal/adapter/driving/lambda"
	"github.com/ericfisherdev/hitcounter/internal/application"
	"github.com/ericfisherdev/hitcounter/internal/bootstrap"
	"github.com/ericfisherdev/hitcounter/internal/config"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"runtime", cfg.Runtime,
		"db_driver", cfg.DBDriver,
		"db_mode", cfg.DBMode,
		"secret_store", cfg.SecretStore,
		"has_secret_id", cfg.HasSecretID(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire backend, service and routes.
	handler, closeBackend, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeBackend(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if cfg.Runtime == config.RuntimeLambda {
		logger.Info("starting lambda runtime")
		lambda.StartWithOptions(lambdahandler.New(handler).Handle, lambda.WithContext(ctx))
		return nil
	}

	return serve(ctx, cfg, handler, logger)
}

// newApp builds the HTTP handler over the configured backend. Database
// trouble at startup is logged, never returned: GET / must stay reachable
// and GET /db reports the failure per request.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	backend, err := bootstrap.NewBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	migrateOnStart(ctx, cfg, backend.Migrator, logger)

	counterSvc := application.NewCounterService(backend.Pool, logger)
	apiHandler := httphandler.NewHandler(counterSvc, logger)
	return httphandler.NewServeMux(apiHandler, logger), backend.Close, nil
}

// migrateOnStart applies pending migrations when enabled and reports whether
// they ran successfully. Failures are logged; cmd/migrate is the place where
// a failed migration is fatal.
func migrateOnStart(ctx context.Context, cfg *config.Config, m driven.Migrator, logger *slog.Logger) bool {
	if !cfg.MigrateOnStart {
		logger.Info("migrations skipped", "reason", "HITCOUNTER_MIGRATE_ON_START=false")
		return false
	}
	if cfg.DBDriver == config.DBDriverPostgres && !cfg.HasSecretID() {
		logger.Warn("migrations skipped", "reason", "no secret identifier configured")
		return false
	}

	if err := m.Migrate(ctx); err != nil {
		logger.Error("migrations failed, serving anyway", "error", err)
		return false
	}
	logger.Info("migrations complete")
	return true
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for a shutdown signal or for the listener to fail.
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
