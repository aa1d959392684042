package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/sqlconn"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ConnPool = (*SecretPool)(nil)
	_ driven.Migrator = (*SecretPool)(nil)
)

// SecretPool opens a brand-new connection on every Acquire using credentials
// fetched from the secret store at that moment. Nothing is cached between
// calls, so rotated credentials take effect on the next request. Release
// closes the connection.
type SecretPool struct {
	store    driven.SecretStore
	secretID string
	sslmode  string
}

// NewSecretPool creates a SecretPool. An empty secretID is accepted; every
// Acquire then fails with driven.ErrSecretIDNotSet.
func NewSecretPool(store driven.SecretStore, secretID, sslmode string) *SecretPool {
	return &SecretPool{store: store, secretID: secretID, sslmode: sslmode}
}

// Acquire fetches the secret, connects, and checks out the single connection.
func (p *SecretPool) Acquire(ctx context.Context) (driven.CounterConn, error) {
	if p.secretID == "" {
		return nil, driven.ErrSecretIDNotSet
	}

	bundle, err := fetchBundle(ctx, p.store, p.secretID)
	if err != nil {
		return nil, err
	}

	db, err := Open(ctx, bundle, p.sslmode)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("checkout postgres conn: %w", err), closeErr)
	}

	return sqlconn.New(conn, HitsDDL, func() error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("close postgres: %w", err)
		}
		return nil
	}), nil
}

// Migrate opens a one-off connection, applies the embedded migrations and
// closes it again.
func (p *SecretPool) Migrate(ctx context.Context) (err error) {
	if p.secretID == "" {
		return driven.ErrSecretIDNotSet
	}

	bundle, err := fetchBundle(ctx, p.store, p.secretID)
	if err != nil {
		return err
	}

	db, err := Open(ctx, bundle, p.sslmode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close postgres: %w", closeErr)
		}
	}()

	return RunMigrations(ctx, db)
}
