package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/sqlconn"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ConnPool = (*Pool)(nil)
	_ driven.Migrator = (*Pool)(nil)
)

// Pool keeps one database/sql pool open for the life of the process. The
// secret is read once, when the pool is created.
type Pool struct {
	db *sql.DB
}

// NewPool fetches the secret, opens the pool and verifies it with a ping.
func NewPool(ctx context.Context, store driven.SecretStore, secretID, sslmode string) (*Pool, error) {
	if secretID == "" {
		return nil, driven.ErrSecretIDNotSet
	}

	bundle, err := fetchBundle(ctx, store, secretID)
	if err != nil {
		return nil, err
	}

	db, err := Open(ctx, bundle, sslmode)
	if err != nil {
		return nil, err
	}

	return &Pool{db: db}, nil
}

// Acquire checks out a connection from the pool. Release hands it back.
func (p *Pool) Acquire(ctx context.Context) (driven.CounterConn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkout postgres conn: %w", err)
	}
	return sqlconn.New(conn, HitsDDL, nil), nil
}

// Migrate applies the embedded migrations through the pool.
func (p *Pool) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, p.db)
}

// Close closes every pooled connection.
func (p *Pool) Close() error {
	return p.db.Close()
}
