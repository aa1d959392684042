package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/sqlconn"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// HitsDDL creates the counter table in SQLite. It matches the first migration.
const HitsDDL = `CREATE TABLE IF NOT EXISTS hits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Compile-time interface satisfaction checks.
var (
	_ driven.ConnPool = (*Pool)(nil)
	_ driven.Migrator = (*Pool)(nil)
)

// Pool is the SQLite implementation of the ConnPool port. Every Acquire hands
// out the DB's only connection.
type Pool struct {
	db *DB
}

// NewPool creates a Pool over an open DB. The DB is owned by the caller.
func NewPool(db *DB) *Pool {
	return &Pool{db: db}
}

// Acquire checks out the connection. Concurrent callers wait for it.
func (p *Pool) Acquire(ctx context.Context) (driven.CounterConn, error) {
	conn, err := p.db.handle.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkout sqlite conn: %w", err)
	}
	return sqlconn.New(conn, HitsDDL, nil), nil
}

// Migrate applies the embedded migrations.
func (p *Pool) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, p.db.handle)
}
