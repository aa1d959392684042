// Package sqlconn implements the CounterConn port over a single database/sql
// connection. The SQL it issues is valid for both PostgreSQL and SQLite; only
// the table DDL differs and is supplied by the caller.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ericfisherdev/hitcounter/internal/domain/model"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CounterConn = (*Conn)(nil)

// Conn wraps one *sql.Conn checked out for a single request.
type Conn struct {
	conn    *sql.Conn
	ddl     string
	release func() error

	once       sync.Once
	releaseErr error
}

// New wraps conn. ddl is the idempotent CREATE TABLE IF NOT EXISTS statement
// for the backend's dialect. release runs after conn is returned to its pool
// and may be nil; it is where per-request handles close their *sql.DB.
func New(conn *sql.Conn, ddl string, release func() error) *Conn {
	return &Conn{conn: conn, ddl: ddl, release: release}
}

// EnsureTable runs the dialect DDL. Safe to call repeatedly.
func (c *Conn) EnsureTable(ctx context.Context) error {
	if _, err := c.conn.ExecContext(ctx, c.ddl); err != nil {
		return fmt.Errorf("create hits table: %w", err)
	}
	return nil
}

// InsertHit appends one row with the database's default timestamp.
func (c *Conn) InsertHit(ctx context.Context) (model.Hit, error) {
	const query = `INSERT INTO hits DEFAULT VALUES RETURNING id, ts`

	var hit model.Hit
	if err := c.conn.QueryRowContext(ctx, query).Scan(&hit.ID, (*timestamp)(&hit.TS)); err != nil {
		return model.Hit{}, fmt.Errorf("insert hit: %w", err)
	}
	return hit, nil
}

// CountHits returns the current number of rows.
func (c *Conn) CountHits(ctx context.Context) (model.Count, error) {
	const query = `SELECT COUNT(*) FROM hits`

	var count int64
	if err := c.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count hits: %w", err)
	}
	return model.Count(count), nil
}

// Release returns the connection and runs the release hook. Subsequent calls
// return the result of the first.
func (c *Conn) Release() error {
	c.once.Do(func() {
		var errs []error
		if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, fmt.Errorf("close conn: %w", err))
		}
		if c.release != nil {
			if err := c.release(); err != nil {
				errs = append(errs, err)
			}
		}
		c.releaseErr = errors.Join(errs...)
	})
	return c.releaseErr
}
