package driven

import (
	"context"

	"github.com/ericfisherdev/hitcounter/internal/domain/model"
)

// ConnPool hands out database connections for the counter table. Callers must
// call Release on every acquired connection, including on error paths.
// Implementations may open a fresh connection per Acquire or reuse a pool.
type ConnPool interface {
	Acquire(ctx context.Context) (CounterConn, error)
}

// CounterConn is a single acquired connection to the counter table.
type CounterConn interface {
	// EnsureTable creates the counter table if it does not exist. It is
	// idempotent and normally only called by migrations or tests.
	EnsureTable(ctx context.Context) error

	// InsertHit appends one row and returns it as stored.
	InsertHit(ctx context.Context) (model.Hit, error)

	// CountHits returns the number of rows in the counter table.
	CountHits(ctx context.Context) (model.Count, error)

	// Release returns the connection to its pool or closes it.
	Release() error
}

// Migrator applies schema migrations once, outside of request handling.
type Migrator interface {
	Migrate(ctx context.Context) error
}
