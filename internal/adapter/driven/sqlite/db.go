package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// filePragmas apply to on-disk databases. journal_mode is meaningless for
// in-memory ones, so memoryPragmas leaves it out.
var (
	filePragmas   = []string{"journal_mode(WAL)", "busy_timeout(5000)", "synchronous(NORMAL)"}
	memoryPragmas = []string{"busy_timeout(5000)"}
)

// DB is a SQLite database behind exactly one connection. Inserts and counts
// run on that connection, so a request always counts its own row and there
// is never a second writer to contend with.
type DB struct {
	handle *sql.DB
	path   string
}

// NewDB opens the SQLite file at path in WAL mode.
func NewDB(path string) (*DB, error) {
	return open(dsn("file:"+path, filePragmas), path)
}

// newMemoryDB opens a named in-memory database. Each name is a separate
// database for as long as the connection lives.
func newMemoryDB(name string) (*DB, error) {
	return open(dsn("file:"+name+"?mode=memory", memoryPragmas), ":memory:")
}

func dsn(base string, pragmas []string) string {
	var b strings.Builder
	b.WriteString(base)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func open(dsn, path string) (*DB, error) {
	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)
	handle.SetConnMaxLifetime(0)

	if err := handle.PingContext(context.Background()); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &DB{handle: handle, path: path}, nil
}

// Path returns the database file the DB was opened on.
func (db *DB) Path() string { return db.path }

// Close closes the connection.
func (db *DB) Close() error {
	if err := db.handle.Close(); err != nil {
		return fmt.Errorf("close sqlite %s: %w", db.path, err)
	}
	return nil
}
