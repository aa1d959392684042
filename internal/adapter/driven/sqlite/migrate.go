package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded SQLite migrations on db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	return schema.Up(ctx, migrationsFS, "migrations", "sqlite", dbDriver)
}
