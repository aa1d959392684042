package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/ericfisherdev/hitcounter/internal/adapter/driven/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded PostgreSQL migrations on db through a
// dedicated connection that is returned to the pool afterwards. The migration
// lock is a Postgres advisory lock, so concurrent cold starts serialize
// instead of racing.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("checkout migration conn: %w", err)
	}
	defer conn.Close()

	dbDriver, err := migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	return schema.Up(ctx, migrationsFS, "migrations", "postgres", dbDriver)
}
