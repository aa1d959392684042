// Package postgres is the PostgreSQL driven adapter. Credentials always come
// from a SecretStore; the package never reads the environment itself.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/ericfisherdev/hitcounter/internal/domain/model"
	"github.com/ericfisherdev/hitcounter/internal/domain/port/driven"
)

// DefaultSSLMode is used when the caller passes an empty sslmode.
const DefaultSSLMode = "require"

// HitsDDL creates the counter table in PostgreSQL. It matches the first migration.
const HitsDDL = `CREATE TABLE IF NOT EXISTS hits (
    id SERIAL PRIMARY KEY,
    ts TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// connectTimeoutSeconds bounds how long lib/pq waits for the TCP handshake.
const connectTimeoutSeconds = 10

// DSN builds a lib/pq keyword/value connection string from a secret bundle.
// Every value is single-quoted so passwords may contain spaces or quotes.
func DSN(b model.SecretBundle, sslmode string) string {
	if sslmode == "" {
		sslmode = DefaultSSLMode
	}

	pairs := []string{
		"host=" + quote(b.Host),
		"port=" + strconv.Itoa(b.Port),
		"user=" + quote(b.Username),
		"password=" + quote(b.Password),
		"dbname=" + quote(b.DBName),
		"sslmode=" + quote(sslmode),
		"connect_timeout=" + strconv.Itoa(connectTimeoutSeconds),
	}
	return strings.Join(pairs, " ")
}

func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Open opens a database handle for the bundle and pings it. The handle is
// closed again if the ping fails, so a failed Open never leaks a socket.
func Open(ctx context.Context, b model.SecretBundle, sslmode string) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(b, sslmode))
	if err != nil {
		return nil, fmt.Errorf("open postgres %s: %w", b, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", b, err)
	}

	return db, nil
}

// fetchBundle reads and parses the credentials stored under secretID.
func fetchBundle(ctx context.Context, store driven.SecretStore, secretID string) (model.SecretBundle, error) {
	raw, err := store.GetSecretString(ctx, secretID)
	if err != nil {
		return model.SecretBundle{}, fmt.Errorf("fetch secret: %w", err)
	}

	bundle, err := model.ParseSecretBundle(raw)
	if err != nil {
		return model.SecretBundle{}, fmt.Errorf("parse secret: %w", err)
	}
	return bundle, nil
}
