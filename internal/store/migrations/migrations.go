// Package migrations applies the embedded schema to SQLite and PostgreSQL.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// UpSQLite migrates db to the latest schema version.
// db stays open; closing it is up to the caller.
func UpSQLite(db *sql.DB) error {
	source, err := iofs.New(files, "sqlite")
	if err != nil {
		return fmt.Errorf("open sqlite migrations: %w", err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}

	// m is never closed: closing it closes db through the driver.
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create sqlite migrator: %w", err)
	}

	return up(m)
}

// UpPostgres migrates the database at databaseURL to the latest schema version.
func UpPostgres(databaseURL string) error {
	source, err := iofs.New(files, "postgres")
	if err != nil {
		return fmt.Errorf("open postgres migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, PgxURL(databaseURL))
	if err != nil {
		return fmt.Errorf("create postgres migrator: %w", err)
	}
	defer m.Close()

	return up(m)
}

// PgxURL rewrites a postgres:// DSN to the pgx5:// scheme golang-migrate expects.
func PgxURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}

	return databaseURL
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
