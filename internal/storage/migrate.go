package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// schemaTable records which saldo migrations have been applied.
const schemaTable = "saldo_schema_migrations"

//go:embed migrations/*.sql
var schemaFS embed.FS

// RunMigrations brings the incomes/expenses schema in the SQLite file at
// dbPath up to date and returns the resulting schema version.
func RunMigrations(dbPath string) (uint, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	// m.Close below closes db as well; this covers the early returns.
	defer db.Close()

	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load embedded saldo schema: %w", err)
	}
	target, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		src.Close()
		return 0, fmt.Errorf("prepare %s: %w", schemaTable, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("init saldo schema migration: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate saldo schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read saldo schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("saldo schema is dirty at version %d", version)
	}
	return version, nil
}
