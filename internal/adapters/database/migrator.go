package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embeddedMigrations embed.FS

type migrator struct {
	db      *sqlx.DB
	dialect Dialect

	logger *slog.Logger
}

func NewDatabaseMigrator(db *sqlx.DB, dialect Dialect, logger *slog.Logger) *migrator {
	return &migrator{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

// Migrate brings the database up to date. schemaName is ignored for sqlite.
func (m *migrator) Migrate(ctx context.Context, schemaName string) error {
	instance, cleanup, err := m.instance(ctx, schemaName)
	if err != nil {
		return err
	}
	defer cleanup()

	m.logger.InfoContext(ctx, "Starting migrations...", "dialect", m.dialect.String())
	if err := instance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.InfoContext(ctx, "No migrations to run.")
		} else {
			return fmt.Errorf("migrate: failed to migrate: %w", err)
		}
	}
	m.logger.InfoContext(ctx, "Migrations completed successfully.")

	return nil
}

func (m *migrator) instance(ctx context.Context, schemaName string) (*migrate.Migrate, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*migrate.Migrate, func(), error) {
		cleanup()
		return nil, nil, err
	}

	migrationSource, err := iofs.New(embeddedMigrations, "migrations/"+m.dialect.String())
	if err != nil {
		return fail(fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err))
	}
	cleanups = append(cleanups, func() { migrationSource.Close() })

	var dbDriver database.Driver
	switch m.dialect {
	case Postgres:
		conn, err := m.db.Conn(ctx)
		if err != nil {
			return fail(fmt.Errorf("migrate: failed to connect to db: %w", err))
		}
		cleanups = append(cleanups, func() { conn.Close() })

		_, err = conn.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(schemaName)))
		if err != nil {
			return fail(fmt.Errorf("migrate: failed to create schema: %w", err))
		}

		_, err = conn.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schemaName)))
		if err != nil {
			return fail(fmt.Errorf("migrate: failed to set search path: %w", err))
		}

		dbDriver, err = postgres.WithConnection(ctx, conn, &postgres.Config{
			DatabaseName: DB_NAME,
			SchemaName:   schemaName,
		})
		if err != nil {
			return fail(fmt.Errorf("migrate: failed to create postgres driver: %w", err))
		}
	case SQLite:
		dbDriver, err = sqlite.WithInstance(m.db.DB, &sqlite.Config{})
		if err != nil {
			return fail(fmt.Errorf("migrate: failed to create sqlite driver: %w", err))
		}
	default:
		return fail(fmt.Errorf("migrate: unknown dialect %s", m.dialect))
	}

	instance, err := migrate.NewWithInstance("iofs", migrationSource, m.dialect.String(), dbDriver)
	if err != nil {
		return fail(fmt.Errorf("migrate: failed to create migration instance: %w", err))
	}
	// Closing the instance would close the shared sqlite handle, only the source is released
	return instance, cleanup, nil
}
