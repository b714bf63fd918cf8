package database

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var tables = []string{"users", "unlocks", "game_sessions"}

func TestSQLiteMigrator(t *testing.T) {
	t.Parallel()

	t.Run("migrate up twice", func(t *testing.T) {
		t.Parallel()

		db, err := NewSQLiteDatabase(InMemory)
		require.NoError(t, err)
		defer db.Close()

		migrator := NewDatabaseMigrator(db, SQLite, testLogger())
		require.NoError(t, migrator.Migrate(t.Context(), ""))
		require.NoError(t, migrator.Migrate(t.Context(), ""))

		for _, table := range tables {
			var count int
			err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
			require.NoError(t, err)
			require.Equal(t, 1, count, table)
		}
	})

	t.Run("migrate up and down", func(t *testing.T) {
		t.Parallel()

		db, err := NewSQLiteDatabase(InMemory)
		require.NoError(t, err)
		defer db.Close()

		migrator := NewDatabaseMigrator(db, SQLite, testLogger())
		require.NoError(t, migrator.Migrate(t.Context(), ""))

		instance, cleanup, err := migrator.instance(t.Context(), "")
		require.NoError(t, err)
		defer cleanup()

		require.NoError(t, instance.Down(), "error migrating down")

		for _, table := range tables {
			var count int
			err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
			require.NoError(t, err)
			require.Equal(t, 0, count, table)
		}
	})
}

func TestPostgresMigrator(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping migrator tests in short mode.")
	}
	t.Parallel()

	t.Run("migrate up and down", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		schemaName := "migrate_up_down"

		db, err := NewPostgresDatabase(LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		defer db.Close()

		db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schemaName)))

		migrator := NewDatabaseMigrator(db, Postgres, testLogger())
		require.NoError(t, migrator.Migrate(ctx, schemaName), "error migrating up")

		instance, cleanup, err := migrator.instance(ctx, schemaName)
		require.NoError(t, err)
		defer cleanup()

		require.NoError(t, instance.Down(), "error migrating down") // Should not even be ErrNoChange
	})
}
