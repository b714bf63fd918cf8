package database

import (
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const InMemory = ":memory:"

// NewSQLiteDatabase opens the database file at path, or a private in-memory database for InMemory
func NewSQLiteDatabase(path string) (*sqlx.DB, error) {
	dsn := InMemory
	if path != InMemory {
		dsn = filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if path == InMemory {
		// Every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	return db, nil
}
