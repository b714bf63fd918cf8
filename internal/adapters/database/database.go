package database

import (
	"fmt"

	"github.com/Amund211/cheevo/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// BindType is the placeholder style of the dialect, for sqlx.Rebind
func (d Dialect) BindType() int {
	if d == Postgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

// Table qualifies name with schema where the dialect has schemas
func (d Dialect) Table(schema, name string) string {
	if d == Postgres && schema != "" {
		return fmt.Sprintf("%s.%s", pq.QuoteIdentifier(schema), name)
	}
	return name
}

// NewDatabase opens the database selected by the config
func NewDatabase(conf config.Config) (*sqlx.DB, Dialect, error) {
	switch conf.DatabaseDriver() {
	case config.Postgres:
		db, err := NewPostgresDatabase(conf.DatabaseDSN())
		if err != nil {
			return nil, Postgres, fmt.Errorf("failed to create postgres database: %w", err)
		}
		return db, Postgres, nil
	case config.SQLite:
		db, err := NewSQLiteDatabase(conf.DatabaseDSN())
		if err != nil {
			return nil, SQLite, fmt.Errorf("failed to create sqlite database: %w", err)
		}
		return db, SQLite, nil
	}
	return nil, 0, fmt.Errorf("unknown database driver %q", conf.DatabaseDriver())
}
