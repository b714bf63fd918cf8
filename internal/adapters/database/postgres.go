package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const DB_NAME = "cheevo"

const LOCAL_CONNECTION_STRING = "user=postgres password=postgres dbname=cheevo sslmode=disable"

const MAIN_SCHEMA = "cheevo"
const TESTING_SCHEMA = "cheevo_test"

// A session writes a handful of rows per login and unlock
const (
	postgresMaxOpenConns    = 4
	postgresConnMaxIdleTime = 5 * time.Minute
)

func GetSchemaName(isTesting bool) string {
	if isTesting {
		return TESTING_SCHEMA
	}
	return MAIN_SCHEMA
}

func NewPostgresDatabase(connectionString string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	if err := createDatabaseIfNotExists(db, DB_NAME); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	db.SetMaxOpenConns(postgresMaxOpenConns)
	db.SetConnMaxIdleTime(postgresConnMaxIdleTime)

	return db, nil
}

func createDatabaseIfNotExists(db *sqlx.DB, dbName string) error {
	var exists bool
	err := db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName)
	if err != nil {
		return fmt.Errorf("createDB: failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not accept bind parameters
	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("createDB: failed to create database %s: %w", dbName, err)
	}
	return nil
}
