package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type DatabaseDriver string

const (
	SQLite   DatabaseDriver = "sqlite"
	Postgres DatabaseDriver = "postgres"
)

const defaultSQLitePath = "cheevo.db"

type Config struct {
	serverURL      string
	sentryDSN      string
	databaseDriver DatabaseDriver
	databaseDSN    string
	definitionsDir string
	hardcore       bool
	env            environment
}

// ServerURL is the base url of the achievement server. Empty means a local mock server.
func (c *Config) ServerURL() string {
	return c.serverURL
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) DatabaseDriver() DatabaseDriver {
	return c.databaseDriver
}

func (c *Config) DatabaseDSN() string {
	return c.databaseDSN
}

// DefinitionsDir holds local game definition files. Empty means definitions are fetched from the server.
func (c *Config) DefinitionsDir() string {
	return c.definitionsDir
}

func (c *Config) Hardcore() bool {
	return c.hardcore
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, serverURL: %s, databaseDriver: %s, definitionsDir: %s, hardcore: %t, ...}",
		string(c.env), c.serverURL, string(c.databaseDriver), c.definitionsDir, c.hardcore,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("CHEEVO_ENVIRONMENT")
	if !ok {
		return missingKey("CHEEVO_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: CHEEVO_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	serverURL := os.Getenv("CHEEVO_SERVER_URL")
	sentryDSN := os.Getenv("CHEEVO_SENTRY_DSN")
	databaseDSN := os.Getenv("CHEEVO_DATABASE_DSN")
	definitionsDir := os.Getenv("CHEEVO_DEFINITIONS_DIR")

	var databaseDriver DatabaseDriver
	switch rawDriver := os.Getenv("CHEEVO_DATABASE_DRIVER"); rawDriver {
	case "", "sqlite":
		databaseDriver = SQLite
		if databaseDSN == "" {
			databaseDSN = defaultSQLitePath
		}
	case "postgres":
		databaseDriver = Postgres
		if databaseDSN == "" {
			return missingKey("CHEEVO_DATABASE_DSN")
		}
	default:
		return Config{}, fmt.Errorf("%w: CHEEVO_DATABASE_DRIVER (%s)", ErrInvalidValue, rawDriver)
	}

	hardcore := false
	if rawHardcore := os.Getenv("CHEEVO_HARDCORE"); rawHardcore != "" {
		parsed, err := strconv.ParseBool(rawHardcore)
		if err != nil {
			return Config{}, fmt.Errorf("%w: CHEEVO_HARDCORE (%s)", ErrInvalidValue, rawHardcore)
		}
		hardcore = parsed
	}

	if env == production || env == staging {
		if serverURL == "" {
			return missingKey("CHEEVO_SERVER_URL")
		}
		if sentryDSN == "" {
			return missingKey("CHEEVO_SENTRY_DSN")
		}
	}

	return Config{
		serverURL:      serverURL,
		sentryDSN:      sentryDSN,
		databaseDriver: databaseDriver,
		databaseDSN:    databaseDSN,
		definitionsDir: definitionsDir,
		hardcore:       hardcore,
		env:            env,
	}, nil
}

// NewDevelopmentConfig is used by tests and local tooling that never talk to real services
func NewDevelopmentConfig() Config {
	return Config{
		databaseDriver: SQLite,
		databaseDSN:    ":memory:",
		env:            development,
	}
}
