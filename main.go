package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/database"
	"github.com/Amund211/cheevo/internal/adapters/raserver"
	"github.com/Amund211/cheevo/internal/adapters/sessionrepository"
	"github.com/Amund211/cheevo/internal/app"
	"github.com/Amund211/cheevo/internal/cli"
	"github.com/Amund211/cheevo/internal/config"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/reporting"
	"github.com/Amund211/cheevo/internal/telemetry"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "cheevo"

func main() {
	os.Exit(run())
}

func run() int {
	instanceID := uuid.New().String()

	logger := logging.NewLogger(os.Stderr, slog.LevelInfo).With("instanceID", instanceID)

	fail := func(msg string, args ...any) int {
		logger.Error(msg, args...)
		return cli.ExitCommandError
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		return fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	ctx := context.Background()

	if telemetry.Enabled() {
		shutdown, err := telemetry.SetupOTelSDK(ctx, serviceName)
		if err != nil {
			return fail("Failed to initialize telemetry", "error", err.Error())
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down telemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized telemetry")
	}

	bindSentry, flush, err := reporting.NewSentryOrMock(config)
	if err != nil {
		return fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry")

	logger.Info("Initializing database connection", "driver", string(config.DatabaseDriver()))
	db, dialect, err := database.NewDatabase(config)
	if err != nil {
		return fail("Failed to initialize database", "error", err.Error())
	}
	defer db.Close()

	schemaName := database.GetSchemaName(!config.IsProduction())
	err = database.NewDatabaseMigrator(db, dialect, logger.With("component", "migrator")).Migrate(ctx, schemaName)
	if err != nil {
		return fail("Failed to migrate database", "error", err.Error())
	}
	logger.Info("Initialized database", "dialect", dialect.String())

	repo := sessionrepository.NewSQL(db, dialect, schemaName, time.Now)

	server, err := raserver.NewServerOrMock(config, raserver.NewHTTPClient(), time.Now, time.After)
	if err != nil {
		return fail("Failed to initialize server", "error", err.Error())
	}

	settings := app.DefaultSettings()
	settings.Hardcore = config.Hardcore()

	rt := &cli.Runtime{
		Fs:             afero.NewOsFs(),
		Server:         server,
		Repository:     repo,
		DefinitionsDir: config.DefinitionsDir(),
		Settings:       settings,
		NowFunc:        time.Now,
	}

	ctx = logging.AddToContext(ctx, logger)
	ctx = bindSentry(ctx, "cli")

	err = cli.NewRootCommand(rt).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if cli.GetExitCode(err) == cli.ExitCommandError {
			reporting.Report(ctx, err)
		}
	}
	return cli.GetExitCode(err)
}
