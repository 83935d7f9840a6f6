// Package cli provides the initialization shared by cmd/tracker and
// cmd/trackerctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tracker/internal/config"
	applog "tracker/internal/log"
	"tracker/internal/storage"
)

// SetupLogger initializes structured logging at level and installs it as
// the slog default.
func SetupLogger(level slog.Level, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     level,
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads .env and the environment, applies overrides, sets up
// logging to logOut at the configured level and validates the result.
func LoadConfig(logOut io.Writer, overrides ...func(*config.Config)) (*config.Config, *applog.Logger, error) {
	LoadEnvFile()
	cfg := config.Load()
	for _, o := range overrides {
		o(cfg)
	}
	logger := SetupLogger(cfg.SlogLevel(), logOut)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// LoadAndValidateConfig is LoadConfig that exits the process on failure.
func LoadAndValidateConfig() (*config.Config, *applog.Logger) {
	cfg, logger, err := LoadConfig(os.Stdout)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitSQLite opens the SQLite store at dbPath, running pending migrations.
func InitSQLite(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	logger.Debug("SQLite repository ready", "path", dbPath)
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	}()
	return ctx, stop
}
