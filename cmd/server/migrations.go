package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagequeue/internal/config"
	"github.com/phrazzld/pagequeue/internal/platform/sqlite"
)

// handleMigrations runs the named migration command against the configured
// database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string) error {
	storage := sqlite.NewStorage(cfg.Database.Path, sqlite.WithBusyTimeout(cfg.Database.BusyTimeout))
	defer func() {
		if err := storage.CloseConnection(); err != nil {
			slog.Debug("no connection to close after migrations", "error", err)
		}
	}()

	switch command {
	case "up":
		if err := storage.CreateTables(ctx); err != nil {
			return err
		}
	case "down":
		if err := storage.DropTables(ctx); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migration command %q: want up, down or status", command)
	}

	version, err := storage.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("Migrations complete",
		"command", command,
		"database", cfg.Database.Path,
		"schema_version", version)
	return nil
}
