// Package main implements the page queue server. It accepts capture messages
// from page fetchers over HTTP, admits pages that need processing and runs the
// worker pool that dispatches their tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/pagequeue/internal/config"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run database migrations (up, down or status) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx := context.Background()

	if *migrateCmd != "" {
		if err := handleMigrations(ctx, cfg, *migrateCmd); err != nil {
			slog.Error("Migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, l); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// run builds the application and serves until a shutdown signal arrives.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger) error {
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.Path,
		"blob_dir", cfg.Blob.Dir,
		"ingest_auth", cfg.Auth.IngestSecret != "")

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
