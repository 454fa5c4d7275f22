package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagequeue/internal/config"
	"github.com/phrazzld/pagequeue/internal/platform/blob"
	"github.com/phrazzld/pagequeue/internal/platform/sqlite"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/phrazzld/pagequeue/internal/task"
	"github.com/phrazzld/pagequeue/internal/taskrouter"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Stores
	pageStore store.PageStore
	taskStore store.TaskStore
	blobStore store.BlobStore

	// Task handling
	taskRunner *task.TaskRunner
	router     *taskrouter.Router
}

// newApplication applies the schema, builds the stores and starts the task
// runner. The returned application must be cleaned up by the caller.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	opts := []sqlite.Option{sqlite.WithBusyTimeout(cfg.Database.BusyTimeout)}
	if err := ensureSchema(ctx, cfg.Database.Path, opts); err != nil {
		return nil, err
	}

	app.pageStore = sqlite.NewPageStore(cfg.Database.Path, opts...)
	app.taskStore = sqlite.NewTaskStore(cfg.Database.Path, opts...)
	app.blobStore = blob.NewOsStore(cfg.Blob.Dir)

	handlers := make(map[string]task.Handler, len(cfg.Task.Processors))
	for _, taskType := range cfg.Task.Processors {
		handlers[taskType] = newContentHandler(taskType, app.pageStore, app.blobStore, logger)
	}

	app.taskRunner = task.NewTaskRunner(app.taskStore, handlers, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: cfg.Task.StuckTaskAge,
	}, logger)
	if err := app.taskRunner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	processors := make([]taskrouter.Processor, 0, len(app.taskRunner.Processors()))
	for _, p := range app.taskRunner.Processors() {
		processors = append(processors, p)
	}

	var err error
	app.router, err = taskrouter.New(taskrouter.Routes{
		cfg.Task.MessageType: processors,
	}, taskrouter.Dependencies{
		Pages:      app.pageStore,
		Tasks:      app.taskStore,
		Blobs:      app.blobStore,
		PageMaxAge: cfg.Page.MaxAge,
	}, logger)
	if err != nil {
		app.taskRunner.Stop()
		return nil, fmt.Errorf("failed to create task router: %w", err)
	}

	logger.Info("Application initialized successfully",
		"message_type", cfg.Task.MessageType,
		"processors", cfg.Task.Processors)
	return app, nil
}

// ensureSchema applies pending migrations on a short-lived connection.
func ensureSchema(ctx context.Context, path string, opts []sqlite.Option) error {
	storage := sqlite.NewStorage(path, opts...)
	if err := storage.CreateTables(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := storage.CloseConnection(); err != nil {
		return fmt.Errorf("failed to close schema connection: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	app.logger.Info("Application shutdown completed")
}
