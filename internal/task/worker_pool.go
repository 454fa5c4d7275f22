package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// store persists task status changes
	store store.TaskStore

	// handlers maps a task type to the handler that processes it
	handlers map[string]Handler

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a task cannot be processed
	// If nil, errors are only logged
	errorHandler func(task *domain.WorkerTask, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, DefaultWorkerPoolConfig's count is used
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(
	taskQueue TaskQueueReader,
	tasks store.TaskStore,
	handlers map[string]Handler,
	config WorkerPoolConfig,
	logger *slog.Logger,
) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = DefaultWorkerPoolConfig().WorkerCount
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", workerCount)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		store:       tasks,
		handlers:    handlers,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task failures
func (p *WorkerPool) SetErrorHandler(handler func(task *domain.WorkerTask, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels in-flight handlers and waits for every worker to exit.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(task, id)
		}
	}
}

// processTask moves one task through working to done.
func (p *WorkerPool) processTask(task *domain.WorkerTask, workerID int) {
	ctx := p.ctx
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"page_url", task.PageURL(),
		"worker_id", workerID,
	)

	handler, ok := p.handlers[task.Type()]
	if !ok {
		p.fail(log, task, fmt.Errorf("%w: %s", ErrNoHandler, task.Type()))
		return
	}

	task.JobStarted()
	if err := p.store.SaveTask(ctx, task); err != nil {
		p.fail(log, task, fmt.Errorf("failed to mark task started: %w", err))
		return
	}

	log.Info("processing task")

	if err := p.runHandler(ctx, handler, task); err != nil {
		p.fail(log, task, err)
		return
	}

	if err := task.SetStatus(domain.TaskStatusDone); err != nil {
		p.fail(log, task, err)
		return
	}
	if err := p.store.SaveTask(ctx, task); err != nil {
		p.fail(log, task, fmt.Errorf("failed to mark task done: %w", err))
		return
	}

	log.Info("task completed successfully")
}

// runHandler calls the handler, turning a panic into ErrHandlerPanic.
func (p *WorkerPool) runHandler(ctx context.Context, handler Handler, task *domain.WorkerTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler.Handle(ctx, task)
}

func (p *WorkerPool) fail(log *slog.Logger, task *domain.WorkerTask, err error) {
	log.Error("task execution failed", "error", err)
	if p.errorHandler != nil {
		p.errorHandler(task, err)
	}
}
