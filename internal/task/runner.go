package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in the working state
	// before it's considered stuck and requeued. Zero disables the check.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner owns the queue, the processors feeding it and the worker pool
// draining it.
type TaskRunner struct {
	store      store.TaskStore
	queue      *TaskQueue
	processors []*QueueProcessor
	pool       *WorkerPool
	config     TaskRunnerConfig
	logger     *slog.Logger
	now        func() time.Time

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewTaskRunner creates a runner with one QueueProcessor per handler type.
func NewTaskRunner(
	tasks store.TaskStore,
	handlers map[string]Handler,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)

	types := make([]string, 0, len(handlers))
	for taskType := range handlers {
		types = append(types, taskType)
	}
	sort.Strings(types)

	processors := make([]*QueueProcessor, 0, len(types))
	for _, taskType := range types {
		processors = append(processors, NewQueueProcessor(taskType, queue))
	}

	pool := NewWorkerPool(queue, tasks, handlers, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	pool.SetErrorHandler(func(task *domain.WorkerTask, err error) {
		logger.Error("task failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	})

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      tasks,
		queue:      queue,
		processors: processors,
		pool:       pool,
		config:     config,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Processors returns the processors to register with the task router,
// ordered by task type.
func (r *TaskRunner) Processors() []*QueueProcessor {
	return r.processors
}

// SetErrorHandler replaces the handler for failed tasks.
func (r *TaskRunner) SetErrorHandler(handler func(task *domain.WorkerTask, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start launches the workers, requeues unfinished tasks from a previous run
// and starts the stuck task monitor.
func (r *TaskRunner) Start(ctx context.Context) error {
	r.pool.Start()

	enqueuers := make([]Enqueuer, len(r.processors))
	for i, p := range r.processors {
		enqueuers[i] = p
	}
	requeued, err := Recover(ctx, r.store, enqueuers, r.logger)
	if err != nil {
		r.pool.Stop()
		return fmt.Errorf("failed to recover tasks: %w", err)
	}
	r.logger.Info("task runner started", "requeued_count", requeued)

	if r.config.StuckTaskAge > 0 {
		r.wg.Add(1)
		go r.stuckTaskMonitor()
	}
	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.pool.Stop()
	r.queue.Close()
}

// stuckTaskMonitor periodically requeues tasks that have been working for
// longer than StuckTaskAge.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.requeueStuckTasks(r.ctx)
		}
	}
}

func (r *TaskRunner) requeueStuckTasks(ctx context.Context) {
	working, err := r.store.GetTasksByStatus(ctx, domain.TaskStatusWorking)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}

	cutoff := r.now().Add(-r.config.StuckTaskAge).UnixMilli()
	for _, task := range working {
		started := task.JobStartedAt()
		if started == nil || *started > cutoff {
			continue
		}

		if err := task.SetStatus(domain.TaskStatusNew); err != nil {
			continue
		}
		if err := r.store.SaveTask(ctx, task); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}

		if err := r.queue.Enqueue(task); err != nil {
			r.logger.Error("failed to requeue stuck task",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		r.logger.Info("requeued stuck task",
			"task_id", task.ID(),
			"task_type", task.Type())
	}
}
