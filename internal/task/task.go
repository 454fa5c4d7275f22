package task

import (
	"context"
	"errors"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// Common errors returned while dispatching tasks
var (
	// ErrNoHandler is reported when a task has a type no handler is registered for.
	ErrNoHandler = errors.New("no handler registered for task type")

	// ErrHandlerPanic is reported when a handler panics.
	ErrHandlerPanic = errors.New("task handler panicked")
)

// Handler does the work for one task type.
type Handler interface {
	Handle(ctx context.Context, task *domain.WorkerTask) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, task *domain.WorkerTask) error

// Handle calls f(ctx, task).
func (f HandlerFunc) Handle(ctx context.Context, task *domain.WorkerTask) error {
	return f(ctx, task)
}

// Enqueuer accepts saved tasks of one type for later processing.
type Enqueuer interface {
	TaskType() string
	Enqueue(ctx context.Context, task *domain.WorkerTask) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan *domain.WorkerTask
}

// TaskQueueWriter provides write access to the task queue
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task *domain.WorkerTask) error

	// Close closes the task queue, preventing further task submission
	Close()
}
