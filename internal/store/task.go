package store

import (
	"context"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// TaskStore defines the interface for worker task persistence.
type TaskStore interface {
	// SaveTask inserts a task that has no ID yet and assigns the new ID to it,
	// or updates the row of a task that already has one.
	SaveTask(ctx context.Context, task *domain.WorkerTask) error

	// GetTaskByURL returns any task tracking the given page URL.
	// Returns nil and no error if there is none.
	GetTaskByURL(ctx context.Context, pageURL string) (*domain.WorkerTask, error)

	// GetTaskByID retrieves a task by ID.
	// Returns nil and no error if there is none.
	GetTaskByID(ctx context.Context, id int64) (*domain.WorkerTask, error)

	// GetTasksByStatus returns every task in the given status, oldest first.
	GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.WorkerTask, error)
}
