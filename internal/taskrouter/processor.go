package taskrouter

import (
	"context"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// Processor consumes worker tasks of a single type. Enqueue should hand the
// task off and return; the work itself happens elsewhere.
type Processor interface {
	TaskType() string
	Enqueue(ctx context.Context, task *domain.WorkerTask) error
}

// Routes maps a message type to the processors that receive a task for every
// page admitted from messages of that type.
type Routes map[string][]Processor
