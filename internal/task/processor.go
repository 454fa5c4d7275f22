package task

import (
	"context"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// QueueProcessor hands tasks of one type to a TaskQueue.
type QueueProcessor struct {
	taskType string
	queue    TaskQueueWriter
}

var _ Enqueuer = (*QueueProcessor)(nil)

// NewQueueProcessor creates a processor for taskType feeding queue.
func NewQueueProcessor(taskType string, queue TaskQueueWriter) *QueueProcessor {
	return &QueueProcessor{taskType: taskType, queue: queue}
}

// TaskType returns the task type this processor accepts.
func (p *QueueProcessor) TaskType() string {
	return p.taskType
}

// Enqueue pushes task onto the queue. It fails with ErrQueueFull instead of
// waiting for room.
func (p *QueueProcessor) Enqueue(ctx context.Context, task *domain.WorkerTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.queue.Enqueue(task)
}
