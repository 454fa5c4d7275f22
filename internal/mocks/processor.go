package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// MockProcessor records every task it is asked to enqueue.
type MockProcessor struct {
	Type string

	// EnqueueFn runs before the task is recorded; an error skips recording.
	EnqueueFn func(ctx context.Context, task *domain.WorkerTask) error

	mu    sync.Mutex
	tasks []*domain.WorkerTask
}

// NewMockProcessor creates a MockProcessor for the given task type.
func NewMockProcessor(taskType string) *MockProcessor {
	return &MockProcessor{Type: taskType}
}

// TaskType returns the task type this processor handles.
func (m *MockProcessor) TaskType() string {
	return m.Type
}

// Enqueue records task.
func (m *MockProcessor) Enqueue(ctx context.Context, task *domain.WorkerTask) error {
	if m.EnqueueFn != nil {
		if err := m.EnqueueFn(ctx, task); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

// Tasks returns the tasks enqueued so far.
func (m *MockProcessor) Tasks() []*domain.WorkerTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.WorkerTask(nil), m.tasks...)
}
