package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. Saved tasks are copied, so
// later changes to the caller's task are only visible after another save.
type MockTaskStore struct {
	mu     sync.Mutex
	tasks  map[int64]domain.WorkerTaskRecord
	nextID int64

	// Custom behavior functions, used instead of the in-memory data when set
	SaveTaskFn     func(ctx context.Context, task *domain.WorkerTask) error
	GetTaskByURLFn func(ctx context.Context, pageURL string) (*domain.WorkerTask, error)

	SaveTaskCalls int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[int64]domain.WorkerTaskRecord)}
}

// SaveTask implements store.TaskStore.
func (m *MockTaskStore) SaveTask(ctx context.Context, task *domain.WorkerTask) error {
	m.mu.Lock()
	m.SaveTaskCalls++
	m.mu.Unlock()

	if m.SaveTaskFn != nil {
		return m.SaveTaskFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID() == nil {
		m.nextID++
		task.SetID(m.nextID)
	} else if _, ok := m.tasks[*task.ID()]; !ok {
		return store.ErrUpdateFailed
	}
	m.tasks[*task.ID()] = task.Record()
	return nil
}

// GetTaskByURL implements store.TaskStore.
func (m *MockTaskStore) GetTaskByURL(ctx context.Context, pageURL string) (*domain.WorkerTask, error) {
	if m.GetTaskByURLFn != nil {
		return m.GetTaskByURLFn(ctx, pageURL)
	}

	for _, task := range m.All() {
		if task.PageURL() == pageURL {
			return task, nil
		}
	}
	return nil, nil
}

// GetTaskByID implements store.TaskStore.
func (m *MockTaskStore) GetTaskByID(ctx context.Context, id int64) (*domain.WorkerTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return domain.WorkerTaskFromRecord(rec)
}

// GetTasksByStatus implements store.TaskStore.
func (m *MockTaskStore) GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.WorkerTask, error) {
	var result []*domain.WorkerTask
	for _, task := range m.All() {
		if task.Status() == status {
			result = append(result, task)
		}
	}
	return result, nil
}

// All returns copies of every stored task in ID order.
func (m *MockTaskStore) All() []*domain.WorkerTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*domain.WorkerTask, 0, len(ids))
	for _, id := range ids {
		// Records in the map always carry a valid status.
		task, _ := domain.WorkerTaskFromRecord(m.tasks[id])
		result = append(result, task)
	}
	return result
}
