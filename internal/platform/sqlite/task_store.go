package sqlite

import (
	"context"
	"fmt"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/store"
)

const (
	insertTaskSQL = `INSERT INTO moz_tasks (pageUrl, createdAt, jobStartedAt, status, type)
		VALUES (:pageUrl, :createdAt, :jobStartedAt, :status, :type)
		RETURNING id`

	updateTaskSQL = `UPDATE moz_tasks
		SET pageUrl = :pageUrl, createdAt = :createdAt, jobStartedAt = :jobStartedAt,
			status = :status, type = :type
		WHERE id = :id
		RETURNING id`

	selectTaskColumnsSQL = `SELECT id, pageUrl, createdAt, jobStartedAt, status, type FROM moz_tasks`

	selectTaskByURLSQL    = selectTaskColumnsSQL + ` WHERE pageUrl = :pageUrl ORDER BY id LIMIT 1`
	selectTaskByIDSQL     = selectTaskColumnsSQL + ` WHERE id = :id`
	selectTaskByStatusSQL = selectTaskColumnsSQL + ` WHERE status = :status ORDER BY createdAt ASC, id ASC`
)

var taskColumns = []string{"id", "pageUrl", "createdAt", "jobStartedAt", "status", "type"}

// TaskStore implements store.TaskStore using SQLite.
type TaskStore struct {
	path string
	opts []Option
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore for the database file at path.
func NewTaskStore(path string, opts ...Option) *TaskStore {
	return &TaskStore{path: path, opts: opts}
}

// SaveTask inserts a new task and assigns its ID, or updates an existing one.
func (s *TaskStore) SaveTask(ctx context.Context, task *domain.WorkerTask) error {
	log := logger.FromContext(ctx)

	params := Params{
		"pageUrl":      task.PageURL(),
		"createdAt":    task.CreatedAt(),
		"jobStartedAt": nullable(task.JobStartedAt()),
		"status":       string(task.Status()),
		"type":         task.Type(),
	}

	name, query := "insert task", insertTaskSQL
	if id := task.ID(); id != nil {
		params["id"] = *id
		name, query = "update task", updateTaskSQL
	}

	var rows [][]any
	err := withStorage(s.path, s.opts, func(st *Storage) error {
		var err error
		rows, err = st.Execute(ctx, name, query, params)
		return err
	})
	if err != nil {
		log.Error("failed to save task",
			"page_url", task.PageURL(),
			"task_type", task.Type(),
			"error", err)
		return store.NewStoreError("task", "save", "failed to save task", err)
	}

	if len(rows) == 0 {
		log.Warn("no task found with ID to update",
			"task_id", *task.ID())
		return store.NewStoreError("task", "update", "no matching row",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, store.ErrTaskNotFound))
	}

	if task.ID() == nil {
		id, err := asInt64(rows[0][0])
		if err != nil {
			return store.NewStoreError("task", "save", "failed to read assigned id", err)
		}
		task.SetID(id)
	}

	return nil
}

// GetTaskByURL returns the oldest task for pageURL, or nil if there is none.
func (s *TaskStore) GetTaskByURL(ctx context.Context, pageURL string) (*domain.WorkerTask, error) {
	tasks, err := s.query(ctx, "get task by url", selectTaskByURLSQL, Params{"pageUrl": pageURL})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// GetTaskByID returns the task with the given ID, or nil if there is none.
func (s *TaskStore) GetTaskByID(ctx context.Context, id int64) (*domain.WorkerTask, error) {
	tasks, err := s.query(ctx, "get task by id", selectTaskByIDSQL, Params{"id": id})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// GetTasksByStatus returns all tasks in status, oldest first.
func (s *TaskStore) GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.WorkerTask, error) {
	return s.query(ctx, "get tasks by status", selectTaskByStatusSQL, Params{"status": string(status)})
}

func (s *TaskStore) query(ctx context.Context, name, query string, params Params) ([]*domain.WorkerTask, error) {
	var tasks []*domain.WorkerTask
	err := withStorage(s.path, s.opts, func(st *Storage) error {
		rows, err := st.ExecuteColumns(ctx, name, query, taskColumns, params)
		if err != nil {
			return err
		}
		for _, row := range rows {
			task, err := taskFromRow(row)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, store.NewStoreError("task", "get", "failed to query tasks", err)
	}
	return tasks, nil
}

func taskFromRow(row map[string]any) (*domain.WorkerTask, error) {
	var (
		rec    domain.WorkerTaskRecord
		status string
		err    error
	)
	if rec.ID, err = asNullInt64(row["id"]); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if rec.PageURL, err = asString(row["pageUrl"]); err != nil {
		return nil, fmt.Errorf("pageUrl: %w", err)
	}
	if rec.CreatedAt, err = asInt64(row["createdAt"]); err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	if rec.JobStartedAt, err = asNullInt64(row["jobStartedAt"]); err != nil {
		return nil, fmt.Errorf("jobStartedAt: %w", err)
	}
	if status, err = asString(row["status"]); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	rec.Status = domain.TaskStatus(status)
	if rec.Type, err = asString(row["type"]); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	return domain.WorkerTaskFromRecord(rec)
}
