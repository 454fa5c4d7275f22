package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the lifecycle stage of a WorkerTask.
type TaskStatus string

// Possible task status values
const (
	TaskStatusNew     TaskStatus = "new"
	TaskStatusWorking TaskStatus = "working"
	TaskStatusDone    TaskStatus = "done"
)

// Task type identifiers for the processors shipped with the queue.
const (
	TaskTypeMetadata = "metadata"
	TaskTypeFTS      = "fts"
)

// WorkerTask is one unit of work for a processor type against a page URL.
// The ID is assigned by the store on the first save.
type WorkerTask struct {
	id           *int64
	pageURL      string
	taskType     string
	createdAt    int64
	jobStartedAt *int64
	status       TaskStatus
}

// WorkerTaskRecord is the plain field set of a WorkerTask, used to rebuild a
// task from storage or from its serialized form.
type WorkerTaskRecord struct {
	ID           *int64     `json:"id"`
	PageURL      string     `json:"pageUrl"`
	CreatedAt    int64      `json:"createdAt"`
	JobStartedAt *int64     `json:"jobStartedAt"`
	Status       TaskStatus `json:"status"`
	Type         string     `json:"type"`
}

// NewWorkerTask creates a task in the new state, stamped with the current time.
func NewWorkerTask(pageURL, taskType string) *WorkerTask {
	return &WorkerTask{
		pageURL:   pageURL,
		taskType:  taskType,
		createdAt: time.Now().UnixMilli(),
		status:    TaskStatusNew,
	}
}

// WorkerTaskFromRecord rebuilds a task from its plain fields.
// Returns ErrInvalidTaskStatus if the record carries an unknown status.
func WorkerTaskFromRecord(rec WorkerTaskRecord) (*WorkerTask, error) {
	if !IsValidTaskStatus(rec.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, rec.Status)
	}
	return &WorkerTask{
		id:           copyInt64(rec.ID),
		pageURL:      rec.PageURL,
		taskType:     rec.Type,
		createdAt:    rec.CreatedAt,
		jobStartedAt: copyInt64(rec.JobStartedAt),
		status:       rec.Status,
	}, nil
}

// ID returns the store-assigned identifier, or nil before the first save.
func (t *WorkerTask) ID() *int64 { return t.id }

// PageURL returns the URL of the page this task operates on.
func (t *WorkerTask) PageURL() string { return t.pageURL }

// Type returns the processor kind that consumes this task.
func (t *WorkerTask) Type() string { return t.taskType }

// CreatedAt returns the creation time in epoch milliseconds.
func (t *WorkerTask) CreatedAt() int64 { return t.createdAt }

// JobStartedAt returns the time work began, or nil if it has not.
func (t *WorkerTask) JobStartedAt() *int64 { return t.jobStartedAt }

// Status returns the current lifecycle stage.
func (t *WorkerTask) Status() TaskStatus { return t.status }

// SetStatus assigns a new status. Transition order is not enforced.
func (t *WorkerTask) SetStatus(status TaskStatus) error {
	if !IsValidTaskStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, status)
	}
	t.status = status
	return nil
}

// SetID records the store-assigned identifier.
func (t *WorkerTask) SetID(id int64) {
	t.id = &id
}

// JobStarted stamps the start time and moves the task to working.
// The start time is only stamped once and is always later than CreatedAt.
func (t *WorkerTask) JobStarted() {
	if t.jobStartedAt == nil {
		now := time.Now().UnixMilli()
		if now <= t.createdAt {
			now = t.createdAt + 1
		}
		t.jobStartedAt = &now
	}
	t.status = TaskStatusWorking
}

// Record returns the plain field set of the task.
func (t *WorkerTask) Record() WorkerTaskRecord {
	return WorkerTaskRecord{
		ID:           copyInt64(t.id),
		PageURL:      t.pageURL,
		CreatedAt:    t.createdAt,
		JobStartedAt: copyInt64(t.jobStartedAt),
		Status:       t.status,
		Type:         t.taskType,
	}
}

// MarshalJSON implements json.Marshaler.
func (t *WorkerTask) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *WorkerTask) UnmarshalJSON(data []byte) error {
	var rec WorkerTaskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := WorkerTaskFromRecord(rec)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusNew, TaskStatusWorking, TaskStatusDone:
		return true
	default:
		return false
	}
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
