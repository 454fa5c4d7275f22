package api

import (
	"time"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/taskrouter"
)

// CaptureRequest is the payload of POST /api/messages.
type CaptureRequest struct {
	Type string             `json:"type" validate:"required"`
	Data CaptureRequestData `json:"data"`
}

// CaptureRequestData holds the captured page.
type CaptureRequestData struct {
	URL  string `json:"url"  validate:"required,url"`
	Data string `json:"data"`
}

// toMessage converts the request into a router message carrying url.
func (r CaptureRequest) toMessage(url string) taskrouter.Message {
	return taskrouter.Message{
		Type: r.Type,
		Data: taskrouter.MessageData{URL: url, Data: r.Data.Data},
	}
}

// CaptureResponse acknowledges an accepted capture message.
type CaptureResponse struct {
	URL string `json:"url"`
}

// PageResponse is the API view of a stored page.
type PageResponse struct {
	URL        string    `json:"url"`
	Path       string    `json:"path"`
	MaxAge     int64     `json:"max_age_ms"`
	Remote     bool      `json:"remote"`
	CreatedAt  time.Time `json:"created_at"`
	Expiration time.Time `json:"expiration"`
	Expired    bool      `json:"expired"`
}

// TaskResponse is the API view of a worker task.
type TaskResponse struct {
	ID           int64      `json:"id"`
	PageURL      string     `json:"page_url"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	JobStartedAt *time.Time `json:"job_started_at,omitempty"`
}

// TaskListResponse is returned by GET /api/tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

func pageToResponse(page *domain.Page, now time.Time) PageResponse {
	return PageResponse{
		URL:        page.URL(),
		Path:       page.Path(),
		MaxAge:     page.MaxAge(),
		Remote:     page.Remote(),
		CreatedAt:  time.UnixMilli(page.CreatedAt()).UTC(),
		Expiration: time.UnixMilli(page.Expiration()).UTC(),
		Expired:    page.IsExpired(now),
	}
}

func taskToResponse(t *domain.WorkerTask) TaskResponse {
	resp := TaskResponse{
		PageURL:   t.PageURL(),
		Type:      t.Type(),
		Status:    string(t.Status()),
		CreatedAt: time.UnixMilli(t.CreatedAt()).UTC(),
	}
	if id := t.ID(); id != nil {
		resp.ID = *id
	}
	if started := t.JobStartedAt(); started != nil {
		ts := time.UnixMilli(*started).UTC()
		resp.JobStartedAt = &ts
	}
	return resp
}
