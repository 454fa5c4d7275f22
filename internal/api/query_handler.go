package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/phrazzld/pagequeue/internal/urlutil"
)

// QueryHandler serves read-only views of pages and tasks.
type QueryHandler struct {
	pages store.PageStore
	tasks store.TaskStore
	now   func() time.Time
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(pages store.PageStore, tasks store.TaskStore) *QueryHandler {
	return &QueryHandler{pages: pages, tasks: tasks, now: time.Now}
}

// GetPage handles GET /api/pages?url= requests.
func (h *QueryHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing url")
		return
	}
	url := urlutil.Normalize(raw, false)
	if url == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid url")
		return
	}

	page, err := h.pages.GetPageByURL(r.Context(), url)
	if err != nil {
		handleAPIError(w, r, err, "Failed to get page")
		return
	}
	if page == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Page not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page, h.now()))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *QueryHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.tasks.GetTaskByID(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, err, "Failed to get task")
		return
	}
	if t == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(t))
}

// ListTasks handles GET /api/tasks?status= requests. The status defaults to
// new.
func (h *QueryHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.TaskStatusNew
	}
	if !domain.IsValidTaskStatus(status) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task status")
		return
	}

	tasks, err := h.tasks.GetTasksByStatus(r.Context(), status)
	if err != nil {
		handleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
