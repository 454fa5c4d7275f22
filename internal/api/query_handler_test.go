package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/mocks"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryRouter(h *QueryHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/pages", h.GetPage)
	r.Get("/api/tasks", h.ListTasks)
	r.Get("/api/tasks/{id}", h.GetTask)
	return r
}

func TestQueryHandler_GetPage(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	pages := mocks.NewMockPageStore()
	page, err := domain.NewPage(domain.PageParams{
		URL:       "https://example.com/a",
		Path:      "blob-1",
		MaxAge:    1000,
		CreatedAt: now.UnixMilli() - 2000,
	})
	require.NoError(t, err)
	pages.Put(page)

	h := NewQueryHandler(pages, mocks.NewMockTaskStore())
	h.now = func() time.Time { return now }
	router := newQueryRouter(h)

	t.Run("found after normalization", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages?url=https://EXAMPLE.com/a%23x", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp PageResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "https://example.com/a", resp.URL)
		assert.Equal(t, "blob-1", resp.Path)
		assert.Equal(t, int64(1000), resp.MaxAge)
		assert.True(t, resp.Expired)
		assert.Equal(t, resp.CreatedAt.Add(time.Second), resp.Expiration)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages?url=https://example.com/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing url", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid url", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages?url=not-a-url", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestQueryHandler_GetPageStoreError(t *testing.T) {
	pages := mocks.NewMockPageStore()
	pages.GetPageByURLFn = func(ctx context.Context, url string) (*domain.Page, error) {
		return nil, store.NewStoreError("page", "get", "failed to read page", store.ErrBusy)
	}
	router := newQueryRouter(NewQueryHandler(pages, mocks.NewMockTaskStore()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages?url=https://example.com/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestQueryHandler_Tasks(t *testing.T) {
	ctx := context.Background()
	tasks := mocks.NewMockTaskStore()

	fresh := domain.NewWorkerTask("https://example.com/a", domain.TaskTypeFTS)
	require.NoError(t, tasks.SaveTask(ctx, fresh))
	started := domain.NewWorkerTask("https://example.com/b", domain.TaskTypeMetadata)
	started.JobStarted()
	require.NoError(t, tasks.SaveTask(ctx, started))

	router := newQueryRouter(NewQueryHandler(mocks.NewMockPageStore(), tasks))

	t.Run("get by id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", *started.ID()), nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp TaskResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, *started.ID(), resp.ID)
		assert.Equal(t, "https://example.com/b", resp.PageURL)
		assert.Equal(t, "working", resp.Status)
		assert.NotNil(t, resp.JobStartedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/999", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-4"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, id)
		}
	})

	t.Run("list defaults to new", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp TaskListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Tasks, 1)
		assert.Equal(t, *fresh.ID(), resp.Tasks[0].ID)
		assert.Nil(t, resp.Tasks[0].JobStartedAt)
	})

	t.Run("list done is empty array", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks?status=done", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tasks":[]}`, w.Body.String())
	})

	t.Run("list invalid status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks?status=archived", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
