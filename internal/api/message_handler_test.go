package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/mocks"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/phrazzld/pagequeue/internal/task"
	"github.com/phrazzld/pagequeue/internal/taskrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routerFunc adapts a function to MessageRouter.
type routerFunc func(ctx context.Context, msg taskrouter.Message) error

func (f routerFunc) HandleMessage(ctx context.Context, msg taskrouter.Message) error {
	return f(ctx, msg)
}

func newMessageRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestMessageHandler_HandleMessage(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		routerErr       error
		expectedStatus  int
		expectedURL     string
		expectedMessage string
	}{
		{
			name:           "accepted",
			body:           `{"type":"document-content","data":{"url":"HTTP://Example.COM/a?b=2&a=1#frag","data":"<html></html>"}}`,
			expectedStatus: http.StatusAccepted,
			expectedURL:    "http://example.com/a?a=1&b=2",
		},
		{
			name:            "empty body",
			body:            "",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Request body is required",
		},
		{
			name:            "malformed json",
			body:            `{"type":`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request format",
		},
		{
			name:            "missing type",
			body:            `{"data":{"url":"https://example.com/","data":"x"}}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid Type: required field",
		},
		{
			name:            "missing url",
			body:            `{"type":"document-content","data":{"data":"x"}}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid Data.URL: required field",
		},
		{
			name:            "url without host",
			body:            `{"type":"document-content","data":{"url":"mailto:someone@example.com","data":"x"}}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid page URL",
		},
		{
			name:            "unknown route",
			body:            `{"type":"nope","data":{"url":"https://example.com/","data":"x"}}`,
			routerErr:       fmt.Errorf("%w: nope", taskrouter.ErrNoRoute),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Unknown message type",
		},
		{
			name:            "database busy",
			body:            `{"type":"document-content","data":{"url":"https://example.com/","data":"x"}}`,
			routerErr:       fmt.Errorf("failed to save page: %w", store.ErrBusy),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedMessage: "Service temporarily unavailable",
		},
		{
			name:            "queue full",
			body:            `{"type":"document-content","data":{"url":"https://example.com/","data":"x"}}`,
			routerErr:       fmt.Errorf("failed to enqueue fts task: %w", task.ErrQueueFull),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedMessage: "Service temporarily unavailable",
		},
		{
			name:            "unexpected error",
			body:            `{"type":"document-content","data":{"url":"https://example.com/","data":"x"}}`,
			routerErr:       errors.New("disk on fire at /var/lib/pagequeue"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Failed to process message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *taskrouter.Message
			handler := NewMessageHandler(routerFunc(func(ctx context.Context, msg taskrouter.Message) error {
				got = &msg
				return tt.routerErr
			}))

			w := httptest.NewRecorder()
			handler.HandleMessage(w, newMessageRequest(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusAccepted {
				require.NotNil(t, got)
				assert.Equal(t, tt.expectedURL, got.Data.URL)
				assert.Equal(t, "<html></html>", got.Data.Data)

				var resp CaptureResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedURL, resp.URL)
				return
			}
			assert.Contains(t, w.Body.String(), tt.expectedMessage)
			assert.NotContains(t, w.Body.String(), "/var/lib")
		})
	}
}

func TestMessageHandler_DetachesFromRequestCancellation(t *testing.T) {
	var routerCtxErr error
	handler := NewMessageHandler(routerFunc(func(ctx context.Context, msg taskrouter.Message) error {
		routerCtxErr = ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := newMessageRequest(`{"type":"document-content","data":{"url":"https://example.com/","data":"x"}}`).
		WithContext(ctx)
	w := httptest.NewRecorder()
	handler.HandleMessage(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.NoError(t, routerCtxErr)
}

func TestMessageHandler_TagsRouterContext(t *testing.T) {
	log, rec := logger.GetTestLogger(t)
	handler := NewMessageHandler(routerFunc(func(ctx context.Context, msg taskrouter.Message) error {
		logger.FromContext(ctx).Info("routed")
		return nil
	}))

	ctx := logger.WithRequestID(logger.WithLogger(context.Background(), log), "req-7")
	ctx = shared.SetIngestSubject(ctx, "fetcher-1")
	req := newMessageRequest(`{"type":"document-content","data":{"url":"https://example.com/","data":"x"}}`).
		WithContext(ctx)
	w := httptest.NewRecorder()
	handler.HandleMessage(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	entries := rec.EntriesWithMessage(t, "routed")
	require.Len(t, entries, 1)
	assert.Equal(t, "req-7", entries[0]["request_id"])
	assert.Equal(t, "fetcher-1", entries[0]["ingest_subject"])
	assert.Equal(t, len(rec.Entries(t)), strings.Count(rec.String(), `"request_id"`),
		"request_id is attached once per line")
}

func TestMessageHandler_WithTaskRouter(t *testing.T) {
	pages := mocks.NewMockPageStore()
	tasks := mocks.NewMockTaskStore()
	blobs := mocks.NewMockBlobStore()
	fts := mocks.NewMockProcessor("fts")
	metadata := mocks.NewMockProcessor("metadata")

	router, err := taskrouter.New(taskrouter.Routes{
		"document-content": {metadata, fts},
	}, taskrouter.Dependencies{Pages: pages, Tasks: tasks, Blobs: blobs}, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/api/messages", NewMessageHandler(router).HandleMessage)

	body := `{"type":"document-content","data":{"url":"https://example.com/doc","data":"<p>hi</p>"}}`
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newMessageRequest(body))
		assert.Equal(t, http.StatusAccepted, w.Code)
	}

	// The second capture finds the existing tasks and is not admitted again.
	assert.Len(t, fts.Tasks(), 1)
	assert.Len(t, metadata.Tasks(), 1)
	assert.Equal(t, 1, blobs.Count())

	page, err := pages.GetPageByURL(context.Background(), "https://example.com/doc")
	require.NoError(t, err)
	require.NotNil(t, page)
}
