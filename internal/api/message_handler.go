package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/taskrouter"
	"github.com/phrazzld/pagequeue/internal/urlutil"
)

// MessageRouter admits capture messages. *taskrouter.Router implements it.
type MessageRouter interface {
	HandleMessage(ctx context.Context, msg taskrouter.Message) error
}

// MessageHandler handles capture messages sent by page fetchers.
type MessageHandler struct {
	router MessageRouter
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(router MessageRouter) *MessageHandler {
	return &MessageHandler{router: router}
}

// HandleMessage handles POST /api/messages requests.
//
// The URL is normalized before routing so that equivalent captures share one
// page. A 202 response means the message was admitted or deferred; the work
// itself happens in the processors.
func (h *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Request body is required")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	url := urlutil.Normalize(req.Data.URL, false)
	if url == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page URL")
		return
	}

	// Admission must finish even if the fetcher hangs up: a half-run critical
	// section would leave a page without its tasks.
	ctx := context.WithoutCancel(r.Context())
	if subject := shared.GetIngestSubject(ctx); subject != "" {
		ctx = logger.WithLogger(ctx, logger.Base(ctx).With("ingest_subject", subject))
	}
	log := logger.FromContext(ctx)
	if err := h.router.HandleMessage(ctx, req.toMessage(url)); err != nil {
		handleAPIError(w, r, err, "Failed to process message")
		return
	}

	log.Debug("capture message accepted", "type", req.Type, "url", url)
	shared.RespondWithJSON(w, r, http.StatusAccepted, CaptureResponse{URL: url})
}
