package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and tags every log
// line written through logger.FromContext with it. It reuses the chi request
// ID when one is present, so it should be mounted after chi's RequestID
// middleware.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context(), chimiddleware.GetReqID(r.Context()))
		traceID := shared.GetTraceID(ctx)

		ctx = logger.WithRequestID(ctx, traceID)

		logger.FromContext(ctx).Debug("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
