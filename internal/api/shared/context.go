package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// Context keys for various values
const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// IngestSubjectKey is the key for the authenticated fetcher identity
	IngestSubjectKey ContextKey = "ingestSubject"
)

// SetTraceID adds traceID to the context, generating one if it is empty.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SetIngestSubject records the subject claim of a verified ingest token.
func SetIngestSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, IngestSubjectKey, subject)
}

// GetIngestSubject returns the subject set by SetIngestSubject, if any.
func GetIngestSubject(ctx context.Context) string {
	subject, _ := ctx.Value(IngestSubjectKey).(string)
	return subject
}
