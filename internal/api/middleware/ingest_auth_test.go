package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestIngestAuth(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   "fetcher-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject:   "fetcher-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	noExpiry := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
		Subject: "fetcher-1",
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("another-secret-that-is-long-enough"), jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongAlg := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name            string
		authHeader      string
		expectedStatus  int
		expectedMessage string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Authorization header required"},
		{"invalid format", "Token " + valid, http.StatusUnauthorized, "Invalid authorization format"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"token without expiry", "Bearer " + noExpiry, http.StatusUnauthorized, "Invalid token"},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, "Invalid token"},
		{"wrong algorithm", "Bearer " + wrongAlg, http.StatusUnauthorized, "Invalid token"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = shared.GetIngestSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			IngestAuth(testSecret)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "fetcher-1", subject)
			} else {
				assert.Contains(t, w.Body.String(), tt.expectedMessage)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	var traceID, requestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		requestID = logger.RequestID(r.Context())
	})

	t.Run("generates an ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		TraceMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEmpty(t, traceID)
		assert.Equal(t, traceID, requestID)
	})

	t.Run("reuses the chi request ID", func(t *testing.T) {
		var chiID string
		handler := chimiddleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			chiID = chimiddleware.GetReqID(r.Context())
			TraceMiddleware(next).ServeHTTP(w, r)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		require.NotEmpty(t, chiID)
		assert.Equal(t, chiID, traceID)
	})
}
