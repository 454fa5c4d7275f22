package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/pagequeue/internal/api/shared"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/redact"
)

// IngestAuth verifies that capture messages come from a trusted fetcher.
// Requests must carry an HS256 JWT signed with secret in the Authorization
// header; the token must have an expiry. The subject claim is stored in the
// request context.
func IngestAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
				return
			}

			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil {
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "Token expired"
				}
				logger.FromContext(r.Context()).Debug("ingest token rejected",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusUnauthorized, message)
				return
			}

			ctx := shared.SetIngestSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
