package middleware

import (
	"net/http"
	"strconv"

	"github.com/phrazzld/pagequeue/internal/api/shared"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter runs out of tokens.
// The limiter is shared by every client, which bounds the admission rate of
// the whole server rather than of one fetcher.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				retryAfter := 1
				if limit := limiter.Limit(); limit > 0 && limit < 1 {
					retryAfter = int(1/limit) + 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
