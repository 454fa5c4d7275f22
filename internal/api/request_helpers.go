package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/pagequeue/internal/api/shared"
)

// getPathID extracts a positive integer ID from the URL path parameter
// paramName. It writes a 400 response and returns false when the parameter
// is missing or malformed.
func getPathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing "+paramName)
		return 0, false
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+paramName)
		return 0, false
	}

	return id, true
}

// handleAPIError responds with the status and safe message for err and logs
// the underlying error.
func handleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
