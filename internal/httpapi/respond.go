package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/harborline/wayplan/internal/planner"
)

// writeJSON writes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARNING: httpapi: encode response: %v", err)
	}
}

// writeError writes a plain error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure renders a pipeline failure as the response body with its
// mapped status code. Retryable failures with a suggested wait also get a
// Retry-After header.
func writeFailure(w http.ResponseWriter, f *planner.Failure) {
	if f.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(f.RetryAfter))
	}
	writeJSON(w, statusForFailure(f.Type), f)
}

// statusForFailure maps the failure taxonomy onto HTTP status codes:
// upstream throttling surfaces as 429, an unresponsive model as 504, an
// unusable model response as 502, and bad input as 422.
func statusForFailure(t planner.FailureType) int {
	switch t {
	case planner.FailureQuota, planner.FailureRateLimited:
		return http.StatusTooManyRequests
	case planner.FailureModelTimeout:
		return http.StatusGatewayTimeout
	case planner.FailureMalformed:
		return http.StatusBadGateway
	case planner.FailureExtraction, planner.FailureValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
