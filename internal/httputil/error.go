package httputil

import (
	"net/http"

	"github.com/AdamBeresnev/matchday/internal/logging"
)

// These responders serve the HTML pages; the JSON API uses WriteError.

func InternalServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.Default().ErrorContext(r.Context(), msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if err != nil {
		logging.Default().WarnContext(r.Context(), "bad request", "message", msg, "error", err)
	} else {
		logging.Default().WarnContext(r.Context(), "bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if err != nil {
		logging.Default().WarnContext(r.Context(), "not found", "message", msg, "error", err)
	} else {
		logging.Default().WarnContext(r.Context(), "not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}
