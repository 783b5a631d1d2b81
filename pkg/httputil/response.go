// Package httputil provides the uniform response envelope and JSON request
// parsing shared by every handler and middleware stage.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/contextkeys"
)

// ErrorEnvelope is the only error body this service ever emits
type ErrorEnvelope struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 response with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError is the single translation point from a raised error to the
// client-visible envelope. Classified errors map to their status and detail;
// anything else becomes an opaque 500. The request_id from the context is
// always included so failures can be reported without exposing internals.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := contextkeys.GetRequestID(r.Context())

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.KindRateLimited && appErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		status := appErr.Status()
		detail := appErr.Detail
		if status == http.StatusInternalServerError {
			// Never leak internal detail text on 5xx, whatever the source.
			detail = "Internal server error"
		}
		writeEnvelope(w, status, detail, requestID)
		return
	}

	writeEnvelope(w, http.StatusInternalServerError, "Internal server error", requestID)
}

func writeEnvelope(w http.ResponseWriter, status int, detail, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorEnvelope{
		Detail:    detail,
		RequestID: requestID,
	})
}
