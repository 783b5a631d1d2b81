package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/contextkeys"
)

func requestWithID(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	if id != "" {
		r = r.WithContext(contextkeys.WithRequestID(r.Context(), id))
	}
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func TestWriteError_Classified(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "unauthenticated",
			err:        apperr.Unauthenticated("Invalid or expired token", nil),
			wantStatus: http.StatusUnauthorized,
			wantDetail: "Invalid or expired token",
		},
		{
			name:       "validation",
			err:        apperr.New(apperr.KindValidation, "Invalid request body"),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid request body",
		},
		{
			name:       "not found",
			err:        apperr.New(apperr.KindNotFound, "Conversation not found"),
			wantStatus: http.StatusNotFound,
			wantDetail: "Conversation not found",
		},
		{
			name:       "rate limited",
			err:        apperr.RateLimited(42),
			wantStatus: http.StatusTooManyRequests,
			wantDetail: "Too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, requestWithID("req-123"), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", env.Detail, tt.wantDetail)
			}
			if env.RequestID != "req-123" {
				t.Errorf("request_id = %q, want req-123", env.RequestID)
			}
		})
	}
}

func TestWriteError_RetryAfterHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, requestWithID("req-1"), apperr.RateLimited(37))

	if got := rec.Header().Get("Retry-After"); got != "37" {
		t.Errorf("Retry-After = %q, want 37", got)
	}
}

func TestWriteError_UnhandledIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, requestWithID("req-9"), errors.New("pq: connection refused on 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Detail != "Internal server error" {
		t.Errorf("detail leaked internals: %q", env.Detail)
	}
	if env.RequestID != "req-9" {
		t.Errorf("request_id = %q, want req-9", env.RequestID)
	}
}

func TestWriteError_CorruptCredentialIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, requestWithID("req-2"), apperr.CorruptCredential(errors.New("bcrypt: hash too short")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Detail != "Internal server error" {
		t.Errorf("detail = %q, want opaque", env.Detail)
	}
}
