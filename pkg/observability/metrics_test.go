package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAIRequest(t *testing.T) {
	m := NewMetrics(nil)

	m.ObserveAIRequest("complete", nil, 50*time.Millisecond)
	m.ObserveAIRequest("complete", errors.New("upstream unreachable"), time.Millisecond)

	if got := testutil.ToFloat64(m.AIRequestsTotal.WithLabelValues("complete", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AIRequestsTotal.WithLabelValues("complete", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	m := NewMetrics(nil)

	m.ObserveHTTPRequest("GET", "/api/v1/auth/me", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/auth/me", 200, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/auth/me", "200")); got != 2 {
		t.Errorf("request count = %v, want 2", got)
	}
}
