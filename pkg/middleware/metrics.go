package middleware

import (
	"net/http"
	"time"

	"github.com/edgechat/edgechat/pkg/observability"
)

// HTTPMetrics records request count and latency per method/path/status
func HTTPMetrics(metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			metrics.ObserveHTTPRequest(r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}

// statusWriter captures the status code written by downstream stages
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
