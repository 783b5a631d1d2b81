package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
)

const rateLimitKeyPrefix = "ratelimit:ip:"

// counterTimeout bounds the counter store round trip; a slow store must
// degrade into fail-open, not into slow responses.
const counterTimeout = 2 * time.Second

// RateLimiter is a fixed-window per-client-address limiter over an atomic
// counter store.
//
// Each request costs one increment round trip. The window boundary allows up
// to 2x the ceiling in a burst straddling two windows; that imprecision is
// accepted in exchange for the single round trip.
//
// When the counter store errors or times out, the limiter fails open: the
// request proceeds and the failure is only logged and counted. An outage of
// the limiting substrate must never become an outage of the API.
type RateLimiter struct {
	counters storage.CounterStore
	ceiling  int
	window   time.Duration
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewRateLimiter creates a limiter with the given ceiling per window
func NewRateLimiter(counters storage.CounterStore, ceiling int, window time.Duration, logger *observability.Logger, metrics *observability.Metrics) *RateLimiter {
	return &RateLimiter{
		counters: counters,
		ceiling:  ceiling,
		window:   window,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handler wraps next with the rate limit gate. A limiter constructed without
// a counter store passes everything through.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl.counters == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rateLimitKeyPrefix + ClientIP(r)

		ctx, cancel := context.WithTimeout(r.Context(), counterTimeout)
		count, err := rl.counters.Incr(ctx, key, rl.window)
		if err != nil {
			cancel()
			rl.metrics.RateLimitFailOpenTotal.Inc()
			observability.FromContext(r.Context(), rl.logger).
				WithError(err).Warn("counter store unavailable, rate limiter failing open")
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.ceiling) {
			retryAfter := rl.retryAfter(ctx, key)
			cancel()
			rl.metrics.RateLimitRejectedTotal.Inc()
			httputil.WriteError(w, r, apperr.RateLimited(retryAfter))
			return
		}
		cancel()

		next.ServeHTTP(w, r)
	})
}

// retryAfter reads the remaining window from the counter's TTL, falling back
// to the full window length when the TTL is unavailable.
func (rl *RateLimiter) retryAfter(ctx context.Context, key string) int {
	ttl, err := rl.counters.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		return int(rl.window.Seconds())
	}
	seconds := int(ttl.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// ClientIP extracts the client address: first X-Forwarded-For entry when
// present (the service runs behind a proxy), else the connection address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
