package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/httputil"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

// slidingWindow tracks request timestamps for one caller. The sliding
// window avoids the burst-at-boundary problem of fixed buckets.
type slidingWindow struct {
	timestamps []time.Time
}

func (w *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}

// RateLimiter is an in-memory per-caller request limiter. Single-process
// only; a shared deployment needs a distributed store behind the same
// interface.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	limit   int
	window  time.Duration
}

// NewRateLimiter allows limit requests per caller within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*slidingWindow),
		limit:   limit,
		window:  window,
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &slidingWindow{}
		l.buckets[key] = bucket
	}
	now := time.Now()
	bucket.cleanup(now, l.window)
	if len(bucket.timestamps) >= l.limit {
		return false
	}
	bucket.timestamps = append(bucket.timestamps, now)
	return true
}

// key identifies the caller: the authenticated principal when present,
// the remote address otherwise.
func (l *RateLimiter) key(r *http.Request) string {
	if principal, ok := requestcontext.Caller(r.Context()); ok {
		if principal.Root {
			return "root"
		}
		return "account:" + strconv.FormatUint(uint64(principal.Account), 10)
	}
	return "addr:" + r.RemoteAddr
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.key(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limited",
				"error_description": "rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
