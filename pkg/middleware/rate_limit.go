package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
)

// KeyExtractor picks the bucket a request counts against. An empty key
// bypasses the limiter.
type KeyExtractor func(r *http.Request) string

// RateLimiter is a sliding-window limiter keyed by an arbitrary string.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	limiter := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// RateLimit applies limiter to requests whose path starts with one of
// prefixes. With no prefixes every request is limited.
func RateLimit(limiter *RateLimiter, log *logger.Logger, extractor KeyExtractor, prefixes ...string) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = ClientIPKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesPrefix(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			key := extractor(r)
			if !limiter.Allow(key) {
				log.Warn("Rate limit exceeded",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", retryAfterSeconds(limiter.window))
				_ = httputil.WriteError(w, apperrors.RateLimited())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ClientIPKey buckets by client address and route, so one caller hammering
// login does not exhaust its password-recovery budget.
func ClientIPKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
