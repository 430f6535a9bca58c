package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
)

// RateLimitMiddleware is a sliding-window limiter keyed by rider, or by
// client IP for anonymous requests.
type RateLimitMiddleware struct {
	requests  map[string][]time.Time
	lastPrune time.Time
	mu        sync.Mutex
	clock     clockz.Clock
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware(clock clockz.Clock) *RateLimitMiddleware {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &RateLimitMiddleware{
		requests: make(map[string][]time.Time),
		clock:    clock,
	}
}

// RateLimit allows maxRequests per window for each caller.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)
			if retry, ok := m.allow(key, maxRequests, window); !ok {
				log.WithFields(log.Fields{
					"caller": key,
					"path":   r.URL.Path,
				}).Warn("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow records a request for key unless the window is full, in which case
// it reports how long until the oldest request leaves the window.
func (m *RateLimitMiddleware) allow(key string, maxRequests int, window time.Duration) (time.Duration, bool) {
	now := m.clock.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastPrune) >= window {
		m.prune(windowStart)
		m.lastPrune = now
	}

	kept := m.requests[key][:0]
	for _, ts := range m.requests[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= maxRequests {
		m.requests[key] = kept
		return kept[0].Sub(windowStart), false
	}
	m.requests[key] = append(kept, now)
	return 0, true
}

// prune drops callers with nothing left in the window. Callers must hold mu.
func (m *RateLimitMiddleware) prune(windowStart time.Time) {
	for key, stamps := range m.requests {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(windowStart) {
			delete(m.requests, key)
		}
	}
}

func callerKey(r *http.Request) string {
	if claims, ok := GetRiderFromContext(r.Context()); ok {
		return "rider:" + claims.RiderID
	}
	return "ip:" + getClientIP(r)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
