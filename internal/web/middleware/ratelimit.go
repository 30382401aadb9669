package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket each.
// Buckets idle for longer than the idle window are dropped by Cleanup.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	// OnLimited writes the response for a throttled request.
	OnLimited http.HandlerFunc

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute sustained requests per client with
// bursts of up to burst.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    burst,
		idle:     3 * time.Minute,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		OnLimited: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		},
	}
}

func (rl *RateLimiter) visitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Allow reports whether a request from ip may proceed now, and if not how
// long the client should wait.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	res := rl.visitor(ip).ReserveN(rl.now(), 1)
	if !res.OK() {
		return false, time.Minute
	}
	delay := res.DelayFrom(rl.now())
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(rl.now())
	return false, delay
}

// Handler is the middleware. It keys clients by RemoteAddr, so it must run
// after TrustedRealIP.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(clientIP(r.RemoteAddr))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			slog.Debug("rate limited", "ip", clientIP(r.RemoteAddr), "path", r.URL.Path, "retry_after", secs)
			rl.OnLimited(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Cleanup drops buckets not used within the idle window and returns how many.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// clientIP strips the port from a RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
