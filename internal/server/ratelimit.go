package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// executePath is the Execute now endpoint; it draws from its own bucket.
const executePath = "/api/v1/pulse/execute"

// RateLimitConfig sets the per-client token buckets. Execute now requests are
// charged to the general bucket and to the execute bucket.
type RateLimitConfig struct {
	RPS          float64 `mapstructure:"rps"`
	Burst        int     `mapstructure:"burst"`
	ExecuteRPS   float64 `mapstructure:"execute_rps"`
	ExecuteBurst int     `mapstructure:"execute_burst"`
}

// DefaultRateLimitConfig returns the limits used when none are configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RPS: 100, Burst: 200, ExecuteRPS: 5, ExecuteBurst: 10}
}

// RateLimitMiddleware enforces per-IP rate limiting. A non-positive rate
// disables the corresponding bucket. Paths in skipPaths are never limited.
func RateLimitMiddleware(cfg RateLimitConfig, skipPaths []string) Middleware {
	general := newIPRateLimiter(cfg.RPS, cfg.Burst)
	execute := newIPRateLimiter(cfg.ExecuteRPS, cfg.ExecuteBurst)
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !general.allow(ip) {
				httpRateLimitedTotal.WithLabelValues("api").Inc()
				RateLimited(w, "rate limit exceeded", r.URL.Path)
				return
			}
			if r.Method == http.MethodPost && r.URL.Path == executePath && !execute.allow(ip) {
				httpRateLimitedTotal.WithLabelValues("execute").Inc()
				RateLimited(w, "too many Execute now requests, retry shortly", r.URL.Path)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

// ipRateLimiter tracks per-IP token-bucket rate limiters. A nil limiter
// allows everything.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimitEntry
	rateVal   rate.Limit
	burst     int
	lastSweep time.Time
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limiters:  make(map[string]*rateLimitEntry),
		rateVal:   rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		l.sweep(now)
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &rateLimitEntry{limiter: rate.NewLimiter(l.rateVal, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// sweep drops clients idle for longer than limiterIdleTTL. Callers hold l.mu.
func (l *ipRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for ip, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// clientIP extracts the client IP from the request, preferring the first
// X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
