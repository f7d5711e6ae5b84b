package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dentcheck/internal/config"
	"dentcheck/pkg/utils"
)

const (
	DefaultRequests = 20
	BurstSize       = 50

	VisitorTTL      = 5 * time.Minute
	CleanupInterval = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	enabled  bool
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	window := config.Duration(cfg.Window, time.Second)

	requests := cfg.Requests
	if requests <= 0 {
		requests = DefaultRequests
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = BurstSize
	}

	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		enabled:  cfg.Enabled,
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// forgetIdle removes visitors not seen since cutoff.
func (rl *RateLimiter) forgetIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// StartCleanup drops idle visitors until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.forgetIdle(time.Now().Add(-VisitorTTL))
		}
	}
}

// Middleware answers 429 once a client's bucket is empty.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.getVisitor(utils.GetRealIP(r)).Allow() {
			utils.WriteError(w, http.StatusTooManyRequests, utils.ErrRequestRateLimitExceeded, "Too many requests. Please wait a moment.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
