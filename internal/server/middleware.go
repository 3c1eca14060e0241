package server

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

const (
	// Webhook rate limit: 10 requests per 15-minute window per source IP.
	RateLimitRequests = 10
	RateLimitWindow   = 15 * 60 // seconds
)

// RateLimiter implements a token bucket rate limiter per source IP address.
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit // requests per second
	burstSize int
}

// NewRateLimiter creates a new rate limiter.
// rateLimit: sustained requests per second; burstSize: bucket capacity.
func NewRateLimiter(rateLimit rate.Limit, burstSize int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rateLimit,
		burstSize: burstSize,
	}
}

// GetLimiter returns the rate limiter for a given IP address, creating one
// on first sight.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rateLimit, rl.burstSize)
		rl.limiters[ip] = limiter
	}

	return limiter
}

// NewRateLimitMiddleware limits each source IP to RateLimitRequests per
// RateLimitWindow. Requests over the limit are rejected with 429 before any
// body read or signature work happens.
func NewRateLimitMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	rps := rate.Limit(float64(RateLimitRequests) / float64(RateLimitWindow))
	limiter := NewRateLimiter(rps, RateLimitRequests)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr

			if !limiter.GetLimiter(ip).Allow() {
				logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
