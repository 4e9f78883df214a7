package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window limiter keyed by user id.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter allows limit requests per key within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
// When it is not, retryAfter is the time until the oldest request leaves the window.
func (rl *RateLimiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	requests := rl.requests[key]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	if len(requests) >= rl.limit {
		rl.requests[key] = requests
		return false, requests[0].Add(rl.window).Sub(now)
	}
	if len(requests) == 0 && len(rl.requests) > 10000 {
		rl.sweep(cutoff)
	}
	rl.requests[key] = append(requests, now)
	return true, 0
}

// sweep drops keys whose requests all left the window.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for k, reqs := range rl.requests {
		if len(reqs) == 0 || !reqs[len(reqs)-1].After(cutoff) {
			delete(rl.requests, k)
		}
	}
}

// Middleware limits authenticated users by id and anonymous callers by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		ok, retryAfter := rl.Allow(key)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
			return
		}
		c.Next()
	}
}
