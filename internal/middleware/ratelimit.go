package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"linkup/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per authenticated user with a token bucket.
// Idle buckets are evicted so the map does not grow with the user base.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[uuid.UUID]*userLimiter
	rate     rate.Limit
	burst    int
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[uuid.UUID]*userLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) limiterFor(userID uuid.UUID) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	entry, ok := rl.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *RateLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for userID, entry := range rl.limiters {
			if time.Since(entry.lastSeen) > 3*time.Minute {
				delete(rl.limiters, userID)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether the user may perform another request right now.
func (rl *RateLimiter) Allow(userID uuid.UUID) bool {
	return rl.limiterFor(userID).Allow()
}

// Middleware rejects over-limit requests with 429. Requests without an
// authenticated user pass through; the auth middleware already handles those.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if ok && !rl.Allow(userID) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Too many requests, slow down",
				"code":  utils.ErrTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
