package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	remaining float64
	updated   time.Time
}

// RateLimiter is a per-IP token bucket. Counters live in memory, which is
// enough for a single API instance behind the checkpoint kiosks.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	refill  float64 // tokens per second
	size    float64
	exempt  map[string]struct{}
}

func NewRateLimiter(rps float64, burst int, exemptPaths ...string) *RateLimiter {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		refill:  rps,
		size:    float64(burst),
		exempt:  exempt,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := rl.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		remaining, allowed := rl.take(r.RemoteAddr)
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "trop de requêtes, réessayez dans un instant"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) take(key string) (int, bool) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{remaining: rl.size, updated: now}
		rl.buckets[key] = b
	}

	b.remaining += now.Sub(b.updated).Seconds() * rl.refill
	if b.remaining > rl.size {
		b.remaining = rl.size
	}
	b.updated = now

	if b.remaining < 1 {
		return 0, false
	}
	b.remaining--
	return int(b.remaining), true
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-3 * time.Minute)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if b.updated.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}
