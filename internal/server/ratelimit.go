package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/raaihank/clipboard-cleaner/internal/config"
)

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	enabled bool
	limit   rate.Limit
	burst   int

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopOnce sync.Once
	stop     chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter from the server settings
func NewRateLimiter(cfg config.ServerConfig) *RateLimiter {
	burst := cfg.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		enabled: cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond > 0,
		limit:   rate.Limit(cfg.RateLimit.RequestsPerSecond),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
}

// Allow reports whether a request from client may proceed now
func (r *RateLimiter) Allow(client string) bool {
	if !r.enabled {
		return true
	}

	r.mu.Lock()
	cl, ok := r.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	r.mu.Unlock()

	return cl.limiter.Allow()
}

// Len returns the number of tracked clients
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Cleanup forgets clients not seen for longer than maxIdle
func (r *RateLimiter) Cleanup(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	for client, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, client)
		}
	}
}

// StartCleanupRoutine periodically drops idle clients until Stop is called
func (r *RateLimiter) StartCleanupRoutine(interval time.Duration) {
	if !r.enabled {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Cleanup(limiterIdle)
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup routine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
