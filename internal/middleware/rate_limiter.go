package middleware

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a caller may issue another mutating request.
type Limiter interface {
	AllowUser(ctx context.Context, userID uint) (bool, error)
	AllowIP(ctx context.Context, ip string) (bool, error)
}

// RateLimiter implements a simple in-memory rate limiter
type RateLimiter struct {
	userLimits map[uint]*windowCount
	ipLimits   map[string]*windowCount
	mu         sync.Mutex

	userMaxRequests int
	ipMaxRequests   int
	window          time.Duration

	stop      chan struct{}
	closeOnce sync.Once
}

type windowCount struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(userMaxRequests, ipMaxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		userLimits:      make(map[uint]*windowCount),
		ipLimits:        make(map[string]*windowCount),
		userMaxRequests: userMaxRequests,
		ipMaxRequests:   ipMaxRequests,
		window:          window,
		stop:            make(chan struct{}),
	}

	// Start cleanup goroutine
	go rl.cleanup()

	return rl
}

// AllowUser checks if user has exceeded rate limit
func (rl *RateLimiter) AllowUser(_ context.Context, userID uint) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return hit(rl.userLimits, userID, rl.userMaxRequests, rl.window), nil
}

// AllowIP checks if IP has exceeded rate limit
func (rl *RateLimiter) AllowIP(_ context.Context, ip string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return hit(rl.ipLimits, ip, rl.ipMaxRequests, rl.window), nil
}

func hit[K comparable](limits map[K]*windowCount, key K, max int, window time.Duration) bool {
	now := time.Now()

	limit, exists := limits[key]
	if !exists || now.After(limit.resetTime) {
		limits[key] = &windowCount{
			requests:  1,
			resetTime: now.Add(window),
		}
		return max > 0
	}

	if limit.requests >= max {
		return false
	}

	limit.requests++
	return true
}

// cleanup removes expired entries
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		now := time.Now()

		for userID, limit := range rl.userLimits {
			if now.After(limit.resetTime) {
				delete(rl.userLimits, userID)
			}
		}

		for ip, limit := range rl.ipLimits {
			if now.After(limit.resetTime) {
				delete(rl.ipLimits, ip)
			}
		}

		rl.mu.Unlock()
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() error {
	rl.closeOnce.Do(func() { close(rl.stop) })
	return nil
}

// Reset clears all rate limits (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.userLimits = make(map[uint]*windowCount)
	rl.ipLimits = make(map[string]*windowCount)
}
