// Package ratelimit provides token bucket rate limiting for the login, sign-up
// and API endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket for a single client in a single category.
// Tokens are added at a fixed rate and each request consumes one.
type Limiter struct {
	tokens   float64
	lastTime time.Time
	rate     float64
	capacity float64
	mu       sync.Mutex
}

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// NewLimiter creates a new rate limiter with the specified rate and burst capacity.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		tokens:   float64(burst),
		lastTime: time.Now(),
		rate:     rate,
		capacity: float64(burst),
	}
}

// Allow reports whether a request may proceed and consumes a token if so.
func (l *Limiter) Allow() bool {
	return l.allowAt(time.Now())
}

func (l *Limiter) allowAt(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := now.Sub(l.lastTime).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		l.lastTime = now
	}
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// idleSince reports whether the bucket has not been touched since cutoff
func (l *Limiter) idleSince(cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTime.Before(cutoff)
}
