package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
)

// Store manages rate limiters for multiple clients and categories.
type Store struct {
	limiters map[string]*Limiter
	rates    map[string]Rate
	maxIdle  time.Duration
	mu       sync.RWMutex
}

// NewStore creates a store with a default rate. Limiters idle for longer than
// maxIdle are removed by Sweep.
func NewStore(defaultRate Rate, maxIdle time.Duration) *Store {
	return &Store{
		limiters: make(map[string]*Limiter),
		rates:    map[string]Rate{constants.RateCategoryDefault: defaultRate},
		maxIdle:  maxIdle,
	}
}

// SetRate sets a rate limit for a specific category.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Allow consumes a token for clientID in category.
func (s *Store) Allow(clientID, category string) bool {
	return s.GetLimiter(clientID, category).Allow()
}

// GetLimiter returns the limiter for a client in a category, creating it on first use.
func (s *Store) GetLimiter(clientID, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while we waited for the write lock
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[constants.RateCategoryDefault]
	}
	limiter = NewLimiter(rate.RequestsPerSecond, rate.Burst)
	s.limiters[key] = limiter

	return limiter
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Sweep removes limiters that have been idle for longer than maxIdle and
// resets the map entirely if it grew past MaxTrackedLimiters.
func (s *Store) Sweep() int {
	cutoff := time.Now().Add(-s.maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.limiters) > constants.MaxTrackedLimiters {
		log.Warn().Int("limiters", len(s.limiters)).Msg("Rate limiter store growing too large, resetting")
		removed := len(s.limiters)
		s.limiters = make(map[string]*Limiter)
		return removed
	}

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.idleSince(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}

	return removed
}
