package notification

import (
	"sync"
	"time"
)

// RateLimiter caps how many notifications may be created inside a sliding
// window, protecting the store from notification storms.
type RateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	maxEvents int
	events    []time.Time
}

// NewRateLimiter creates a sliding-window rate limiter
func NewRateLimiter(window time.Duration, maxEvents int) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxEvents <= 0 {
		maxEvents = 100
	}
	return &RateLimiter{
		window:    window,
		maxEvents: maxEvents,
	}
}

// Allow reports whether another event fits in the current window and records
// it when it does.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	// Drop events that fell out of the window
	kept := rl.events[:0]
	for _, ts := range rl.events {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	rl.events = kept

	if len(rl.events) >= rl.maxEvents {
		return false
	}

	rl.events = append(rl.events, now)
	return true
}
