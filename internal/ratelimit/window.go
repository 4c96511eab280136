// Package ratelimit provides a keyed sliding-window request limiter for
// outbound institution calls.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow is the sliding window length applied to every key.
const DefaultWindow = time.Minute

// Keyed limits requests per institution key over a sliding window.
// A full window rejects the request immediately rather than queueing it.
// Safe for concurrent use.
type Keyed struct {
	mu       sync.Mutex
	window   time.Duration
	limits   map[string]int
	fallback int
	stamps   map[string][]time.Time
	now      func() time.Time
}

// Option configures a Keyed limiter.
type Option func(*Keyed)

// WithClock overrides the time source. Used by tests to advance the window.
func WithClock(now func() time.Time) Option {
	return func(k *Keyed) { k.now = now }
}

// WithWindow overrides the sliding window length.
func WithWindow(d time.Duration) Option {
	return func(k *Keyed) { k.window = d }
}

// NewKeyed creates a limiter with per-key capacities. Keys missing from
// limits use fallbackLimit; fallbackLimit <= 0 means unknown keys are
// unlimited.
func NewKeyed(limits map[string]int, fallbackLimit int, opts ...Option) *Keyed {
	k := &Keyed{
		window:   DefaultWindow,
		limits:   make(map[string]int, len(limits)),
		fallback: fallbackLimit,
		stamps:   make(map[string][]time.Time),
		now:      time.Now,
	}
	for key, limit := range limits {
		k.limits[key] = limit
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Allow records a request against key and reports whether it fits in the
// current window. A rejected request is not recorded.
func (k *Keyed) Allow(key string) bool {
	limit, ok := k.limits[key]
	if !ok {
		limit = k.fallback
	}
	if limit <= 0 {
		return true
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	cutoff := now.Add(-k.window)

	valid := k.stamps[key][:0]
	for _, ts := range k.stamps[key] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= limit {
		k.stamps[key] = valid
		return false
	}

	k.stamps[key] = append(valid, now)
	return true
}

// Remaining returns how many requests are left in the current window for key.
func (k *Keyed) Remaining(key string) int {
	limit, ok := k.limits[key]
	if !ok {
		limit = k.fallback
	}
	if limit <= 0 {
		return -1
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-k.window)
	n := 0
	for _, ts := range k.stamps[key] {
		if ts.After(cutoff) {
			n++
		}
	}
	if n > limit {
		n = limit
	}
	return limit - n
}

// Reset clears all recorded requests. Used between tests.
func (k *Keyed) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stamps = make(map[string][]time.Time)
}
