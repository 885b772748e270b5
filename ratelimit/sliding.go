package ratelimit

import (
	"sync"
	"time"
)

// Policy names a per-action budget: at most Limit admissions per key within
// any trailing Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Default budgets carried by the platform's sensitive actions.
var (
	// PolicyLogin throttles login attempts per client address.
	PolicyLogin = Policy{Limit: 8, Window: time.Minute}
	// PolicyRegister throttles registrations per client address.
	PolicyRegister = Policy{Limit: 5, Window: time.Minute}
	// PolicyAIAssist throttles AI-assistance calls per authenticated user.
	PolicyAIAssist = Policy{Limit: 20, Window: time.Minute}
)

// Sliding is an in-memory sliding-window limiter. All methods are safe for
// concurrent use; the count-then-record step is serialized so concurrent
// callers can never both take the last slot.
type Sliding struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewSliding describes the newsliding operation and its observable behavior.
//
// NewSliding does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSliding() *Sliding {
	return NewSlidingClock(time.Now)
}

// NewSlidingClock builds a limiter on an injected clock so tests can drive
// the window deterministically.
func NewSlidingClock(now func() time.Time) *Sliding {
	if now == nil {
		now = time.Now
	}
	return &Sliding{
		windows: make(map[string][]time.Time),
		now:     now,
	}
}

// Allow evicts admissions for key older than now-window, then admits and
// records the call unless the remaining count has reached limit. Denied
// calls record nothing, so a steady flood cannot push the window forward.
func (s *Sliding) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 || window <= 0 {
		return false
	}

	now := s.now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamps := s.windows[key]

	// Admissions are appended in order, so the survivors are a suffix.
	// Timestamps exactly at the cutoff still count against the budget.
	keep := 0
	for keep < len(timestamps) && timestamps[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		timestamps = append(timestamps[:0], timestamps[keep:]...)
	}

	if len(timestamps) >= limit {
		s.windows[key] = timestamps
		return false
	}

	s.windows[key] = append(timestamps, now)
	return true
}

// AllowPolicy applies a named policy to key.
func (s *Sliding) AllowPolicy(key string, p Policy) bool {
	return s.Allow(key, p.Limit, p.Window)
}

// AllowN admits n calls for key as one all-or-nothing reservation: either
// every slot fits inside the window or nothing is recorded. n <= 0 is
// rejected outright.
func (s *Sliding) AllowN(key string, n, limit int, window time.Duration) bool {
	if n <= 0 || limit <= 0 || window <= 0 {
		return false
	}

	now := s.now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamps := s.windows[key]

	keep := 0
	for keep < len(timestamps) && timestamps[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		timestamps = append(timestamps[:0], timestamps[keep:]...)
	}

	if len(timestamps)+n > limit {
		s.windows[key] = timestamps
		return false
	}

	for i := 0; i < n; i++ {
		timestamps = append(timestamps, now)
	}
	s.windows[key] = timestamps
	return true
}

// Len reports the number of currently tracked keys. Intended for tests and
// introspection, not for enforcement decisions.
func (s *Sliding) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
