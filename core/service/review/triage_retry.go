// Package review implements the human-in-the-middle workflow: drafts
// enter a review queue, reviewers decide, decisions are terminal.
package review

import (
	"math/rand"
	"time"
)

// retrySchedule is the explicit retry state for one notification
// delivery: how many attempts remain and how long to wait before the
// next one. Delays grow exponentially with ±20% jitter and are capped
// at maxDelay.
type retrySchedule struct {
	attempt  int
	max      int
	delay    time.Duration
	maxDelay time.Duration
}

func newRetrySchedule(maxAttempts int, baseDelay, maxDelay time.Duration) *retrySchedule {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	return &retrySchedule{
		max:      maxAttempts,
		delay:    baseDelay,
		maxDelay: maxDelay,
	}
}

// Next consumes one attempt. It returns the jittered delay to wait
// before that attempt and false once the schedule is exhausted. The
// first attempt carries no delay.
func (s *retrySchedule) Next() (time.Duration, bool) {
	if s.attempt >= s.max {
		return 0, false
	}
	s.attempt++

	if s.attempt == 1 {
		return 0, true
	}

	d := s.delay
	// Exponential growth for the attempt after this one
	s.delay *= 2
	if s.delay > s.maxDelay {
		s.delay = s.maxDelay
	}

	// ±20% jitter keeps concurrent retries from thundering
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter), true
}

// Attempt reports how many attempts have been consumed.
func (s *retrySchedule) Attempt() int {
	return s.attempt
}

// Exhausted reports whether no attempts remain.
func (s *retrySchedule) Exhausted() bool {
	return s.attempt >= s.max
}
