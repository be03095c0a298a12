// Package budget tracks the depth and wall-clock ceilings of a single
// research run.
package budget

import (
	"sync"
	"time"

	"github.com/sells-group/web-agent/internal/model"
)

// Tracker enforces a run's combined budget: at most maxDepth visited
// sources, and no fetch started once the deadline has passed.
type Tracker struct {
	mu       sync.Mutex
	deadline time.Time
	maxDepth int
	visited  int
	now      func() time.Time
}

// New creates a Tracker for the given source count and time ceilings.
func New(depth int, maxTime time.Duration) *Tracker {
	return NewWithClock(depth, maxTime, time.Now)
}

// NewWithClock creates a Tracker with an injected clock.
func NewWithClock(depth int, maxTime time.Duration, now func() time.Time) *Tracker {
	return &Tracker{
		deadline: now().Add(maxTime),
		maxDepth: depth,
		now:      now,
	}
}

// MayContinue reports whether another fetch may be dispatched.
func (t *Tracker) MayContinue() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visited < t.maxDepth && t.now().Before(t.deadline)
}

// RecordVisit counts one completed fetch attempt, success or failure.
// Must be called exactly once per attempt.
func (t *Tracker) RecordVisit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visited++
}

// Visited returns the number of attempts recorded so far.
func (t *Tracker) Visited() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visited
}

// Remaining returns the time left before the deadline, floored at zero.
func (t *Tracker) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.deadline.Sub(t.now()); r > 0 {
		return r
	}
	return 0
}

// FetchTimeout returns the timeout for the next fetch: the per-fetch
// ceiling capped by the remaining run budget, so one hung fetch cannot
// consume the whole run.
func (t *Tracker) FetchTimeout(ceiling time.Duration) time.Duration {
	if r := t.Remaining(); r < ceiling {
		return r
	}
	return ceiling
}

// StopReason reports which budget ran out. Depth exhaustion wins when
// both ceilings are hit.
func (t *Tracker) StopReason() model.StopReason {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visited >= t.maxDepth {
		return model.StopDepthExhausted
	}
	return model.StopTimeExhausted
}
