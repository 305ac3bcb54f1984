package engine

import (
	"sync"
	"time"
)

// TestClock is a Clock for tests. Waits complete immediately and are
// recorded; deferred callbacks are held until FireTimers.
type TestClock struct {
	mu     sync.Mutex
	waits  []time.Duration
	timers []*testTimer
}

type testTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *testTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// claim marks the timer fired, reporting whether it was still pending
func (t *testTimer) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.fired = true
	return true
}

// NewTestClock creates a clock that never sleeps
func NewTestClock() *TestClock {
	return &TestClock{}
}

// After implements Clock
func (c *TestClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// AfterFunc implements Clock
func (c *TestClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &testTimer{delay: d, f: f}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

// Waits returns every duration passed to After, in order
func (c *TestClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// Total returns the sum of all recorded waits
func (c *TestClock) Total() time.Duration {
	var sum time.Duration
	for _, d := range c.Waits() {
		sum += d
	}
	return sum
}

// Pending returns the delays of callbacks that are neither stopped nor fired
func (c *TestClock) Pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []time.Duration
	for _, t := range c.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			out = append(out, t.delay)
		}
		t.mu.Unlock()
	}
	return out
}

// FireTimers synchronously runs every pending callback and returns how many
// ran. Callbacks scheduled while firing wait for the next call.
func (c *TestClock) FireTimers() int {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	fired := 0
	for _, t := range timers {
		if t.claim() {
			t.f()
			fired++
		}
	}
	return fired
}
