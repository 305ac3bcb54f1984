// internal/engine/clock.go
package engine

import "time"

// Clock schedules the engine's waits and deferred callbacks
type Clock interface {
	// After returns a channel that receives once d has elapsed
	After(d time.Duration) <-chan time.Time
	// AfterFunc runs f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable deferred callback
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// RealClock is the wall clock
type RealClock struct{}

// NewRealClock creates a wall clock
func NewRealClock() *RealClock {
	return &RealClock{}
}

// After implements Clock
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// AfterFunc implements Clock
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
