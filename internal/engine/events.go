// internal/engine/events.go
package engine

import (
	"context"
	"time"

	"github.com/jdharms/algoviz/internal/step"
)

// StatusEvent represents a lifecycle status update
type StatusEvent struct {
	State     EngineState `json:"state"`
	Algorithm string      `json:"algorithm,omitempty"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// StepEvent is delivered to observers after each applied step
type StepEvent struct {
	RunID     string    `json:"runId"`
	Index     int       `json:"index"`
	Kind      step.Kind `json:"kind"`
	Narrative string    `json:"narrative,omitempty"`
}

// EngineStats contains statistics about the engine state
type EngineStats struct {
	State       EngineState `json:"state"`
	Algorithm   string      `json:"algorithm"`
	RunID       string      `json:"run_id"`
	CurrentStep int         `json:"current_step"`
	TotalSteps  int         `json:"total_steps"`
	Progress    float64     `json:"progress"`
	Speed       float64     `json:"speed"`
	IsRunning   bool        `json:"is_running"`
}

// RegisterStatusChannel registers a new status event subscriber
func (e *Engine) RegisterStatusChannel(ctx context.Context) <-chan StatusEvent {
	e.subscriberMu.Lock()
	defer e.subscriberMu.Unlock()

	ch := make(chan StatusEvent, e.config.BufferSize)
	if e.closed {
		close(ch)
		return ch
	}
	e.statusSubscribers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		e.subscriberMu.Lock()
		if _, ok := e.statusSubscribers[ch]; ok {
			delete(e.statusSubscribers, ch)
			close(ch)
		}
		e.subscriberMu.Unlock()
	}()

	return ch
}

// OnStep registers an observer called after every applied step, from the
// playback goroutine. The returned function removes it.
func (e *Engine) OnStep(fn func(StepEvent)) func() {
	e.subscriberMu.Lock()
	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = fn
	e.subscriberMu.Unlock()

	return func() {
		e.subscriberMu.Lock()
		delete(e.observers, id)
		e.subscriberMu.Unlock()
	}
}

// publishStatus publishes a status event
func (e *Engine) publishStatus(state EngineState, algorithm, message string) {
	event := StatusEvent{
		State:     state,
		Algorithm: algorithm,
		Message:   message,
		Timestamp: time.Now(),
	}

	e.subscriberMu.RLock()
	for ch := range e.statusSubscribers {
		select {
		case ch <- event:
		default:
			e.logger.Warn("Status event subscriber channel is full")
		}
	}
	e.subscriberMu.RUnlock()
}

func (e *Engine) notifyStep(event StepEvent) {
	e.subscriberMu.RLock()
	observers := make([]func(StepEvent), 0, len(e.observers))
	for _, fn := range e.observers {
		observers = append(observers, fn)
	}
	e.subscriberMu.RUnlock()

	for _, fn := range observers {
		fn(event)
	}
}

// closeSubscribers closes every status channel
func (e *Engine) closeSubscribers() {
	e.subscriberMu.Lock()
	defer e.subscriberMu.Unlock()

	for ch := range e.statusSubscribers {
		close(ch)
	}
	e.statusSubscribers = make(map[chan StatusEvent]struct{})
	e.observers = make(map[int]func(StepEvent))
	e.closed = true
}

// GetStats returns current engine statistics
func (e *Engine) GetStats() EngineStats {
	e.mu.RLock()
	state := e.state
	var algorithm, runID string
	if r := e.current; r != nil {
		algorithm = r.info.Slug
		runID = r.id
	}
	e.mu.RUnlock()

	pb := e.store.Playback()
	var progress float64
	if pb.TotalSteps > 0 {
		progress = float64(pb.CurrentStep) / float64(pb.TotalSteps) * 100
	}

	return EngineStats{
		State:       state,
		Algorithm:   algorithm,
		RunID:       runID,
		CurrentStep: pb.CurrentStep,
		TotalSteps:  pb.TotalSteps,
		Progress:    progress,
		Speed:       pb.Speed,
		IsRunning:   state == StateRunning,
	}
}
