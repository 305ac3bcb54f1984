// internal/engine/manual_controls.go
package engine

import (
	"slices"

	"github.com/jdharms/algoviz/internal/store"
)

// ErrInvalidSpeed is returned by SetSpeed for non-positive or non-finite speeds
var ErrInvalidSpeed = store.ErrInvalidSpeed

// Play starts or resumes the loaded run. It is a no-op when nothing is
// loaded, the run is exhausted, or a loop is already applying steps.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.current
	if r == nil || r.exhausted || !e.live(r) {
		e.logger.Debug("Play ignored, nothing to play")
		return
	}

	if r.executing {
		pb := e.store.Playback()
		if pb.IsPlaying {
			return
		}
		e.store.Play()
		r.nudge()
		e.logger.Info("Playback resumed")
		e.setState(StateRunning, "Playing")
		return
	}

	r.executing = true
	e.store.Play()
	e.logger.WithField("algorithm", r.info.Slug).Info("Playback started")
	e.setState(StateRunning, "Playing")
	go e.drive(r)
}

// Pause suspends the run at the next step boundary
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.current
	if r == nil || r.exhausted {
		return
	}

	e.store.Pause()
	e.logger.Info("Playback paused")
	if r.executing {
		e.setState(StatePaused, "Paused")
	}
}

// Stop halts the drive loop without discarding the run. A later Play
// continues from the next step.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.current
	if r == nil {
		return
	}

	e.store.Stop()
	r.nudge()
	e.logger.Info("Playback stopped")
	if !r.executing && !r.exhausted {
		e.setState(StateStopped, "Stopped")
	}
}

// TogglePlay pauses a running loop and plays otherwise
func (e *Engine) TogglePlay() {
	if e.store.Playback().IsPlaying {
		e.Pause()
		return
	}
	e.Play()
}

// SetSpeed changes the playback speed. It applies from the next wait.
func (e *Engine) SetSpeed(speed float64) error {
	return e.store.SetSpeed(speed)
}

// CycleSpeed moves to the next (or previous) speed preset and returns it
func (e *Engine) CycleSpeed(forward bool) float64 {
	current := e.store.Playback().Speed

	i := slices.Index(store.SpeedPresets, current)
	switch {
	case i < 0:
		i = slices.Index(store.SpeedPresets, store.DefaultSpeed)
	case forward:
		i = min(i+1, len(store.SpeedPresets)-1)
	default:
		i = max(i-1, 0)
	}

	speed := store.SpeedPresets[i]
	if err := e.store.SetSpeed(speed); err != nil {
		e.logger.WithError(err).Warn("Failed to change speed")
		return current
	}
	return speed
}

// nudge wakes a paused loop without blocking
func (r *run) nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}
