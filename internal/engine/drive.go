// internal/engine/drive.go
package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/step"
	"github.com/jdharms/algoviz/internal/store"
)

// drive applies r's steps in order until the sequence is exhausted, playback
// stops, or r is discarded. Exactly one drive goroutine exists per run at a
// time; Play enforces that through run.executing.
func (e *Engine) drive(r *run) {
	e.metrics.loopStarted()
	defer e.metrics.loopExited()

	log := e.logger.WithFields(logrus.Fields{
		"algorithm": r.info.Slug,
		"run":       r.id,
	})
	log.Debug("Playback loop started")
	defer log.Debug("Playback loop exited")

	for {
		if !e.checkpoint(r) {
			return
		}

		st, ok, err := e.next(r)
		if err != nil {
			e.fail(r, err)
			return
		}
		if !ok {
			e.complete(r)
			return
		}

		started := time.Now()
		e.apply(r, st)

		var index int
		if !e.mutate(r, func() {
			e.store.NextStep()
			r.index++
			index = r.index
		}) {
			return
		}
		e.metrics.stepApplied(string(st.Kind()), time.Since(started))

		e.notifyStep(StepEvent{
			RunID:     r.id,
			Index:     index,
			Kind:      st.Kind(),
			Narrative: st.Narration(),
		})
	}
}

// checkpoint is the step boundary. It returns true when the loop should pull
// the next step, parks while paused, and clears the executing latch when
// playback was stopped.
func (e *Engine) checkpoint(r *run) bool {
	for {
		e.mu.Lock()
		if !e.live(r) {
			e.mu.Unlock()
			return false
		}

		pb := e.store.Playback()
		switch {
		case pb.IsPlaying:
			if e.state == StatePaused {
				e.setState(StateRunning, "Playing")
			}
			e.mu.Unlock()
			return true
		case pb.IsPaused:
			if e.state != StatePaused {
				e.setState(StatePaused, "Paused")
			}
			e.mu.Unlock()
			if !e.park(r) {
				return false
			}
		default:
			r.executing = false
			e.setState(StateStopped, "Stopped")
			e.mu.Unlock()
			return false
		}
	}
}

// park blocks a paused loop until it is nudged, the poll interval elapses,
// or the run is discarded
func (e *Engine) park(r *run) bool {
	var poll <-chan time.Time
	if d := e.config.PausePollInterval; d > 0 {
		poll = e.clock.After(d)
	}

	select {
	case <-r.ctx.Done():
		return false
	case <-r.wake:
		return true
	case <-poll:
		return true
	}
}

// next resumes the sequence once, converting a panic into an error
func (e *Engine) next(r *run) (st step.Step, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			st, ok = nil, false
			err = fmt.Errorf("step sequence panicked: %v", p)
		}
	}()
	st, ok = r.seq.Next()
	return st, ok, nil
}

// complete marks an exhausted run
func (e *Engine) complete(r *run) {
	e.mutate(r, func() {
		r.exhausted = true
		r.executing = false
		e.store.SetComplete()

		e.logger.WithFields(logrus.Fields{
			"algorithm": r.info.Slug,
			"steps":     r.index,
		}).Info("Playback complete")
		e.setState(StateComplete, fmt.Sprintf("%s complete", r.info.Name))
		e.metrics.runCompleted(r.info.Slug)
	})
}

// fail ends a run whose sequence can no longer be resumed
func (e *Engine) fail(r *run, err error) {
	e.metrics.panicked()
	e.mutate(r, func() {
		r.exhausted = true
		r.executing = false
		e.store.Stop()
		e.handleError(err)
	})
}

// wait sleeps for units reference units scaled by the current speed. It
// returns false if the run was discarded meanwhile.
func (e *Engine) wait(r *run, units float64) bool {
	if units <= 0 {
		return r.ctx.Err() == nil
	}

	speed := e.store.Playback().Speed
	if speed <= 0 {
		speed = store.DefaultSpeed
	}
	d := time.Duration(units / speed * float64(e.config.PacingUnit))

	select {
	case <-r.ctx.Done():
		return false
	case <-e.clock.After(d):
		return true
	}
}
