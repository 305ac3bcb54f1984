// internal/engine/lifecycle.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

// ErrClosed is returned by operations on a closed engine
var ErrClosed = errors.New("engine is closed")

// prepared is a producer's output, built outside the engine lock
type prepared struct {
	producer algorithms.Producer
	info     algorithms.Info
	entities []scene.Entity
	seq      step.Sequence
	total    int
}

// prepare runs the producer's initializer, mapper and, when counting is
// enabled, a throwaway sequence to learn the step total
func (e *Engine) prepare(p algorithms.Producer) (prep *prepared, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.panicked()
			prep, err = nil, fmt.Errorf("producer panicked: %v", r)
		}
	}()

	info := p.Info()
	snapshot := p.Initialize()
	entities := p.MapToVisual(snapshot)

	total := 0
	if e.config.CountSteps {
		steps, err := step.Collect(p.Execute(snapshot), e.config.MaxCountedSteps)
		switch {
		case errors.Is(err, step.ErrTooManySteps):
			e.logger.WithFields(logrus.Fields{
				"algorithm": info.Slug,
				"limit":     e.config.MaxCountedSteps,
			}).Warn("Step count exceeds limit, total left unknown")
		case err != nil:
			return nil, fmt.Errorf("failed to count steps: %w", err)
		default:
			total = len(steps)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"algorithm": info.Slug,
		"input":     snapshot.Describe(),
		"entities":  len(entities),
		"steps":     total,
	}).Debug("Prepared algorithm")

	return &prepared{
		producer: p,
		info:     info,
		entities: entities,
		seq:      p.Execute(snapshot),
		total:    total,
	}, nil
}

// install discards the current run and makes prep the loaded one. Callers
// hold e.mu.
func (e *Engine) install(prep *prepared) {
	e.discard(e.current)

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:       uuid.NewString(),
		producer: prep.producer,
		info:     prep.info,
		seq:      prep.seq,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
	}
	e.current = r
	e.last = prep.producer

	info := prep.info
	e.store.LoadScene(&info, prep.entities, "Loaded: "+info.Name)
	e.store.SetTotalSteps(prep.total)

	e.logger.WithFields(logrus.Fields{
		"algorithm": info.Slug,
		"run":       r.id,
		"steps":     prep.total,
	}).Info("Algorithm loaded")
	e.setState(StateLoaded, fmt.Sprintf("Loaded: %s", info.Name))
	e.metrics.runLoaded(info.Slug)
}

// Load discards any in-flight run and loads p without starting it
func (e *Engine) Load(p algorithms.Producer) error {
	if e.isClosed() {
		return ErrClosed
	}

	prep, err := e.prepare(p)
	if err != nil {
		e.logger.WithError(err).Error("Failed to load algorithm")
		return fmt.Errorf("failed to load algorithm: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelReload()
	e.install(prep)
	return nil
}

// LoadByName resolves query against the registry and loads the match
func (e *Engine) LoadByName(query string) error {
	return e.LoadByNameWith(query, e.config.Producer)
}

// LoadByNameWith is LoadByName with explicit producer options
func (e *Engine) LoadByNameWith(query string, opts algorithms.Options) error {
	info, err := e.registry.Find(query)
	if err != nil {
		return err
	}

	p, err := e.registry.New(info.Slug, opts)
	if err != nil {
		return err
	}
	return e.Load(p)
}

// Reset discards the current run, clears the scene and schedules a reload
// of the last loaded algorithm
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelReload()
	e.discard(e.current)
	e.current = nil
	e.store.Reset()

	e.logger.Info("Playback reset")
	e.setState(StateIdle, "Reset")

	if e.last == nil || e.isClosed() {
		return
	}

	p := e.last
	gen := e.reloadGen
	e.reload = e.clock.AfterFunc(e.config.ReloadDelay, func() {
		e.reloadAfterReset(p, gen)
	})
}

// reloadAfterReset reloads p unless a Load, Reset or Close happened since
// the reload was scheduled
func (e *Engine) reloadAfterReset(p algorithms.Producer, gen uint64) {
	prep, err := e.prepare(p)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.reloadGen {
		e.logger.Debug("Reload superseded")
		return
	}
	e.reload = nil

	if err != nil {
		e.handleError(fmt.Errorf("failed to reload algorithm: %w", err))
		return
	}
	e.install(prep)
}

// Close stops playback, cancels pending callbacks and closes subscriber
// channels
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancelReload()
	e.discard(e.current)
	e.mu.Unlock()

	e.closeSubscribers()
	e.logger.Info("Engine closed")
}

func (e *Engine) isClosed() bool {
	e.subscriberMu.RLock()
	defer e.subscriberMu.RUnlock()
	return e.closed
}

// handleError logs err and moves the engine to the error state. Callers hold
// e.mu.
func (e *Engine) handleError(err error) {
	e.logger.WithError(err).Error("Playback engine error")
	e.setState(StateError, fmt.Sprintf("Error: %v", err))
}
