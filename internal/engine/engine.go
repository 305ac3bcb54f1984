// internal/engine/engine.go
package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/step"
	"github.com/jdharms/algoviz/internal/store"
)

// Engine drives a producer's step sequence into the visual state store
type Engine struct {
	logger   *logrus.Logger
	store    *store.Store
	registry *algorithms.Registry
	config   *Config
	clock    Clock
	metrics  *Metrics

	// Runtime state
	mu        sync.RWMutex
	state     EngineState
	current   *run
	last      algorithms.Producer
	reload    Timer
	reloadGen uint64

	// Event fan-out
	subscriberMu      sync.RWMutex
	statusSubscribers map[chan StatusEvent]struct{}
	observers         map[int]func(StepEvent)
	nextObserver      int
	closed            bool
}

// run is one loaded computation. Everything except seq is guarded by
// Engine.mu; seq is only advanced by the single drive goroutine.
type run struct {
	id       string
	producer algorithms.Producer
	info     algorithms.Info
	seq      step.Sequence

	ctx    context.Context
	cancel context.CancelFunc
	// wake nudges a paused drive loop after Play or Stop
	wake chan struct{}

	executing bool
	exhausted bool
	index     int
	timers    []Timer
}

// NewEngine creates a new playback engine. A nil registry disables lookups by
// name; a nil config uses DefaultConfig.
func NewEngine(
	logger *logrus.Logger,
	st *store.Store,
	registry *algorithms.Registry,
	config *Config,
) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.PacingUnit <= 0 {
		config.PacingUnit = DefaultConfig().PacingUnit
	}
	clock := config.Clock
	if clock == nil {
		clock = NewRealClock()
	}
	if registry == nil {
		registry = algorithms.NewRegistry()
	}

	return &Engine{
		logger:            logger,
		store:             st,
		registry:          registry,
		config:            config,
		clock:             clock,
		metrics:           config.Metrics,
		state:             StateIdle,
		statusSubscribers: make(map[chan StatusEvent]struct{}),
		observers:         make(map[int]func(StepEvent)),
	}
}

// Store returns the visual state store the engine writes to
func (e *Engine) Store() *store.Store {
	return e.store
}

// Metrics returns the metrics sink, which may be nil
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// GetState returns the current engine state
func (e *Engine) GetState() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// IsRunning returns true while a drive loop is applying steps
func (e *Engine) IsRunning() bool {
	return e.GetState() == StateRunning
}

// Algorithms returns the metadata of every registered algorithm
func (e *Engine) Algorithms() []algorithms.Info {
	return e.registry.List()
}

// Current returns the metadata of the loaded algorithm
func (e *Engine) Current() (algorithms.Info, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return algorithms.Info{}, false
	}
	return e.current.info, true
}

// setState changes the engine state and publishes it. Callers hold e.mu.
func (e *Engine) setState(state EngineState, message string) {
	old := e.state
	e.state = state

	var algorithm string
	if e.current != nil {
		algorithm = e.current.info.Slug
	}
	if old != state {
		e.logger.WithFields(logrus.Fields{
			"from":      old.String(),
			"to":        state.String(),
			"algorithm": algorithm,
		}).Debug("Engine state changed")
	}
	e.publishStatus(state, algorithm, message)
}

// live reports whether r is still the loaded run. Callers hold e.mu.
func (e *Engine) live(r *run) bool {
	return e.current == r && r.ctx.Err() == nil
}

// mutate runs fn under the engine lock if r is still live. Every store write
// made on behalf of a run goes through here so a discarded run cannot touch
// the scene of its successor.
func (e *Engine) mutate(r *run, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.live(r) {
		return false
	}
	fn()
	return true
}

// discard stops r and cancels its deferred callbacks. Callers hold e.mu.
func (e *Engine) discard(r *run) {
	if r == nil {
		return
	}
	r.cancel()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
	r.executing = false
}

// cancelReload drops any pending automatic reload. Callers hold e.mu.
func (e *Engine) cancelReload() {
	e.reloadGen++
	if e.reload != nil {
		e.reload.Stop()
		e.reload = nil
	}
}
