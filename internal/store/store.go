// Package store holds the observable visual state the engine writes and
// renderers read.
package store

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/algorithms"
	"github.com/jdharms/algoviz/internal/scene"
)

// ErrInvalidSpeed is returned for non-positive or non-finite speeds
var ErrInvalidSpeed = errors.New("speed must be a positive finite number")

// DefaultSpeed is the speed of a fresh store
const DefaultSpeed = 1.0

// SpeedPresets are the speeds the UIs cycle through
var SpeedPresets = []float64{0.25, 0.5, 1, 2}

// VisualState is what renderers draw
type VisualState struct {
	Entities        []scene.Entity `json:"entities"`
	ActiveIndices   []int          `json:"activeIndices"`
	HighlightedCode int            `json:"highlightedCode"`
	Narrative       string         `json:"narrative"`
}

func (v VisualState) clone() VisualState {
	v.Entities = scene.CloneAll(v.Entities)
	v.ActiveIndices = slices.Clone(v.ActiveIndices)
	return v
}

// Playback holds the transport flags and progress counters
type Playback struct {
	IsPlaying   bool    `json:"isPlaying"`
	IsPaused    bool    `json:"isPaused"`
	IsComplete  bool    `json:"isComplete"`
	Speed       float64 `json:"speed"`
	CurrentStep int     `json:"currentStep"`
	TotalSteps  int     `json:"totalSteps"`
}

// State is a full snapshot of the store
type State struct {
	Algorithm *algorithms.Info `json:"algorithm,omitempty"`
	Playback  Playback         `json:"playback"`
	Visual    VisualState      `json:"visual"`
	// Version increases with every change
	Version uint64 `json:"version"`
}

// VisualPatch is a shallow update. Nil fields are left unchanged.
type VisualPatch struct {
	Entities        []scene.Entity
	ActiveIndices   []int
	HighlightedCode *int
	Narrative       *string
}

// Ptr returns a pointer to v, for building patches
func Ptr[T any](v T) *T {
	return &v
}

// Store is the mutex-serialized visual state
type Store struct {
	logger *logrus.Logger

	mu    sync.RWMutex
	state State

	subMu       sync.Mutex
	subscribers map[int]chan struct{}
	nextSubID   int
}

// New creates a store at default speed with no algorithm loaded
func New(logger *logrus.Logger) *Store {
	return &Store{
		logger:      logger,
		state:       State{Playback: Playback{Speed: DefaultSpeed}},
		subscribers: make(map[int]chan struct{}),
	}
}

// GetState returns a deep copy of the current state
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	out.Visual = s.state.Visual.clone()
	if s.state.Algorithm != nil {
		info := *s.state.Algorithm
		out.Algorithm = &info
	}
	return out
}

// Playback returns the transport flags and counters
func (s *Store) Playback() Playback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Playback
}

// update applies fn under the write lock and notifies subscribers
func (s *Store) update(fn func(st *State)) {
	func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(&s.state)
		s.state.Version++
	}()

	s.notify()
}

// UpdateVisualState shallow-merges a patch into the visual state
func (s *Store) UpdateVisualState(p VisualPatch) {
	s.update(func(st *State) {
		if p.Entities != nil {
			st.Visual.Entities = p.Entities
		}
		if p.ActiveIndices != nil {
			st.Visual.ActiveIndices = p.ActiveIndices
		}
		if p.HighlightedCode != nil {
			st.Visual.HighlightedCode = *p.HighlightedCode
		}
		if p.Narrative != nil {
			st.Visual.Narrative = *p.Narrative
		}
	})
}

// Mutate runs fn against the live visual state. fn must not retain the
// pointer or the entity slice.
func (s *Store) Mutate(fn func(v *VisualState)) {
	s.update(func(st *State) {
		fn(&st.Visual)
	})
}

// Play marks playback as running
func (s *Store) Play() {
	s.update(func(st *State) {
		st.Playback.IsPlaying = true
		st.Playback.IsPaused = false
	})
}

// Pause marks playback as suspended
func (s *Store) Pause() {
	s.update(func(st *State) {
		st.Playback.IsPlaying = false
		st.Playback.IsPaused = true
	})
}

// Stop clears both transport flags
func (s *Store) Stop() {
	s.update(func(st *State) {
		st.Playback.IsPlaying = false
		st.Playback.IsPaused = false
	})
}

// Reset clears the scene and the counters. Speed and algorithm are kept.
func (s *Store) Reset() {
	s.update(func(st *State) {
		st.Playback = Playback{Speed: st.Playback.Speed}
		st.Visual = VisualState{Narrative: "Reset"}
	})
	s.logger.Debug("Store reset")
}

// SetSpeed changes the playback speed
func (s *Store) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	s.update(func(st *State) {
		st.Playback.Speed = speed
	})
	s.logger.WithField("speed", speed).Debug("Speed changed")
	return nil
}

// NextStep advances the step counter, clamped to the total when one is known
func (s *Store) NextStep() {
	s.update(func(st *State) {
		st.Playback.CurrentStep++
		if total := st.Playback.TotalSteps; total > 0 && st.Playback.CurrentStep > total {
			st.Playback.CurrentStep = total
		}
	})
}

// SetTotalSteps records the length of the loaded run
func (s *Store) SetTotalSteps(total int) {
	s.update(func(st *State) {
		st.Playback.TotalSteps = max(0, total)
	})
}

// SetComplete marks the run finished and stops playback
func (s *Store) SetComplete() {
	s.update(func(st *State) {
		st.Playback.IsComplete = true
		st.Playback.IsPlaying = false
		st.Playback.IsPaused = false
	})
}

// SetAlgorithm records the loaded algorithm
func (s *Store) SetAlgorithm(info *algorithms.Info) {
	s.update(func(st *State) {
		st.Algorithm = info
	})
}

// LoadScene replaces the scene for a freshly loaded algorithm and zeroes
// flags and counters. Speed is kept.
func (s *Store) LoadScene(info *algorithms.Info, entities []scene.Entity, narrative string) {
	s.update(func(st *State) {
		st.Algorithm = info
		st.Playback = Playback{Speed: st.Playback.Speed}
		st.Visual = VisualState{
			Entities:  entities,
			Narrative: narrative,
		}
	})
}
