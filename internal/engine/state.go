// internal/engine/state.go
package engine

import "fmt"

// EngineState represents the lifecycle state of the playback engine
type EngineState int

const (
	StateIdle EngineState = iota
	StateLoaded
	StateRunning
	StatePaused
	StateComplete
	StateStopped
	StateError
)

// String returns the string representation of the engine state
func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoaded:
		return "Loaded"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateComplete:
		return "Complete"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the state by name
func (s EngineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CanPlay returns true if Play would start or resume a loop from this state
func (s EngineState) CanPlay() bool {
	switch s {
	case StateLoaded, StatePaused, StateStopped:
		return true
	default:
		return false
	}
}

// UnmarshalText decodes a state name written by MarshalText
func (s *EngineState) UnmarshalText(text []byte) error {
	for candidate := StateIdle; candidate <= StateError; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown engine state '%s'", text)
}
