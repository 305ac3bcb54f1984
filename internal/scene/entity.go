// internal/scene/entity.go
package scene

import (
	"fmt"
	"maps"
)

// Kind identifies the visual primitive used to draw an entity
type Kind string

const (
	KindBar       Kind = "bar"       // linear bar (pillar)
	KindSphere    Kind = "sphere"    // node sphere (orb)
	KindConnector Kind = "connector" // line between two nodes
	KindTile      Kind = "tile"      // floor tile on a grid
	KindFrame     Kind = "frame"     // bounding frame around a range
)

// Valid reports whether k is one of the known entity kinds
func (k Kind) Valid() bool {
	switch k {
	case KindBar, KindSphere, KindConnector, KindTile, KindFrame:
		return true
	default:
		return false
	}
}

// State is the visual state label of an entity. Meaning is producer-defined,
// appearance is renderer-defined.
type State string

const (
	StateDefault   State = "default"
	StateActive    State = "active"
	StateCompare   State = "compare"
	StateSwap      State = "swap"
	StateLeft      State = "left"
	StateRight     State = "right"
	StateVisited   State = "visited"
	StateSorted    State = "sorted"
	StateQueue     State = "queue"
	StateWall      State = "wall"
	StatePath      State = "path"
	StateObstacle  State = "obstacle"
	StateOverwrite State = "overwrite"
)

// States lists every known state in display order
var States = []State{
	StateDefault, StateActive, StateCompare, StateSwap, StateLeft, StateRight,
	StateVisited, StateSorted, StateQueue, StateWall, StatePath, StateObstacle,
	StateOverwrite,
}

// ParseState converts a string into a known State
func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown entity state '%s'", s)
}

// Vec3 is a position in scene space
type Vec3 [3]float64

// X returns the first component
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component
func (v Vec3) Z() float64 { return v[2] }

// Entity is a single renderable object tracked by a stable id
type Entity struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"type"`
	Position Vec3           `json:"position"`
	Value    float64        `json:"value"`
	Height   float64        `json:"height,omitempty"`
	State    State          `json:"state"`
	Label    string         `json:"label,omitempty"`
	Active   bool           `json:"active,omitempty"`
	Points   []Vec3         `json:"points,omitempty"`
	Width    float64        `json:"width,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
}

// Clone returns a copy that shares no mutable memory with e
func (e Entity) Clone() Entity {
	out := e
	if e.Points != nil {
		out.Points = append([]Vec3(nil), e.Points...)
	}
	if e.Props != nil {
		out.Props = maps.Clone(e.Props)
	}
	return out
}

// CloneAll deep-copies an entity list
func CloneAll(entities []Entity) []Entity {
	if entities == nil {
		return nil
	}
	out := make([]Entity, len(entities))
	for i := range entities {
		out[i] = entities[i].Clone()
	}
	return out
}
