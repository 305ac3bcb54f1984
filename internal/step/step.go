// Package step defines the animation frames algorithms emit and the
// resumable computations that produce them.
//
// A Step is one atomic unit of algorithmic progress. The set of kinds is
// closed: every concrete type lives in this package and satisfies Step
// through an unexported marker method, so consumers can switch over the
// types and keep an explicit default arm for Unknown frames decoded from
// external traces.
package step

import "github.com/jdharms/algoviz/internal/scene"

// Kind is the wire tag of a step
type Kind string

const (
	KindCompare        Kind = "compare"
	KindSwap           Kind = "swap"
	KindHighlightCode  Kind = "highlight_code"
	KindDelay          Kind = "delay"
	KindCelebrate      Kind = "celebrate"
	KindComplete       Kind = "complete"
	KindActivateNode   Kind = "activate_node"
	KindVisitNode      Kind = "visit_node"
	KindHighlightEdge  Kind = "highlight_edge"
	KindUpdateTile     Kind = "update_tile"
	KindUpdateVisual   Kind = "update_visual"
	KindActivatePillar Kind = "activate_pillar"
	KindActivateSphere Kind = "activate_sphere"
	KindActivateOrb    Kind = "activate_orb"
	KindMove           Kind = "move"
	KindUpdateHeight   Kind = "update_height"
	KindOverwrite      Kind = "overwrite"
)

// Step is a single animation frame
type Step interface {
	// Kind returns the wire tag of the step
	Kind() Kind
	// Narration returns the optional human-readable narrative
	Narration() string

	isStep()
}

// Compare highlights entities (by list position) being compared
type Compare struct {
	Targets   []int
	Narrative string
}

// Swap exchanges two entities (by list position)
type Swap struct {
	Targets   []int
	Narrative string
}

// HighlightCode moves the source highlight to a 1-based line
type HighlightCode struct {
	Line      int
	Narrative string
}

// Delay pauses playback for Duration reference units
type Delay struct {
	Duration  float64
	Narrative string
}

// Celebrate marks entities (by list position) as sorted
type Celebrate struct {
	Targets   []int
	Narrative string
}

// Complete announces that the algorithm finished
type Complete struct {
	Narrative string
}

// ActivateNode marks graph node entity node-<Node> active
type ActivateNode struct {
	Node      string
	Narrative string
}

// VisitNode marks graph node entity node-<Node> active, then visited
type VisitNode struct {
	Node      string
	Narrative string
}

// HighlightEdge lights up connector edge-<From>-<To>
type HighlightEdge struct {
	From      string
	To        string
	Narrative string
}

// UpdateTile sets the state of grid entity tile-<Tile>
type UpdateTile struct {
	Tile      string
	State     scene.State
	Narrative string
}

// UpdateVisual merges arbitrary visual properties onto entity ID
type UpdateVisual struct {
	ID        string
	Props     map[string]any
	Narrative string
}

// ActivatePillar sets the state of a bar entity
type ActivatePillar struct {
	Ref       Ref
	State     scene.State
	Narrative string
}

// ActivateSphere sets the state of a sphere entity
type ActivateSphere struct {
	Ref       Ref
	State     scene.State
	Narrative string
}

// ActivateOrb sets the state of an orb entity
type ActivateOrb struct {
	Ref       Ref
	State     scene.State
	Narrative string
}

// Move relocates entity ID
type Move struct {
	ID        string
	Position  scene.Vec3
	Narrative string
}

// UpdateHeight changes the height of entity ID
type UpdateHeight struct {
	ID        string
	Height    float64
	Narrative string
}

// Overwrite writes Value into the bar at list position Index
type Overwrite struct {
	Index     int
	Value     float64
	Narrative string
}

// Unknown carries a frame whose type tag is not recognized
type Unknown struct {
	Type   string
	Fields map[string]any
}

func (s Compare) Kind() Kind        { return KindCompare }
func (s Swap) Kind() Kind           { return KindSwap }
func (s HighlightCode) Kind() Kind  { return KindHighlightCode }
func (s Delay) Kind() Kind          { return KindDelay }
func (s Celebrate) Kind() Kind      { return KindCelebrate }
func (s Complete) Kind() Kind       { return KindComplete }
func (s ActivateNode) Kind() Kind   { return KindActivateNode }
func (s VisitNode) Kind() Kind      { return KindVisitNode }
func (s HighlightEdge) Kind() Kind  { return KindHighlightEdge }
func (s UpdateTile) Kind() Kind     { return KindUpdateTile }
func (s UpdateVisual) Kind() Kind   { return KindUpdateVisual }
func (s ActivatePillar) Kind() Kind { return KindActivatePillar }
func (s ActivateSphere) Kind() Kind { return KindActivateSphere }
func (s ActivateOrb) Kind() Kind    { return KindActivateOrb }
func (s Move) Kind() Kind           { return KindMove }
func (s UpdateHeight) Kind() Kind   { return KindUpdateHeight }
func (s Overwrite) Kind() Kind      { return KindOverwrite }
func (s Unknown) Kind() Kind        { return Kind(s.Type) }

func (s Compare) Narration() string        { return s.Narrative }
func (s Swap) Narration() string           { return s.Narrative }
func (s HighlightCode) Narration() string  { return s.Narrative }
func (s Delay) Narration() string          { return s.Narrative }
func (s Celebrate) Narration() string      { return s.Narrative }
func (s Complete) Narration() string       { return s.Narrative }
func (s ActivateNode) Narration() string   { return s.Narrative }
func (s VisitNode) Narration() string      { return s.Narrative }
func (s HighlightEdge) Narration() string  { return s.Narrative }
func (s UpdateTile) Narration() string     { return s.Narrative }
func (s UpdateVisual) Narration() string   { return s.Narrative }
func (s ActivatePillar) Narration() string { return s.Narrative }
func (s ActivateSphere) Narration() string { return s.Narrative }
func (s ActivateOrb) Narration() string    { return s.Narrative }
func (s Move) Narration() string           { return s.Narrative }
func (s UpdateHeight) Narration() string   { return s.Narrative }
func (s Overwrite) Narration() string      { return s.Narrative }
func (s Unknown) Narration() string {
	if n, ok := s.Fields["narrative"].(string); ok {
		return n
	}
	return ""
}

func (Compare) isStep()        {}
func (Swap) isStep()           {}
func (HighlightCode) isStep()  {}
func (Delay) isStep()          {}
func (Celebrate) isStep()      {}
func (Complete) isStep()       {}
func (ActivateNode) isStep()   {}
func (VisitNode) isStep()      {}
func (HighlightEdge) isStep()  {}
func (UpdateTile) isStep()     {}
func (UpdateVisual) isStep()   {}
func (ActivatePillar) isStep() {}
func (ActivateSphere) isStep() {}
func (ActivateOrb) isStep()    {}
func (Move) isStep()           {}
func (UpdateHeight) isStep()   {}
func (Overwrite) isStep()      {}
func (Unknown) isStep()        {}
