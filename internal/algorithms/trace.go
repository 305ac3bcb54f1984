package algorithms

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

// DefaultTraceLimit bounds recorded traces
const DefaultTraceLimit = 100_000

// Trace is a recorded run: the initial scene plus every step in order
type Trace struct {
	Algorithm  Info           `json:"algorithm"`
	RecordedAt time.Time      `json:"recorded_at"`
	Entities   []scene.Entity `json:"entities"`
	Steps      []step.Frame   `json:"steps"`
}

// Describe implements Snapshot
func (t *Trace) Describe() string {
	return fmt.Sprintf("trace of %s with %d steps", t.Algorithm.Slug, len(t.Steps))
}

// Record initializes p once and drains its steps into a Trace
func Record(p Producer, limit int) (*Trace, error) {
	if limit <= 0 {
		limit = DefaultTraceLimit
	}
	snap := p.Initialize()
	steps, err := step.Collect(p.Execute(snap), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to record '%s': %w", p.Info().Slug, err)
	}
	return &Trace{
		Algorithm:  p.Info(),
		RecordedAt: time.Now().UTC(),
		Entities:   p.MapToVisual(snap),
		Steps:      step.Frames(steps),
	}, nil
}

// WriteTo encodes the trace as indented JSON
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode trace: %w", err)
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// ReadTrace decodes a trace written by WriteTo
func ReadTrace(r io.Reader) (*Trace, error) {
	var t Trace
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	if t.Algorithm.Slug == "" {
		return nil, fmt.Errorf("trace is missing the algorithm slug")
	}
	for i, e := range t.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("trace entity %d has no id", i)
		}
		if !e.Kind.Valid() {
			return nil, fmt.Errorf("trace entity '%s' has unknown type '%s'", e.ID, e.Kind)
		}
	}
	return &t, nil
}

// TraceReplay plays a recorded trace back as a producer
type TraceReplay struct {
	trace *Trace
}

// NewTraceReplay creates a producer over a recorded trace
func NewTraceReplay(t *Trace) *TraceReplay {
	return &TraceReplay{trace: t}
}

// Info implements Producer
func (p *TraceReplay) Info() Info {
	info := p.trace.Algorithm
	info.Slug = "trace-" + info.Slug
	info.Name = info.Name + " (replay)"
	return info
}

// Initialize implements Producer
func (p *TraceReplay) Initialize() Snapshot {
	return p.trace
}

// MapToVisual implements Producer
func (p *TraceReplay) MapToVisual(s Snapshot) []scene.Entity {
	t, ok := s.(*Trace)
	if !ok {
		return nil
	}
	return scene.CloneAll(t.Entities)
}

// Execute implements Producer
func (p *TraceReplay) Execute(s Snapshot) step.Sequence {
	t, ok := s.(*Trace)
	if !ok {
		return step.Empty()
	}
	return step.Slice(step.Steps(t.Steps)...)
}
