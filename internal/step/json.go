// internal/step/json.go
package step

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"

	"github.com/jdharms/algoviz/internal/scene"
)

// Frame wraps a Step for JSON encoding. The wire form is a flat object with a
// "type" tag, the same shape traces and remote clients use.
type Frame struct {
	Step Step
}

// MarshalJSON implements json.Marshaler
func (f Frame) MarshalJSON() ([]byte, error) {
	if f.Step == nil {
		return nil, fmt.Errorf("frame has no step")
	}
	return json.Marshal(Encode(f.Step))
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Frame) UnmarshalJSON(data []byte) error {
	st, err := Decode(data)
	if err != nil {
		return err
	}
	f.Step = st
	return nil
}

// Frames wraps steps for encoding
func Frames(steps []Step) []Frame {
	out := make([]Frame, len(steps))
	for i, st := range steps {
		out[i] = Frame{Step: st}
	}
	return out
}

// Steps unwraps decoded frames
func Steps(frames []Frame) []Step {
	out := make([]Step, len(frames))
	for i, f := range frames {
		out[i] = f.Step
	}
	return out
}

// Encode converts a step to its flat wire map
func Encode(s Step) map[string]any {
	m := map[string]any{"type": string(s.Kind())}
	if n := s.Narration(); n != "" {
		m["narrative"] = n
	}

	switch st := s.(type) {
	case Compare:
		m["targets"] = st.Targets
	case Swap:
		m["targets"] = st.Targets
	case HighlightCode:
		m["line"] = st.Line
	case Delay:
		m["duration"] = st.Duration
	case Celebrate:
		m["targets"] = st.Targets
	case Complete:
	case ActivateNode:
		m["id"] = st.Node
	case VisitNode:
		m["id"] = st.Node
	case HighlightEdge:
		m["from"] = st.From
		m["to"] = st.To
	case UpdateTile:
		m["id"] = st.Tile
		m["state"] = string(st.State)
	case UpdateVisual:
		for k, v := range st.Props {
			if _, reserved := m[k]; !reserved && k != "id" {
				m[k] = v
			}
		}
		m["id"] = st.ID
	case ActivatePillar:
		m["id"] = encodeRef(st.Ref)
		m["state"] = string(st.State)
	case ActivateSphere:
		m["id"] = encodeRef(st.Ref)
		m["state"] = string(st.State)
	case ActivateOrb:
		m["id"] = encodeRef(st.Ref)
		m["state"] = string(st.State)
	case Move:
		m["id"] = st.ID
		m["position"] = []float64{st.Position[0], st.Position[1], st.Position[2]}
	case UpdateHeight:
		m["id"] = st.ID
		m["height"] = st.Height
	case Overwrite:
		m["index"] = st.Index
		m["value"] = st.Value
	case Unknown:
		maps.Copy(m, st.Fields)
		m["type"] = st.Type
	}
	return m
}

func encodeRef(r Ref) any {
	if id, ok := r.Name(); ok {
		return id
	}
	i, _ := r.Position()
	return i
}

// Decode parses one wire frame. Unrecognized type tags decode to Unknown.
func Decode(data []byte) (Step, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return DecodeMap(m)
}

// DecodeMap converts a flat wire map into a Step
func DecodeMap(m map[string]any) (Step, error) {
	tag, ok := m["type"].(string)
	if !ok || tag == "" {
		return nil, fmt.Errorf("frame is missing a type tag")
	}
	narrative, _ := m["narrative"].(string)

	switch Kind(tag) {
	case KindCompare:
		return Compare{Targets: ints(m["targets"]), Narrative: narrative}, nil
	case KindSwap:
		return Swap{Targets: ints(m["targets"]), Narrative: narrative}, nil
	case KindHighlightCode:
		line, _ := number(m["line"])
		return HighlightCode{Line: int(line), Narrative: narrative}, nil
	case KindDelay:
		d, _ := number(m["duration"])
		return Delay{Duration: d, Narrative: narrative}, nil
	case KindCelebrate:
		return Celebrate{Targets: ints(m["targets"]), Narrative: narrative}, nil
	case KindComplete:
		return Complete{Narrative: narrative}, nil
	case KindActivateNode:
		return ActivateNode{Node: identifier(m["id"]), Narrative: narrative}, nil
	case KindVisitNode:
		return VisitNode{Node: identifier(m["id"]), Narrative: narrative}, nil
	case KindHighlightEdge:
		return HighlightEdge{From: identifier(m["from"]), To: identifier(m["to"]), Narrative: narrative}, nil
	case KindUpdateTile:
		st, err := state(tag, m)
		if err != nil {
			return nil, err
		}
		return UpdateTile{Tile: identifier(m["id"]), State: st, Narrative: narrative}, nil
	case KindUpdateVisual:
		props := make(map[string]any)
		for k, v := range m {
			switch k {
			case "type", "id", "narrative", "duration":
			default:
				props[k] = v
			}
		}
		return UpdateVisual{ID: identifier(m["id"]), Props: props, Narrative: narrative}, nil
	case KindActivatePillar, KindActivateSphere, KindActivateOrb:
		st, err := state(tag, m)
		if err != nil {
			return nil, err
		}
		ref, err := reference(m["id"])
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		switch Kind(tag) {
		case KindActivatePillar:
			return ActivatePillar{Ref: ref, State: st, Narrative: narrative}, nil
		case KindActivateSphere:
			return ActivateSphere{Ref: ref, State: st, Narrative: narrative}, nil
		default:
			return ActivateOrb{Ref: ref, State: st, Narrative: narrative}, nil
		}
	case KindMove:
		pos, ok := vec3(m["position"])
		if !ok {
			return nil, fmt.Errorf("decode move: position must be a 3-element array")
		}
		return Move{ID: identifier(m["id"]), Position: pos, Narrative: narrative}, nil
	case KindUpdateHeight:
		h, _ := number(m["height"])
		return UpdateHeight{ID: identifier(m["id"]), Height: h, Narrative: narrative}, nil
	case KindOverwrite:
		idx, _ := number(m["index"])
		val, _ := number(m["value"])
		return Overwrite{Index: int(idx), Value: val, Narrative: narrative}, nil
	}

	fields := make(map[string]any, len(m))
	for k, v := range m {
		if k != "type" {
			fields[k] = v
		}
	}
	return Unknown{Type: tag, Fields: fields}, nil
}

func state(tag string, m map[string]any) (scene.State, error) {
	raw, _ := m["state"].(string)
	st, err := scene.ParseState(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", tag, err)
	}
	return st, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func ints(v any) []int {
	switch xs := v.(type) {
	case []int:
		return xs
	case []any:
		out := make([]int, 0, len(xs))
		for _, x := range xs {
			if f, ok := number(x); ok {
				out = append(out, int(f))
			}
		}
		return out
	}
	return nil
}

// identifier accepts both string and numeric ids
func identifier(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	}
	return ""
}

// reference maps numbers to list positions and strings to ids
func reference(v any) (Ref, error) {
	switch id := v.(type) {
	case string:
		return Named(id), nil
	case float64:
		return At(int(id)), nil
	case int:
		return At(id), nil
	}
	return Ref{}, fmt.Errorf("id must be a number or a string, got %T", v)
}

func vec3(v any) (scene.Vec3, bool) {
	xs, ok := v.([]any)
	if !ok || len(xs) != 3 {
		if fs, ok := v.([]float64); ok && len(fs) == 3 {
			return scene.Vec3{fs[0], fs[1], fs[2]}, true
		}
		return scene.Vec3{}, false
	}
	var out scene.Vec3
	for i, x := range xs {
		f, ok := number(x)
		if !ok {
			return scene.Vec3{}, false
		}
		out[i] = f
	}
	return out, true
}
