// internal/scene/props.go
package scene

import "maps"

// nonVisualProps are step fields that never land on an entity
var nonVisualProps = map[string]bool{
	"id":        true,
	"type":      true,
	"narrative": true,
	"duration":  true,
}

// ApplyProps merges arbitrary visual properties onto e. Well-known keys update
// the typed fields, everything else goes to the Props bag. Values of the wrong
// type for a typed field are ignored.
func ApplyProps(e *Entity, props map[string]any) {
	for key, raw := range props {
		if nonVisualProps[key] {
			continue
		}

		switch key {
		case "state":
			if s, ok := raw.(string); ok {
				if st, err := ParseState(s); err == nil {
					e.State = st
				}
			} else if st, ok := raw.(State); ok {
				e.State = st
			}
		case "label":
			if s, ok := raw.(string); ok {
				e.Label = s
			}
		case "value":
			if f, ok := toFloat(raw); ok {
				e.Value = f
			}
		case "height":
			if f, ok := toFloat(raw); ok {
				e.Height = f
			}
		case "width":
			if f, ok := toFloat(raw); ok {
				e.Width = f
			}
		case "active":
			if b, ok := raw.(bool); ok {
				e.Active = b
			}
		case "position":
			if v, ok := toVec3(raw); ok {
				e.Position = v
			}
		default:
			// Copy on write: snapshots handed to readers may share the old map
			if e.Props == nil {
				e.Props = make(map[string]any, 1)
			} else {
				e.Props = maps.Clone(e.Props)
			}
			e.Props[key] = raw
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func toVec3(v any) (Vec3, bool) {
	switch p := v.(type) {
	case Vec3:
		return p, true
	case [3]float64:
		return Vec3(p), true
	case []float64:
		if len(p) == 3 {
			return Vec3{p[0], p[1], p[2]}, true
		}
	case []any:
		if len(p) == 3 {
			var out Vec3
			for i := range p {
				f, ok := toFloat(p[i])
				if !ok {
					return Vec3{}, false
				}
				out[i] = f
			}
			return out, true
		}
	}
	return Vec3{}, false
}
