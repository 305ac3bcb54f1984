// internal/engine/effects.go
package engine

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
	"github.com/jdharms/algoviz/internal/store"
)

// apply translates one step into store mutations and its pacing waits. A
// panic while applying is recovered and the step treated as a no-op.
func (e *Engine) apply(r *run, st step.Step) {
	defer func() {
		if p := recover(); p != nil {
			e.metrics.panicked()
			e.logger.WithFields(logrus.Fields{
				"kind":  st.Kind(),
				"panic": p,
			}).Error("Recovered panic while applying step")
		}
	}()

	switch s := st.(type) {
	case step.Compare:
		e.write(r, func(v *store.VisualState) {
			e.setStates(v, s.Kind(), s.Targets, scene.StateCompare)
			v.ActiveIndices = slices.Clone(s.Targets)
			narrate(v, s.Narrative)
		})
		if e.wait(r, CompareInterval) {
			e.write(r, func(v *store.VisualState) {
				e.setStates(v, s.Kind(), s.Targets, scene.StateDefault)
			})
		}

	case step.Swap:
		if len(s.Targets) != 2 {
			e.logger.WithField("targets", s.Targets).Debug("Swap needs exactly two targets")
			return
		}
		i, j := s.Targets[0], s.Targets[1]
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			a, b := scene.At(v.Entities, i), scene.At(v.Entities, j)
			if a == nil || b == nil {
				e.missing(s.Kind(), s.Targets)
				return
			}
			a.State, b.State = scene.StateSwap, scene.StateSwap
			a.Position, b.Position = b.Position, a.Position
			v.Entities[i], v.Entities[j] = v.Entities[j], v.Entities[i]
		})
		if e.wait(r, SwapInterval) {
			e.write(r, func(v *store.VisualState) {
				e.setStates(v, s.Kind(), s.Targets, scene.StateDefault)
			})
		}

	case step.HighlightCode:
		e.write(r, func(v *store.VisualState) {
			v.HighlightedCode = s.Line
			narrate(v, s.Narrative)
		})

	case step.Delay:
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
		})
		e.wait(r, s.Duration)

	case step.Celebrate:
		e.write(r, func(v *store.VisualState) {
			e.setStates(v, s.Kind(), s.Targets, scene.StateSorted)
			narrate(v, s.Narrative)
		})
		e.wait(r, CelebrateInterval)

	case step.Complete:
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
		})

	case step.ActivateNode:
		e.activateNode(r, s.Kind(), s.Node, s.Narrative, false)

	case step.VisitNode:
		e.activateNode(r, s.Kind(), s.Node, s.Narrative, true)

	case step.HighlightEdge:
		id := scene.EdgeID(s.From, s.To)
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			if ent := e.lookup(v, s.Kind(), id); ent != nil {
				ent.Active = true
			}
		})
		e.wait(r, EdgeInterval)

	case step.UpdateTile:
		id := scene.TileID(s.Tile)
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			if ent := e.lookup(v, s.Kind(), id); ent != nil {
				ent.State = s.State
			}
		})

	case step.UpdateVisual:
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			if ent := e.lookup(v, s.Kind(), s.ID); ent != nil {
				scene.ApplyProps(ent, s.Props)
			}
		})
		e.wait(r, VisualInterval)

	case step.ActivatePillar:
		e.activate(r, s.Kind(), s.Ref, s.State, s.Narrative, nil)

	case step.ActivateSphere:
		e.activate(r, s.Kind(), s.Ref, s.State, s.Narrative, scene.SphereID)

	case step.ActivateOrb:
		e.activate(r, s.Kind(), s.Ref, s.State, s.Narrative, scene.OrbID)

	case step.Move:
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			if ent := e.lookup(v, s.Kind(), s.ID); ent != nil {
				ent.Position = s.Position
			}
		})

	case step.UpdateHeight:
		e.write(r, func(v *store.VisualState) {
			narrate(v, s.Narrative)
			if ent := e.lookup(v, s.Kind(), s.ID); ent != nil {
				ent.Height = s.Height
			}
		})
		e.wait(r, HeightInterval)

	case step.Overwrite:
		e.overwrite(r, s)
		e.wait(r, OverwriteInterval)

	default:
		e.metrics.unknownStep()
		e.logger.WithField("kind", st.Kind()).Debug("Ignoring unrecognized step")
	}
}

// write applies fn to the visual state if r is still live
func (e *Engine) write(r *run, fn func(v *store.VisualState)) bool {
	return e.mutate(r, func() {
		e.store.Mutate(fn)
	})
}

// lookup finds an entity by id, recording a miss
func (e *Engine) lookup(v *store.VisualState, kind step.Kind, id string) *scene.Entity {
	ent := scene.Find(v.Entities, id)
	if ent == nil {
		e.missing(kind, id)
	}
	return ent
}

// setStates sets the state of the entities at the given list positions
func (e *Engine) setStates(v *store.VisualState, kind step.Kind, targets []int, state scene.State) {
	for _, i := range targets {
		ent := scene.At(v.Entities, i)
		if ent == nil {
			e.missing(kind, i)
			continue
		}
		ent.State = state
	}
}

func (e *Engine) missing(kind step.Kind, ref any) {
	e.metrics.missingEntity(string(kind))
	e.logger.WithFields(logrus.Fields{
		"kind":   kind,
		"entity": ref,
	}).Debug("Step references a missing entity")
}

// activateNode marks node-<node> active and, for visits, visited after the
// node interval
func (e *Engine) activateNode(r *run, kind step.Kind, node, narrative string, visit bool) {
	id := scene.NodeID(node)
	e.write(r, func(v *store.VisualState) {
		narrate(v, narrative)
		if ent := e.lookup(v, kind, id); ent != nil {
			ent.State = scene.StateActive
		}
	})
	if !e.wait(r, NodeInterval) || !visit {
		return
	}
	e.write(r, func(v *store.VisualState) {
		if ent := e.lookup(v, kind, id); ent != nil {
			ent.State = scene.StateVisited
		}
	})
}

// activate sets the state of the entity ref addresses. Named refs are
// looked up by id. Positional refs resolve through indexed when given,
// otherwise they are list positions.
func (e *Engine) activate(r *run, kind step.Kind, ref step.Ref, state scene.State, narrative string, indexed func(int) string) {
	e.write(r, func(v *store.VisualState) {
		narrate(v, narrative)

		var ent *scene.Entity
		if id, ok := ref.Name(); ok {
			ent = e.lookup(v, kind, id)
		} else if i, ok := ref.Position(); ok {
			if indexed != nil {
				ent = e.lookup(v, kind, indexed(i))
			} else if ent = scene.At(v.Entities, i); ent == nil {
				e.missing(kind, i)
			}
		}
		if ent != nil {
			ent.State = state
		}
	})
}

// overwrite writes the value into a bar and schedules its revert. The revert
// timer belongs to the run and is cancelled when the run is discarded.
func (e *Engine) overwrite(r *run, s step.Overwrite) {
	e.mutate(r, func() {
		var id string
		e.store.Mutate(func(v *store.VisualState) {
			narrate(v, s.Narrative)
			ent := scene.At(v.Entities, s.Index)
			if ent == nil {
				e.missing(s.Kind(), s.Index)
				return
			}
			ent.Height = s.Value
			ent.Value = s.Value
			ent.State = scene.StateOverwrite
			id = ent.ID
		})
		if id == "" {
			return
		}

		r.timers = append(r.timers, e.clock.AfterFunc(e.config.OverwriteRevert, func() {
			e.write(r, func(v *store.VisualState) {
				if ent := scene.Find(v.Entities, id); ent != nil && ent.State == scene.StateOverwrite {
					ent.State = scene.StateDefault
				}
			})
		}))
	})
}

func narrate(v *store.VisualState, narrative string) {
	if narrative != "" {
		v.Narrative = narrative
	}
}
