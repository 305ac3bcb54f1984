package algorithms

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLimit = 50_000

func drain(t *testing.T, p Producer, snap Snapshot) []step.Step {
	t.Helper()
	steps, err := step.Collect(p.Execute(snap), testLimit)
	require.NoError(t, err, "%s must terminate", p.Info().Slug)
	return steps
}

// resolves reports whether every entity a step addresses exists
func resolves(entities []scene.Entity, st step.Step) bool {
	has := func(id string) bool { return scene.IndexOf(entities, id) >= 0 }
	inRange := func(targets []int) bool {
		for _, t := range targets {
			if t < 0 || t >= len(entities) {
				return false
			}
		}
		return true
	}

	switch s := st.(type) {
	case step.Compare:
		return inRange(s.Targets)
	case step.Swap:
		return len(s.Targets) == 2 && inRange(s.Targets)
	case step.Celebrate:
		return inRange(s.Targets)
	case step.ActivateNode:
		return has(scene.NodeID(s.Node))
	case step.VisitNode:
		return has(scene.NodeID(s.Node))
	case step.HighlightEdge:
		return has(scene.EdgeID(s.From, s.To))
	case step.UpdateTile:
		return has(scene.TileID(s.Tile))
	case step.UpdateVisual:
		return has(s.ID)
	case step.Move:
		return has(s.ID)
	case step.UpdateHeight:
		return has(s.ID)
	case step.Overwrite:
		return inRange([]int{s.Index})
	case step.ActivatePillar:
		if id, ok := s.Ref.Name(); ok {
			return has(id)
		}
		i, _ := s.Ref.Position()
		return inRange([]int{i})
	case step.ActivateSphere:
		if id, ok := s.Ref.Name(); ok {
			return has(id)
		}
		i, _ := s.Ref.Position()
		return has(scene.SphereID(i))
	case step.ActivateOrb:
		if id, ok := s.Ref.Name(); ok {
			return has(id)
		}
		i, _ := s.Ref.Position()
		return has(scene.OrbID(i))
	}
	return true
}

func TestBuiltinProducers(t *testing.T) {
	reg := Builtin()
	require.Len(t, reg.List(), 13)

	for _, info := range reg.List() {
		t.Run(info.Slug, func(t *testing.T) {
			p, err := reg.New(info.Slug, Options{Seed: 42})
			require.NoError(t, err)
			assert.NotEmpty(t, info.Name)
			assert.NotEmpty(t, info.Lines())

			snap := p.Initialize()
			entities := p.MapToVisual(snap)
			require.NotEmpty(t, entities)

			ids := make(map[string]bool)
			for _, e := range entities {
				assert.True(t, e.Kind.Valid(), "entity %s kind", e.ID)
				assert.False(t, ids[e.ID], "duplicate id %s", e.ID)
				ids[e.ID] = true
			}

			steps := drain(t, p, snap)
			require.NotEmpty(t, steps)

			sawComplete := false
			for i, st := range steps {
				assert.True(t, resolves(entities, st), "step %d (%s) addresses a missing entity", i, st.Kind())
				if hl, ok := st.(step.HighlightCode); ok {
					assert.True(t, hl.Line >= 1 && hl.Line <= len(info.Lines()), "line %d out of listing", hl.Line)
				}
				if st.Kind() == step.KindComplete {
					sawComplete = true
				}
			}
			assert.True(t, sawComplete, "every run announces completion")
		})
	}
}

func TestProducersAreDeterministicUnderSeed(t *testing.T) {
	reg := Builtin()
	for _, info := range reg.List() {
		t.Run(info.Slug, func(t *testing.T) {
			a, _ := reg.New(info.Slug, Options{Seed: 7})
			b, _ := reg.New(info.Slug, Options{Seed: 7})

			snapA, snapB := a.Initialize(), b.Initialize()
			assert.Equal(t, snapA, snapB)
			assert.Equal(t, a.MapToVisual(snapA), b.MapToVisual(snapB))
			assert.Equal(t, drain(t, a, snapA), drain(t, b, snapB))
		})
	}
}

func TestExecuteDoesNotMutateSnapshot(t *testing.T) {
	reg := Builtin()
	for _, info := range reg.List() {
		t.Run(info.Slug, func(t *testing.T) {
			p, _ := reg.New(info.Slug, Options{Seed: 3})
			snap := p.Initialize()
			before := p.MapToVisual(snap)

			first := drain(t, p, snap)
			second := drain(t, p, snap)

			assert.Equal(t, before, p.MapToVisual(snap))
			assert.Equal(t, first, second, "two sequences over one snapshot agree")
		})
	}
}

// replayValues applies the data-moving steps to a copy of values
func replayValues(values []int, steps []step.Step) []int {
	out := slices.Clone(values)
	for _, st := range steps {
		switch s := st.(type) {
		case step.Swap:
			out[s.Targets[0]], out[s.Targets[1]] = out[s.Targets[1]], out[s.Targets[0]]
		case step.Overwrite:
			out[s.Index] = int(s.Value)
		}
	}
	return out
}

func TestSortsLeaveBarsSorted(t *testing.T) {
	for _, slug := range []string{"bubble-sort", "selection-sort", "insertion-sort", "merge-sort", "quick-sort"} {
		t.Run(slug, func(t *testing.T) {
			p, err := Builtin().New(slug, Options{Seed: 99})
			require.NoError(t, err)

			snap := p.Initialize().(*ArrayData)
			got := replayValues(snap.Values, drain(t, p, snap))

			want := slices.Clone(snap.Values)
			slices.Sort(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestSortsHandleEdgeSizes(t *testing.T) {
	for _, slug := range []string{"bubble-sort", "selection-sort", "insertion-sort", "merge-sort", "quick-sort"} {
		for _, values := range [][]int{{5}, {2, 1}, {3, 3, 3}} {
			p, _ := Builtin().New(slug, Options{Values: values})
			snap := p.Initialize().(*ArrayData)
			got := replayValues(snap.Values, drain(t, p, snap))
			assert.True(t, slices.IsSorted(got), "%s on %v", slug, values)
		}
	}
}

func TestReverseArray(t *testing.T) {
	p := NewReverseArray(Options{Values: []int{1, 2, 3, 4, 5}})
	snap := p.Initialize().(*ArrayData)

	got := replayValues(snap.Values, drain(t, p, snap))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, got)
}

func TestBinarySearchFindsTarget(t *testing.T) {
	p := NewBinarySearch(Options{Seed: 11})
	snap := p.Initialize().(*ArrayData)
	require.Contains(t, snap.Values, snap.Target)

	steps := drain(t, p, snap)
	var found bool
	for _, st := range steps {
		if s, ok := st.(step.ActivateSphere); ok && s.State == scene.StateSorted {
			i, _ := s.Ref.Position()
			found = snap.Values[i] == snap.Target
		}
	}
	assert.True(t, found)
}

func TestSlidingWindowResult(t *testing.T) {
	p := NewSlidingWindowMax(Options{})
	steps := drain(t, p, p.Initialize())

	last := steps[len(steps)-1]
	require.Equal(t, step.KindComplete, last.Kind())
	assert.Equal(t, "Result: [3, 3, 5, 5, 5, 6, 6, 6, 4, 4]", last.Narration())
}

func TestLCSLength(t *testing.T) {
	p := NewLCS(Options{})
	steps := drain(t, p, p.Initialize())

	var complete string
	for _, st := range steps {
		if st.Kind() == step.KindComplete {
			complete = st.Narration()
		}
	}
	assert.Contains(t, complete, "length 4")
}

func TestDijkstraReportsUnreachableTarget(t *testing.T) {
	p := NewDijkstraGrid(Options{})
	g := &GridData{
		Cells: [][]int{{0, 1, 0}, {1, 1, 0}, {0, 0, 0}},
		Start: [2]int{0, 0},
		End:   [2]int{2, 2},
	}

	steps := drain(t, p, g)
	assert.Equal(t, "No path to the target", steps[len(steps)-1].Narration())
}

func TestRegistryLookup(t *testing.T) {
	reg := Builtin()

	info, err := reg.Find("Bubble Sort")
	require.NoError(t, err)
	assert.Equal(t, "bubble-sort", info.Slug)

	info, err = reg.Find("dijkstra")
	require.NoError(t, err)
	assert.Equal(t, "dijkstra-grid", info.Slug)

	_, err = reg.Find("sort")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "multiple algorithms"))

	_, err = reg.Find("bogosort")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.New("bogosort", Options{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, reg.Register(NewBubbleSort), "duplicate slugs are rejected")
}

func TestTraceRoundTrip(t *testing.T) {
	reg := Builtin()
	for _, info := range reg.List() {
		t.Run(info.Slug, func(t *testing.T) {
			p, _ := reg.New(info.Slug, Options{Seed: 5})
			trace, err := Record(p, 0)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = trace.WriteTo(&buf)
			require.NoError(t, err)

			decoded, err := ReadTrace(&buf)
			require.NoError(t, err)

			replay := NewTraceReplay(decoded)
			assert.Equal(t, "trace-"+info.Slug, replay.Info().Slug)

			snap := replay.Initialize()
			assert.Equal(t, trace.Entities, replay.MapToVisual(snap))
			assert.Equal(t, step.Steps(trace.Steps), drain(t, replay, snap))
		})
	}
}

func TestRecordLimit(t *testing.T) {
	_, err := Record(NewBubbleSort(Options{Seed: 1}), 10)
	assert.ErrorIs(t, err, step.ErrTooManySteps)
}

func TestReadTraceRejectsBadEntities(t *testing.T) {
	_, err := ReadTrace(strings.NewReader(`{"algorithm":{"slug":"x"},"entities":[{"id":"a","type":"blob"}],"steps":[]}`))
	assert.Error(t, err)

	_, err = ReadTrace(strings.NewReader(`{"algorithm":{},"entities":[],"steps":[]}`))
	assert.Error(t, err)
}
