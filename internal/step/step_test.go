package step

import (
	"encoding/json"
	"testing"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceAndConcat(t *testing.T) {
	seq := Concat(Slice(Compare{Targets: []int{0, 1}}), Empty(), Slice(Complete{}, Delay{Duration: 2}))

	steps, err := Collect(seq, 0)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, KindCompare, steps[0].Kind())
	assert.Equal(t, KindComplete, steps[1].Kind())
	assert.Equal(t, KindDelay, steps[2].Kind())

	_, ok := seq.Next()
	assert.False(t, ok, "exhausted sequence stays exhausted")
}

func TestCollectLimit(t *testing.T) {
	n := 0
	forever := Func(func() (Step, bool) {
		n++
		return Delay{Duration: 1}, true
	})

	steps, err := Collect(forever, 5)
	assert.ErrorIs(t, err, ErrTooManySteps)
	assert.Len(t, steps, 5)
}

func TestPumpDeliversStepsFromFinalAdvance(t *testing.T) {
	i := 0
	p := NewPump(func(emit Emit) bool {
		if i < 3 {
			emit(HighlightCode{Line: i + 1})
			i++
			return true
		}
		emit(Complete{Narrative: "done"})
		return false
	})

	steps, err := Collect(p, 0)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, Complete{Narrative: "done"}, steps[3])

	_, ok := p.Next()
	assert.False(t, ok)
}

func TestPumpIsLazy(t *testing.T) {
	calls := 0
	p := NewPump(func(emit Emit) bool {
		calls++
		emit(Delay{Duration: 1})
		return calls < 100
	})

	_, ok := p.Next()
	require.True(t, ok)
	_, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestPumpSkipsSilentAdvances(t *testing.T) {
	calls := 0
	p := NewPump(func(emit Emit) bool {
		calls++
		if calls == 5 {
			emit(Complete{})
			return false
		}
		return true
	})

	st, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, KindComplete, st.Kind())
}

func TestStack(t *testing.T) {
	var s Stack[int]
	assert.Nil(t, s.Peek())

	s.Push(1)
	s.Push(2)
	assert.Equal(t, 2, s.Len())
	*s.Peek() = 5

	v, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, 5, v)
	v, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = s.Pop()
	assert.False(t, ok)
}

func TestRef(t *testing.T) {
	i, ok := At(3).Position()
	assert.True(t, ok)
	assert.Equal(t, 3, i)
	_, ok = At(3).Name()
	assert.False(t, ok)

	id, ok := Named("sphere-2").Name()
	assert.True(t, ok)
	assert.Equal(t, "sphere-2", id)
	assert.Equal(t, "#3", At(3).String())
}

func TestDecodeWireFrames(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Step
	}{
		{"compare", `{"type":"compare","targets":[0,1],"narrative":"Comparing"}`, Compare{Targets: []int{0, 1}, Narrative: "Comparing"}},
		{"numeric node id", `{"type":"visit_node","id":3}`, VisitNode{Node: "3"}},
		{"edge", `{"type":"highlight_edge","from":0,"to":2}`, HighlightEdge{From: "0", To: "2"}},
		{"pillar by index", `{"type":"activate_pillar","id":1,"state":"compare"}`, ActivatePillar{Ref: At(1), State: scene.StateCompare}},
		{"sphere by id", `{"type":"activate_sphere","id":"sphere-4","state":"active"}`, ActivateSphere{Ref: Named("sphere-4"), State: scene.StateActive}},
		{"move", `{"type":"move","id":"orb-0","position":[1,2,3]}`, Move{ID: "orb-0", Position: scene.Vec3{1, 2, 3}}},
		{"overwrite", `{"type":"overwrite","index":2,"value":7}`, Overwrite{Index: 2, Value: 7}},
		{"tile", `{"type":"update_tile","id":"1-2","state":"wall"}`, UpdateTile{Tile: "1-2", State: scene.StateWall}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeUpdateVisualCollectsProps(t *testing.T) {
	got, err := Decode([]byte(`{"type":"update_visual","id":"tile-0-0","state":"path","customColor":"#fff","duration":50,"narrative":"n"}`))
	require.NoError(t, err)

	uv, ok := got.(UpdateVisual)
	require.True(t, ok)
	assert.Equal(t, "tile-0-0", uv.ID)
	assert.Equal(t, "n", uv.Narrative)
	assert.Equal(t, map[string]any{"state": "path", "customColor": "#fff"}, uv.Props)
}

func TestDecodeUnknownAndErrors(t *testing.T) {
	got, err := Decode([]byte(`{"type":"teleport","narrative":"whoosh","x":1}`))
	require.NoError(t, err)
	assert.Equal(t, Kind("teleport"), got.Kind())
	assert.Equal(t, "whoosh", got.Narration())

	_, err = Decode([]byte(`{"targets":[1]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"activate_pillar","id":0,"state":"glowing"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"move","id":"a","position":[1,2]}`))
	assert.Error(t, err)
}

func TestFrameRoundTripPreservesRefs(t *testing.T) {
	in := []Step{
		ActivateOrb{Ref: At(0), State: scene.StateVisited},
		ActivateOrb{Ref: Named("orb-1"), State: scene.StateActive},
		UpdateHeight{ID: "pillar-2", Height: 3.5, Narrative: "grow"},
	}

	data, err := json.Marshal(Frames(in))
	require.NoError(t, err)

	var out []Frame
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, Steps(out))
}
