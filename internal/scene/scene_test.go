package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPropsSkipsNonVisualFields(t *testing.T) {
	e := Entity{ID: "tile-1-1", Kind: KindTile, State: StateDefault}

	ApplyProps(&e, map[string]any{
		"type":      "update_visual",
		"narrative": "Filled (1,1)",
		"duration":  100,
		"id":        "something-else",
		"state":     "sorted",
		"color":     "#fbbf24",
	})

	assert.Equal(t, "tile-1-1", e.ID)
	assert.Equal(t, KindTile, e.Kind)
	assert.Equal(t, StateSorted, e.State)
	assert.Equal(t, map[string]any{"color": "#fbbf24"}, e.Props)
}

func TestApplyPropsTypedFields(t *testing.T) {
	e := Entity{ID: "pillar-0"}

	ApplyProps(&e, map[string]any{
		"height":   4,
		"value":    4.5,
		"label":    "x",
		"active":   true,
		"position": []any{1.0, 2, 3.0},
	})

	assert.Equal(t, 4.0, e.Height)
	assert.Equal(t, 4.5, e.Value)
	assert.Equal(t, "x", e.Label)
	assert.True(t, e.Active)
	assert.Equal(t, Vec3{1, 2, 3}, e.Position)
}

func TestApplyPropsIgnoresBadValues(t *testing.T) {
	e := Entity{ID: "pillar-0", State: StateActive, Height: 2}

	ApplyProps(&e, map[string]any{
		"state":  "sparkly",
		"height": "tall",
	})

	assert.Equal(t, StateActive, e.State)
	assert.Equal(t, 2.0, e.Height)
}

func TestApplyPropsCopiesPropsMap(t *testing.T) {
	shared := map[string]any{"color": "red"}
	e := Entity{ID: "a", Props: shared}

	ApplyProps(&e, map[string]any{"color": "blue"})

	assert.Equal(t, "red", shared["color"])
	assert.Equal(t, "blue", e.Props["color"])
}

func TestCloneAllIsDeep(t *testing.T) {
	in := []Entity{{
		ID:     "edge-0-1",
		Points: []Vec3{{0, 0, 0}, {1, 1, 1}},
		Props:  map[string]any{"color": "red"},
	}}

	out := CloneAll(in)
	out[0].Points[0] = Vec3{9, 9, 9}
	out[0].Props["color"] = "blue"

	assert.Equal(t, Vec3{0, 0, 0}, in[0].Points[0])
	assert.Equal(t, "red", in[0].Props["color"])
}

func TestLookupHelpers(t *testing.T) {
	entities := []Entity{{ID: PillarID(0)}, {ID: NodeID("3")}, {ID: EdgeID("1", "2")}}

	assert.Equal(t, 1, IndexOf(entities, "node-3"))
	assert.Equal(t, -1, IndexOf(entities, "ghost-99"))
	require.NotNil(t, Find(entities, "edge-1-2"))
	assert.Nil(t, Find(entities, "edge-2-1"))
	assert.Nil(t, At(entities, 3))
	assert.Nil(t, At(entities, -1))
	assert.Equal(t, "pillar-0", At(entities, 0).ID)
	assert.Equal(t, "tile-2-3", TileID(CellKey(2, 3)))
}

func TestParseState(t *testing.T) {
	st, err := ParseState("queue")
	require.NoError(t, err)
	assert.Equal(t, StateQueue, st)

	_, err = ParseState("nope")
	assert.Error(t, err)
}
