package algorithms

import (
	"fmt"
	"strconv"

	"github.com/jdharms/algoviz/internal/scene"
)

// ArrayData is the snapshot of the linear producers
type ArrayData struct {
	Values []int
	// Target is the searched value, when the producer searches
	Target int
	// Window is the window length, when the producer slides one
	Window int
}

// Describe implements Snapshot
func (d *ArrayData) Describe() string {
	return fmt.Sprintf("array of %d values", len(d.Values))
}

// GraphNode is a vertex with a fixed layout position
type GraphNode struct {
	ID  int
	Pos scene.Vec3
}

// GraphData is the snapshot of the graph traversals
type GraphData struct {
	Nodes []GraphNode
	Edges [][2]int
	Start int
}

// Describe implements Snapshot
func (d *GraphData) Describe() string {
	return fmt.Sprintf("graph with %d nodes and %d edges", len(d.Nodes), len(d.Edges))
}

// Neighbors returns the out-neighbors of id in edge order
func (d *GraphData) Neighbors(id int) []int {
	var out []int
	for _, e := range d.Edges {
		if e[0] == id {
			out = append(out, e[1])
		}
	}
	return out
}

func (d *GraphData) node(id int) (GraphNode, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Cell values of GridData
const (
	CellOpen = 0
	CellWall = 1
)

// GridData is the snapshot of the grid producers
type GridData struct {
	Cells [][]int
	Start [2]int
	End   [2]int
}

// Describe implements Snapshot
func (d *GridData) Describe() string {
	if len(d.Cells) == 0 {
		return "empty grid"
	}
	return fmt.Sprintf("%dx%d grid", len(d.Cells), len(d.Cells[0]))
}

func (d *GridData) open(r, c int) bool {
	return r >= 0 && r < len(d.Cells) && c >= 0 && c < len(d.Cells[r]) && d.Cells[r][c] == CellOpen
}

func nodeKey(id int) string {
	return strconv.Itoa(id)
}

// barRow lays values out as bars centered on the origin
func barRow(values []int, spacing float64) []scene.Entity {
	startX := -float64(len(values))*spacing/2 + spacing/2
	out := make([]scene.Entity, len(values))
	for i, v := range values {
		out[i] = scene.Entity{
			ID:       scene.PillarID(i),
			Kind:     scene.KindBar,
			Position: scene.Vec3{startX + float64(i)*spacing, 0, 0},
			Value:    float64(v),
			Height:   float64(v),
			State:    scene.StateDefault,
		}
	}
	return out
}

// sphereRow lays values out as labeled spheres at height y
func sphereRow(values []int, spacing, y float64) []scene.Entity {
	mid := float64(len(values)-1) / 2
	out := make([]scene.Entity, len(values))
	for i, v := range values {
		out[i] = scene.Entity{
			ID:       scene.SphereID(i),
			Kind:     scene.KindSphere,
			Position: scene.Vec3{(float64(i) - mid) * spacing, y, 0},
			Value:    float64(v),
			State:    scene.StateDefault,
			Label:    strconv.Itoa(v),
		}
	}
	return out
}

// graphScene lays out nodes as spheres followed by one connector per edge
func graphScene(g *GraphData) []scene.Entity {
	out := make([]scene.Entity, 0, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		out = append(out, scene.Entity{
			ID:       scene.NodeID(nodeKey(n.ID)),
			Kind:     scene.KindSphere,
			Position: n.Pos,
			Value:    float64(n.ID),
			State:    scene.StateDefault,
			Label:    nodeKey(n.ID),
		})
	}
	for _, e := range g.Edges {
		from, _ := g.node(e[0])
		to, _ := g.node(e[1])
		out = append(out, scene.Entity{
			ID:     scene.EdgeID(nodeKey(e[0]), nodeKey(e[1])),
			Kind:   scene.KindConnector,
			Points: []scene.Vec3{from.Pos, to.Pos},
			State:  scene.StateDefault,
		})
	}
	return out
}

// gridScene lays out one tile per cell, walls marked with wallState
func gridScene(g *GridData, spacing float64, wallState scene.State) []scene.Entity {
	var out []scene.Entity
	rows := len(g.Cells)
	for r, row := range g.Cells {
		cols := len(row)
		for c, cell := range row {
			st := scene.StateDefault
			if cell == CellWall {
				st = wallState
			}
			out = append(out, scene.Entity{
				ID:   scene.TileID(scene.CellKey(r, c)),
				Kind: scene.KindTile,
				Position: scene.Vec3{
					(float64(c) - float64(cols-1)/2) * spacing,
					0,
					(float64(r) - float64(rows-1)/2) * spacing,
				},
				State: st,
			})
		}
	}
	return out
}

// binaryTree returns the seven node tree both traversals walk
func binaryTree() *GraphData {
	return &GraphData{
		Nodes: []GraphNode{
			{ID: 0, Pos: scene.Vec3{0, 2, 0}},
			{ID: 1, Pos: scene.Vec3{-2, 0, 0}},
			{ID: 2, Pos: scene.Vec3{2, 0, 0}},
			{ID: 3, Pos: scene.Vec3{-3, -2, 0}},
			{ID: 4, Pos: scene.Vec3{-1, -2, 0}},
			{ID: 5, Pos: scene.Vec3{1, -2, 0}},
			{ID: 6, Pos: scene.Vec3{3, -2, 0}},
		},
		Edges: [][2]int{{0, 1}, {0, 2}, {1, 3}, {1, 4}, {2, 5}, {2, 6}},
		Start: 0,
	}
}
