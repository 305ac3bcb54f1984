package algorithms

import (
	"fmt"
	"slices"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const dijkstraCode = `func shortestPath(grid [][]int, start, end Cell) []Cell {
    dist := map[Cell]int{start: 0}
    prev := map[Cell]Cell{}
    pq := []Item{{start, 0}}
    for len(pq) > 0 {
        cur := popMin(&pq)
        if cur.cell == end {
            return backtrack(prev, end)
        }
        for _, next := range neighbors(grid, cur.cell) {
            d := cur.dist + 1
            if old, ok := dist[next]; !ok || d < old {
                dist[next], prev[next] = d, cur.cell
                pq = append(pq, Item{next, d})
            }
        }
    }
    return nil
}`

const floodFillCode = `func floodFill(grid [][]int, sr, sc, color int) {
    old := grid[sr][sc]
    if old == color {
        return
    }
    queue := [][2]int{{sr, sc}}
    grid[sr][sc] = color
    for len(queue) > 0 {
        r, c := queue[0][0], queue[0][1]
        queue = queue[1:]
        for _, d := range dirs {
            nr, nc := r+d[0], c+d[1]
            if inBounds(grid, nr, nc) && grid[nr][nc] == old {
                grid[nr][nc] = color
                queue = append(queue, [2]int{nr, nc})
            }
        }
    }
}`

// Fill colors used by the flood fill props
const (
	WaterColor = "#06b6d4"
	StoneColor = "#0a0a0a"
	PaintColor = "#fbbf24"
)

var gridDirs = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func cellKey(c [2]int) string {
	return scene.CellKey(c[0], c[1])
}

// DijkstraGrid finds the shortest path across a walled grid
type DijkstraGrid struct {
	opts Options
}

// NewDijkstraGrid creates the grid shortest path producer
func NewDijkstraGrid(opts Options) Producer {
	return &DijkstraGrid{opts: opts}
}

// Info implements Producer
func (p *DijkstraGrid) Info() Info {
	return Info{
		Slug:        "dijkstra-grid",
		Name:        "Dijkstra Grid",
		Tier:        3,
		Category:    "Pathfinding",
		Description: "Expands the closest unvisited cell first until the target is reached, then walks the path back.",
		Code:        dijkstraCode,
	}
}

// Initialize implements Producer
func (p *DijkstraGrid) Initialize() Snapshot {
	size := p.opts.size(5)
	cells := make([][]int, size)
	for r := range cells {
		cells[r] = make([]int, size)
	}
	if size == 5 {
		cells[2][1], cells[2][2], cells[1][3] = CellWall, CellWall, CellWall
	} else {
		// Scatter walls away from the corners
		rng := p.opts.rng()
		for r := range cells {
			for c := range cells[r] {
				corner := (r == 0 && c == 0) || (r == size-1 && c == size-1)
				if !corner && rng.IntN(5) == 0 {
					cells[r][c] = CellWall
				}
			}
		}
	}
	return &GridData{Cells: cells, Start: [2]int{0, 0}, End: [2]int{size - 1, size - 1}}
}

// MapToVisual implements Producer
func (p *DijkstraGrid) MapToVisual(s Snapshot) []scene.Entity {
	g, ok := s.(*GridData)
	if !ok {
		return nil
	}
	return gridScene(g, 1.1, scene.StateWall)
}

type queued struct {
	cell [2]int
	dist int
}

// Execute implements Producer
func (p *DijkstraGrid) Execute(s Snapshot) step.Sequence {
	g, ok := s.(*GridData)
	if !ok {
		return step.Empty()
	}
	dist := map[[2]int]int{g.Start: 0}
	prev := make(map[[2]int][2]int)
	pq := []queued{{cell: g.Start}}
	started := false

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.UpdateTile{Tile: cellKey(g.Start), State: scene.StateActive, Narrative: "Start point initialized"})
			emit(step.HighlightCode{Line: 2})
			emit(step.Delay{Duration: 400})
			emit(step.UpdateTile{Tile: cellKey(g.End), State: scene.StateActive, Narrative: "Target point locked"})
			emit(step.Delay{Duration: 400})
			return true
		}
		if len(pq) == 0 {
			emit(step.Complete{Narrative: "No path to the target"})
			return false
		}

		slices.SortStableFunc(pq, func(a, b queued) int { return a.dist - b.dist })
		cur := pq[0]
		pq = pq[1:]
		if d, ok := dist[cur.cell]; ok && d < cur.dist {
			return true
		}
		emit(step.HighlightCode{Line: 6})

		if cur.cell == g.End {
			emit(step.HighlightCode{Line: 8})
			emit(step.Complete{Narrative: "Shortest path found"})
			for at, ok := g.End, true; ok; at, ok = prev[at] {
				emit(step.UpdateTile{Tile: cellKey(at), State: scene.StatePath})
				emit(step.Delay{Duration: 100})
			}
			return false
		}

		if cur.cell != g.Start {
			emit(step.UpdateTile{Tile: cellKey(cur.cell), State: scene.StateVisited})
		}

		for _, d := range gridDirs {
			next := [2]int{cur.cell[0] + d[0], cur.cell[1] + d[1]}
			if !g.open(next[0], next[1]) {
				continue
			}
			nd := cur.dist + 1
			if old, seen := dist[next]; seen && nd >= old {
				continue
			}
			dist[next] = nd
			prev[next] = cur.cell
			pq = append(pq, queued{cell: next, dist: nd})
			if next != g.End {
				emit(step.UpdateTile{
					Tile:      cellKey(next),
					State:     scene.StateQueue,
					Narrative: fmt.Sprintf("Scanning neighbor %s", cellKey(next)),
				})
				emit(step.HighlightCode{Line: 13})
			}
		}
		emit(step.Delay{Duration: 200})
		return true
	})
}

// FloodFill pours paint from a start cell into every connected open cell
type FloodFill struct {
	opts Options
}

// NewFloodFill creates the flood fill producer
func NewFloodFill(opts Options) Producer {
	return &FloodFill{opts: opts}
}

// Info implements Producer
func (p *FloodFill) Info() Info {
	return Info{
		Slug:        "flood-fill",
		Name:        "Flood Fill",
		Tier:        2,
		Category:    "Graph",
		Description: "Spreads a new color from a start cell to every connected cell of the same color.",
		Code:        floodFillCode,
	}
}

// Initialize implements Producer
func (p *FloodFill) Initialize() Snapshot {
	return &GridData{
		Cells: [][]int{
			{1, 1, 1, 1, 1, 1, 1},
			{1, 0, 0, 0, 0, 0, 1},
			{1, 0, 1, 1, 1, 0, 1},
			{1, 0, 1, 0, 0, 0, 1},
			{1, 0, 1, 0, 1, 0, 1},
			{1, 0, 0, 0, 1, 0, 1},
			{1, 1, 1, 1, 1, 1, 1},
		},
		Start: [2]int{3, 3},
	}
}

// MapToVisual implements Producer
func (p *FloodFill) MapToVisual(s Snapshot) []scene.Entity {
	g, ok := s.(*GridData)
	if !ok {
		return nil
	}
	out := gridScene(g, 1.2, scene.StateObstacle)
	for i := range out {
		color := WaterColor
		if out[i].State == scene.StateObstacle {
			color = StoneColor
		}
		out[i].Props = map[string]any{"customColor": color}
	}
	return out
}

// Execute implements Producer
func (p *FloodFill) Execute(s Snapshot) step.Sequence {
	g, ok := s.(*GridData)
	if !ok {
		return step.Empty()
	}
	filled := make(map[[2]int]bool)
	var queue [][2]int
	started := false

	paint := func(c [2]int, narrative string) step.Step {
		return step.UpdateVisual{
			ID:        scene.TileID(cellKey(c)),
			Props:     map[string]any{"state": string(scene.StateSorted), "customColor": PaintColor},
			Narrative: narrative,
		}
	}

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			if !g.open(g.Start[0], g.Start[1]) {
				emit(step.Complete{Narrative: "Start cell is not fillable"})
				return false
			}
			emit(step.Delay{Duration: 800, Narrative: fmt.Sprintf("Pouring paint at (%d, %d)", g.Start[0], g.Start[1])})
			emit(step.HighlightCode{Line: 6})
			filled[g.Start] = true
			queue = append(queue, g.Start)
			emit(paint(g.Start, "Start cell filled"))
			return true
		}
		if len(queue) == 0 {
			emit(step.Complete{Narrative: "Area completely filled"})
			return false
		}

		cur := queue[0]
		queue = queue[1:]
		emit(step.HighlightCode{Line: 9})
		for _, d := range gridDirs {
			next := [2]int{cur[0] + d[0], cur[1] + d[1]}
			if !g.open(next[0], next[1]) || filled[next] {
				continue
			}
			emit(step.UpdateVisual{
				ID:        scene.TileID(cellKey(next)),
				Props:     map[string]any{"state": string(scene.StateActive)},
				Narrative: fmt.Sprintf("Spreading to (%d, %d)", next[0], next[1]),
			})
			emit(step.Delay{Duration: 100})
			filled[next] = true
			queue = append(queue, next)
			emit(step.HighlightCode{Line: 15})
			emit(paint(next, fmt.Sprintf("Filled (%d, %d)", next[0], next[1])))
		}
		return true
	})
}
