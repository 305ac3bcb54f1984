package algorithms

import (
	"fmt"

	"github.com/jdharms/algoviz/internal/scene"
	"github.com/jdharms/algoviz/internal/step"
)

const bfsCode = `func bfs(adj map[int][]int, start int) {
    queue := []int{start}
    visited := map[int]bool{start: true}
    for len(queue) > 0 {
        node := queue[0]
        queue = queue[1:]
        for _, next := range adj[node] {
            if !visited[next] {
                visited[next] = true
                queue = append(queue, next)
            }
        }
    }
}`

const dfsCode = `func dfs(adj map[int][]int, node int, visited map[int]bool) {
    visited[node] = true
    for _, next := range adj[node] {
        if !visited[next] {
            dfs(adj, next, visited)
        }
    }
}`

type graphProducer struct{}

func (graphProducer) Initialize() Snapshot {
	return binaryTree()
}

func (graphProducer) MapToVisual(s Snapshot) []scene.Entity {
	g, ok := s.(*GraphData)
	if !ok {
		return nil
	}
	return graphScene(g)
}

// BFS visits the graph level by level from the start node
type BFS struct {
	graphProducer
}

// NewBFS creates the breadth-first search producer
func NewBFS(Options) Producer {
	return &BFS{}
}

// Info implements Producer
func (p *BFS) Info() Info {
	return Info{
		Slug:        "bfs",
		Name:        "Breadth-First Search",
		Tier:        2,
		Category:    "Graph",
		Description: "Explores a graph level by level using a queue, visiting every neighbor before going deeper.",
		Code:        bfsCode,
	}
}

// Execute implements Producer
func (p *BFS) Execute(s Snapshot) step.Sequence {
	g, ok := s.(*GraphData)
	if !ok {
		return step.Empty()
	}
	var queue []int
	visited := make(map[int]bool)
	started := false

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			queue = append(queue, g.Start)
			visited[g.Start] = true
			emit(step.ActivateNode{Node: nodeKey(g.Start), Narrative: fmt.Sprintf("Starting search at node %d", g.Start)})
			emit(step.HighlightCode{Line: 3})
			emit(step.Delay{Duration: 500})
			return true
		}
		if len(queue) == 0 {
			emit(step.Complete{Narrative: "Graph traversal complete"})
			return false
		}

		emit(step.HighlightCode{Line: 4})
		current := queue[0]
		queue = queue[1:]
		emit(step.VisitNode{Node: nodeKey(current), Narrative: fmt.Sprintf("Visiting node %d", current)})
		emit(step.HighlightCode{Line: 7})

		for _, next := range g.Neighbors(current) {
			if visited[next] {
				continue
			}
			emit(step.HighlightCode{Line: 8})
			visited[next] = true
			queue = append(queue, next)
			emit(step.HighlightEdge{From: nodeKey(current), To: nodeKey(next), Narrative: fmt.Sprintf("Discovering neighbor %d", next)})
			emit(step.ActivateNode{Node: nodeKey(next), Narrative: fmt.Sprintf("Adding node %d to the queue", next)})
			emit(step.HighlightCode{Line: 10})
		}
		return true
	})
}

// DFS follows each branch to its end before backtracking
type DFS struct {
	graphProducer
}

// NewDFS creates the depth-first search producer
func NewDFS(Options) Producer {
	return &DFS{}
}

// Info implements Producer
func (p *DFS) Info() Info {
	return Info{
		Slug:        "dfs",
		Name:        "Depth-First Search",
		Tier:        2,
		Category:    "Graph",
		Description: "Explores as far as possible along each branch before backtracking.",
		Code:        dfsCode,
	}
}

// dfsFrame is one suspended recursive call
type dfsFrame struct {
	node int
	next int
}

// Execute implements Producer
func (p *DFS) Execute(s Snapshot) step.Sequence {
	g, ok := s.(*GraphData)
	if !ok {
		return step.Empty()
	}
	var stack step.Stack[dfsFrame]
	visited := make(map[int]bool)
	started := false

	enter := func(emit step.Emit, node int) {
		visited[node] = true
		emit(step.VisitNode{Node: nodeKey(node), Narrative: fmt.Sprintf("Visiting node %d", node)})
		emit(step.HighlightCode{Line: 2})
		stack.Push(dfsFrame{node: node})
	}

	return step.NewPump(func(emit step.Emit) bool {
		if !started {
			started = true
			emit(step.ActivateNode{Node: nodeKey(g.Start), Narrative: "Starting recursive DFS"})
			enter(emit, g.Start)
			return true
		}

		top := stack.Peek()
		if top == nil {
			emit(step.Complete{Narrative: "Depth-first traversal complete"})
			return false
		}

		neighbors := g.Neighbors(top.node)
		if top.next >= len(neighbors) {
			node := top.node
			stack.Pop()
			emit(step.Delay{Duration: 200, Narrative: fmt.Sprintf("Backtracking from node %d", node)})
			return true
		}

		next := neighbors[top.next]
		top.next++
		emit(step.HighlightCode{Line: 3})
		if visited[next] {
			return true
		}
		emit(step.HighlightEdge{From: nodeKey(top.node), To: nodeKey(next), Narrative: fmt.Sprintf("Branching to %d", next)})
		emit(step.HighlightCode{Line: 5})
		enter(emit, next)
		return true
	})
}
