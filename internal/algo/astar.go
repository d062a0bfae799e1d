package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// DefaultNodeBudget bounds the number of A* expansions before the search
// gives up and falls back to the degenerate single-step path. Zero means
// unlimited.
const DefaultNodeBudget = 0

// astarNode is one entry in the space-time search frontier.
type astarNode struct {
	node    core.SpaceTimeNode
	g       int
	f       int
	seq     int // insertion order, used as a stable f-tie-break
	parent  *astarNode
	heapIdx int
}

type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// SpaceTimeAStar plans a single agent from start to target on grid,
// honoring constraints, starting at tick t0. The returned Path is in the
// source's reverse execution order: Path[0] is the final step (at target,
// some tick >= t0), Path[len-1] is the first step (at start, tick t0).
//
// If the open set empties before reaching target, a degenerate path
// containing only the start step is returned (see spec §9's first Open
// Question: length-1 paths with start != target signal failure to callers).
// nodeBudget caps the number of expansions; 0 means unlimited.
func SpaceTimeAStar(grid *core.Grid, start, target core.Position, constraints *core.ConstraintSet, t0 int, nodeBudget int) core.Path {
	h := func(p core.Position) int { return p.Manhattan(target) }

	open := &astarHeap{}
	heap.Init(open)

	seq := 0
	startNode := &astarNode{
		node: core.SpaceTimeNode{X: start.X, Y: start.Y, T: t0},
		g:    0,
		f:    h(start),
		seq:  seq,
	}
	heap.Push(open, startNode)

	closed := make(map[core.SpaceTimeNode]bool)
	expansions := 0

	for open.Len() > 0 {
		if nodeBudget > 0 && expansions >= nodeBudget {
			break
		}
		current := heap.Pop(open).(*astarNode)

		if closed[current.node] {
			continue
		}
		closed[current.node] = true
		expansions++

		if current.node.Pos() == target {
			return reconstructPath(current)
		}

		t1 := current.node.T + 1
		for _, n := range grid.Neighbors(current.node.X, current.node.Y) {
			if constraints.ForbidsVertex(n, t1) {
				continue
			}
			if constraints.ForbidsEdge(current.node.Pos(), n, current.node.T) {
				continue
			}
			nextState := core.SpaceTimeNode{X: n.X, Y: n.Y, T: t1}
			if closed[nextState] {
				continue
			}
			seq++
			child := &astarNode{
				node:   nextState,
				g:      current.g + 1,
				f:      current.g + 1 + h(n),
				seq:    seq,
				parent: current,
			}
			heap.Push(open, child)
		}
	}

	return core.Path{{Pos: start, T: t0}}
}

func reconstructPath(node *astarNode) core.Path {
	var path core.Path
	for n := node; n != nil; n = n.parent {
		path = append(path, core.TimedPosition{Pos: n.node.Pos(), T: n.node.T})
	}
	return path
}
