package algo

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// CBS implements Conflict-Based Search: a high-level constraint tree search
// over per-agent space-time plans, branching on the first detected conflict
// until a collision-free joint plan is found or the node budget is spent.
type CBS struct {
	NodeBudget int // per-agent A* expansion budget; 0 = unlimited
	MaxOpen    int // high-level node budget; 0 = unlimited

	timestep int
	makespan int
}

// NewCBS creates a CBS solver with the given per-call A* node budget.
func NewCBS(nodeBudget int) *CBS {
	return &CBS{NodeBudget: nodeBudget, makespan: -1}
}

func (c *CBS) Name() string { return "CBS" }

// Timestep reports the tick CBS last planned from. CBS is an offline,
// single-shot planner so this only changes across repeated Solve calls.
func (c *CBS) Timestep() int { return c.timestep }

// Makespan reports the completion tick of the last solved plan, or -1.
func (c *CBS) Makespan() int { return c.makespan }

// AddTasks is a no-op: CBS plans once from a fixed agents_tasks map.
func (c *CBS) AddTasks(tasks []core.Task) {}

type cbsNode struct {
	constraints map[core.AgentID]*core.ConstraintSet
	solution    map[core.AgentID]core.Path
	cost        int
	heapIdx     int
}

type cbsHeap []*cbsNode

func (h cbsHeap) Len() int           { return len(h) }
func (h cbsHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h cbsHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *cbsHeap) Push(x any) {
	n := x.(*cbsNode)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *cbsHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

func cloneConstraints(in map[core.AgentID]*core.ConstraintSet) map[core.AgentID]*core.ConstraintSet {
	out := make(map[core.AgentID]*core.ConstraintSet, len(in))
	for id, cs := range in {
		out[id] = cs.Clone()
	}
	return out
}

func nodeSignature(n *cbsNode) string {
	var sb strings.Builder
	ids := sortedAgentIDs(n.solution)
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d:%v|", id, n.solution[id])
	}
	return sb.String()
}

// Solve runs CBS for the given agents_tasks (agent id -> start/goal), grid,
// starting tick t0, and an optional set of pre-populated spatio-temporal
// obstacles shared by every agent (used to stay compatible with paths
// already committed by other in-flight plans). Returns nil if the open set
// empties before a conflict-free solution is found.
func (c *CBS) Solve(grid *core.Grid, agentsTasks map[core.AgentID][2]core.Position, t0 int, obstacles *core.ConstraintSet) map[core.AgentID]core.Path {
	c.timestep = t0
	if obstacles == nil {
		obstacles = core.NewConstraintSet()
	}

	root := &cbsNode{constraints: make(map[core.AgentID]*core.ConstraintSet)}
	for id := range agentsTasks {
		root.constraints[id] = obstacles.Clone()
	}
	if !c.planAll(grid, agentsTasks, t0, root) {
		return nil
	}

	open := &cbsHeap{}
	heap.Init(open)
	heap.Push(open, root)
	closed := make(map[string]bool)
	explored := 0

	for open.Len() > 0 {
		if c.MaxOpen > 0 && explored >= c.MaxOpen {
			return nil
		}
		explored++
		node := heap.Pop(open).(*cbsNode)

		sig := nodeSignature(node)
		if closed[sig] {
			continue
		}
		closed[sig] = true

		conflict := FindFirstConflict(node.solution)
		if conflict == nil {
			c.makespan = t0
			for _, p := range node.solution {
				if end := p.End().T; end > c.makespan {
					c.makespan = end
				}
			}
			return node.solution
		}

		for _, agentID := range []core.AgentID{core.AgentID(conflict.Agent1), core.AgentID(conflict.Agent2)} {
			child := &cbsNode{
				constraints: cloneConstraints(node.constraints),
				solution:    clonePaths(node.solution),
			}
			cs := child.constraints[agentID]
			switch conflict.Type {
			case core.ConflictVertex:
				cs.AddVertex(conflict.Pos1, conflict.T)
			case core.ConflictEdge:
				if core.AgentID(conflict.Agent1) == agentID {
					cs.AddEdge(conflict.Pos1, conflict.Pos2, conflict.T)
				} else {
					cs.AddEdge(conflict.Pos2, conflict.Pos1, conflict.T)
				}
			}

			start := agentsTasks[agentID][0]
			goal := agentsTasks[agentID][1]
			path := SpaceTimeAStar(grid, start, goal, cs, t0, c.NodeBudget)
			if len(path) == 1 && start != goal {
				continue // infeasible under this branch; prune
			}
			child.solution[agentID] = path
			child.cost = pathsCost(child.solution)
			heap.Push(open, child)
		}
	}

	return nil
}

func clonePaths(in map[core.AgentID]core.Path) map[core.AgentID]core.Path {
	out := make(map[core.AgentID]core.Path, len(in))
	for id, p := range in {
		cp := make(core.Path, len(p))
		copy(cp, p)
		out[id] = cp
	}
	return out
}

func pathsCost(solution map[core.AgentID]core.Path) int {
	total := 0
	for _, p := range solution {
		total += len(p)
	}
	return total
}

func (c *CBS) planAll(grid *core.Grid, agentsTasks map[core.AgentID][2]core.Position, t0 int, node *cbsNode) bool {
	node.solution = make(map[core.AgentID]core.Path, len(agentsTasks))
	for id, se := range agentsTasks {
		path := SpaceTimeAStar(grid, se[0], se[1], node.constraints[id], t0, c.NodeBudget)
		if len(path) == 1 && se[0] != se[1] {
			return false
		}
		node.solution[id] = path
	}
	node.cost = pathsCost(node.solution)
	return true
}
