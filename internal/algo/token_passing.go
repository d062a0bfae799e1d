package algo

import (
	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TokenPassing is the online decentralized coordination algorithm: each
// tick, every agent that has run out of committed work requests the shared
// token and is served in stable id order.
type TokenPassing struct {
	Grid       *core.Grid
	Agents     []*core.Agent
	NodeBudget int

	token    *core.Token
	timestep int
	makespan int
}

// NewTokenPassing creates a TP instance. Every agent starts parked with a
// trivial one-step stay path as its initial committed endpoint.
func NewTokenPassing(grid *core.Grid, agents []*core.Agent, nodeBudget int, t0 int) *TokenPassing {
	tok := &core.Token{
		Paths:  make(map[core.AgentID]core.Path, len(agents)),
		Assign: make(map[core.AgentID]*core.Task, len(agents)),
	}
	for _, a := range agents {
		tok.Paths[a.ID] = core.Path{{Pos: a.Position, T: t0}}
	}
	return &TokenPassing{Grid: grid, Agents: agents, NodeBudget: nodeBudget, token: tok, timestep: t0, makespan: -1}
}

func (tp *TokenPassing) Name() string  { return "TokenPassing" }
func (tp *TokenPassing) Timestep() int { return tp.timestep }
func (tp *TokenPassing) Makespan() int { return tp.makespan }

// AddTasks admits newly released tasks into the shared pool.
func (tp *TokenPassing) AddTasks(tasks []core.Task) {
	tp.token.Tasks = append(tp.token.Tasks, tasks...)
}

// Update serves the token to every agent that requires it (in stable id
// order), then advances every agent by one command.
func (tp *TokenPassing) Update() {
	for _, a := range tp.Agents {
		if a.RequiresToken() {
			tp.serve(a)
		}
	}
	for _, a := range tp.Agents {
		if c, ok := a.PopCommand(); ok {
			a.Apply(c)
		}
	}
	tp.timestep++

	if tp.allIdleAndPoolEmpty() {
		tp.makespan = tp.timestep
	} else {
		tp.makespan = -1
	}
}

func (tp *TokenPassing) allIdleAndPoolEmpty() bool {
	if len(tp.token.Tasks) > 0 {
		return false
	}
	for _, a := range tp.Agents {
		if len(a.Queue) > 0 {
			return false
		}
	}
	return true
}

// endpoints returns every other agent's committed final cell.
func (tp *TokenPassing) endpoints(exclude core.AgentID) map[core.Position]bool {
	out := make(map[core.Position]bool, len(tp.Agents))
	for _, a := range tp.Agents {
		if a.ID == exclude {
			continue
		}
		out[tp.token.Endpoint(a.ID)] = true
	}
	return out
}

// clearTasks returns the tasks in the pool whose S and G are not any other
// agent's endpoint.
func clearTasks(pool []core.Task, endpoints map[core.Position]bool) []core.Task {
	var out []core.Task
	for _, t := range pool {
		if endpoints[t.S] || endpoints[t.G] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func closestTask(from core.Position, tasks []core.Task) core.Task {
	best := tasks[0]
	bestDist := from.Manhattan(best.S)
	for _, t := range tasks[1:] {
		if d := from.Manhattan(t.S); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// constraintsFor derives the forbidden set for agent a: the union over
// every other agent b of every (pos, t) and (pos, t+1) in b's committed
// path, the "vertex-plus-look-ahead-edge" rule spec's §4.5 names.
func (tp *TokenPassing) constraintsFor(exclude core.AgentID) *core.ConstraintSet {
	cs := core.NewConstraintSet()
	for _, a := range tp.Agents {
		if a.ID == exclude {
			continue
		}
		cs.AddPathOccupancy(tp.token.Paths[a.ID])
	}
	return cs
}

// path1 plans agent -> task.S -> task.G under the given constraints.
func (tp *TokenPassing) path1(a *core.Agent, task core.Task, cs *core.ConstraintSet) core.Path {
	path, _ := planWaypointPath(tp.Grid, a.Position, []core.Position{task.S, task.G}, cs, tp.timestep, tp.NodeBudget)
	return path
}

// path2 plans agent -> its parking position.
func (tp *TokenPassing) path2(a *core.Agent, cs *core.ConstraintSet) core.Path {
	return SpaceTimeAStar(tp.Grid, a.Position, a.Start, cs, tp.timestep, tp.NodeBudget)
}

// removeTask removes the first occurrence of task from the pool.
func removeTask(pool []core.Task, task core.Task) []core.Task {
	for i, t := range pool {
		if t == task {
			return append(pool[:i:i], pool[i+1:]...)
		}
	}
	return pool
}

func (tp *TokenPassing) serve(a *core.Agent) {
	ends := tp.endpoints(a.ID)
	cs := tp.constraintsFor(a.ID)

	clear := clearTasks(tp.token.Tasks, ends)
	goalHere := tasksWithGoalAt(tp.token.Tasks, a.Position)

	var path core.Path
	switch {
	case len(clear) > 0:
		task := closestTask(a.Position, clear)
		tp.token.Tasks = removeTask(tp.token.Tasks, task)
		tc := task
		tp.token.Assign[a.ID] = &tc
		path = tp.path1(a, task, cs)
	case len(goalHere) == 0 && !ends[a.Position]:
		path = core.Path{{Pos: a.Position, T: tp.timestep}}
	default:
		path = tp.path2(a, cs)
	}

	tp.token.Paths[a.ID] = path
	a.AssignQueue(commandsFromPath(path))
}

func tasksWithGoalAt(pool []core.Task, pos core.Position) []core.Task {
	var out []core.Task
	for _, t := range pool {
		if t.G == pos {
			out = append(out, t)
		}
	}
	return out
}

func commandsFromPath(path core.Path) []core.Command {
	fwd := path.Forward()
	cmds := make([]core.Command, len(fwd))
	for i, step := range fwd {
		cmds[i] = core.Command{Kind: core.CommandMoveTo, Pos: step.Pos}
	}
	return cmds
}
