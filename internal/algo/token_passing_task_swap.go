package algo

import (
	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TokenPassingTaskSwap extends TokenPassing with speculative task swapping:
// when the best clear task for an idle agent is already assigned to
// another agent, it tries reassigning it, and accepts the swap only if the
// new holder would complete it strictly sooner.
type TokenPassingTaskSwap struct {
	Grid       *core.Grid
	Agents     []*core.Agent
	NodeBudget int

	token    *core.Token
	timestep int
	makespan int
}

// NewTokenPassingTaskSwap creates a TP-TS instance.
func NewTokenPassingTaskSwap(grid *core.Grid, agents []*core.Agent, nodeBudget int, t0 int) *TokenPassingTaskSwap {
	tok := &core.Token{
		Paths:  make(map[core.AgentID]core.Path, len(agents)),
		Assign: make(map[core.AgentID]*core.Task, len(agents)),
	}
	for _, a := range agents {
		tok.Paths[a.ID] = core.Path{{Pos: a.Position, T: t0}}
	}
	return &TokenPassingTaskSwap{Grid: grid, Agents: agents, NodeBudget: nodeBudget, token: tok, timestep: t0, makespan: -1}
}

func (tp *TokenPassingTaskSwap) Name() string  { return "TokenPassingTaskSwap" }
func (tp *TokenPassingTaskSwap) Timestep() int { return tp.timestep }
func (tp *TokenPassingTaskSwap) Makespan() int { return tp.makespan }

// AddTasks admits newly released tasks into the shared pool.
func (tp *TokenPassingTaskSwap) AddTasks(tasks []core.Task) {
	tp.token.Tasks = append(tp.token.Tasks, tasks...)
}

func (tp *TokenPassingTaskSwap) agentByID(id core.AgentID) *core.Agent {
	for _, a := range tp.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Update resolves every agent that requires the token (retrying swaps via
// getTask), then advances every agent by one command. Unlike TokenPassing,
// an assigned task stays visible in the shared pool until its holder
// physically reaches its pickup cell: this is what lets a competitor still
// see and steal it via getTask's swap branch.
func (tp *TokenPassingTaskSwap) Update() {
	for _, a := range tp.Agents {
		if a.RequiresToken() {
			tp.getTask(a.ID, tp.token)
		}
	}
	for _, a := range tp.Agents {
		if c, ok := a.PopCommand(); ok {
			a.Apply(c)
		}
		if t := tp.token.Assign[a.ID]; t != nil && a.Position == t.S {
			tp.token.Tasks = removeTask(tp.token.Tasks, *t)
		}
	}
	tp.timestep++

	if tp.allIdleAndPoolEmpty() {
		tp.makespan = tp.timestep
	} else {
		tp.makespan = -1
	}
}

func (tp *TokenPassingTaskSwap) allIdleAndPoolEmpty() bool {
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

func (tp *TokenPassingTaskSwap) endpointsIn(tok *core.Token, exclude core.AgentID) map[core.Position]bool {
	out := make(map[core.Position]bool, len(tp.Agents))
	for _, a := range tp.Agents {
		if a.ID == exclude {
			continue
		}
		out[tok.Endpoint(a.ID)] = true
	}
	return out
}

func (tp *TokenPassingTaskSwap) constraintsIn(tok *core.Token, exclude core.AgentID) *core.ConstraintSet {
	cs := core.NewConstraintSet()
	for _, a := range tp.Agents {
		if a.ID == exclude {
			continue
		}
		cs.AddPathOccupancy(tok.Paths[a.ID])
	}
	return cs
}

// clearTasksTS returns tasks whose S/G are not any other agent's endpoint,
// UNLESS that other agent is already assigned exactly that task (a task
// already committed to its occupant is still "clear" to the occupant, and
// swappable by a competitor).
func (tp *TokenPassingTaskSwap) clearTasksTS(tok *core.Token, agentID core.AgentID) []core.Task {
	var out []core.Task
	for _, t := range tok.Tasks {
		conflicted := false
		for _, a := range tp.Agents {
			if a.ID == agentID {
				continue
			}
			end := tok.Endpoint(a.ID)
			if end != t.S && end != t.G {
				continue
			}
			if tok.Assign[a.ID] != nil && *tok.Assign[a.ID] == t {
				continue // occupant already owns this task; still swappable
			}
			conflicted = true
			break
		}
		if !conflicted {
			out = append(out, t)
		}
	}
	return out
}

func (tp *TokenPassingTaskSwap) path1In(tok *core.Token, a *core.Agent, task core.Task) core.Path {
	cs := tp.constraintsIn(tok, a.ID)
	path, _ := planWaypointPath(tp.Grid, a.Position, []core.Position{task.S, task.G}, cs, tp.timestep, tp.NodeBudget)
	return path
}

func (tp *TokenPassingTaskSwap) path2In(tok *core.Token, a *core.Agent) core.Path {
	cs := tp.constraintsIn(tok, a.ID)
	return SpaceTimeAStar(tp.Grid, a.Position, a.Start, cs, tp.timestep, tp.NodeBudget)
}

// getTask is the recursive swap-seeking procedure: find the nearest clear
// task, commit it if unassigned, or speculatively steal it from its current
// holder and recurse to find the holder a replacement. Termination is
// guaranteed because every accepted swap strictly decreases the stolen
// task's committed arrival time (spec P9).
func (tp *TokenPassingTaskSwap) getTask(agentID core.AgentID, tok *core.Token) bool {
	a := tp.agentByID(agentID)
	ends := tp.endpointsIn(tok, agentID)
	clear := tp.clearTasksTS(tok, agentID)
	goalHere := tasksWithGoalAt(tok.Tasks, a.Position)

	if len(clear) == 0 {
		if len(goalHere) == 0 && !ends[a.Position] {
			tok.Paths[agentID] = core.Path{{Pos: a.Position, T: tp.timestep}}
		} else {
			tok.Paths[agentID] = tp.path2In(tok, a)
		}
		tok.Assign[agentID] = nil
		a.AssignQueue(commandsFromPath(tok.Paths[agentID]))
		return false
	}

	task := closestTask(a.Position, clear)

	holder := core.AgentID(-1)
	for id, t := range tok.Assign {
		if t != nil && *t == task {
			holder = id
			break
		}
	}

	if holder == -1 {
		tc := task
		tok.Assign[agentID] = &tc
		tok.Paths[agentID] = tp.path1In(tok, a, task)
		a.AssignQueue(commandsFromPath(tok.Paths[agentID]))
		return true
	}

	// Speculative swap: try giving the task to agentID instead of holder.
	snapshot := tok.Clone()
	oldArrival := tok.Paths[holder].End().T

	holderAgent := tp.agentByID(holder)
	tok.Assign[holder] = nil
	tok.Paths[holder] = core.Path{{Pos: holderAgent.Position, T: tp.timestep}}

	tc := task
	tok.Assign[agentID] = &tc
	newPath := tp.path1In(tok, a, task)
	newArrival := newPath.End().T

	if newArrival < oldArrival {
		tok.Paths[agentID] = newPath
		a.AssignQueue(commandsFromPath(newPath))
		if tp.getTask(holder, tok) {
			return true
		}
		// Displaced holder found no replacement; it still falls back to
		// parking/stay inside its own getTask call, so the swap stands.
		return true
	}

	// Swap did not improve arrival time: roll back and leave the task with
	// its current holder.
	*tok = *snapshot
	tok.Paths[agentID] = core.Path{{Pos: a.Position, T: tp.timestep}}
	a.AssignQueue(commandsFromPath(tok.Paths[agentID]))
	return false
}
