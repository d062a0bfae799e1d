package algo

import (
	"sort"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// PTA implements Prioritized Task Assignment: an offline algorithm that
// assigns tasks to agents via an ATSP tour over a complete agent/task graph,
// then plans each agent's full path once, processing agents in decreasing
// order of their unconstrained path length and accumulating constraints as
// it goes.
type PTA struct {
	NodeBudget int

	solver   ATSPSolver
	timestep int
	makespan int
}

// NewPTA builds a PTA planner using the given ATSPSolver (the real solver
// lives in internal/atsp; tests use StubATSPSolver).
func NewPTA(solver ATSPSolver, nodeBudget int) *PTA {
	return &PTA{solver: solver, NodeBudget: nodeBudget, makespan: -1}
}

func (p *PTA) Name() string     { return "PTA" }
func (p *PTA) Timestep() int    { return p.timestep }
func (p *PTA) Makespan() int    { return p.makespan }
func (p *PTA) AddTasks([]core.Task) {}

// Plan runs both PTA phases and writes the resulting command queue onto
// each agent. It returns ErrATSPFailed if the solver cannot produce a tour
// (fatal for PTA per spec §7: no fallback).
func (p *PTA) Plan(grid *core.Grid, agents []*core.Agent, tasks []core.Task, t0 int) error {
	p.timestep = t0

	assignment, err := p.assignTasks(agents, tasks)
	if err != nil {
		return err
	}

	type agentPlan struct {
		agent     *core.Agent
		waypoints []core.Position
		initial   core.Path
	}
	plans := make([]agentPlan, len(agents))
	empty := core.NewConstraintSet()
	for i, a := range agents {
		wps := waypointsFor(a, assignment[a.ID])
		initial, _ := planWaypointPath(grid, a.Position, wps, empty, t0, p.NodeBudget)
		plans[i] = agentPlan{agent: a, waypoints: wps, initial: initial}
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return len(plans[i].initial) > len(plans[j].initial)
	})

	constraints := core.NewConstraintSet()
	maxFinish := t0
	for _, pl := range plans {
		path, _ := planWaypointPath(grid, pl.agent.Position, pl.waypoints, constraints, t0, p.NodeBudget)
		constraints.AddPathOccupancy(path)
		pl.agent.AssignQueue(pathToCommands(path, assignment[pl.agent.ID]))
		if end := path.End().T; end > maxFinish {
			maxFinish = end
		}
	}
	p.makespan = maxFinish
	return nil
}

// Update advances the tick counter only. PTA keeps no reference to the
// agents, so the command queues Plan wrote are not popped or applied here.
// PTA's assignment and paths were already fixed by Plan, so Update never
// replans.
func (p *PTA) Update() {
	p.timestep++
}

// assignTasks is Phase 1: builds the complete agent/task graph, solves it
// as an ATSP, and partitions the resulting tour into per-agent task lists.
func (p *PTA) assignTasks(agents []*core.Agent, tasks []core.Task) (map[core.AgentID][]core.Task, error) {
	nA, nT := len(agents), len(tasks)
	n := nA + nT
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	agentIdx := func(i int) int { return i }
	taskIdx := func(j int) int { return nA + j }

	for i, a := range agents {
		for j, t := range tasks {
			w := a.Position.Manhattan(t.S)
			if t.R > w {
				w = t.R
			}
			dist[agentIdx(i)][taskIdx(j)] = float64(w)
		}
	}
	for i, ti := range tasks {
		for j, tj := range tasks {
			if i == j {
				continue
			}
			dist[taskIdx(i)][taskIdx(j)] = float64(ti.S.Manhattan(ti.G) + ti.G.Manhattan(tj.S))
		}
	}
	for i, t := range tasks {
		for j := range agents {
			dist[taskIdx(i)][agentIdx(j)] = float64(t.S.Manhattan(t.G))
		}
	}
	// agent->agent stays zero, matching the source's compute_weight fallthrough.

	tour, err := p.solver.Solve(dist)
	if err != nil {
		return nil, ErrATSPFailed
	}

	rotated := rotateToFirstAgent(tour, nA)
	assignment := make(map[core.AgentID][]core.Task, nA)
	var current core.AgentID
	for _, v := range rotated {
		if v < nA {
			current = agents[v].ID
			if _, ok := assignment[current]; !ok {
				assignment[current] = nil
			}
			continue
		}
		assignment[current] = append(assignment[current], tasks[v-nA])
	}
	return assignment, nil
}

func rotateToFirstAgent(tour []int, nAgents int) []int {
	start := 0
	for i, v := range tour {
		if v < nAgents {
			start = i
			break
		}
	}
	out := make([]int, len(tour))
	copy(out, tour[start:])
	copy(out[len(tour)-start:], tour[:start])
	return out
}

func waypointsFor(a *core.Agent, tasks []core.Task) []core.Position {
	wps := make([]core.Position, 0, len(tasks)*2+1)
	for _, t := range tasks {
		wps = append(wps, t.S, t.G)
	}
	wps = append(wps, a.Start)
	return wps
}

// planWaypointPath chains space-time A* legs through a sequence of
// waypoints, threading the timestep forward leg by leg and stitching the
// results into one reverse-order Path with no duplicated boundary steps.
func planWaypointPath(grid *core.Grid, start core.Position, waypoints []core.Position, cs *core.ConstraintSet, t0, budget int) (core.Path, int) {
	if len(waypoints) == 0 {
		return core.Path{{Pos: start, T: t0}}, t0
	}
	legs := make([]core.Path, len(waypoints))
	cur := start
	t := t0
	for i, wp := range waypoints {
		leg := SpaceTimeAStar(grid, cur, wp, cs, t, budget)
		legs[i] = leg
		t = leg.End().T
		cur = wp
	}

	var full core.Path
	for i := len(legs) - 1; i >= 0; i-- {
		leg := legs[i]
		if i > 0 {
			leg = leg[:len(leg)-1] // drop duplicate boundary shared with the previous leg
		}
		full = append(full, leg...)
	}
	return full, t
}

// pathToCommands converts a reverse-order Path into a forward-order command
// list, inserting Pickup/Unload when the agent's position matches a task's
// S or G cell.
func pathToCommands(path core.Path, tasks []core.Task) []core.Command {
	fwd := path.Forward()
	cmds := make([]core.Command, 0, len(fwd)*2)
	for _, step := range fwd {
		cmds = append(cmds, core.Command{Kind: core.CommandMoveTo, Pos: step.Pos})
		for _, t := range tasks {
			if step.Pos == t.S {
				cmds = append(cmds, core.Command{Kind: core.CommandPickup})
			}
			if step.Pos == t.G {
				cmds = append(cmds, core.Command{Kind: core.CommandUnload})
			}
		}
	}
	return cmds
}
