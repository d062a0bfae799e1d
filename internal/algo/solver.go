// Package algo implements the space-time search and the three interchangeable
// multi-agent coordination algorithms (CBS, Token Passing/TP-TS, and
// Prioritized Task Assignment) built on top of it.
package algo

import (
	"sort"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// Algorithm is the shared trait every coordination strategy implements, the
// tagged-sum abstraction spec's design notes call for: Update drives one
// tick, AddTasks admits newly released work (a no-op for offline
// algorithms), Timestep reports the current tick, and Makespan reports the
// completion tick once known (-1 while still running).
type Algorithm interface {
	Update()
	AddTasks(tasks []core.Task)
	Timestep() int
	Makespan() int
	Name() string
}

// sortedAgentIDs returns agent ids from a paths map in ascending order, so
// conflict scans and token rounds have a stable, test-observable order.
func sortedAgentIDs(paths map[core.AgentID]core.Path) []core.AgentID {
	ids := make([]core.AgentID, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// padForward pads a forward-order path to length n by repeating its final
// step, matching the source's padding of shorter plans with their last
// committed position so conflict scans can align on a common time axis.
func padForward(p core.Path, n int) core.Path {
	if len(p) >= n {
		return p
	}
	out := make(core.Path, n)
	copy(out, p)
	last := p[len(p)-1]
	for i := len(p); i < n; i++ {
		out[i] = core.TimedPosition{Pos: last.Pos, T: last.T + (i - len(p) + 1)}
	}
	return out
}

// FindFirstConflict scans every unordered agent pair and returns the first
// conflict found, scanning each pair's shared time axis from its last index
// down to 0 (spec's stated order; any order is acceptable provided the
// first-returned conflict is respected by callers).
func FindFirstConflict(solution map[core.AgentID]core.Path) *core.Conflict {
	ids := sortedAgentIDs(solution)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if c := firstConflictBetween(ids[i], ids[j], solution[ids[i]].Forward(), solution[ids[j]].Forward()); c != nil {
				return c
			}
		}
	}
	return nil
}

// FindAllConflicts returns every conflict across every agent pair; used by
// tests that want to assert a solution is entirely conflict-free.
func FindAllConflicts(solution map[core.AgentID]core.Path) []*core.Conflict {
	var out []*core.Conflict
	ids := sortedAgentIDs(solution)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := solution[ids[i]].Forward(), solution[ids[j]].Forward()
			n := len(a)
			if len(b) > n {
				n = len(b)
			}
			a, b = padForward(a, n), padForward(b, n)
			for k := n - 1; k >= 0; k-- {
				if a[k].Pos == b[k].Pos {
					out = append(out, &core.Conflict{Type: core.ConflictVertex, T: a[k].T, Agent1: int(ids[i]), Agent2: int(ids[j]), Pos1: a[k].Pos})
					continue
				}
				if k > 0 && a[k-1].Pos == b[k].Pos && b[k-1].Pos == a[k].Pos {
					out = append(out, &core.Conflict{Type: core.ConflictEdge, T: a[k-1].T, Agent1: int(ids[i]), Agent2: int(ids[j]), Pos1: a[k-1].Pos, Pos2: a[k].Pos})
				}
			}
		}
	}
	return out
}

func firstConflictBetween(id1, id2 core.AgentID, a, b core.Path) *core.Conflict {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return nil
	}
	a, b = padForward(a, n), padForward(b, n)

	for i := n - 1; i >= 0; i-- {
		if a[i].Pos == b[i].Pos {
			return &core.Conflict{Type: core.ConflictVertex, T: a[i].T, Agent1: int(id1), Agent2: int(id2), Pos1: a[i].Pos}
		}
		if i > 0 && a[i-1].Pos == b[i].Pos && b[i-1].Pos == a[i].Pos {
			return &core.Conflict{Type: core.ConflictEdge, T: a[i-1].T, Agent1: int(id1), Agent2: int(id2), Pos1: a[i-1].Pos, Pos2: a[i].Pos}
		}
	}
	return nil
}
