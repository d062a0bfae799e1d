// Package core defines the domain model for the warehouse MAPF/MAPD planner.
package core

// CommandKind enumerates the three primitives an agent's command queue can
// hold.
type CommandKind int

const (
	// CommandMoveTo moves the agent onto an adjacent (or the same) cell.
	CommandMoveTo CommandKind = iota
	// CommandPickup picks up the item at the agent's current cell.
	CommandPickup
	// CommandUnload drops the carried item at the agent's current cell.
	CommandUnload
)

// Command is one step of an agent's plan. Pos is only meaningful for
// CommandMoveTo.
type Command struct {
	Kind CommandKind
	Pos  Position
}

// TimedPosition pairs a position with the tick it is occupied at.
type TimedPosition struct {
	Pos Position
	T   int
}

// Path is an ordered sequence of (position, timestep) pairs. By convention
// (matching the source planner) a Path is stored in reverse execution
// order: Path[0] is the final step, Path[len(Path)-1] is the first step.
// Forward() produces the forward-order equivalent.
type Path []TimedPosition

// Start returns the first executed step (the last element of the reversed
// storage order), or the zero value if the path is empty.
func (p Path) Start() TimedPosition {
	if len(p) == 0 {
		return TimedPosition{}
	}
	return p[len(p)-1]
}

// End returns the final step (element 0 in the reversed storage order, i.e.
// the agent's committed endpoint), or the zero value if the path is empty.
func (p Path) End() TimedPosition {
	if len(p) == 0 {
		return TimedPosition{}
	}
	return p[0]
}

// Forward returns a new Path with steps in forward execution order
// (index 0 is the first step). Reimplementers are expected to normalize to
// forward order for internal bookkeeping and reverse only at the
// command-queue boundary; this helper performs that reversal.
func (p Path) Forward() Path {
	out := make(Path, len(p))
	for i, step := range p {
		out[len(p)-1-i] = step
	}
	return out
}

// ConflictType distinguishes the two kinds of joint-plan conflicts.
type ConflictType int

const (
	// ConflictVertex is two agents occupying the same cell at the same tick.
	ConflictVertex ConflictType = iota
	// ConflictEdge is two agents swapping cells between consecutive ticks.
	ConflictEdge
)

// Conflict describes a single collision between two agents' committed
// paths. Pos2 is only meaningful when Type is ConflictEdge, describing the
// other half of the swapped edge.
type Conflict struct {
	Type   ConflictType
	T      int
	Agent1 int
	Agent2 int
	Pos1   Position
	Pos2   Position
}
