package core

// AgentID is a unique agent identifier.
type AgentID int

// Agent is a mobile unit with a parking position, a current position, and a
// command queue. The queue is consumed from the tail, matching the source
// simulator's command_queue.pop() semantics: commands are stored in
// reverse execution order and popped off the end. AssignQueue takes a plan
// in forward order and performs that reversal itself.
type Agent struct {
	ID       AgentID
	Start    Position // parking position
	Position Position
	Carrying bool
	Queue    []Command
}

// NewAgent creates an idle agent parked at start.
func NewAgent(id AgentID, start Position) *Agent {
	return &Agent{ID: id, Start: start, Position: start}
}

// RequiresToken reports whether the agent has run out of committed work and
// should request a new assignment: its command queue is empty, so the
// final command of its previous plan has already been executed.
func (a *Agent) RequiresToken() bool {
	return len(a.Queue) < 1
}

// AssignQueue replaces the agent's command queue, built to be popped from
// the tail: front-to-back execution order is stored back-to-front.
func (a *Agent) AssignQueue(forwardOrder []Command) {
	a.Queue = make([]Command, len(forwardOrder))
	for i, c := range forwardOrder {
		a.Queue[len(forwardOrder)-1-i] = c
	}
}

// PopCommand removes and returns the next command to execute (the tail of
// the queue), or false if the queue is empty.
func (a *Agent) PopCommand() (Command, bool) {
	if len(a.Queue) == 0 {
		return Command{}, false
	}
	last := len(a.Queue) - 1
	c := a.Queue[last]
	a.Queue = a.Queue[:last]
	return c, true
}

// Apply executes a single command against the agent's state. MoveTo changes
// position; Pickup and Unload only toggle carry state, matching the
// source's match on "move_to"/"pickup"/"unload" where only move_to touches
// the agent's grid position.
func (a *Agent) Apply(c Command) {
	switch c.Kind {
	case CommandMoveTo:
		a.Position = c.Pos
	case CommandPickup:
		a.Carrying = true
	case CommandUnload:
		a.Carrying = false
	}
}
