package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TestTokenPassingSingleTask is scenario S4: a single agent parked at
// (1,1) is given one task; within five ticks it must claim the task,
// removing it from the shared pool.
func TestTokenPassingSingleTask(t *testing.T) {
	grid := core.NewGrid(3, 3)
	agents := []*core.Agent{core.NewAgent(0, core.Position{X: 1, Y: 1})}
	tp := NewTokenPassing(grid, agents, 500, 0)
	tp.AddTasks([]core.Task{{S: core.Position{X: 2, Y: 2}, G: core.Position{X: 1, Y: 2}, R: 0}})

	claimed := false
	for i := 0; i < 5; i++ {
		tp.Update()
		if len(tp.token.Tasks) == 0 {
			claimed = true
			break
		}
	}
	assert.Truef(t, claimed, "expected the task to be claimed within 5 ticks, pool still has %d", len(tp.token.Tasks))
}

// TestTokenPassingTaskSwap is scenario S5: agent A has already claimed a
// task whose pickup cell agent B happens to be standing on. On B's next
// token turn it must steal the task, since B's arrival is strictly sooner
// than A's committed arrival.
func TestTokenPassingTaskSwap(t *testing.T) {
	grid := core.NewGrid(8, 3)
	a := core.NewAgent(0, core.Position{X: 1, Y: 1})
	b := core.NewAgent(1, core.Position{X: 5, Y: 1})
	tps := NewTokenPassingTaskSwap(grid, []*core.Agent{a, b}, 500, 0)

	task := core.Task{S: core.Position{X: 5, Y: 1}, G: core.Position{X: 6, Y: 1}, R: 0}
	tps.token.Tasks = []core.Task{task}

	// Seed the token as if A claimed the task on a prior tick: A's
	// committed path reaches (5,1) only after several ticks of travel.
	tc := task
	tps.token.Assign[a.ID] = &tc
	tps.token.Paths[a.ID] = tps.path1In(tps.token, a, task)
	oldArrival := tps.token.Paths[a.ID].End().T
	require.GreaterOrEqualf(t, oldArrival, 4, "test setup: expected A's naive arrival to take several ticks")

	tps.getTask(b.ID, tps.token)

	assign := tps.token.Assign[b.ID]
	require.NotNil(t, assign, "expected agent B to steal the task")
	assert.Equal(t, task, *assign)

	newArrival := tps.token.Paths[b.ID].End().T
	assert.Lessf(t, newArrival, oldArrival, "expected B's arrival (%d) to be strictly less than A's prior arrival (%d)", newArrival, oldArrival)
}
