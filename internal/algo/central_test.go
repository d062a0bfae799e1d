package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TestCentralRoutesThroughPickupBeforeDelivery checks that Central's
// two-phase CBS replanning actually visits a task's pickup cell before its
// delivery cell, rather than jumping straight from the agent's start to G.
func TestCentralRoutesThroughPickupBeforeDelivery(t *testing.T) {
	grid := core.NewGrid(6, 6)
	agent := core.NewAgent(0, core.Position{X: 1, Y: 1})
	c := NewCentral(grid, []*core.Agent{agent}, 500, 0)

	task := core.Task{S: core.Position{X: 3, Y: 1}, G: core.Position{X: 3, Y: 3}, R: 0}
	c.AddTasks([]core.Task{task})

	visitedS, visitedG := false, false
	for i := 0; i < 40 && c.Makespan() < 0; i++ {
		c.Update()
		if agent.Position == task.S {
			visitedS = true
		}
		if visitedS && agent.Position == task.G {
			visitedG = true
		}
		if agent.Position == task.G && !visitedS {
			t.Fatalf("agent reached delivery cell %v before visiting pickup cell %v", task.G, task.S)
		}
	}

	assert.True(t, visitedS, "expected the agent to visit the task's pickup cell")
	assert.True(t, visitedG, "expected the agent to visit the task's delivery cell after pickup")
	assert.GreaterOrEqual(t, c.Makespan(), 0, "expected Central to report a makespan once the pool and assignments are empty")
}
