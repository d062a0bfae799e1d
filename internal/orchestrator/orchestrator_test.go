package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/algo"
	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

func TestRunReleasesTasksAndReachesMakespan(t *testing.T) {
	grid := core.NewGrid(4, 4)
	agent := core.NewAgent(0, core.Position{X: 1, Y: 1})

	inst := core.NewInstance(grid)
	inst.Agents = append(inst.Agents, agent)
	inst.Tasks = append(inst.Tasks, core.Task{
		S: core.Position{X: 2, Y: 1}, G: core.Position{X: 2, Y: 2}, R: 3,
	})

	alg := algo.NewTokenPassing(grid, inst.Agents, 500, 0)
	orch := New(Config{
		Instance:  inst,
		Algorithm: alg,
		MaxTicks:  200,
		Logger:    zerolog.Nop(),
	})

	metrics, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TasksReleased)
	assert.Positive(t, metrics.Makespan)
	assert.Positive(t, metrics.Ticks)
}

// neverDoneAlgorithm is a stub Algorithm that advances its tick forever and
// never reports a makespan, used to exercise Run's context-cancellation and
// MaxTicks exit paths independently of any real algorithm's convergence.
type neverDoneAlgorithm struct{ tick int }

func (n *neverDoneAlgorithm) Update()                { n.tick++ }
func (n *neverDoneAlgorithm) AddTasks(_ []core.Task) {}
func (n *neverDoneAlgorithm) Timestep() int          { return n.tick }
func (n *neverDoneAlgorithm) Makespan() int          { return -1 }
func (n *neverDoneAlgorithm) Name() string           { return "never-done" }

func TestRunHonorsContextCancellation(t *testing.T) {
	inst := core.NewInstance(core.NewGrid(4, 4))
	orch := New(Config{
		Instance:  inst,
		Algorithm: &neverDoneAlgorithm{},
		Logger:    zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := orch.Run(ctx)
	require.Error(t, err)
}

func TestRunHonorsMaxTicks(t *testing.T) {
	inst := core.NewInstance(core.NewGrid(4, 4))
	orch := New(Config{
		Instance:  inst,
		Algorithm: &neverDoneAlgorithm{},
		MaxTicks:  10,
		Logger:    zerolog.Nop(),
	})

	metrics, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 10, metrics.Ticks)
}
