package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TestPTAOrdersByATSPTour is scenario S6: a single agent parked at (1,1) is
// given two tasks, T1 closer than T2. The ATSP tour (even the stub's
// nearest-neighbor approximation) must order T1 before T2, and the agent's
// final path must visit both tasks' S/G cells in that order.
func TestPTAOrdersByATSPTour(t *testing.T) {
	grid := core.NewGrid(8, 8)
	agent := core.NewAgent(0, core.Position{X: 1, Y: 1})

	t1 := core.Task{S: core.Position{X: 2, Y: 2}, G: core.Position{X: 3, Y: 3}, R: 0}
	t2 := core.Task{S: core.Position{X: 4, Y: 4}, G: core.Position{X: 5, Y: 5}, R: 0}

	pta := NewPTA(StubATSPSolver{}, 5000)
	require.NoError(t, pta.Plan(grid, []*core.Agent{agent}, []core.Task{t1, t2}, 0))

	want := []core.Position{t1.S, t1.G, t2.S, t2.G}
	var got []core.Position
	// agent.Queue is stored in pop order (reverse of forward order), so walk
	// it back to front to recover the forward path.
	for i := len(agent.Queue) - 1; i >= 0; i-- {
		c := agent.Queue[i]
		if c.Kind == core.CommandMoveTo {
			for _, w := range want {
				if c.Pos == w {
					got = append(got, c.Pos)
				}
			}
		}
	}

	require.Equal(t, want, got)
	assert.Positive(t, pta.Makespan())
}
