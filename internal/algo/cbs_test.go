package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// TestCBSHeadOn is scenario S3: two agents cross a 5x3 grid in opposite
// directions along row 1 (row 0 is never a valid Neighbors destination);
// CBS must route exactly one of them through row 2 to avoid a head-on
// conflict.
func TestCBSHeadOn(t *testing.T) {
	grid := core.NewGrid(5, 3)
	cbs := NewCBS(500)

	agentsTasks := map[core.AgentID][2]core.Position{
		0: {core.Position{X: 1, Y: 1}, core.Position{X: 4, Y: 1}},
		1: {core.Position{X: 4, Y: 1}, core.Position{X: 1, Y: 1}},
	}

	solution := cbs.Solve(grid, agentsTasks, 0, nil)
	require.NotNil(t, solution, "expected a conflict-free solution")

	assert.Empty(t, FindAllConflicts(solution))

	total := len(solution[0]) + len(solution[1])
	assert.GreaterOrEqual(t, total, 9)

	agentsInRow2 := 0
	for _, p := range solution {
		for _, step := range p {
			if step.Pos.Y == 2 {
				agentsInRow2++
				break
			}
		}
	}
	assert.Equal(t, 1, agentsInRow2, "expected exactly one agent to detour through row 2")
}
