package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// openGrid builds an n x n grid with no obstacles.
func openGrid(n int) *core.Grid {
	return core.NewGrid(n, n)
}

// corridorGrid builds a two-row corridor of the given width; callers stay
// on row y=1 since row y=0 can never be a Neighbors destination.
func corridorGrid(width int) *core.Grid {
	return core.NewGrid(width, 2)
}

func TestFindFirstConflict_NoConflict(t *testing.T) {
	paths := map[core.AgentID]core.Path{
		0: {{Pos: core.Position{X: 2, Y: 0}, T: 2}, {Pos: core.Position{X: 1, Y: 0}, T: 1}, {Pos: core.Position{X: 0, Y: 0}, T: 0}},
		1: {{Pos: core.Position{X: 12, Y: 0}, T: 2}, {Pos: core.Position{X: 11, Y: 0}, T: 1}, {Pos: core.Position{X: 10, Y: 0}, T: 0}},
	}
	assert.Nil(t, FindFirstConflict(paths))
}

func TestFindFirstConflict_VertexConflict(t *testing.T) {
	paths := map[core.AgentID]core.Path{
		0: {{Pos: core.Position{X: 6, Y: 0}, T: 2}, {Pos: core.Position{X: 1, Y: 0}, T: 1}, {Pos: core.Position{X: 0, Y: 0}, T: 0}},
		1: {{Pos: core.Position{X: 6, Y: 0}, T: 2}, {Pos: core.Position{X: 1, Y: 0}, T: 1}, {Pos: core.Position{X: 5, Y: 0}, T: 0}},
	}
	c := FindFirstConflict(paths)
	require.NotNil(t, c)
	assert.Equal(t, core.ConflictVertex, c.Type)
}

func TestFindFirstConflict_EdgeConflict(t *testing.T) {
	paths := map[core.AgentID]core.Path{
		0: {{Pos: core.Position{X: 1, Y: 0}, T: 1}, {Pos: core.Position{X: 0, Y: 0}, T: 0}},
		1: {{Pos: core.Position{X: 0, Y: 0}, T: 1}, {Pos: core.Position{X: 1, Y: 0}, T: 0}},
	}
	c := FindFirstConflict(paths)
	require.NotNil(t, c)
	assert.Equal(t, core.ConflictEdge, c.Type)
}

// TestAStarStraightLine is scenario S1 from the testable-properties suite:
// a 5-wide corridor, no constraints, must walk straight through along
// row y=1 (row y=0 is never a valid Neighbors destination).
func TestAStarStraightLine(t *testing.T) {
	g := corridorGrid(5)
	path := SpaceTimeAStar(g, core.Position{X: 1, Y: 1}, core.Position{X: 4, Y: 1}, core.NewConstraintSet(), 0, 0)
	fwd := path.Forward()
	want := []core.Position{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}
	require.Len(t, fwd, len(want))
	for i, w := range want {
		assert.Equal(t, w, fwd[i].Pos, "step %d position", i)
		assert.Equal(t, i, fwd[i].T, "step %d time", i)
	}
}

// TestAStarDetourAroundVertexConstraint is scenario S2.
func TestAStarDetourAroundVertexConstraint(t *testing.T) {
	g := openGrid(4)
	cs := core.NewConstraintSet()
	cs.AddVertex(core.Position{X: 2, Y: 1}, 1)
	path := SpaceTimeAStar(g, core.Position{X: 1, Y: 1}, core.Position{X: 3, Y: 1}, cs, 0, 0)
	assert.Len(t, path, 4)
	for _, step := range path {
		assert.Falsef(t, cs.ForbidsVertex(step.Pos, step.T), "path violates constraint at %v@%d", step.Pos, step.T)
	}
}

// TestAStarDegenerateFailure checks the §9 open-question policy: a path of
// length 1 with start != target signals infeasibility.
func TestAStarDegenerateFailure(t *testing.T) {
	g := core.NewGrid(3, 3)
	g.SetWall(2, 1)
	g.SetWall(1, 2)
	g.SetWall(2, 2)
	cs := core.NewConstraintSet()
	path := SpaceTimeAStar(g, core.Position{X: 1, Y: 1}, core.Position{X: 2, Y: 2}, cs, 0, 50)
	require.Lenf(t, path, 1, "expected degenerate length-1 path, got %v", path)
}
