// Package core holds the shared domain model for the warehouse planner:
// the grid, positions, tasks, agents, paths and the space-time constraint
// vocabulary that every planning algorithm in internal/algo is built on.
package core

import "fmt"

// CellKind classifies a single grid cell.
type CellKind int

const (
	// CellFree is a traversable, unoccupied cell.
	CellFree CellKind = iota
	// CellWall is a permanently impassable cell.
	CellWall
	// CellShelfAbove is an impassable shelf whose access cell is directly above it.
	CellShelfAbove
	// CellShelfBelow is an impassable shelf whose access cell is directly below it.
	CellShelfBelow
)

// Position is a cell coordinate on the grid.
type Position struct {
	X, Y int
}

// String renders a Position for logging and diagnostics.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns the L1 distance between two positions.
func (p Position) Manhattan(o Position) int {
	return absInt(p.X-o.X) + absInt(p.Y-o.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid is a rectangular, static occupancy map. It is immutable after
// construction, matching the "Lifetime: immutable after load" invariant.
type Grid struct {
	width, height int
	cells         []CellKind
}

// NewGrid builds a Grid of the given dimensions with every cell free.
// Callers populate obstacles with SetWall/SetShelfAbove/SetShelfBelow
// before using the grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]CellKind, width*height),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(x, y int) int { return y*g.width + x }

// InBounds reports whether (x, y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// SetWall marks a cell impassable.
func (g *Grid) SetWall(x, y int) {
	if g.InBounds(x, y) {
		g.cells[g.index(x, y)] = CellWall
	}
}

// SetShelfAbove marks a cell as an impassable shelf whose access cell is above it.
func (g *Grid) SetShelfAbove(x, y int) {
	if g.InBounds(x, y) {
		g.cells[g.index(x, y)] = CellShelfAbove
	}
}

// SetShelfBelow marks a cell as an impassable shelf whose access cell is below it.
func (g *Grid) SetShelfBelow(x, y int) {
	if g.InBounds(x, y) {
		g.cells[g.index(x, y)] = CellShelfBelow
	}
}

// Kind reports the CellKind at (x, y). Out-of-bounds cells report CellWall.
func (g *Grid) Kind(x, y int) CellKind {
	if !g.InBounds(x, y) {
		return CellWall
	}
	return g.cells[g.index(x, y)]
}

// Passable reports whether a cell is in bounds and not a wall or shelf.
func (g *Grid) Passable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	switch g.cells[g.index(x, y)] {
	case CellFree:
		return true
	default:
		return false
	}
}

// AccessCellFor resolves the traversable cell adjacent to a shelf, if any.
// This is a supplemental accessor beyond the base grid contract: the
// distilled map format records an access direction per shelf cell, and
// scenarios built against shelf-adjacent pickups need it resolved.
func (g *Grid) AccessCellFor(shelf Position) (Position, bool) {
	switch g.Kind(shelf.X, shelf.Y) {
	case CellShelfAbove:
		return Position{X: shelf.X, Y: shelf.Y - 1}, true
	case CellShelfBelow:
		return Position{X: shelf.X, Y: shelf.Y + 1}, true
	default:
		return Position{}, false
	}
}

// Neighbors returns up to five reachable positions from (x, y): the four
// cardinal moves plus "stay". A neighbor is only returned if it is in
// bounds with x >= 1 and y >= 1 (the zero row/column is never a valid
// destination, matching the source grid's boundary convention) and
// passable. Stay is offered whenever the current cell itself is passable.
func (g *Grid) Neighbors(x, y int) []Position {
	out := make([]Position, 0, 5)
	candidates := [4]Position{
		{X: x + 1, Y: y},
		{X: x - 1, Y: y},
		{X: x, Y: y + 1},
		{X: x, Y: y - 1},
	}
	for _, c := range candidates {
		if c.X >= 1 && c.Y >= 1 && g.Passable(c.X, c.Y) {
			out = append(out, c)
		}
	}
	if g.Passable(x, y) {
		out = append(out, Position{X: x, Y: y})
	}
	return out
}
