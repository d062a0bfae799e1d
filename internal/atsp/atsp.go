// Package atsp wires the planner's pluggable ATSP boundary to a real
// third-party solver: github.com/katalvlaran/lvlath/tsp, dispatched over a
// github.com/katalvlaran/lvlath/matrix.Dense distance matrix.
package atsp

import (
	"fmt"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/tsp"
)

// Solver implements algo.ATSPSolver using lvlath's TwoOptOnly dispatch path,
// the one algorithm in that package explicit about supporting asymmetric
// matrices (see lvlath's tsp/validate.go, mustEnforceSymmetry). PTA's
// agent/task weight matrix is asymmetric in general (agent->task generally
// differs from task->agent), so Christofides/OneTreeBound are not options
// here.
type Solver struct {
	// EnableLocalSearch turns on lvlath's post-pass 2-opt refinement.
	EnableLocalSearch bool
}

// NewSolver returns a Solver with local search enabled, matching the
// default PTA wiring described in SPEC_FULL.md's DOMAIN STACK section.
func NewSolver() *Solver {
	return &Solver{EnableLocalSearch: true}
}

// Solve converts dist into a lvlath Dense matrix and asks lvlath's
// TwoOptOnly dispatcher for a Hamiltonian cycle. The returned tour is
// trimmed of its closing repeated start vertex, since algo.ATSPSolver's
// contract is a plain permutation of [0, n).
func (s *Solver) Solve(dist [][]float64) ([]int, error) {
	n := len(dist)
	if n == 0 {
		return nil, fmt.Errorf("atsp: empty distance matrix")
	}

	dense, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("atsp: building matrix: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue // diagonal must stay exactly zero for lvlath's validator
			}
			if err := dense.Set(i, j, dist[i][j]); err != nil {
				return nil, fmt.Errorf("atsp: setting (%d,%d): %w", i, j, err)
			}
		}
	}

	opts := tsp.DefaultOptions()
	opts.Algo = tsp.TwoOptOnly
	opts.Symmetric = false
	opts.EnableLocalSearch = s.EnableLocalSearch

	result, err := tsp.SolveWithMatrix(dense, nil, opts)
	if err != nil {
		return nil, fmt.Errorf("atsp: solve: %w", err)
	}
	if len(result.Tour) < n {
		return nil, fmt.Errorf("atsp: short tour returned (%d < %d)", len(result.Tour), n)
	}
	// lvlath's TSResult.Tour closes the cycle: Tour[0] == Tour[n]. Drop the
	// repeated closing vertex to satisfy algo.ATSPSolver's contract.
	return result.Tour[:n], nil
}
