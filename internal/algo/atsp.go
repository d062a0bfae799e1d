package algo

import "errors"

// ErrATSPFailed is returned when the external ATSP solver cannot produce a
// tour. Per spec this is fatal for PTA: there is no fallback.
var ErrATSPFailed = errors.New("algo: atsp solver failed")

// ATSPSolver is the pluggable "distance matrix -> tour" boundary PTA plans
// through. dist is an n x n matrix (dist[i][j] = weight of the directed
// edge i->j; the diagonal must be zero). The returned tour is a Hamiltonian
// cycle as a permutation of [0, n), starting and ending implicitly at
// tour[0] (the caller does not need a repeated closing vertex).
//
// Treating this as a pluggable interface keeps PTA's partitioning and
// prioritized-replanning logic testable against a deterministic stub
// without depending on the real solver.
type ATSPSolver interface {
	Solve(dist [][]float64) ([]int, error)
}

// StubATSPSolver is a deterministic nearest-neighbor ATSP approximation
// used by tests: it never imports the real solver, so algo package tests
// stay hermetic and fast.
type StubATSPSolver struct{}

// Solve builds a tour by repeatedly stepping to the nearest unvisited
// vertex, starting from vertex 0. This is not optimal; it exists purely to
// exercise PTA's tour-walking logic deterministically in tests.
func (StubATSPSolver) Solve(dist [][]float64) ([]int, error) {
	n := len(dist)
	if n == 0 {
		return nil, ErrATSPFailed
	}
	visited := make([]bool, n)
	tour := make([]int, 0, n)
	cur := 0
	visited[cur] = true
	tour = append(tour, cur)
	for len(tour) < n {
		best := -1
		bestW := 0.0
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if best == -1 || dist[cur][j] < bestW {
				best = j
				bestW = dist[cur][j]
			}
		}
		if best == -1 {
			return nil, ErrATSPFailed
		}
		visited[best] = true
		tour = append(tour, best)
		cur = best
	}
	return tour, nil
}
