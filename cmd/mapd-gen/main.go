// Command mapd-gen generates deterministic MAPD map and scenario files for
// benchmarking, mirroring the teacher's instance generator: a seeded RNG,
// flag-driven parameters, and JSON output.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

type mapFile struct {
	width, height int
	rows          []string
}

func generateMap(rng *rand.Rand, width, height int, shelfDensity float64) *mapFile {
	rows := make([]string, height)
	// Row 0 and the last row stay open corridors (matches Grid.Neighbors'
	// x>=1,y>=1 boundary rule: nothing useful can live on the zero edge).
	for y := 0; y < height; y++ {
		row := make([]byte, width)
		for x := 0; x < width; x++ {
			row[x] = '.'
		}
		rows[y] = string(row)
	}

	for y := 2; y < height-2; y += 2 {
		row := []byte(rows[y])
		for x := 1; x < width-1; x++ {
			if rng.Float64() < shelfDensity {
				row[x] = 'N'
				below := []byte(rows[y+1])
				below[x] = '.'
				rows[y+1] = string(below)
			}
		}
		rows[y] = string(row)
	}

	return &mapFile{width: width, height: height, rows: rows}
}

func (m *mapFile) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "type warehouse")
	fmt.Fprintf(f, "height %d\n", m.height)
	fmt.Fprintf(f, "width %d\n", m.width)
	fmt.Fprintln(f, "map")
	for _, row := range m.rows {
		fmt.Fprintln(f, row)
	}
	return nil
}

func (m *mapFile) passable(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.rows[y][x] == '.'
}

type scenarioDoc struct {
	Map              string   `json:"map"`
	AgentsPositions  [][2]int `json:"agents_positions"`
	StationsPosition [][2]int `json:"stations_positions"`
	Tasks            []taskDoc `json:"tasks"`
}

type taskDoc struct {
	S [2]int `json:"s"`
	G [2]int `json:"g"`
	R int    `json:"r"`
}

func randomFreeCell(rng *rand.Rand, m *mapFile, taken map[[2]int]bool) [2]int {
	for {
		x := 1 + rng.Intn(m.width-1)
		y := 1 + rng.Intn(m.height-1)
		if !m.passable(x, y) {
			continue
		}
		c := [2]int{x, y}
		if taken[c] {
			continue
		}
		taken[c] = true
		return c
	}
}

func main() {
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	width := flag.Int("width", 20, "grid width")
	height := flag.Int("height", 20, "grid height")
	shelfDensity := flag.Float64("shelf-density", 0.3, "fraction of interior cells considered for shelf placement")
	numAgents := flag.Int("agents", 10, "number of agents")
	taskCount := flag.Int("tasks", 30, "number of tasks")
	releaseSpan := flag.Int("release-span", 50, "tasks are released uniformly over ticks [0, release-span]")
	outputDir := flag.String("output", "testdata", "output directory")
	name := flag.String("name", "scenario", "base name for the generated map/scenario files")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mapd-gen: creating output directory: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	m := generateMap(rng, *width, *height, *shelfDensity)

	mapPath := filepath.Join(*outputDir, *name+".map")
	if err := m.write(mapPath); err != nil {
		fmt.Fprintf(os.Stderr, "mapd-gen: writing map: %v\n", err)
		os.Exit(1)
	}

	taken := make(map[[2]int]bool)
	doc := scenarioDoc{Map: *name + ".map"}
	for i := 0; i < *numAgents; i++ {
		doc.AgentsPositions = append(doc.AgentsPositions, randomFreeCell(rng, m, taken))
	}
	for i := 0; i < *numAgents; i++ {
		doc.StationsPosition = append(doc.StationsPosition, randomFreeCell(rng, m, taken))
	}
	for i := 0; i < *taskCount; i++ {
		s := randomFreeCell(rng, m, map[[2]int]bool{}) // tasks may reuse cells across each other
		g := randomFreeCell(rng, m, map[[2]int]bool{})
		r := 0
		if *releaseSpan > 0 {
			r = rng.Intn(*releaseSpan + 1)
		}
		doc.Tasks = append(doc.Tasks, taskDoc{S: s, G: g, R: r})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapd-gen: marshaling scenario: %v\n", err)
		os.Exit(1)
	}
	scenarioPath := filepath.Join(*outputDir, *name+".json")
	if err := os.WriteFile(scenarioPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "mapd-gen: writing scenario: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("generated %s and %s (%d agents, %d tasks, %dx%d grid)\n",
		mapPath, scenarioPath, *numAgents, *taskCount, *width, *height)
}
