// Package scenario loads warehouse maps and MAPD scenarios from disk: a
// plain-text map file describing the grid layout, and a JSON scenario file
// describing agent starts, station positions, and the task release stream.
package scenario

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

// ErrMalformedMap is returned when a map file does not match the expected
// header/height/width/separator/rows layout.
var ErrMalformedMap = errors.New("scenario: malformed map file")

// ErrMalformedScenario is returned when a scenario JSON document is missing
// required fields or references positions outside the loaded grid.
var ErrMalformedScenario = errors.New("scenario: malformed scenario file")

// LoadGrid parses a map file in the warehouse layout format:
//
//	<arbitrary header line>
//	height H
//	width W
//	<separator line>
//	<H rows of W characters>
//
// Row characters: '.' free, 'T' wall, 'N' a shelf whose access cell is the
// row above it, 'S' a shelf whose access cell is the row below it.
func LoadGrid(path string) (*core.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open map: %w", err)
	}
	defer f.Close()
	return ParseGrid(f)
}

// ParseGrid parses the map format from an arbitrary reader.
func ParseGrid(r io.Reader) (*core.Grid, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing header line", ErrMalformedMap)
	}

	height, err := readDimensionLine(sc, "height")
	if err != nil {
		return nil, err
	}
	width, err := readDimensionLine(sc, "width")
	if err != nil {
		return nil, err
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing separator line", ErrMalformedMap)
	}

	grid := core.NewGrid(width, height)
	for y := 0; y < height; y++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedMap, height, y)
		}
		row := sc.Text()
		for x := 0; x < width && x < len(row); x++ {
			switch row[x] {
			case 'T':
				grid.SetWall(x, y)
			case 'N':
				grid.SetShelfAbove(x, y)
			case 'S':
				grid.SetShelfBelow(x, y)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMap, err)
	}
	return grid, nil
}

func readDimensionLine(sc *bufio.Scanner, want string) (int, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("%w: missing %s line", ErrMalformedMap, want)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != 2 || fields[0] != want {
		return 0, fmt.Errorf("%w: expected %q line, got %q", ErrMalformedMap, want, sc.Text())
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s value %q", ErrMalformedMap, want, fields[1])
	}
	return v, nil
}

// scenarioDoc mirrors the on-disk JSON scenario shape: a map file path, the
// agents' parking positions, station positions available for task
// generation tooling, and the full task release stream.
type scenarioDoc struct {
	Map              string       `json:"map"`
	AgentsPositions  [][2]int     `json:"agents_positions"`
	StationsPosition [][2]int     `json:"stations_positions"`
	Tasks            []taskDoc    `json:"tasks"`
}

type taskDoc struct {
	S [2]int `json:"s"`
	G [2]int `json:"g"`
	R int    `json:"r"`
}

// Scenario is a fully loaded instance plus the raw station list, kept
// alongside the instance for tooling; no planner in this repository reads
// the station list.
type Scenario struct {
	Instance *core.Instance
	Stations []core.Position
}

// LoadScenario reads a scenario JSON document from path, resolving its
// "map" field relative to the scenario file's own directory.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open scenario: %w", err)
	}
	defer f.Close()

	var doc scenarioDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedScenario, err)
	}

	mapPath := doc.Map
	if !strings.HasPrefix(mapPath, "/") {
		mapPath = joinDir(path, mapPath)
	}
	grid, err := LoadGrid(mapPath)
	if err != nil {
		return nil, err
	}

	if len(doc.AgentsPositions) == 0 {
		return nil, fmt.Errorf("%w: no agents_positions", ErrMalformedScenario)
	}

	inst := core.NewInstance(grid)
	for i, p := range doc.AgentsPositions {
		pos := core.Position{X: p[0], Y: p[1]}
		if !grid.InBounds(pos.X, pos.Y) {
			return nil, fmt.Errorf("%w: agent %d position %v out of bounds", ErrMalformedScenario, i, pos)
		}
		inst.Agents = append(inst.Agents, core.NewAgent(core.AgentID(i), pos))
	}

	for _, t := range doc.Tasks {
		s := core.Position{X: t.S[0], Y: t.S[1]}
		g := core.Position{X: t.G[0], Y: t.G[1]}
		if !grid.InBounds(s.X, s.Y) || !grid.InBounds(g.X, g.Y) {
			return nil, fmt.Errorf("%w: task %v out of bounds", ErrMalformedScenario, t)
		}
		inst.Tasks = append(inst.Tasks, core.Task{S: s, G: g, R: t.R})
	}

	stations := make([]core.Position, len(doc.StationsPosition))
	for i, p := range doc.StationsPosition {
		stations[i] = core.Position{X: p[0], Y: p[1]}
	}

	return &Scenario{Instance: inst, Stations: stations}, nil
}

func joinDir(scenarioPath, mapRel string) string {
	idx := strings.LastIndexByte(scenarioPath, '/')
	if idx < 0 {
		return mapRel
	}
	return scenarioPath[:idx+1] + mapRel
}
