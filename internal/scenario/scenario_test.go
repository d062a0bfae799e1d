package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/mapf-het-research/internal/core"
)

const testMap = "warehouse demo\n" +
	"height 3\n" +
	"width 4\n" +
	"---\n" +
	"....\n" +
	".NT.\n" +
	"....\n"

func TestParseGridRecognizesCellKinds(t *testing.T) {
	grid, err := ParseGrid(strings.NewReader(testMap))
	require.NoError(t, err)
	assert.Equal(t, 4, grid.Width())
	assert.Equal(t, 3, grid.Height())
	assert.True(t, grid.Passable(0, 0), "expected (0,0) to be free")
	assert.False(t, grid.Passable(2, 1), "expected (2,1), a wall, to be impassable")
}

func TestParseGridRejectsMalformedHeader(t *testing.T) {
	bad := "warehouse demo\nheight abc\nwidth 4\n---\n"
	_, err := ParseGrid(strings.NewReader(bad))
	require.Error(t, err)
}

func TestParseGridRejectsTruncatedRows(t *testing.T) {
	bad := "warehouse demo\nheight 3\nwidth 4\n---\n....\n"
	_, err := ParseGrid(strings.NewReader(bad))
	require.Error(t, err)
}

func TestLoadScenarioResolvesMapRelativeToScenarioFile(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "demo.map")
	require.NoError(t, writeFile(mapPath, testMap))

	scenarioJSON := `{
		"map": "demo.map",
		"agents_positions": [[0, 0]],
		"stations_positions": [[3, 2]],
		"tasks": [{"s": [3, 0], "g": [0, 2], "r": 0}]
	}`
	scenarioPath := filepath.Join(dir, "demo.json")
	require.NoError(t, writeFile(scenarioPath, scenarioJSON))

	sc, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	require.Len(t, sc.Instance.Agents, 1)
	assert.Equal(t, core.Position{X: 0, Y: 0}, sc.Instance.Agents[0].Position)
	require.Len(t, sc.Instance.Tasks, 1)
	require.Len(t, sc.Stations, 1)
	assert.Equal(t, core.Position{X: 3, Y: 2}, sc.Stations[0])
}

func TestLoadScenarioRejectsOutOfBoundsTask(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "demo.map")
	require.NoError(t, writeFile(mapPath, testMap))

	scenarioJSON := `{
		"map": "demo.map",
		"agents_positions": [[0, 0]],
		"tasks": [{"s": [99, 99], "g": [0, 0], "r": 0}]
	}`
	scenarioPath := filepath.Join(dir, "demo.json")
	require.NoError(t, writeFile(scenarioPath, scenarioJSON))

	_, err := LoadScenario(scenarioPath)
	require.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
