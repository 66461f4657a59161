package cmd

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid/sim"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_RejectsUnknownKey(t *testing.T) {
	path := writeTempConfig(t, `
[scenario]
id = "demo"
duration_s = 100

[[components]]
id = "grid"
type = "supply"
unknown_field = true
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	var cfgErr *sim.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfig_ParsesScenarioAndComponents(t *testing.T) {
	path := writeTempConfig(t, `
[scenario]
id = "demo"
duration_s = 100
occurrences = 5
seed = 7

[[components]]
id = "grid"
type = "supply"
stream = "electricity"

[[components]]
id = "house"
type = "load"
stream = "electricity"
[[components.schedule]]
time = 0
value = 5.0

[[connections]]
from = "grid"
from_port = 0
to = "house"
to_port = 0
stream = "electricity"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Scenario.ID)
	assert.Equal(t, int64(100), cfg.Scenario.DurationS)
	assert.Equal(t, 5, cfg.Scenario.Occurrences)
	require.Len(t, cfg.Components, 2)
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, "grid", cfg.Connections[0].From)
}

func TestBuildScenario_UnknownComponentTypeIsConfigError(t *testing.T) {
	cfg := &FileConfig{
		Components: []ComponentConfig{{ID: "widget", Type: "teleporter"}},
	}
	_, err := BuildScenario(cfg, nil)
	require.Error(t, err)
	var cfgErr *sim.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildScenario_WiresSpecsAndConnections(t *testing.T) {
	cfg := &FileConfig{
		Scenario: ScenarioConfig{ID: "demo", DurationS: 50, Occurrences: 2},
		Components: []ComponentConfig{
			{ID: "grid", Type: "supply", Stream: "electricity"},
			{ID: "house", Type: "load", Stream: "electricity", Schedule: []ScheduleEntryConfig{{Time: 0, Value: 5}}},
		},
		Connections: []ConnectionConfig{{From: "grid", To: "house", Stream: "electricity"}},
	}

	sc, err := BuildScenario(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.ID)
	assert.Equal(t, int64(50), sc.Duration)
	assert.Equal(t, 2, sc.NumOccurrences)
	require.Contains(t, sc.Specs, "grid")
	require.Contains(t, sc.Specs, "house")
	require.Len(t, sc.Connections, 1)

	house := sc.Specs["house"].Build()
	assert.Equal(t, sim.ComponentLoad, house.Type())
}

func TestComponentSpec_SortsFailureProbabilitiesDescending(t *testing.T) {
	spec, err := componentSpec(ComponentConfig{
		ID: "grid", Type: "supply", Stream: "electricity",
		FailureProbabilities: []float64{0.1, 0.9, 0.5},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.5, 0.1}, spec.FailureProbabilities)
}

func TestComponentSpec_ScheduleDistributionResamplesPerBuild(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	spec, err := componentSpec(ComponentConfig{
		ID: "house", Type: "load", Stream: "electricity",
		ScheduleDistribution: &DistributionConfig{Type: "uniform", Min: 0, Max: 10},
		ScheduleTimes:        []int64{0, 10},
	}, rng)
	require.NoError(t, err)

	first := spec.Build().(*sim.Load)
	second := spec.Build().(*sim.Load)
	assert.NotEqual(t, first.Schedule(), second.Schedule(), "each Build draws a fresh schedule from the RNG")
}

func TestComponentSpec_ScheduleDistributionWithoutRNGIsConfigError(t *testing.T) {
	_, err := componentSpec(ComponentConfig{
		ID: "house", Type: "load", Stream: "electricity",
		ScheduleDistribution: &DistributionConfig{Type: "fixed", Value: 5},
		ScheduleTimes:        []int64{0},
	}, nil)
	require.Error(t, err)
	var cfgErr *sim.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
