package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/stencil-sim/stencil-sim/sim"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/models"
	"github.com/stencil-sim/stencil-sim/sim/trace"
)

func smallConfig(model string) sim.EngineConfig {
	cfg := sim.DefaultEngineConfig()
	cfg.Model = model
	cfg.Width = 12
	cfg.Height = 8
	cfg.Steps = 6
	return cfg
}

func TestRunEngine_LifeIsDeterministicAcrossPartitions(t *testing.T) {
	// GIVEN the same life run once undivided and once in four balanced slabs
	single := smallConfig(models.LifeModel)
	split := single
	split.Balancer = sim.BalancerConfig{Name: loadbalancer.Ooze, Partitions: 4, Interval: 2}
	split.Concurrency.EnableThreads = true

	// WHEN both run
	a, err := runEngine(single, runOutput{})
	require.NoError(t, err)
	b, err := runEngine(split, runOutput{})
	require.NoError(t, err)

	// THEN the population is the same and the slabs still cover the grid
	assert.Equal(t, a.Value, b.Value)
	assert.Equal(t, "Population", b.Observable)
	assert.Equal(t, 6, b.Steps)
	total := 0
	for _, s := range b.Slabs {
		total += s
	}
	assert.Equal(t, 8, total)
}

func TestRunEngine_DefaultsWithoutMetrics(t *testing.T) {
	// GIVEN the default config with metrics off
	cfg := sim.DefaultEngineConfig()
	cfg.Steps = 2

	// WHEN it runs
	result, err := runEngine(cfg, runOutput{})

	// THEN no registry is touched and nothing is gathered
	require.NoError(t, err)
	assert.Nil(t, result.Metrics)
	assert.Equal(t, 2, result.Steps)
}

func TestNewBalancer_NoSinksReturnsBareBalancer(t *testing.T) {
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.ErrorLevel)
	t.Cleanup(func() { logrus.SetLevel(level) })

	b := newBalancer(loadbalancer.Ooze, loadbalancer.Options{}, nil, nil)

	assert.IsType(t, &loadbalancer.OozeBalancer{}, b)
}

func TestRunEngine_HeatFlowsFromHotFace(t *testing.T) {
	cfg := smallConfig(models.HeatModel)
	cfg.Topology = "cube"

	result, err := runEngine(cfg, runOutput{})

	require.NoError(t, err)
	// the hot face alone holds 8 cells at 100 degrees; some heat has spread
	assert.Greater(t, result.Value, 800.0)
	assert.Equal(t, "Total Heat", result.Observable)
}

func TestRunEngine_TraceAndMetrics(t *testing.T) {
	cfg := smallConfig(models.LifeModel)
	cfg.Balancer = sim.BalancerConfig{Name: loadbalancer.Random, Partitions: 2, Interval: 3}
	cfg.Trace = string(trace.TraceLevelDecisions)

	result, err := runEngine(cfg, runOutput{Metrics: true})

	require.NoError(t, err)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 2, result.Trace.BalanceCalls)
	assert.Contains(t, string(result.Metrics), "stencil_balance_calls_total 2")
}

func TestRunEngine_WritesPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.png")
	cfg := smallConfig(models.LifeModel)

	_, err := runEngine(cfg, runOutput{PlotPath: path, CellSize: 3})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 36, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestRunResult_Print(t *testing.T) {
	r := runResult{Model: "life", Steps: 3, Cells: 16, Observable: "Population", Value: 5, Slabs: []int{2, 2},
		Trace: &trace.TraceSummary{BalanceCalls: 1}}
	var buf bytes.Buffer

	require.NoError(t, r.Print(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== Simulation Results ==="))
	assert.Contains(t, out, "Population           : 5.0000")
	assert.Contains(t, out, "Balance Calls        : 1")
	assert.NotContains(t, out, "Balance Metrics")
}

func TestApplyRunFlags_OnlyChangedFlagsOverride(t *testing.T) {
	// GIVEN a config file value and a flag left at its default
	cfg := sim.DefaultEngineConfig()
	cfg.Width = 99
	cfg.Steps = 17
	require.NoError(t, runCmd.Flags().Set("steps", "5"))
	require.NoError(t, runCmd.Flags().Set("tasks", "true"))
	t.Cleanup(func() {
		_ = runCmd.Flags().Set("steps", "100")
		_ = runCmd.Flags().Set("tasks", "false")
		runCmd.Flags().Lookup("steps").Changed = false
		runCmd.Flags().Lookup("tasks").Changed = false
	})

	// WHEN the flags are applied
	applyRunFlags(runCmd, &cfg)

	// THEN only the explicitly set flags win
	assert.Equal(t, 5, cfg.Steps)
	assert.True(t, cfg.Concurrency.EnableTasks)
	assert.Equal(t, 99, cfg.Width)
}
