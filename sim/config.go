package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/models"
	"github.com/stencil-sim/stencil-sim/sim/trace"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

// EngineConfig describes one run of the engine. It is loaded from YAML
// and then selectively overridden by command line flags.
type EngineConfig struct {
	Model    string  `yaml:"model"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Depth    int     `yaml:"depth"` // 0 is treated as 1
	Topology string  `yaml:"topology"`
	Steps    int     `yaml:"steps"`
	Seed     int64   `yaml:"seed"`
	Density  float64 `yaml:"density"` // initial live share for the life model

	Concurrency update.ConcurrencySpec `yaml:"concurrency"`
	Balancer    BalancerConfig         `yaml:"balancer"`
	Trace       string                 `yaml:"trace"`
}

// BalancerConfig groups partitioning and load balancing parameters.
type BalancerConfig struct {
	Name       string `yaml:"name"`
	Partitions int    `yaml:"partitions"` // 0 or 1 disables partitioning
	Interval   int    `yaml:"interval"`   // steps between balance calls, 0 disables balancing

	loadbalancer.Options `yaml:",inline"`
}

// DefaultEngineConfig returns the configuration used when no file is
// given.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Model:    models.LifeModel,
		Width:    64,
		Height:   64,
		Depth:    1,
		Topology: string(geometry.Torus),
		Steps:    100,
		Seed:     42,
		Density:  0.3,
		Balancer: BalancerConfig{Name: loadbalancer.NoOp, Partitions: 1},
		Trace:    string(trace.TraceLevelNone),
	}
}

// LoadEngineConfig reads a YAML config file on top of
// DefaultEngineConfig. Unknown keys are rejected.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine config: %w", err)
	}
	cfg := DefaultEngineConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	return &cfg, nil
}

// Dimensions returns the grid dimensions.
func (c EngineConfig) Dimensions() geometry.Coord {
	return geometry.Coord{X: c.Width, Y: c.Height, Z: max(c.Depth, 1)}
}

// Validate checks that all names are recognized and all sizes are usable.
func (c EngineConfig) Validate() error {
	if !models.IsValidModel(c.Model) {
		return fmt.Errorf("unknown model %q", c.Model)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Depth < 0 {
		return fmt.Errorf("invalid dimensions %dx%dx%d", c.Width, c.Height, c.Depth)
	}
	if !geometry.IsValidTopology(c.Topology) {
		return fmt.Errorf("unknown topology %q", c.Topology)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be >= 0, got %d", c.Steps)
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("density must be in [0, 1], got %v", c.Density)
	}
	if c.Concurrency.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Concurrency.Workers)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	return c.Balancer.Validate(c.Dimensions())
}

// Validate checks the balancer against a grid of the given dimensions.
func (b BalancerConfig) Validate(dims geometry.Coord) error {
	if !loadbalancer.IsValidLoadBalancer(b.Name) {
		return fmt.Errorf("unknown load balancer %q; valid: %v", b.Name, loadbalancer.ValidLoadBalancerNames())
	}
	if b.Partitions < 0 {
		return fmt.Errorf("partitions must be >= 0, got %d", b.Partitions)
	}
	if n := SlabLength(dims); b.Partitions > n {
		return fmt.Errorf("%d partitions do not fit into %d slabs", b.Partitions, n)
	}
	if b.Interval < 0 {
		return fmt.Errorf("balance interval must be >= 0, got %d", b.Interval)
	}
	if b.Ooze < 0 || b.Ooze > 1 {
		return fmt.Errorf("ooze must be in [0, 1], got %v", b.Ooze)
	}
	return nil
}
