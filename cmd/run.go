package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"

	sim "github.com/stencil-sim/stencil-sim/sim"
	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/models"
	"github.com/stencil-sim/stencil-sim/sim/plotter"
	"github.com/stencil-sim/stencil-sim/sim/storage"
	"github.com/stencil-sim/stencil-sim/sim/trace"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

// runOutput selects optional outputs of runEngine.
type runOutput struct {
	PlotPath string
	CellSize int
	Metrics  bool
}

// runResult summarizes a finished run.
type runResult struct {
	Model      string
	Steps      int
	Cells      int
	Observable string
	Value      float64
	Slabs      []int
	Wall       time.Duration
	Trace      *trace.TraceSummary
	Metrics    []byte // Prometheus text format, nil unless requested
}

// Print writes the human readable summary of the run.
func (r runResult) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, "=== Simulation Results ===")
	fmt.Fprintf(&b, "Model                : %s\n", r.Model)
	fmt.Fprintf(&b, "Nano Steps           : %d\n", r.Steps)
	fmt.Fprintf(&b, "Cells                : %d\n", r.Cells)
	fmt.Fprintf(&b, "%-21s: %.4f\n", r.Observable, r.Value)
	fmt.Fprintf(&b, "Final Slabs          : %v\n", r.Slabs)
	fmt.Fprintf(&b, "Wall Time            : %v\n", r.Wall)
	if r.Trace != nil {
		fmt.Fprintln(&b, "=== Balance Trace ===")
		fmt.Fprintf(&b, "Balance Calls        : %d\n", r.Trace.BalanceCalls)
		fmt.Fprintf(&b, "Units Moved          : %d\n", r.Trace.UnitsMoved)
		fmt.Fprintf(&b, "Mean Imbalance       : %.4f\n", r.Trace.MeanImbalance)
		fmt.Fprintf(&b, "Max Imbalance        : %.4f\n", r.Trace.MaxImbalance)
	}
	if r.Metrics != nil {
		fmt.Fprintln(&b, "=== Balance Metrics ===")
		b.Write(r.Metrics)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// runEngine runs the model named by cfg. cfg must be valid.
func runEngine(cfg sim.EngineConfig, out runOutput) (runResult, error) {
	var reg *prometheus.Registry
	if out.Metrics {
		reg = prometheus.NewRegistry()
	}
	key := sim.NewSimulationKey(cfg.Seed)
	opts := cfg.Balancer.Options
	if opts.Seed == 0 {
		opts.Seed = key.Seed(sim.SubsystemBalancer)
	}
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)})
	balancer := newBalancer(cfg.Balancer.Name, opts, st, reg)

	var result runResult
	var err error
	switch cfg.Model {
	case models.LifeModel:
		result, err = simulate(cfg, balancer, lifeModel(cfg), out)
	case models.HeatModel:
		result, err = simulate(cfg, balancer, heatModel(cfg), out)
	default:
		return runResult{}, fmt.Errorf("unknown model %q", cfg.Model)
	}
	if err != nil {
		return runResult{}, err
	}
	if st.Enabled() {
		result.Trace = trace.Summarize(st)
	}
	if reg != nil {
		if result.Metrics, err = gatherText(reg); err != nil {
			return runResult{}, err
		}
	}
	return result, nil
}

// newBalancer creates the named balancer and wraps it with a tracing
// decorator when any sink is active. st and reg may be nil.
func newBalancer(name string, opts loadbalancer.Options, st *trace.SimulationTrace, reg *prometheus.Registry) loadbalancer.LoadBalancer {
	b := loadbalancer.NewLoadBalancer(name, opts)
	var sinks loadbalancer.MultiSink
	if st.Enabled() {
		sinks = append(sinks, st)
	}
	if reg != nil {
		sinks = append(sinks, loadbalancer.NewPrometheusSink(reg))
	}
	if logrus.IsLevelEnabled(logrus.InfoLevel) {
		sinks = append(sinks, loadbalancer.NewLogSink(logrus.StandardLogger()))
	}
	if len(sinks) == 0 {
		return b
	}
	if name == "" {
		name = loadbalancer.NoOp
	}
	return loadbalancer.NewTracingBalancer(b, name, sinks)
}

// gatherText renders every metric family of reg in the Prometheus text
// exposition format.
func gatherText(reg prometheus.Gatherer) ([]byte, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return nil, fmt.Errorf("encoding metrics: %w", err)
		}
	}
	return []byte(b.String()), nil
}

// cellModel bundles what the runner needs to know about a cell type.
type cellModel[C update.Cell[C]] struct {
	name       string
	init       func(g storage.GridBase[C], box geometry.CoordBox)
	observable string
	observe    func(g storage.GridBase[C], region *geometry.Region) float64
	color      *storage.Selector[C]
}

func lifeModel(cfg sim.EngineConfig) cellModel[models.Life] {
	palette := &plotter.Palette[uint8]{}
	palette.AddColor(0, color.RGBA{A: 255}).AddColor(1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return cellModel[models.Life]{
		name: models.LifeModel,
		init: func(g storage.GridBase[models.Life], box geometry.CoordBox) {
			models.FillRandom(g, box, cfg.Density, sim.NewSimulationKey(cfg.Seed).Seed(sim.SubsystemInitialState))
		},
		observable: "Population",
		observe: func(g storage.GridBase[models.Life], region *geometry.Region) float64 {
			return float64(models.Population(g, region))
		},
		color: storage.MustSelector[models.Life]("Alive", "color", plotter.NewCellToColor[models.Life](palette)),
	}
}

// heatSource is the temperature of the fixed hot face at x = 0.
const heatSource = 100.0

func heatModel(_ sim.EngineConfig) cellModel[models.Heat] {
	palette := &plotter.Palette[float64]{}
	palette.AddColor(0, color.RGBA{B: 255, A: 255}).AddColor(heatSource, color.RGBA{R: 255, A: 255})
	return cellModel[models.Heat]{
		name: models.HeatModel,
		init: func(g storage.GridBase[models.Heat], box geometry.CoordBox) {
			for c := range box.All() {
				switch c.X {
				case box.Origin.X:
					g.Set(c, models.Heat{Temp: heatSource, Fixed: true})
				case box.Origin.X + box.Dimensions.X - 1:
					g.Set(c, models.Heat{Fixed: true})
				}
			}
		},
		observable: "Total Heat",
		observe:    models.TotalHeat,
		color:      storage.MustSelector[models.Heat]("Temp", "color", plotter.NewCellToColor[models.Heat](palette)),
	}
}

func simulate[C update.Cell[C]](cfg sim.EngineConfig, balancer loadbalancer.LoadBalancer, m cellModel[C], out runOutput) (runResult, error) {
	box := geometry.NewCoordBox(geometry.Coord{}, cfg.Dimensions())
	var zero C
	oldGrid := storage.NewDenseGrid(box, geometry.Topology(cfg.Topology), zero, zero)
	m.init(oldGrid, box)
	newGrid := oldGrid.Clone()

	dispatcher := update.NewDispatcher[C](cfg.Concurrency)
	engine := sim.NewEngine[C](oldGrid, newGrid, dispatcher, max(cfg.Balancer.Partitions, 1), balancer, cfg.Balancer.Interval)

	start := time.Now()
	if err := engine.Run(cfg.Steps); err != nil {
		return runResult{}, err
	}
	wall := time.Since(start)

	region := geometry.RegionFromBox(box)
	if out.PlotPath != "" {
		if err := writePlot(out.PlotPath, engine.Grid(), box, m.color, out.CellSize); err != nil {
			return runResult{}, err
		}
		logrus.Infof("Wrote %s", out.PlotPath)
	}
	return runResult{
		Model:      m.name,
		Steps:      engine.Steps(),
		Cells:      box.Size(),
		Observable: m.observable,
		Value:      m.observe(engine.Grid(), region),
		Slabs:      engine.Slabs(),
		Wall:       wall,
	}, nil
}

// writePlot renders the first z plane of grid to a PNG file.
func writePlot[C any](path string, grid storage.GridBase[C], box geometry.CoordBox, selector *storage.Selector[C], cellSize int) error {
	p, err := plotter.NewSimpleCellPlotter(selector, image.Pt(cellSize, cellSize))
	if err != nil {
		return err
	}
	plane := box
	plane.Dimensions.Z = 1
	painter := plotter.NewImagePainter(plane, p.CellDim())
	if err := plotter.PlotGrid(grid, geometry.RegionFromBox(plane), p, painter); err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, painter.Image); err != nil {
		return fmt.Errorf("encoding plot: %w", err)
	}
	return nil
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
