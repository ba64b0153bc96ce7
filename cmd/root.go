package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/stencil-sim/stencil-sim/sim"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional engine config YAML

	// CLI flags overriding the engine config
	modelName       string  // Cell model
	width           int     // Grid width
	height          int     // Grid height
	depth           int     // Grid depth, 1 for 2D runs
	topology        string  // cube or torus
	steps           int     // Number of nano steps
	seed            int64   // Master seed
	density         float64 // Initial live share for life
	enableThreads   bool    // Threads backend
	staticSchedule  bool    // Static chunking for the threads backend
	enableTasks     bool    // Tasks backend
	workers         int     // Concurrency bound, 0 = GOMAXPROCS
	partitions      int     // Number of slabs
	balancerName    string  // Load balancer
	ooze            float64 // Ooze fraction
	balanceInterval int     // Steps between balance calls
	traceLevel      string  // none or decisions

	// Output
	plotPath     string // PNG output of the final grid, empty disables
	cellSize     int    // Plot pixels per cell
	printMetrics bool   // Print balancer metrics in Prometheus text format
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "stencil-sim",
	Short: "Stencil grid update and synchronization engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes a simulation using the engine config and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stencil simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := sim.DefaultEngineConfig()
		if configPath != "" {
			loaded, err := sim.LoadEngineConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = *loaded
		}
		applyRunFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting %s run on %v, %s topology, %d steps, %d partitions",
			cfg.Model, cfg.Dimensions(), cfg.Topology, cfg.Steps, max(cfg.Balancer.Partitions, 1))

		result, err := runEngine(cfg, runOutput{PlotPath: plotPath, CellSize: cellSize, Metrics: printMetrics})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := result.Print(os.Stdout); err != nil {
			logrus.Fatalf("Writing results: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// applyRunFlags copies every flag the user set explicitly into cfg, so
// that flags override the config file but unset flags do not.
func applyRunFlags(cmd *cobra.Command, cfg *sim.EngineConfig) {
	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model = modelName
	}
	if f.Changed("width") {
		cfg.Width = width
	}
	if f.Changed("height") {
		cfg.Height = height
	}
	if f.Changed("depth") {
		cfg.Depth = depth
	}
	if f.Changed("topology") {
		cfg.Topology = topology
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("density") {
		cfg.Density = density
	}
	if f.Changed("threads") {
		cfg.Concurrency.EnableThreads = enableThreads
	}
	if f.Changed("static") {
		cfg.Concurrency.PreferStaticScheduling = staticSchedule
	}
	if f.Changed("tasks") {
		cfg.Concurrency.EnableTasks = enableTasks
	}
	if f.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if f.Changed("partitions") {
		cfg.Balancer.Partitions = partitions
	}
	if f.Changed("balancer") {
		cfg.Balancer.Name = balancerName
	}
	if f.Changed("ooze") {
		cfg.Balancer.Ooze = ooze
	}
	if f.Changed("balance-interval") {
		cfg.Balancer.Interval = balanceInterval
	}
	if f.Changed("trace") {
		cfg.Trace = traceLevel
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	def := sim.DefaultEngineConfig()
	runCmd.Flags().StringVar(&configPath, "config", "", "Engine config YAML; flags override its values")

	// Grid and model
	runCmd.Flags().StringVar(&modelName, "model", def.Model, "Cell model (heat, life)")
	runCmd.Flags().IntVar(&width, "width", def.Width, "Grid width")
	runCmd.Flags().IntVar(&height, "height", def.Height, "Grid height")
	runCmd.Flags().IntVar(&depth, "depth", def.Depth, "Grid depth (1 for 2D)")
	runCmd.Flags().StringVar(&topology, "topology", def.Topology, "Grid topology (cube, torus)")
	runCmd.Flags().IntVar(&steps, "steps", def.Steps, "Number of nano steps")
	runCmd.Flags().Int64Var(&seed, "seed", def.Seed, "Master seed; the initial state and the random balancer derive theirs from it")
	runCmd.Flags().Float64Var(&density, "density", def.Density, "Initial share of live cells (life)")

	// Concurrency
	runCmd.Flags().BoolVar(&enableThreads, "threads", false, "Enable the threads backend")
	runCmd.Flags().BoolVar(&staticSchedule, "static", false, "Prefer static scheduling for the threads backend")
	runCmd.Flags().BoolVar(&enableTasks, "tasks", false, "Enable the tasks backend")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent planes per update (0 = GOMAXPROCS)")

	// Partitioning and balancing
	runCmd.Flags().IntVar(&partitions, "partitions", def.Balancer.Partitions, "Number of slabs updated concurrently")
	runCmd.Flags().StringVar(&balancerName, "balancer", def.Balancer.Name, "Load balancer ("+joinNames(loadbalancer.ValidLoadBalancerNames())+")")
	runCmd.Flags().Float64Var(&ooze, "ooze", 0, "Share of the imbalance the ooze balancer removes per call (0 = default)")
	runCmd.Flags().IntVar(&balanceInterval, "balance-interval", 0, "Steps between balance calls (0 = never)")
	runCmd.Flags().StringVar(&traceLevel, "trace", def.Trace, "Trace level (none, decisions)")

	// Output
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write the first plane of the final grid to this PNG file")
	runCmd.Flags().IntVar(&cellSize, "cell-size", 4, "Plot pixels per cell")
	runCmd.Flags().BoolVar(&printMetrics, "metrics", false, "Print balancer metrics in Prometheus text format")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(balanceCmd)
}
