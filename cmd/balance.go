package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/trace"
)

var (
	balanceInput   string    // Optional YAML with weights and loads
	balanceWeights []int     // Work units per node
	balanceLoads   []float64 // Relative load per node
	balanceRounds  int       // Number of balance calls
	balanceOpts    loadbalancer.Options
	balanceName    string
)

// BalanceInput is the file format accepted by `balance --input`.
type BalanceInput struct {
	Weights       []int     `yaml:"weights"`
	RelativeLoads []float64 `yaml:"relative_loads"`
}

// BalanceRound is one balance call as reported by `balance`.
type BalanceRound struct {
	Round         int       `yaml:"round"`
	Weights       []int     `yaml:"weights"`
	RelativeLoads []float64 `yaml:"relative_loads"`
	NewLoads      []int     `yaml:"new_loads"`
	Moved         int       `yaml:"moved"`
}

// balanceCmd runs a balancer on fixed input
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Run a load balancer on given weights and relative loads",
	Run: func(cmd *cobra.Command, args []string) {
		in := BalanceInput{Weights: balanceWeights, RelativeLoads: balanceLoads}
		if balanceInput != "" {
			loaded, err := loadBalanceInput(balanceInput)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			in = *loaded
		}
		if err := in.Validate(); err != nil {
			logrus.Fatalf("Invalid balance input: %v", err)
		}
		if !loadbalancer.IsValidLoadBalancer(balanceName) {
			logrus.Fatalf("Unknown load balancer %q; valid: %v", balanceName, loadbalancer.ValidLoadBalancerNames())
		}
		if balanceOpts.Ooze < 0 || balanceOpts.Ooze > 1 {
			logrus.Fatalf("Ooze must be in [0, 1], got %v", balanceOpts.Ooze)
		}
		var reg *prometheus.Registry
		if printMetrics {
			reg = prometheus.NewRegistry()
		}
		if err := runBalance(os.Stdout, in, balanceName, balanceOpts, balanceRounds, reg); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func loadBalanceInput(path string) (*BalanceInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading balance input: %w", err)
	}
	var in BalanceInput
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&in); err != nil {
		return nil, fmt.Errorf("parsing balance input: %w", err)
	}
	return &in, nil
}

// Validate rejects input the balancers would panic on.
func (in BalanceInput) Validate() error {
	if len(in.Weights) != len(in.RelativeLoads) {
		return fmt.Errorf("%d weights but %d relative loads", len(in.Weights), len(in.RelativeLoads))
	}
	for i, w := range in.Weights {
		if w < 0 {
			return fmt.Errorf("negative weight %d at node %d", w, i)
		}
	}
	for i, l := range in.RelativeLoads {
		if l < 0 {
			return fmt.Errorf("negative relative load %v at node %d", l, i)
		}
	}
	return nil
}

// runBalance feeds the balancer its own output for the given number of
// rounds, keeping the relative loads fixed, and writes every round as a
// YAML document to w. Metrics are appended when reg is not nil.
func runBalance(w io.Writer, in BalanceInput, name string, opts loadbalancer.Options, rounds int, reg *prometheus.Registry) error {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	var sink loadbalancer.Sink = st
	if reg != nil {
		sink = loadbalancer.MultiSink{st, loadbalancer.NewPrometheusSink(reg)}
	}
	b := loadbalancer.NewTracingBalancer(loadbalancer.NewLoadBalancer(name, opts), name, sink)

	weights := in.Weights
	for i := 0; i < max(rounds, 1); i++ {
		weights = b.Balance(weights, in.RelativeLoads)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range st.Balances {
		round := BalanceRound{
			Round:         r.Step,
			Weights:       r.Weights,
			RelativeLoads: r.RelativeLoads,
			NewLoads:      r.NewLoads,
			Moved:         r.Moved,
		}
		if err := enc.Encode(round); err != nil {
			return fmt.Errorf("writing round %d: %w", r.Step, err)
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if reg != nil {
		text, err := gatherText(reg)
		if err != nil {
			return err
		}
		_, err = w.Write(text)
		return err
	}
	return nil
}

func init() {
	balanceCmd.Flags().StringVar(&balanceInput, "input", "", "YAML file with weights and relative_loads; overrides --weights and --loads")
	balanceCmd.Flags().IntSliceVar(&balanceWeights, "weights", nil, "Comma-separated work units per node")
	balanceCmd.Flags().Float64SliceVar(&balanceLoads, "loads", nil, "Comma-separated relative load per node")
	balanceCmd.Flags().StringVar(&balanceName, "balancer", loadbalancer.Ooze, "Load balancer ("+joinNames(loadbalancer.ValidLoadBalancerNames())+")")
	balanceCmd.Flags().Float64Var(&balanceOpts.Ooze, "ooze", 0, "Share of the imbalance the ooze balancer removes per call (0 = default)")
	balanceCmd.Flags().Int64Var(&balanceOpts.Seed, "seed", 42, "Seed for the random balancer")
	balanceCmd.Flags().IntVar(&balanceRounds, "rounds", 1, "Number of balance calls, each fed the previous result")
	balanceCmd.Flags().BoolVar(&printMetrics, "metrics", false, "Append balancer metrics in Prometheus text format")
}
