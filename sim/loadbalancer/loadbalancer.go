// Package loadbalancer redistributes atomic work units between nodes
// based on how busy each node was.
package loadbalancer

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// LoadBalancer maps the current work distribution and the observed load
// of each node to a new distribution.
type LoadBalancer interface {
	// Balance returns newLoads with len(newLoads) == len(weights) and
	// sum(newLoads) == sum(weights). relativeLoads[i] is the fraction of
	// wall clock time node i spent computing rather than waiting on
	// communication, in [0, 1].
	Balance(weights []int, relativeLoads []float64) []int
}

// Balancer names.
const (
	NoOp   = "noop"
	Random = "random"
	Ooze   = "ooze"
)

// validLoadBalancers maps accepted balancer names.
var validLoadBalancers = map[string]bool{
	NoOp:   true,
	Random: true,
	Ooze:   true,
	"":     true, // empty defaults to noop
}

// IsValidLoadBalancer returns true if name is a recognized balancer.
func IsValidLoadBalancer(name string) bool {
	return validLoadBalancers[name]
}

// ValidLoadBalancerNames returns the sorted list of balancer names.
func ValidLoadBalancerNames() []string {
	names := make([]string, 0, len(validLoadBalancers))
	for name := range validLoadBalancers {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Options configures balancers created by NewLoadBalancer.
type Options struct {
	// Seed drives RandomBalancer.
	Seed int64 `yaml:"seed"`
	// Ooze is the fraction of the imbalance OozeBalancer removes per call.
	// Zero selects DefaultOoze.
	Ooze float64 `yaml:"ooze"`
}

// NewLoadBalancer creates a balancer by name.
// Panics on an unknown name.
func NewLoadBalancer(name string, opts Options) LoadBalancer {
	switch name {
	case NoOp, "":
		return NoOpBalancer{}
	case Random:
		return NewRandomBalancer(opts.Seed)
	case Ooze:
		ooze := opts.Ooze
		if ooze == 0 {
			ooze = DefaultOoze
		}
		return NewOozeBalancer(ooze)
	default:
		logrus.Panicf("unknown load balancer type: %s", name)
		return nil
	}
}

// checkInputs panics on malformed balancer input.
func checkInputs(caller string, weights []int, relativeLoads []float64) {
	if len(weights) != len(relativeLoads) {
		panic(fmt.Sprintf("%s: %d weights but %d relative loads", caller, len(weights), len(relativeLoads)))
	}
	for i, w := range weights {
		if w < 0 {
			panic(fmt.Sprintf("%s: negative weight %d at node %d", caller, w, i))
		}
	}
}

func sum(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	return total
}

// apportion rounds shares to integers summing exactly to total with the
// largest remainder method. shares must be finite, non-negative and sum
// to total up to rounding error. Ties go to the lower index. Panics on a
// non-finite or negative share.
func apportion(shares []float64, total int) []int {
	out := make([]int, len(shares))
	if len(shares) == 0 {
		return out
	}
	for i, s := range shares {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			panic(fmt.Sprintf("apportion: invalid share %v at node %d", s, i))
		}
	}
	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, len(shares))
	assigned := 0
	for i, s := range shares {
		f := math.Floor(s)
		out[i] = int(f)
		assigned += out[i]
		rems[i] = rem{i: i, frac: s - f}
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; assigned < total; k = (k + 1) % len(rems) {
		out[rems[k].i]++
		assigned++
	}
	for k := len(rems) - 1; assigned > total; k = (k - 1 + len(rems)) % len(rems) {
		if out[rems[k].i] > 0 {
			out[rems[k].i]--
			assigned--
		}
	}
	return out
}

// NoOpBalancer keeps the current distribution.
type NoOpBalancer struct{}

func (NoOpBalancer) Balance(weights []int, relativeLoads []float64) []int {
	checkInputs("NoOpBalancer.Balance", weights, relativeLoads)
	return append([]int(nil), weights...)
}
