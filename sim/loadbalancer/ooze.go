package loadbalancer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultOoze is the share of the imbalance removed per call.
const DefaultOoze = 0.25

// minLoad keeps idle nodes from dominating the speed estimate.
const minLoad = 1e-3

// clampLoad maps a measured load into [minLoad, 1]. NaN counts as fully
// busy.
func clampLoad(load float64) float64 {
	if math.IsNaN(load) {
		return 1
	}
	return min(max(load, minLoad), 1)
}

// OozeBalancer estimates each node's speed as weights[i]/relativeLoads[i],
// computes the distribution proportional to those speeds, and moves only
// a fraction ooze of the way towards it per call. Small steps damp the
// oscillation caused by noisy load measurements.
//
// Loads outside [0, 1], including NaN and infinities, are clamped first.
// Nodes without work get the mean speed of the others. The result is
// rounded with the largest remainder method, so the total is conserved
// exactly.
type OozeBalancer struct {
	ooze float64
}

// NewOozeBalancer creates a balancer that removes the given share of the
// imbalance per call. Panics unless 0 < ooze <= 1.
func NewOozeBalancer(ooze float64) *OozeBalancer {
	if ooze <= 0 || ooze > 1 {
		panic(fmt.Sprintf("NewOozeBalancer: ooze must be in (0, 1], got %v", ooze))
	}
	return &OozeBalancer{ooze: ooze}
}

func (b *OozeBalancer) Balance(weights []int, relativeLoads []float64) []int {
	checkInputs("OozeBalancer.Balance", weights, relativeLoads)
	total := sum(weights)
	if len(weights) < 2 || total == 0 {
		return append([]int(nil), weights...)
	}

	current := make([]float64, len(weights))
	speeds := make([]float64, len(weights))
	known, knownSpeed := 0, 0.0
	for i, w := range weights {
		current[i] = float64(w)
		if w == 0 {
			continue
		}
		speeds[i] = float64(w) / clampLoad(relativeLoads[i])
		known++
		knownSpeed += speeds[i]
	}
	mean := knownSpeed / float64(known)
	for i, w := range weights {
		if w == 0 {
			speeds[i] = mean
		}
	}

	speedSum := floats.Sum(speeds)
	if speedSum <= 0 || math.IsInf(speedSum, 0) || math.IsNaN(speedSum) {
		return append([]int(nil), weights...)
	}

	// ideal = total * speeds / sum(speeds)
	ideal := make([]float64, len(speeds))
	copy(ideal, speeds)
	floats.Scale(float64(total)/speedSum, ideal)

	// target = (1-ooze)*current + ooze*ideal
	target := make([]float64, len(current))
	floats.ScaleTo(target, 1-b.ooze, current)
	floats.AddScaled(target, b.ooze, ideal)

	return apportion(target, total)
}
