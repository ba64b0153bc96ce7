// Package trace provides decision-trace recording for load balancing and
// ghost-zone exchange. This package has no dependencies on the other sim
// packages; it stores pure data types.
package trace

// BalanceRecord captures one load balancing decision.
type BalanceRecord struct {
	Step          int
	Balancer      string
	Weights       []int
	RelativeLoads []float64
	NewLoads      []int
	Moved         int     // work units that changed owner
	Imbalance     float64 // max(RelativeLoads) - min(RelativeLoads)
}

// NewBalanceRecord builds a record and derives Moved and Imbalance. The
// slices are copied.
func NewBalanceRecord(step int, balancer string, weights []int, relativeLoads []float64, newLoads []int) BalanceRecord {
	r := BalanceRecord{
		Step:          step,
		Balancer:      balancer,
		Weights:       append([]int(nil), weights...),
		RelativeLoads: append([]float64(nil), relativeLoads...),
		NewLoads:      append([]int(nil), newLoads...),
	}
	diff := 0
	for i := range weights {
		if i >= len(newLoads) {
			break
		}
		d := newLoads[i] - weights[i]
		if d < 0 {
			d = -d
		}
		diff += d
	}
	r.Moved = diff / 2
	if len(relativeLoads) > 0 {
		lo, hi := relativeLoads[0], relativeLoads[0]
		for _, l := range relativeLoads[1:] {
			lo = min(lo, l)
			hi = max(hi, l)
		}
		r.Imbalance = hi - lo
	}
	return r
}

// PatchRecord captures one ghost-zone patch applied before an update.
type PatchRecord struct {
	NanoStep int
	Provider string
	Cells    int
	Removed  bool
}
