package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	BalanceCalls      int
	UnitsMoved        int
	MeanImbalance     float64
	MaxImbalance      float64
	PatchesApplied    int
	PatchDistribution map[string]int // provider name → patches applied
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PatchDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.BalanceCalls = len(st.Balances)
	if len(st.Balances) > 0 {
		total := 0.0
		for _, b := range st.Balances {
			summary.UnitsMoved += b.Moved
			total += b.Imbalance
			if b.Imbalance > summary.MaxImbalance {
				summary.MaxImbalance = b.Imbalance
			}
		}
		summary.MeanImbalance = total / float64(len(st.Balances))
	}

	summary.PatchesApplied = len(st.Patches)
	for _, p := range st.Patches {
		summary.PatchDistribution[p.Provider]++
	}

	return summary
}
