package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures balancing decisions and applied patches.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run. It is not safe
// for concurrent use.
type SimulationTrace struct {
	Config   TraceConfig
	Balances []BalanceRecord
	Patches  []PatchRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:   config,
		Balances: make([]BalanceRecord, 0),
		Patches:  make([]PatchRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordBalance appends a balancing decision record.
func (st *SimulationTrace) RecordBalance(record BalanceRecord) {
	st.Balances = append(st.Balances, record)
}

// RecordPatch appends an applied patch record.
func (st *SimulationTrace) RecordPatch(record PatchRecord) {
	st.Patches = append(st.Patches, record)
}
