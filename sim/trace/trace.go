package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every bitrate selection.
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
	Level  TraceLevel
	Policy string // policy display name stamped on every record
}

// DecisionTrace collects bitrate selections during one streaming run.
type DecisionTrace struct {
	Config     TraceConfig
	Selections []SelectionRecord
}

// NewDecisionTrace creates a DecisionTrace ready for recording.
func NewDecisionTrace(config TraceConfig) *DecisionTrace {
	return &DecisionTrace{
		Config:     config,
		Selections: make([]SelectionRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (dt *DecisionTrace) Enabled() bool {
	return dt != nil && dt.Config.Level == TraceLevelDecisions
}

// RecordSelection appends a selection record, stamping the policy name.
func (dt *DecisionTrace) RecordSelection(record SelectionRecord) {
	if !dt.Enabled() {
		return
	}
	if record.Policy == "" {
		record.Policy = dt.Config.Policy
	}
	dt.Selections = append(dt.Selections, record)
}
