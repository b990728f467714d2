package gate

// #region violation
// Violation records one dimension whose gap exceeded the deviation bound.
type Violation struct {
	Dimension int
	Gap       float64
}

// #endregion violation

// #region gate-config
// GateConfig holds the thresholds of the stop condition.
type GateConfig struct {
	DeviationBound float64 // |gap| strictly above this counts as out of bound
	StopThreshold  int     // counter at or above this means stop
}

// DefaultGateConfig returns the reference thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		DeviationBound: 3.0,
		StopThreshold:  5,
	}
}

// #endregion gate-config

// #region observation
// Observation is the outcome of feeding one gap vector to the tracker.
type Observation struct {
	Counter    int
	Violations []Violation // empty when the counter was reset
	Reset      bool
}

// #endregion observation

// #region gate-decision
// GateDecision says whether the caller should keep stepping.
type GateDecision struct {
	Action  string // "continue" | "stop"
	Reason  string
	Counter int
}

// #endregion gate-decision
