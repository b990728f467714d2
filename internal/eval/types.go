package eval

// #region eval-config
// EvalConfig holds thresholds for post-run validation.
type EvalConfig struct {
	MaxStateNorm  float64 // reject if the final state norm exceeds this
	MaxComponent  float64 // reject if any state component ever exceeds this in magnitude
	RequireNoStop bool    // reject if the stop condition fired during the run
}

// DefaultEvalConfig returns sensible defaults for the reference 3-dim engine.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxStateNorm:  50.0,
		MaxComponent:  25.0,
		RequireNoStop: true,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region run-summary
// RunSummary aggregates a sequence of engine steps.
type RunSummary struct {
	Steps          int
	StopStep       int // first step whose Continue was false, 0 if none
	FinalStateNorm float64
	PeakStateNorm  float64
	PeakComponent  float64
	MaxAbsGap      float64
	MeanGapNorm    float64
	GoalChanges    int
	GoalDwell      map[int]int    // steps spent with each goal active after the transition
	RuleCounts     map[string]int // transitions per rule
}

// #endregion run-summary

// #region eval-result
// EvalResult is the output of post-run validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
	Summary RunSummary
}

// #endregion eval-result
