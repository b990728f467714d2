package goal

import "errors"

// ErrInvalidCatalog is returned for catalogs that cannot serve the
// transition rules.
var ErrInvalidCatalog = errors.New("invalid goal catalog")

// #region rule
// Rule names the transition rule that fired.
type Rule string

const (
	RuleCue       Rule = "cue"
	RuleRegion    Rule = "region"
	RuleDeviation Rule = "deviation"
	RuleRetain    Rule = "retain"
)

// #endregion rule

// #region cue-source
// CueSource draws uniform integers in [0, n). *rand.Rand satisfies it.
type CueSource interface {
	Intn(n int) int
}

// #endregion cue-source

// #region transition-config
// TransitionConfig holds the thresholds and targets of the goal rules.
type TransitionConfig struct {
	CueMin     int // cue is drawn uniformly from [CueMin, CueMax]
	CueMax     int
	CueTrigger int // cue value that fires RuleCue

	RegionUpper float64 // state above this is in a transition region
	RegionLower float64 // state below this is in a transition region
	RegionNear  float64 // |state| below this is in a transition region

	EscalationThreshold int // stop counter at or above this fires RuleDeviation

	CueGoal        int
	RegionGoal     int
	EscalationGoal int
}

// DefaultTransitionConfig returns the reference rule set.
func DefaultTransitionConfig() TransitionConfig {
	return TransitionConfig{
		CueMin:              1,
		CueMax:              5,
		CueTrigger:          5,
		RegionUpper:         0.8,
		RegionLower:         -0.8,
		RegionNear:          0.1,
		EscalationThreshold: 3,
		CueGoal:             1,
		RegionGoal:          0,
		EscalationGoal:      2,
	}
}

// #endregion transition-config

// #region transition
// Transition is the outcome of one goal decision.
type Transition struct {
	From int
	To   int
	Rule Rule
	Cue  int
}

// Changed reports whether the active goal moved.
func (t Transition) Changed() bool { return t.From != t.To }

// #endregion transition
