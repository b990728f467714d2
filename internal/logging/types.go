package logging

import (
	"time"

	"github.com/danielpatrickdp/holonetic/internal/engine"
)

// #region transition-entry
// TransitionEntry is a single row in the transition_log table.
type TransitionEntry struct {
	RunID     string
	Step      int
	FromGoal  int
	ToGoal    int
	Rule      string // "cue" | "region" | "deviation" | "retain"
	Cue       int
	Decision  string // "continue" | "stop"
	Reason    string
	TraceJSON string
	CreatedAt time.Time
}
// #endregion transition-entry

// #region step-trace
// StepTrace captures every input and intermediate of one engine step.
// Serialized as JSON into transition_log.trace_json for deterministic replay.
type StepTrace struct {
	Step int `json:"step"`

	PrevState []float64 `json:"prev_state"`
	State     []float64 `json:"state"`
	Goal      int       `json:"goal"`

	// Delta-state inputs and terms
	Gap           []float64        `json:"gap"`
	Contributions []float64        `json:"contributions"`
	Selections    []TraceSelection `json:"selections"`
	Force         []float64        `json:"force"`
	Noise         []float64        `json:"noise"`
	NoiseDraws    []float64        `json:"noise_draws"` // unscaled N(0,1) samples
	Delta         []float64        `json:"delta"`

	GapNorm   float64 `json:"gap_norm"`
	MaxAbsGap float64 `json:"max_abs_gap"`
	DeltaNorm float64 `json:"delta_norm"`

	// Stop condition
	Violations  []int `json:"violations,omitempty"` // dimensions out of bound
	StopCounter int   `json:"stop_counter"`
	Continue    bool  `json:"continue"`

	// Goal transition
	Cue      int    `json:"cue"`
	Rule     string `json:"rule"`
	FromGoal int    `json:"from_goal"`
	ToGoal   int    `json:"to_goal"`

	Thresholds TraceThresholds `json:"thresholds"`
}

// TraceSelection is the per-dimension cluster selection.
type TraceSelection struct {
	Dimension int       `json:"dimension"`
	Sign      string    `json:"sign"`
	Values    []float64 `json:"values"`
	Factor    float64   `json:"factor"`
	Regulated float64   `json:"regulated"`
	Leakage   float64   `json:"leakage"`
}

// TraceThresholds captures the gate and transition config active at the step.
type TraceThresholds struct {
	NoiseSigma          float64 `json:"noise_sigma"`
	Policy              string  `json:"policy"`
	DeviationBound      float64 `json:"deviation_bound"`
	StopThreshold       int     `json:"stop_threshold"`
	EscalationThreshold int     `json:"escalation_threshold"`
}

// NewStepTrace flattens an engine step result.
func NewStepTrace(res engine.StepResult, cfg engine.Config) StepTrace {
	u := res.Update
	tr := StepTrace{
		Step:          res.Step,
		PrevState:     res.PrevState,
		State:         res.State,
		Goal:          res.Transition.From,
		Gap:           u.Gap,
		Contributions: u.Contributions,
		Force:         u.Force,
		Noise:         u.Noise,
		NoiseDraws:    u.NoiseDraws,
		Delta:         u.DeltaState,
		GapNorm:       u.Metrics.GapNorm,
		MaxAbsGap:     u.Metrics.MaxAbsGap,
		DeltaNorm:     u.Metrics.DeltaNorm,
		StopCounter:   res.StopCounter,
		Continue:      res.Continue,
		Cue:           res.Transition.Cue,
		Rule:          string(res.Transition.Rule),
		FromGoal:      res.Transition.From,
		ToGoal:        res.Transition.To,
		Thresholds: TraceThresholds{
			NoiseSigma:          cfg.NoiseSigma,
			Policy:              string(cfg.Policy),
			DeviationBound:      cfg.Gate.DeviationBound,
			StopThreshold:       cfg.Gate.StopThreshold,
			EscalationThreshold: cfg.Transition.EscalationThreshold,
		},
	}
	for _, v := range u.Observation.Violations {
		tr.Violations = append(tr.Violations, v.Dimension)
	}
	for _, s := range u.Selections {
		tr.Selections = append(tr.Selections, TraceSelection{
			Dimension: s.Dimension,
			Sign:      s.Sign.String(),
			Values:    s.Values,
			Factor:    s.Factor,
			Regulated: s.Regulated,
			Leakage:   s.Leakage,
		})
	}
	return tr
}

// #endregion step-trace
