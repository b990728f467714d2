package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/holonetic/internal/engine"
)

// #region eval-harness
// EvalHarness runs lightweight validation over a finished run.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run summarizes steps and checks them against the configured bounds.
func (h *EvalHarness) Run(steps []engine.StepResult) EvalResult {
	summary := Summarize(steps)
	if summary.Steps == 0 {
		return EvalResult{Passed: true, Reason: "no steps", Summary: summary}
	}

	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Final state norm
	finalPass := summary.FinalStateNorm <= h.config.MaxStateNorm
	metrics = append(metrics, EvalMetric{Name: "final_state_norm", Value: summary.FinalStateNorm, Pass: finalPass})
	if !finalPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("final state norm %.4f exceeds %.4f", summary.FinalStateNorm, h.config.MaxStateNorm))
	}

	// 2. Peak component over the whole run
	compPass := summary.PeakComponent <= h.config.MaxComponent
	metrics = append(metrics, EvalMetric{Name: "peak_component", Value: summary.PeakComponent, Pass: compPass})
	if !compPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("state component %.4f exceeds %.4f", summary.PeakComponent, h.config.MaxComponent))
	}

	// 3. Stop condition
	stopPass := summary.StopStep == 0 || !h.config.RequireNoStop
	metrics = append(metrics, EvalMetric{Name: "stop_step", Value: float64(summary.StopStep), Pass: stopPass})
	if !stopPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("stop condition fired at step %d", summary.StopStep))
	}

	// 4. Gap: informational only
	metrics = append(metrics, EvalMetric{Name: "max_abs_gap", Value: summary.MaxAbsGap, Pass: true})
	metrics = append(metrics, EvalMetric{Name: "mean_gap_norm", Value: summary.MeanGapNorm, Pass: true})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
		Summary: summary,
	}
}

// #endregion eval-harness

// #region summarize
// Summarize aggregates steps without applying any threshold.
func Summarize(steps []engine.StepResult) RunSummary {
	s := RunSummary{
		Steps:      len(steps),
		GoalDwell:  make(map[int]int),
		RuleCounts: make(map[string]int),
	}
	var gapNormSum float64
	for _, st := range steps {
		if !st.Continue && s.StopStep == 0 {
			s.StopStep = st.Step
		}
		n := vectorNorm(st.State)
		if n > s.PeakStateNorm {
			s.PeakStateNorm = n
		}
		for _, v := range st.State {
			if a := math.Abs(v); a > s.PeakComponent {
				s.PeakComponent = a
			}
		}
		if st.Update.Metrics.MaxAbsGap > s.MaxAbsGap {
			s.MaxAbsGap = st.Update.Metrics.MaxAbsGap
		}
		gapNormSum += st.Update.Metrics.GapNorm

		s.GoalDwell[st.Transition.To]++
		s.RuleCounts[string(st.Transition.Rule)]++
		if st.Transition.Changed() {
			s.GoalChanges++
		}
	}
	if len(steps) > 0 {
		s.FinalStateNorm = vectorNorm(steps[len(steps)-1].State)
		s.MeanGapNorm = gapNormSum / float64(len(steps))
	}
	return s
}

// #endregion summarize

// #region helpers
func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion helpers
