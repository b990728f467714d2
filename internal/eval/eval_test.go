package eval

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/goal"
	"github.com/danielpatrickdp/holonetic/internal/update"
)

func makeStep(n int, state []float64, from, to int, rule goal.Rule, cont bool) engine.StepResult {
	return engine.StepResult{
		Step:       n,
		State:      state,
		Transition: goal.Transition{From: from, To: to, Rule: rule},
		Continue:   cont,
		Update: update.Result{
			Metrics: update.Metrics{GapNorm: 1, MaxAbsGap: float64(n)},
		},
	}
}

func TestEvalPassesOnEmptyRun(t *testing.T) {
	result := NewEvalHarness(DefaultEvalConfig()).Run(nil)
	if !result.Passed || result.Summary.Steps != 0 {
		t.Fatalf("expected pass on empty run, got %+v", result)
	}
}

func TestEvalPassesOnCalmRun(t *testing.T) {
	steps := []engine.StepResult{
		makeStep(1, []float64{0.5, 0.5, 0.5}, 0, 0, goal.RuleRetain, true),
		makeStep(2, []float64{0.4, 0.5, 0.6}, 0, 0, goal.RuleRetain, true),
	}
	result := NewEvalHarness(DefaultEvalConfig()).Run(steps)
	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) == 0 {
		t.Fatal("expected metrics")
	}
}

func TestEvalFailsOnStop(t *testing.T) {
	steps := []engine.StepResult{
		makeStep(1, []float64{0, 0, 0}, 0, 0, goal.RuleRegion, true),
		makeStep(2, []float64{0, 0, 0}, 0, 0, goal.RuleRegion, false),
		makeStep(3, []float64{0, 0, 0}, 0, 0, goal.RuleRegion, false),
	}
	result := NewEvalHarness(DefaultEvalConfig()).Run(steps)
	if result.Passed {
		t.Fatal("expected fail when the stop condition fired")
	}
	if result.Summary.StopStep != 2 {
		t.Fatalf("expected stop step 2, got %d", result.Summary.StopStep)
	}

	cfg := DefaultEvalConfig()
	cfg.RequireNoStop = false
	if r := NewEvalHarness(cfg).Run(steps); !r.Passed {
		t.Fatalf("expected pass with RequireNoStop off, got %s", r.Reason)
	}
}

func TestEvalFailsOnNormSpike(t *testing.T) {
	cfg := DefaultEvalConfig()
	cfg.MaxStateNorm = 5
	cfg.MaxComponent = 4
	steps := []engine.StepResult{
		makeStep(1, []float64{3, 4, 12}, 0, 0, goal.RuleRegion, true),
	}
	result := NewEvalHarness(cfg).Run(steps)
	if result.Passed {
		t.Fatal("expected fail on high norm")
	}
	failed := map[string]bool{}
	for _, m := range result.Metrics {
		if !m.Pass {
			failed[m.Name] = true
		}
	}
	if !failed["final_state_norm"] || !failed["peak_component"] {
		t.Fatalf("expected norm and component checks to fail, got %v", failed)
	}
	if result.Summary.FinalStateNorm != 13 {
		t.Fatalf("expected norm 13, got %f", result.Summary.FinalStateNorm)
	}
}

func TestSummarizeCountsGoalsAndRules(t *testing.T) {
	steps := []engine.StepResult{
		makeStep(1, []float64{3.4, 3.4, 3.4}, 0, 1, goal.RuleCue, true),
		makeStep(2, []float64{2.5, 2.5, 2.5}, 1, 0, goal.RuleRegion, true),
		makeStep(3, []float64{0.5, 0.5, 0.5}, 0, 0, goal.RuleRetain, true),
		makeStep(4, []float64{0.5, 0.5, 0.5}, 0, 2, goal.RuleDeviation, true),
	}
	s := Summarize(steps)
	if s.Steps != 4 || s.GoalChanges != 3 {
		t.Fatalf("expected 4 steps and 3 changes, got %d and %d", s.Steps, s.GoalChanges)
	}
	if s.GoalDwell[0] != 2 || s.GoalDwell[1] != 1 || s.GoalDwell[2] != 1 {
		t.Fatalf("unexpected dwell: %v", s.GoalDwell)
	}
	for _, r := range []string{"cue", "region", "retain", "deviation"} {
		if s.RuleCounts[r] != 1 {
			t.Fatalf("expected one %s transition, got %v", r, s.RuleCounts)
		}
	}
	if s.MaxAbsGap != 4 || s.MeanGapNorm != 1 {
		t.Fatalf("unexpected gap metrics: max %f mean %f", s.MaxAbsGap, s.MeanGapNorm)
	}
	if math.Abs(s.PeakStateNorm-math.Sqrt(3*3.4*3.4)) > 1e-12 || s.PeakComponent != 3.4 {
		t.Fatalf("unexpected peaks: %f %f", s.PeakStateNorm, s.PeakComponent)
	}
}

func TestEvalOverEngineRun(t *testing.T) {
	e, err := engine.New(engine.DefaultConfig(), engine.WithSeed(21))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	var steps []engine.StepResult
	for i := 0; i < 25; i++ {
		res, err := e.Advance([]float64{0, 0, 0})
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		steps = append(steps, res)
	}
	s := Summarize(steps)
	dwell := 0
	for _, n := range s.GoalDwell {
		dwell += n
	}
	if dwell != 25 {
		t.Fatalf("dwell counts sum to %d, want 25", dwell)
	}
}
