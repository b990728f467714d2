package gate

import (
	"fmt"
	"math"
)

// #region tracker
// StopTracker counts consecutive steps in which some dimension of the
// state-goal gap is out of bound.
type StopTracker struct {
	config  GateConfig
	counter int
}

// NewStopTracker creates a tracker with a zero counter.
func NewStopTracker(config GateConfig) *StopTracker {
	return &StopTracker{config: config}
}

// Config returns the active thresholds.
func (s *StopTracker) Config() GateConfig { return s.config }

// Observe increments the counter if any |gap[i]| exceeds the bound and
// resets it to zero otherwise.
func (s *StopTracker) Observe(gap []float64) Observation {
	var violations []Violation
	for i, g := range gap {
		if math.Abs(g) > s.config.DeviationBound {
			violations = append(violations, Violation{Dimension: i, Gap: g})
		}
	}

	if len(violations) == 0 {
		s.counter = 0
		return Observation{Counter: 0, Reset: true}
	}

	s.counter++
	return Observation{Counter: s.counter, Violations: violations}
}

// Counter returns the current consecutive-violation count.
func (s *StopTracker) Counter() int { return s.counter }

// Continue reports whether the counter is still below the stop threshold.
func (s *StopTracker) Continue() bool { return s.counter < s.config.StopThreshold }

// Escalated reports whether the counter reached threshold. The threshold
// belongs to the goal rules, not the gate.
func (s *StopTracker) Escalated(threshold int) bool { return s.counter >= threshold }

// Decide turns the counter into a continue/stop decision.
func (s *StopTracker) Decide() GateDecision { return DecisionFor(s.config, s.counter) }

// #endregion tracker

// #region decision
// DecisionFor is the verdict for a given counter value.
func DecisionFor(config GateConfig, counter int) GateDecision {
	if counter >= config.StopThreshold {
		return GateDecision{
			Action:  "stop",
			Reason:  fmt.Sprintf("gap out of bound %.4f for %d consecutive steps (threshold %d)", config.DeviationBound, counter, config.StopThreshold),
			Counter: counter,
		}
	}
	return GateDecision{
		Action:  "continue",
		Reason:  fmt.Sprintf("stop counter %d below threshold %d", counter, config.StopThreshold),
		Counter: counter,
	}
}

// #endregion decision
