package goal

import (
	"fmt"
	"math"
)

// #region decide
// Decide applies the transition rules in priority order; the first match
// wins:
//
//  1. cue == CueTrigger               -> CueGoal
//  2. any state component in a region -> RegionGoal
//  3. stopCounter >= threshold        -> EscalationGoal
//  4. otherwise                       -> current
func Decide(cfg TransitionConfig, cue int, state []float64, stopCounter, current int) (int, Rule) {
	if cue == cfg.CueTrigger {
		return cfg.CueGoal, RuleCue
	}
	if InRegion(cfg, state) {
		return cfg.RegionGoal, RuleRegion
	}
	if stopCounter >= cfg.EscalationThreshold {
		return cfg.EscalationGoal, RuleDeviation
	}
	return current, RuleRetain
}

// InRegion reports whether any component is above RegionUpper, below
// RegionLower, or within RegionNear of zero.
func InRegion(cfg TransitionConfig, state []float64) bool {
	for _, s := range state {
		if s > cfg.RegionUpper || s < cfg.RegionLower || math.Abs(s) < cfg.RegionNear {
			return true
		}
	}
	return false
}

// #endregion decide

// #region machine
// Machine draws a cue every step and runs Decide against a catalog.
type Machine struct {
	catalog *Catalog
	cues    CueSource
	config  TransitionConfig
}

// NewMachine checks that every rule target exists in the catalog.
func NewMachine(catalog *Catalog, cues CueSource, config TransitionConfig) (*Machine, error) {
	for _, t := range []struct {
		name string
		idx  int
	}{{"cue", config.CueGoal}, {"region", config.RegionGoal}, {"escalation", config.EscalationGoal}} {
		if t.idx < 0 || t.idx >= catalog.Len() {
			return nil, fmt.Errorf("%w: %s goal %d not in catalog of %d", ErrInvalidCatalog, t.name, t.idx, catalog.Len())
		}
	}
	if config.CueMax < config.CueMin {
		return nil, fmt.Errorf("cue range [%d, %d] is empty", config.CueMin, config.CueMax)
	}
	return &Machine{catalog: catalog, cues: cues, config: config}, nil
}

// Config returns the active rule configuration.
func (m *Machine) Config() TransitionConfig { return m.config }

// DrawCue samples one cue from [CueMin, CueMax].
func (m *Machine) DrawCue() int {
	return m.config.CueMin + m.cues.Intn(m.config.CueMax-m.config.CueMin+1)
}

// Next draws a cue and decides the goal for the following step.
func (m *Machine) Next(current int, state []float64, stopCounter int) Transition {
	cue := m.DrawCue()
	to, rule := Decide(m.config, cue, state, stopCounter, current)
	return Transition{From: current, To: to, Rule: rule, Cue: cue}
}

// #endregion machine
