package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
	"github.com/danielpatrickdp/holonetic/internal/gate"
	"github.com/danielpatrickdp/holonetic/internal/goal"
	"github.com/danielpatrickdp/holonetic/internal/update"
)

// #region options
// Option customizes an engine at construction.
type Option func(*options)

type options struct {
	source  Source
	catalog *goal.Catalog
	bank    *cluster.Bank
}

// WithSource injects the random stream. Use a seeded source for replay.
func WithSource(src Source) Option {
	return func(o *options) { o.source = src }
}

// WithSeed is shorthand for WithSource(rand.New(rand.NewSource(seed))).
func WithSeed(seed int64) Option {
	return WithSource(rand.New(rand.NewSource(seed)))
}

// WithCatalog replaces the default goal catalog.
func WithCatalog(c *goal.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithBank replaces the default cluster bank.
func WithBank(b *cluster.Bank) Option {
	return func(o *options) { o.bank = b }
}

// #endregion options

// #region engine
// Engine is the bio-holonetic regulation core. It owns the state vector,
// the stop counter and the active goal. It is not safe for concurrent use.
type Engine struct {
	config  Config
	bank    *cluster.Bank
	catalog *goal.Catalog
	tracker *gate.StopTracker
	deltas  *update.Computer
	goals   *goal.Machine

	state     []float64
	prevState []float64
	active    int
	steps     int
}

// New validates cfg and builds an engine at the zero state with goal 0 active.
// Zero-valued Gate and Transition configs take their defaults. Without
// WithBank or WithCatalog the reference 3x3 bank and three goals are used,
// which requires Dimensions == 3.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Dimensions <= 0 || cfg.Clusters <= 0 {
		return nil, fmt.Errorf("%w: dimensions (%d) and clusters (%d) must be positive", ErrConfiguration, cfg.Dimensions, cfg.Clusters)
	}
	if cfg.Clusters != cfg.Dimensions {
		return nil, fmt.Errorf("%w: clusters (%d) must equal dimensions (%d)", ErrConfiguration, cfg.Clusters, cfg.Dimensions)
	}
	if cfg.NoiseSigma < 0 || math.IsNaN(cfg.NoiseSigma) || math.IsInf(cfg.NoiseSigma, 0) {
		return nil, fmt.Errorf("%w: noise sigma must be a non-negative finite number, got %v", ErrConfiguration, cfg.NoiseSigma)
	}

	if cfg.Gate == (gate.GateConfig{}) {
		cfg.Gate = gate.DefaultGateConfig()
	}
	if cfg.Transition == (goal.TransitionConfig{}) {
		cfg.Transition = goal.DefaultTransitionConfig()
	}
	if cfg.Policy == "" {
		cfg.Policy = update.PolicyColumn
	}
	if err := validateThresholds(cfg); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.bank == nil {
		o.bank = cluster.Default()
	}
	if o.catalog == nil {
		o.catalog = goal.DefaultCatalog()
	}

	if o.bank.Clusters() != cfg.Clusters || o.bank.Dimensions() != cfg.Dimensions {
		return nil, fmt.Errorf("%w: cluster bank is %dx%d, config wants %dx%d",
			ErrConfiguration, o.bank.Clusters(), o.bank.Dimensions(), cfg.Clusters, cfg.Dimensions)
	}
	if o.catalog.Dimensions() != cfg.Dimensions {
		return nil, fmt.Errorf("%w: goals have %d dimensions, config wants %d", ErrConfiguration, o.catalog.Dimensions(), cfg.Dimensions)
	}

	tracker := gate.NewStopTracker(cfg.Gate)
	deltas, err := update.NewComputer(o.bank, tracker, o.source, update.UpdateConfig{
		Policy:     cfg.Policy,
		NoiseSigma: cfg.NoiseSigma,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	goals, err := goal.NewMachine(o.catalog, o.source, cfg.Transition)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return &Engine{
		config:    cfg,
		bank:      o.bank,
		catalog:   o.catalog,
		tracker:   tracker,
		deltas:    deltas,
		goals:     goals,
		state:     make([]float64, cfg.Dimensions),
		prevState: make([]float64, cfg.Dimensions),
	}, nil
}

// validateThresholds checks the gate and transition thresholds after
// defaults have been filled in.
func validateThresholds(cfg Config) error {
	g, tr := cfg.Gate, cfg.Transition
	if !(g.DeviationBound > 0) || math.IsInf(g.DeviationBound, 0) {
		return fmt.Errorf("%w: deviation bound must be a positive finite number, got %v", ErrConfiguration, g.DeviationBound)
	}
	if g.StopThreshold <= 0 {
		return fmt.Errorf("%w: stop threshold must be positive, got %d", ErrConfiguration, g.StopThreshold)
	}
	if tr.EscalationThreshold < 0 {
		return fmt.Errorf("%w: escalation threshold must not be negative, got %d", ErrConfiguration, tr.EscalationThreshold)
	}
	if math.IsNaN(tr.RegionUpper) || math.IsNaN(tr.RegionLower) || tr.RegionLower > tr.RegionUpper {
		return fmt.Errorf("%w: region lower (%v) must not exceed region upper (%v)", ErrConfiguration, tr.RegionLower, tr.RegionUpper)
	}
	if !(tr.RegionNear >= 0) {
		return fmt.Errorf("%w: region near must not be negative, got %v", ErrConfiguration, tr.RegionNear)
	}
	return nil
}

// #endregion engine

// #region step
// Step advances one time step and reports whether the stop counter is still
// below the stop threshold. A false return is advisory: further calls are
// accepted.
func (e *Engine) Step(force []float64) (bool, error) {
	res, err := e.Advance(force)
	if err != nil {
		return false, err
	}
	return res.Continue, nil
}

// Advance is Step with the full record of what happened. On error nothing
// has been mutated.
func (e *Engine) Advance(force []float64) (StepResult, error) {
	if len(force) != e.config.Dimensions {
		return StepResult{}, fmt.Errorf("%w: external force has %d entries, want %d", ErrShapeMismatch, len(force), e.config.Dimensions)
	}

	current := e.catalog.Goal(e.active)
	res, err := e.deltas.Compute(e.state, current.Vector(), force)
	if err != nil {
		return StepResult{}, fmt.Errorf("compute delta: %w", err)
	}

	copy(e.prevState, e.state)
	for i := range e.state {
		e.state[i] += res.DeltaState[i]
	}

	tr := e.goals.Next(e.active, e.state, e.tracker.Counter())
	e.active = tr.To
	e.steps++

	return StepResult{
		Step:        e.steps,
		PrevState:   e.PrevState(),
		State:       e.State(),
		Update:      res,
		Transition:  tr,
		StopCounter: e.tracker.Counter(),
		Continue:    e.tracker.Continue(),
	}, nil
}

// #endregion step

// #region accessors
// State returns a copy of the current state vector.
func (e *Engine) State() []float64 { return append([]float64(nil), e.state...) }

// PrevState returns a copy of the state before the last step.
func (e *Engine) PrevState() []float64 { return append([]float64(nil), e.prevState...) }

// Goal returns the active catalog entry.
func (e *Engine) Goal() goal.Goal { return e.catalog.Goal(e.active) }

// StopCounter returns the consecutive out-of-bound step count.
func (e *Engine) StopCounter() int { return e.tracker.Counter() }

// Escalated reports whether the stop counter has reached the threshold of
// the deviation rule.
func (e *Engine) Escalated() bool {
	return e.tracker.Escalated(e.config.Transition.EscalationThreshold)
}

// Decision reports the stop-condition verdict after the last step.
func (e *Engine) Decision() gate.GateDecision { return e.tracker.Decide() }

// Steps returns how many steps have been taken.
func (e *Engine) Steps() int { return e.steps }

// Config returns the construction config.
func (e *Engine) Config() Config { return e.config }

// Bank returns the cluster bank.
func (e *Engine) Bank() *cluster.Bank { return e.bank }

// Catalog returns the goal catalog.
func (e *Engine) Catalog() *goal.Catalog { return e.catalog }

// #endregion accessors
