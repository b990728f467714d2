package engine

import (
	"errors"

	"github.com/danielpatrickdp/holonetic/internal/gate"
	"github.com/danielpatrickdp/holonetic/internal/goal"
	"github.com/danielpatrickdp/holonetic/internal/update"
)

// #region errors
var (
	// ErrConfiguration means the engine cannot be built from the given config.
	ErrConfiguration = errors.New("configuration error")

	// ErrShapeMismatch means a step input had the wrong length.
	ErrShapeMismatch = update.ErrShapeMismatch
)

// #endregion errors

// #region source
// Source is the single random stream of the engine: Gaussian noise and
// goal cues. *rand.Rand satisfies it.
type Source interface {
	NormFloat64() float64
	Intn(n int) int
}

// #endregion source

// #region config
// Config holds the construction parameters of an engine.
type Config struct {
	Dimensions int
	Clusters   int
	NoiseSigma float64
	Policy     update.Policy

	Gate       gate.GateConfig
	Transition goal.TransitionConfig
}

// DefaultConfig returns the reference 3-dimensional configuration.
func DefaultConfig() Config {
	return Config{
		Dimensions: 3,
		Clusters:   3,
		NoiseSigma: 0.1,
		Policy:     update.PolicyColumn,
		Gate:       gate.DefaultGateConfig(),
		Transition: goal.DefaultTransitionConfig(),
	}
}

// NewConfig is the reference configuration resized to the given shape.
func NewConfig(dimensions, clusters int, noiseSigma float64) Config {
	cfg := DefaultConfig()
	cfg.Dimensions = dimensions
	cfg.Clusters = clusters
	cfg.NoiseSigma = noiseSigma
	return cfg
}

// #endregion config

// #region step-result
// StepResult captures everything that happened in one Advance call.
type StepResult struct {
	Step        int // 1-based
	PrevState   []float64
	State       []float64
	Update      update.Result
	Transition  goal.Transition
	StopCounter int
	Continue    bool
}

// #endregion step-result
