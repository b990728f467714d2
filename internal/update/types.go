package update

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
	"github.com/danielpatrickdp/holonetic/internal/gate"
)

// ErrShapeMismatch is returned when a vector does not have one entry per
// state dimension.
var ErrShapeMismatch = errors.New("shape mismatch")

// #region policy
// Policy chooses what part of a cluster column is regulated per dimension.
type Policy string

const (
	// PolicyColumn regulates the whole selected column. This is the default.
	PolicyColumn Policy = "column"

	// PolicyExtreme regulates only the most extreme value of the column:
	// the minimum of the negative column or the maximum of the positive one.
	// Leakage is then tested against that single value.
	PolicyExtreme Policy = "extreme"
)

// ParsePolicy maps a config string to a Policy. Empty means PolicyColumn.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyColumn:
		return PolicyColumn, nil
	case PolicyExtreme:
		return PolicyExtreme, nil
	}
	return "", fmt.Errorf("unknown selection policy %q", s)
}

// #endregion policy

// #region noise
// Noise samples standard normal values. *rand.Rand satisfies it.
type Noise interface {
	NormFloat64() float64
}

// #endregion noise

// #region update-config
// UpdateConfig holds the knobs of the delta-state computation.
type UpdateConfig struct {
	Policy     Policy
	NoiseSigma float64 // standard deviation of the additive Gaussian noise
}

// DefaultUpdateConfig matches the reference model.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		Policy:     PolicyColumn,
		NoiseSigma: 0.1,
	}
}

// #endregion update-config

// #region selection
// Selection records which cluster column was regulated at a dimension.
type Selection struct {
	Dimension int
	Sign      cluster.Sign
	Values    []float64 // the regulated entries: whole column or one scalar
	Factor    float64   // dynamic regulation factor D_i
	Regulated float64   // Factor * sum(Values)
	Leakage   float64   // unregulated contribution at this dimension
}

// #endregion selection

// #region metrics
// Metrics captures telemetry from one computation.
type Metrics struct {
	GapNorm   float64
	MaxAbsGap float64
	DeltaNorm float64
}

// #endregion metrics

// #region result
// Result bundles everything returned by Computer.Compute.
type Result struct {
	Gap           []float64 // state - goal, before the update
	Contributions []float64
	Force         []float64
	Noise         []float64 // NoiseDraws scaled by sigma
	NoiseDraws    []float64
	DeltaState    []float64 // Contributions + Force + Noise
	Selections    []Selection
	Observation   gate.Observation
	Metrics       Metrics
}

// #endregion result
