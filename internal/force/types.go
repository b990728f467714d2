package force

import "errors"

// ErrExhausted means a Sequence has no more recorded forces.
var ErrExhausted = errors.New("force sequence exhausted")

// #region producer-interface

// Producer yields the external force vector for the next engine step.
type Producer interface {
	Next() ([]float64, error)
}

// Uniformer is the slice of *rand.Rand that Uniform needs.
type Uniformer interface {
	Float64() float64
}

// #endregion producer-interface

// #region config

// UniformConfig bounds each force component to [Low, High).
type UniformConfig struct {
	Dimensions int
	Low        float64
	High       float64
}

// DefaultUniformConfig returns the demo-loop range [-0.5, 0.5) over 3 dimensions.
func DefaultUniformConfig() UniformConfig {
	return UniformConfig{
		Dimensions: 3,
		Low:        -0.5,
		High:       0.5,
	}
}

// #endregion config
