package force

import (
	"fmt"
	"math"
)

// #region uniform

// Uniform draws every component independently from [Low, High).
type Uniform struct {
	rng    Uniformer
	config UniformConfig
}

// NewUniform creates a Uniform producer. High must not be below Low.
func NewUniform(rng Uniformer, config UniformConfig) (*Uniform, error) {
	if config.Dimensions <= 0 {
		return nil, fmt.Errorf("uniform force: dimensions must be positive, got %d", config.Dimensions)
	}
	if config.High < config.Low || math.IsNaN(config.Low) || math.IsNaN(config.High) {
		return nil, fmt.Errorf("uniform force: invalid range [%v, %v)", config.Low, config.High)
	}
	return &Uniform{rng: rng, config: config}, nil
}

// Next returns a fresh vector.
func (u *Uniform) Next() ([]float64, error) {
	out := make([]float64, u.config.Dimensions)
	span := u.config.High - u.config.Low
	for i := range out {
		out[i] = u.config.Low + u.rng.Float64()*span
	}
	return out, nil
}

// #endregion uniform

// #region constant

// Constant returns the same vector every step.
type Constant struct {
	vec []float64
}

// NewConstant copies v.
func NewConstant(v []float64) *Constant {
	return &Constant{vec: append([]float64(nil), v...)}
}

// Zero is a Constant of n zeros.
func Zero(n int) *Constant {
	return &Constant{vec: make([]float64, n)}
}

func (c *Constant) Next() ([]float64, error) {
	return append([]float64(nil), c.vec...), nil
}

// #endregion constant

// #region sequence

// Sequence replays a recorded list of forces in order.
type Sequence struct {
	forces [][]float64
	pos    int
}

// NewSequence copies forces.
func NewSequence(forces [][]float64) *Sequence {
	cp := make([][]float64, len(forces))
	for i, f := range forces {
		cp[i] = append([]float64(nil), f...)
	}
	return &Sequence{forces: cp}
}

// Next returns the next recorded vector, or ErrExhausted past the end.
func (s *Sequence) Next() ([]float64, error) {
	if s.pos >= len(s.forces) {
		return nil, fmt.Errorf("%w: %d forces recorded", ErrExhausted, len(s.forces))
	}
	f := append([]float64(nil), s.forces[s.pos]...)
	s.pos++
	return f, nil
}

// Remaining reports how many forces are left.
func (s *Sequence) Remaining() int { return len(s.forces) - s.pos }

// #endregion sequence
