package regulation

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
)

// #region constants
const (
	// Gain scales the gap/cluster alignment before the sigmoid.
	Gain = 10.0

	// Lower and Upper bound the regulation factor. The range is not
	// symmetric: Sigmoid(0) is -0.25, not 0.
	Lower = -1.0
	Upper = 0.5
)

// #endregion constants

// #region sigmoid
// Sigmoid computes 1.5/(1+e^-x) - 1 without overflowing for large |x|.
func Sigmoid(x float64) float64 {
	var s float64
	if x >= 0 {
		s = 1 / (1 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		s = e / (1 + e)
	}
	return 1.5*s - 1
}

// Activation is the scaled dot product of the gap and a cluster row.
func Activation(delta, row []float64) float64 {
	var dot float64
	for i := range delta {
		dot += delta[i] * row[i]
	}
	return dot * Gain
}

// #endregion sigmoid

// #region regulator
// Regulator derives the dynamic regulation factor from a cluster bank.
type Regulator struct {
	bank *cluster.Bank
}

// NewRegulator creates a regulator over bank.
func NewRegulator(bank *cluster.Bank) *Regulator {
	return &Regulator{bank: bank}
}

// Factor returns the regulation strength for cluster row given the full gap
// vector. The row always comes from the positive matrix.
func (r *Regulator) Factor(delta []float64, row int) (float64, error) {
	if len(delta) != r.bank.Dimensions() {
		return 0, fmt.Errorf("regulation factor: gap has %d dimensions, bank has %d", len(delta), r.bank.Dimensions())
	}
	c, err := r.bank.Row(row)
	if err != nil {
		return 0, fmt.Errorf("regulation factor: %w", err)
	}
	return Sigmoid(Activation(delta, c)), nil
}

// #endregion regulator
