package cluster

import "errors"

// #region sign
// Sign picks which half of a twin cluster pair is addressed.
type Sign int

const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// #endregion sign

// #region errors
var (
	ErrInvalidMatrix       = errors.New("invalid cluster matrix")
	ErrDimensionOutOfRange = errors.New("dimension out of range")
)

// #endregion errors

// #region default-matrix
// DefaultPositive returns the reference 3x3 positive cluster matrix.
// Each row is one cluster; each column one state dimension.
func DefaultPositive() [][]float64 {
	return [][]float64{
		{0.9, 0.5, 0.3},
		{0.3, 0.9, 0.5},
		{0.5, 0.3, 0.9},
	}
}

// #endregion default-matrix
