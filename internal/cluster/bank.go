package cluster

import "fmt"

// #region bank
// Bank holds the fixed positive cluster matrix and its negated twin.
// The negative matrix is derived once at construction and never exposed
// for mutation; every accessor hands out copies.
type Bank struct {
	positive [][]float64
	negative [][]float64
	clusters int
	dims     int
}

// NewBank copies positive and derives the negative matrix from it.
func NewBank(positive [][]float64) (*Bank, error) {
	if len(positive) == 0 {
		return nil, fmt.Errorf("%w: no clusters", ErrInvalidMatrix)
	}
	dims := len(positive[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: cluster 0 has no dimensions", ErrInvalidMatrix)
	}

	pos := make([][]float64, len(positive))
	neg := make([][]float64, len(positive))
	for i, row := range positive {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: cluster %d has %d dimensions, want %d", ErrInvalidMatrix, i, len(row), dims)
		}
		pos[i] = make([]float64, dims)
		neg[i] = make([]float64, dims)
		for j, v := range row {
			pos[i][j] = v
			neg[i][j] = -v
		}
	}

	return &Bank{positive: pos, negative: neg, clusters: len(pos), dims: dims}, nil
}

// Default builds a bank from DefaultPositive.
func Default() *Bank {
	b, _ := NewBank(DefaultPositive())
	return b
}

// #endregion bank

// #region accessors
// Clusters returns the number of cluster rows.
func (b *Bank) Clusters() int { return b.clusters }

// Dimensions returns the number of columns.
func (b *Bank) Dimensions() int { return b.dims }

// Column returns every cluster's value at dim for the given sign.
func (b *Bank) Column(dim int, sign Sign) ([]float64, error) {
	if dim < 0 || dim >= b.dims {
		return nil, fmt.Errorf("%w: column %d of %d", ErrDimensionOutOfRange, dim, b.dims)
	}
	m := b.matrix(sign)
	col := make([]float64, b.clusters)
	for i := range m {
		col[i] = m[i][dim]
	}
	return col, nil
}

// Row returns cluster i of the positive matrix.
func (b *Bank) Row(i int) ([]float64, error) {
	if i < 0 || i >= b.clusters {
		return nil, fmt.Errorf("%w: row %d of %d", ErrDimensionOutOfRange, i, b.clusters)
	}
	row := make([]float64, b.dims)
	copy(row, b.positive[i])
	return row, nil
}

// Value returns a single entry. Indices are assumed valid.
func (b *Bank) Value(row, dim int, sign Sign) float64 {
	return b.matrix(sign)[row][dim]
}

// Positive returns a copy of the positive matrix.
func (b *Bank) Positive() [][]float64 { return cloneMatrix(b.positive) }

// Negative returns a copy of the negative matrix.
func (b *Bank) Negative() [][]float64 { return cloneMatrix(b.negative) }

// #endregion accessors

// #region helpers
func (b *Bank) matrix(sign Sign) [][]float64 {
	if sign == Negative {
		return b.negative
	}
	return b.positive
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// #endregion helpers
