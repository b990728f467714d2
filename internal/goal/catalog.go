package goal

import "fmt"

// #region goal
// Goal is one catalog entry. The vector is owned by the catalog.
type Goal struct {
	Index  int
	vector []float64
}

// Vector returns a copy of the goal vector.
func (g Goal) Vector() []float64 {
	return append([]float64(nil), g.vector...)
}

// At returns one component without copying.
func (g Goal) At(i int) float64 { return g.vector[i] }

// Len returns the goal's dimensionality.
func (g Goal) Len() int { return len(g.vector) }

// #endregion goal

// #region catalog
// Catalog is an immutable ordered list of goals.
type Catalog struct {
	goals []Goal
	dims  int
}

// NewCatalog copies vectors into a catalog. At least three goals of one
// shared, non-zero dimensionality are required.
func NewCatalog(vectors [][]float64) (*Catalog, error) {
	if len(vectors) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 goals, got %d", ErrInvalidCatalog, len(vectors))
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: goal 0 is empty", ErrInvalidCatalog)
	}
	goals := make([]Goal, len(vectors))
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: goal %d has %d dimensions, want %d", ErrInvalidCatalog, i, len(v), dims)
		}
		goals[i] = Goal{Index: i, vector: append([]float64(nil), v...)}
	}
	return &Catalog{goals: goals, dims: dims}, nil
}

// DefaultVectors returns the reference three goals.
func DefaultVectors() [][]float64 {
	return [][]float64{
		{1, 2, 3},
		{-1, -2, -3},
		{0.5, 0.5, 0.5},
	}
}

// DefaultCatalog builds a catalog from DefaultVectors.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(DefaultVectors())
	return c
}

// Goal returns entry i. i must be in range.
func (c *Catalog) Goal(i int) Goal { return c.goals[i] }

// Len returns the number of goals.
func (c *Catalog) Len() int { return len(c.goals) }

// Dimensions returns the shared goal length.
func (c *Catalog) Dimensions() int { return c.dims }

// Vectors returns copies of every goal vector, in order.
func (c *Catalog) Vectors() [][]float64 {
	out := make([][]float64, len(c.goals))
	for i, g := range c.goals {
		out[i] = g.Vector()
	}
	return out
}

// #endregion catalog
