package update

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
	"github.com/danielpatrickdp/holonetic/internal/gate"
	"github.com/danielpatrickdp/holonetic/internal/regulation"
)

// #region contributions
// Contributions computes the per-dimension cluster contribution for a gap
// vector. It is a pure function: no counters, no randomness.
//
// At dimension i the negative column is selected when gap[i] < 0, the
// positive column otherwise. The selection is scaled by D_i, the regulation
// factor of cluster row i. Every raw matrix entry at column i that differs
// from all selected values is added unregulated.
func Contributions(bank *cluster.Bank, reg *regulation.Regulator, gap []float64, policy Policy) ([]float64, []Selection, error) {
	dims := bank.Dimensions()
	if len(gap) != dims {
		return nil, nil, fmt.Errorf("%w: gap has %d entries, want %d", ErrShapeMismatch, len(gap), dims)
	}

	out := make([]float64, dims)
	selections := make([]Selection, dims)

	for i := 0; i < dims; i++ {
		sign := cluster.Positive
		if gap[i] < 0 {
			sign = cluster.Negative
		}

		col, err := bank.Column(i, sign)
		if err != nil {
			return nil, nil, err
		}
		selected := col
		if policy == PolicyExtreme {
			selected = []float64{extreme(col, sign)}
		}

		d, err := reg.Factor(gap, i)
		if err != nil {
			return nil, nil, err
		}

		var sum float64
		for _, v := range selected {
			sum += v
		}
		regulated := d * sum

		var leakage float64
		for j := 0; j < bank.Clusters(); j++ {
			if p := bank.Value(j, i, cluster.Positive); differsFromAll(p, selected) {
				leakage += p
			}
			if n := bank.Value(j, i, cluster.Negative); differsFromAll(n, selected) {
				leakage += n
			}
		}

		out[i] = regulated + leakage
		selections[i] = Selection{
			Dimension: i,
			Sign:      sign,
			Values:    selected,
			Factor:    d,
			Regulated: regulated,
			Leakage:   leakage,
		}
	}

	return out, selections, nil
}

// #endregion contributions

// #region computer
// Computer is the stateful delta-state step: it feeds the stop tracker and
// draws noise around the pure Contributions call.
type Computer struct {
	bank    *cluster.Bank
	reg     *regulation.Regulator
	tracker *gate.StopTracker
	noise   Noise
	config  UpdateConfig
}

// NewComputer wires a computer. The bank must be square: cluster row i is
// paired with dimension i.
func NewComputer(bank *cluster.Bank, tracker *gate.StopTracker, noise Noise, config UpdateConfig) (*Computer, error) {
	if bank.Clusters() != bank.Dimensions() {
		return nil, fmt.Errorf("cluster bank is %dx%d, rows must pair 1:1 with dimensions", bank.Clusters(), bank.Dimensions())
	}
	if config.NoiseSigma < 0 || math.IsNaN(config.NoiseSigma) {
		return nil, fmt.Errorf("noise sigma must be non-negative, got %v", config.NoiseSigma)
	}
	if config.Policy == "" {
		config.Policy = PolicyColumn
	}
	return &Computer{
		bank:    bank,
		reg:     regulation.NewRegulator(bank),
		tracker: tracker,
		noise:   noise,
		config:  config,
	}, nil
}

// Compute returns the state delta for one step. All three vectors are
// validated before the stop tracker is touched.
func (c *Computer) Compute(state, goal, force []float64) (Result, error) {
	dims := c.bank.Dimensions()
	for _, v := range []struct {
		name string
		vec  []float64
	}{{"state", state}, {"goal", goal}, {"external force", force}} {
		if len(v.vec) != dims {
			return Result{}, fmt.Errorf("%w: %s has %d entries, want %d", ErrShapeMismatch, v.name, len(v.vec), dims)
		}
	}

	// 1. Gap against the goal in effect before this step's transition
	gap := make([]float64, dims)
	for i := range gap {
		gap[i] = state[i] - goal[i]
	}

	// 2. Stop condition, before contributions
	obs := c.tracker.Observe(gap)

	// 3. Cluster contributions
	contribs, selections, err := Contributions(c.bank, c.reg, gap, c.config.Policy)
	if err != nil {
		return Result{}, err
	}

	// 4. Noise is drawn even at sigma 0 so the random stream does not shift
	draws := make([]float64, dims)
	noise := make([]float64, dims)
	for i := range noise {
		draws[i] = c.noise.NormFloat64()
		noise[i] = draws[i] * c.config.NoiseSigma
	}

	delta := make([]float64, dims)
	for i := range delta {
		delta[i] = contribs[i] + force[i] + noise[i]
	}

	return Result{
		Gap:           gap,
		Contributions: contribs,
		Force:         append([]float64(nil), force...),
		Noise:         noise,
		NoiseDraws:    draws,
		DeltaState:    delta,
		Selections:    selections,
		Observation:   obs,
		Metrics: Metrics{
			GapNorm:   norm(gap),
			MaxAbsGap: maxAbs(gap),
			DeltaNorm: norm(delta),
		},
	}, nil
}

// Config returns the active configuration.
func (c *Computer) Config() UpdateConfig { return c.config }

// #endregion computer

// #region helpers
func extreme(col []float64, sign cluster.Sign) float64 {
	best := col[0]
	for _, v := range col[1:] {
		if sign == cluster.Negative && v < best {
			best = v
		}
		if sign == cluster.Positive && v > best {
			best = v
		}
	}
	return best
}

// differsFromAll is elementwise inequality against every selected entry.
func differsFromAll(v float64, selected []float64) bool {
	for _, s := range selected {
		if v == s {
			return false
		}
	}
	return true
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// #endregion helpers
