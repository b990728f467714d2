package goal

import (
	"errors"
	"testing"
)

// scriptedCues returns cue-CueMin for each queued cue so DrawCue yields it.
type scriptedCues struct {
	cues []int
	min  int
	pos  int
}

func (s *scriptedCues) Intn(n int) int {
	c := s.cues[s.pos%len(s.cues)] - s.min
	s.pos++
	return c
}

// a state outside every region: all components in (0.1, 0.8]
func calmState() []float64 { return []float64{0.5, 0.4, 0.3} }

func TestDecideCueWins(t *testing.T) {
	cfg := DefaultTransitionConfig()
	// state satisfies the region rule and counter satisfies escalation
	to, rule := Decide(cfg, 5, []float64{0, 2, -2}, 4, 2)
	if to != 1 || rule != RuleCue {
		t.Fatalf("expected goal 1 via cue, got %d via %s", to, rule)
	}
}

func TestDecideRegionBeatsDeviation(t *testing.T) {
	cfg := DefaultTransitionConfig()
	to, rule := Decide(cfg, 3, []float64{0.5, 0.9, 0.5}, 4, 1)
	if to != 0 || rule != RuleRegion {
		t.Fatalf("expected goal 0 via region, got %d via %s", to, rule)
	}
}

func TestDecideDeviation(t *testing.T) {
	cfg := DefaultTransitionConfig()
	to, rule := Decide(cfg, 1, calmState(), 3, 0)
	if to != 2 || rule != RuleDeviation {
		t.Fatalf("expected goal 2 via deviation, got %d via %s", to, rule)
	}
}

func TestDecideRetain(t *testing.T) {
	cfg := DefaultTransitionConfig()
	for _, current := range []int{0, 1, 2} {
		to, rule := Decide(cfg, 4, calmState(), 2, current)
		if to != current || rule != RuleRetain {
			t.Fatalf("expected retain %d, got %d via %s", current, to, rule)
		}
	}
}

func TestInRegionBoundaries(t *testing.T) {
	cfg := DefaultTransitionConfig()
	cases := []struct {
		state []float64
		want  bool
	}{
		{[]float64{0.8, 0.5, 0.5}, false},   // upper bound is strict
		{[]float64{0.81, 0.5, 0.5}, true},   // above upper
		{[]float64{-0.8, -0.5, 0.5}, false}, // lower bound is strict
		{[]float64{-0.81, 0.5, 0.5}, true},  // below lower
		{[]float64{0.1, -0.1, 0.5}, false},  // near-zero bound is strict
		{[]float64{0.09, 0.5, 0.5}, true},   // near zero
		{[]float64{0.5, -0.05, 0.5}, true},  // near zero, negative
		{[]float64{0, 0, 0}, true},          // zero state
	}
	for _, c := range cases {
		if got := InRegion(cfg, c.state); got != c.want {
			t.Errorf("InRegion(%v) = %v, want %v", c.state, got, c.want)
		}
	}
}

func TestMachineDrawsCueInRange(t *testing.T) {
	cues := &scriptedCues{cues: []int{1, 2, 3, 4, 5}, min: 1}
	m, err := NewMachine(DefaultCatalog(), cues, DefaultTransitionConfig())
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	for want := 1; want <= 5; want++ {
		if got := m.DrawCue(); got != want {
			t.Fatalf("DrawCue = %d, want %d", got, want)
		}
	}
}

func TestMachineNext(t *testing.T) {
	cues := &scriptedCues{cues: []int{5, 1, 1, 2}, min: 1}
	m, err := NewMachine(DefaultCatalog(), cues, DefaultTransitionConfig())
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}

	tr := m.Next(0, calmState(), 0)
	if tr.To != 1 || tr.Rule != RuleCue || tr.Cue != 5 || !tr.Changed() {
		t.Fatalf("step 1: %+v", tr)
	}
	tr = m.Next(1, []float64{2, 2, 2}, 0)
	if tr.To != 0 || tr.Rule != RuleRegion {
		t.Fatalf("step 2: %+v", tr)
	}
	tr = m.Next(0, calmState(), 3)
	if tr.To != 2 || tr.Rule != RuleDeviation {
		t.Fatalf("step 3: %+v", tr)
	}
	tr = m.Next(2, calmState(), 0)
	if tr.To != 2 || tr.Rule != RuleRetain || tr.Changed() {
		t.Fatalf("step 4: %+v", tr)
	}
}

func TestNewMachineRejectsMissingTarget(t *testing.T) {
	cfg := DefaultTransitionConfig()
	cfg.EscalationGoal = 3
	if _, err := NewMachine(DefaultCatalog(), &scriptedCues{cues: []int{1}}, cfg); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}

	cfg = DefaultTransitionConfig()
	cfg.CueMin, cfg.CueMax = 5, 1
	if _, err := NewMachine(DefaultCatalog(), &scriptedCues{cues: []int{1}}, cfg); err == nil {
		t.Fatal("expected error for empty cue range")
	}
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 3 || c.Dimensions() != 3 {
		t.Fatalf("expected 3 goals of 3 dims, got %d of %d", c.Len(), c.Dimensions())
	}
	g := c.Goal(1)
	if g.Index != 1 || g.At(2) != -3 || g.Len() != 3 {
		t.Fatalf("unexpected goal 1: %+v", g)
	}

	v := g.Vector()
	v[0] = 99
	if c.Goal(1).At(0) != -1 {
		t.Fatal("goal vector mutated through copy")
	}

	vs := c.Vectors()
	vs[2][0] = 99
	if c.Goal(2).At(0) != 0.5 {
		t.Fatal("goal vector mutated through Vectors")
	}
}

func TestNewCatalogCopiesInput(t *testing.T) {
	in := DefaultVectors()
	c, err := NewCatalog(in)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	in[0][0] = 42
	if c.Goal(0).At(0) != 1 {
		t.Fatal("catalog shares caller's slice")
	}
}

func TestNewCatalogInvalid(t *testing.T) {
	cases := map[string][][]float64{
		"too-few": {{1}, {2}},
		"empty":   {{}, {}, {}},
		"ragged":  {{1, 2}, {1, 2}, {1}},
	}
	for name, vs := range cases {
		if _, err := NewCatalog(vs); !errors.Is(err, ErrInvalidCatalog) {
			t.Errorf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
	}
}
