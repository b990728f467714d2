package replay

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/danielpatrickdp/holonetic/internal/config"
	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/logging"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. When Cues is
// empty the engine runs on a source seeded with Seed; otherwise Cues and
// NoiseDraws are replayed verbatim.
type Fixture struct {
	Description string            `json:"description"`
	RunID       string            `json:"run_id,omitempty"`
	ConfigYAML  string            `json:"config_yaml"`
	Seed        int64             `json:"seed"`
	Forces      [][]float64       `json:"forces"`
	Cues        []int             `json:"cues,omitempty"`
	NoiseDraws  [][]float64       `json:"noise_draws,omitempty"`
	Expected    []FixtureExpected `json:"expected"`
}

// FixtureExpected captures the expected outcome of one step. State is
// compared only when present.
type FixtureExpected struct {
	Step        int       `json:"step"`
	Goal        int       `json:"goal"`
	Rule        string    `json:"rule"`
	StopCounter int       `json:"stop_counter"`
	Continue    bool      `json:"continue"`
	State       []float64 `json:"state,omitempty"`
}

// Mismatch is one expectation that did not hold.
type Mismatch struct {
	Step  int
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d: %s want %s, got %s", m.Step, m.Field, m.Want, m.Got)
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Config parses the embedded YAML over the defaults.
func (f *Fixture) Config() (config.File, error) {
	cfg, err := config.Parse([]byte(f.ConfigYAML))
	if err != nil {
		return config.File{}, fmt.Errorf("fixture config: %w", err)
	}
	return cfg, nil
}

// Source returns the random stream the fixture was recorded with.
func (f *Fixture) Source(cueMin int) engine.Source {
	if len(f.Cues) == 0 {
		return rand.New(rand.NewSource(f.Seed))
	}
	var draws []float64
	for _, d := range f.NoiseDraws {
		draws = append(draws, d...)
	}
	return NewScriptedSource(f.Cues, draws, cueMin)
}

// #endregion fixture-loader

// #region fixture-builders

// FromTraces builds a fully scripted fixture from logged step traces. The
// expectations carry exact states.
func FromTraces(description, runID, configYAML string, seed int64, traces []logging.StepTrace) *Fixture {
	fx := &Fixture{
		Description: description,
		RunID:       runID,
		ConfigYAML:  configYAML,
		Seed:        seed,
	}
	for _, tr := range traces {
		fx.Forces = append(fx.Forces, tr.Force)
		fx.Cues = append(fx.Cues, tr.Cue)
		fx.NoiseDraws = append(fx.NoiseDraws, tr.NoiseDraws)
		fx.Expected = append(fx.Expected, FixtureExpected{
			Step:        tr.Step,
			Goal:        tr.ToGoal,
			Rule:        tr.Rule,
			StopCounter: tr.StopCounter,
			Continue:    tr.Continue,
			State:       tr.State,
		})
	}
	return fx
}

// ExpectedFromResults turns a run into expectations, with states.
func ExpectedFromResults(results []engine.StepResult) []FixtureExpected {
	out := make([]FixtureExpected, len(results))
	for i, r := range results {
		out[i] = FixtureExpected{
			Step:        r.Step,
			Goal:        r.Transition.To,
			Rule:        string(r.Transition.Rule),
			StopCounter: r.StopCounter,
			Continue:    r.Continue,
			State:       r.State,
		}
	}
	return out
}

// #endregion fixture-builders

// #region compare

// Compare checks results against expected step by step.
func Compare(expected []FixtureExpected, results []engine.StepResult, tol float64) []Mismatch {
	var out []Mismatch
	if len(expected) != len(results) {
		out = append(out, Mismatch{
			Field: "steps",
			Want:  fmt.Sprint(len(expected)),
			Got:   fmt.Sprint(len(results)),
		})
	}
	n := len(expected)
	if len(results) < n {
		n = len(results)
	}
	for i := 0; i < n; i++ {
		want, got := expected[i], results[i]
		step := got.Step
		if want.Step != got.Step {
			out = append(out, Mismatch{Step: step, Field: "step", Want: fmt.Sprint(want.Step), Got: fmt.Sprint(got.Step)})
		}
		if want.Goal != got.Transition.To {
			out = append(out, Mismatch{Step: step, Field: "goal", Want: fmt.Sprint(want.Goal), Got: fmt.Sprint(got.Transition.To)})
		}
		if want.Rule != string(got.Transition.Rule) {
			out = append(out, Mismatch{Step: step, Field: "rule", Want: want.Rule, Got: string(got.Transition.Rule)})
		}
		if want.StopCounter != got.StopCounter {
			out = append(out, Mismatch{Step: step, Field: "stop_counter", Want: fmt.Sprint(want.StopCounter), Got: fmt.Sprint(got.StopCounter)})
		}
		if want.Continue != got.Continue {
			out = append(out, Mismatch{Step: step, Field: "continue", Want: fmt.Sprint(want.Continue), Got: fmt.Sprint(got.Continue)})
		}
		if want.State != nil && !closeTo(want.State, got.State, tol) {
			out = append(out, Mismatch{Step: step, Field: "state", Want: fmt.Sprint(want.State), Got: fmt.Sprint(got.State)})
		}
	}
	return out
}

func closeTo(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// #endregion compare
