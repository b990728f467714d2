package replay

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/holonetic/internal/eval"
)

// #region fixture-tests

func runFixture(t *testing.T, name string) Report {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	report, err := Run(f, eval.DefaultEvalConfig(), 1e-9)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, m := range report.Mismatches {
		t.Errorf("%s", m)
	}
	return report
}

// TestFixture_CueRegion is the cue-priority regression: a cue of 5 wins over
// the region rule on step 1 and the region rule takes over afterwards.
func TestFixture_CueRegion(t *testing.T) {
	report := runFixture(t, "cue_region.json")
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(report.Results))
	}
	if !report.Eval.Passed {
		t.Errorf("expected eval pass, got %s", report.Eval.Reason)
	}
}

// TestFixture_StopCondition checks that the fifth consecutive violation
// flips continue to false.
func TestFixture_StopCondition(t *testing.T) {
	report := runFixture(t, "stop_condition.json")
	if report.Eval.Passed {
		t.Error("expected eval to fail on a stopped run")
	}
	if report.Eval.Summary.StopStep != 6 {
		t.Errorf("expected stop at step 6, got %d", report.Eval.Summary.StopStep)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestWriteAndLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := &Fixture{
		Description: "round trip",
		ConfigYAML:  "engine:\n  noise_sigma: 0.2\n",
		Seed:        7,
		Forces:      [][]float64{{0.1, 0.2, 0.3}},
		Expected:    []FixtureExpected{{Step: 1, Goal: 2, Rule: "deviation", StopCounter: 3}},
	}
	if err := WriteFixture(path, in); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	out, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if out.Seed != 7 || out.Forces[0][2] != 0.3 || out.Expected[0].Rule != "deviation" {
		t.Fatalf("fixture not preserved: %+v", out)
	}
	cfg, err := out.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Engine.NoiseSigma != 0.2 {
		t.Fatalf("expected sigma 0.2, got %f", cfg.Engine.NoiseSigma)
	}
}

func TestFixture_BadConfig(t *testing.T) {
	f := &Fixture{ConfigYAML: "engine: [", Forces: [][]float64{{0, 0, 0}}}
	if _, err := Run(f, eval.DefaultEvalConfig(), 0); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

// #endregion fixture-tests

// #region compare-tests

func TestCompare_ReportsEachField(t *testing.T) {
	report := runFixture(t, "cue_region.json")

	expected := []FixtureExpected{
		{Step: 1, Goal: 0, Rule: "retain", StopCounter: 2, Continue: false, State: []float64{0, 0, 0}},
	}
	got := Compare(expected, report.Results[:1], 1e-9)
	fields := map[string]bool{}
	for _, m := range got {
		fields[m.Field] = true
	}
	for _, f := range []string{"goal", "rule", "stop_counter", "continue", "state"} {
		if !fields[f] {
			t.Errorf("expected a %s mismatch, got %v", f, got)
		}
	}
}

func TestCompare_LengthMismatch(t *testing.T) {
	report := runFixture(t, "cue_region.json")
	got := Compare(nil, report.Results, 0)
	if len(got) != 1 || got[0].Field != "steps" {
		t.Fatalf("expected single steps mismatch, got %v", got)
	}
}

// #endregion compare-tests
