package replay

import (
	"fmt"

	"github.com/danielpatrickdp/holonetic/internal/config"
	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/eval"
	"github.com/danielpatrickdp/holonetic/internal/force"
)

// #region scripted-source
// ScriptedSource replays recorded cues and standard-normal draws in order.
// It satisfies engine.Source. Reading past the recording or receiving a cue
// outside the requested range marks the source as overrun; Err reports it.
type ScriptedSource struct {
	cues   []int
	cueMin int
	draws  []float64

	cuePos  int
	drawPos int
	err     error
}

// NewScriptedSource copies cues and draws. cueMin is the configured lower
// bound of the cue range, so a recorded cue c is returned as c-cueMin.
func NewScriptedSource(cues []int, draws []float64, cueMin int) *ScriptedSource {
	return &ScriptedSource{
		cues:   append([]int(nil), cues...),
		cueMin: cueMin,
		draws:  append([]float64(nil), draws...),
	}
}

func (s *ScriptedSource) Intn(n int) int {
	if s.cuePos >= len(s.cues) {
		s.fail(fmt.Errorf("cue %d requested, %d recorded", s.cuePos+1, len(s.cues)))
		return 0
	}
	c := s.cues[s.cuePos] - s.cueMin
	s.cuePos++
	if c < 0 || c >= n {
		s.fail(fmt.Errorf("recorded cue %d outside [%d, %d]", c+s.cueMin, s.cueMin, s.cueMin+n-1))
		return 0
	}
	return c
}

func (s *ScriptedSource) NormFloat64() float64 {
	if s.drawPos >= len(s.draws) {
		s.fail(fmt.Errorf("noise draw %d requested, %d recorded", s.drawPos+1, len(s.draws)))
		return 0
	}
	v := s.draws[s.drawPos]
	s.drawPos++
	return v
}

// Err returns the first overrun, if any.
func (s *ScriptedSource) Err() error { return s.err }

func (s *ScriptedSource) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// #endregion scripted-source

// #region replay
// Replay builds an engine from f with source and feeds it forces in order.
// Every step is returned, including steps after the stop condition fired.
func Replay(f config.File, source engine.Source, forces [][]float64) ([]engine.StepResult, error) {
	cfg, err := f.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	opts, err := f.Options(0)
	if err != nil {
		return nil, err
	}
	// applied last, so it replaces the seeded source from Options
	opts = append(opts, engine.WithSource(source))

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	seq := force.NewSequence(forces)
	results := make([]engine.StepResult, 0, len(forces))
	for seq.Remaining() > 0 {
		fv, err := seq.Next()
		if err != nil {
			return results, err
		}
		res, err := e.Advance(fv)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", len(results)+1, err)
		}
		results = append(results, res)
	}

	if ss, ok := source.(*ScriptedSource); ok && ss.Err() != nil {
		return results, fmt.Errorf("scripted source: %w", ss.Err())
	}
	return results, nil
}

// #endregion replay

// #region report
// Report is the outcome of replaying a fixture.
type Report struct {
	Results    []engine.StepResult
	Eval       eval.EvalResult
	Mismatches []Mismatch
}

// Passed reports whether every expectation matched.
func (r Report) Passed() bool { return len(r.Mismatches) == 0 }

// Run replays a fixture, evaluates the run and compares it against the
// fixture's expectations. tol bounds the absolute state difference.
func Run(fx *Fixture, evalCfg eval.EvalConfig, tol float64) (Report, error) {
	f, err := fx.Config()
	if err != nil {
		return Report{}, err
	}
	results, err := Replay(f, fx.Source(f.Transition.CueMin), fx.Forces)
	if err != nil {
		return Report{Results: results}, err
	}
	return Report{
		Results:    results,
		Eval:       eval.NewEvalHarness(evalCfg).Run(results),
		Mismatches: Compare(fx.Expected, results, tol),
	}, nil
}

// #endregion report
