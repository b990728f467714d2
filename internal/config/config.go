package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/holonetic/internal/cluster"
	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/force"
	"github.com/danielpatrickdp/holonetic/internal/gate"
	"github.com/danielpatrickdp/holonetic/internal/goal"
	"github.com/danielpatrickdp/holonetic/internal/update"
)

// #region file

// File is the on-disk run configuration. Every section is optional; missing
// fields keep the values from Default.
type File struct {
	Engine     EngineSection     `yaml:"engine"`
	Clusters   [][]float64       `yaml:"clusters"`
	Goals      [][]float64       `yaml:"goals"`
	Gate       GateSection       `yaml:"gate"`
	Transition TransitionSection `yaml:"transition"`
	Run        RunSection        `yaml:"run"`
}

type EngineSection struct {
	Dimensions int     `yaml:"dimensions"`
	Clusters   int     `yaml:"clusters"`
	NoiseSigma float64 `yaml:"noise_sigma"`
	Policy     string  `yaml:"policy"`
}

type GateSection struct {
	DeviationBound float64 `yaml:"deviation_bound"`
	StopThreshold  int     `yaml:"stop_threshold"`
}

type TransitionSection struct {
	CueMin              int     `yaml:"cue_min"`
	CueMax              int     `yaml:"cue_max"`
	CueTrigger          int     `yaml:"cue_trigger"`
	RegionUpper         float64 `yaml:"region_upper"`
	RegionLower         float64 `yaml:"region_lower"`
	RegionNear          float64 `yaml:"region_near"`
	EscalationThreshold int     `yaml:"escalation_threshold"`
	CueGoal             int     `yaml:"cue_goal"`
	RegionGoal          int     `yaml:"region_goal"`
	EscalationGoal      int     `yaml:"escalation_goal"`
}

// RunSection drives the outer loop. Seed 0 asks the caller to pick one.
type RunSection struct {
	Steps     int     `yaml:"steps"`
	Seed      int64   `yaml:"seed"`
	ForceLow  float64 `yaml:"force_low"`
	ForceHigh float64 `yaml:"force_high"`
	StopEarly bool    `yaml:"stop_early"`
}

// #endregion file

// #region defaults

// Default mirrors the package defaults: the reference 3x3 bank, three goals,
// 100 steps with forces in [-0.5, 0.5).
func Default() File {
	ec := engine.DefaultConfig()
	fc := force.DefaultUniformConfig()
	return File{
		Engine: EngineSection{
			Dimensions: ec.Dimensions,
			Clusters:   ec.Clusters,
			NoiseSigma: ec.NoiseSigma,
			Policy:     string(ec.Policy),
		},
		Clusters: cluster.DefaultPositive(),
		Goals:    goal.DefaultVectors(),
		Gate: GateSection{
			DeviationBound: ec.Gate.DeviationBound,
			StopThreshold:  ec.Gate.StopThreshold,
		},
		Transition: TransitionSection{
			CueMin:              ec.Transition.CueMin,
			CueMax:              ec.Transition.CueMax,
			CueTrigger:          ec.Transition.CueTrigger,
			RegionUpper:         ec.Transition.RegionUpper,
			RegionLower:         ec.Transition.RegionLower,
			RegionNear:          ec.Transition.RegionNear,
			EscalationThreshold: ec.Transition.EscalationThreshold,
			CueGoal:             ec.Transition.CueGoal,
			RegionGoal:          ec.Transition.RegionGoal,
			EscalationGoal:      ec.Transition.EscalationGoal,
		},
		Run: RunSection{
			Steps:     100,
			ForceLow:  fc.Low,
			ForceHigh: fc.High,
			StopEarly: true,
		},
	}
}

// #endregion defaults

// #region load

// Load reads a YAML file over Default. An empty path returns Default.
func Load(path string) (File, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	if f.Run.Steps < 0 {
		return File{}, fmt.Errorf("parse config: run.steps must be non-negative, got %d", f.Run.Steps)
	}
	return f, nil
}

// Marshal renders f as YAML. Parse(Marshal(f)) reproduces f.
func (f File) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// #endregion load

// #region conversions

// EngineConfig converts the engine, gate and transition sections.
func (f File) EngineConfig() (engine.Config, error) {
	policy, err := update.ParsePolicy(f.Engine.Policy)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Dimensions: f.Engine.Dimensions,
		Clusters:   f.Engine.Clusters,
		NoiseSigma: f.Engine.NoiseSigma,
		Policy:     policy,
		Gate: gate.GateConfig{
			DeviationBound: f.Gate.DeviationBound,
			StopThreshold:  f.Gate.StopThreshold,
		},
		Transition: goal.TransitionConfig{
			CueMin:              f.Transition.CueMin,
			CueMax:              f.Transition.CueMax,
			CueTrigger:          f.Transition.CueTrigger,
			RegionUpper:         f.Transition.RegionUpper,
			RegionLower:         f.Transition.RegionLower,
			RegionNear:          f.Transition.RegionNear,
			EscalationThreshold: f.Transition.EscalationThreshold,
			CueGoal:             f.Transition.CueGoal,
			RegionGoal:          f.Transition.RegionGoal,
			EscalationGoal:      f.Transition.EscalationGoal,
		},
	}, nil
}

// Options builds the bank and catalog options plus the source option for
// seed. The caller supplies the seed so it can be recorded.
func (f File) Options(seed int64) ([]engine.Option, error) {
	bank, err := cluster.NewBank(f.Clusters)
	if err != nil {
		return nil, fmt.Errorf("clusters: %w", err)
	}
	catalog, err := goal.NewCatalog(f.Goals)
	if err != nil {
		return nil, fmt.Errorf("goals: %w", err)
	}
	return []engine.Option{
		engine.WithBank(bank),
		engine.WithCatalog(catalog),
		engine.WithSeed(seed),
	}, nil
}

// Build returns a ready engine for seed.
func (f File) Build(seed int64) (*engine.Engine, error) {
	cfg, err := f.EngineConfig()
	if err != nil {
		return nil, err
	}
	opts, err := f.Options(seed)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, opts...)
}

// UniformForce converts the run section into a force producer config.
func (f File) UniformForce() force.UniformConfig {
	return force.UniformConfig{
		Dimensions: f.Engine.Dimensions,
		Low:        f.Run.ForceLow,
		High:       f.Run.ForceHigh,
	}
}

// #endregion conversions
