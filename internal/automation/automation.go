package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physanim/internal/config"
	"github.com/san-kum/physanim/internal/experiment"
	"github.com/san-kum/physanim/internal/sim"
	"github.com/san-kum/physanim/internal/storage"
)

// Scenario is a scripted lesson: scenes run one after another, each
// optionally saved as a run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one scene of a scenario. Preset values sit under the step's own
// fields; zero fields keep the preset or default.
type Step struct {
	Kind     string             `yaml:"kind"`
	Preset   string             `yaml:"preset"`
	Duration float64            `yaml:"duration"`
	FrameMs  float64            `yaml:"frame_ms"`
	Speed    float64            `yaml:"speed"`
	Seed     int64              `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	Save     bool               `yaml:"save"`
}

// StepResult pairs a step with its run. RunID is empty for unsaved steps.
type StepResult struct {
	Step   Step
	Result *sim.Result
	RunID  string
}

// Stable reports whether the run finished without frame errors and every
// frame passed the stability check.
func (r StepResult) Stable() bool {
	if r.Result == nil || len(r.Result.Errors) > 0 {
		return false
	}
	v, ok := r.Result.Metrics["stability"]
	return !ok || v == 1
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config resolves the step to a full scene config.
func (s Step) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Kind, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for %s", s.Preset, s.Kind)
		}
	}
	cfg.Kind = s.Kind
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.FrameMs > 0 {
		cfg.FrameMs = s.FrameMs
	}
	if s.Speed > 0 {
		cfg.Speed = s.Speed
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	cfg.Apply(s.Params)
	return cfg, nil
}

// Runner executes scenarios. Store may be nil, in which case nothing is
// saved even for steps that ask to be.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *log.Logger
}

// Run executes every step in order and stops at the first failure,
// returning the steps completed so far.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("scenario", scenario.Name)

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		logger.Info("running step", "step", fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)), "kind", step.Kind, "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		expCfg, err := cfg.Experiment()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(expCfg, r.Registry)
		exp.SetLogger(logger)
		if err := exp.Setup(nil); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.Save && r.Store != nil {
			sr.RunID, err = r.Store.Save(storage.RunMetadata{
				Seed:     cfg.Seed,
				FrameMs:  cfg.FrameMs,
				Duration: cfg.Duration,
				Speed:    cfg.Speed,
				Width:    cfg.Width,
				Height:   cfg.Height,
				Params:   exp.Scene().GetParams(),
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// Summary counts stable and unstable steps.
func Summary(results []StepResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable() {
			stable++
		} else {
			unstable++
		}
	}
	return
}
