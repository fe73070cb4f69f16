package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/sim"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

type Config struct {
	Kind          dynamo.Kind
	FrameMs       float64
	Duration      float64
	Speed         float64
	Seed          int64
	Width         float64
	Height        float64
	Params        map[string]float64
	ValidateState bool
}

// size falls back to the default canvas for unset dimensions.
func (c Config) size() (float64, float64) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func (c Config) simConfig() sim.Config {
	return sim.Config{
		FrameMs:       c.FrameMs,
		Duration:      c.Duration,
		Speed:         c.Speed,
		Seed:          c.Seed,
		ValidateState: c.ValidateState,
	}
}

type Experiment struct {
	cfg       Config
	registry  *Registry
	viewport  *dynamo.Viewport
	scene     dynamo.Scene
	simulator *sim.Simulator
	logger    *log.Logger
}

func New(cfg Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	w, h := cfg.size()
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		viewport: dynamo.NewViewport(w, h),
		logger:   log.Default(),
	}
}

func (e *Experiment) SetLogger(l *log.Logger) {
	e.logger = l
	if e.simulator != nil {
		e.simulator.SetLogger(l)
	}
}

// Setup builds the scene, applies params in name order and attaches the
// metrics. A nil metrics slice selects the registry defaults for the kind.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	scene, err := e.registry.New(e.cfg.Kind, e.viewport, e.cfg.Seed)
	if err != nil {
		return err
	}
	if err := applyParams(scene, e.cfg.Params); err != nil {
		return err
	}
	if metrics == nil {
		metrics = e.registry.DefaultMetrics(e.cfg.Kind)
	}

	e.scene = scene
	e.simulator = sim.New(scene)
	e.simulator.SetLogger(e.logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.simConfig())
}

// Ensemble runs numRuns copies of the configured scene with seeds
// starting at the configured one.
func (e *Experiment) Ensemble(ctx context.Context, numRuns int) ([]*sim.Result, error) {
	factory := func(seed int64) (dynamo.Scene, error) {
		vp := dynamo.NewViewport(e.cfg.size())
		scene, err := e.registry.New(e.cfg.Kind, vp, seed)
		if err != nil {
			return nil, err
		}
		return scene, applyParams(scene, e.cfg.Params)
	}
	newMetrics := func() []sim.Metric { return e.registry.DefaultMetrics(e.cfg.Kind) }

	ens := sim.NewEnsemble(factory, newMetrics, numRuns, e.cfg.Seed)
	ens.SetLogger(e.logger)
	return ens.Run(ctx, e.cfg.simConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Scene() dynamo.Scene { return e.scene }

func (e *Experiment) Viewport() *dynamo.Viewport { return e.viewport }

func applyParams(scene dynamo.Scene, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := scene.SetParam(name, params[name]); err != nil {
			return fmt.Errorf("apply params: %w", err)
		}
	}
	return nil
}
