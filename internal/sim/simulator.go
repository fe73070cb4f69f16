package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physanim/internal/dynamo"
)

type Simulator struct {
	scene     dynamo.Scene
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(scene dynamo.Scene) *Simulator {
	return &Simulator{
		scene:     scene,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }
func (s *Simulator) Scene() dynamo.Scene     { return s.scene }

// Run resets the scene and drives it for cfg.Frames() updates, recording
// every stat after each frame. Cancelling ctx returns the partial result
// with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Speed != 0 {
		if err := s.scene.SetParam("speed", cfg.Speed); err != nil {
			return nil, fmt.Errorf("set speed: %w", err)
		}
	}
	s.scene.Reset()

	frames := cfg.Frames()
	result := &Result{
		Kind:    s.scene.Kind(),
		Times:   make([]float64, 0, frames+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	logger := s.logger.With("kind", result.Kind)
	logger.Debug("run started", "frames", frames, "frame_ms", cfg.FrameMs, "seed", cfg.Seed)

	snap := s.scene.Snapshot()
	s.record(result, snap.Time, s.scene.Stats(), snap)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			result.Final = s.scene.Snapshot()
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		s.scene.Update(cfg.FrameMs)
		snap := s.scene.Snapshot()
		stats := s.scene.Stats()

		if cfg.ValidateState && !snap.IsValid() {
			err := FrameError{Time: snap.Time, Frame: i + 1, Message: "non-finite body"}
			result.Errors = append(result.Errors, err)
			logger.Warn("run stopped", "err", err)
			break
		}

		result.Frames++
		s.record(result, snap.Time, stats, snap)
	}

	result.Final = s.scene.Snapshot()
	s.collect(result)
	logger.Debug("run finished", "frames", result.Frames, "time", result.Final.Time)
	return result, nil
}

// record appends one frame. Keys missing from a later frame get NaN so
// every series stays aligned with Times.
func (s *Simulator) record(r *Result, t float64, stats dynamo.Stats, snap dynamo.Snapshot) {
	n := len(r.Times)
	r.Times = append(r.Times, t)
	for k, v := range stats {
		if _, ok := r.Series[k]; !ok {
			r.Series[k] = nanSeries(n)
		}
		r.Series[k] = append(r.Series[k], v)
	}
	for k, vs := range r.Series {
		if len(vs) < n+1 {
			r.Series[k] = append(vs, math.NaN())
		}
	}

	for _, m := range s.metrics {
		m.Observe(t, stats)
	}
	for _, obs := range s.observers {
		obs.OnFrame(snap, stats)
	}
}

func (s *Simulator) collect(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func nanSeries(n int) []float64 {
	vs := make([]float64, n, n+1)
	for i := range vs {
		vs[i] = math.NaN()
	}
	return vs
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.FrameMs <= 0 {
		return fmt.Errorf("frame must be positive, got %f ms", cfg.FrameMs)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Speed < 0 {
		return fmt.Errorf("speed must not be negative, got %f", cfg.Speed)
	}
	return nil
}

// RunWithCallback drives the scene until the callback returns false, the
// duration elapses or ctx is cancelled. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(dynamo.Snapshot, dynamo.Stats) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	frames := cfg.Frames()
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := s.scene.Snapshot()
		if !callback(snap, s.scene.Stats()) {
			return nil
		}

		s.scene.Update(cfg.FrameMs)

		if cfg.ValidateState && !s.scene.Snapshot().IsValid() {
			return FrameError{Time: snap.Time, Frame: i + 1, Message: "non-finite body"}
		}
	}

	return nil
}
