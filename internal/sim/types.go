package sim

import (
	"fmt"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Metric reduces the per-frame stats of a run to one number.
type Metric interface {
	Name() string
	Observe(t float64, stats dynamo.Stats)
	Value() float64
	Reset()
}

// Observer sees every frame, e.g. a renderer or a progress printer.
type Observer interface {
	OnFrame(snap dynamo.Snapshot, stats dynamo.Stats)
}

type ObserverFunc func(snap dynamo.Snapshot, stats dynamo.Stats)

func (f ObserverFunc) OnFrame(snap dynamo.Snapshot, stats dynamo.Stats) { f(snap, stats) }

type Config struct {
	FrameMs       float64 // wall-clock milliseconds per Update
	Duration      float64 // wall-clock seconds
	Speed         float64 // 0 keeps the scene's own multiplier
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		FrameMs:       1000.0 / 60,
		Duration:      10,
		Speed:         1,
		ValidateState: true,
	}
}

// Frames is the number of Update calls a run makes.
func (c Config) Frames() int {
	if c.FrameMs <= 0 {
		return 0
	}
	return int(c.Duration*1000/c.FrameMs + 0.5)
}

type Result struct {
	Kind    dynamo.Kind
	Times   []float64 // scene time per recorded frame, including frame 0
	Series  map[string][]float64
	Metrics map[string]float64
	Frames  int
	Final   dynamo.Snapshot
	Errors  []error
}

// Keys returns the recorded stat names in sorted order.
func (r *Result) Keys() []string {
	s := make(dynamo.Stats, len(r.Series))
	for k := range r.Series {
		s[k] = 0
	}
	return s.Keys()
}

// Last returns the final recorded value of a stat.
func (r *Result) Last(key string) (float64, bool) {
	vs := r.Series[key]
	if len(vs) == 0 {
		return 0, false
	}
	return vs[len(vs)-1], true
}

// FrameError reports a snapshot with a non-finite body.
type FrameError struct {
	Time    float64
	Frame   int
	Message string
}

func (e FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}

func (e FrameError) Unwrap() error { return dynamo.ErrInvalidState }
