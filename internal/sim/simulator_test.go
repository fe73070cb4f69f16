package sim

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physanim/internal/dynamo"
)

// testScene decays x at rate 1/s and can be told to blow up.
type testScene struct {
	x, t    float64
	speed   float64
	resets  int
	nanAt   float64
	extraAt float64
}

func newTestScene() *testScene { return &testScene{x: 1, speed: 1, nanAt: -1, extraAt: -1} }

func (s *testScene) Kind() dynamo.Kind { return dynamo.KindPendulum }

func (s *testScene) Update(deltaMs float64) {
	dt := deltaMs / 1000 * s.speed
	s.x += -s.x * dt
	s.t += dt
}

func (s *testScene) Reset() {
	s.x, s.t = 1, 0
	s.resets++
}

func (s *testScene) Stats() dynamo.Stats {
	st := dynamo.Stats{"x": s.x}
	if s.extraAt >= 0 && s.t >= s.extraAt {
		st["late"] = 1
	}
	return st
}

func (s *testScene) Snapshot() dynamo.Snapshot {
	b := dynamo.Body{Pos: dynamo.V(s.x, 0)}
	if s.nanAt >= 0 && s.t >= s.nanAt {
		b.Vel = dynamo.V(math.NaN(), 0)
	}
	return dynamo.Snapshot{Kind: s.Kind(), Time: s.t, Bodies: []dynamo.Body{b}}
}

func (s *testScene) GetParams() map[string]float64 { return map[string]float64{"speed": s.speed} }

func (s *testScene) SetParam(name string, v float64) error {
	if name != "speed" {
		return dynamo.UnknownParam(s.Kind(), name)
	}
	s.speed = v
	return nil
}

func quiet(s *Simulator) *Simulator {
	s.SetLogger(log.New(io.Discard))
	return s
}

func TestSimulatorRun(t *testing.T) {
	scene := newTestScene()
	sim := quiet(New(scene))

	cfg := Config{FrameMs: 100, Duration: 1.0, Speed: 1}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if len(result.Series["x"]) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Series["x"]))
	}
	if result.Frames != 10 {
		t.Errorf("expected 10 frames, got %d", result.Frames)
	}
	if scene.resets != 1 {
		t.Errorf("expected one reset before the run, got %d", scene.resets)
	}

	final, _ := result.Last("x")
	expected := math.Exp(-1.0)
	if math.Abs(final-expected) > 0.05 {
		t.Errorf("expected final x ~%.4f, got %.4f", expected, final)
	}
	if result.Final.Time != result.Times[len(result.Times)-1] {
		t.Errorf("final snapshot at %f, last time %f", result.Final.Time, result.Times[len(result.Times)-1])
	}
}

func TestSimulatorSpeed(t *testing.T) {
	scene := newTestScene()
	sim := quiet(New(scene))

	result, err := sim.Run(context.Background(), Config{FrameMs: 100, Duration: 1, Speed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Times[len(result.Times)-1]; math.Abs(got-2) > 1e-9 {
		t.Errorf("expected 2s of scene time at speed 2, got %f", got)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := quiet(New(newTestScene()))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frame", Config{FrameMs: 0, Duration: 1.0}},
		{"negative frame", Config{FrameMs: -16, Duration: 1.0}},
		{"zero duration", Config{FrameMs: 16, Duration: 0}},
		{"negative duration", Config{FrameMs: 16, Duration: -1.0}},
		{"negative speed", Config{FrameMs: 16, Duration: 1, Speed: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(_ float64, stats dynamo.Stats) {
	t.count++
	t.sum += stats["x"]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := quiet(New(newTestScene()))

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), Config{FrameMs: 100, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

func TestSimulatorObservers(t *testing.T) {
	sim := quiet(New(newTestScene()))

	var frames int
	var last float64
	sim.AddObserver(ObserverFunc(func(snap dynamo.Snapshot, _ dynamo.Stats) {
		frames++
		last = snap.Time
	}))

	if _, err := sim.Run(context.Background(), Config{FrameMs: 50, Duration: 0.5}); err != nil {
		t.Fatal(err)
	}
	if frames != 11 {
		t.Errorf("expected 11 frames observed, got %d", frames)
	}
	if math.Abs(last-0.5) > 1e-9 {
		t.Errorf("expected last frame at 0.5s, got %f", last)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	scene := newTestScene()
	scene.nanAt = 0.25
	sim := quiet(New(scene))

	result, err := sim.Run(context.Background(), Config{FrameMs: 100, Duration: 1, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one frame error, got %v", result.Errors)
	}
	var fe FrameError
	if !errors.As(result.Errors[0], &fe) || fe.Frame != 3 {
		t.Errorf("expected FrameError at frame 3, got %v", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
		t.Error("frame error should wrap ErrInvalidState")
	}
	if result.Frames != 2 {
		t.Errorf("expected the run to stop after 2 frames, got %d", result.Frames)
	}
}

func TestSimulatorSeriesStayAligned(t *testing.T) {
	scene := newTestScene()
	scene.extraAt = 0.5
	sim := quiet(New(scene))

	result, err := sim.Run(context.Background(), Config{FrameMs: 100, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	late := result.Series["late"]
	if len(late) != len(result.Times) {
		t.Fatalf("series length %d, times %d", len(late), len(result.Times))
	}
	if !math.IsNaN(late[0]) || late[len(late)-1] != 1 {
		t.Errorf("expected NaN before the key appeared and 1 after, got %v", late)
	}
	if keys := result.Keys(); len(keys) != 2 || keys[0] != "late" || keys[1] != "x" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := quiet(New(newTestScene()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{FrameMs: 16, Duration: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Frames != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := quiet(New(newTestScene()))

	calls := 0
	err := sim.RunWithCallback(context.Background(), Config{FrameMs: 16, Duration: 10}, func(dynamo.Snapshot, dynamo.Stats) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("expected callback to stop the run after 5 calls, got %d", calls)
	}
}
