package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/physics"
)

func sine(n int, rate, freq float64) ([]float64, []float64) {
	ts := make([]float64, n)
	xs := make([]float64, n)
	for i := range xs {
		ts[i] = float64(i) / rate
		xs[i] = 3 + math.Sin(2*math.Pi*freq*ts[i])
	}
	return ts, xs
}

func TestDominantFrequency(t *testing.T) {
	_, xs := sine(600, 60, 2)
	xs[10] = math.NaN()
	if f := DominantFrequency(xs, 60); math.Abs(f-2) > 0.1 {
		t.Errorf("expected 2 Hz, got %f", f)
	}
	if f := DominantFrequency([]float64{1, 1, 1, 1, 1}, 60); f != 0 {
		t.Errorf("constant series has no frequency, got %f", f)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	_, xs := sine(256, 64, 4)
	ps := PowerSpectrum(xs)
	if len(ps) != 129 {
		t.Fatalf("expected n/2+1 bins, got %d", len(ps))
	}
	if ps[0] > 1e-6 {
		t.Errorf("zero bin should be empty after mean removal, got %f", ps[0])
	}
	if ps[16] < ps[15] || ps[16] < ps[17] {
		t.Error("expected a peak at 4 Hz")
	}
}

func TestCrossingsAndPeriod(t *testing.T) {
	ts, xs := sine(600, 60, 0.5)
	c := Crossings(ts, xs, 3)
	if len(c) != 4 {
		t.Fatalf("expected 4 rising crossings after the start, got %d", len(c))
	}
	if p := MeanPeriod(c); math.Abs(p-2) > 1e-3 {
		t.Errorf("expected period 2, got %f", p)
	}
	if MeanPeriod(c[:1]) != 0 {
		t.Error("one crossing has no period")
	}
}

func TestPhasePortrait(t *testing.T) {
	p := NewPhasePortrait("x", []float64{-1, 0, 1, math.NaN()}, "y", []float64{0, 1, 0, 2, 5})
	if len(p.Points) != 3 {
		t.Fatalf("expected 3 finite points, got %d", len(p.Points))
	}

	out := p.ASCII(20, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if strings.Count(out, "•") != 3 || !strings.Contains(out, "│") {
		t.Errorf("unexpected plot:\n%s", out)
	}
	if (&PhasePortrait{}).ASCII(20, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}

func pendulumPair(mode int, amplitude float64) (dynamo.Scene, dynamo.Scene) {
	a, b := physics.NewPendulum(nil, 1), physics.NewPendulum(nil, 1)
	for _, p := range []*physics.Pendulum{a, b} {
		p.SetParam("mode", float64(mode))
		p.SetParam("damping", 0)
	}
	a.SetParam("amplitude", amplitude)
	b.SetParam("amplitude", amplitude+1e-3)
	return a, b
}

func TestDivergenceSeparatesChaos(t *testing.T) {
	simpleA, simpleB := pendulumPair(physics.PendulumSimple, 60)
	doubleA, doubleB := pendulumPair(physics.PendulumDouble, 120)

	regular := Divergence(simpleA, simpleB, 600, 16, 50)
	chaotic := Divergence(doubleA, doubleB, 600, 16, 50)

	if regular.Samples < 2 || chaotic.Samples < 2 {
		t.Fatalf("not enough samples: %+v %+v", regular, chaotic)
	}
	if chaotic.Exponent <= regular.Exponent {
		t.Errorf("double pendulum should diverge faster: %f vs %f", chaotic.Exponent, regular.Exponent)
	}
	if regular.Saturated {
		t.Error("simple pendulum should stay close")
	}
}

func TestDivergenceIdenticalRuns(t *testing.T) {
	a, b := physics.NewCollisions(nil, 3), physics.NewCollisions(nil, 3)
	est := Divergence(a, b, 100, 16, 50)
	if est.Samples != 0 || est.Exponent != 0 {
		t.Errorf("identical runs never separate: %+v", est)
	}
}

func TestLinspaceEndpoints(t *testing.T) {
	for _, n := range []int{2, 4, 7, 10} {
		v := Linspace(0.1, 0.7, n)
		if len(v) != n || v[0] != 0.1 || v[n-1] != 0.7 {
			t.Errorf("n=%d: unexpected linspace %v", n, v)
		}
	}
}

func TestSweepFluidReynolds(t *testing.T) {
	build := func(v float64) (dynamo.Scene, error) {
		f := physics.NewFluid(nil, 1)
		return f, f.SetParam("velocity", v)
	}
	values := Linspace(0.1, 1, 4)
	if len(values) != 4 || values[3] != 1 {
		t.Fatalf("unexpected linspace %v", values)
	}

	points, err := Sweep(context.Background(), build, values, "reynolds", 5, 10, 16)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Mean <= points[i-1].Mean {
			t.Errorf("Reynolds number should grow with velocity: %+v", points)
		}
	}
	if points[0].Min != points[0].Max || points[0].Samples != 10 {
		t.Errorf("constant stat should have no spread: %+v", points[0])
	}
}

func TestSweepErrors(t *testing.T) {
	build := func(v float64) (dynamo.Scene, error) {
		f := physics.NewFluid(nil, 1)
		return f, f.SetParam("viscosity", v)
	}
	if _, err := Sweep(context.Background(), build, []float64{0.001, 0}, "reynolds", 0, 1, 16); err == nil {
		t.Error("expected error for a rejected value")
	}
	if _, err := Sweep(context.Background(), build, []float64{0.001}, "missing", 0, 1, 16); err == nil {
		t.Error("expected error for a missing stat")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sweep(ctx, build, []float64{0.001}, "reynolds", 0, 1, 16); err == nil {
		t.Error("expected cancellation error")
	}
}
