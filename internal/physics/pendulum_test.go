package physics

import (
	"math"
	"testing"
)

func TestPendulumRestsAtEquilibrium(t *testing.T) {
	p := NewPendulum(nil, 1)
	p.SetParam("amplitude", 0)
	run(p, 100, 16)

	s := p.Stats()
	if math.Abs(s["angle"]) > 1e-12 || math.Abs(s["angular_velocity"]) > 1e-12 {
		t.Errorf("pendulum at rest moved: angle %v, omega %v", s["angle"], s["angular_velocity"])
	}
}

func TestPendulumMeasuredPeriod(t *testing.T) {
	p := NewPendulum(nil, 1)
	p.SetParam("damping", 0)
	p.SetParam("amplitude", 5)

	// time between two downward zero crossings at a 1 ms step
	var crossings []float64
	prev := p.Stats()["angle"]
	for i := 0; i < 6000 && len(crossings) < 2; i++ {
		p.Update(1)
		a := p.Stats()["angle"]
		if prev > 0 && a <= 0 {
			crossings = append(crossings, p.Time())
		}
		prev = a
	}
	if len(crossings) < 2 {
		t.Fatal("pendulum did not complete a period")
	}

	measured := crossings[1] - crossings[0]
	if expected := p.Period(); math.Abs(measured-expected)/expected > 0.01 {
		t.Errorf("expected period %f, measured %f", expected, measured)
	}
}

func TestPendulumEnergy(t *testing.T) {
	p := NewPendulum(nil, 1)
	p.SetParam("damping", 0)
	e0 := p.Stats()["total_energy"]
	if e0 <= 0 {
		t.Fatalf("expected positive energy at 30 degrees, got %f", e0)
	}

	run(p, 2000, 5)
	if e := p.Stats()["total_energy"]; math.Abs(e-e0)/e0 > 0.02 {
		t.Errorf("undamped energy drifted from %f to %f", e0, e)
	}

	p.SetParam("damping", 0.5)
	p.Reset()
	run(p, 2000, 5)
	if e := p.Stats()["total_energy"]; e >= e0 {
		t.Errorf("damped energy did not decrease: %f -> %f", e0, e)
	}
}

func TestPendulumLargeAmplitudePeriod(t *testing.T) {
	p := NewPendulum(nil, 1)
	p.SetParam("amplitude", 1)
	small := p.Period()
	p.SetParam("amplitude", 90)
	if large := p.Period(); large <= small {
		t.Errorf("expected longer period at 90 degrees: %f vs %f", large, small)
	}
}

func TestDoublePendulumSnapshot(t *testing.T) {
	p := NewPendulum(nil, 1)
	if err := p.SetParam("mode", PendulumDouble); err != nil {
		t.Fatal(err)
	}
	run(p, 100, 16)

	snap := p.Snapshot()
	if len(snap.Bodies) != 2 || len(snap.Lines) != 2 {
		t.Fatalf("expected 2 bobs and 2 rods, got %d and %d", len(snap.Bodies), len(snap.Lines))
	}
	if _, ok := p.Stats()["angle2"]; !ok {
		t.Error("double mode should report angle2")
	}
	if err := p.SetParam("mode", 5); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestDoublePendulumEnergyAtMaxSpeed(t *testing.T) {
	p := NewPendulum(nil, 1)
	p.SetParam("mode", PendulumDouble)
	p.SetParam("damping", 0)
	p.SetParam("amplitude", 90)
	p.SetParam("speed", MaxSpeed)
	e0 := p.Stats()["total_energy"]

	prev := p.Time()
	for i := 0; i < 60; i++ {
		p.Update(16)
		if p.Time() <= prev {
			t.Fatalf("frame %d: scene reset at t=%f", i, prev)
		}
		prev = p.Time()
		if e := p.Stats()["total_energy"]; math.Abs(e-e0)/e0 > 0.1 {
			t.Fatalf("frame %d: undamped energy went from %f to %f", i, e0, e)
		}
	}
}
