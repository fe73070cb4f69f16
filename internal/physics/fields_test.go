package physics

import (
	"math"
	"testing"

	"github.com/san-kum/physanim/internal/dynamo"
)

func TestElectricDipoleField(t *testing.T) {
	e := NewElectric(dynamo.NewViewport(800, 600), 1)

	// positive charge on the left, negative on the right
	if f := e.FieldAt(dynamo.V(400, 300)); f.X <= 0 || math.Abs(f.Y) > 1e-9 {
		t.Errorf("expected field along +x between the charges, got %v", f)
	}
	s := e.Stats()
	if s["net_charge"] != 0 || math.Abs(s["potential_center"]) > 1e-9 {
		t.Errorf("dipole should be neutral with zero potential at the centre: %v", s)
	}
}

func TestElectricChargeLimits(t *testing.T) {
	e := NewElectric(nil, 1)
	e.ClearCharges()
	for i := 0; i < maxCharges; i++ {
		if !e.AddCharge(float64(10*i), 10, 1, 100) {
			t.Fatalf("charge %d rejected", i)
		}
	}
	if e.AddCharge(0, 0, 1, 1) {
		t.Error("expected charge limit")
	}
	for _, c := range e.Charges() {
		if c.Magnitude != 10 {
			t.Errorf("magnitude should be clamped to 10, got %f", c.Magnitude)
		}
	}
}

func TestElectricResetRestoresDipole(t *testing.T) {
	e := NewElectric(nil, 1)
	e.ClearCharges()
	e.AddCharge(100, 100, -1, 2)

	e.SetParam("tracers", 10)
	if cs := e.Charges(); len(cs) != 1 || cs[0].Sign != -1 {
		t.Errorf("hand-placed charges lost on tracer change: %v", cs)
	}
	if got := len(e.Snapshot().Bodies); got != 10 {
		t.Errorf("expected 10 tracers, got %d", got)
	}

	e.Reset()
	cs := e.Charges()
	if len(cs) != 2 || cs[0].Sign != 1 || cs[1].Sign != -1 {
		t.Errorf("expected the default dipole after reset, got %v", cs)
	}
}

func TestElectricFieldLinesInSnapshot(t *testing.T) {
	e := NewElectric(nil, 1)
	if len(e.Snapshot().Lines) == 0 {
		t.Error("expected field lines")
	}
	e.SetParam("field_lines", 0)
	if len(e.Snapshot().Lines) != 0 {
		t.Error("field lines should be hidden")
	}
}

func TestMagneticPreservesSpeed(t *testing.T) {
	m := NewMagnetic(nil, 3)
	m.SetParam("filings", 0)

	before := make([]float64, len(m.particles))
	for i := range m.particles {
		before[i] = m.particles[i].Speed()
	}
	run(m, 300, 16)
	for i := range m.particles {
		if got := m.particles[i].Speed(); math.Abs(got-before[i]) > 1e-9*before[i] {
			t.Errorf("particle %d speed changed from %f to %f", i, before[i], got)
		}
	}
}

func TestMagneticCyclotron(t *testing.T) {
	m := NewMagnetic(nil, 1)
	r, period := m.Cyclotron(120)
	if math.Abs(r-80) > 1e-9 {
		t.Errorf("expected radius 80, got %f", r)
	}
	if math.Abs(period-2*math.Pi/1.5) > 1e-9 {
		t.Errorf("expected period %f, got %f", 2*math.Pi/1.5, period)
	}

	m.SetParam("field", 0)
	if r, period := m.Cyclotron(120); r != 0 || period != 0 {
		t.Errorf("no field should give zero orbit, got %f %f", r, period)
	}
}

func TestMagneticOppositeChargesCurlOpposite(t *testing.T) {
	m := NewMagnetic(nil, 1)
	if m.particles[0].Charge != -m.particles[1].Charge {
		t.Errorf("expected alternating charges, got %f and %f", m.particles[0].Charge, m.particles[1].Charge)
	}
	m.SetParam("charge", 0)
	if m.particles[1].Charge != 0 {
		t.Error("charge 0 should apply to every particle")
	}
}

func TestFluidRegimes(t *testing.T) {
	f := NewFluid(nil, 1)
	if f.Regime() != RegimeLaminar {
		t.Errorf("default flow should be laminar, Re=%f", f.Reynolds())
	}
	f.SetParam("velocity", 0.3)
	if f.Regime() != RegimeTransitional {
		t.Errorf("expected transitional at Re=%f", f.Reynolds())
	}
	f.SetParam("velocity", 1)
	if f.Regime() != RegimeTurbulent {
		t.Errorf("expected turbulent at Re=%f", f.Reynolds())
	}
	if err := f.SetParam("viscosity", 0); err == nil {
		t.Error("expected error for zero viscosity")
	}
}

func TestFluidLaminarProfile(t *testing.T) {
	f := NewFluid(nil, 1)
	run(f, 300, 16)

	s := f.Stats()
	// Poiseuille flow peaks at twice the mean on the axis
	if s["max_velocity"] > 2*f.Velocity+1e-9 {
		t.Errorf("max velocity %f exceeds the Poiseuille peak %f", s["max_velocity"], 2*f.Velocity)
	}
	if s["mean_velocity"] <= 0 {
		t.Errorf("expected downstream flow, got %f", s["mean_velocity"])
	}

	ch := f.channel()
	if centre, wall := f.profile(ch.Center(), ch), f.profile(ch.Top, ch); centre <= wall || wall != 0 {
		t.Errorf("expected zero at the wall and a peak at the centre: %f %f", centre, wall)
	}
}

func TestFluidTurbulentProfileIsFlatter(t *testing.T) {
	f := NewFluid(nil, 1)
	ch := f.channel()
	quarter := ch.Top + ch.Diameter()/4

	laminar := f.profile(quarter, ch) / f.profile(ch.Center(), ch)
	f.SetParam("velocity", 1)
	turbulent := f.profile(quarter, ch) / f.profile(ch.Center(), ch)
	if turbulent <= laminar {
		t.Errorf("turbulent profile should be flatter: %f vs %f", turbulent, laminar)
	}
}
