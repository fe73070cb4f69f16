package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestBrownianTemperature(t *testing.T) {
	b := NewBrownian(nil, 1)
	if got := b.MoleculeTemperature(); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected initial temperature 1, got %f", got)
	}
	b.SetParam("temperature", 4)
	if got := b.MoleculeTemperature(); math.Abs(got-4) > 1e-9 {
		t.Errorf("expected temperature 4 after rescaling, got %f", got)
	}
	if err := b.SetParam("temperature", -1); err == nil {
		t.Error("expected error for negative temperature")
	}
}

func TestBrownianHeavyParticleIsKicked(t *testing.T) {
	b := NewBrownian(nil, 1)
	b.SetParam("molecules", 100)
	if b.Stats()["displacement"] != 0 {
		t.Fatal("heavy particle should start at its origin")
	}
	run(b, 1200, 16)

	s := b.Stats()
	if s["collisions"] == 0 || s["displacement"] == 0 {
		t.Errorf("heavy particle never moved: %v", s)
	}
	if s["msd"] <= 0 {
		t.Errorf("expected positive mean squared displacement, got %f", s["msd"])
	}
	if len(b.Trail()) > maxTrail {
		t.Errorf("trail grew past %d", maxTrail)
	}
}

func TestDiffusionPartitionHoldsSpecies(t *testing.T) {
	d := NewDiffusion(nil, 1)
	d.SetParam("partition", 1)
	run(d, 300, 16)

	a, b := d.LeftFraction()
	if a != 1 || b != 0 {
		t.Errorf("partition leaked: left fractions %f %f", a, b)
	}
	if d.Mixing() != 0 {
		t.Errorf("expected no mixing, got %f", d.Mixing())
	}
}

func TestDiffusionMixes(t *testing.T) {
	d := NewDiffusion(nil, 1)
	v0 := d.ConcentrationVariance()
	if d.Mixing() != 0 || v0 <= 1 {
		t.Fatalf("expected separated start, mixing %f variance %f", d.Mixing(), v0)
	}
	run(d, 600, 16)
	if d.Mixing() <= 0 {
		t.Error("species did not mix")
	}
	if v := d.ConcentrationVariance(); v >= v0 {
		t.Errorf("concentration variance did not drop: %f -> %f", v0, v)
	}
}

func TestGasLawsThermostat(t *testing.T) {
	g := NewGasLaws(nil, 1)
	run(g, 100, 16)
	if got := g.MeasuredTemperature(); math.Abs(got-g.Temperature) > 1e-6 {
		t.Errorf("isothermal box drifted to %f", got)
	}
	g.SetParam("temperature", 400)
	if got := g.MeasuredTemperature(); math.Abs(got-400) > 1e-6 {
		t.Errorf("expected temperature 400, got %f", got)
	}
}

func TestGasLawsPressureMatchesIdealGas(t *testing.T) {
	g := NewGasLaws(nil, 1)
	g.SetParam("law", float64(GayLussac))
	piston := g.Stats()["piston"]
	run(g, 400, 16)

	s := g.Stats()
	if s["piston"] != piston {
		t.Error("piston moved while locked")
	}
	ideal := g.IdealPressure()
	if s["pressure"] < 0.5*ideal || s["pressure"] > 2*ideal {
		t.Errorf("measured pressure %f far from ideal %f", s["pressure"], ideal)
	}
}

func TestGasLawsBoylePistonResponds(t *testing.T) {
	g := NewGasLaws(nil, 1)
	v0 := g.Volume()
	g.SetParam("external_pressure", 3*g.ExternalPressure)
	run(g, 300, 16)
	if v := g.Volume(); v >= v0 {
		t.Errorf("higher external pressure should compress the gas: %f -> %f", v0, v)
	}
}

func TestGasLawsSpeedHistogram(t *testing.T) {
	g := NewGasLaws(nil, 1)
	run(g, 50, 16)
	h := g.SpeedHistogram()
	if len(h) != gasHistogramBins {
		t.Fatalf("expected %d bins, got %d", gasHistogramBins, len(h))
	}
	if total := floats.Sum(h); total != float64(g.Count) {
		t.Errorf("histogram holds %f particles, want %d", total, g.Count)
	}
}

func TestGasLawsRejectsBadLaw(t *testing.T) {
	g := NewGasLaws(nil, 1)
	if err := g.SetParam("law", 7); err == nil {
		t.Error("expected error for unknown law")
	}
	if GayLussac.String() != "gay-lussac" {
		t.Errorf("unexpected name %q", GayLussac.String())
	}
}

func TestWavesRelations(t *testing.T) {
	w := NewWaves(nil, 1)
	w.SetParam("frequency", 2)
	w.SetParam("wave_speed", 300)

	s := w.Stats()
	if s["wavelength"] != 150 || s["period"] != 0.5 {
		t.Errorf("unexpected wavelength/period: %v", s)
	}
	if math.Abs(s["wavenumber"]-2*math.Pi/150) > 1e-12 {
		t.Errorf("unexpected wavenumber %f", s["wavenumber"])
	}
}

func TestWavesModesProduceBodies(t *testing.T) {
	w := NewWaves(nil, 1)
	want := map[WaveMode]int{
		WaveSound:  soundColumns * soundRows,
		WavePacket: packetPoints,
		WaveString: w.Points,
	}
	for m, n := range want {
		w.SetParam("mode", float64(m))
		run(w, 10, 16)
		if got := len(w.Snapshot().Bodies); got != n {
			t.Errorf("%s: expected %d bodies, got %d", m, n, got)
		}
	}
}

func TestWavesStringEnds(t *testing.T) {
	w := NewWaves(nil, 1)
	w.SetParam("mode", float64(WaveString))
	w.SetParam("damping", 0)
	run(w, 200, 16)

	n := len(w.u)
	if w.u[0] != 0 || w.u[n-1] != 0 {
		t.Errorf("fixed ends moved: %f %f", w.u[0], w.u[n-1])
	}
	for i, u := range w.u {
		if math.Abs(u) > 1.5*w.Amplitude {
			t.Fatalf("point %d exceeded the pluck amplitude: %f", i, u)
		}
	}
}

func TestWavesStringDampingLosesEnergy(t *testing.T) {
	w := NewWaves(nil, 1)
	w.SetParam("mode", float64(WaveString))
	w.SetParam("damping", 1)
	e0 := w.StringEnergy()
	run(w, 200, 16)
	if e := w.StringEnergy(); e >= e0 {
		t.Errorf("damped string kept energy: %f -> %f", e0, e)
	}
}

func TestWavesDrivenEnd(t *testing.T) {
	w := NewWaves(nil, 1)
	w.SetParam("mode", float64(WaveString))
	w.SetParam("driven", 1)
	if w.StringEnergy() != 0 {
		t.Fatal("driven string should start flat")
	}
	run(w, 13, 16)
	want := w.Amplitude * math.Sin(2*math.Pi*w.Frequency*w.Time())
	if math.Abs(w.u[0]-want) > 1e-6 {
		t.Errorf("driven end at %f, want %f", w.u[0], want)
	}
}

func TestBinEdgesEndExactly(t *testing.T) {
	for _, hi := range []float64{0.3, 1, 600, 3 * 173.2} {
		edges := binEdges(gasHistogramBins, hi)
		if len(edges) != gasHistogramBins+1 || edges[0] != 0 || edges[gasHistogramBins] != hi {
			t.Errorf("hi=%v: unexpected edges %v", hi, edges)
		}
	}
}
