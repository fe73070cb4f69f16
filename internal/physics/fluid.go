package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	fluidTimeScale    = 1.0
	fluidPxPerMPS     = 200.0 // on-screen px/s per m/s of flow
	fluidRelaxation   = 4.0   // 1/s, how fast tracers follow the profile
	ReynoldsLaminar   = 2300.0
	ReynoldsTurbulent = 4000.0
	maxFluidTracers   = 300
)

const (
	RegimeLaminar = iota
	RegimeTransitional
	RegimeTurbulent
)

// Fluid advects tracer particles through a horizontal pipe. Below the
// laminar Reynolds number they follow the Poiseuille profile; above the
// turbulent one the profile flattens and random eddies jostle them.
type Fluid struct {
	base

	Velocity  float64 // mean flow speed, m/s
	Viscosity float64 // dynamic viscosity, Pa·s
	Density   float64 // kg/m³
	Diameter  float64 // m
	Count     int

	tracers []dynamo.Body
	integ   *integrators.SemiImplicitEuler
}

func NewFluid(vp *dynamo.Viewport, seed int64) *Fluid {
	f := &Fluid{
		base:      newBase(vp, seed),
		Velocity:  0.2,
		Viscosity: 0.005,
		Density:   1000,
		Diameter:  0.05,
		Count:     80,
		integ:     integrators.NewSemiImplicitEuler(),
	}
	f.Reset()
	return f
}

func (f *Fluid) Kind() dynamo.Kind { return dynamo.KindFluid }

func (f *Fluid) channel() bounds.Channel {
	return bounds.Channel{
		Left:   0,
		Right:  f.vp.Width,
		Top:    f.vp.Height * 0.3,
		Bottom: f.vp.Height * 0.7,
	}
}

func (f *Fluid) Reset() {
	f.reseed()
	ch := f.channel()
	f.tracers = make([]dynamo.Body, f.Count)
	for i := range f.tracers {
		p := f.randomIn(dynamo.V(ch.Left, ch.Top+2), dynamo.V(ch.Right, ch.Bottom-2))
		f.tracers[i] = dynamo.Body{Pos: p, Mass: 1, Radius: 2}
		f.tracers[i].Vel = dynamo.V(f.profile(p.Y, ch), 0)
	}
}

// Reynolds returns ρ·v·D/μ.
func (f *Fluid) Reynolds() float64 {
	if f.Viscosity <= 0 {
		return math.Inf(1)
	}
	return f.Density * f.Velocity * f.Diameter / f.Viscosity
}

func (f *Fluid) Regime() int {
	re := f.Reynolds()
	switch {
	case re < ReynoldsLaminar:
		return RegimeLaminar
	case re < ReynoldsTurbulent:
		return RegimeTransitional
	}
	return RegimeTurbulent
}

// turbulence is 0 in the laminar regime, 1 when fully turbulent, and ramps
// linearly across the transition.
func (f *Fluid) turbulence() float64 {
	re := f.Reynolds()
	return dynamo.Clamp((re-ReynoldsLaminar)/(ReynoldsTurbulent-ReynoldsLaminar), 0, 1)
}

// profile returns the target horizontal speed in px/s at height y.
func (f *Fluid) profile(y float64, ch bounds.Channel) float64 {
	mean := f.Velocity * fluidPxPerMPS
	half := ch.Diameter() / 2
	if half <= 0 {
		return 0
	}
	eta := dynamo.Clamp(math.Abs(y-ch.Center())/half, 0, 1)

	laminar := 2 * mean * (1 - eta*eta)
	turbulent := mean * (8.0 / 7.0) * math.Pow(1-eta, 1.0/7.0)
	t := f.turbulence()
	return laminar*(1-t) + turbulent*t
}

func (f *Fluid) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, fluidTimeScale, f.speed)
	if dt == 0 {
		return
	}
	ch := f.channel()
	n, h := substeps(dt, fluidRelaxation)
	eddy := 0.6 * f.Velocity * fluidPxPerMPS * f.turbulence() / math.Sqrt(h)
	for s := 0; s < n; s++ {
		f.integ.Advance(f.tracers, func(_ int, b *dynamo.Body) dynamo.Vec {
			target := dynamo.V(f.profile(b.Pos.Y, ch), 0)
			a := r2.Scale(fluidRelaxation, r2.Sub(target, b.Vel))
			if eddy > 0 {
				a = r2.Add(a, r2.Scale(eddy, dynamo.V(f.rng.NormFloat64(), f.rng.NormFloat64())))
			}
			return a
		}, h)

		for i := range f.tracers {
			b := &f.tracers[i]
			ch.Apply(b, 0.5)
			if !b.IsValid() {
				b.Pos = f.randomIn(dynamo.V(ch.Left, ch.Top+2), dynamo.V(ch.Right, ch.Bottom-2))
				b.Vel = dynamo.V(f.profile(b.Pos.Y, ch), 0)
			}
		}
	}
	f.time += dt
}

// FlowRate is the volumetric rate through the circular pipe in L/s.
func (f *Fluid) FlowRate() float64 {
	return f.Velocity * math.Pi * f.Diameter * f.Diameter / 4 * 1000
}

func (f *Fluid) Stats() dynamo.Stats {
	mean, peak := 0.0, 0.0
	for i := range f.tracers {
		v := f.tracers[i].Vel.X / fluidPxPerMPS
		mean += v
		peak = math.Max(peak, v)
	}
	if n := len(f.tracers); n > 0 {
		mean /= float64(n)
	}
	return dynamo.Stats{
		"reynolds":      f.Reynolds(),
		"regime":        float64(f.Regime()),
		"mean_velocity": mean,
		"max_velocity":  peak,
		"flow_rate":     f.FlowRate(),
	}
}

func (f *Fluid) Snapshot() dynamo.Snapshot {
	snap := f.snapshot(dynamo.KindFluid)
	ch := f.channel()
	snap.Bodies = dynamo.CloneBodies(f.tracers)
	snap.Lines = []dynamo.Segment{
		{A: dynamo.V(ch.Left, ch.Top), B: dynamo.V(ch.Right, ch.Top)},
		{A: dynamo.V(ch.Left, ch.Bottom), B: dynamo.V(ch.Right, ch.Bottom)},
	}
	return snap
}

func (f *Fluid) GetParams() map[string]float64 {
	return map[string]float64{
		"velocity":  f.Velocity,
		"viscosity": f.Viscosity,
		"density":   f.Density,
		"diameter":  f.Diameter,
		"count":     float64(f.Count),
		"speed":     f.speed,
	}
}

func (f *Fluid) SetParam(name string, value float64) error {
	k := dynamo.KindFluid
	switch name {
	case "velocity":
		f.Velocity = dynamo.Clamp(value, 0, 5)
	case "viscosity", "density", "diameter":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		switch name {
		case "viscosity":
			f.Viscosity = value
		case "density":
			f.Density = value
		case "diameter":
			f.Diameter = value
		}
	case "count":
		f.Count = int(dynamo.Clamp(value, 1, maxFluidTracers))
		f.Reset()
	case "speed":
		f.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
