package physics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/collision"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	gasTimeScale = 1.0

	// v_rms = sqrt(T)·gasSpeedPerRootT px/s
	gasSpeedPerRootT = 20.0

	// smoothing time of the measured pressure, s
	gasPressureTau = 1.0

	gasPistonGain     = 0.5
	gasVolumeUnit     = 1000.0 // px² per volume unit
	gasHistogramBins  = 12
	gasParticleRadius = 4.0
	maxGasParticles   = 150
	maxGasSubsteps    = 64
)

type GasLaw int

const (
	Boyle     GasLaw = iota // isothermal, piston follows the external pressure
	Charles                 // isobaric, temperature is the knob
	GayLussac               // isochoric, piston locked
)

func (g GasLaw) String() string {
	switch g {
	case Boyle:
		return "boyle"
	case Charles:
		return "charles"
	case GayLussac:
		return "gay-lussac"
	}
	return "unknown"
}

// GasLaws fills a piston box with hard disks. Pressure is measured from the
// momentum the walls absorb; with the piston free it moves until that
// pressure matches ExternalPressure.
type GasLaws struct {
	base

	Law              GasLaw
	Count            int
	Temperature      float64
	ExternalPressure float64

	particles []dynamo.Body
	piston    float64
	pressure  float64
	resolver  *collision.Resolver
	integ     *integrators.SemiImplicitEuler
}

func NewGasLaws(vp *dynamo.Viewport, seed int64) *GasLaws {
	g := &GasLaws{
		base:        newBase(vp, seed),
		Law:         Boyle,
		Count:       60,
		Temperature: 100,
		integ:       integrators.NewSemiImplicitEuler(),
	}
	g.resolver = collision.NewResolver(collision.Elastic, 1, g.rng)
	g.Reset()
	g.ExternalPressure = g.IdealPressure()
	return g
}

func (g *GasLaws) Kind() dynamo.Kind { return dynamo.KindGasLaws }

// box returns the container with its right wall at the piston.
func (g *GasLaws) box() bounds.Rect {
	return bounds.Rect{
		Min: dynamo.V(g.vp.Width*0.1, g.vp.Height*0.15),
		Max: dynamo.V(g.piston, g.vp.Height*0.85),
	}
}

func (g *GasLaws) pistonLimits() (lo, hi float64) {
	return g.vp.Width*0.1 + 60, g.vp.Width * 0.95
}

func (g *GasLaws) rmsSpeed() float64 {
	return math.Sqrt(math.Max(g.Temperature, 0)) * gasSpeedPerRootT
}

func (g *GasLaws) Reset() {
	g.reseed()
	g.resolver.SetRand(g.rng)
	g.piston = g.vp.Width * 0.6

	area := g.box()
	v := g.rmsSpeed()
	g.particles = make([]dynamo.Body, g.Count)
	for i := range g.particles {
		angle := g.rng.Float64() * 2 * math.Pi
		g.particles[i] = dynamo.Body{
			Pos:    g.randomIn(r2.Add(area.Min, dynamo.V(4, 4)), r2.Sub(area.Max, dynamo.V(4, 4))),
			Vel:    r2.Scale(v, dynamo.V(math.Cos(angle), math.Sin(angle))),
			Mass:   1,
			Radius: gasParticleRadius,
		}
	}
	g.pressure = g.IdealPressure()
}

// Volume is the box area in volume units.
func (g *GasLaws) Volume() float64 {
	r := g.box()
	return r.Width() * r.Height() / gasVolumeUnit
}

// IdealPressure is the 2D ideal-gas pressure N·m·<v²>/(2A) for the target
// temperature and current box, with A in px².
func (g *GasLaws) IdealPressure() float64 {
	r := g.box()
	a := r.Width() * r.Height()
	if a <= 0 {
		return 0
	}
	v := g.rmsSpeed()
	return float64(g.Count) * v * v / (2 * a)
}

// MeasuredTemperature converts the mean squared speed back to temperature.
func (g *GasLaws) MeasuredTemperature() float64 {
	if len(g.particles) == 0 {
		return 0
	}
	sum := 0.0
	for i := range g.particles {
		sum += r2.Norm2(g.particles[i].Vel)
	}
	return sum / float64(len(g.particles)) / (gasSpeedPerRootT * gasSpeedPerRootT)
}

// thermostat rescales every speed so the mean squared speed matches the
// target temperature.
func (g *GasLaws) thermostat() {
	t := g.MeasuredTemperature()
	if t <= 0 {
		return
	}
	ratio := math.Sqrt(g.Temperature / t)
	for i := range g.particles {
		g.particles[i].Vel = r2.Scale(ratio, g.particles[i].Vel)
	}
}

func (g *GasLaws) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, gasTimeScale, g.speed)
	if dt == 0 {
		return
	}

	// a fast particle moves at most a fraction of a radius per substep
	box := g.box()
	impulse := 0.0
	n, h := substeps(dt, 2*g.rmsSpeed()/gasParticleRadius)
	if n > maxGasSubsteps {
		n, h = maxGasSubsteps, dt/maxGasSubsteps
	}
	for s := 0; s < n; s++ {
		g.integ.Drift(g.particles, h)
		g.resolver.ResolveAll(g.particles)

		for i := range g.particles {
			b := &g.particles[i]
			impulse += bounds.ReflectImpulse(b, box, 1).Impulse
			if !b.IsValid() {
				b.Pos = g.randomIn(box.Min, box.Max)
				b.Vel = dynamo.V(g.rmsSpeed(), 0)
			}
		}
	}

	perimeter := 2 * (box.Width() + box.Height())
	if perimeter > 0 {
		inst := impulse / (dt * perimeter)
		g.pressure += (1 - math.Exp(-dt/gasPressureTau)) * (inst - g.pressure)
	}

	if g.Law == Boyle {
		g.thermostat()
	}
	if g.Law != GayLussac && g.ExternalPressure > 0 {
		lo, hi := g.pistonLimits()
		rel := (g.pressure - g.ExternalPressure) / g.ExternalPressure
		g.piston = dynamo.Clamp(g.piston+gasPistonGain*rel*box.Width()*dt, lo, hi)
	}
	g.time += dt
}

// Speeds returns each particle's speed, sorted ascending.
func (g *GasLaws) Speeds() []float64 {
	s := make([]float64, len(g.particles))
	for i := range g.particles {
		s[i] = g.particles[i].Speed()
	}
	sort.Float64s(s)
	return s
}

// SpeedHistogram bins the particle speeds over [0, 3·v_rms) for the
// Maxwell-Boltzmann display. Faster particles land in the last bin.
func (g *GasLaws) SpeedHistogram() []float64 {
	top := 3 * g.rmsSpeed()
	if top <= 0 {
		return make([]float64, gasHistogramBins)
	}
	speeds := g.Speeds()
	for i := range speeds {
		speeds[i] = math.Min(speeds[i], math.Nextafter(top, 0))
	}
	dividers := binEdges(gasHistogramBins, top)
	return stat.Histogram(nil, dividers, speeds, nil)
}

func (g *GasLaws) Stats() dynamo.Stats {
	speeds := g.Speeds()
	mean, spread := 0.0, 0.0
	if len(speeds) > 0 {
		mean = stat.Mean(speeds, nil)
	}
	if len(speeds) > 1 {
		spread = stat.StdDev(speeds, nil)
	}
	t := g.MeasuredTemperature()
	pvt := 0.0
	if t > 0 {
		pvt = g.pressure * g.Volume() / t
	}
	return dynamo.Stats{
		"pressure":     g.pressure,
		"volume":       g.Volume(),
		"temperature":  t,
		"pv_over_t":    pvt,
		"mean_speed":   mean,
		"piston":       g.piston,
		"speed_spread": spread,
		"law":          float64(g.Law),
	}
}

func (g *GasLaws) Snapshot() dynamo.Snapshot {
	snap := g.snapshot(dynamo.KindGasLaws)
	snap.Bodies = dynamo.CloneBodies(g.particles)
	r := g.box()
	snap.Lines = []dynamo.Segment{
		{A: r.Min, B: dynamo.V(r.Max.X, r.Min.Y)},
		{A: dynamo.V(r.Min.X, r.Max.Y), B: r.Max},
		{A: r.Min, B: dynamo.V(r.Min.X, r.Max.Y)},
		{A: dynamo.V(r.Max.X, r.Min.Y), B: r.Max},
	}
	return snap
}

func (g *GasLaws) GetParams() map[string]float64 {
	return map[string]float64{
		"law":               float64(g.Law),
		"particles":         float64(g.Count),
		"temperature":       g.Temperature,
		"external_pressure": g.ExternalPressure,
		"speed":             g.speed,
	}
}

func (g *GasLaws) SetParam(name string, value float64) error {
	k := dynamo.KindGasLaws
	switch name {
	case "law":
		l := GasLaw(value)
		if l != Boyle && l != Charles && l != GayLussac {
			return dynamo.OutOfBounds(k, name, value)
		}
		g.Law = l
	case "particles":
		g.Count = int(dynamo.Clamp(value, 2, maxGasParticles))
		g.Reset()
	case "temperature":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		g.Temperature = value
		g.thermostat()
	case "external_pressure":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		g.ExternalPressure = value
	case "speed":
		g.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
