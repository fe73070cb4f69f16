package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	orbitTimeScale   = 1.0
	orbitMinDistance = 10.0
	maxPlanets       = 8
)

// massPoint adapts a body to barneshut.Particle2.
type massPoint struct{ b *dynamo.Body }

func (m massPoint) Coord2() r2.Vec { return m.b.Pos }
func (m massPoint) Mass() float64  { return m.b.Mass }

// Orbits puts planets around a star held at the centre of the viewport.
// Gravity between every pair is summed over a Barnes–Hut plane with theta
// 0, which is an exact pairwise sum. The plane's tree summary misplaces
// single-particle leaves, so the approximated walk is never used.
type Orbits struct {
	base

	G              float64
	StarMass       float64
	PlanetCount    int
	VelocityFactor float64 // 1 gives circular orbits, <1 or >1 ellipses

	star    dynamo.Body
	planets []dynamo.Body
	plane   barneshut.Plane
	points  []barneshut.Particle2
	integ   *integrators.SemiImplicitEuler
}

func NewOrbits(vp *dynamo.Viewport, seed int64) *Orbits {
	o := &Orbits{
		base:           newBase(vp, seed),
		G:              1.0,
		StarMass:       1e6,
		PlanetCount:    3,
		VelocityFactor: 1.0,
		integ:          integrators.NewSemiImplicitEuler(),
	}
	o.Reset()
	return o
}

func (o *Orbits) Kind() dynamo.Kind { return dynamo.KindOrbits }

func (o *Orbits) Reset() {
	o.reseed()
	o.star = dynamo.Body{Pos: o.vp.Center(), Mass: o.StarMass, Radius: 20}
	o.planets = make([]dynamo.Body, o.PlanetCount)
	for i := range o.planets {
		o.planets[i] = o.spawnPlanet(i)
	}
	o.rebuildPoints()
}

func (o *Orbits) maxRadius() float64 {
	return math.Max(orbitMinDistance*4, math.Min(o.vp.Width, o.vp.Height)/2-20)
}

func (o *Orbits) spawnPlanet(i int) dynamo.Body {
	r := math.Min(80+float64(i)*45, o.maxRadius())
	angle := o.rng.Float64() * 2 * math.Pi
	v := math.Sqrt(o.G*o.StarMass/r) * o.VelocityFactor

	pos := r2.Add(o.star.Pos, dynamo.V(r*math.Cos(angle), r*math.Sin(angle)))
	vel := dynamo.V(-v*math.Sin(angle), v*math.Cos(angle))
	mass := 1 + o.rng.Float64()*9
	return dynamo.Body{Pos: pos, Vel: vel, Mass: mass, Radius: 4 + math.Sqrt(mass), Tag: i}
}

func (o *Orbits) rebuildPoints() {
	o.points = o.points[:0]
	o.points = append(o.points, massPoint{&o.star})
	for i := range o.planets {
		o.points = append(o.points, massPoint{&o.planets[i]})
	}
	o.plane.Particles = o.points
}

// gravity is a barneshut.Force2 with the distance clamped to
// orbitMinDistance.
func (o *Orbits) gravity(_, _ barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
	d2 := v.X*v.X + v.Y*v.Y
	if d2 == 0 {
		return r2.Vec{}
	}
	d := math.Sqrt(d2)
	r := math.Max(d, orbitMinDistance)
	return r2.Scale(o.G*m1*m2/(r*r*d), v)
}

func (o *Orbits) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, orbitTimeScale, o.speed)
	if dt == 0 {
		return
	}

	o.star.Pos = o.vp.Center()
	o.integ.Advance(o.planets, func(i int, _ *dynamo.Body) dynamo.Vec {
		return o.acceleration(i)
	}, dt)
	o.time += dt

	limit := 4 * math.Max(o.vp.Width, o.vp.Height)
	for i := range o.planets {
		p := &o.planets[i]
		if !p.IsValid() || r2.Norm(r2.Sub(p.Pos, o.star.Pos)) > limit {
			*p = o.spawnPlanet(i)
		}
	}
}

// acceleration of planet i from the star and every other planet.
func (o *Orbits) acceleration(i int) dynamo.Vec {
	f := o.plane.ForceOn(o.points[i+1], 0, o.gravity)
	return r2.Scale(1/o.planets[i].Mass, f)
}

// Orbit returns the semi-major axis and Kepler period of planet i around
// the star. Unbound planets report a zero period.
func (o *Orbits) Orbit(i int) (a, period float64) {
	if i < 0 || i >= len(o.planets) {
		return 0, 0
	}
	p := o.planets[i]
	mu := o.G * o.StarMass
	r := math.Max(r2.Norm(r2.Sub(p.Pos, o.star.Pos)), orbitMinDistance)
	v2 := r2.Norm2(p.Vel)

	inv := 2/r - v2/mu
	if inv <= 0 {
		return math.Inf(1), 0
	}
	a = 1 / inv
	return a, 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

func (o *Orbits) Energy() float64 {
	ke, pe := 0.0, 0.0
	for i := range o.planets {
		ke += o.planets[i].KineticEnergy()
	}
	for i := range o.points {
		for j := i + 1; j < len(o.points); j++ {
			pi, pj := o.points[i], o.points[j]
			r := math.Max(r2.Norm(r2.Sub(pj.Coord2(), pi.Coord2())), orbitMinDistance)
			pe -= o.G * pi.Mass() * pj.Mass() / r
		}
	}
	return ke + pe
}

func (o *Orbits) Stats() dynamo.Stats {
	s := dynamo.Stats{
		"planets":      float64(len(o.planets)),
		"total_energy": o.Energy(),
	}
	if len(o.planets) > 0 {
		p := o.planets[0]
		_, period := o.Orbit(0)
		s["distance"] = r2.Norm(r2.Sub(p.Pos, o.star.Pos))
		s["speed"] = p.Speed()
		s["period"] = period
	}
	return s
}

func (o *Orbits) Snapshot() dynamo.Snapshot {
	snap := o.snapshot(dynamo.KindOrbits)
	snap.Bodies = dynamo.CloneBodies(o.planets)
	snap.Sources = []dynamo.Source{{Pos: o.star.Pos, Sign: 1, Magnitude: o.star.Mass}}
	return snap
}

func (o *Orbits) Planets() []dynamo.Body { return dynamo.CloneBodies(o.planets) }

func (o *Orbits) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":         o.G,
		"star_mass":       o.StarMass,
		"planets":         float64(o.PlanetCount),
		"velocity_factor": o.VelocityFactor,
		"speed":           o.speed,
	}
}

func (o *Orbits) SetParam(name string, value float64) error {
	k := dynamo.KindOrbits
	switch name {
	case "gravity":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		o.G = value
	case "star_mass":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		o.StarMass = value
		o.star.Mass = value
	case "planets":
		o.PlanetCount = int(dynamo.Clamp(value, 1, maxPlanets))
		o.Reset()
	case "velocity_factor":
		o.VelocityFactor = dynamo.Clamp(value, 0.1, 2)
		o.Reset()
	case "speed":
		o.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
