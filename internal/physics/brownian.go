package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/collision"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	brownianTimeScale = 1.0
	maxMolecules      = 120
	maxTrail          = 400

	TagMolecule = 0
	TagHeavy    = 1
)

// Brownian surrounds one heavy particle with fast light molecules. The
// heavy particle only moves because molecules collide with it.
type Brownian struct {
	base

	Molecules   int
	Temperature float64 // scales molecule speed
	HeavyMass   float64
	HeavyRadius float64

	bodies     []dynamo.Body
	start      dynamo.Vec
	trail      []dynamo.Vec
	sqDisp     []float64
	resolver   *collision.Resolver
	integ      *integrators.SemiImplicitEuler
	collisions int
}

func NewBrownian(vp *dynamo.Viewport, seed int64) *Brownian {
	b := &Brownian{
		base:        newBase(vp, seed),
		Molecules:   40,
		Temperature: 1,
		HeavyMass:   50,
		HeavyRadius: 18,
		integ:       integrators.NewSemiImplicitEuler(),
	}
	b.resolver = collision.NewResolver(collision.Elastic, 1, b.rng)
	b.Reset()
	return b
}

func (b *Brownian) Kind() dynamo.Kind { return dynamo.KindBrownian }

func (b *Brownian) moleculeSpeed() float64 {
	return 120 * math.Sqrt(math.Max(b.Temperature, 0))
}

func (b *Brownian) Reset() {
	b.reseed()
	b.resolver.SetRand(b.rng)
	b.collisions = 0

	b.start = b.vp.Center()
	b.bodies = make([]dynamo.Body, 0, b.Molecules+1)
	b.bodies = append(b.bodies, dynamo.Body{
		Pos:    b.start,
		Mass:   b.HeavyMass,
		Radius: b.HeavyRadius,
		Tag:    TagHeavy,
	})

	area := bounds.FromViewport(b.vp, 0)
	v := b.moleculeSpeed()
	for i := 0; i < b.Molecules; i++ {
		var p dynamo.Vec
		for attempt := 0; attempt < placementAttempts; attempt++ {
			p = b.randomIn(r2.Add(area.Min, dynamo.V(4, 4)), r2.Sub(area.Max, dynamo.V(4, 4)))
			if r2.Norm(r2.Sub(p, b.start)) > b.HeavyRadius+8 {
				break
			}
		}
		angle := b.rng.Float64() * 2 * math.Pi
		b.bodies = append(b.bodies, dynamo.Body{
			Pos:    p,
			Vel:    r2.Scale(v, dynamo.V(math.Cos(angle), math.Sin(angle))),
			Mass:   1,
			Radius: 3,
			Tag:    TagMolecule,
		})
	}
	b.trail = append(b.trail[:0], b.start)
	b.sqDisp = b.sqDisp[:0]
}

func (b *Brownian) heavy() *dynamo.Body { return &b.bodies[0] }

func (b *Brownian) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, brownianTimeScale, b.speed)
	if dt == 0 {
		return
	}

	b.integ.Drift(b.bodies, dt)
	b.resolver.ResolveAllFunc(b.bodies, func(i, j int) {
		if i == 0 || j == 0 {
			b.collisions++
		}
	})

	area := bounds.FromViewport(b.vp, 0)
	for i := range b.bodies {
		p := &b.bodies[i]
		bounds.Reflect(p, area, 1)
		if !p.IsValid() {
			p.Pos = b.randomIn(area.Min, area.Max)
			p.Vel = dynamo.Vec{}
		}
	}

	h := b.heavy()
	b.trail = append(b.trail, h.Pos)
	if len(b.trail) > maxTrail {
		b.trail = b.trail[len(b.trail)-maxTrail:]
	}
	b.sqDisp = append(b.sqDisp, r2.Norm2(r2.Sub(h.Pos, b.start)))
	if len(b.sqDisp) > maxTrail {
		b.sqDisp = b.sqDisp[len(b.sqDisp)-maxTrail:]
	}
	b.time += dt
}

// Trail returns the recent path of the heavy particle, oldest first.
func (b *Brownian) Trail() []dynamo.Vec {
	out := make([]dynamo.Vec, len(b.trail))
	copy(out, b.trail)
	return out
}

// MeanSquaredDisplacement averages |r(t)-r(0)|² over the recent history of
// the heavy particle.
func (b *Brownian) MeanSquaredDisplacement() float64 {
	if len(b.sqDisp) == 0 {
		return 0
	}
	return stat.Mean(b.sqDisp, nil)
}

// MoleculeTemperature is the mean kinetic energy of the light molecules,
// normalized so the initial state reads Temperature.
func (b *Brownian) MoleculeTemperature() float64 {
	v := b.moleculeSpeed()
	if v == 0 {
		return 0
	}
	ke, n := 0.0, 0
	for i := range b.bodies {
		if b.bodies[i].Tag == TagMolecule {
			ke += b.bodies[i].KineticEnergy()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return b.Temperature * (ke / float64(n)) / (0.5 * v * v)
}

func (b *Brownian) Stats() dynamo.Stats {
	h := b.heavy()
	return dynamo.Stats{
		"displacement": r2.Norm(r2.Sub(h.Pos, b.start)),
		"msd":          b.MeanSquaredDisplacement(),
		"temperature":  b.MoleculeTemperature(),
		"heavy_speed":  h.Speed(),
		"collisions":   float64(b.collisions),
	}
}

func (b *Brownian) Snapshot() dynamo.Snapshot {
	snap := b.snapshot(dynamo.KindBrownian)
	snap.Bodies = dynamo.CloneBodies(b.bodies)
	for i := 1; i < len(b.trail); i++ {
		snap.Lines = append(snap.Lines, dynamo.Segment{A: b.trail[i-1], B: b.trail[i]})
	}
	return snap
}

func (b *Brownian) GetParams() map[string]float64 {
	return map[string]float64{
		"molecules":    float64(b.Molecules),
		"temperature":  b.Temperature,
		"heavy_mass":   b.HeavyMass,
		"heavy_radius": b.HeavyRadius,
		"speed":        b.speed,
	}
}

func (b *Brownian) SetParam(name string, value float64) error {
	k := dynamo.KindBrownian
	switch name {
	case "molecules":
		b.Molecules = int(dynamo.Clamp(value, 1, maxMolecules))
		b.Reset()
	case "temperature":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		// rescale the molecules in place so the change is visible immediately
		ratio := math.Sqrt(value / b.Temperature)
		b.Temperature = value
		for i := range b.bodies {
			if b.bodies[i].Tag == TagMolecule {
				b.bodies[i].Vel = r2.Scale(ratio, b.bodies[i].Vel)
			}
		}
	case "heavy_mass":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		b.HeavyMass = value
		b.heavy().Mass = value
	case "heavy_radius":
		b.HeavyRadius = dynamo.Clamp(value, 4, 60)
		b.Reset()
	case "speed":
		b.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
