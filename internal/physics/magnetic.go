package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/field"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	magneticTimeScale = 1.0
	magneticMinR      = 12.0

	TagCharged = 0
	TagFiling  = 1
)

// Magnetic combines two effects: charged particles circling in a uniform
// out-of-plane field Bz, and iron-filing tracers drifting along the
// in-plane field of a bar magnet. Both wrap around the viewport edges.
type Magnetic struct {
	base

	Field         float64 // Bz
	Charge        float64
	ParticleMass  float64
	InitialSpeed  float64
	ParticleCount int
	FilingCount   int
	PoleStrength  float64

	particles []dynamo.Body
	poles     []dynamo.Source
	eval      *field.Evaluator
	integ     *integrators.SemiImplicitEuler
}

func NewMagnetic(vp *dynamo.Viewport, seed int64) *Magnetic {
	m := &Magnetic{
		base:          newBase(vp, seed),
		Field:         1.5,
		Charge:        1,
		ParticleMass:  1,
		InitialSpeed:  120,
		ParticleCount: 8,
		FilingCount:   30,
		PoleStrength:  1,
		integ:         integrators.NewSemiImplicitEuler(),
	}
	m.eval = &field.Evaluator{K: 2e7, MinR: magneticMinR, Falloff: field.Dipole}
	m.Reset()
	return m
}

func (m *Magnetic) Kind() dynamo.Kind { return dynamo.KindMagnetic }

func (m *Magnetic) Reset() {
	m.reseed()
	m.placePoles()

	m.particles = make([]dynamo.Body, 0, m.ParticleCount+m.FilingCount)
	for i := 0; i < m.ParticleCount; i++ {
		angle := m.rng.Float64() * 2 * math.Pi
		q := alternating(i, m.Charge)
		m.particles = append(m.particles, dynamo.Body{
			Pos:    m.randomIn(dynamo.Vec{}, dynamo.V(m.vp.Width, m.vp.Height)),
			Vel:    r2.Scale(m.InitialSpeed, dynamo.V(math.Cos(angle), math.Sin(angle))),
			Mass:   m.ParticleMass,
			Radius: 4,
			Charge: q,
			Tag:    TagCharged,
		})
	}
	for i := 0; i < m.FilingCount; i++ {
		m.particles = append(m.particles, m.spawnFiling())
	}
}

func (m *Magnetic) placePoles() {
	c := m.vp.Center()
	half := math.Min(m.vp.Width, m.vp.Height) / 6
	m.poles = []dynamo.Source{
		{Pos: r2.Sub(c, dynamo.V(half, 0)), Sign: 1, Magnitude: m.PoleStrength},
		{Pos: r2.Add(c, dynamo.V(half, 0)), Sign: -1, Magnitude: m.PoleStrength},
	}
}

func (m *Magnetic) spawnFiling() dynamo.Body {
	return dynamo.Body{
		Pos:    m.randomIn(dynamo.Vec{}, dynamo.V(m.vp.Width, m.vp.Height)),
		Mass:   1,
		Radius: 1,
		Tag:    TagFiling,
	}
}

func (m *Magnetic) accel(_ int, b *dynamo.Body) dynamo.Vec {
	if b.Tag == TagFiling {
		return m.eval.At(b.Pos, m.poles)
	}
	return r2.Scale(1/b.Mass, field.Lorentz(b.Charge, b.Vel, m.Field))
}

func (m *Magnetic) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, magneticTimeScale, m.speed)
	if dt == 0 {
		return
	}

	speeds := make([]float64, len(m.particles))
	for i := range m.particles {
		speeds[i] = m.particles[i].Speed()
	}

	m.integ.Advance(m.particles, m.accel, dt)

	area := bounds.FromViewport(m.vp, 0)
	for i := range m.particles {
		b := &m.particles[i]
		if b.Tag == TagCharged {
			// the magnetic force does no work: undo the Euler speed drift
			if v := b.Speed(); v > 0 {
				b.Vel = r2.Scale(speeds[i]/v, b.Vel)
			}
		} else {
			// filings creep along the field instead of accelerating
			b.Vel = r2.Scale(math.Exp(-4*dt), b.Vel)
			if m.nearPole(b.Pos) {
				*b = m.spawnFiling()
			}
		}
		bounds.Wrap(b, area)
		if !b.IsValid() {
			if b.Tag == TagFiling {
				*b = m.spawnFiling()
			} else {
				b.Pos = m.vp.Center()
				b.Vel = dynamo.V(m.InitialSpeed, 0)
			}
		}
	}
	m.time += dt
}

// alternating gives odd-indexed particles the opposite charge so both
// rotation senses are visible.
func alternating(i int, q float64) float64 {
	if i%2 == 1 {
		return -q
	}
	return q
}

func (m *Magnetic) nearPole(p dynamo.Vec) bool {
	for _, s := range m.poles {
		if r2.Norm(r2.Sub(p, s.Pos)) < magneticMinR {
			return true
		}
	}
	return false
}

// Cyclotron returns the radius and period of a charged particle moving at
// speed v in the uniform field. Both are zero without a field.
func (m *Magnetic) Cyclotron(v float64) (radius, period float64) {
	qb := math.Abs(m.Charge * m.Field)
	if qb == 0 {
		return 0, 0
	}
	return m.ParticleMass * v / qb, 2 * math.Pi * m.ParticleMass / qb
}

func (m *Magnetic) Stats() dynamo.Stats {
	ke, n, vsum := 0.0, 0, 0.0
	for i := range m.particles {
		if m.particles[i].Tag != TagCharged {
			continue
		}
		ke += m.particles[i].KineticEnergy()
		vsum += m.particles[i].Speed()
		n++
	}
	s := dynamo.Stats{
		"field":          m.Field,
		"particles":      float64(n),
		"kinetic_energy": ke,
	}
	v := m.InitialSpeed
	if n > 0 {
		v = vsum / float64(n)
	}
	s["cyclotron_radius"], s["cyclotron_period"] = m.Cyclotron(v)
	return s
}

func (m *Magnetic) Snapshot() dynamo.Snapshot {
	snap := m.snapshot(dynamo.KindMagnetic)
	snap.Bodies = dynamo.CloneBodies(m.particles)
	snap.Sources = dynamo.CloneSources(m.poles)
	if len(m.poles) == 2 {
		snap.Lines = []dynamo.Segment{{A: m.poles[0].Pos, B: m.poles[1].Pos}}
	}
	return snap
}

func (m *Magnetic) GetParams() map[string]float64 {
	return map[string]float64{
		"field":         m.Field,
		"charge":        m.Charge,
		"mass":          m.ParticleMass,
		"initial_speed": m.InitialSpeed,
		"particles":     float64(m.ParticleCount),
		"filings":       float64(m.FilingCount),
		"pole_strength": m.PoleStrength,
		"speed":         m.speed,
	}
}

func (m *Magnetic) SetParam(name string, value float64) error {
	k := dynamo.KindMagnetic
	switch name {
	case "field":
		m.Field = value
	case "charge":
		m.Charge = value
		for i := range m.particles {
			if m.particles[i].Tag == TagCharged {
				m.particles[i].Charge = alternating(i, value)
			}
		}
	case "mass":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		m.ParticleMass = value
		for i := range m.particles {
			if m.particles[i].Tag == TagCharged {
				m.particles[i].Mass = value
			}
		}
	case "initial_speed":
		m.InitialSpeed = math.Max(0, value)
		m.Reset()
	case "particles":
		m.ParticleCount = int(dynamo.Clamp(value, 0, 50))
		m.Reset()
	case "filings":
		m.FilingCount = int(dynamo.Clamp(value, 0, 200))
		m.Reset()
	case "pole_strength":
		m.PoleStrength = math.Max(0, value)
		m.placePoles()
	case "speed":
		m.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
