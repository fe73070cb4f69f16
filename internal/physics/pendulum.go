package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81

	pendulumPixelsPerMeter = 150.0
	pendulumTimeScale      = 1.0
	doublePendulumStep     = 5e-4 // s
)

const (
	PendulumSimple = iota
	PendulumDouble
)

type Pendulum struct {
	base

	Mode      int
	M1, M2    float64
	L1, L2    float64
	Gravity   float64
	Damping   float64
	Amplitude float64 // initial angle in degrees

	theta1, omega1 float64
	theta2, omega2 float64
}

func NewPendulum(vp *dynamo.Viewport, seed int64) *Pendulum {
	p := &Pendulum{
		base:      newBase(vp, seed),
		M1:        DefaultMass,
		M2:        DefaultMass,
		L1:        DefaultLength,
		L2:        DefaultLength,
		Gravity:   DefaultGravity,
		Damping:   0.05,
		Amplitude: 30,
	}
	p.Reset()
	return p
}

func (p *Pendulum) Kind() dynamo.Kind { return dynamo.KindPendulum }

func (p *Pendulum) Reset() {
	p.reseed()
	p.theta1 = p.Amplitude * math.Pi / 180
	p.omega1 = 0
	p.theta2 = p.theta1
	p.omega2 = 0
}

func (p *Pendulum) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, pendulumTimeScale, p.speed)
	if dt == 0 {
		return
	}

	if p.Mode == PendulumDouble {
		n := int(math.Ceil(dt / doublePendulumStep))
		h := dt / float64(n)
		for i := 0; i < n; i++ {
			a1, a2 := p.doubleAccel()
			p.theta1, p.omega1 = integrators.StepAngular(p.theta1, p.omega1, a1, h)
			p.theta2, p.omega2 = integrators.StepAngular(p.theta2, p.omega2, a2, h)
		}
	} else {
		alpha := -(p.Gravity/p.L1)*math.Sin(p.theta1) - p.Damping*p.omega1
		p.theta1, p.omega1 = integrators.StepAngular(p.theta1, p.omega1, alpha, dt)
	}
	p.time += dt

	if !finite(p.theta1, p.omega1, p.theta2, p.omega2) {
		p.Reset()
	}
}

func (p *Pendulum) doubleAccel() (float64, float64) {
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity
	t1, t2, w1, w2 := p.theta1, p.theta2, p.omega1, p.omega2

	delta := t2 - t1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (m2*l1*w1*w1*sinD*cosD +
		m2*g*math.Sin(t2)*cosD +
		m2*l2*w2*w2*sinD -
		(m1+m2)*g*math.Sin(t1)) / den1

	alpha2 := (-m2*l2*w2*w2*sinD*cosD +
		(m1+m2)*g*math.Sin(t1)*cosD -
		(m1+m2)*l1*w1*w1*sinD -
		(m1+m2)*g*math.Sin(t2)) / den2

	return alpha1 - p.Damping*w1, alpha2 - p.Damping*w2
}

// Energy returns kinetic and potential energy, with the potential zero at
// the resting position.
func (p *Pendulum) Energy() (ke, pe float64) {
	m1, l1, g := p.M1, p.L1, p.Gravity
	if p.Mode != PendulumDouble {
		v := l1 * p.omega1
		return 0.5 * m1 * v * v, m1 * g * l1 * (1 - math.Cos(p.theta1))
	}

	m2, l2 := p.M2, p.L2
	v1sq := l1 * l1 * p.omega1 * p.omega1
	v2sq := v1sq + l2*l2*p.omega2*p.omega2 +
		2*l1*l2*p.omega1*p.omega2*math.Cos(p.theta1-p.theta2)
	ke = 0.5*m1*v1sq + 0.5*m2*v2sq

	y1 := l1 * (1 - math.Cos(p.theta1))
	y2 := y1 + l2*(1-math.Cos(p.theta2))
	pe = m1*g*y1 + m2*g*y2
	return ke, pe
}

// Period uses the small-angle period with the first two terms of the
// large-amplitude series.
func (p *Pendulum) Period() float64 {
	if p.Gravity <= 0 || p.L1 <= 0 {
		return 0
	}
	t0 := 2 * math.Pi * math.Sqrt(p.L1/p.Gravity)
	a := p.Amplitude * math.Pi / 180
	return t0 * (1 + a*a/16 + 11*math.Pow(a, 4)/3072)
}

func (p *Pendulum) Stats() dynamo.Stats {
	ke, pe := p.Energy()
	s := dynamo.Stats{
		"angle":            p.theta1 * 180 / math.Pi,
		"angular_velocity": p.omega1,
		"period":           p.Period(),
		"kinetic_energy":   ke,
		"potential_energy": pe,
		"total_energy":     ke + pe,
	}
	if p.Mode == PendulumDouble {
		s["angle2"] = p.theta2 * 180 / math.Pi
		s["angular_velocity2"] = p.omega2
	}
	return s
}

func (p *Pendulum) pivot() dynamo.Vec {
	return dynamo.V(p.vp.Width/2, p.vp.Height*0.2)
}

func (p *Pendulum) Snapshot() dynamo.Snapshot {
	snap := p.snapshot(dynamo.KindPendulum)
	pivot := p.pivot()

	l1 := p.L1 * pendulumPixelsPerMeter
	bob1 := dynamo.Body{
		Pos:    r2.Add(pivot, dynamo.V(l1*math.Sin(p.theta1), l1*math.Cos(p.theta1))),
		Vel:    dynamo.V(l1*p.omega1*math.Cos(p.theta1), -l1*p.omega1*math.Sin(p.theta1)),
		Mass:   p.M1,
		Radius: 10 + 4*math.Sqrt(p.M1),
	}
	snap.Bodies = []dynamo.Body{bob1}
	snap.Sources = []dynamo.Source{{Pos: pivot}}
	snap.Lines = []dynamo.Segment{{A: pivot, B: bob1.Pos}}

	if p.Mode == PendulumDouble {
		l2 := p.L2 * pendulumPixelsPerMeter
		bob2 := dynamo.Body{
			Pos:    r2.Add(bob1.Pos, dynamo.V(l2*math.Sin(p.theta2), l2*math.Cos(p.theta2))),
			Vel:    r2.Add(bob1.Vel, dynamo.V(l2*p.omega2*math.Cos(p.theta2), -l2*p.omega2*math.Sin(p.theta2))),
			Mass:   p.M2,
			Radius: 10 + 4*math.Sqrt(p.M2),
			Tag:    1,
		}
		snap.Bodies = append(snap.Bodies, bob2)
		snap.Lines = append(snap.Lines, dynamo.Segment{A: bob1.Pos, B: bob2.Pos})
	}
	return snap
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mode":      float64(p.Mode),
		"mass":      p.M1,
		"mass2":     p.M2,
		"length":    p.L1,
		"length2":   p.L2,
		"gravity":   p.Gravity,
		"damping":   p.Damping,
		"amplitude": p.Amplitude,
		"speed":     p.speed,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	k := dynamo.KindPendulum
	switch name {
	case "mode":
		if value != PendulumSimple && value != PendulumDouble {
			return dynamo.OutOfBounds(k, name, value)
		}
		p.Mode = int(value)
		p.Reset()
	case "mass", "mass2", "length", "length2":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		switch name {
		case "mass":
			p.M1 = value
		case "mass2":
			p.M2 = value
		case "length":
			p.L1 = value
		case "length2":
			p.L2 = value
		}
	case "gravity":
		p.Gravity = math.Max(0, value)
	case "damping":
		p.Damping = math.Max(0, value)
	case "amplitude":
		p.Amplitude = dynamo.Clamp(value, -179, 179)
		p.Reset()
	case "speed":
		p.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
