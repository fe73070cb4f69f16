package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/collision"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	collisionTimeScale = 1.0
	maxBalls           = 50
	placementAttempts  = 200
)

// Collisions bounces disks around a closed box.
type Collisions struct {
	base

	Count       int
	Mode        collision.Mode
	Restitution float64
	Gravity     float64 // px/s²
	Drag        float64 // 1/s
	MaxVelocity float64 // px/s at reset

	balls      []dynamo.Body
	resolver   *collision.Resolver
	integ      *integrators.SemiImplicitEuler
	collisions int
}

func NewCollisions(vp *dynamo.Viewport, seed int64) *Collisions {
	c := &Collisions{
		base:        newBase(vp, seed),
		Count:       12,
		Mode:        collision.Elastic,
		Restitution: 1.0,
		MaxVelocity: 150,
		integ:       integrators.NewSemiImplicitEuler(),
	}
	c.resolver = collision.NewResolver(c.Mode, c.Restitution, c.rng)
	c.Reset()
	return c
}

func (c *Collisions) Kind() dynamo.Kind { return dynamo.KindCollisions }

func (c *Collisions) Reset() {
	c.reseed()
	c.resolver.SetRand(c.rng)
	c.collisions = 0

	area := bounds.FromViewport(c.vp, 0)
	c.balls = make([]dynamo.Body, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		radius := 8 + c.rng.Float64()*12
		b := dynamo.Body{
			Radius: radius,
			Mass:   radius * radius / 100,
			Vel: dynamo.V(
				(c.rng.Float64()*2-1)*c.MaxVelocity,
				(c.rng.Float64()*2-1)*c.MaxVelocity,
			),
			Tag: i,
		}
		b.Pos = c.place(area, radius)
		c.balls = append(c.balls, b)
	}
}

// place finds a spot that does not overlap existing balls, giving up after
// placementAttempts tries and letting the resolver separate them.
func (c *Collisions) place(area bounds.Rect, radius float64) dynamo.Vec {
	lo := r2.Add(area.Min, dynamo.V(radius, radius))
	hi := r2.Sub(area.Max, dynamo.V(radius, radius))
	var p dynamo.Vec
	for attempt := 0; attempt < placementAttempts; attempt++ {
		p = c.randomIn(lo, hi)
		free := true
		for i := range c.balls {
			if r2.Norm(r2.Sub(p, c.balls[i].Pos)) < radius+c.balls[i].Radius {
				free = false
				break
			}
		}
		if free {
			return p
		}
	}
	return p
}

func (c *Collisions) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, collisionTimeScale, c.speed)
	if dt == 0 {
		return
	}

	gravity := dynamo.V(0, c.Gravity)
	c.integ.Advance(c.balls, func(_ int, b *dynamo.Body) dynamo.Vec {
		return r2.Sub(gravity, r2.Scale(c.Drag, b.Vel))
	}, dt)

	c.collisions += c.resolver.ResolveAll(c.balls)

	area := bounds.FromViewport(c.vp, 0)
	for i := range c.balls {
		b := &c.balls[i]
		bounds.Reflect(b, area, c.resolver.Effective())
		if !b.IsValid() {
			b.Pos = c.place(area, b.Radius)
			b.Vel = dynamo.Vec{}
		}
	}
	c.time += dt
}

func (c *Collisions) Bodies() []dynamo.Body { return dynamo.CloneBodies(c.balls) }

func (c *Collisions) Stats() dynamo.Stats {
	p := collision.TotalMomentum(c.balls)
	return dynamo.Stats{
		"bodies":         float64(len(c.balls)),
		"momentum_x":     p.X,
		"momentum_y":     p.Y,
		"momentum":       r2.Norm(p),
		"kinetic_energy": collision.TotalKineticEnergy(c.balls),
		"collisions":     float64(c.collisions),
	}
}

func (c *Collisions) Snapshot() dynamo.Snapshot {
	snap := c.snapshot(dynamo.KindCollisions)
	snap.Bodies = dynamo.CloneBodies(c.balls)
	return snap
}

func (c *Collisions) GetParams() map[string]float64 {
	return map[string]float64{
		"count":       float64(c.Count),
		"mode":        float64(c.Mode),
		"restitution": c.Restitution,
		"gravity":     c.Gravity,
		"drag":        c.Drag,
		"inelastic_e": c.resolver.InelasticRestitution,
		"mixed_min":   c.resolver.MixedMin,
		"mixed_max":   c.resolver.MixedMax,
		"speed":       c.speed,
	}
}

func (c *Collisions) SetParam(name string, value float64) error {
	k := dynamo.KindCollisions
	switch name {
	case "count":
		c.Count = int(dynamo.Clamp(value, 1, maxBalls))
		c.Reset()
	case "mode":
		m := collision.Mode(value)
		if m != collision.Elastic && m != collision.Inelastic && m != collision.Mixed {
			return dynamo.OutOfBounds(k, name, value)
		}
		c.Mode = m
		c.resolver.Mode = m
	case "restitution":
		c.Restitution = dynamo.Clamp(value, 0, 1)
		c.resolver.Restitution = c.Restitution
	case "gravity":
		c.Gravity = value
	case "drag":
		c.Drag = math.Max(0, value)
	case "inelastic_e":
		c.resolver.InelasticRestitution = dynamo.Clamp(value, 0, 1)
	case "mixed_min":
		c.resolver.MixedMin = dynamo.Clamp(value, 0, 1)
	case "mixed_max":
		c.resolver.MixedMax = dynamo.Clamp(value, 0, 1)
	case "speed":
		c.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
