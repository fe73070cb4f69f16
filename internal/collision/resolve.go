package collision

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Contact describes two overlapping bodies.
type Contact struct {
	Normal      dynamo.Vec // unit vector from a to b
	Distance    float64
	Penetration float64
}

func invMass(m float64) float64 {
	if m <= 0 {
		return 0
	}
	return 1 / m
}

// Overlap reports whether two disks intersect.
func Overlap(a, b *dynamo.Body) (Contact, bool) {
	return overlapWithin(a, b, a.Radius+b.Radius)
}

func overlapWithin(a, b *dynamo.Body, threshold float64) (Contact, bool) {
	d := r2.Sub(b.Pos, a.Pos)
	dist := r2.Norm(d)
	if dist >= threshold {
		return Contact{}, false
	}

	n := dynamo.V(1, 0)
	if dist > 1e-12 {
		n = r2.Scale(1/dist, d)
	}
	return Contact{Normal: n, Distance: dist, Penetration: threshold - dist}, true
}

// ResolvePair applies the restitution impulse and separates a and b. It
// returns true when an impulse was exchanged; overlapping pairs that are
// already separating are only pushed apart.
func ResolvePair(a, b *dynamo.Body, e float64) bool {
	c, ok := Overlap(a, b)
	if !ok {
		return false
	}
	return resolve(a, b, c, e)
}

// ResolvePoints is the fixed-threshold variant for point particles that
// carry no radius.
func ResolvePoints(a, b *dynamo.Body, threshold, e float64) bool {
	c, ok := overlapWithin(a, b, threshold)
	if !ok {
		return false
	}
	return resolve(a, b, c, e)
}

func resolve(a, b *dynamo.Body, c Contact, e float64) bool {
	ia, ib := invMass(a.Mass), invMass(b.Mass)
	if ia+ib == 0 {
		return false
	}

	separate(a, b, c, ia, ib)

	relVel := r2.Dot(r2.Sub(b.Vel, a.Vel), c.Normal)
	if relVel > 0 {
		return false
	}

	j := -(1 + e) * relVel / (ia + ib)
	a.Vel = r2.Sub(a.Vel, r2.Scale(j*ia, c.Normal))
	b.Vel = r2.Add(b.Vel, r2.Scale(j*ib, c.Normal))
	return true
}

// separate splits the overlap in half between the two bodies. An immovable
// body hands its half to the other one.
func separate(a, b *dynamo.Body, c Contact, ia, ib float64) {
	half := c.Penetration / 2
	da, db := half, half
	switch {
	case ia == 0:
		da, db = 0, c.Penetration
	case ib == 0:
		da, db = c.Penetration, 0
	}
	a.Pos = r2.Sub(a.Pos, r2.Scale(da, c.Normal))
	b.Pos = r2.Add(b.Pos, r2.Scale(db, c.Normal))
}

type Mode int

const (
	Elastic Mode = iota
	Inelastic
	Mixed
)

func (m Mode) String() string {
	switch m {
	case Elastic:
		return "elastic"
	case Inelastic:
		return "inelastic"
	case Mixed:
		return "mixed"
	}
	return "unknown"
}

const (
	DefaultInelasticRestitution = 0.3
	DefaultMixedMin             = 0.3
	DefaultMixedMax             = 1.0
)

// Resolver sweeps a body slice and picks the effective restitution per
// collision according to Mode.
type Resolver struct {
	Mode                 Mode
	Restitution          float64
	InelasticRestitution float64
	MixedMin, MixedMax   float64
	// Threshold, when positive, switches to point-particle contacts.
	Threshold float64

	rng *rand.Rand
}

func NewResolver(mode Mode, restitution float64, rng *rand.Rand) *Resolver {
	return &Resolver{
		Mode:                 mode,
		Restitution:          restitution,
		InelasticRestitution: DefaultInelasticRestitution,
		MixedMin:             DefaultMixedMin,
		MixedMax:             DefaultMixedMax,
		rng:                  rng,
	}
}

// SetRand swaps the random source, used by scenes when they reseed on reset.
func (r *Resolver) SetRand(rng *rand.Rand) { r.rng = rng }

// Effective returns the restitution to use for the next collision.
func (r *Resolver) Effective() float64 {
	switch r.Mode {
	case Inelastic:
		return r.InelasticRestitution
	case Mixed:
		lo, hi := math.Min(r.MixedMin, r.MixedMax), math.Max(r.MixedMin, r.MixedMax)
		if r.rng == nil {
			return (lo + hi) / 2
		}
		return lo + r.rng.Float64()*(hi-lo)
	}
	return r.Restitution
}

// ResolveAll resolves every unordered pair once and returns the number of
// impulses applied.
func (r *Resolver) ResolveAll(bodies []dynamo.Body) int {
	return r.resolveAll(bodies, nil)
}

// ResolveAllFunc is ResolveAll with a callback for each impulse, used by
// scenes that count collisions per species.
func (r *Resolver) ResolveAllFunc(bodies []dynamo.Body, hit func(i, j int)) int {
	return r.resolveAll(bodies, hit)
}

func (r *Resolver) resolveAll(bodies []dynamo.Body, hit func(i, j int)) int {
	count := 0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := &bodies[i], &bodies[j]

			var c Contact
			var ok bool
			if r.Threshold > 0 {
				c, ok = overlapWithin(a, b, r.Threshold)
			} else {
				c, ok = Overlap(a, b)
			}
			if !ok {
				continue
			}

			if resolve(a, b, c, r.Effective()) {
				count++
				if hit != nil {
					hit(i, j)
				}
			}
		}
	}
	return count
}

// TotalMomentum sums m·v over bodies.
func TotalMomentum(bodies []dynamo.Body) dynamo.Vec {
	var p dynamo.Vec
	for i := range bodies {
		p = r2.Add(p, bodies[i].Momentum())
	}
	return p
}

// TotalKineticEnergy sums ½mv² over bodies.
func TotalKineticEnergy(bodies []dynamo.Body) float64 {
	ke := 0.0
	for i := range bodies {
		ke += bodies[i].KineticEnergy()
	}
	return ke
}
