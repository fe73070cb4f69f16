package physics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/bounds"
	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	diffusionTimeScale = 1.0
	diffusionBins      = 10
	diffusionDrag      = 20.0 // 1/s
	maxDiffusing       = 400

	TagSpeciesA = 0
	TagSpeciesB = 1
)

// Diffusion starts two species on opposite halves of a box and lets random
// thermal kicks mix them. While the partition is up neither species can
// cross the middle.
type Diffusion struct {
	base

	PerSpecies  int
	Coefficient float64 // px²/s
	Partition   bool

	particles []dynamo.Body
	integ     *integrators.SemiImplicitEuler
}

func NewDiffusion(vp *dynamo.Viewport, seed int64) *Diffusion {
	d := &Diffusion{
		base:        newBase(vp, seed),
		PerSpecies:  100,
		Coefficient: 400,
		integ:       integrators.NewSemiImplicitEuler(),
	}
	d.Reset()
	return d
}

func (d *Diffusion) Kind() dynamo.Kind { return dynamo.KindDiffusion }

func (d *Diffusion) Reset() {
	d.reseed()
	d.particles = make([]dynamo.Body, 0, 2*d.PerSpecies)
	for i := 0; i < d.PerSpecies; i++ {
		d.particles = append(d.particles, d.spawn(TagSpeciesA))
	}
	for i := 0; i < d.PerSpecies; i++ {
		d.particles = append(d.particles, d.spawn(TagSpeciesB))
	}
}

// spawn places a particle of the given species on its home half.
func (d *Diffusion) spawn(tag int) dynamo.Body {
	mid := d.vp.Width / 2
	lo, hi := dynamo.V(2, 2), dynamo.V(mid-2, d.vp.Height-2)
	if tag == TagSpeciesB {
		lo, hi = dynamo.V(mid+2, 2), dynamo.V(d.vp.Width-2, d.vp.Height-2)
	}
	return dynamo.Body{Pos: d.randomIn(lo, hi), Mass: 1, Radius: 2, Tag: tag}
}

func (d *Diffusion) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, diffusionTimeScale, d.speed)
	if dt == 0 {
		return
	}

	n, h := substeps(dt, diffusionDrag)
	area := bounds.FromViewport(d.vp, 0)
	mid := d.vp.Width / 2
	for s := 0; s < n; s++ {
		d.langevin(h)
		for i := range d.particles {
			b := &d.particles[i]
			if d.Partition {
				blockPartition(b, mid, h)
			}
			bounds.Reflect(b, area, 1)
			if !b.IsValid() {
				*b = d.spawn(b.Tag)
			}
		}
	}
	d.time += dt
}

// langevin applies strong drag plus a random force whose variance gives
// the requested diffusion coefficient.
func (d *Diffusion) langevin(h float64) {
	kick := diffusionDrag * math.Sqrt(2*d.Coefficient/h)
	d.integ.Advance(d.particles, func(_ int, b *dynamo.Body) dynamo.Vec {
		noise := r2.Scale(kick, dynamo.V(d.rng.NormFloat64(), d.rng.NormFloat64()))
		return r2.Sub(noise, r2.Scale(diffusionDrag, b.Vel))
	}, h)
}

// blockPartition stops b from crossing x = mid during the last step of
// length h.
func blockPartition(b *dynamo.Body, mid, h float64) {
	prev := b.Pos.X - b.Vel.X*h
	switch {
	case prev < mid && b.Pos.X+b.Radius > mid:
		b.Pos.X = mid - b.Radius
		if b.Vel.X > 0 {
			b.Vel.X = -b.Vel.X
		}
	case prev >= mid && b.Pos.X-b.Radius < mid:
		b.Pos.X = mid + b.Radius
		if b.Vel.X < 0 {
			b.Vel.X = -b.Vel.X
		}
	}
}

// LeftFraction returns the share of each species on the left half.
func (d *Diffusion) LeftFraction() (a, b float64) {
	mid := d.vp.Width / 2
	var na, nb, la, lb float64
	for i := range d.particles {
		p := &d.particles[i]
		left := p.Pos.X < mid
		if p.Tag == TagSpeciesA {
			na++
			if left {
				la++
			}
		} else {
			nb++
			if left {
				lb++
			}
		}
	}
	if na > 0 {
		a = la / na
	}
	if nb > 0 {
		b = lb / nb
	}
	return a, b
}

// Mixing is 0 while the species are fully separated and 1 once both are
// evenly spread over the box.
func (d *Diffusion) Mixing() float64 {
	a, b := d.LeftFraction()
	return dynamo.Clamp(1-math.Abs(a-b), 0, 1)
}

// ConcentrationVariance histograms species A along x and returns the
// variance of the per-bin counts, normalized by the mean count.
func (d *Diffusion) ConcentrationVariance() float64 {
	xs := make([]float64, 0, d.PerSpecies)
	for i := range d.particles {
		if d.particles[i].Tag == TagSpeciesA {
			xs = append(xs, dynamo.Clamp(d.particles[i].Pos.X, 0, math.Nextafter(d.vp.Width, 0)))
		}
	}
	if len(xs) < 2 || d.vp.Width <= 0 {
		return 0
	}
	sort.Float64s(xs)

	dividers := binEdges(diffusionBins, d.vp.Width)
	counts := stat.Histogram(nil, dividers, xs, nil)

	mean := stat.Mean(counts, nil)
	if mean == 0 {
		return 0
	}
	return stat.Variance(counts, nil) / mean
}

func (d *Diffusion) Stats() dynamo.Stats {
	a, b := d.LeftFraction()
	return dynamo.Stats{
		"left_fraction_a":        a,
		"left_fraction_b":        b,
		"mixing":                 d.Mixing(),
		"concentration_variance": d.ConcentrationVariance(),
		"partition":              boolValue(d.Partition),
	}
}

func (d *Diffusion) Snapshot() dynamo.Snapshot {
	snap := d.snapshot(dynamo.KindDiffusion)
	snap.Bodies = dynamo.CloneBodies(d.particles)
	if d.Partition {
		mid := d.vp.Width / 2
		snap.Lines = []dynamo.Segment{{A: dynamo.V(mid, 0), B: dynamo.V(mid, d.vp.Height)}}
	}
	return snap
}

func (d *Diffusion) GetParams() map[string]float64 {
	return map[string]float64{
		"particles":   float64(d.PerSpecies),
		"coefficient": d.Coefficient,
		"partition":   boolValue(d.Partition),
		"speed":       d.speed,
	}
}

func (d *Diffusion) SetParam(name string, value float64) error {
	k := dynamo.KindDiffusion
	switch name {
	case "particles":
		d.PerSpecies = int(dynamo.Clamp(value, 1, maxDiffusing))
		d.Reset()
	case "coefficient":
		if value < 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		d.Coefficient = value
	case "partition":
		d.Partition = boolParam(value)
	case "speed":
		d.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
