package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/field"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	electricTimeScale = 1.0
	electricMinR      = 15.0
	maxCharges        = 12
	maxTracers        = 200
	linesPerCharge    = 8
	fieldLineStep     = 6.0
	fieldLineSteps    = 150
)

// Electric moves positive test charges through the field of fixed point
// charges. Tracers that leave the viewport, reach a charge or go non-finite
// are respawned at a random position.
type Electric struct {
	base

	K            float64
	TracerCount  int
	TracerCharge float64
	MaxVelocity  float64
	FieldLines   bool

	charges []dynamo.Source
	tracers []dynamo.Body
	eval    *field.Evaluator
	integ   *integrators.SemiImplicitEuler
}

func NewElectric(vp *dynamo.Viewport, seed int64) *Electric {
	e := &Electric{
		base:         newBase(vp, seed),
		K:            4e5,
		TracerCount:  40,
		TracerCharge: 1,
		MaxVelocity:  250,
		FieldLines:   true,
		integ:        integrators.NewSemiImplicitEuler(),
	}
	e.eval = field.NewCoulomb(e.K, electricMinR)
	e.Reset()
	return e
}

func (e *Electric) Kind() dynamo.Kind { return dynamo.KindElectric }

// Reset restores the default dipole, dropping hand-placed charges, and
// rebuilds the tracers.
func (e *Electric) Reset() {
	e.reseed()
	c := e.vp.Center()
	off := e.vp.Width / 4
	e.charges = []dynamo.Source{
		{Pos: r2.Sub(c, dynamo.V(off, 0)), Sign: 1, Magnitude: 1},
		{Pos: r2.Add(c, dynamo.V(off, 0)), Sign: -1, Magnitude: 1},
	}
	e.spawnTracers()
}

func (e *Electric) spawnTracers() {
	e.tracers = make([]dynamo.Body, e.TracerCount)
	for i := range e.tracers {
		e.tracers[i] = e.spawnTracer()
	}
}

func (e *Electric) spawnTracer() dynamo.Body {
	var p dynamo.Vec
	for attempt := 0; attempt < 20; attempt++ {
		p = e.randomIn(dynamo.Vec{}, dynamo.V(e.vp.Width, e.vp.Height))
		if !e.nearCharge(p, 2*electricMinR) {
			break
		}
	}
	return dynamo.Body{Pos: p, Mass: 1, Radius: 2, Charge: e.TracerCharge}
}

func (e *Electric) nearCharge(p dynamo.Vec, r float64) bool {
	for _, c := range e.charges {
		if r2.Norm(r2.Sub(p, c.Pos)) < r {
			return true
		}
	}
	return false
}

// AddCharge places a new source. Magnitudes are clamped to [0.1, 10] and
// the number of charges is capped.
func (e *Electric) AddCharge(x, y, sign, magnitude float64) bool {
	if len(e.charges) >= maxCharges {
		return false
	}
	s := 1.0
	if sign < 0 {
		s = -1
	}
	e.charges = append(e.charges, dynamo.Source{
		Pos:       dynamo.V(x, y),
		Sign:      s,
		Magnitude: dynamo.Clamp(magnitude, 0.1, 10),
	})
	return true
}

func (e *Electric) ClearCharges() {
	e.charges = e.charges[:0]
}

func (e *Electric) Charges() []dynamo.Source { return dynamo.CloneSources(e.charges) }

func (e *Electric) FieldAt(p dynamo.Vec) dynamo.Vec { return e.eval.At(p, e.charges) }

// FieldGrid samples the field for arrow rendering.
func (e *Electric) FieldGrid(spacing float64) []field.Sample {
	return e.eval.Grid(e.vp.Width, e.vp.Height, spacing, e.charges)
}

func (e *Electric) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, electricTimeScale, e.speed)
	if dt == 0 {
		return
	}

	e.integ.Advance(e.tracers, func(_ int, b *dynamo.Body) dynamo.Vec {
		return r2.Scale(b.Charge/b.Mass, e.eval.At(b.Pos, e.charges))
	}, dt)

	for i := range e.tracers {
		b := &e.tracers[i]
		if v := b.Speed(); v > e.MaxVelocity {
			b.Vel = r2.Scale(e.MaxVelocity/v, b.Vel)
		}
		out := b.Pos.X < 0 || b.Pos.Y < 0 || b.Pos.X > e.vp.Width || b.Pos.Y > e.vp.Height
		if !b.IsValid() || out || e.nearCharge(b.Pos, electricMinR) {
			*b = e.spawnTracer()
		}
	}
	e.time += dt
}

func (e *Electric) Stats() dynamo.Stats {
	net := 0.0
	for _, c := range e.charges {
		net += c.Sign * c.Magnitude
	}
	center := e.vp.Center()
	return dynamo.Stats{
		"charges":          float64(len(e.charges)),
		"net_charge":       net,
		"field_center":     r2.Norm(e.eval.At(center, e.charges)),
		"potential_center": e.eval.Potential(center, e.charges),
		"tracers":          float64(len(e.tracers)),
	}
}

func (e *Electric) fieldLines() []dynamo.Segment {
	var segs []dynamo.Segment
	for _, c := range e.charges {
		if c.Sign <= 0 {
			continue
		}
		for k := 0; k < linesPerCharge; k++ {
			a := 2 * math.Pi * float64(k) / linesPerCharge
			start := r2.Add(c.Pos, r2.Scale(electricMinR+1, dynamo.V(math.Cos(a), math.Sin(a))))
			pts := e.eval.FieldLine(start, e.charges, fieldLineStep, fieldLineSteps, e.vp.Width, e.vp.Height)
			for i := 1; i < len(pts); i++ {
				segs = append(segs, dynamo.Segment{A: pts[i-1], B: pts[i]})
			}
		}
	}
	return segs
}

func (e *Electric) Snapshot() dynamo.Snapshot {
	snap := e.snapshot(dynamo.KindElectric)
	snap.Bodies = dynamo.CloneBodies(e.tracers)
	snap.Sources = dynamo.CloneSources(e.charges)
	if e.FieldLines {
		snap.Lines = e.fieldLines()
	}
	return snap
}

func (e *Electric) GetParams() map[string]float64 {
	return map[string]float64{
		"k":             e.K,
		"tracers":       float64(e.TracerCount),
		"tracer_charge": e.TracerCharge,
		"max_velocity":  e.MaxVelocity,
		"field_lines":   boolValue(e.FieldLines),
		"speed":         e.speed,
	}
}

func (e *Electric) SetParam(name string, value float64) error {
	k := dynamo.KindElectric
	switch name {
	case "k":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		e.K = value
		e.eval.K = value
	case "tracers":
		e.TracerCount = int(dynamo.Clamp(value, 0, maxTracers))
		e.spawnTracers()
	case "tracer_charge":
		e.TracerCharge = value
		for i := range e.tracers {
			e.tracers[i].Charge = value
		}
	case "max_velocity":
		e.MaxVelocity = math.Max(1, value)
	case "field_lines":
		e.FieldLines = boolParam(value)
	case "speed":
		e.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
