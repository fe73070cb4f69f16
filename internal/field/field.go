// Package field evaluates vector fields produced by point sources.
package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
)

const (
	Coulomb = 2.0
	Dipole  = 3.0
)

// Evaluator sums point-source contributions
//
//	E(p) = Σ sign·K·mag / r^Falloff · unit(source→p)
//
// with r clamped to MinR so a query on top of a source stays finite.
type Evaluator struct {
	K       float64
	MinR    float64
	Falloff float64
}

func NewCoulomb(k, minR float64) *Evaluator {
	return &Evaluator{K: k, MinR: minR, Falloff: Coulomb}
}

func (e *Evaluator) contribution(p dynamo.Vec, s dynamo.Source) dynamo.Vec {
	d := r2.Sub(p, s.Pos)
	r := r2.Norm(d)
	if r < 1e-12 {
		return dynamo.Vec{}
	}
	dir := r2.Scale(1/r, d)
	if r < e.MinR {
		r = e.MinR
	}
	return r2.Scale(s.Sign*e.K*s.Magnitude/math.Pow(r, e.Falloff), dir)
}

// At returns the field at p.
func (e *Evaluator) At(p dynamo.Vec, sources []dynamo.Source) dynamo.Vec {
	var f dynamo.Vec
	for _, s := range sources {
		f = r2.Add(f, e.contribution(p, s))
	}
	return f
}

// Potential returns the scalar potential at p, Σ sign·K·mag / r^(Falloff-1).
func (e *Evaluator) Potential(p dynamo.Vec, sources []dynamo.Source) float64 {
	v := 0.0
	for _, s := range sources {
		r := math.Max(r2.Norm(r2.Sub(p, s.Pos)), e.MinR)
		v += s.Sign * e.K * s.Magnitude / math.Pow(r, e.Falloff-1)
	}
	return v
}

type Sample struct {
	Pos   dynamo.Vec
	Field dynamo.Vec
}

// Grid samples the field on a regular lattice starting half a spacing in
// from the top-left corner.
func (e *Evaluator) Grid(w, h, spacing float64, sources []dynamo.Source) []Sample {
	if spacing <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	cols := int(w / spacing)
	rows := int(h / spacing)
	samples := make([]Sample, 0, cols*rows)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			p := dynamo.V((float64(i)+0.5)*spacing, (float64(j)+0.5)*spacing)
			samples = append(samples, Sample{Pos: p, Field: e.At(p, sources)})
		}
	}
	return samples
}

// Lorentz returns the in-plane force on charge q moving with v through a
// field Bz pointing out of the plane: F = q·(v × Bz ẑ) = q·(vy·Bz, -vx·Bz).
func Lorentz(q float64, v dynamo.Vec, bz float64) dynamo.Vec {
	return dynamo.V(q*v.Y*bz, -q*v.X*bz)
}

// FieldLine traces a line from start by following the unit field direction
// for at most steps of length ds. Tracing stops when the line leaves
// [0,w]x[0,h] or reaches a source.
func (e *Evaluator) FieldLine(start dynamo.Vec, sources []dynamo.Source, ds float64, steps int, w, h float64) []dynamo.Vec {
	pts := []dynamo.Vec{start}
	p := start
	for i := 0; i < steps; i++ {
		f := e.At(p, sources)
		n := r2.Norm(f)
		if n < 1e-12 || !dynamo.Finite(f) {
			break
		}
		p = r2.Add(p, r2.Scale(ds/n, f))
		if p.X < 0 || p.Y < 0 || p.X > w || p.Y > h {
			break
		}
		pts = append(pts, p)
		if nearSource(p, sources, e.MinR) {
			break
		}
	}
	return pts
}

func nearSource(p dynamo.Vec, sources []dynamo.Source, r float64) bool {
	for _, s := range sources {
		if r2.Norm(r2.Sub(p, s.Pos)) < r {
			return true
		}
	}
	return false
}
