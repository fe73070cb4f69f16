// Package bounds keeps bodies inside the drawing area after integration.
package bounds

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
)

type Rect struct {
	Min, Max dynamo.Vec
}

// FromViewport returns the viewport rectangle shrunk by inset on every side.
func FromViewport(vp *dynamo.Viewport, inset float64) Rect {
	return Rect{
		Min: dynamo.V(inset, inset),
		Max: dynamo.V(math.Max(inset, vp.Width-inset), math.Max(inset, vp.Height-inset)),
	}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Contains(p dynamo.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Wall identifies which side of a Rect a body touched.
type Wall int

const (
	WallNone   Wall = 0
	WallLeft   Wall = 1 << 0
	WallRight  Wall = 1 << 1
	WallTop    Wall = 1 << 2
	WallBottom Wall = 1 << 3
)

// Hit is the result of one reflection pass. Impulse is the magnitude of
// momentum handed to the walls, used for pressure.
type Hit struct {
	Walls   Wall
	Impulse float64
}

// Reflect clamps b inside r (taking its radius into account) and reverses
// any velocity component that points into a wall, scaled by e.
func Reflect(b *dynamo.Body, r Rect, e float64) bool {
	return ReflectImpulse(b, r, e).Walls != WallNone
}

func ReflectImpulse(b *dynamo.Body, r Rect, e float64) Hit {
	var h Hit
	rad := b.Radius

	if b.Pos.X-rad < r.Min.X {
		b.Pos.X = r.Min.X + rad
		if b.Vel.X < 0 {
			h.Impulse += b.Mass * (1 + e) * -b.Vel.X
			b.Vel.X = -b.Vel.X * e
		}
		h.Walls |= WallLeft
	} else if b.Pos.X+rad > r.Max.X {
		b.Pos.X = r.Max.X - rad
		if b.Vel.X > 0 {
			h.Impulse += b.Mass * (1 + e) * b.Vel.X
			b.Vel.X = -b.Vel.X * e
		}
		h.Walls |= WallRight
	}

	if b.Pos.Y-rad < r.Min.Y {
		b.Pos.Y = r.Min.Y + rad
		if b.Vel.Y < 0 {
			h.Impulse += b.Mass * (1 + e) * -b.Vel.Y
			b.Vel.Y = -b.Vel.Y * e
		}
		h.Walls |= WallTop
	} else if b.Pos.Y+rad > r.Max.Y {
		b.Pos.Y = r.Max.Y - rad
		if b.Vel.Y > 0 {
			h.Impulse += b.Mass * (1 + e) * b.Vel.Y
			b.Vel.Y = -b.Vel.Y * e
		}
		h.Walls |= WallBottom
	}

	return h
}

// Clamp pins the position inside r without touching velocity.
func Clamp(b *dynamo.Body, r Rect) {
	b.Pos.X = dynamo.Clamp(b.Pos.X, r.Min.X+b.Radius, math.Max(r.Min.X+b.Radius, r.Max.X-b.Radius))
	b.Pos.Y = dynamo.Clamp(b.Pos.Y, r.Min.Y+b.Radius, math.Max(r.Min.Y+b.Radius, r.Max.Y-b.Radius))
}

// Wrap applies a periodic boundary: leaving one side re-enters from the
// opposite one.
func Wrap(b *dynamo.Body, r Rect) {
	b.Pos.X = wrap(b.Pos.X, r.Min.X, r.Max.X)
	b.Pos.Y = wrap(b.Pos.Y, r.Min.Y, r.Max.Y)
}

func wrap(v, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	v = math.Mod(v-lo, span)
	if v < 0 {
		v += span
	}
	return v + lo
}

// Channel is a horizontal pipe: solid walls at Top and Bottom, open and
// periodic from Left to Right.
type Channel struct {
	Left, Right float64
	Top, Bottom float64
}

func (c Channel) Diameter() float64 { return c.Bottom - c.Top }
func (c Channel) Center() float64   { return (c.Top + c.Bottom) / 2 }

// Apply reflects b off the pipe walls with restitution e and wraps it in x.
// It reports whether a wall was hit.
func (c Channel) Apply(b *dynamo.Body, e float64) bool {
	hit := false
	if b.Pos.Y-b.Radius < c.Top {
		b.Pos.Y = c.Top + b.Radius
		if b.Vel.Y < 0 {
			b.Vel.Y = -b.Vel.Y * e
		}
		hit = true
	} else if b.Pos.Y+b.Radius > c.Bottom {
		b.Pos.Y = c.Bottom - b.Radius
		if b.Vel.Y > 0 {
			b.Vel.Y = -b.Vel.Y * e
		}
		hit = true
	}
	b.Pos.X = wrap(b.Pos.X, c.Left, c.Right)
	return hit
}
