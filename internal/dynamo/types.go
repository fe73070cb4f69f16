package dynamo

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

type Vec = r2.Vec

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Finite reports whether both components are real numbers.
func Finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type Body struct {
	Pos    Vec
	Vel    Vec
	Mass   float64
	Radius float64
	Charge float64
	// Tag distinguishes species or roles inside one scene (e.g. the heavy
	// particle in Brownian motion). Renderers may use it to pick a style.
	Tag int
}

func (b *Body) IsValid() bool {
	return Finite(b.Pos) && Finite(b.Vel)
}

func (b *Body) Momentum() Vec {
	return r2.Scale(b.Mass, b.Vel)
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * r2.Norm2(b.Vel)
}

func (b *Body) Speed() float64 {
	return r2.Norm(b.Vel)
}

type Source struct {
	Pos       Vec
	Sign      float64
	Magnitude float64
}

// Viewport is the drawing surface size in pixels. Scenes hold a pointer and
// read it every frame so a resize takes effect on the next Update.
type Viewport struct {
	Width  float64
	Height float64
}

func NewViewport(w, h float64) *Viewport {
	return &Viewport{Width: w, Height: h}
}

func (v *Viewport) SetSize(w, h float64) {
	v.Width, v.Height = w, h
}

func (v *Viewport) Center() Vec {
	return Vec{X: v.Width / 2, Y: v.Height / 2}
}

type Stats map[string]float64

// Keys returns the stat names in sorted order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Segment struct {
	A, B Vec
}

// Snapshot is a read-only copy of a scene for one frame.
type Snapshot struct {
	Kind    Kind
	Time    float64
	Width   float64
	Height  float64
	Bodies  []Body
	Sources []Source
	// Lines holds static or derived geometry: pendulum rods, incline
	// surfaces, pipe walls, the gas piston.
	Lines []Segment
}

func (s Snapshot) IsValid() bool {
	for i := range s.Bodies {
		if !s.Bodies[i].IsValid() {
			return false
		}
	}
	return true
}

func CloneBodies(src []Body) []Body {
	dst := make([]Body, len(src))
	copy(dst, src)
	return dst
}

func CloneSources(src []Source) []Source {
	dst := make([]Source, len(src))
	copy(dst, src)
	return dst
}

type Kind int

const (
	KindPendulum Kind = iota
	KindOrbits
	KindCollisions
	KindFriction
	KindElectric
	KindMagnetic
	KindFluid
	KindBrownian
	KindDiffusion
	KindGasLaws
	KindWaves
)

var kindNames = [...]string{
	KindPendulum:   "pendulum",
	KindOrbits:     "orbits",
	KindCollisions: "collisions",
	KindFriction:   "friction",
	KindElectric:   "electric",
	KindMagnetic:   "magnetic",
	KindFluid:      "fluid",
	KindBrownian:   "brownian",
	KindDiffusion:  "diffusion",
	KindGasLaws:    "gaslaws",
	KindWaves:      "waves",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func Kinds() []Kind {
	ks := make([]Kind, len(kindNames))
	for i := range kindNames {
		ks[i] = Kind(i)
	}
	return ks
}

func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, ErrUnknownKind
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Scene is one animation: parameters, bodies and sources advanced by Update.
type Scene interface {
	Configurable
	Kind() Kind
	Update(deltaMs float64)
	Reset()
	Stats() Stats
	Snapshot() Snapshot
}
