package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/physanim/internal/dynamo"
)

const (
	MinSpeed     = 0.1
	MaxSpeed     = 10.0
	DefaultSpeed = 1.0
)

// base carries what every scene shares: the live viewport, the seed used to
// rebuild the random source on Reset, the clock and the speed multiplier.
type base struct {
	vp    *dynamo.Viewport
	seed  int64
	rng   *rand.Rand
	time  float64
	speed float64
}

func newBase(vp *dynamo.Viewport, seed int64) base {
	if vp == nil {
		vp = dynamo.NewViewport(800, 600)
	}
	return base{vp: vp, seed: seed, rng: rand.New(rand.NewSource(seed)), speed: DefaultSpeed}
}

// reseed restarts the random sequence and the clock so consecutive resets
// rebuild identical state.
func (b *base) reseed() {
	b.rng = rand.New(rand.NewSource(b.seed))
	b.time = 0
}

func (b *base) setSpeed(v float64) {
	b.speed = dynamo.Clamp(v, MinSpeed, MaxSpeed)
}

func (b *base) snapshot(k dynamo.Kind) dynamo.Snapshot {
	return dynamo.Snapshot{Kind: k, Time: b.time, Width: b.vp.Width, Height: b.vp.Height}
}

func (b *base) Time() float64 { return b.time }

// randomIn returns a uniformly distributed point inside [lo, hi].
func (b *base) randomIn(lo, hi dynamo.Vec) dynamo.Vec {
	return dynamo.V(lo.X+b.rng.Float64()*(hi.X-lo.X), lo.Y+b.rng.Float64()*(hi.Y-lo.Y))
}

func boolParam(v float64) bool { return v >= 0.5 }

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// maxStiffStep bounds rate·h for damped updates; semi-implicit Euler on
// v' = -γv overshoots once γh exceeds 1.
const maxStiffStep = 0.5

// substeps splits dt into n equal steps h with rate·h <= maxStiffStep.
func substeps(dt, rate float64) (int, float64) {
	n := int(math.Ceil(dt * rate / maxStiffStep))
	if n < 1 {
		n = 1
	}
	return n, dt / float64(n)
}

// binEdges returns n+1 histogram dividers over [0, hi] with the last one
// exactly hi.
func binEdges(n int, hi float64) []float64 {
	edges := floats.Span(make([]float64, n+1), 0, hi)
	edges[n] = hi
	return edges
}
