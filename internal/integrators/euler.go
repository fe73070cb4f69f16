package integrators

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
)

// MaxFrameMs caps a single frame so a stalled driver does not tunnel bodies
// through walls when it resumes.
const MaxFrameMs = 100.0

// Timestep converts a wall-clock frame delta in milliseconds into a
// simulation step: deltaMs/1000 scaled by the scene constant and the user
// speed multiplier.
func Timestep(deltaMs, scale, speed float64) float64 {
	if math.IsNaN(deltaMs) || deltaMs <= 0 {
		return 0
	}
	if deltaMs > MaxFrameMs {
		deltaMs = MaxFrameMs
	}
	return deltaMs / 1000 * scale * speed
}

// AccelFunc returns the acceleration of body i given the pre-step state.
type AccelFunc func(i int, b *dynamo.Body) dynamo.Vec

// SemiImplicitEuler updates velocity first and then position with the new
// velocity.
type SemiImplicitEuler struct {
	acc []dynamo.Vec
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) ensureScratch(n int) {
	if len(e.acc) != n {
		e.acc = make([]dynamo.Vec, n)
	}
}

func (e *SemiImplicitEuler) Step(b *dynamo.Body, acc dynamo.Vec, dt float64) {
	b.Vel = r2.Add(b.Vel, r2.Scale(dt, acc))
	b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
}

// Advance evaluates every acceleration against the state at the start of the
// step and only then moves the bodies, so no body sees a half-updated
// neighbour.
func (e *SemiImplicitEuler) Advance(bodies []dynamo.Body, accel AccelFunc, dt float64) {
	n := len(bodies)
	e.ensureScratch(n)

	for i := range bodies {
		e.acc[i] = accel(i, &bodies[i])
	}
	for i := range bodies {
		e.Step(&bodies[i], e.acc[i], dt)
	}
}

// Drift moves bodies along their current velocity with no acceleration.
func (e *SemiImplicitEuler) Drift(bodies []dynamo.Body, dt float64) {
	for i := range bodies {
		bodies[i].Pos = r2.Add(bodies[i].Pos, r2.Scale(dt, bodies[i].Vel))
	}
}

// StepAngular is the scalar form used by pendulums.
func StepAngular(theta, omega, alpha, dt float64) (float64, float64) {
	omega += alpha * dt
	theta += omega * dt
	return theta, omega
}
