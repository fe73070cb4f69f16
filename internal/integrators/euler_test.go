package integrators

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
)

func TestTimestep(t *testing.T) {
	tests := []struct {
		name     string
		deltaMs  float64
		scale    float64
		speed    float64
		expected float64
	}{
		{"one frame", 16, 1, 1, 0.016},
		{"scaled", 10, 2, 3, 0.06},
		{"clamped", 1000, 1, 1, MaxFrameMs / 1000},
		{"negative", -5, 1, 1, 0},
		{"NaN", math.NaN(), 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Timestep(tt.deltaMs, tt.scale, tt.speed); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Timestep() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSemiImplicitOrder(t *testing.T) {
	e := NewSemiImplicitEuler()
	b := dynamo.Body{Pos: dynamo.V(0, 0), Vel: dynamo.V(1, 0)}

	e.Step(&b, dynamo.V(2, 0), 0.5)

	// v = 1 + 2*0.5 = 2, x = 0 + 2*0.5 = 1 (uses the updated velocity)
	if b.Vel.X != 2 {
		t.Errorf("velocity = %v, want 2", b.Vel.X)
	}
	if b.Pos.X != 1 {
		t.Errorf("position = %v, want 1", b.Pos.X)
	}
}

func TestAdvanceUsesPreStepState(t *testing.T) {
	e := NewSemiImplicitEuler()
	bodies := []dynamo.Body{
		{Pos: dynamo.V(0, 0)},
		{Pos: dynamo.V(10, 0)},
	}

	// each body is pulled toward the other; with pre-step evaluation the
	// accelerations are equal and opposite
	accel := func(i int, b *dynamo.Body) dynamo.Vec {
		other := bodies[1-i]
		return r2.Sub(other.Pos, b.Pos)
	}
	e.Advance(bodies, accel, 0.1)

	if math.Abs(bodies[0].Vel.X+bodies[1].Vel.X) > 1e-12 {
		t.Errorf("expected symmetric velocities, got %v and %v", bodies[0].Vel.X, bodies[1].Vel.X)
	}
}

func TestHarmonicOscillatorStaysBounded(t *testing.T) {
	theta, omega := 1.0, 0.0
	dt := 0.01
	for i := 0; i < 10000; i++ {
		theta, omega = StepAngular(theta, omega, -theta, dt)
	}

	// semi-implicit Euler is symplectic: the amplitude must not blow up
	if math.Abs(theta) > 1.01 || math.Abs(omega) > 1.01 {
		t.Errorf("oscillator drifted: theta=%.4f omega=%.4f", theta, omega)
	}
}

func TestDrift(t *testing.T) {
	e := NewSemiImplicitEuler()
	bodies := []dynamo.Body{{Pos: dynamo.V(1, 1), Vel: dynamo.V(2, -2)}}
	e.Drift(bodies, 0.5)
	if bodies[0].Pos.X != 2 || bodies[0].Pos.Y != 0 {
		t.Errorf("Drift moved body to %v", bodies[0].Pos)
	}
}

func BenchmarkAdvance(b *testing.B) {
	e := NewSemiImplicitEuler()
	bodies := make([]dynamo.Body, 50)
	for i := range bodies {
		bodies[i].Pos = dynamo.V(float64(i), 0)
	}
	accel := func(i int, body *dynamo.Body) dynamo.Vec { return dynamo.V(0, 9.81) }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Advance(bodies, accel, 0.016)
	}
}
