package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	frictionTimeScale  = 1.0
	frictionRestSpeed  = 1e-3
	frictionBlockSize  = 30.0
	frictionInclineLen = 4.0 // m
)

// Friction slides a block down an incline. Distances are measured along
// the slope from the top, positive downhill.
type Friction struct {
	base

	Angle     float64 // degrees
	Mass      float64
	MuStatic  float64
	MuKinetic float64
	Gravity   float64
	Applied   float64 // N along the slope, positive downhill

	pos, vel float64
	accel    float64
	friction float64
	sliding  bool
	atBottom bool
}

func NewFriction(vp *dynamo.Viewport, seed int64) *Friction {
	f := &Friction{
		base:      newBase(vp, seed),
		Angle:     30,
		Mass:      2,
		MuStatic:  0.5,
		MuKinetic: 0.3,
		Gravity:   DefaultGravity,
	}
	f.Reset()
	return f
}

func (f *Friction) Kind() dynamo.Kind { return dynamo.KindFriction }

func (f *Friction) Reset() {
	f.reseed()
	f.pos, f.vel, f.accel, f.friction = 0, 0, 0, 0
	f.sliding, f.atBottom = false, false
	f.evaluate()
}

func (f *Friction) theta() float64 { return f.Angle * math.Pi / 180 }

func (f *Friction) NormalForce() float64 {
	return f.Mass * f.Gravity * math.Cos(f.theta())
}

// drive is the net force along the slope before friction.
func (f *Friction) drive() float64 {
	return f.Mass*f.Gravity*math.Sin(f.theta()) + f.Applied
}

// evaluate decides static versus kinetic friction for the current state and
// sets accel and friction accordingly.
func (f *Friction) evaluate() {
	n := f.NormalForce()
	drive := f.drive()

	if !f.sliding {
		if math.Abs(drive) <= f.MuStatic*n || (f.atBottom && drive > 0) {
			f.friction = -drive
			f.accel = 0
			return
		}
		f.sliding = true
	}

	dir := sign(f.vel)
	if dir == 0 {
		dir = sign(drive)
	}
	f.friction = -dir * f.MuKinetic * n
	f.accel = (drive + f.friction) / f.Mass
}

func (f *Friction) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, frictionTimeScale, f.speed)
	if dt == 0 {
		return
	}
	f.time += dt

	f.evaluate()
	if !f.sliding {
		return
	}

	prev := f.vel
	f.pos, f.vel = integrators.StepAngular(f.pos, f.vel, f.accel, dt)

	// kinetic friction cannot reverse the motion: stop and let static
	// friction decide on the next frame
	if prev != 0 && sign(prev) != sign(f.vel) {
		f.vel = 0
		f.sliding = false
	}
	if math.Abs(f.vel) < frictionRestSpeed && math.Abs(f.drive()) <= f.MuStatic*f.NormalForce() {
		f.vel = 0
		f.sliding = false
	}

	f.atBottom = false
	if f.pos >= frictionInclineLen {
		f.pos = frictionInclineLen
		f.vel = 0
		f.sliding = false
		f.atBottom = true
	} else if f.pos < 0 {
		f.pos = 0
		f.vel = math.Max(0, f.vel)
	}

	if !finite(f.pos, f.vel) {
		f.Reset()
	}
}

// CriticalAngle is the steepest slope at which the block stays at rest
// without an applied force.
func (f *Friction) CriticalAngle() float64 {
	return math.Atan(f.MuStatic) * 180 / math.Pi
}

func (f *Friction) Stats() dynamo.Stats {
	return dynamo.Stats{
		"normal_force":   f.NormalForce(),
		"friction_force": f.friction,
		"acceleration":   f.accel,
		"velocity":       f.vel,
		"position":       f.pos,
		"sliding":        boolValue(f.sliding),
		"critical_angle": f.CriticalAngle(),
	}
}

// incline returns the top and bottom of the slope in pixels.
func (f *Friction) incline() (top, bottom dynamo.Vec) {
	w, h := f.vp.Width, f.vp.Height
	run := w * 0.7
	rise := math.Min(run*math.Tan(f.theta()), h*0.8)
	if t := math.Tan(f.theta()); t > 0 {
		run = rise / t
	}
	bottom = dynamo.V(w*0.15+run, h*0.9)
	top = dynamo.V(w*0.15, h*0.9-rise)
	return top, bottom
}

func (f *Friction) Snapshot() dynamo.Snapshot {
	snap := f.snapshot(dynamo.KindFriction)
	top, bottom := f.incline()
	slope := r2.Sub(bottom, top)
	length := math.Hypot(slope.X, slope.Y)

	var along, normal dynamo.Vec
	if length > 0 {
		along = r2.Scale(1/length, slope)
		normal = dynamo.V(along.Y, -along.X)
	}
	ppm := length / frictionInclineLen
	center := r2.Add(r2.Add(top, r2.Scale(f.pos*ppm, along)), r2.Scale(frictionBlockSize/2, normal))

	snap.Bodies = []dynamo.Body{{
		Pos:    center,
		Vel:    r2.Scale(f.vel*ppm, along),
		Mass:   f.Mass,
		Radius: frictionBlockSize / 2,
	}}
	snap.Lines = []dynamo.Segment{
		{A: top, B: bottom},
		{A: dynamo.V(top.X, bottom.Y), B: bottom},
	}
	return snap
}

func (f *Friction) GetParams() map[string]float64 {
	return map[string]float64{
		"angle":      f.Angle,
		"mass":       f.Mass,
		"mu_static":  f.MuStatic,
		"mu_kinetic": f.MuKinetic,
		"gravity":    f.Gravity,
		"applied":    f.Applied,
		"speed":      f.speed,
	}
}

func (f *Friction) SetParam(name string, value float64) error {
	k := dynamo.KindFriction
	switch name {
	case "angle":
		f.Angle = dynamo.Clamp(value, 0, 89)
	case "mass":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		f.Mass = value
	case "mu_static":
		f.MuStatic = math.Max(0, value)
	case "mu_kinetic":
		f.MuKinetic = math.Max(0, value)
	case "gravity":
		f.Gravity = math.Max(0, value)
	case "applied":
		f.Applied = value
	case "speed":
		f.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	// a block resting at the bottom stays there; everywhere else static
	// friction is re-checked against the new parameters
	if !f.atBottom {
		f.sliding = f.sliding && f.vel != 0
	}
	f.evaluate()
	return nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
