package physics

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/integrators"
)

const (
	wavesTimeScale = 1.0
	waveCFL        = 0.9
	soundColumns   = 40
	soundRows      = 8
	packetPoints   = 120
	minStringN     = 3
	maxStringN     = 400
)

type WaveMode int

const (
	WaveSound  WaveMode = iota // longitudinal displacement of a particle grid
	WavePacket                 // transverse Gaussian pulse travelling right
	WaveString                 // plucked string, finite differences
)

func (m WaveMode) String() string {
	switch m {
	case WaveSound:
		return "sound"
	case WavePacket:
		return "packet"
	case WaveString:
		return "string"
	}
	return "unknown"
}

// Waves shows three views of wave motion. Sound and packet modes are
// evaluated in closed form from the clock; string mode integrates the 1D
// wave equation with fixed ends.
type Waves struct {
	base

	Mode      WaveMode
	Frequency float64 // Hz
	Amplitude float64 // px
	WaveSpeed float64 // px/s
	Damping   float64 // 1/s, string mode
	Points    int     // string mode
	Driven    bool    // string mode: oscillate the left end

	u, v []float64 // string displacement and velocity
}

func NewWaves(vp *dynamo.Viewport, seed int64) *Waves {
	w := &Waves{
		base:      newBase(vp, seed),
		Mode:      WaveSound,
		Frequency: 1,
		Amplitude: 20,
		WaveSpeed: 200,
		Damping:   0.05,
		Points:    100,
	}
	w.Reset()
	return w
}

func (w *Waves) Kind() dynamo.Kind { return dynamo.KindWaves }

func (w *Waves) Reset() {
	w.reseed()
	n := w.Points
	w.u = make([]float64, n)
	w.v = make([]float64, n)
	if w.Driven {
		return
	}
	// triangle pluck at one third of the length
	peak := n / 3
	for i := 1; i < n-1; i++ {
		if i <= peak {
			w.u[i] = w.Amplitude * float64(i) / float64(peak)
		} else {
			w.u[i] = w.Amplitude * float64(n-1-i) / float64(n-1-peak)
		}
	}
}

func (w *Waves) Wavelength() float64 {
	if w.Frequency <= 0 {
		return 0
	}
	return w.WaveSpeed / w.Frequency
}

func (w *Waves) Period() float64 {
	if w.Frequency <= 0 {
		return 0
	}
	return 1 / w.Frequency
}

func (w *Waves) Wavenumber() float64 {
	if l := w.Wavelength(); l > 0 {
		return 2 * math.Pi / l
	}
	return 0
}

func (w *Waves) omega() float64 { return 2 * math.Pi * w.Frequency }

// span returns the horizontal extent of the medium in pixels.
func (w *Waves) span() (x0, x1 float64) {
	return w.vp.Width * 0.1, w.vp.Width * 0.9
}

func (w *Waves) dx() float64 {
	x0, x1 := w.span()
	if len(w.u) < 2 {
		return x1 - x0
	}
	return (x1 - x0) / float64(len(w.u)-1)
}

func (w *Waves) Update(deltaMs float64) {
	dt := integrators.Timestep(deltaMs, wavesTimeScale, w.speed)
	if dt == 0 {
		return
	}
	if w.Mode == WaveString {
		w.stepString(dt)
	}
	w.time += dt
}

// stepString advances the string with substeps small enough for the CFL
// condition c·h/dx <= waveCFL.
func (w *Waves) stepString(dt float64) {
	n := len(w.u)
	if n < minStringN {
		return
	}
	dx := w.dx()
	c2 := w.WaveSpeed * w.WaveSpeed
	steps := 1
	if w.WaveSpeed > 0 && dx > 0 {
		steps = int(math.Ceil(dt * w.WaveSpeed / (waveCFL * dx)))
	}
	if steps < 1 {
		steps = 1
	}
	h := dt / float64(steps)

	t := w.time
	for s := 0; s < steps; s++ {
		for i := 1; i < n-1; i++ {
			lap := (w.u[i-1] - 2*w.u[i] + w.u[i+1]) / (dx * dx)
			w.v[i] += (c2*lap - w.Damping*w.v[i]) * h
		}
		for i := 1; i < n-1; i++ {
			w.u[i] += w.v[i] * h
		}
		t += h
		if w.Driven {
			w.u[0] = w.Amplitude * math.Sin(w.omega()*t)
			w.v[0] = w.Amplitude * w.omega() * math.Cos(w.omega()*t)
		} else {
			w.u[0], w.v[0] = 0, 0
		}
		w.u[n-1], w.v[n-1] = 0, 0
	}

	if !finite(w.u...) || !finite(w.v...) {
		w.Reset()
	}
}

// StringEnergy is the discrete kinetic plus elastic energy of the string
// with unit linear density.
func (w *Waves) StringEnergy() float64 {
	n := len(w.u)
	if n < 2 {
		return 0
	}
	dx := w.dx()
	c2 := w.WaveSpeed * w.WaveSpeed
	ke, pe := 0.0, 0.0
	for i := 0; i < n; i++ {
		ke += 0.5 * w.v[i] * w.v[i] * dx
		if i < n-1 {
			du := (w.u[i+1] - w.u[i]) / dx
			pe += 0.5 * c2 * du * du * dx
		}
	}
	return ke + pe
}

// Bodies returns the particles of the current mode.
func (w *Waves) Bodies() []dynamo.Body {
	switch w.Mode {
	case WaveSound:
		return w.soundBodies()
	case WavePacket:
		return w.packetBodies()
	}
	return w.stringBodies()
}

func (w *Waves) soundBodies() []dynamo.Body {
	x0, x1 := w.span()
	top, bottom := w.vp.Height*0.3, w.vp.Height*0.7
	k, om := w.Wavenumber(), w.omega()
	out := make([]dynamo.Body, 0, soundColumns*soundRows)
	for c := 0; c < soundColumns; c++ {
		eq := x0 + (x1-x0)*float64(c)/float64(soundColumns-1)
		phase := k*(eq-x0) - om*w.time
		s := w.Amplitude * math.Sin(phase)
		vel := -w.Amplitude * om * math.Cos(phase)
		for r := 0; r < soundRows; r++ {
			y := top + (bottom-top)*float64(r)/float64(soundRows-1)
			out = append(out, dynamo.Body{
				Pos:    dynamo.V(eq+s, y),
				Vel:    dynamo.V(vel, 0),
				Mass:   1,
				Radius: 2,
			})
		}
	}
	return out
}

func (w *Waves) packetBodies() []dynamo.Body {
	x0, x1 := w.span()
	length := x1 - x0
	mid := w.vp.Height / 2
	k, om := w.Wavenumber(), w.omega()
	sigma := 1.5 * w.Wavelength()
	if sigma <= 0 {
		sigma = length / 8
	}
	// envelope centre travels at the wave speed and wraps around the medium
	centre := x0 + math.Mod(w.WaveSpeed*w.time, length)

	out := make([]dynamo.Body, packetPoints)
	for i := range out {
		x := x0 + length*float64(i)/float64(packetPoints-1)
		d := x - centre
		env := w.Amplitude * math.Exp(-d*d/(2*sigma*sigma))
		phase := k*(x-x0) - om*w.time
		out[i] = dynamo.Body{
			Pos:    dynamo.V(x, mid+env*math.Sin(phase)),
			Vel:    dynamo.V(0, -env*om*math.Cos(phase)),
			Mass:   1,
			Radius: 2,
		}
	}
	return out
}

func (w *Waves) stringBodies() []dynamo.Body {
	x0, _ := w.span()
	dx := w.dx()
	mid := w.vp.Height / 2
	out := make([]dynamo.Body, len(w.u))
	for i := range w.u {
		out[i] = dynamo.Body{
			Pos:    dynamo.V(x0+dx*float64(i), mid+w.u[i]),
			Vel:    dynamo.V(0, w.v[i]),
			Mass:   1,
			Radius: 1,
		}
	}
	return out
}

func (w *Waves) Stats() dynamo.Stats {
	energy := 0.0
	if w.Mode == WaveString {
		energy = w.StringEnergy()
	} else {
		for _, b := range w.Bodies() {
			energy += b.KineticEnergy()
		}
	}
	return dynamo.Stats{
		"mode":       float64(w.Mode),
		"frequency":  w.Frequency,
		"wavelength": w.Wavelength(),
		"period":     w.Period(),
		"wave_speed": w.WaveSpeed,
		"wavenumber": w.Wavenumber(),
		"energy":     energy,
	}
}

func (w *Waves) Snapshot() dynamo.Snapshot {
	snap := w.snapshot(dynamo.KindWaves)
	snap.Bodies = w.Bodies()
	if w.Mode != WaveSound {
		for i := 1; i < len(snap.Bodies); i++ {
			snap.Lines = append(snap.Lines, dynamo.Segment{A: snap.Bodies[i-1].Pos, B: snap.Bodies[i].Pos})
		}
	}
	return snap
}

func (w *Waves) GetParams() map[string]float64 {
	return map[string]float64{
		"mode":       float64(w.Mode),
		"frequency":  w.Frequency,
		"amplitude":  w.Amplitude,
		"wave_speed": w.WaveSpeed,
		"damping":    w.Damping,
		"points":     float64(w.Points),
		"driven":     boolValue(w.Driven),
		"speed":      w.speed,
	}
}

func (w *Waves) SetParam(name string, value float64) error {
	k := dynamo.KindWaves
	switch name {
	case "mode":
		m := WaveMode(value)
		if m != WaveSound && m != WavePacket && m != WaveString {
			return dynamo.OutOfBounds(k, name, value)
		}
		w.Mode = m
		w.Reset()
	case "frequency":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		w.Frequency = value
	case "amplitude":
		w.Amplitude = math.Max(0, value)
	case "wave_speed":
		if value <= 0 {
			return dynamo.OutOfBounds(k, name, value)
		}
		w.WaveSpeed = value
	case "damping":
		w.Damping = math.Max(0, value)
	case "points":
		w.Points = int(dynamo.Clamp(value, minStringN, maxStringN))
		w.Reset()
	case "driven":
		w.Driven = boolParam(value)
		w.Reset()
	case "speed":
		w.setSpeed(value)
	default:
		return dynamo.UnknownParam(k, name)
	}
	return nil
}
