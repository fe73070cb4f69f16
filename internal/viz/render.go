package viz

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/physics"
)

const defaultTrailLen = 120

// Renderer draws snapshots onto a braille canvas, scaling the scene's pixel
// space to fit and keeping its own trail history per body.
type Renderer struct {
	canvas   *Canvas
	trailLen int
	trails   map[int][]dynamo.Vec
	lastTime float64
	lastN    int

	scale, offX, offY float64
}

func NewRenderer(cols, rows int) *Renderer {
	return &Renderer{
		canvas:   NewCanvas(cols, rows),
		trailLen: defaultTrailLen,
		trails:   make(map[int][]dynamo.Vec),
	}
}

func (r *Renderer) Canvas() *Canvas { return r.canvas }

func (r *Renderer) Resize(cols, rows int) { r.canvas.Resize(cols, rows) }

// SetTrailLen bounds the points kept per body; 0 disables trails.
func (r *Renderer) SetTrailLen(n int) {
	r.trailLen = n
	r.ClearTrails()
}

func (r *Renderer) ClearTrails() {
	r.trails = make(map[int][]dynamo.Vec)
}

// Trail returns the recorded positions of body i, oldest first.
func (r *Renderer) Trail(i int) []dynamo.Vec { return r.trails[i] }

func (r *Renderer) fit(snap dynamo.Snapshot) {
	w, h := snap.Width, snap.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	dw, dh := float64(r.canvas.DotWidth()), float64(r.canvas.DotHeight())
	r.scale = math.Min(dw/w, dh/h)
	r.offX = (dw - w*r.scale) / 2
	r.offY = (dh - h*r.scale) / 2
}

// Project maps a scene position to dot coordinates.
func (r *Renderer) Project(p dynamo.Vec) (int, int) {
	return int(math.Round(r.offX + p.X*r.scale)), int(math.Round(r.offY + p.Y*r.scale))
}

func (r *Renderer) dots(px float64) int {
	return int(math.Round(px * r.scale))
}

// Render clears the canvas and draws one frame.
func (r *Renderer) Render(snap dynamo.Snapshot) string {
	r.fit(snap)
	r.track(snap)
	r.canvas.Clear()

	for _, seg := range snap.Lines {
		if !dynamo.Finite(seg.A) || !dynamo.Finite(seg.B) {
			continue
		}
		x0, y0 := r.Project(seg.A)
		x1, y1 := r.Project(seg.B)
		r.canvas.DrawLine(x0, y0, x1, y1)
	}

	for _, trail := range r.trails {
		for _, p := range trail {
			r.canvas.Set(r.Project(p))
		}
	}

	for _, src := range snap.Sources {
		x, y := r.Project(src.Pos)
		switch {
		case src.Sign > 0:
			r.canvas.Disc(x, y, 2)
		case src.Sign < 0:
			r.canvas.Ring(x, y, 3)
		default:
			r.canvas.Ring(x, y, 1)
		}
	}

	for i := range snap.Bodies {
		b := &snap.Bodies[i]
		if !b.IsValid() {
			continue
		}
		x, y := r.Project(b.Pos)
		if rad := r.dots(b.Radius); rad >= 1 {
			r.canvas.Disc(x, y, rad)
		} else {
			r.canvas.Set(x, y)
		}
	}

	return r.canvas.String()
}

// track appends trailed bodies to their history. A clock that runs
// backwards or a changed body count means the scene was reset.
func (r *Renderer) track(snap dynamo.Snapshot) {
	if snap.Time < r.lastTime || len(snap.Bodies) != r.lastN {
		r.ClearTrails()
	}
	r.lastTime, r.lastN = snap.Time, len(snap.Bodies)
	if r.trailLen <= 0 {
		return
	}

	for i := range snap.Bodies {
		if !trailed(snap.Kind, &snap.Bodies[i]) || !snap.Bodies[i].IsValid() {
			continue
		}
		t := append(r.trails[i], snap.Bodies[i].Pos)
		if len(t) > r.trailLen {
			t = t[len(t)-r.trailLen:]
		}
		r.trails[i] = t
	}
}

func trailed(k dynamo.Kind, b *dynamo.Body) bool {
	switch k {
	case dynamo.KindPendulum, dynamo.KindOrbits:
		return true
	case dynamo.KindMagnetic:
		return b.Tag == physics.TagCharged
	case dynamo.KindBrownian:
		return b.Tag == physics.TagHeavy
	}
	return false
}
