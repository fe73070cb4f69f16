package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/viz"
)

const (
	background = "#0a0a0a"
	foreground = "#00ff00"
	positive   = "#ff5555"
	negative   = "#5599ff"
	trailColor = "#2e8b57"
	lineColor  = "#888888"
)

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// CanvasSVG draws every set dot of a braille canvas as a circle, scale
// pixels apart.
func CanvasSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.DotWidth())*scale, float64(canvas.DotHeight())*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", foreground)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

func path(sb *strings.Builder, pts []dynamo.Vec, stroke string) {
	if len(pts) < 2 {
		return
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M%.1f,%.1f`, stroke, pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		fmt.Fprintf(sb, " L%.1f,%.1f", p.X, p.Y)
	}
	sb.WriteString("\"/>\n")
}

// SnapshotSVG draws a frame in scene pixels: guide lines, then trails,
// then sources coloured by sign, then bodies. trails may be nil.
func SnapshotSVG(snap dynamo.Snapshot, trails func(i int) []dynamo.Vec) string {
	w, h := snap.Width, snap.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}

	var sb strings.Builder
	header(&sb, w, h)

	for _, seg := range snap.Lines {
		if !dynamo.Finite(seg.A) || !dynamo.Finite(seg.B) {
			continue
		}
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\"/>\n",
			seg.A.X, seg.A.Y, seg.B.X, seg.B.Y, lineColor)
	}

	if trails != nil {
		for i := range snap.Bodies {
			path(&sb, trails(i), trailColor)
		}
	}

	for _, src := range snap.Sources {
		fill := lineColor
		switch {
		case src.Sign > 0:
			fill = positive
		case src.Sign < 0:
			fill = negative
		}
		r := 6 + 2*src.Magnitude
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", src.Pos.X, src.Pos.Y, r, fill)
	}

	for i := range snap.Bodies {
		b := &snap.Bodies[i]
		if !b.IsValid() {
			continue
		}
		fill := foreground
		switch {
		case b.Charge > 0:
			fill = positive
		case b.Charge < 0:
			fill = negative
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", b.Pos.X, b.Pos.Y, max(b.Radius, 1), fill)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// TrajectorySVG fits points into a width x height image with 10% padding
// and joins them with one path, y up.
func TrajectorySVG(points []r2.Vec, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	pts := make([]dynamo.Vec, len(points))
	for i, p := range points {
		pts[i] = dynamo.V(
			(p.X-minX)/rangeX*float64(width),
			float64(height)-(p.Y-minY)/rangeY*float64(height),
		)
	}

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	path(&sb, pts, stroke)
	sb.WriteString("</svg>\n")
	return sb.String()
}
