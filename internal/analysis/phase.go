package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// PhasePortrait pairs two stats sampled on the same frames, e.g. angle
// against angular velocity.
type PhasePortrait struct {
	XKey, YKey string
	Points     []r2.Vec
}

// NewPhasePortrait zips xs and ys, skipping frames where either is missing.
func NewPhasePortrait(xKey string, xs []float64, yKey string, ys []float64) *PhasePortrait {
	n := min(len(xs), len(ys))
	p := &PhasePortrait{XKey: xKey, YKey: yKey, Points: make([]r2.Vec, 0, n)}
	for i := 0; i < n; i++ {
		v := r2.Vec{X: xs[i], Y: ys[i]}
		if finite(v.X) && finite(v.Y) {
			p.Points = append(p.Points, v)
		}
	}
	return p
}

// ASCII plots the portrait in a width x height character grid with axes
// where they cross the visible range.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
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
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	toCol := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	toRow := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		grid[toRow(pt.Y)][toCol(pt.X)] = '•'
	}

	if minX <= 0 && maxX >= 0 {
		col := toCol(0)
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := toRow(0)
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which series rises through
// threshold.
func Crossings(times, series []float64, threshold float64) []float64 {
	n := min(len(times), len(series))
	out := make([]float64, 0)
	for i := 1; i < n; i++ {
		a, b := series[i-1], series[i]
		if !finite(a) || !finite(b) {
			continue
		}
		if a < threshold && b >= threshold {
			frac := (threshold - a) / (b - a)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// MeanPeriod is the average spacing of successive crossings, or zero with
// fewer than two.
func MeanPeriod(crossings []float64) float64 {
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
}
