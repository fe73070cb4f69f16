package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/dynamo"
)

// DivergenceEstimate is the result of comparing two nearby runs.
type DivergenceEstimate struct {
	// Exponent is the fitted growth rate of ln(separation), 1/s. A clearly
	// positive value indicates chaos.
	Exponent float64
	Initial  float64 // separation after the first frame, px
	Final    float64 // separation when fitting stopped, px
	Samples  int
	// Saturated is set when the separation reached the cap and the fit
	// stopped early.
	Saturated bool
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// separation is the RMS distance between corresponding bodies.
func separation(a, b dynamo.Snapshot) float64 {
	n := min(len(a.Bodies), len(b.Bodies))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += r2.Norm2(r2.Sub(a.Bodies[i].Pos, b.Bodies[i].Pos))
	}
	return math.Sqrt(sum / float64(n))
}

// Divergence estimates the largest Lyapunov exponent by running a reference
// scene and a slightly perturbed copy side by side, then fitting a line to
// ln(separation) against time. Scenes cannot be renormalised from outside,
// so the fit stops once the separation exceeds limit pixels.
func Divergence(ref, perturbed dynamo.Scene, frames int, frameMs, limit float64) DivergenceEstimate {
	var ts, logs []float64
	est := DivergenceEstimate{}

	for i := 0; i < frames; i++ {
		ref.Update(frameMs)
		perturbed.Update(frameMs)

		a, b := ref.Snapshot(), perturbed.Snapshot()
		d := separation(a, b)
		if !finite(d) {
			break
		}
		if d > limit {
			est.Saturated = true
			break
		}
		if d <= 0 {
			continue
		}
		if len(ts) == 0 {
			est.Initial = d
		}
		est.Final = d
		ts = append(ts, a.Time)
		logs = append(logs, math.Log(d))
	}

	est.Samples = len(ts)
	if len(ts) < 2 {
		return est
	}
	_, est.Exponent = stat.LinearRegression(ts, logs, nil, false)
	return est
}
