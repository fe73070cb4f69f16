package analysis

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/dynamo"
)

// SweepPoint summarises one stat over the recorded frames of one run.
type SweepPoint struct {
	Value   float64
	Min     float64
	Max     float64
	Mean    float64
	Samples int
}

// SceneBuilder returns a fresh scene with the swept parameter set to v.
type SceneBuilder func(v float64) (dynamo.Scene, error)

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	dst := floats.Span(make([]float64, n), lo, hi)
	dst[n-1] = hi
	return dst
}

// Sweep runs one scene per value: transient frames to settle, then record
// frames whose key stat is summarised.
func Sweep(ctx context.Context, build SceneBuilder, values []float64, key string, transient, record int, frameMs float64) ([]SweepPoint, error) {
	out := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		scene, err := build(v)
		if err != nil {
			return out, fmt.Errorf("sweep %v: %w", v, err)
		}
		for i := 0; i < transient; i++ {
			scene.Update(frameMs)
		}

		samples := make([]float64, 0, record)
		for i := 0; i < record; i++ {
			scene.Update(frameMs)
			if x, ok := scene.Stats()[key]; ok && finite(x) {
				samples = append(samples, x)
			}
		}
		if len(samples) == 0 {
			return out, fmt.Errorf("sweep %v: no samples of %q", v, key)
		}

		out = append(out, SweepPoint{
			Value:   v,
			Min:     floats.Min(samples),
			Max:     floats.Max(samples),
			Mean:    stat.Mean(samples, nil),
			Samples: len(samples),
		})
	}
	return out, nil
}
