package experiment

import (
	"fmt"

	"github.com/san-kum/physanim/internal/dynamo"
	"github.com/san-kum/physanim/internal/metrics"
	"github.com/san-kum/physanim/internal/physics"
	"github.com/san-kum/physanim/internal/sim"
)

// SceneFunc builds a scene on a viewport with a seed.
type SceneFunc func(vp *dynamo.Viewport, seed int64) dynamo.Scene

// stabilityThreshold bounds every stat; pixel-space energies in the
// orbit scene reach the millions.
const stabilityThreshold = 1e9

type Registry struct {
	scenes map[dynamo.Kind]SceneFunc
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[dynamo.Kind]SceneFunc)}

	r.scenes[dynamo.KindPendulum] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewPendulum(vp, s) }
	r.scenes[dynamo.KindOrbits] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewOrbits(vp, s) }
	r.scenes[dynamo.KindCollisions] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewCollisions(vp, s) }
	r.scenes[dynamo.KindFriction] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewFriction(vp, s) }
	r.scenes[dynamo.KindElectric] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewElectric(vp, s) }
	r.scenes[dynamo.KindMagnetic] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewMagnetic(vp, s) }
	r.scenes[dynamo.KindFluid] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewFluid(vp, s) }
	r.scenes[dynamo.KindBrownian] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewBrownian(vp, s) }
	r.scenes[dynamo.KindDiffusion] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewDiffusion(vp, s) }
	r.scenes[dynamo.KindGasLaws] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewGasLaws(vp, s) }
	r.scenes[dynamo.KindWaves] = func(vp *dynamo.Viewport, s int64) dynamo.Scene { return physics.NewWaves(vp, s) }

	return r
}

// Register adds or replaces the constructor for a kind.
func (r *Registry) Register(k dynamo.Kind, fn SceneFunc) {
	r.scenes[k] = fn
}

func (r *Registry) New(k dynamo.Kind, vp *dynamo.Viewport, seed int64) (dynamo.Scene, error) {
	fn, ok := r.scenes[k]
	if !ok {
		return nil, fmt.Errorf("scene %s: %w", k, dynamo.ErrUnknownKind)
	}
	return fn(vp, seed), nil
}

// Lookup resolves a kind by name, e.g. "gaslaws".
func (r *Registry) Lookup(name string) (dynamo.Kind, error) {
	k, err := dynamo.ParseKind(name)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", name, err)
	}
	if _, ok := r.scenes[k]; !ok {
		return 0, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownKind)
	}
	return k, nil
}

// Kinds lists the registered kinds in enum order.
func (r *Registry) Kinds() []dynamo.Kind {
	kinds := make([]dynamo.Kind, 0, len(r.scenes))
	for _, k := range dynamo.Kinds() {
		if _, ok := r.scenes[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// DefaultMetrics returns fresh metric instances for a kind. Every kind gets
// a stability check; the rest track the quantity each scene teaches.
func (r *Registry) DefaultMetrics(k dynamo.Kind) []sim.Metric {
	ms := []sim.Metric{metrics.NewStability(stabilityThreshold)}

	switch k {
	case dynamo.KindPendulum:
		ms = append(ms, metrics.NewEnergyDrift(), metrics.NewMax("angle"))
	case dynamo.KindOrbits:
		ms = append(ms, metrics.NewEnergyDrift(), metrics.NewMax("distance"))
	case dynamo.KindCollisions:
		ms = append(ms, metrics.NewDrift("kinetic_energy"), metrics.NewRate("collisions"))
	case dynamo.KindFriction:
		ms = append(ms, metrics.NewMax("velocity"), metrics.NewFinal("position"))
	case dynamo.KindElectric:
		ms = append(ms, metrics.NewMean("field_center"))
	case dynamo.KindMagnetic:
		ms = append(ms, metrics.NewDrift("kinetic_energy"))
	case dynamo.KindFluid:
		ms = append(ms, metrics.NewMean("mean_velocity"), metrics.NewMean("reynolds"))
	case dynamo.KindBrownian:
		ms = append(ms, metrics.NewMax("msd"), metrics.NewRate("collisions"))
	case dynamo.KindDiffusion:
		ms = append(ms, metrics.NewFinal("mixing"), metrics.NewFinal("concentration_variance"))
	case dynamo.KindGasLaws:
		ms = append(ms, metrics.NewMean("pressure"), metrics.NewMean("pv_over_t"))
	case dynamo.KindWaves:
		ms = append(ms, metrics.NewDrift("energy"))
	}
	return ms
}
