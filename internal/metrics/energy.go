package metrics

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Drift tracks the largest relative deviation of a conserved stat (usually
// an energy) from its first observed value.
type Drift struct {
	name     string
	key      string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(key string) *Drift {
	return &Drift{name: key + "_drift", key: key}
}

// NewEnergyDrift watches the total_energy stat.
func NewEnergyDrift() *Drift { return NewDrift("total_energy") }

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(_ float64, stats dynamo.Stats) {
	v, ok := stats[d.key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
