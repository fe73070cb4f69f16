package metrics

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Rate is the average change per second of a cumulative stat such as a
// collision counter.
type Rate struct {
	name        string
	key         string
	first, last float64
	start, end  float64
	samples     int
}

func NewRate(key string) *Rate {
	return &Rate{name: key + "_rate", key: key}
}

func (r *Rate) Name() string {
	return r.name
}

func (r *Rate) Observe(t float64, stats dynamo.Stats) {
	v, ok := stats[r.key]
	if !ok || math.IsNaN(v) {
		return
	}
	if r.samples == 0 {
		r.first, r.start = v, t
	}
	r.last, r.end = v, t
	r.samples++
}

func (r *Rate) Value() float64 {
	if r.samples < 2 || r.end <= r.start {
		return 0
	}
	return (r.last - r.first) / (r.end - r.start)
}

func (r *Rate) Reset() {
	r.first, r.last = 0, 0
	r.start, r.end = 0, 0
	r.samples = 0
}
