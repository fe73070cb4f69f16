package metrics

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Mean averages one stat over all frames where it is finite.
type Mean struct {
	name    string
	key     string
	sum     float64
	samples int
}

func NewMean(key string) *Mean {
	return &Mean{name: "mean_" + key, key: key}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(_ float64, stats dynamo.Stats) {
	v, ok := stats[m.key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m.sum += v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// Max keeps the largest finite value of one stat.
type Max struct {
	name string
	key  string
	max  float64
	seen bool
}

func NewMax(key string) *Max {
	return &Max{name: "max_" + key, key: key}
}

func (m *Max) Name() string { return m.name }

func (m *Max) Observe(_ float64, stats dynamo.Stats) {
	v, ok := stats[m.key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if !m.seen || v > m.max {
		m.max = v
		m.seen = true
	}
}

func (m *Max) Value() float64 { return m.max }

func (m *Max) Reset() {
	m.max = 0
	m.seen = false
}

// Final reports the last finite value of one stat.
type Final struct {
	name  string
	key   string
	value float64
}

func NewFinal(key string) *Final {
	return &Final{name: "final_" + key, key: key}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(_ float64, stats dynamo.Stats) {
	if v, ok := stats[f.key]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		f.value = v
	}
}

func (f *Final) Value() float64 { return f.value }
func (f *Final) Reset()         { f.value = 0 }
