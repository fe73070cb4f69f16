package metrics

import (
	"math"

	"github.com/san-kum/physanim/internal/dynamo"
)

// Stability is the fraction of frames whose stats are all finite and within
// limit in magnitude. A run with no frames counts as stable.
type Stability struct {
	limit  float64
	frames int
	good   int
}

func NewStability(limit float64) *Stability {
	return &Stability{limit: limit}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(_ float64, stats dynamo.Stats) {
	s.frames++
	if s.bounded(stats) {
		s.good++
	}
}

func (s *Stability) bounded(stats dynamo.Stats) bool {
	for _, v := range stats {
		if math.IsNaN(v) || math.Abs(v) > s.limit {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.frames == 0 {
		return 1
	}
	return float64(s.good) / float64(s.frames)
}

func (s *Stability) Reset() { s.frames, s.good = 0, 0 }
