package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/physanim/internal/dynamo"
)

// SceneFactory builds a fresh scene for one ensemble member.
type SceneFactory func(seed int64) (dynamo.Scene, error)

// Ensemble runs the same scene under consecutive seeds, one goroutine per
// run. Scenes and metrics are built per run and never shared.
type Ensemble struct {
	factory    SceneFactory
	newMetrics func() []Metric
	numRuns    int
	seedStart  int64
	logger     *log.Logger
}

func NewEnsemble(factory SceneFactory, newMetrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		factory:    factory,
		newMetrics: newMetrics,
		numRuns:    numRuns,
		seedStart:  seedStart,
		logger:     log.Default(),
	}
}

func (e *Ensemble) SetLogger(l *log.Logger) { e.logger = l }

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			scene, err := e.factory(cfgCopy.Seed)
			if err != nil {
				errs[idx] = err
				return
			}
			s := New(scene)
			s.SetLogger(e.logger.With("seed", cfgCopy.Seed))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Summary is the spread of one metric across ensemble runs.
type Summary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize aggregates every metric present in results, sorted by name.
func Summarize(results []*Result) []Summary {
	values := make(map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		vs := values[name]
		s := Summary{Name: name, Min: vs[0], Max: vs[0]}
		s.Mean = stat.Mean(vs, nil)
		if len(vs) > 1 {
			s.StdDev = stat.StdDev(vs, nil)
		}
		for _, v := range vs {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		out = append(out, s)
	}
	return out
}
