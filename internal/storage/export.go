package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
)

type ExportData struct {
	RunMetadata
	Times  []float64        `json:"times"`
	Series map[string][]any `json:"series"`
}

// ExportCSV copies a run's stats.csv to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	f, err := os.Open(s.StatsPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// ExportJSON writes metadata and every series as one document. Missing
// samples become null.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       times,
		Series:      make(map[string][]any, len(series)),
	}
	for k, vs := range series {
		out := make([]any, len(vs))
		for i, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out[i] = v
		}
		data.Series[k] = out
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
