package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/physanim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

// ErrRunNotFound is returned for run IDs with no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	FrameMs   float64            `json:"frame_ms"`
	Duration  float64            `json:"duration"`
	Speed     float64            `json:"speed"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Frames    int                `json:"frames"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
}

// Save writes a run directory <kind>_<unix> holding metadata.json and
// stats.csv. ID, Kind, Timestamp, Frames, Metrics and Errors are filled
// from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := s.now()
	meta.Kind = result.Kind.String()
	meta.Timestamp = now
	meta.Frames = result.Frames
	meta.Metrics = finite(result.Metrics)
	meta.Errors = nil
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	runDir, runID, err := s.mkRunDir(fmt.Sprintf("%s_%d", meta.Kind, now.Unix()))
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

// mkRunDir creates the run directory, suffixing the ID when two runs land
// in the same second.
func (s *Store) mkRunDir(id string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	candidate := id
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, candidate)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, candidate, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		candidate = fmt.Sprintf("%s_%d", id, i)
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStats(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	keys := result.Keys()

	header := append([]string{"time"}, keys...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range result.Times {
		row[0] = formatFloat(t)
		for j, k := range keys {
			row[j+1] = formatFloat(result.Series[k][i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// finite drops NaN and Inf values, which JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}

	return &meta, nil
}

// StatsPath is the CSV file of a run, for callers that stream it.
func (s *Store) StatsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statsFile)
}

// LoadSeries reads stats.csv back into times and one series per column.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	file, err := os.Open(s.StatsPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	series := make(map[string][]float64)
	if len(records) == 0 {
		return []float64{}, series, nil
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	for _, k := range header[1:] {
		series[k] = make([]float64, 0, len(records)-1)
	}

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: %w", runID, i+1, err)
		}
		times = append(times, t)

		for j, k := range header[1:] {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				v = math.NaN()
			}
			series[k] = append(series[k], v)
		}
	}

	return times, series, nil
}
