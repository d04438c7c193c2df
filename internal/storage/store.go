package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/metrics"
	"github.com/san-kum/soapsort/internal/soap"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Generator       string             `json:"generator"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Energy          float64            `json:"energy"`
	Beta            float64            `json:"beta"`
	Threshold       float64            `json:"threshold"`
	MaxInteractions int                `json:"max_interactions,omitempty"`
	Input           []float64          `json:"input"`
	Output          []float64          `json:"output"`
	Sorted          bool               `json:"sorted"`
	Interactions    int                `json:"interactions"`
	Swaps           int                `json:"swaps"`
	Steps           int                `json:"steps"`
	Bounces         int                `json:"bounces"`
	Stalls          int                `json:"stalls"`
	ElapsedMs       float64            `json:"elapsed_ms"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes the run's metadata and inversion history under a fresh run id.
func (s *Store) Save(cfg experiment.Config, result *experiment.Result) (string, error) {
	generator := cfg.Generator
	if len(cfg.Values) > 0 {
		generator = "values"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", generator, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Generator:       generator,
		Timestamp:       now,
		Seed:            cfg.Seed,
		Energy:          cfg.Sort.Energy,
		Beta:            cfg.Sort.Beta,
		Threshold:       cfg.Sort.Threshold,
		MaxInteractions: cfg.Sort.MaxInteractions,
		Input:           result.Input,
		Output:          result.Output,
		Sorted:          soap.IsSorted(result.Output),
		ElapsedMs:       float64(result.Elapsed.Microseconds()) / 1000,
	}
	if r := result.Sort; r != nil {
		meta.Interactions = r.Interactions
		meta.Swaps = r.Swaps
		meta.Steps = r.Steps
		meta.Bounces = r.Bounces
		meta.Stalls = r.Stalls
		meta.Metrics = r.Metrics
	}
	if meta.Energy <= 0 {
		meta.Energy = float64(len(result.Input))
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistory(path string, history []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"interaction", "inversions", "swaps"}); err != nil {
		return err
	}
	for _, h := range history {
		row := []string{
			strconv.Itoa(h.Interaction),
			strconv.Itoa(h.Inversions),
			strconv.Itoa(h.Swaps),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	history := make([]metrics.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		var vals [3]int
		ok := true
		for j := range vals {
			v, err := strconv.Atoi(record[j])
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		history = append(history, metrics.Sample{Interaction: vals[0], Inversions: vals[1], Swaps: vals[2]})
	}
	return history, nil
}
