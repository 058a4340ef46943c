package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/facette/natsort"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	configFile   = "config.yaml"
)

var ErrNotFound = errors.New("storage: run not found")

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
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Geometry   string             `json:"geometry"`
	Cells      [3]int             `json:"cells"`
	Algorithm  string             `json:"algorithm"`
	Deposition string             `json:"deposition"`
	Order      int                `json:"order"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Particles  int                `json:"particles"`
	Absorbed   int                `json:"absorbed"`
	Metrics    map[string]float64 `json:"metrics"`
}

// RunInfo carries the per-run counters the Result does not hold.
type RunInfo struct {
	Dt        float64
	Particles int
	Absorbed  int
}

// Save writes a new run directory holding the metadata, the configuration
// and the metric history, and returns its ID.
func (s *Store) Save(cfg *config.Config, info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(cfg.Name, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		Timestamp:  now,
		Geometry:   cfg.Geometry,
		Cells:      cfg.Cells,
		Algorithm:  cfg.Algorithm,
		Deposition: cfg.Deposition,
		Order:      cfg.Order,
		Dt:         info.Dt,
		Steps:      result.StepsTaken,
		Particles:  info.Particles,
		Absorbed:   info.Absorbed,
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	if name == "" {
		name = "run"
	}
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	for n := 1; ; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
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

func metricNames(history map[string][]float64) []string {
	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeHistory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := metricNames(result.History)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, name := range names {
			v := 0.0
			if h := result.History[name]; i < len(h) {
				v = h[i]
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs in natural ID order. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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
	sort.Slice(runs, func(i, j int) bool {
		return natsort.Compare(runs[i].ID, runs[j].ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads back the configuration a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(s.baseDir, runID, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return cfg, err
}

// LoadHistory reads the sample times and the per-metric history of a run.
func (s *Store) LoadHistory(runID string) ([]float64, map[string][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %s history: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("storage: %s history: missing header", runID)
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	history := make(map[string][]float64, len(header)-1)
	for _, name := range header[1:] {
		history[name] = make([]float64, 0, len(records)-1)
	}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for c, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %s history line %d: %w", runID, line+2, err)
			}
			vals[c] = v
		}
		times = append(times, vals[0])
		for c, name := range header[1:] {
			history[name] = append(history[name], vals[c+1])
		}
	}
	return times, history, nil
}
