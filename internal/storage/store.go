// Package storage keeps finished runs on disk. Every run gets a directory
// named by its ksuid holding metadata.json and states.csv.
package storage

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/san-kum/imexrk/internal/modules"
	"github.com/segmentio/ksuid"
)

var ErrBadRunID = errors.New("storage: malformed run id")

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
	ID        string             `json:"id"`
	Problem   string             `json:"problem"`
	Scheme    string             `json:"scheme"`
	Timestamp time.Time          `json:"timestamp"`
	Params    map[string]float64 `json:"params,omitempty"`
	T0        float64            `json:"t0"`
	TEnd      float64            `json:"t_end"`
	Adaptive  bool               `json:"adaptive"`
	H0        float64            `json:"h0"`
	ATol      float64            `json:"atol"`
	RTol      float64            `json:"rtol"`
	// Dense is set when the states are uniform interpolant samples rather
	// than accepted steps.
	Dense   bool               `json:"dense"`
	Metrics map[string]float64 `json:"metrics"`
}

// Save writes meta and traj under a fresh run id and returns it.
func (s *Store) Save(meta RunMetadata, traj modules.Trajectory) (string, error) {
	id := ksuid.New()
	meta.ID = id.String()
	meta.Timestamp = id.Time()
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if traj.Len() > 0 {
		if err := w.Write(modules.Header(len(traj.States[0]))); err != nil {
			return "", err
		}
	}
	for i := range traj.Times {
		if err := w.Write(modules.Row(traj.Times[i], traj.States[i])); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func (s *Store) runDir(runID string) (string, error) {
	if _, err := ksuid.Parse(runID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

// List returns the metadata of every stored run, oldest first.
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) (modules.Trajectory, error) {
	var traj modules.Trajectory
	dir, err := s.runDir(runID)
	if err != nil {
		return traj, err
	}
	file, err := os.Open(filepath.Join(dir, "states.csv"))
	if err != nil {
		return traj, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return traj, err
	}
	if len(records) < 2 {
		return traj, nil
	}

	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return modules.Trajectory{}, fmt.Errorf("states.csv row %d column %d: %w", i+2, j+1, err)
			}
			values[j] = v
		}
		traj.Append(values[0], values[1:])
	}
	return traj, nil
}
