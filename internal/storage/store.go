// Package storage persists viewer snapshots: the full display state of a
// session plus the metric series computed for its dataset.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/metrics"
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

// Snapshot captures everything needed to restore a viewer session.
type Snapshot struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Timestamp    time.Time      `json:"timestamp"`
	StorePath    string         `json:"store_path"`
	Step         int            `json:"step"`
	ColorVar     string         `json:"color_var"`
	Colormap     string         `json:"colormap"`
	ColorMin     float64        `json:"color_min"`
	ColorMax     float64        `json:"color_max"`
	LogScale     bool           `json:"log_scale"`
	Exaggeration float64        `json:"exaggeration"`
	Background   string         `json:"background"`
	DimSelection map[string]int `json:"dim_selection,omitempty"`
}

func (s *Store) Save(snap Snapshot, series *metrics.Series) (string, error) {
	if snap.Name == "" {
		return "", errors.New("snapshot name must not be empty")
	}

	snap.ID = fmt.Sprintf("%s_%d", snap.Name, time.Now().Unix())
	snap.Timestamp = time.Now()

	snapDir := filepath.Join(s.baseDir, snap.ID)
	if err := os.MkdirAll(snapDir, 0755); err != nil {
		return "", errors.Wrap(err, "create snapshot dir")
	}

	metaFile, err := os.Create(filepath.Join(snapDir, "snapshot.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", err
	}

	if series == nil {
		return snap.ID, nil
	}
	if err := writeSeries(filepath.Join(snapDir, "metrics.csv"), series); err != nil {
		return "", err
	}
	return snap.ID, nil
}

func writeSeries(path string, series *metrics.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	names := series.Names()
	header := append([]string{"time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range series.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(series.Values[name][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Snapshot{}, nil
		}
		return nil, err
	}

	snaps := make([]Snapshot, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "snapshot.json"))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *Store) Load(id string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "snapshot.json"))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) LoadSeries(id string) (*metrics.Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, "metrics.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("metrics.csv has no header")
	}

	header := records[0]
	series := &metrics.Series{Values: make(map[string][]float64)}
	for i := 1; i < len(records); i++ {
		record := records[i]
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		series.Times = append(series.Times, t)
		for j := 1; j < len(header) && j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q", i, header[j])
			}
			series.Values[header[j]] = append(series.Values[header[j]], v)
		}
	}
	return series, nil
}
