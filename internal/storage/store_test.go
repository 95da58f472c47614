package storage

import (
	"strings"
	"testing"

	"github.com/fastscape-lem/topoviz/internal/metrics"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Name:         "demo",
		StorePath:    "/data/run.tvz",
		Step:         3,
		ColorVar:     "topography__elevation",
		Colormap:     "viridis",
		ColorMin:     0,
		ColorMax:     250,
		Exaggeration: 2.5,
		Background:   "#1e1e1e",
		DimSelection: map[string]int{"batch": 1},
	}
}

func testSeries() *metrics.Series {
	return &metrics.Series{
		Times: []float64{0, 100, 200},
		Values: map[string][]float64{
			"relief":         {10, 12, 15},
			"mean_elevation": {5, 6, 7.5},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := s.Save(testSnapshot(), testSeries())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(id, "demo_") {
		t.Errorf("id = %q, want demo_ prefix", id)
	}

	snap, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Step != 3 || snap.ColorVar != "topography__elevation" {
		t.Errorf("loaded snapshot mismatch: %+v", snap)
	}
	if snap.DimSelection["batch"] != 1 {
		t.Errorf("DimSelection = %v, want batch:1", snap.DimSelection)
	}

	series, err := s.LoadSeries(id)
	if err != nil {
		t.Fatalf("LoadSeries() error = %v", err)
	}
	if len(series.Times) != 3 || series.Times[2] != 200 {
		t.Errorf("Times = %v, want [0 100 200]", series.Times)
	}
	if got := series.Values["relief"]; got[2] != 15 {
		t.Errorf("relief = %v, want trailing 15", got)
	}
}

func TestSave_NoSeries(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save(testSnapshot(), nil)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.LoadSeries(id); err == nil {
		t.Error("expected error loading absent series")
	}
}

func TestSave_EmptyName(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save(Snapshot{}, nil); err == nil {
		t.Error("expected error for empty snapshot name")
	}
}

func TestList(t *testing.T) {
	s := New(t.TempDir())

	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("List() on empty store = %v, want none", snaps)
	}

	if _, err := s.Save(testSnapshot(), nil); err != nil {
		t.Fatal(err)
	}
	snaps, err = s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 1 || snaps[0].Name != "demo" {
		t.Errorf("List() = %+v, want one snapshot named demo", snaps)
	}
}

func TestList_MissingBaseDir(t *testing.T) {
	s := New("/nonexistent/topoviz-snapshots")
	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("List() = %v, want empty", snaps)
	}
}
