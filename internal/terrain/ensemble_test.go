package terrain

import (
	"context"
	"testing"
)

func TestEnsemble_Run(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generator = "fractal"
	cfg.Width, cfg.Height = 8, 8
	cfg.Steps = 3

	ds, err := NewEnsemble(cfg, []int64{1, 2, 3}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := ds.Sizes["batch"]; got != 3 {
		t.Errorf("batch size = %d, want 3", got)
	}
	if got := ds.Sizes["time"]; got != 3 {
		t.Errorf("time size = %d, want 3", got)
	}

	elev := ds.Vars["topography__elevation"]
	wantDims := []string{"batch", "time", "y", "x"}
	for i, dim := range wantDims {
		if elev.Dims[i] != dim {
			t.Fatalf("dims = %v, want %v", elev.Dims, wantDims)
		}
	}
	if len(elev.Values) != 3*3*8*8 {
		t.Errorf("got %d values, want %d", len(elev.Values), 3*3*8*8)
	}

	// distinct seeds must yield distinct surfaces
	a := elev.Isel("batch", 0)
	b := elev.Isel("batch", 1)
	same := true
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("batch members are identical")
	}

	batch := ds.CoordValues("batch")
	if batch[0] != 1 || batch[2] != 3 {
		t.Errorf("batch coords = %v, want seeds", batch)
	}
}

func TestEnsemble_Errors(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewEnsemble(cfg, nil).Run(context.Background()); err == nil {
		t.Error("expected error for empty seed list")
	}

	cfg.Steps = 0
	if _, err := NewEnsemble(cfg, []int64{1}).Run(context.Background()); err == nil {
		t.Error("expected error for invalid config")
	}
}
