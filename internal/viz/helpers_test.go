package viz

import (
	"testing"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

// fixtureDataset builds a (batch, time, y, x) dataset with elevation
// batch*time*y*x plus a constant full-dimensional variable.
func fixtureDataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	ds, err := buildFixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return ds
}

func buildFixture() (*dataset.Dataset, error) {
	ds := dataset.New()
	x := []float64{0, 1, 2}
	y := []float64{0, 1, 2}
	times := []float64{0, 100, 200}
	batch := []float64{1, 2, 3}
	for dim, vals := range map[string][]float64{"batch": batch, "time": times, "y": y, "x": x} {
		if err := ds.SetCoord(dim, vals); err != nil {
			return nil, err
		}
	}

	elev := make([]float64, 81)
	other := make([]float64, 81)
	i := 0
	for _, b := range batch {
		for _, tv := range times {
			for _, yv := range y {
				for _, xv := range x {
					elev[i] = b*tv*yv*xv + 1
					other[i] = 2
					i++
				}
			}
		}
	}
	dims := []string{"batch", "time", "y", "x"}
	shape := []int{3, 3, 3, 3}
	for name, vals := range map[string][]float64{"topography__elevation": elev, "other_var": other} {
		da, err := dataset.NewDataArray(dims, shape, vals)
		if err != nil {
			return nil, err
		}
		if err := ds.AddVar(name, da); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func fixtureExplorer(t testing.TB) *dataset.Explorer {
	t.Helper()
	e, err := dataset.NewExplorer(fixtureDataset(t), dataset.WithTimeDim("time"))
	if err != nil {
		t.Fatalf("explorer: %v", err)
	}
	return e
}

func counterCallback() (*int, func()) {
	count := 0
	return &count, func() { count++ }
}
