// Package metrics computes summary statistics over elevation surfaces.
package metrics

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

// Metric summarizes a single elevation snapshot into one number.
type Metric interface {
	Name() string
	Compute(values []float64) float64
}

type relief struct{}

func NewRelief() Metric { return relief{} }

func (relief) Name() string { return "relief" }

func (relief) Compute(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return max - min
}

type meanElevation struct{}

func NewMeanElevation() Metric { return meanElevation{} }

func (meanElevation) Name() string { return "mean_elevation" }

func (meanElevation) Compute(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// hypsometric is the hypsometric integral, the mean of the relative
// elevation (z - min) / (max - min). Values near 1 indicate a plateau
// landscape, near 0 a deeply incised one.
type hypsometric struct{}

func NewHypsometricIntegral() Metric { return hypsometric{} }

func (hypsometric) Name() string { return "hypsometric_integral" }

func (hypsometric) Compute(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
		sum += v
	}
	if max == min {
		return 0
	}
	mean := sum / float64(len(values))
	return (mean - min) / (max - min)
}

// Default returns the standard metric set in stable order.
func Default() []Metric {
	return []Metric{NewRelief(), NewMeanElevation(), NewHypsometricIntegral()}
}

// Series holds per-step metric values over a dataset's time dimension.
type Series struct {
	Times  []float64
	Values map[string][]float64
}

// Names returns the metric names present in the series, sorted.
func (s *Series) Names() []string {
	names := make([]string, 0, len(s.Values))
	for name := range s.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect evaluates every metric against each time step of the named
// variable. Datasets without a time dimension yield a single-step series.
func Collect(ds *dataset.Dataset, varName, timeDim string, ms []Metric) (*Series, error) {
	da, ok := ds.Vars[varName]
	if !ok {
		return nil, errors.Errorf("variable %q not found in dataset", varName)
	}

	s := &Series{Values: make(map[string][]float64, len(ms))}

	steps := 1
	timed := false
	for _, d := range da.Dims {
		if d == timeDim {
			timed = true
			steps = ds.Sizes[timeDim]
		}
	}
	if timed {
		s.Times = ds.CoordValues(timeDim)
	} else {
		s.Times = []float64{0}
	}

	for step := 0; step < steps; step++ {
		snap := da
		if timed {
			snap = da.Isel(timeDim, step)
		}
		for _, m := range ms {
			s.Values[m.Name()] = append(s.Values[m.Name()], m.Compute(snap.Values))
		}
	}
	return s, nil
}
