package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Level is one named set of coordinate values along a dimension. A dimension
// usually carries a single level; multi-level coordinates (e.g. a batch
// dimension indexed by both an id and a label) carry several.
type Level struct {
	Name   string
	Floats []float64
	Labels []string
}

func (l Level) Len() int {
	if l.Labels != nil {
		return len(l.Labels)
	}
	return len(l.Floats)
}

func (l Level) Label(i int) string {
	if l.Labels != nil {
		return l.Labels[i]
	}
	return formatFloat(l.Floats[i])
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}

// Axis holds the coordinate levels of a named dimension. Axes without levels
// are valid: the dimension then has positions but no coordinate values.
type Axis struct {
	Dim    string
	Levels []Level
}

// DataArray is a row-major float64 array with named dimensions.
type DataArray struct {
	Dims   []string
	Shape  []int
	Values []float64
}

func NewDataArray(dims []string, shape []int, values []float64) (*DataArray, error) {
	if len(dims) != len(shape) {
		return nil, errors.Errorf("dims/shape mismatch: %d dims, %d sizes", len(dims), len(shape))
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, errors.Errorf("non-positive size %d", s)
		}
		n *= s
	}
	if len(values) != n {
		return nil, errors.Errorf("expected %d values, got %d", n, len(values))
	}
	return &DataArray{Dims: dims, Shape: shape, Values: values}, nil
}

func (da *DataArray) HasDim(dim string) bool {
	for _, d := range da.Dims {
		if d == dim {
			return true
		}
	}
	return false
}

func (da *DataArray) dimIndex(dim string) int {
	for i, d := range da.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// At returns the value at the given per-dimension indices.
func (da *DataArray) At(indices ...int) float64 {
	if len(indices) != len(da.Shape) {
		panic(fmt.Sprintf("dataset: At got %d indices for %d dims", len(indices), len(da.Shape)))
	}
	off := 0
	for i, idx := range indices {
		off = off*da.Shape[i] + idx
	}
	return da.Values[off]
}

func (da *DataArray) Min() float64 {
	min := math.Inf(1)
	for _, v := range da.Values {
		if v < min {
			min = v
		}
	}
	return min
}

func (da *DataArray) Max() float64 {
	max := math.Inf(-1)
	for _, v := range da.Values {
		if v > max {
			max = v
		}
	}
	return max
}

func (da *DataArray) Clone() *DataArray {
	values := make([]float64, len(da.Values))
	copy(values, da.Values)
	return &DataArray{
		Dims:   append([]string(nil), da.Dims...),
		Shape:  append([]int(nil), da.Shape...),
		Values: values,
	}
}

// Isel selects a single index along one dimension, dropping that dimension.
// Arrays that do not carry the dimension are returned unchanged.
func (da *DataArray) Isel(dim string, idx int) *DataArray {
	d := da.dimIndex(dim)
	if d < 0 {
		return da
	}
	outer := 1
	for i := 0; i < d; i++ {
		outer *= da.Shape[i]
	}
	inner := 1
	for i := d + 1; i < len(da.Shape); i++ {
		inner *= da.Shape[i]
	}
	values := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		src := (o*da.Shape[d] + idx) * inner
		copy(values[o*inner:(o+1)*inner], da.Values[src:src+inner])
	}
	dims := make([]string, 0, len(da.Dims)-1)
	shape := make([]int, 0, len(da.Shape)-1)
	for i := range da.Dims {
		if i == d {
			continue
		}
		dims = append(dims, da.Dims[i])
		shape = append(shape, da.Shape[i])
	}
	return &DataArray{Dims: dims, Shape: shape, Values: values}
}

// Dataset is a collection of data variables sharing named dimensions, with
// optional coordinate axes per dimension.
type Dataset struct {
	Dims  []string
	Sizes map[string]int
	Axes  map[string]*Axis
	Vars  map[string]*DataArray
}

func New() *Dataset {
	return &Dataset{
		Sizes: make(map[string]int),
		Axes:  make(map[string]*Axis),
		Vars:  make(map[string]*DataArray),
	}
}

func (ds *Dataset) HasDim(dim string) bool {
	_, ok := ds.Sizes[dim]
	return ok
}

// SetCoord registers a single-level float coordinate for a dimension,
// creating the dimension if needed.
func (ds *Dataset) SetCoord(dim string, values []float64) error {
	return ds.SetAxis(&Axis{Dim: dim, Levels: []Level{{Name: dim, Floats: values}}})
}

func (ds *Dataset) SetAxis(ax *Axis) error {
	n := -1
	for _, lvl := range ax.Levels {
		if n == -1 {
			n = lvl.Len()
		} else if lvl.Len() != n {
			return errors.Errorf("axis %q: level %q has %d values, want %d", ax.Dim, lvl.Name, lvl.Len(), n)
		}
	}
	if size, ok := ds.Sizes[ax.Dim]; ok && n >= 0 && size != n {
		return errors.Errorf("axis %q: %d values for dimension of size %d", ax.Dim, n, size)
	}
	if !ds.HasDim(ax.Dim) {
		ds.Dims = append(ds.Dims, ax.Dim)
		ds.Sizes[ax.Dim] = n
	}
	ds.Axes[ax.Dim] = ax
	return nil
}

// AddVar registers a data variable, checking its shape against known
// dimension sizes and registering unknown dimensions.
func (ds *Dataset) AddVar(name string, da *DataArray) error {
	for i, dim := range da.Dims {
		if size, ok := ds.Sizes[dim]; ok {
			if size != da.Shape[i] {
				return errors.Errorf("variable %q: dimension %q has size %d, want %d", name, dim, da.Shape[i], size)
			}
		} else {
			ds.Dims = append(ds.Dims, dim)
			ds.Sizes[dim] = da.Shape[i]
		}
	}
	ds.Vars[name] = da
	return nil
}

// VarNames lists the data variables in sorted order.
func (ds *Dataset) VarNames() []string {
	names := make([]string, 0, len(ds.Vars))
	for name := range ds.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ds *Dataset) Copy() *Dataset {
	out := New()
	out.Dims = append([]string(nil), ds.Dims...)
	for dim, size := range ds.Sizes {
		out.Sizes[dim] = size
	}
	for dim, ax := range ds.Axes {
		levels := make([]Level, len(ax.Levels))
		for i, lvl := range ax.Levels {
			levels[i] = Level{
				Name:   lvl.Name,
				Floats: append([]float64(nil), lvl.Floats...),
				Labels: append([]string(nil), lvl.Labels...),
			}
		}
		out.Axes[dim] = &Axis{Dim: dim, Levels: levels}
	}
	for name, da := range ds.Vars {
		out.Vars[name] = da.Clone()
	}
	return out
}

// Isel selects single indices along the given dimensions, dropping them from
// the result. Coordinate axes of dropped dimensions are removed.
func (ds *Dataset) Isel(sel map[string]int) (*Dataset, error) {
	for dim, idx := range sel {
		size, ok := ds.Sizes[dim]
		if !ok {
			return nil, errors.Errorf("unknown dimension %q", dim)
		}
		if idx < 0 || idx >= size {
			return nil, errors.Errorf("index %d out of range for dimension %q (size %d)", idx, dim, size)
		}
	}
	out := New()
	for _, dim := range ds.Dims {
		if _, dropped := sel[dim]; dropped {
			continue
		}
		out.Dims = append(out.Dims, dim)
		out.Sizes[dim] = ds.Sizes[dim]
		if ax, ok := ds.Axes[dim]; ok {
			out.Axes[dim] = ax
		}
	}
	for name, da := range ds.Vars {
		sliced := da
		for dim, idx := range sel {
			sliced = sliced.Isel(dim, idx)
		}
		out.Vars[name] = sliced
	}
	return out, nil
}

// NearestIndex returns the index of the first-level coordinate value closest
// to v along the given dimension.
func (ds *Dataset) NearestIndex(dim string, v float64) (int, error) {
	ax, ok := ds.Axes[dim]
	if !ok || len(ax.Levels) == 0 {
		return 0, errors.Errorf("dimension %q has no coordinate values", dim)
	}
	lvl := ax.Levels[0]
	if lvl.Floats == nil {
		return 0, errors.Errorf("dimension %q has no numeric coordinate", dim)
	}
	best, bestDist := 0, math.Inf(1)
	for i, cv := range lvl.Floats {
		if d := math.Abs(cv - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// CoordValues returns the first-level numeric coordinate of a dimension,
// falling back to 0..n-1 positions when the dimension has none.
func (ds *Dataset) CoordValues(dim string) []float64 {
	if ax, ok := ds.Axes[dim]; ok && len(ax.Levels) > 0 && ax.Levels[0].Floats != nil {
		return ax.Levels[0].Floats
	}
	n := ds.Sizes[dim]
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return vals
}
