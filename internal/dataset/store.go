package dataset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// On-disk layout: one directory per dataset. dataset.json lists dimensions
// and coordinate axes; each variable gets a subdirectory holding meta.json
// (shape, dims, dtype descriptor, rows per chunk) and numbered binary chunk
// files of row-major values.

const (
	datasetMetaFile = "dataset.json"
	arrayMetaFile   = "meta.json"
)

type datasetMeta struct {
	Dims  []string             `json:"dims"`
	Sizes map[string]int       `json:"sizes"`
	Axes  map[string][]axisLvl `json:"coords,omitempty"`
}

type axisLvl struct {
	Name   string    `json:"name"`
	Floats []float64 `json:"values,omitempty"`
	Labels []string  `json:"labels,omitempty"`
}

type arrayMeta struct {
	Dims      []string `json:"dims"`
	Shape     []int    `json:"shape"`
	Dtype     string   `json:"dtype"`
	ChunkRows int      `json:"chunk_rows"`
	Order     string   `json:"order"`
}

// dtype descriptors follow the numpy convention: a byte-order prefix
// ('<', '>', '|') followed by a basic type character and a byte size.
func dtypeOrder(dtype string) (binary.ByteOrder, error) {
	if len(dtype) != 3 {
		return nil, errors.Errorf("invalid dtype descriptor %q", dtype)
	}
	switch dtype[0] {
	case '<', '|':
		return binary.LittleEndian, nil
	case '>':
		return binary.BigEndian, nil
	}
	return nil, errors.Errorf("invalid byte order in dtype %q", dtype)
}

func readChunkValues(path string, dtype string, n int) ([]float64, error) {
	order, err := dtypeOrder(dtype)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open chunk")
	}
	defer f.Close()

	switch dtype[1:] {
	case "f8":
		vals := make([]float64, n)
		if err := binary.Read(f, order, vals); err != nil {
			return nil, errors.Wrapf(err, "read chunk %s", path)
		}
		return vals, nil
	case "f4":
		raw := make([]float32, n)
		if err := binary.Read(f, order, raw); err != nil {
			return nil, errors.Wrapf(err, "read chunk %s", path)
		}
		vals := make([]float64, n)
		for i, v := range raw {
			vals[i] = float64(v)
		}
		return vals, nil
	case "i4":
		raw := make([]int32, n)
		if err := binary.Read(f, order, raw); err != nil {
			return nil, errors.Wrapf(err, "read chunk %s", path)
		}
		vals := make([]float64, n)
		for i, v := range raw {
			vals[i] = float64(v)
		}
		return vals, nil
	}
	return nil, errors.Errorf("unsupported dtype %q", dtype)
}

// Load reads a dataset directory written by Save.
func Load(dir string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Join(dir, datasetMetaFile))
	if err != nil {
		return nil, errors.Wrap(err, "read dataset metadata")
	}
	var meta datasetMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "decode dataset metadata")
	}

	ds := New()
	for _, dim := range meta.Dims {
		size, ok := meta.Sizes[dim]
		if !ok {
			return nil, errors.Errorf("dimension %q has no size", dim)
		}
		ds.Dims = append(ds.Dims, dim)
		ds.Sizes[dim] = size
	}
	for dim, lvls := range meta.Axes {
		ax := &Axis{Dim: dim}
		for _, lvl := range lvls {
			ax.Levels = append(ax.Levels, Level{Name: lvl.Name, Floats: lvl.Floats, Labels: lvl.Labels})
		}
		if err := ds.SetAxis(ax); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read dataset dir")
	}
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		da, err := loadArray(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "variable %q", ent.Name())
		}
		if err := ds.AddVar(ent.Name(), da); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func loadArray(dir string) (*DataArray, error) {
	raw, err := os.ReadFile(filepath.Join(dir, arrayMetaFile))
	if err != nil {
		return nil, errors.Wrap(err, "read array metadata")
	}
	var meta arrayMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "decode array metadata")
	}
	if meta.Order != "" && meta.Order != "C" {
		return nil, errors.Errorf("unsupported array order %q", meta.Order)
	}
	if len(meta.Shape) == 0 || len(meta.Shape) != len(meta.Dims) {
		return nil, errors.Errorf("inconsistent dims/shape: %v / %v", meta.Dims, meta.Shape)
	}

	rows := meta.Shape[0]
	rowSize := 1
	for _, s := range meta.Shape[1:] {
		rowSize *= s
	}
	chunkRows := meta.ChunkRows
	if chunkRows <= 0 {
		chunkRows = rows
	}

	values := make([]float64, 0, rows*rowSize)
	for start, i := 0, 0; start < rows; start, i = start+chunkRows, i+1 {
		n := chunkRows
		if start+n > rows {
			n = rows - start
		}
		chunk, err := readChunkValues(filepath.Join(dir, fmt.Sprintf("%d", i)), meta.Dtype, n*rowSize)
		if err != nil {
			return nil, err
		}
		values = append(values, chunk...)
	}
	return NewDataArray(meta.Dims, meta.Shape, values)
}

// Save writes the dataset as a directory store with the given rows per
// chunk along each variable's leading dimension.
func Save(dir string, ds *Dataset, chunkRows int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create dataset dir")
	}

	meta := datasetMeta{
		Dims:  ds.Dims,
		Sizes: ds.Sizes,
		Axes:  make(map[string][]axisLvl),
	}
	for dim, ax := range ds.Axes {
		for _, lvl := range ax.Levels {
			meta.Axes[dim] = append(meta.Axes[dim], axisLvl{Name: lvl.Name, Floats: lvl.Floats, Labels: lvl.Labels})
		}
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, datasetMetaFile), raw, 0644); err != nil {
		return errors.Wrap(err, "write dataset metadata")
	}

	for name, da := range ds.Vars {
		if err := saveArray(filepath.Join(dir, name), da, chunkRows); err != nil {
			return errors.Wrapf(err, "variable %q", name)
		}
	}
	return nil
}

func saveArray(dir string, da *DataArray, chunkRows int) error {
	if !validValues(da.Values) {
		return errors.New("array holds NaN or Inf values")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	rows := da.Shape[0]
	rowSize := len(da.Values) / rows
	if chunkRows <= 0 || chunkRows > rows {
		chunkRows = rows
	}

	meta := arrayMeta{Dims: da.Dims, Shape: da.Shape, Dtype: "<f8", ChunkRows: chunkRows, Order: "C"}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, arrayMetaFile), raw, 0644); err != nil {
		return errors.Wrap(err, "write array metadata")
	}

	for start, i := 0, 0; start < rows; start, i = start+chunkRows, i+1 {
		end := start + chunkRows
		if end > rows {
			end = rows
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%d", i)))
		if err != nil {
			return errors.Wrap(err, "create chunk")
		}
		err = binary.Write(f, binary.LittleEndian, da.Values[start*rowSize:end*rowSize])
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrap(err, "write chunk")
		}
	}
	return nil
}

// sanity guard against NaN poisoning stored ranges
func validValues(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
