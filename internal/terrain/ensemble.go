package terrain

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

// Ensemble evolves the same scenario under several seeds concurrently and
// stacks the runs along a batch dimension, so the viewer can flip through
// realizations with its dimension sliders.
type Ensemble struct {
	cfg   Config
	seeds []int64
}

func NewEnsemble(cfg Config, seeds []int64) *Ensemble {
	return &Ensemble{cfg: cfg, seeds: seeds}
}

func (e *Ensemble) Run(ctx context.Context) (*dataset.Dataset, error) {
	if len(e.seeds) == 0 {
		return nil, errors.New("ensemble needs at least one seed")
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	runs := make([]*dataset.Dataset, len(e.seeds))
	errs := make([]error, len(e.seeds))

	var wg sync.WaitGroup
	for i, seed := range e.seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()

			cfgCopy := e.cfg
			cfgCopy.Seed = seed
			runs[idx], errs[idx] = Evolve(ctx, cfgCopy)
		}(i, seed)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return e.stack(runs)
}

// stack concatenates per-seed runs along a new leading batch dimension.
func (e *Ensemble) stack(runs []*dataset.Dataset) (*dataset.Dataset, error) {
	out := dataset.New()

	batch := make([]float64, len(e.seeds))
	for i, seed := range e.seeds {
		batch[i] = float64(seed)
	}
	if err := out.SetCoord("batch", batch); err != nil {
		return nil, err
	}
	for _, dim := range runs[0].Dims {
		if err := out.SetCoord(dim, runs[0].CoordValues(dim)); err != nil {
			return nil, err
		}
	}

	for _, name := range runs[0].VarNames() {
		tpl := runs[0].Vars[name]
		dims := append([]string{"batch"}, tpl.Dims...)
		shape := append([]int{len(runs)}, tpl.Shape...)
		values := make([]float64, 0, len(runs)*len(tpl.Values))
		for _, run := range runs {
			values = append(values, run.Vars[name].Values...)
		}
		da, err := dataset.NewDataArray(dims, shape, values)
		if err != nil {
			return nil, err
		}
		if err := out.AddVar(name, da); err != nil {
			return nil, err
		}
	}
	return out, nil
}
