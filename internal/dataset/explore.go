package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const DefaultElevationVar = "topography__elevation"

// InitOption configures an Explorer.
type InitOption func(*Explorer)

func WithXDim(dim string) InitOption    { return func(e *Explorer) { e.xDim = dim } }
func WithYDim(dim string) InitOption    { return func(e *Explorer) { e.yDim = dim } }
func WithTimeDim(dim string) InitOption { return func(e *Explorer) { e.timeDim = dim } }

func WithElevationVar(name string) InitOption { return func(e *Explorer) { e.elevationVar = name } }

// Explorer wraps a Dataset with the state needed for interactive exploration:
// the active elevation and color variables, the grid and time dimensions, the
// positions along any extra dimensions, and cached slice views.
type Explorer struct {
	ds *Dataset

	elevationVar string
	colorVar     string
	xDim, yDim   string
	timeDim      string

	extraDims  map[string]int
	extraOrder []string
	step       int

	view     *Dataset
	stepView *Dataset
	dataVars map[string]*DataArray
}

// NewExplorer validates the dataset against the requested layout and returns
// an Explorer positioned at step 0 with all extra dimensions at index 0.
func NewExplorer(ds *Dataset, opts ...InitOption) (*Explorer, error) {
	e := &Explorer{
		ds:           ds,
		elevationVar: DefaultElevationVar,
		xDim:         "x",
		yDim:         "y",
		extraDims:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}

	elev, ok := ds.Vars[e.elevationVar]
	if !ok {
		return nil, errors.Errorf("variable %q not found in dataset", e.elevationVar)
	}

	if e.timeDim != "" {
		if _, ok := ds.Axes[e.timeDim]; !ok {
			return nil, errors.Errorf("coordinate %q missing in dataset", e.timeDim)
		}
		if !elev.HasDim(e.timeDim) {
			return nil, errors.Errorf("variable %q has no %q dimension", e.elevationVar, e.timeDim)
		}
	}
	for _, dim := range []string{e.xDim, e.yDim} {
		if _, ok := ds.Axes[dim]; !ok {
			return nil, errors.Errorf("coordinate %q missing in dataset", dim)
		}
		if !elev.HasDim(dim) {
			return nil, errors.Errorf("variable %q has no %q dimension", e.elevationVar, dim)
		}
	}

	e.colorVar = e.elevationVar

	for _, dim := range elev.Dims {
		if dim == e.xDim || dim == e.yDim || dim == e.timeDim {
			continue
		}
		e.extraDims[dim] = 0
		e.extraOrder = append(e.extraOrder, dim)
	}
	sort.Strings(e.extraOrder)

	return e, nil
}

func (e *Explorer) Dataset() *Dataset    { return e.ds }
func (e *Explorer) ElevationVar() string { return e.elevationVar }
func (e *Explorer) ColorVar() string     { return e.colorVar }
func (e *Explorer) XDim() string         { return e.xDim }
func (e *Explorer) YDim() string         { return e.yDim }
func (e *Explorer) TimeDim() string      { return e.timeDim }

// SetColorVar switches the active color variable. The variable must share
// the elevation variable's dimensions.
func (e *Explorer) SetColorVar(name string) error {
	if _, ok := e.DataVars()[name]; !ok {
		return errors.Errorf("invalid variable name: %q", name)
	}
	e.colorVar = name
	return nil
}

// DataVars returns the variables whose dimension set equals the elevation
// variable's, i.e. the variables that can drive the surface color.
func (e *Explorer) DataVars() map[string]*DataArray {
	if e.dataVars == nil {
		want := dimSet(e.ds.Vars[e.elevationVar].Dims)
		e.dataVars = make(map[string]*DataArray)
		for name, da := range e.ds.Vars {
			if dimSet(da.Dims) == want {
				e.dataVars[name] = da
			}
		}
	}
	return e.dataVars
}

func dimSet(dims []string) string {
	sorted := append([]string(nil), dims...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// NSteps returns the number of time steps, 0 when no time dimension is set.
func (e *Explorer) NSteps() int {
	if e.timeDim == "" {
		return 0
	}
	return e.ds.Sizes[e.timeDim]
}

func (e *Explorer) Step() int { return e.step }

// SetStep moves the current time step and invalidates the step view.
func (e *Explorer) SetStep(step int) {
	e.stepView = nil
	e.step = step
}

// TimeToStep returns the step whose time coordinate is nearest to t.
func (e *Explorer) TimeToStep(t float64) (int, error) {
	if e.timeDim == "" {
		return 0, errors.New("no time dimension configured")
	}
	return e.ds.NearestIndex(e.timeDim, t)
}

// CurrentTimeLabel formats the current step as "step / time-value".
func (e *Explorer) CurrentTimeLabel() string {
	label := ""
	if e.timeDim != "" {
		if ax, ok := e.ds.Axes[e.timeDim]; ok && len(ax.Levels) > 0 {
			label = ax.Levels[0].Label(e.step)
		}
	}
	return fmt.Sprintf("%d / %s", e.step, label)
}

// ExtraDims returns the current position along each extra dimension.
func (e *Explorer) ExtraDims() map[string]int {
	out := make(map[string]int, len(e.extraDims))
	for dim, idx := range e.extraDims {
		out[dim] = idx
	}
	return out
}

// ExtraDimOrder returns the extra dimensions in stable (sorted) order.
func (e *Explorer) ExtraDimOrder() []string {
	return append([]string(nil), e.extraOrder...)
}

// SetExtraDims updates positions along extra dimensions, invalidating both
// cached views. Unknown dimensions are rejected.
func (e *Explorer) SetExtraDims(sel map[string]int) error {
	var invalid []string
	for dim := range sel {
		if _, ok := e.extraDims[dim]; !ok {
			invalid = append(invalid, dim)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return errors.Errorf("invalid dimension(s): %s", strings.Join(invalid, ", "))
	}
	e.view = nil
	e.stepView = nil
	for dim, idx := range sel {
		e.extraDims[dim] = idx
	}
	return nil
}

// ExtraDimSizes returns the size of each extra dimension.
func (e *Explorer) ExtraDimSizes() map[string]int {
	sizes := make(map[string]int, len(e.extraDims))
	for dim := range e.extraDims {
		sizes[dim] = e.ds.Sizes[dim]
	}
	return sizes
}

// ExtraDimNames returns the coordinate level names of each extra dimension.
// A dimension without coordinate levels maps to its own name.
func (e *Explorer) ExtraDimNames() map[string][]string {
	names := make(map[string][]string, len(e.extraDims))
	for dim := range e.extraDims {
		ax, ok := e.ds.Axes[dim]
		if !ok || len(ax.Levels) == 0 {
			names[dim] = []string{dim}
			continue
		}
		lvls := make([]string, len(ax.Levels))
		for i, lvl := range ax.Levels {
			lvls[i] = lvl.Name
		}
		names[dim] = lvls
	}
	return names
}

// ExtraDimValues returns the formatted coordinate values of each extra
// dimension at its current position, one string per level. Dimensions
// without coordinates yield a single empty string.
func (e *Explorer) ExtraDimValues() map[string][]string {
	values := make(map[string][]string, len(e.extraDims))
	for dim, idx := range e.extraDims {
		ax, ok := e.ds.Axes[dim]
		if !ok || len(ax.Levels) == 0 {
			values[dim] = []string{""}
			continue
		}
		lvls := make([]string, len(ax.Levels))
		for i, lvl := range ax.Levels {
			lvls[i] = lvl.Label(idx)
		}
		values[dim] = lvls
	}
	return values
}

// View returns the dataset sliced at the current extra-dimension positions.
// The result is cached until an extra dimension moves.
func (e *Explorer) View() *Dataset {
	if e.view == nil {
		if len(e.extraDims) == 0 {
			e.view = e.ds
		} else {
			v, err := e.ds.Isel(e.extraDims)
			if err != nil {
				// positions are validated on the way in
				panic(err)
			}
			e.view = v
		}
	}
	return e.view
}

// StepView returns View sliced at the current time step. The result is
// cached until the step or an extra dimension moves.
func (e *Explorer) StepView() *Dataset {
	if e.stepView == nil {
		if e.timeDim == "" {
			e.stepView = e.View()
		} else {
			sv, err := e.View().Isel(map[string]int{e.timeDim: e.step})
			if err != nil {
				panic(err)
			}
			e.stepView = sv
		}
	}
	return e.stepView
}

func (e *Explorer) Elevation() *DataArray        { return e.ds.Vars[e.elevationVar] }
func (e *Explorer) Color() *DataArray            { return e.ds.Vars[e.colorVar] }
func (e *Explorer) CurrentElevation() *DataArray { return e.StepView().Vars[e.elevationVar] }
func (e *Explorer) CurrentColor() *DataArray     { return e.StepView().Vars[e.colorVar] }
