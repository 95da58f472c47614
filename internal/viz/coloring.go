package viz

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/widgets"
)

// Coloring controls which variable colors the surface and how its values
// map to the color range: variable and colormap dropdowns, min/max limits,
// rescale buttons and a log-scale toggle.
type Coloring struct {
	explorer *dataset.Explorer

	VarDropdown       *widgets.Dropdown
	ColormapDropdown  *widgets.Dropdown
	MinInput          *widgets.FloatInput
	MaxInput          *widgets.FloatInput
	RescaleButton     *widgets.Button
	RescaleStepButton *widgets.Button
	LogScaleToggle    *widgets.Toggle

	colorVars []string

	varCallback   func()
	rangeCallback func(da *dataset.DataArray)
	scaleCallback func(log bool)
}

// ColoringCallbacks are invoked when the canvas must follow a change of
// color variable, color range or color scale.
type ColoringCallbacks struct {
	Var   func()
	Range func(da *dataset.DataArray)
	Scale func(log bool)
}

func NewColoring(e *dataset.Explorer, colormaps []string, defaultColormap string, cb ColoringCallbacks) (*Coloring, error) {
	colorVars := make([]string, 0, len(e.DataVars()))
	for name := range e.DataVars() {
		colorVars = append(colorVars, name)
	}
	sort.Strings(colorVars)

	varDropdown, err := widgets.NewDropdown(e.ColorVar(), colorVars)
	if err != nil {
		return nil, errors.Wrap(err, "color variable dropdown")
	}
	cmDropdown, err := widgets.NewDropdown(defaultColormap, colormaps)
	if err != nil {
		return nil, errors.Wrap(err, "colormap dropdown")
	}

	da := e.Color()
	c := &Coloring{
		explorer:          e,
		VarDropdown:       varDropdown,
		ColormapDropdown:  cmDropdown,
		MinInput:          widgets.NewFloatInput(da.Min()),
		MaxInput:          widgets.NewFloatInput(da.Max()),
		RescaleButton:     widgets.NewButton(),
		RescaleStepButton: widgets.NewButton(),
		LogScaleToggle:    widgets.NewToggle(false),
		colorVars:         colorVars,
		varCallback:       cb.Var,
		rangeCallback:     cb.Range,
		scaleCallback:     cb.Scale,
	}

	c.VarDropdown.Value.Observe(func(_, name string) { c.changeVar(name) })
	c.LogScaleToggle.Value.Observe(func(_, log bool) {
		if c.scaleCallback != nil {
			c.scaleCallback(log)
		}
	})
	c.RescaleButton.OnClick(func() { c.rescale(c.explorer.Color()) })
	c.RescaleStepButton.OnClick(func() { c.rescale(c.explorer.CurrentColor()) })

	return c, nil
}

func (c *Coloring) changeVar(name string) {
	if err := c.explorer.SetColorVar(name); err != nil {
		panic(err) // dropdown options mirror the data vars
	}
	if c.varCallback != nil {
		c.varCallback()
	}
	c.rescale(c.explorer.Color())
	// switching variable resets the scale to linear
	c.LogScaleToggle.Value.Set(false)
}

func (c *Coloring) rescale(da *dataset.DataArray) {
	c.MinInput.Value.Set(da.Min())
	c.MaxInput.Value.Set(da.Max())
	if c.rangeCallback != nil {
		c.rangeCallback(da)
	}
}

func (c *Coloring) Name() string { return "coloring" }

func (c *Coloring) LinkableTraits() []NamedTrait { return nil }

// ColorVars lists the variables that can drive the surface color.
func (c *Coloring) ColorVars() []string {
	return append([]string(nil), c.colorVars...)
}

// SetColorVar switches the active color variable.
func (c *Coloring) SetColorVar(name string) error {
	if err := c.VarDropdown.SetValue(name); err != nil {
		return errors.Errorf("invalid variable name: %q", name)
	}
	return nil
}

// SetColormap switches the active colormap.
func (c *Coloring) SetColormap(name string) error {
	return c.ColormapDropdown.SetValue(name)
}

// SetColorLimits sets the color range explicitly.
func (c *Coloring) SetColorLimits(min, max float64) {
	c.MinInput.Value.Set(min)
	c.MaxInput.Value.Set(max)
}

// SetColorScale toggles logarithmic color scaling.
func (c *Coloring) SetColorScale(log bool) {
	c.LogScaleToggle.Value.Set(log)
}
