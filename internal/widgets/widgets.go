// Package widgets provides the interactive controls that viewer components
// are built from. Each control owns one or more traits; linking two controls
// means linking their traits.
package widgets

import (
	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/trait"
)

// IntSlider selects an integer in [Min, Max].
type IntSlider struct {
	Value    *trait.Trait[int]
	Min, Max int
}

func NewIntSlider(value, min, max int) *IntSlider {
	s := &IntSlider{Value: trait.New(clampInt(value, min, max)), Min: min, Max: max}
	return s
}

// SetValue clamps v to the slider range before storing it.
func (s *IntSlider) SetValue(v int) {
	s.Value.Set(clampInt(v, s.Min, s.Max))
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// FloatSlider selects a float in [Min, Max] with a display step.
type FloatSlider struct {
	Value    *trait.Trait[float64]
	Min, Max float64
	Step     float64
}

func NewFloatSlider(value, min, max, step float64) *FloatSlider {
	return &FloatSlider{Value: trait.New(clampFloat(value, min, max)), Min: min, Max: max, Step: step}
}

func (s *FloatSlider) SetValue(v float64) {
	s.Value.Set(clampFloat(v, s.Min, s.Max))
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Label is a read-only text display.
type Label struct {
	Value *trait.Trait[string]
}

func NewLabel(text string) *Label {
	return &Label{Value: trait.New(text)}
}

// Dropdown selects one of a fixed set of options.
type Dropdown struct {
	Value   *trait.Trait[string]
	Options []string
}

func NewDropdown(value string, options []string) (*Dropdown, error) {
	d := &Dropdown{Value: trait.New(""), Options: options}
	if err := d.SetValue(value); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dropdown) SetValue(v string) error {
	for _, opt := range d.Options {
		if opt == v {
			d.Value.Set(v)
			return nil
		}
	}
	return errors.Errorf("%q is not a valid option", v)
}

// Toggle is an on/off switch.
type Toggle struct {
	Value *trait.Trait[bool]
}

func NewToggle(value bool) *Toggle {
	return &Toggle{Value: trait.New(value)}
}

// Button invokes click handlers.
type Button struct {
	handlers []func()
}

func NewButton() *Button { return &Button{} }

func (b *Button) OnClick(fn func()) { b.handlers = append(b.handlers, fn) }

func (b *Button) Click() {
	for _, fn := range b.handlers {
		fn()
	}
}

// ColorPicker selects a color by name or hex string.
type ColorPicker struct {
	Value *trait.Trait[string]
}

func NewColorPicker(value string) *ColorPicker {
	return &ColorPicker{Value: trait.New(value)}
}

// FloatInput is a free-form numeric input.
type FloatInput struct {
	Value *trait.Trait[float64]
}

func NewFloatInput(value float64) *FloatInput {
	return &FloatInput{Value: trait.New(value)}
}
