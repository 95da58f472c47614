package viz

import (
	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/widgets"
)

// DimensionExplorer exposes one slider per extra dimension, plus labels
// showing the coordinate value at the current position (one label per
// coordinate level).
type DimensionExplorer struct {
	explorer *dataset.Explorer

	Sliders     map[string]*widgets.IntSlider
	ValueLabels map[string][]*widgets.Label
	order       []string

	canvasCallback func()
}

func NewDimensionExplorer(e *dataset.Explorer, canvasCallback func()) *DimensionExplorer {
	de := &DimensionExplorer{
		explorer:       e,
		Sliders:        make(map[string]*widgets.IntSlider),
		ValueLabels:    make(map[string][]*widgets.Label),
		order:          e.ExtraDimOrder(),
		canvasCallback: canvasCallback,
	}

	sizes := e.ExtraDimSizes()
	values := e.ExtraDimValues()
	for _, dim := range de.order {
		dim := dim
		slider := widgets.NewIntSlider(0, 0, sizes[dim]-1)
		slider.Value.Observe(func(_, idx int) { de.moveDim(dim, idx) })
		de.Sliders[dim] = slider

		for _, v := range values[dim] {
			de.ValueLabels[dim] = append(de.ValueLabels[dim], widgets.NewLabel(v))
		}
	}
	return de
}

func (de *DimensionExplorer) moveDim(dim string, idx int) {
	if err := de.explorer.SetExtraDims(map[string]int{dim: idx}); err != nil {
		// slider bounds match the dimension, so this cannot fail
		panic(err)
	}
	values := de.explorer.ExtraDimValues()
	for d, labels := range de.ValueLabels {
		for i, label := range labels {
			label.Value.Set(values[d][i])
		}
	}
	if de.canvasCallback != nil {
		de.canvasCallback()
	}
}

func (de *DimensionExplorer) Name() string { return "dimensions" }

func (de *DimensionExplorer) LinkableTraits() []NamedTrait {
	traits := make([]NamedTrait, 0, len(de.order))
	for _, dim := range de.order {
		traits = append(traits, NamedTrait{Name: dim, Trait: de.Sliders[dim].Value})
	}
	return traits
}

// Dims returns the extra dimensions in display order.
func (de *DimensionExplorer) Dims() []string {
	return append([]string(nil), de.order...)
}
