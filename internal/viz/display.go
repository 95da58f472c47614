package viz

import (
	"github.com/fastscape-lem/topoviz/internal/scene"
	"github.com/fastscape-lem/topoviz/internal/trait"
	"github.com/fastscape-lem/topoviz/internal/widgets"
)

// VerticalExaggeration scales surface heights through a factor slider.
type VerticalExaggeration struct {
	Slider *widgets.FloatSlider
}

func NewVerticalExaggeration(canvasCallback func(factor float64)) *VerticalExaggeration {
	ve := &VerticalExaggeration{Slider: widgets.NewFloatSlider(1.0, 0.0, 20.0, 0.1)}
	ve.Slider.Value.Observe(func(_, factor float64) {
		if canvasCallback != nil {
			canvasCallback(factor)
		}
	})
	return ve
}

func (ve *VerticalExaggeration) Name() string { return "vertical_exaggeration" }

func (ve *VerticalExaggeration) LinkableTraits() []NamedTrait {
	return []NamedTrait{{Name: "factor", Trait: ve.Slider.Value}}
}

func (ve *VerticalExaggeration) SetFactor(factor float64) {
	ve.Slider.SetValue(factor)
}

// BackgroundColor binds a color picker to the scene background.
type BackgroundColor struct {
	Picker *widgets.ColorPicker
}

func NewBackgroundColor(sc *scene.Scene) *BackgroundColor {
	bc := &BackgroundColor{Picker: widgets.NewColorPicker(sc.Background.Get())}
	trait.Bind(bc.Picker.Value, sc.Background)
	return bc
}

func (bc *BackgroundColor) Name() string { return "background_color" }

func (bc *BackgroundColor) LinkableTraits() []NamedTrait { return nil }

func (bc *BackgroundColor) SetColor(color string) {
	bc.Picker.Value.Set(color)
}

// Canvas wraps the terrain scene as a component so its camera can be
// linked between viewer instances.
type Canvas struct {
	Scene *scene.Scene
}

func NewCanvas(sc *scene.Scene) *Canvas { return &Canvas{Scene: sc} }

func (c *Canvas) Name() string { return "canvas" }

func (c *Canvas) LinkableTraits() []NamedTrait {
	return []NamedTrait{
		{Name: "azimuth", Trait: c.Scene.Camera.Azimuth},
		{Name: "zoom", Trait: c.Scene.Camera.Zoom},
	}
}
