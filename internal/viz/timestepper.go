package viz

import (
	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/trait"
	"github.com/fastscape-lem/topoviz/internal/widgets"
)

// TimeStepper drives the time dimension: a play control, a speed slider, a
// step slider and a current-time label. The play control and the step
// slider are linked, so stepping from either side moves both.
type TimeStepper struct {
	explorer *dataset.Explorer

	Play   *widgets.Play
	Speed  *widgets.IntSlider
	Slider *widgets.IntSlider
	Label  *widgets.Label

	canvasCallback func()
}

func NewTimeStepper(e *dataset.Explorer, canvasCallback func()) *TimeStepper {
	last := e.NSteps() - 1
	ts := &TimeStepper{
		explorer:       e,
		Play:           widgets.NewPlay(0, 0, last, widgets.SpeedInterval(widgets.DefaultSpeed)),
		Speed:          widgets.NewIntSlider(widgets.DefaultSpeed, widgets.SpeedMin, widgets.SpeedMax),
		Slider:         widgets.NewIntSlider(0, 0, last),
		Label:          widgets.NewLabel(e.CurrentTimeLabel()),
		canvasCallback: canvasCallback,
	}

	trait.Bind(ts.Play.Value, ts.Slider.Value)

	ts.Slider.Value.Observe(func(_, step int) {
		e.SetStep(step)
		ts.Label.Value.Set(e.CurrentTimeLabel())
		if ts.canvasCallback != nil {
			ts.canvasCallback()
		}
	})
	ts.Speed.Value.Observe(func(_, speed int) {
		ts.Play.Interval = widgets.SpeedInterval(speed)
	})

	return ts
}

func (ts *TimeStepper) Name() string { return "timestepper" }

func (ts *TimeStepper) LinkableTraits() []NamedTrait {
	return []NamedTrait{
		{Name: "slider", Trait: ts.Slider.Value},
		{Name: "play", Trait: ts.Play.Value},
		{Name: "speed", Trait: ts.Speed.Value},
	}
}

// GoToStep moves playback to the given step.
func (ts *TimeStepper) GoToStep(step int) {
	ts.Slider.SetValue(step)
}

// GoToTime moves playback to the step nearest the given time value.
func (ts *TimeStepper) GoToTime(t float64) error {
	step, err := ts.explorer.TimeToStep(t)
	if err != nil {
		return err
	}
	ts.Slider.SetValue(step)
	return nil
}
