package viz

import (
	"reflect"
	"testing"
	"time"

	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/widgets"
)

func TestTimeStepper(t *testing.T) {
	e := fixtureExplorer(t)
	calls, cb := counterCallback()
	ts := NewTimeStepper(e, cb)

	if ts.Label.Value.Get() != "0 / 0" {
		t.Errorf("label = %q", ts.Label.Value.Get())
	}
	if ts.Slider.Max != 2 || ts.Play.Max != 2 {
		t.Errorf("slider max = %d, play max = %d, want 2", ts.Slider.Max, ts.Play.Max)
	}

	names := make([]string, 0)
	for _, nt := range ts.LinkableTraits() {
		names = append(names, nt.Name)
	}
	if !reflect.DeepEqual(names, []string{"slider", "play", "speed"}) {
		t.Errorf("linkable traits = %v", names)
	}

	ts.Slider.SetValue(1)
	if e.Step() != 1 {
		t.Errorf("explorer step = %d, want 1", e.Step())
	}
	if ts.Label.Value.Get() != "1 / 100" {
		t.Errorf("label = %q, want %q", ts.Label.Value.Get(), "1 / 100")
	}
	if *calls != 1 {
		t.Errorf("canvas callback called %d times, want 1", *calls)
	}

	// play is linked to the slider
	if ts.Play.Value.Get() != 1 {
		t.Errorf("play value = %d, want 1", ts.Play.Value.Get())
	}

	// speed changes retune the play interval
	before := ts.Play.Interval
	ts.Speed.SetValue(widgets.SpeedMax)
	if ts.Play.Interval == before {
		t.Error("play interval unchanged after speed change")
	}

	ts.GoToStep(2)
	if ts.Slider.Value.Get() != 2 {
		t.Errorf("GoToStep: slider = %d", ts.Slider.Value.Get())
	}
	if err := ts.GoToTime(99); err != nil {
		t.Fatalf("GoToTime: %v", err)
	}
	if ts.Slider.Value.Get() != 1 {
		t.Errorf("GoToTime: slider = %d, want 1", ts.Slider.Value.Get())
	}
}

func TestTimeStepper_PlaybackAdvancesStep(t *testing.T) {
	e := fixtureExplorer(t)
	ts := NewTimeStepper(e, nil)

	ts.Play.Start()
	now := time.Unix(0, 0)
	ts.Play.Advance(now)
	ts.Play.Advance(now.Add(time.Second))

	if e.Step() != 1 {
		t.Errorf("explorer step = %d after playback tick, want 1", e.Step())
	}
}

func TestDimensionExplorer(t *testing.T) {
	e := fixtureExplorer(t)
	calls, cb := counterCallback()
	de := NewDimensionExplorer(e, cb)

	if !reflect.DeepEqual(de.Dims(), []string{"batch"}) {
		t.Fatalf("dims = %v", de.Dims())
	}
	if de.Sliders["batch"].Max != 2 {
		t.Errorf("batch slider max = %d, want 2", de.Sliders["batch"].Max)
	}
	if de.ValueLabels["batch"][0].Value.Get() != "1" {
		t.Errorf("batch label = %q", de.ValueLabels["batch"][0].Value.Get())
	}

	de.Sliders["batch"].SetValue(1)
	if de.ValueLabels["batch"][0].Value.Get() != "2" {
		t.Errorf("batch label = %q after move", de.ValueLabels["batch"][0].Value.Get())
	}
	if e.ExtraDims()["batch"] != 1 {
		t.Errorf("explorer batch position = %d", e.ExtraDims()["batch"])
	}
	if *calls != 1 {
		t.Errorf("canvas callback called %d times, want 1", *calls)
	}

	traits := de.LinkableTraits()
	if len(traits) != 1 || traits[0].Name != "batch" {
		t.Errorf("linkable traits = %v", traits)
	}
}

func TestColoring(t *testing.T) {
	e := fixtureExplorer(t)
	varCalls, varCb := counterCallback()
	rangeCalls := 0
	scaleCalls := 0

	c, err := NewColoring(e, []string{"c1", "c2"}, "c1", ColoringCallbacks{
		Var:   varCb,
		Range: func(_ *dataset.DataArray) { rangeCalls++ },
		Scale: func(_ bool) { scaleCalls++ },
	})
	if err != nil {
		t.Fatalf("NewColoring: %v", err)
	}

	if !reflect.DeepEqual(c.ColorVars(), []string{"other_var", "topography__elevation"}) {
		t.Errorf("color vars = %v", c.ColorVars())
	}
	if c.VarDropdown.Value.Get() != "topography__elevation" {
		t.Errorf("var dropdown = %q", c.VarDropdown.Value.Get())
	}
	if c.ColormapDropdown.Value.Get() != "c1" {
		t.Errorf("colormap dropdown = %q", c.ColormapDropdown.Value.Get())
	}
	elev := e.Dataset().Vars["topography__elevation"]
	if c.MinInput.Value.Get() != elev.Min() || c.MaxInput.Value.Get() != elev.Max() {
		t.Errorf("limits = [%v, %v]", c.MinInput.Value.Get(), c.MaxInput.Value.Get())
	}

	// log toggle fires the scale callback
	c.LogScaleToggle.Value.Set(true)
	if scaleCalls != 1 {
		t.Errorf("scale callback called %d times, want 1", scaleCalls)
	}

	// changing the color var rescales and resets the log toggle
	if err := c.VarDropdown.SetValue("other_var"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if e.ColorVar() != "other_var" {
		t.Errorf("explorer color var = %q", e.ColorVar())
	}
	if *varCalls != 1 || rangeCalls != 1 {
		t.Errorf("var/range callbacks = %d/%d, want 1/1", *varCalls, rangeCalls)
	}
	if c.LogScaleToggle.Value.Get() {
		t.Error("log toggle should reset to false")
	}
	if scaleCalls != 2 {
		t.Errorf("scale callback called %d times, want 2", scaleCalls)
	}
	if c.MinInput.Value.Get() != 2 || c.MaxInput.Value.Get() != 2 {
		t.Errorf("limits after var change = [%v, %v], want [2, 2]", c.MinInput.Value.Get(), c.MaxInput.Value.Get())
	}

	// rescale buttons
	c.RescaleButton.Click()
	if rangeCalls != 2 {
		t.Errorf("range callbacks after rescale = %d, want 2", rangeCalls)
	}
	c.RescaleStepButton.Click()
	if rangeCalls != 3 {
		t.Errorf("range callbacks after step rescale = %d, want 3", rangeCalls)
	}

	// explicit setters
	if err := c.SetColorVar("topography__elevation"); err != nil {
		t.Errorf("SetColorVar: %v", err)
	}
	if err := c.SetColorVar("not_a_var"); err == nil {
		t.Error("expected error for invalid variable name")
	}
	if err := c.SetColormap("c2"); err != nil {
		t.Errorf("SetColormap: %v", err)
	}
	if err := c.SetColormap("not_a_colormap"); err == nil {
		t.Error("expected error for invalid colormap")
	}
	c.SetColorLimits(1, 2)
	if c.MinInput.Value.Get() != 1 || c.MaxInput.Value.Get() != 2 {
		t.Errorf("limits = [%v, %v], want [1, 2]", c.MinInput.Value.Get(), c.MaxInput.Value.Get())
	}
	c.SetColorScale(true)
	if scaleCalls != 3 {
		t.Errorf("scale callback called %d times, want 3", scaleCalls)
	}
}

func TestVerticalExaggeration(t *testing.T) {
	var got float64
	ve := NewVerticalExaggeration(func(factor float64) { got = factor })

	ve.Slider.SetValue(10)
	if got != 10 {
		t.Errorf("callback factor = %v, want 10", got)
	}

	ve.SetFactor(5)
	if ve.Slider.Value.Get() != 5 {
		t.Errorf("slider = %v, want 5", ve.Slider.Value.Get())
	}

	traits := ve.LinkableTraits()
	if len(traits) != 1 || traits[0].Name != "factor" {
		t.Errorf("linkable traits = %v", traits)
	}
}

func TestVizApp_Load(t *testing.T) {
	app := NewVizApp()
	if app.Explorer() != nil {
		t.Error("fresh app should have no explorer")
	}
	if err := app.Load(nil); err == nil {
		t.Error("expected error loading nil dataset")
	}

	ds := fixtureDataset(t)
	if err := app.Load(ds, dataset.WithTimeDim("time")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// the app must own a copy
	if app.Explorer().Dataset() == ds {
		t.Error("app aliases the caller's dataset")
	}
	if app.TimeStepper() == nil {
		t.Error("timestepper component missing")
	}
	if app.Dimensions() == nil {
		t.Error("dimensions component missing")
	}

	// mutating the source must not leak into the app
	ds.Vars["topography__elevation"].Values[0] = 1e9
	if app.Explorer().Dataset().Vars["topography__elevation"].Values[0] == 1e9 {
		t.Error("dataset copy shares value storage")
	}
}
