package viz

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fastscape-lem/topoviz/internal/dataset"
)

// VizApp is a viewer application instance. It owns a private copy of the
// loaded dataset and a registry of named components. Subtypes hook into
// canvas lifecycle through the CanvasReset/StepUpdate callbacks.
type VizApp struct {
	explorer   *dataset.Explorer
	components map[string]Component
	order      []string

	// CanvasReset rebuilds the rendering state after a dataset load.
	CanvasReset func()
	// StepUpdate refreshes the rendering state after the step or an extra
	// dimension moved.
	StepUpdate func()

	log *logrus.Entry
}

func NewVizApp() *VizApp {
	return &VizApp{
		components: make(map[string]Component),
		log:        logrus.WithField("component", "vizapp"),
	}
}

// Load copies the dataset, validates it and rebuilds all components. The
// app never aliases the caller's dataset.
func (a *VizApp) Load(ds *dataset.Dataset, opts ...dataset.InitOption) error {
	if ds == nil {
		return errors.New("Load requires a dataset")
	}
	e, err := dataset.NewExplorer(ds.Copy(), opts...)
	if err != nil {
		return err
	}
	a.explorer = e
	a.components = make(map[string]Component)
	a.order = nil

	if a.CanvasReset != nil {
		a.CanvasReset()
	}
	if e.NSteps() > 0 {
		a.Register(NewTimeStepper(e, a.onStep))
	}
	if len(e.ExtraDims()) > 0 {
		a.Register(NewDimensionExplorer(e, a.onStep))
	}

	a.log.WithFields(logrus.Fields{
		"vars":  len(e.DataVars()),
		"steps": e.NSteps(),
		"extra": len(e.ExtraDims()),
	}).Info("dataset loaded")
	return nil
}

func (a *VizApp) onStep() {
	if a.StepUpdate != nil {
		a.StepUpdate()
	}
}

// Explorer returns the exploration state, nil before the first Load.
func (a *VizApp) Explorer() *dataset.Explorer { return a.explorer }

// Register adds a component to the app registry.
func (a *VizApp) Register(c Component) {
	if _, exists := a.components[c.Name()]; !exists {
		a.order = append(a.order, c.Name())
	}
	a.components[c.Name()] = c
}

// Component returns a registered component by name, nil when absent.
func (a *VizApp) Component(name string) Component { return a.components[name] }

// ComponentNames lists registered components in registration order.
func (a *VizApp) ComponentNames() []string {
	return append([]string(nil), a.order...)
}

// TimeStepper returns the timestepper component, nil when the dataset has
// no time dimension.
func (a *VizApp) TimeStepper() *TimeStepper {
	ts, _ := a.components["timestepper"].(*TimeStepper)
	return ts
}

// Dimensions returns the dimension explorer, nil without extra dims.
func (a *VizApp) Dimensions() *DimensionExplorer {
	de, _ := a.components["dimensions"].(*DimensionExplorer)
	return de
}

// SharedTraits returns the app's linkable traits keyed "component/trait",
// the state a link hub mirrors between processes.
func (a *VizApp) SharedTraits() map[string]NamedTrait {
	shared := make(map[string]NamedTrait)
	for _, name := range a.ComponentNames() {
		for _, nt := range a.Component(name).LinkableTraits() {
			shared[fmt.Sprintf("%s/%s", name, nt.Name)] = nt
		}
	}
	return shared
}
