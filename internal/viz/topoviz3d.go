package viz

import (
	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/colormap"
	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/mesh"
	"github.com/fastscape-lem/topoviz/internal/scene"
	"github.com/fastscape-lem/topoviz/internal/trait"
)

// TopoViz3d is the terrain viewer: a VizApp whose canvas is a warped,
// colored surface built from the elevation variable.
type TopoViz3d struct {
	VizApp
	Scene *scene.Scene
}

// NewTopoViz3d builds a terrain viewer and, when ds is non-nil, loads it.
func NewTopoViz3d(ds *dataset.Dataset, opts ...dataset.InitOption) (*TopoViz3d, error) {
	tv := &TopoViz3d{VizApp: *NewVizApp()}
	tv.CanvasReset = tv.resetCanvas
	tv.StepUpdate = tv.updateStep
	if ds != nil {
		if err := tv.Load(ds, opts...); err != nil {
			return nil, err
		}
	}
	return tv, nil
}

func (tv *TopoViz3d) resetCanvas() {
	e := tv.Explorer()
	ds := e.Dataset()

	xs := ds.CoordValues(e.XDim())
	ys := ds.CoordValues(e.YDim())
	vertices, triangles := mesh.Triangulate(xs, ys)
	pm := scene.NewPolyMesh(vertices, triangles, len(xs), len(ys))

	elev := e.Elevation()
	min, max := elev.Min(), elev.Max()
	current := e.CurrentElevation().Values

	// range errors cannot happen here: the components are vertex-sized by
	// construction
	if err := pm.SetComponent(scene.ComponentColor, current, min, max); err != nil {
		panic(err)
	}
	if err := pm.SetComponent(scene.ComponentWarp, current, min, max); err != nil {
		panic(err)
	}

	iso := scene.NewIsoColor(scene.ComponentColor, min, max)
	warp := scene.NewWarpByScalar(scene.ComponentWarp, 1)
	tv.Scene = scene.New(pm, iso, warp)

	tv.resetDisplayProperties()
}

func (tv *TopoViz3d) resetDisplayProperties() {
	e := tv.Explorer()

	coloring, err := NewColoring(e, colormap.Names(), colormap.Default, ColoringCallbacks{
		Var:   tv.updateSceneColorVar,
		Range: tv.updateSceneColorRange,
		Scale: func(log bool) { tv.Scene.IsoColor.LogScale.Set(log) },
	})
	if err != nil {
		// colormap.Names always contains the default
		panic(errors.Wrap(err, "coloring component"))
	}
	trait.Bind(coloring.MinInput.Value, tv.Scene.IsoColor.Min)
	trait.Bind(coloring.MaxInput.Value, tv.Scene.IsoColor.Max)
	trait.Bind(coloring.ColormapDropdown.Value, tv.Scene.IsoColor.Colormap)
	tv.Register(coloring)

	tv.Register(NewVerticalExaggeration(func(factor float64) {
		tv.Scene.Warp.Factor.Set(factor)
	}))
	tv.Register(NewBackgroundColor(tv.Scene))
	tv.Register(NewCanvas(tv.Scene))
}

func (tv *TopoViz3d) updateStep() {
	e := tv.Explorer()
	tv.mustUpdate(scene.ComponentWarp, e.CurrentElevation().Values)
	tv.mustUpdate(scene.ComponentColor, e.CurrentColor().Values)
}

func (tv *TopoViz3d) updateSceneColorVar() {
	tv.mustUpdate(scene.ComponentColor, tv.Explorer().CurrentColor().Values)
}

func (tv *TopoViz3d) updateSceneColorRange(da *dataset.DataArray) {
	tv.Scene.IsoColor.Min.Set(da.Min())
	tv.Scene.IsoColor.Max.Set(da.Max())
}

func (tv *TopoViz3d) mustUpdate(component string, values []float64) {
	if err := tv.Scene.Mesh.UpdateValues(component, values); err != nil {
		panic(err)
	}
}

// Coloring returns the coloring component.
func (tv *TopoViz3d) Coloring() *Coloring {
	c, _ := tv.Component("coloring").(*Coloring)
	return c
}

// VerticalExaggeration returns the vertical exaggeration component.
func (tv *TopoViz3d) VerticalExaggeration() *VerticalExaggeration {
	ve, _ := tv.Component("vertical_exaggeration").(*VerticalExaggeration)
	return ve
}

// BackgroundColor returns the background color component.
func (tv *TopoViz3d) BackgroundColor() *BackgroundColor {
	bc, _ := tv.Component("background_color").(*BackgroundColor)
	return bc
}
