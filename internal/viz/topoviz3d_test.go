package viz

import (
	"testing"

	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/scene"
)

func newViewer(t *testing.T) *TopoViz3d {
	t.Helper()
	tv, err := NewTopoViz3d(fixtureDataset(t), dataset.WithTimeDim("time"))
	if err != nil {
		t.Fatalf("NewTopoViz3d: %v", err)
	}
	return tv
}

func TestTopoViz3d_Components(t *testing.T) {
	tv := newViewer(t)

	for _, name := range []string{"timestepper", "dimensions", "coloring", "vertical_exaggeration", "background_color", "canvas"} {
		if tv.Component(name) == nil {
			t.Errorf("component %q missing", name)
		}
	}
}

func TestTopoViz3d_SceneSetup(t *testing.T) {
	tv := newViewer(t)
	e := tv.Explorer()

	elev := e.Elevation()
	if tv.Scene.IsoColor.Min.Get() != elev.Min() {
		t.Errorf("isocolor min = %v, want %v", tv.Scene.IsoColor.Min.Get(), elev.Min())
	}
	if tv.Scene.IsoColor.Max.Get() != elev.Max() {
		t.Errorf("isocolor max = %v, want %v", tv.Scene.IsoColor.Max.Get(), elev.Max())
	}
	if tv.Scene.Mesh.NX != 3 || tv.Scene.Mesh.NY != 3 {
		t.Errorf("mesh grid = %dx%d", tv.Scene.Mesh.NX, tv.Scene.Mesh.NY)
	}
	if len(tv.Scene.Mesh.Vertices) != 9 {
		t.Errorf("mesh has %d vertices", len(tv.Scene.Mesh.Vertices))
	}
}

func TestTopoViz3d_StepUpdatesComponents(t *testing.T) {
	tv := newViewer(t)

	tv.TimeStepper().GoToStep(2)

	want := tv.Explorer().CurrentElevation().Values
	warp := tv.Scene.Mesh.Data[scene.ComponentWarp].Values
	for i := range want {
		if warp[i] != want[i] {
			t.Fatalf("warp[%d] = %v, want %v", i, warp[i], want[i])
		}
	}
}

func TestTopoViz3d_ExaggerationReachesScene(t *testing.T) {
	tv := newViewer(t)

	tv.VerticalExaggeration().SetFactor(5)
	if tv.Scene.Warp.Factor.Get() != 5 {
		t.Errorf("warp factor = %v, want 5", tv.Scene.Warp.Factor.Get())
	}
}

func TestTopoViz3d_ColorLimitsReachScene(t *testing.T) {
	tv := newViewer(t)

	tv.Coloring().SetColorLimits(10, 100)
	if tv.Scene.IsoColor.Min.Get() != 10 || tv.Scene.IsoColor.Max.Get() != 100 {
		t.Errorf("isocolor range = [%v, %v], want [10, 100]",
			tv.Scene.IsoColor.Min.Get(), tv.Scene.IsoColor.Max.Get())
	}
}

func TestTopoViz3d_ColorVarChangeResetsRange(t *testing.T) {
	tv := newViewer(t)

	if err := tv.Coloring().SetColorVar("other_var"); err != nil {
		t.Fatalf("SetColorVar: %v", err)
	}
	other := tv.Explorer().Dataset().Vars["other_var"]
	if tv.Scene.IsoColor.Min.Get() != other.Min() || tv.Scene.IsoColor.Max.Get() != other.Max() {
		t.Errorf("isocolor range = [%v, %v], want variable range",
			tv.Scene.IsoColor.Min.Get(), tv.Scene.IsoColor.Max.Get())
	}
	// color component now carries the new variable
	got := tv.Scene.Mesh.Data[scene.ComponentColor].Values[0]
	if got != 2 {
		t.Errorf("color component value = %v, want 2", got)
	}
}

func TestTopoViz3d_ColormapAndScale(t *testing.T) {
	tv := newViewer(t)

	if tv.Scene.IsoColor.Colormap.Get() != "viridis" {
		t.Errorf("default colormap = %q", tv.Scene.IsoColor.Colormap.Get())
	}
	if err := tv.Coloring().SetColormap("cividis"); err != nil {
		t.Fatalf("SetColormap: %v", err)
	}
	if tv.Scene.IsoColor.Colormap.Get() != "cividis" {
		t.Errorf("colormap = %q, want cividis", tv.Scene.IsoColor.Colormap.Get())
	}

	tv.Coloring().SetColorScale(true)
	if !tv.Scene.IsoColor.LogScale.Get() {
		t.Error("log scale not applied to scene")
	}
	tv.Coloring().SetColorScale(false)
	if tv.Scene.IsoColor.LogScale.Get() {
		t.Error("linear scale not applied to scene")
	}
}

func TestTopoViz3d_BackgroundColor(t *testing.T) {
	tv := newViewer(t)

	tv.BackgroundColor().SetColor("black")
	if tv.Scene.Background.Get() != "black" {
		t.Errorf("scene background = %q, want black", tv.Scene.Background.Get())
	}
}

func TestTopoViz3d_CanvasLinkableTraits(t *testing.T) {
	tv := newViewer(t)

	traits := tv.Component("canvas").LinkableTraits()
	if len(traits) != 2 {
		t.Fatalf("canvas exposes %d traits, want 2", len(traits))
	}
	if traits[0].Name != "azimuth" || traits[1].Name != "zoom" {
		t.Errorf("canvas traits = %v, %v", traits[0].Name, traits[1].Name)
	}
}
