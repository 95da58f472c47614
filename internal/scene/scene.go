// Package scene models the terrain rendering state: a triangulated surface
// with named scalar components, a color transfer function and a vertical
// warp. Renderers read this state; widgets mutate it.
package scene

import (
	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/colormap"
	"github.com/fastscape-lem/topoviz/internal/mesh"
	"github.com/fastscape-lem/topoviz/internal/trait"
)

// Component names used by the terrain scene.
const (
	ComponentColor = "color"
	ComponentWarp  = "warp"
)

// Component is a per-vertex scalar field with its value range.
type Component struct {
	Name     string
	Values   []float64
	Min, Max float64
}

// PolyMesh is a triangulated grid surface carrying scalar components. NX
// and NY keep the originating grid shape so renderers can sample it as an
// image.
type PolyMesh struct {
	Vertices  []mesh.Vertex
	Triangles []mesh.Triangle
	NX, NY    int
	Data      map[string]*Component
}

func NewPolyMesh(vertices []mesh.Vertex, triangles []mesh.Triangle, nx, ny int) *PolyMesh {
	return &PolyMesh{
		Vertices:  vertices,
		Triangles: triangles,
		NX:        nx,
		NY:        ny,
		Data:      make(map[string]*Component),
	}
}

// SetComponent stores a scalar component, keeping the recorded range when
// one was set before with the same length.
func (m *PolyMesh) SetComponent(name string, values []float64, min, max float64) error {
	if len(values) != len(m.Vertices) {
		return errors.Errorf("component %q: %d values for %d vertices", name, len(values), len(m.Vertices))
	}
	m.Data[name] = &Component{Name: name, Values: values, Min: min, Max: max}
	return nil
}

// UpdateValues replaces a component's values without touching its range.
func (m *PolyMesh) UpdateValues(name string, values []float64) error {
	comp, ok := m.Data[name]
	if !ok {
		return errors.Errorf("unknown component %q", name)
	}
	if len(values) != len(m.Vertices) {
		return errors.Errorf("component %q: %d values for %d vertices", name, len(values), len(m.Vertices))
	}
	comp.Values = values
	return nil
}

// IsoColor is the color transfer function applied to one mesh component.
type IsoColor struct {
	Input    string
	Min      *trait.Trait[float64]
	Max      *trait.Trait[float64]
	Colormap *trait.Trait[string]
	LogScale *trait.Trait[bool]
}

func NewIsoColor(input string, min, max float64) *IsoColor {
	return &IsoColor{
		Input:    input,
		Min:      trait.New(min),
		Max:      trait.New(max),
		Colormap: trait.New(colormap.Default),
		LogScale: trait.New(false),
	}
}

// WarpByScalar scales vertex heights by a mesh component.
type WarpByScalar struct {
	Input  string
	Factor *trait.Trait[float64]
}

func NewWarpByScalar(input string, factor float64) *WarpByScalar {
	return &WarpByScalar{Input: input, Factor: trait.New(factor)}
}

// Camera is the view orientation, linkable between scenes.
type Camera struct {
	Azimuth *trait.Trait[float64]
	Zoom    *trait.Trait[float64]
}

func NewCamera() *Camera {
	return &Camera{Azimuth: trait.New(0.0), Zoom: trait.New(1.0)}
}

// Scene ties the mesh, coloring, warp and view state together.
type Scene struct {
	Mesh       *PolyMesh
	IsoColor   *IsoColor
	Warp       *WarpByScalar
	Camera     *Camera
	Background *trait.Trait[string]
}

const DefaultBackground = "#1e1e1e"

func New(m *PolyMesh, iso *IsoColor, warp *WarpByScalar) *Scene {
	return &Scene{
		Mesh:       m,
		IsoColor:   iso,
		Warp:       warp,
		Camera:     NewCamera(),
		Background: trait.New(DefaultBackground),
	}
}

// ColorAt returns the color of grid node (row, col) under the current
// transfer function.
func (s *Scene) ColorAt(row, col int, cm colormap.Map) colormap.RGB {
	comp := s.Mesh.Data[s.IsoColor.Input]
	v := comp.Values[row*s.Mesh.NX+col]
	pos := colormap.Normalize(v, s.IsoColor.Min.Get(), s.IsoColor.Max.Get(), s.IsoColor.LogScale.Get())
	return cm.At(pos)
}

// HeightAt returns the warped height of grid node (row, col).
func (s *Scene) HeightAt(row, col int) float64 {
	comp := s.Mesh.Data[s.Warp.Input]
	return comp.Values[row*s.Mesh.NX+col] * s.Warp.Factor.Get()
}
