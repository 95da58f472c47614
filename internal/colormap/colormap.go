// Package colormap maps scalar values to colors through named lookup
// tables with linear or logarithmic normalization.
package colormap

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

type RGB struct {
	R, G, B uint8
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Map is a colormap defined by anchor colors evenly spaced over [0, 1].
type Map struct {
	Name    string
	anchors []RGB
}

// At returns the interpolated color for a normalized position in [0, 1].
func (m Map) At(pos float64) RGB {
	if pos <= 0 {
		return m.anchors[0]
	}
	if pos >= 1 {
		return m.anchors[len(m.anchors)-1]
	}
	f := pos * float64(len(m.anchors)-1)
	i := int(f)
	t := f - float64(i)
	a, b := m.anchors[i], m.anchors[i+1]
	return RGB{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
	}
}

const Default = "viridis"

var maps = map[string]Map{
	"viridis": {Name: "viridis", anchors: []RGB{
		{68, 1, 84}, {72, 40, 120}, {62, 74, 137}, {49, 104, 142}, {38, 130, 142},
		{31, 158, 137}, {53, 183, 121}, {109, 205, 89}, {180, 222, 44}, {253, 231, 37},
	}},
	"cividis": {Name: "cividis", anchors: []RGB{
		{0, 32, 76}, {0, 42, 102}, {51, 63, 106}, {87, 83, 109}, {118, 104, 110},
		{146, 126, 109}, {177, 149, 100}, {210, 173, 84}, {243, 199, 56}, {255, 234, 70},
	}},
	"magma": {Name: "magma", anchors: []RGB{
		{0, 0, 4}, {28, 16, 68}, {79, 18, 123}, {129, 37, 129}, {181, 54, 122},
		{229, 80, 100}, {251, 135, 97}, {254, 194, 135}, {252, 253, 191},
	}},
	"inferno": {Name: "inferno", anchors: []RGB{
		{0, 0, 4}, {31, 12, 72}, {85, 15, 109}, {136, 34, 106}, {186, 54, 85},
		{227, 89, 51}, {249, 140, 10}, {249, 201, 50}, {252, 255, 164},
	}},
	"plasma": {Name: "plasma", anchors: []RGB{
		{13, 8, 135}, {84, 2, 163}, {139, 10, 165}, {185, 50, 137}, {219, 92, 104},
		{244, 136, 73}, {254, 188, 43}, {240, 249, 33},
	}},
	"terrain": {Name: "terrain", anchors: []RGB{
		{51, 51, 153}, {0, 153, 204}, {0, 204, 102}, {255, 255, 128},
		{128, 102, 77}, {255, 255, 255},
	}},
}

// Lookup returns a colormap by name.
func Lookup(name string) (Map, error) {
	m, ok := maps[name]
	if !ok {
		return Map{}, errors.Errorf("%q is not a valid colormap", name)
	}
	return m, nil
}

// Names lists the available colormaps in stable order.
func Names() []string {
	names := make([]string, 0, len(maps))
	for name := range maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize maps v into [0, 1] over [min, max]. With log scaling the
// mapping is logarithmic; ranges that cross zero fall back to linear.
func Normalize(v, min, max float64, log bool) float64 {
	if max <= min {
		return 0
	}
	if log && min > 0 {
		return clamp01(math.Log(v/min) / math.Log(max/min))
	}
	return clamp01((v - min) / (max - min))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
