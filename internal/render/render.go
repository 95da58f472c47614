// Package render draws terrain scenes for the terminal and for file export:
// colored heightmap cells, elevation profiles and SVG snapshots.
package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"

	"github.com/fastscape-lem/topoviz/internal/colormap"
	"github.com/fastscape-lem/topoviz/internal/scene"
)

// Heightmap renders the scene as a block of colored half-cell characters,
// two terrain rows per text line. Colors follow the scene's color
// component through cm, darkened by a hillshade lit from the camera
// azimuth.
func Heightmap(s *scene.Scene, cm colormap.Map, width, height int) (string, error) {
	if s == nil || s.Mesh == nil {
		return "", errors.New("scene has no mesh")
	}
	nx, ny := s.Mesh.NX, s.Mesh.NY
	if width < 1 || height < 1 {
		return "", errors.Errorf("invalid viewport %dx%d", width, height)
	}
	if width > nx {
		width = nx
	}
	rows := 2 * height
	if rows > ny {
		rows = ny
	}

	var sb strings.Builder
	for line := 0; line < rows; line += 2 {
		for c := 0; c < width; c++ {
			col := c * nx / width
			top := line * ny / rows
			bot := ny - 1
			if line+1 < rows {
				bot = (line + 1) * ny / rows
			}

			fg := shadedColor(s, cm, top, col)
			bg := shadedColor(s, cm, bot, col)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(fg.Hex())).
				Background(lipgloss.Color(bg.Hex()))
			sb.WriteString(style.Render("▀"))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// shadedColor looks up the cell color and applies a simple lambertian
// hillshade from the warped heights.
func shadedColor(s *scene.Scene, cm colormap.Map, row, col int) colormap.RGB {
	rgb := s.ColorAt(row, col, cm)
	shade := hillshade(s, row, col)
	scale := func(c uint8) uint8 {
		v := float64(c) * shade
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return colormap.RGB{R: scale(rgb.R), G: scale(rgb.G), B: scale(rgb.B)}
}

// hillshade returns a brightness factor in [0.4, 1.2] from the local
// gradient and the camera azimuth.
func hillshade(s *scene.Scene, row, col int) float64 {
	nx, ny := s.Mesh.NX, s.Mesh.NY
	h := func(r, c int) float64 {
		if r < 0 {
			r = 0
		}
		if r >= ny {
			r = ny - 1
		}
		if c < 0 {
			c = 0
		}
		if c >= nx {
			c = nx - 1
		}
		return s.HeightAt(r, c)
	}
	gx := h(row, col+1) - h(row, col-1)
	gy := h(row+1, col) - h(row-1, col)

	az := s.Camera.Azimuth.Get() * math.Pi / 180
	lx, ly := math.Cos(az), math.Sin(az)
	slope := (gx*lx + gy*ly) / (math.Abs(gx) + math.Abs(gy) + 1e-9)
	return 0.8 + 0.4*slope
}

// Profile extracts warped heights along one grid line. Axis "x" walks a
// row, axis "y" a column.
func Profile(s *scene.Scene, axis string, index int) ([]float64, error) {
	if s == nil || s.Mesh == nil {
		return nil, errors.New("scene has no mesh")
	}
	switch axis {
	case "x":
		if index < 0 || index >= s.Mesh.NY {
			return nil, errors.Errorf("row %d out of range [0, %d)", index, s.Mesh.NY)
		}
		vals := make([]float64, s.Mesh.NX)
		for c := range vals {
			vals[c] = s.HeightAt(index, c)
		}
		return vals, nil
	case "y":
		if index < 0 || index >= s.Mesh.NX {
			return nil, errors.Errorf("column %d out of range [0, %d)", index, s.Mesh.NX)
		}
		vals := make([]float64, s.Mesh.NY)
		for r := range vals {
			vals[r] = s.HeightAt(r, index)
		}
		return vals, nil
	default:
		return nil, errors.Errorf("axis must be %q or %q, got %q", "x", "y", axis)
	}
}

// PlotProfile draws an elevation profile as an ascii chart.
func PlotProfile(values []float64, width, height int, caption string) string {
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// SceneToSVG exports the scene as a grid of colored cells, shaded the same
// way as the terminal heightmap.
func SceneToSVG(s *scene.Scene, cm colormap.Map, cellSize float64) (string, error) {
	if s == nil || s.Mesh == nil {
		return "", errors.New("scene has no mesh")
	}
	nx, ny := s.Mesh.NX, s.Mesh.NY
	width := float64(nx) * cellSize
	height := float64(ny) * cellSize

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, s.Background.Get()))

	for row := 0; row < ny; row++ {
		for col := 0; col < nx; col++ {
			rgb := shadedColor(s, cm, row, col)
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(col)*cellSize, float64(row)*cellSize, cellSize, cellSize, rgb.Hex()))
		}
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}

// SeriesToSVG draws one polyline per named series over a shared time axis.
func SeriesToSVG(times []float64, series map[string][]float64, width, height int) string {
	if len(times) < 2 || len(series) == 0 {
		return ""
	}

	colors := []string{"#4fc3f7", "#ffb74d", "#81c784", "#e57373", "#ba68c8"}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, vals := range series {
		for _, v := range vals {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	minX, maxX := times[0], times[len(times)-1]
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	i := 0
	for _, name := range sortedKeys(series) {
		vals := series[name]
		color := colors[i%len(colors)]
		i++
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, v := range vals {
			if j >= len(times) {
				break
			}
			x := (times[j] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(fmt.Sprintf(`"><title>%s</title></path>
`, name))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
