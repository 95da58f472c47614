// Package tui is the interactive terminal frontend: a generator menu, a
// parameter screen and the terrain viewer with time playback.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fastscape-lem/topoviz/internal/colormap"
	"github.com/fastscape-lem/topoviz/internal/config"
	"github.com/fastscape-lem/topoviz/internal/metrics"
	"github.com/fastscape-lem/topoviz/internal/render"
	"github.com/fastscape-lem/topoviz/internal/storage"
	"github.com/fastscape-lem/topoviz/internal/terrain"
	"github.com/fastscape-lem/topoviz/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var generatorInfo = map[string]string{
	"scarp":   "fault scarp relaxation",
	"cone":    "volcanic cone",
	"fractal": "fractal surface",
}

type state int

const (
	stateMenu state = iota
	stateConfig
	stateViewer
)

type model struct {
	state      state
	cursor     int
	generators []string
	selected   string

	params      map[string]float64
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	app       *viz.TopoViz3d
	series    *metrics.Series
	snapshots *storage.Store
	storePath string
	errMsg    string
	status    string
	cmaps     []string
	paused    bool
	lastTick  time.Time
	fps       float64

	width  int
	height int
}

// NewApp starts on the generator menu.
func NewApp() *model {
	return &model{
		state:      stateMenu,
		generators: terrain.Generators(),
		params: map[string]float64{
			"width": config.DefaultWidth, "height": config.DefaultHeight,
			"spacing": config.DefaultSpacing, "steps": config.DefaultSteps,
			"dt": config.DefaultDt, "uplift": 1e-3, "diffusivity": 0.2, "seed": 0,
		},
		paramNames: []string{"width", "height", "spacing", "steps", "dt", "uplift", "diffusivity", "seed"},
		cmaps:      colormap.Names(),
		snapshots:  storage.New(".topoviz"),
		width:      80,
		height:     24,
	}
}

func (m *model) attach(app *viz.TopoViz3d) {
	m.app = app
	m.state = stateViewer
	m.paused = true
	m.series = nil
	e := app.Explorer()
	if s, err := metrics.Collect(e.Dataset(), e.ElevationVar(), e.TimeDim(), metrics.Default()); err == nil {
		m.series = s
	}
}

func (m model) Init() tea.Cmd {
	if m.state == stateViewer {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateViewer || m.app == nil {
			return m, nil
		}
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
				m.fps = 1.0 / dt
			}
		}
		m.lastTick = now
		if ts := m.app.TimeStepper(); ts != nil {
			ts.Play.Advance(now)
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateViewer:
		return m.viewerKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.generators)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.generators[m.cursor]
		m.state = stateConfig
		m.paramCursor = 0
		m.errMsg = ""
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(m.editBuf, "%f", &val)
			m.params[m.paramNames[m.paramCursor]] = val
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = fmt.Sprintf("%g", m.params[m.paramNames[m.paramCursor]])
	case "s":
		if err := m.start(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) viewerKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.app == nil {
		m.state = stateMenu
		return m, nil
	}
	ts := m.app.TimeStepper()
	col := m.app.Coloring()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.app = nil
		m.state = stateMenu
		return m, tea.ClearScreen
	case " ", "p":
		if ts != nil {
			ts.Play.Toggle()
			m.paused = !ts.Play.Playing()
		}
	case "n", "right":
		if ts != nil {
			next := ts.Slider.Value.Get() + 1
			if next <= ts.Slider.Max {
				ts.GoToStep(next)
			}
		}
	case "b", "left":
		if ts != nil {
			prev := ts.Slider.Value.Get() - 1
			if prev >= 0 {
				ts.GoToStep(prev)
			}
		}
	case "+", "=":
		if ts != nil {
			ts.Speed.SetValue(ts.Speed.Value.Get() + 5)
		}
	case "-", "_":
		if ts != nil {
			ts.Speed.SetValue(ts.Speed.Value.Get() - 5)
		}
	case "v":
		if col != nil {
			vars := col.ColorVars()
			cur := col.VarDropdown.Value.Get()
			for i, name := range vars {
				if name == cur {
					col.SetColorVar(vars[(i+1)%len(vars)])
					break
				}
			}
		}
	case "c":
		if col != nil {
			cur := col.ColormapDropdown.Value.Get()
			for i, name := range m.cmaps {
				if name == cur {
					col.SetColormap(m.cmaps[(i+1)%len(m.cmaps)])
					break
				}
			}
		}
	case "l":
		if col != nil {
			col.SetColorScale(!col.LogScaleToggle.Value.Get())
		}
	case "s":
		if id, err := m.saveSnapshot(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "saved " + id
		}
	case "e":
		ve := m.app.VerticalExaggeration()
		ve.SetFactor(ve.Slider.Value.Get() + 0.5)
	case "E":
		ve := m.app.VerticalExaggeration()
		ve.SetFactor(ve.Slider.Value.Get() - 0.5)
	case "[":
		az := m.app.Scene.Camera.Azimuth
		az.Set(az.Get() - 15)
	case "]":
		az := m.app.Scene.Camera.Azimuth
		az.Set(az.Get() + 15)
	case "d":
		m.pageDim(1)
	case "D":
		m.pageDim(-1)
	case "g":
		bc := m.app.BackgroundColor()
		cur := m.app.Scene.Background.Get()
		for i, c := range backgrounds {
			if c == cur {
				bc.SetColor(backgrounds[(i+1)%len(backgrounds)])
				return m, nil
			}
		}
		bc.SetColor(backgrounds[0])
	}
	return m, nil
}

var backgrounds = []string{"#1e1e1e", "#000000", "#10253f", "#2b2b1e"}

// pageDim steps the first extra dimension, wrapping at the ends.
func (m *model) pageDim(delta int) {
	de := m.app.Dimensions()
	if de == nil {
		return
	}
	dims := de.Dims()
	if len(dims) == 0 {
		return
	}
	slider := de.Sliders[dims[0]]
	span := slider.Max - slider.Min + 1
	next := slider.Min + (slider.Value.Get()-slider.Min+delta+span)%span
	slider.SetValue(next)
}

func (m *model) saveSnapshot() (string, error) {
	if err := m.snapshots.Init(); err != nil {
		return "", err
	}
	col := m.app.Coloring()
	snap := storage.Snapshot{
		Name:         "viewer",
		StorePath:    m.storePath,
		ColorVar:     col.VarDropdown.Value.Get(),
		Colormap:     col.ColormapDropdown.Value.Get(),
		ColorMin:     col.MinInput.Value.Get(),
		ColorMax:     col.MaxInput.Value.Get(),
		LogScale:     col.LogScaleToggle.Value.Get(),
		Exaggeration: m.app.VerticalExaggeration().Slider.Value.Get(),
		Background:   m.app.Scene.Background.Get(),
	}
	if ts := m.app.TimeStepper(); ts != nil {
		snap.Step = ts.Slider.Value.Get()
	}
	if de := m.app.Dimensions(); de != nil {
		snap.DimSelection = make(map[string]int)
		for _, dim := range de.Dims() {
			snap.DimSelection[dim] = de.Sliders[dim].Value.Get()
		}
	}
	return m.snapshots.Save(snap, m.series)
}

func (m *model) start() error {
	cfg := terrain.Config{
		Generator:   m.selected,
		Width:       int(m.params["width"]),
		Height:      int(m.params["height"]),
		Spacing:     m.params["spacing"],
		Steps:       int(m.params["steps"]),
		Dt:          m.params["dt"],
		UpliftRate:  m.params["uplift"],
		Diffusivity: m.params["diffusivity"],
		Seed:        int64(m.params["seed"]),
	}
	ds, err := terrain.Evolve(context.Background(), cfg)
	if err != nil {
		return err
	}
	app, err := viz.NewTopoViz3d(ds)
	if err != nil {
		return err
	}
	m.attach(app)
	return nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateViewer:
		return m.viewViewer()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("t o p o v i z") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.generators {
		desc := generatorInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter configure   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.selected) + "  " + dim.Render(generatorInfo[m.selected]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, name := range m.paramNames {
		val := fmt.Sprintf("%10g", m.params[name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dim.Render(val) + "\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n      " + yellow.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  enter edit  s start  esc back") + "\n")

	return b.String()
}

func (m model) viewViewer() string {
	if m.app == nil {
		return ""
	}
	ts := m.app.TimeStepper()
	col := m.app.Coloring()

	cw := m.width - 6
	ch := m.height - 10
	if cw < 40 {
		cw = 40
	}
	if ch < 8 {
		ch = 8
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("playing")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	colorVar := ""
	cmName := colormap.Default
	if col != nil {
		colorVar = col.VarDropdown.Value.Get()
		cmName = col.ColormapDropdown.Value.Get()
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s %s\n",
		statusIcon, cyan.Render(colorVar), statusText,
		dim.Render(cmName), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	if ts != nil {
		step := ts.Slider.Value.Get()
		last := ts.Slider.Max
		progress := 0.0
		if last > 0 {
			progress = float64(step) / float64(last)
		}
		barWidth := 36
		filled := int(progress * float64(barWidth))
		bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
		b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(ts.Label.Value.Get())))
	} else {
		b.WriteString("\n")
	}

	cm, err := colormap.Lookup(cmName)
	if err != nil {
		cm, _ = colormap.Lookup(colormap.Default)
	}
	frame, err := render.Heightmap(m.app.Scene, cm, cw, ch)
	if err != nil {
		b.WriteString("   " + yellow.Render(err.Error()) + "\n")
	} else {
		for _, row := range strings.Split(strings.TrimRight(frame, "\n"), "\n") {
			b.WriteString("   " + row + "\n")
		}
	}

	if m.series != nil && ts != nil {
		step := ts.Slider.Value.Get()
		if relief := m.series.Values["relief"]; step < len(relief) {
			spark := sparkline(relief[:step+1], 24)
			b.WriteString(fmt.Sprintf("\n   %s %s %s\n",
				dim.Render("relief"), cyan.Render(spark),
				white.Render(fmt.Sprintf("%.1f", relief[step]))))
		}
	}

	if m.status != "" {
		b.WriteString("\n   " + yellow.Render(m.status) + "\n")
	}
	b.WriteString("\n" + dim.Render("   space play  n/b step  v var  c colormap  l log  e/E exagg  [] azimuth  d/D dims  g bg  s save  esc menu  q quit") + "\n")

	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// Run starts the interactive terminal app on the generator menu.
func Run() error {
	p := tea.NewProgram(NewApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunViewerApp starts the terminal app on an already configured viewer.
// storePath is recorded in saved snapshots.
func RunViewerApp(app *viz.TopoViz3d, storePath string) error {
	m := NewApp()
	m.attach(app)
	m.storePath = storePath
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
