package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fastscape-lem/topoviz/internal/colormap"
	"github.com/fastscape-lem/topoviz/internal/config"
	"github.com/fastscape-lem/topoviz/internal/dataset"
	"github.com/fastscape-lem/topoviz/internal/expr"
	"github.com/fastscape-lem/topoviz/internal/link"
	"github.com/fastscape-lem/topoviz/internal/manifest"
	"github.com/fastscape-lem/topoviz/internal/metrics"
	"github.com/fastscape-lem/topoviz/internal/render"
	"github.com/fastscape-lem/topoviz/internal/storage"
	"github.com/fastscape-lem/topoviz/internal/terrain"
	"github.com/fastscape-lem/topoviz/internal/tui"
	"github.com/fastscape-lem/topoviz/internal/viz"
)

var (
	snapshotDir  string
	logLevel     string
	elevationVar string
	xDim         string
	yDim         string
	timeDim      string
	manifestPath string
	generator    string
	gridWidth    int
	gridHeight   int
	spacing      float64
	steps        int
	stepDt       float64
	upliftRate   float64
	diffusivity  float64
	seed         int64
	runs         int
	preset       string
	chunkRows    int
	step         int
	axis         string
	index        int
	plotWidth    int
	plotHeight   int
	outPath      string
	cmapName     string
	exaggeration float64
	cellSize     float64
	hubAddr      string
	viewHub      string
	configFile   string
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "topoviz",
		Short: "interactive terrain data viewer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				level = logrus.WarnLevel
			}
			logrus.SetLevel(level)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := tui.Run(); err != nil {
				logrus.WithError(err).Fatal("terminal app failed")
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshots", ".topoviz", "snapshot directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	genCmd := &cobra.Command{
		Use:   "gen [store]",
		Short: "generate a synthetic terrain dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runGen,
	}
	genCmd.Flags().StringVar(&generator, "generator", "scarp", "surface generator")
	genCmd.Flags().IntVar(&gridWidth, "width", config.DefaultWidth, "grid width")
	genCmd.Flags().IntVar(&gridHeight, "height", config.DefaultHeight, "grid height")
	genCmd.Flags().Float64Var(&spacing, "spacing", config.DefaultSpacing, "node spacing")
	genCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "time steps")
	genCmd.Flags().Float64Var(&stepDt, "dt", config.DefaultDt, "time step length")
	genCmd.Flags().Float64Var(&upliftRate, "uplift", 1e-3, "uplift rate")
	genCmd.Flags().Float64Var(&diffusivity, "diffusivity", 0.2, "hillslope diffusivity")
	genCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	genCmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")
	genCmd.Flags().IntVar(&runs, "runs", 1, "stack this many seeds along a batch dimension")
	genCmd.Flags().IntVar(&chunkRows, "chunk-rows", 1, "rows per chunk file")
	genCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	viewCmd := &cobra.Command{
		Use:   "view [store]",
		Short: "open a dataset in the viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}
	addDatasetFlags(viewCmd)
	viewCmd.Flags().StringVar(&manifestPath, "manifest", "", "viewer manifest file (json)")
	viewCmd.Flags().StringVar(&viewHub, "hub", "", "mirror viewer state against a link hub (host:port)")
	viewCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	infoCmd := &cobra.Command{
		Use:   "info [store]",
		Short: "describe a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	profileCmd := &cobra.Command{
		Use:   "profile [store]",
		Short: "plot an elevation cross-section",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}
	addDatasetFlags(profileCmd)
	profileCmd.Flags().StringVar(&axis, "axis", "x", "profile axis (x or y)")
	profileCmd.Flags().IntVar(&index, "index", -1, "grid line index (default middle)")
	profileCmd.Flags().IntVar(&step, "step", 0, "time step")
	profileCmd.Flags().IntVar(&plotWidth, "plot-width", 72, "plot width")
	profileCmd.Flags().IntVar(&plotHeight, "plot-height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [store]",
		Short: "export the terrain view as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	addDatasetFlags(exportCmd)
	exportCmd.Flags().StringVar(&outPath, "out", "terrain.svg", "output file")
	exportCmd.Flags().StringVar(&cmapName, "colormap", colormap.Default, "colormap")
	exportCmd.Flags().IntVar(&step, "step", 0, "time step")
	exportCmd.Flags().Float64Var(&exaggeration, "exaggeration", 1.0, "vertical exaggeration")
	exportCmd.Flags().Float64Var(&cellSize, "cell-size", 8, "SVG cell size")

	metricsCmd := &cobra.Command{
		Use:   "metrics [store]",
		Short: "compute elevation metrics over time",
		Args:  cobra.ExactArgs(1),
		RunE:  runMetrics,
	}
	addDatasetFlags(metricsCmd)
	metricsCmd.Flags().StringVar(&outPath, "svg", "", "also write the series as SVG")

	snapshotsCmd := &cobra.Command{
		Use:   "snapshots",
		Short: "list saved viewer snapshots",
		RunE:  listSnapshots,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [generator]",
		Short: "list available presets for a generator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for generator: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "serve the viewer link hub",
		RunE:  runHub,
	}
	linkCmd.Flags().StringVar(&hubAddr, "addr", "localhost:8931", "listen address")

	rootCmd.AddCommand(genCmd, viewCmd, infoCmd, profileCmd, exportCmd, metricsCmd, snapshotsCmd, presetsCmd, linkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&elevationVar, "elevation-var", dataset.DefaultElevationVar, "elevation variable")
	cmd.Flags().StringVar(&xDim, "x-dim", "x", "x dimension")
	cmd.Flags().StringVar(&yDim, "y-dim", "y", "y dimension")
	cmd.Flags().StringVar(&timeDim, "time-dim", "time", "time dimension")
}

func datasetOptions() []dataset.InitOption {
	return []dataset.InitOption{
		dataset.WithElevationVar(elevationVar),
		dataset.WithXDim(xDim),
		dataset.WithYDim(yDim),
		dataset.WithTimeDim(timeDim),
	}
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg := terrain.Config{
		Generator:   generator,
		Width:       gridWidth,
		Height:      gridHeight,
		Spacing:     spacing,
		Steps:       steps,
		Dt:          stepDt,
		UpliftRate:  upliftRate,
		Diffusivity: diffusivity,
		Seed:        seed,
	}

	if preset != "" {
		p := config.GetPreset(generator, preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(generator))
		}
		cfg.Generator = p.Generator
		cfg.Width = p.Width
		cfg.Height = p.Height
		cfg.Spacing = p.Spacing
		cfg.Steps = p.Steps
		cfg.Dt = p.Dt
		cfg.UpliftRate = p.UpliftRate
		cfg.Diffusivity = p.Diffusivity
		if p.Seed != 0 {
			cfg.Seed = p.Seed
		}
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		t := fileCfg.Terrain
		if !cmd.Flags().Changed("generator") {
			cfg.Generator = t.Generator
		}
		if !cmd.Flags().Changed("width") {
			cfg.Width = t.Width
		}
		if !cmd.Flags().Changed("height") {
			cfg.Height = t.Height
		}
		if !cmd.Flags().Changed("spacing") {
			cfg.Spacing = t.Spacing
		}
		if !cmd.Flags().Changed("steps") {
			cfg.Steps = t.Steps
		}
		if !cmd.Flags().Changed("dt") {
			cfg.Dt = t.Dt
		}
		if !cmd.Flags().Changed("uplift") {
			cfg.UpliftRate = t.UpliftRate
		}
		if !cmd.Flags().Changed("diffusivity") {
			cfg.Diffusivity = t.Diffusivity
		}
		if t.Seed != 0 && !cmd.Flags().Changed("seed") {
			cfg.Seed = t.Seed
		}
	}

	fmt.Printf("generating %s terrain (%dx%d, %d steps)...\n", cfg.Generator, cfg.Width, cfg.Height, cfg.Steps)
	start := time.Now()

	var ds *dataset.Dataset
	var err error
	if runs > 1 {
		seeds := make([]int64, runs)
		for i := range seeds {
			seeds[i] = cfg.Seed + int64(i)
		}
		ds, err = terrain.NewEnsemble(cfg, seeds).Run(context.Background())
	} else {
		ds, err = terrain.Evolve(context.Background(), cfg)
	}
	if err != nil {
		return err
	}
	if err := dataset.Save(args[0], ds, chunkRows); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("store: %s\n", args[0])
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	if configFile != "" && !cmd.Flags().Changed("hub") {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		viewHub = fileCfg.HubAddr
	}
	if manifestPath != "" {
		return viewManifest(manifestPath)
	}
	if len(args) == 0 {
		return fmt.Errorf("store path or --manifest required")
	}
	ds, err := dataset.Load(args[0])
	if err != nil {
		return err
	}
	app, err := viz.NewTopoViz3d(ds, datasetOptions()...)
	if err != nil {
		return err
	}
	return runViewerApp(app, args[0])
}

// runViewerApp runs the viewer, mirroring its state against a link hub
// when one is configured.
func runViewerApp(app *viz.TopoViz3d, storePath string) error {
	if viewHub == "" {
		return tui.RunViewerApp(app, storePath)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := link.NewClient(hubURL(viewHub), logrus.StandardLogger())
	go func() {
		if err := client.Mirror(ctx, app); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Warn("hub mirror stopped")
		}
	}()
	return tui.RunViewerApp(app, storePath)
}

func hubURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

func viewManifest(path string) error {
	m, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}
	ds, err := dataset.Load(m.Store)
	if err != nil {
		return err
	}

	if len(m.Derived) > 0 {
		ev := expr.NewEvaluator()
		defer ev.Close()
		template := m.ElevationVar
		if template == "" {
			template = dataset.DefaultElevationVar
		}
		for _, d := range m.Derived {
			if err := ev.DeriveInto(ds, template, d.Name, d.Expression); err != nil {
				return fmt.Errorf("derive %s: %w", d.Name, err)
			}
		}
	}

	var opts []dataset.InitOption
	if m.ElevationVar != "" {
		opts = append(opts, dataset.WithElevationVar(m.ElevationVar))
	}
	if m.XDim != "" {
		opts = append(opts, dataset.WithXDim(m.XDim))
	}
	if m.YDim != "" {
		opts = append(opts, dataset.WithYDim(m.YDim))
	}
	if m.TimeDim != "" {
		opts = append(opts, dataset.WithTimeDim(m.TimeDim))
	}

	app, err := viz.NewTopoViz3d(ds, opts...)
	if err != nil {
		return err
	}
	if m.Display.Exaggeration > 0 {
		app.VerticalExaggeration().SetFactor(m.Display.Exaggeration)
	}
	if m.Display.Colormap != "" {
		if err := app.Coloring().SetColormap(m.Display.Colormap); err != nil {
			return err
		}
	}
	if m.Display.Background != "" {
		app.BackgroundColor().SetColor(m.Display.Background)
	}
	return runViewerApp(app, m.Store)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tSIZE\tRANGE")
	for _, dim := range ds.Dims {
		vals := ds.CoordValues(dim)
		if len(vals) > 0 {
			fmt.Fprintf(w, "%s\t%d\t%g .. %g\n", dim, ds.Sizes[dim], vals[0], vals[len(vals)-1])
		} else {
			fmt.Fprintf(w, "%s\t%d\t\n", dim, ds.Sizes[dim])
		}
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIABLE\tDIMS\tMIN\tMAX")
	for _, name := range ds.VarNames() {
		da := ds.Vars[name]
		fmt.Fprintf(w, "%s\t%v\t%.3f\t%.3f\n", name, da.Dims, da.Min(), da.Max())
	}
	return w.Flush()
}

func runProfile(cmd *cobra.Command, args []string) error {
	app, err := loadViewer(args[0], step)
	if err != nil {
		return err
	}

	idx := index
	if idx < 0 {
		if axis == "x" {
			idx = app.Scene.Mesh.NY / 2
		} else {
			idx = app.Scene.Mesh.NX / 2
		}
	}
	values, err := render.Profile(app.Scene, axis, idx)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("%s along %s at %d (step %d)", elevationVar, axis, idx, step)
	fmt.Println(render.PlotProfile(values, plotWidth, plotHeight, caption))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	app, err := loadViewer(args[0], step)
	if err != nil {
		return err
	}
	if exaggeration != 1.0 {
		app.VerticalExaggeration().SetFactor(exaggeration)
	}
	cm, err := colormap.Lookup(cmapName)
	if err != nil {
		return err
	}
	svg, err := render.SceneToSVG(app.Scene, cm, cellSize)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(args[0])
	if err != nil {
		return err
	}
	series, err := metrics.Collect(ds, elevationVar, timeDim, metrics.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "TIME")
	for _, name := range series.Names() {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for i, t := range series.Times {
		fmt.Fprintf(w, "%g", t)
		for _, name := range series.Names() {
			fmt.Fprintf(w, "\t%.3f", series.Values[name][i])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if outPath != "" {
		svg := render.SeriesToSVG(series.Times, series.Values, 640, 320)
		if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	st := storage.New(snapshotDir)
	snaps, err := st.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTORE\tSTEP\tCOLOR VAR\tSAVED")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.StorePath, s.Step, s.ColorVar, s.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func runHub(cmd *cobra.Command, args []string) error {
	hub := link.NewHub(logrus.StandardLogger())
	logrus.WithField("addr", hubAddr).Info("link hub listening")
	fmt.Printf("link hub listening on %s\n", hubAddr)
	return http.ListenAndServe(hubAddr, hub.SetupRoutes())
}

func loadViewer(store string, step int) (*viz.TopoViz3d, error) {
	ds, err := dataset.Load(store)
	if err != nil {
		return nil, err
	}
	app, err := viz.NewTopoViz3d(ds, datasetOptions()...)
	if err != nil {
		return nil, err
	}
	if ts := app.TimeStepper(); ts != nil && step > 0 {
		ts.GoToStep(step)
	}
	return app, nil
}
