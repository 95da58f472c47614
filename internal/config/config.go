// Package config holds the viewer configuration: dataset selection,
// display defaults and the synthetic terrain parameters, loaded from and
// saved to YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultColormap     = "viridis"
	DefaultExaggeration = 1.0
	DefaultBackground   = "#1e1e1e"
	DefaultSpeed        = 30
	DefaultWidth        = 64
	DefaultHeight       = 48
	DefaultSpacing      = 100.0
	DefaultSteps        = 20
	DefaultDt           = 1000.0
)

type Config struct {
	StorePath    string        `yaml:"store_path"`
	ElevationVar string        `yaml:"elevation_var"`
	TimeDim      string        `yaml:"time_dim"`
	XDim         string        `yaml:"x_dim"`
	YDim         string        `yaml:"y_dim"`
	SnapshotDir  string        `yaml:"snapshot_dir"`
	HubAddr      string        `yaml:"hub_addr"`
	Display      DisplayConfig `yaml:"display"`
	Terrain      TerrainConfig `yaml:"terrain"`
}

type DisplayConfig struct {
	Colormap     string  `yaml:"colormap"`
	Exaggeration float64 `yaml:"exaggeration"`
	Background   string  `yaml:"background"`
	Speed        int     `yaml:"speed"`
	LogScale     bool    `yaml:"log_scale"`
}

type TerrainConfig struct {
	Generator   string  `yaml:"generator"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Spacing     float64 `yaml:"spacing"`
	Steps       int     `yaml:"steps"`
	Dt          float64 `yaml:"dt"`
	UpliftRate  float64 `yaml:"uplift_rate"`
	Diffusivity float64 `yaml:"diffusivity"`
	Seed        int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		ElevationVar: "topography__elevation",
		TimeDim:      "time",
		XDim:         "x",
		YDim:         "y",
		SnapshotDir:  "snapshots",
		Display: DisplayConfig{
			Colormap:     DefaultColormap,
			Exaggeration: DefaultExaggeration,
			Background:   DefaultBackground,
			Speed:        DefaultSpeed,
		},
		Terrain: TerrainConfig{
			Generator:   "scarp",
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			Spacing:     DefaultSpacing,
			Steps:       DefaultSteps,
			Dt:          DefaultDt,
			UpliftRate:  1e-3,
			Diffusivity: 0.2,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
