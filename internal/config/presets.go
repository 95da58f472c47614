package config

// Presets are named terrain scenarios per generator, selectable from the
// CLI and the interactive menu.
var Presets = map[string]map[string]*TerrainConfig{
	"scarp": {
		"quick": {
			Generator: "scarp", Width: 48, Height: 36, Spacing: 100, Steps: 10,
			Dt: 1000, UpliftRate: 1e-3, Diffusivity: 0.2,
		},
		"relax": {
			Generator: "scarp", Width: 64, Height: 48, Spacing: 100, Steps: 50,
			Dt: 2000, UpliftRate: 0, Diffusivity: 0.5,
		},
	},
	"cone": {
		"volcano": {
			Generator: "cone", Width: 64, Height: 64, Spacing: 50, Steps: 30,
			Dt: 1000, UpliftRate: 2e-3, Diffusivity: 0.1,
		},
		"erode": {
			Generator: "cone", Width: 64, Height: 64, Spacing: 50, Steps: 50,
			Dt: 2000, UpliftRate: 0, Diffusivity: 0.4,
		},
	},
	"fractal": {
		"rough": {
			Generator: "fractal", Width: 96, Height: 64, Spacing: 100, Steps: 20,
			Dt: 1000, UpliftRate: 1e-3, Diffusivity: 0.15, Seed: 7,
		},
		"smooth": {
			Generator: "fractal", Width: 96, Height: 64, Spacing: 100, Steps: 40,
			Dt: 2000, UpliftRate: 5e-4, Diffusivity: 0.6, Seed: 7,
		},
	},
}

func GetPreset(generator, preset string) *TerrainConfig {
	generatorPresets, ok := Presets[generator]
	if !ok {
		return nil
	}
	cfg, ok := generatorPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(generator string) []string {
	generatorPresets, ok := Presets[generator]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(generatorPresets))
	for name := range generatorPresets {
		names = append(names, name)
	}
	return names
}
