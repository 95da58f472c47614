package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	raw := []byte(`{
		"store": "data/terrain",
		"elevation_var": "topography__elevation",
		"time_dim": "time",
		"display": {"colormap": "cividis", "exaggeration": 2.5},
		"derived": [{"name": "log_elev", "expression": "log(topography__elevation)"}]
	}`)

	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Store != "data/terrain" {
		t.Errorf("store = %q", m.Store)
	}
	if m.Display.Colormap != "cividis" || m.Display.Exaggeration != 2.5 {
		t.Errorf("display = %+v", m.Display)
	}
	if len(m.Derived) != 1 || m.Derived[0].Name != "log_elev" {
		t.Errorf("derived = %+v", m.Derived)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{oops`},
		{"missing store", `{"elevation_var": "z"}`},
		{"empty store", `{"store": ""}`},
		{"unknown field", `{"store": "s", "bogus": 1}`},
		{"negative exaggeration", `{"store": "s", "display": {"exaggeration": -1}}`},
		{"derived without expression", `{"store": "s", "derived": [{"name": "d"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestParseFile_ResolvesStorePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viz.json")
	if err := os.WriteFile(path, []byte(`{"store": "data/terrain"}`), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if m.Store != filepath.Join(dir, "data/terrain") {
		t.Errorf("store = %q", m.Store)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
