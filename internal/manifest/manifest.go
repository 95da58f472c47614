// Package manifest parses and validates dataset manifests: JSON documents
// pointing at a dataset store and describing how it should be displayed.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["store"],
  "properties": {
    "store": {"type": "string", "minLength": 1},
    "elevation_var": {"type": "string", "minLength": 1},
    "x_dim": {"type": "string", "minLength": 1},
    "y_dim": {"type": "string", "minLength": 1},
    "time_dim": {"type": "string"},
    "display": {
      "type": "object",
      "properties": {
        "colormap": {"type": "string"},
        "exaggeration": {"type": "number", "minimum": 0},
        "background": {"type": "string"}
      },
      "additionalProperties": false
    },
    "derived": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "expression"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "expression": {"type": "string", "minLength": 1}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var schema = jsonschema.MustCompileString("manifest.json", schemaJSON)

// Manifest describes a dataset and its display defaults.
type Manifest struct {
	Store        string    `json:"store"`
	ElevationVar string    `json:"elevation_var,omitempty"`
	XDim         string    `json:"x_dim,omitempty"`
	YDim         string    `json:"y_dim,omitempty"`
	TimeDim      string    `json:"time_dim,omitempty"`
	Display      Display   `json:"display,omitempty"`
	Derived      []Derived `json:"derived,omitempty"`
}

type Display struct {
	Colormap     string  `json:"colormap,omitempty"`
	Exaggeration float64 `json:"exaggeration,omitempty"`
	Background   string  `json:"background,omitempty"`
}

type Derived struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Parse validates raw JSON against the manifest schema and decodes it.
func Parse(raw []byte) (*Manifest, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	if err := schema.Validate(doc); err != nil {
		return nil, errors.Wrap(err, "validate manifest")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	return m, nil
}

// ParseFile reads and parses a manifest, resolving a relative store path
// against the manifest's directory.
func ParseFile(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	if !filepath.IsAbs(m.Store) {
		m.Store = filepath.Join(filepath.Dir(path), m.Store)
	}
	return m, nil
}
