package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/studio-inventory/internal/common"
)

// Template describes one label sheet: page and sticker geometry in inches
// plus the grid pitch. Templates are user-editable JSON, so they are
// schema-validated on load rather than trusted.
type Template struct {
	Name   string `json:"name"`
	Page   Size   `json:"page"`
	Label  Size   `json:"label"`
	Grid   Grid   `json:"grid"`
	Margin Offset `json:"margins_in"`
	Pitch  Point  `json:"pitch_in"`
	Pad    Point  `json:"padding_in"`
	Font   Font   `json:"font"`
}

type Size struct {
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

type Offset struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Preset is a saved element layout for a given template: which label fields
// print, where, and whether a QR code is drawn.
type Preset struct {
	Elements []Element      `json:"elements"`
	QR       QRSettings     `json:"qr"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Element places one field within the label padding box. Offsets are
// fractions of the padded width/height.
type Element struct {
	Field string  `json:"field"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale,omitempty"`
}

type QRSettings struct {
	Include bool    `json:"include"`
	Size    float64 `json:"size_in,omitempty"`
}

const templateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "page", "label", "grid", "margins_in", "pitch_in", "padding_in", "font"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "page": {"$ref": "#/$defs/size"},
    "label": {"$ref": "#/$defs/size"},
    "grid": {
      "type": "object",
      "required": ["cols", "rows"],
      "properties": {
        "cols": {"type": "integer", "minimum": 1},
        "rows": {"type": "integer", "minimum": 1}
      }
    },
    "margins_in": {
      "type": "object",
      "required": ["left", "top"],
      "properties": {
        "left": {"type": "number", "minimum": 0},
        "top": {"type": "number", "minimum": 0}
      }
    },
    "pitch_in": {"$ref": "#/$defs/point"},
    "padding_in": {"$ref": "#/$defs/point"},
    "font": {
      "type": "object",
      "required": ["name", "size"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "size": {"type": "integer", "minimum": 4}
      }
    }
  },
  "$defs": {
    "size": {
      "type": "object",
      "required": ["width_in", "height_in"],
      "properties": {
        "width_in": {"type": "number", "exclusiveMinimum": 0},
        "height_in": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "point": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "number", "minimum": 0},
        "y": {"type": "number", "minimum": 0}
      }
    }
  }
}`

const presetSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["elements"],
  "properties": {
    "elements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["field", "x", "y"],
        "properties": {
          "field": {
            "type": "string",
            "enum": ["label_line1", "label_line2", "label_short", "sku", "part_key", "vendor"]
          },
          "x": {"type": "number", "minimum": 0, "maximum": 1},
          "y": {"type": "number", "minimum": 0, "maximum": 1},
          "scale": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    },
    "qr": {
      "type": "object",
      "properties": {
        "include": {"type": "boolean"},
        "size_in": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "meta": {"type": "object"}
  }
}`

var (
	templateCompiled = jsonschema.MustCompileString("template.json", templateSchema)
	presetCompiled   = jsonschema.MustCompileString("preset.json", presetSchema)
)

// LoadTemplate reads and validates a sheet template JSON file.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("read label template %s", path))
	}
	if err := validateJSON(templateCompiled, raw); err != nil {
		return nil, common.InvalidInputf("label template %s: %v", path, err)
	}
	var t Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, common.InvalidInputf("decode label template %s: %v", path, err)
	}
	return &t, nil
}

// DefaultPreset prints the short line with a QR code, a layout that fits
// every supported sheet.
func DefaultPreset() Preset {
	return Preset{
		Elements: []Element{
			{Field: "label_short", X: 0.0, Y: 0.8},
			{Field: "sku", X: 0.0, Y: 0.1, Scale: 0.8},
		},
		QR: QRSettings{Include: true, Size: 0.5},
	}
}

// PresetDir returns (and creates) the preset directory for a template.
// Presets are grouped per template stem so geometry and layout stay paired.
func PresetDir(root, templatePath string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	dir := filepath.Join(root, "label_presets", stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.WrapError(err, "create preset dir")
	}
	return dir, nil
}

// ListPresets returns the saved preset files for a template, sorted by name.
func ListPresets(root, templatePath string) ([]string, error) {
	dir, err := PresetDir(root, templatePath)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, common.WrapError(err, "list presets")
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadPreset reads and validates a saved layout preset.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("read label preset %s", path))
	}
	if err := validateJSON(presetCompiled, raw); err != nil {
		return nil, common.InvalidInputf("label preset %s: %v", path, err)
	}
	var p Preset
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, common.InvalidInputf("decode label preset %s: %v", path, err)
	}
	return &p, nil
}

// SavePreset validates and writes a preset under the template's preset dir,
// stamping provenance into meta.
func SavePreset(root, templatePath, name string, preset Preset) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.InvalidInputf("preset name is empty")
	}
	if preset.Meta == nil {
		preset.Meta = map[string]any{}
	}
	preset.Meta["preset_name"] = name
	preset.Meta["template_file"] = filepath.Base(templatePath)

	raw, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return "", common.WrapError(err, "encode preset")
	}
	if err := validateJSON(presetCompiled, raw); err != nil {
		return "", common.InvalidInputf("preset layout: %v", err)
	}

	dir, err := PresetDir(root, templatePath)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", common.WrapError(err, "write preset")
	}
	return path, nil
}

func validateJSON(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
