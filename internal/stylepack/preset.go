/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack loads named drawing-style presets from JSON files.
// Presets are validated against an embedded JSON schema before use so a
// broken preset fails loudly instead of silently mangling the render style.
package stylepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"vdview/internal/config"
)

//go:embed preset.schema.json
var presetSchema []byte

// Preset is one named style override set. Empty / zero fields leave the
// corresponding config value untouched.
type Preset struct {
	Name            string  `json:"name"`
	LineColor       string  `json:"line_color,omitempty"`
	PointColor      string  `json:"point_color,omitempty"`
	TextColor       string  `json:"text_color,omitempty"`
	LabelBackground string  `json:"label_background,omitempty"`
	Thickness       int     `json:"thickness,omitempty"`
	Radius          int     `json:"radius,omitempty"`
	FontSizePt      float64 `json:"font_size_pt,omitempty"`
	FontPath        string  `json:"font_path,omitempty"`
}

// Validate checks raw preset JSON against the embedded schema and returns a
// single error naming every violation.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(presetSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.String())
		}
		return fmt.Errorf("invalid preset: %s", b.String())
	}
	return nil
}

// Parse validates and decodes a preset from raw JSON.
func Parse(data []byte) (*Preset, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	return &p, nil
}

// Load reads and parses a preset file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return p, nil
}

// Apply copies the preset's set fields onto the style config.
func (p *Preset) Apply(st *config.StyleConfig) {
	if p == nil || st == nil {
		return
	}
	if p.LineColor != "" {
		st.LineColor = p.LineColor
	}
	if p.PointColor != "" {
		st.PointColor = p.PointColor
	}
	if p.TextColor != "" {
		st.TextColor = p.TextColor
	}
	if p.LabelBackground != "" {
		st.LabelBackground = p.LabelBackground
	}
	if p.Thickness > 0 {
		st.Thickness = p.Thickness
	}
	if p.Radius > 0 {
		st.Radius = p.Radius
	}
	if p.FontSizePt > 0 {
		st.FontSizePt = p.FontSizePt
	}
	if p.FontPath != "" {
		st.FontPath = p.FontPath
	}
}
