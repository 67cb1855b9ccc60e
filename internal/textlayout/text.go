/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout rasterizes label strings into pixel buffers. It is the
// text-shaping collaborator of the rasterizer: one face, one color, one line
// of text per call. Fonts load through x/image's opentype; the bitmap
// Face7x13 serves as a deterministic fallback when no font file is available.
package textlayout

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Renderer draws strings onto fresh transparent RGBA buffers.
type Renderer struct {
	face font.Face
	col  color.RGBA
}

// NewRenderer wraps an already resolved face.
func NewRenderer(face font.Face, col color.RGBA) *Renderer {
	return &Renderer{face: face, col: col}
}

// Basic returns a renderer on the built-in 7x13 bitmap face. Deterministic
// across platforms, which also makes it the face of choice in tests.
func Basic(col color.RGBA) *Renderer {
	return &Renderer{face: basicfont.Face7x13, col: col}
}

// LoadFace reads and parses an OpenType font file at the given point size.
func LoadFace(path string, sizePt float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: sizePt, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("build face %s: %w", path, err)
	}
	return face, nil
}

// Measure reports the pixel bounding box Render would produce for text.
func (r *Renderer) Measure(text string) (w, h int) {
	if text == "" {
		return 0, 0
	}
	d := &font.Drawer{Face: r.face}
	m := r.face.Metrics()
	return d.MeasureString(text).Ceil(), m.Ascent.Ceil() + m.Descent.Ceil()
}

// Render rasterizes text into a transparent buffer sized to its bounding
// box. An empty string yields an empty (zero-size) image.
func (r *Renderer) Render(text string) (image.Image, error) {
	w, h := r.Measure(text)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img, nil
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.col),
		Face: r.face,
		Dot:  fixed.P(0, r.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return img, nil
}
