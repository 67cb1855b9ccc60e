/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster turns resolved scene geometry into pixels: scanline disk
// fills, perpendicular-offset thick strokes and label boxes. It draws through
// the Surface abstraction and never touches windowing or codecs.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"vdview/internal/script"
)

// TextRasterizer is the external text-shaping collaborator: it turns a string
// into a pixel buffer with a known bounding box.
type TextRasterizer interface {
	Render(text string) (image.Image, error)
}

// Style bundles the drawing parameters for one scene render.
type Style struct {
	Line      color.RGBA
	Point     color.RGBA
	LabelBack color.RGBA
	Thickness int
	Radius    int
}

// DefaultStyle is black ink on a white label background, 5px strokes and
// 4px point markers.
func DefaultStyle() Style {
	return Style{
		Line:      color.RGBA{A: 255},
		Point:     color.RGBA{A: 255},
		LabelBack: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Thickness: 5,
		Radius:    4,
	}
}

// labelGap is the horizontal distance between a marker's edge and its label.
const labelGap = 5

// FillCircle fills a disk of the given radius centered at (cx, cy) using the
// surface's current color. Each row dy in [-r, r] gets a horizontal span of
// half-width sqrt(r^2 - dy^2); r == 0 degenerates to a single pixel.
func FillCircle(dst Surface, cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		span := r*r - dy*dy
		if span < 0 {
			span = 0
		}
		dx := int(math.Sqrt(float64(span)))
		dst.DrawLine(cx-dx, cy+dy, cx+dx, cy+dy)
	}
}

// StrokeLine draws a segment of the given thickness by stacking full-length
// 1px segments offset along the unit perpendicular, one per integer offset in
// [-thickness/2, thickness/2]. A zero-length segment has no direction, so it
// becomes a filled square of side thickness centered on the point. The stroke
// has no caps or joins; for single-digit thicknesses that is close enough.
func StrokeLine(dst Surface, x1, y1, x2, y2, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	half := thickness / 2

	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		for i := -half; i <= half; i++ {
			for j := -half; j <= half; j++ {
				dst.DrawPoint(x1+i, y1+j)
			}
		}
		return
	}

	nx := -dy / length
	ny := dx / length
	for i := -half; i <= half; i++ {
		ox := int(float64(i) * nx)
		oy := int(float64(i) * ny)
		dst.DrawLine(x1+ox, y1+oy, x2+ox, y2+oy)
	}
}

// DrawLabel composites a text callout at (x, y): a solid background rectangle
// matching the text bounds first, the rasterized text on top. An empty text
// is a complete no-op, background box included.
func DrawLabel(dst Surface, txt TextRasterizer, text string, x, y int, back color.RGBA) error {
	if text == "" || txt == nil {
		return nil
	}
	img, err := txt.Render(text)
	if err != nil {
		return fmt.Errorf("rasterize label %q: %w", text, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	dst.SetColor(back)
	dst.FillRect(x, y, x+b.Dx()-1, y+b.Dy()-1)
	dst.Blit(img, x, y)
	return nil
}

// RenderScene draws a parsed scene onto dst: every resolved line first, then
// every point as a filled circle with its label, so markers and labels sit on
// top of connecting strokes. Line references are resolved against the scene's
// symbol table at draw time. Label rasterization failures do not stop the
// render; they are collected and returned joined.
func RenderScene(dst Surface, sc *script.Scene, st Style, txt TextRasterizer) error {
	if sc == nil {
		return nil
	}
	dst.SetColor(st.Line)
	for _, ln := range sc.Lines {
		p1, p2, ok := sc.Resolve(ln)
		if !ok {
			continue
		}
		StrokeLine(dst, p1.X, p1.Y, p2.X, p2.Y, st.Thickness)
	}

	var errs []error
	for _, pt := range sc.Points {
		dst.SetColor(st.Point)
		FillCircle(dst, pt.X, pt.Y, st.Radius)
		lx := pt.X + st.Radius + labelGap
		ly := pt.Y - st.Radius
		if err := DrawLabel(dst, txt, pt.Label, lx, ly, st.LabelBack); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
