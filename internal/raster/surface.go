/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// Surface is the drawable collaborator the rasterizer paints into. It keeps a
// current draw color and exposes only primitive operations; out-of-bounds
// draws are silent no-ops (the surface clips).
type Surface interface {
	Bounds() image.Rectangle
	SetColor(c color.RGBA)
	DrawPoint(x, y int)
	DrawLine(x0, y0, x1, y1 int)
	FillRect(x0, y0, x1, y1 int)
	Blit(src image.Image, x, y int)
}

// ImageSurface implements Surface on top of a stdlib RGBA image.
// image.RGBA.SetRGBA bounds-checks every write, which gives the clipping
// contract for free.
type ImageSurface struct {
	img *image.RGBA
	col color.RGBA
}

// NewImageSurface creates a surface backed by a fresh w x h image.
func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// WrapImage creates a surface drawing into an existing image.
func WrapImage(img *image.RGBA) *ImageSurface { return &ImageSurface{img: img} }

// RGBA exposes the backing image.
func (s *ImageSurface) RGBA() *image.RGBA { return s.img }

func (s *ImageSurface) Bounds() image.Rectangle { return s.img.Bounds() }

func (s *ImageSurface) SetColor(c color.RGBA) { s.col = c }

func (s *ImageSurface) DrawPoint(x, y int) { s.img.SetRGBA(x, y, s.col) }

// DrawLine draws a 1px segment, endpoints inclusive (Bresenham).
func (s *ImageSurface) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		s.img.SetRGBA(x0, y0, s.col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillRect fills the rectangle with corners (x0,y0) and (x1,y1) inclusive.
func (s *ImageSurface) FillRect(x0, y0, x1, y1 int) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			s.img.SetRGBA(x, y, s.col)
		}
	}
}

// Blit composites src over the surface with its top-left corner at (x, y).
func (s *ImageSurface) Blit(src image.Image, x, y int) {
	b := src.Bounds()
	draw.Draw(s.img, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Over)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
