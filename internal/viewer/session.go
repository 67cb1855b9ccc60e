/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewer owns one annotation session: the decoded base image, the
// parsed scene, and the render style. All state hangs off the Session struct;
// nothing in here is global, so several sessions can coexist in one process.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"vdview/internal/config"
	"vdview/internal/export"
	applog "vdview/internal/log"
	"vdview/internal/raster"
	"vdview/internal/script"
	"vdview/internal/textlayout"

	// Image codecs for the base frame.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Session holds everything needed to render one annotated frame.
type Session struct {
	cfg        config.AppConfig
	imagePath  string
	scriptPath string

	base  *image.RGBA
	scene *script.Scene
	diags []script.Diagnostic
	style raster.Style
	text  raster.TextRasterizer
}

// Open decodes the base image, parses the drawing script and prepares the
// render style. A missing or unreadable script is not fatal: the session
// starts with an empty scene and a warning, matching how an unreadable
// instruction is skipped rather than aborting the program.
func Open(imagePath, scriptPath string, cfg config.AppConfig) (*Session, error) {
	l := applog.WithComponent("viewer").With(
		slog.String("image", imagePath),
		slog.String("script", scriptPath),
	)

	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imagePath, err)
	}
	defer f.Close()
	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", imagePath, err)
	}
	l.Debug("image decoded", slog.String("format", format),
		slog.Int("w", src.Bounds().Dx()), slog.Int("h", src.Bounds().Dy()))

	// Normalize to an RGBA buffer anchored at the origin.
	base := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(base, base.Bounds(), src, src.Bounds().Min, draw.Src)

	lim := script.Limits{MaxPoints: cfg.Limits.MaxPoints, MaxLines: cfg.Limits.MaxLines}
	scene, diags, err := script.LoadFile(scriptPath, lim)
	if err != nil {
		l.Warn("script unreadable, starting with empty scene", slog.Any("err", err))
		scene, diags = script.Parse("", lim)
	}
	for _, d := range diags {
		l.Warn("instruction dropped",
			slog.Int("line", d.LineNo),
			slog.String("text", d.Text),
			slog.String("reason", d.Message))
	}

	style, textColor := styleFromConfig(cfg.Style)

	s := &Session{
		cfg:        cfg,
		imagePath:  imagePath,
		scriptPath: scriptPath,
		base:       base,
		scene:      scene,
		diags:      diags,
		style:      style,
		text:       textRenderer(cfg.Style, textColor),
	}
	l.Info("session open",
		slog.Int("points", len(scene.Points)),
		slog.Int("lines", len(scene.Lines)),
		slog.Int("dropped", len(diags)))
	return s, nil
}

// styleFromConfig translates the hex-string config style into raster colors.
// A malformed color falls back to its default with a warning instead of
// failing the whole session.
func styleFromConfig(st config.StyleConfig) (raster.Style, color.RGBA) {
	l := applog.WithComponent("viewer")
	out := raster.DefaultStyle()
	textColor := color.RGBA{A: 255}

	pick := func(name, hex string, dst *color.RGBA) {
		if strings.TrimSpace(hex) == "" {
			return
		}
		c, err := config.ParseHexColor(hex)
		if err != nil {
			l.Warn("bad style color, using default",
				slog.String("field", name), slog.Any("err", err))
			return
		}
		*dst = c
	}
	pick("line_color", st.LineColor, &out.Line)
	pick("point_color", st.PointColor, &out.Point)
	pick("label_background", st.LabelBackground, &out.LabelBack)
	pick("text_color", st.TextColor, &textColor)

	if st.Thickness > 0 {
		out.Thickness = st.Thickness
	}
	if st.Radius >= 0 {
		out.Radius = st.Radius
	}
	return out, textColor
}

// textRenderer builds the label rasterizer: the configured TTF/OTF face when
// one is set and loadable, the built-in bitmap face otherwise.
func textRenderer(st config.StyleConfig, col color.RGBA) raster.TextRasterizer {
	if st.FontPath == "" {
		return textlayout.Basic(col)
	}
	face, err := textlayout.LoadFace(st.FontPath, st.FontSizePt)
	if err != nil {
		applog.WithComponent("viewer").Warn("font unavailable, using built-in face",
			slog.String("path", st.FontPath), slog.Any("err", err))
		return textlayout.Basic(col)
	}
	return textlayout.NewRenderer(face, col)
}

// Render composites the scene over a fresh copy of the base image. The base
// stays untouched, so every call starts from the clean frame.
func (s *Session) Render() *image.RGBA {
	out := image.NewRGBA(s.base.Bounds())
	draw.Draw(out, out.Bounds(), s.base, image.Point{}, draw.Src)

	surf := raster.WrapImage(out)
	if err := raster.RenderScene(surf, s.scene, s.style, s.text); err != nil {
		applog.WithComponent("viewer").Warn("some labels failed to render", slog.Any("err", err))
	}
	return out
}

// Reload re-parses the drawing script, keeping the session's image and style.
func (s *Session) Reload() {
	lim := script.Limits{MaxPoints: s.cfg.Limits.MaxPoints, MaxLines: s.cfg.Limits.MaxLines}
	scene, diags, err := script.LoadFile(s.scriptPath, lim)
	if err != nil {
		applog.WithComponent("viewer").Warn("script unreadable on reload", slog.Any("err", err))
		scene, diags = script.Parse("", lim)
	}
	s.scene, s.diags = scene, diags
}

// SaveSnapshot renders the annotated frame and writes it as PNG.
func (s *Session) SaveSnapshot(path string) error {
	if err := export.WritePNG(s.Render(), path); err != nil {
		return err
	}
	applog.WithComponent("viewer").Info("snapshot saved", slog.String("path", path))
	return nil
}

// SnapshotPath suggests a timestamped snapshot filename next to the source
// image.
func (s *Session) SnapshotPath() string {
	dir := filepath.Dir(s.imagePath)
	base := strings.TrimSuffix(filepath.Base(s.imagePath), filepath.Ext(s.imagePath))
	stamp := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s-annotated-%s.png", base, stamp))
}

// NearestPoint returns the scene point closest to (x, y) in squared pixel
// distance, for click feedback. ok is false when the scene has no points.
func (s *Session) NearestPoint(x, y int) (pt script.Point, ok bool) {
	best := -1
	for _, p := range s.scene.Points {
		dx, dy := p.X-x, p.Y-y
		d := dx*dx + dy*dy
		if best < 0 || d < best {
			best = d
			pt = p
			ok = true
		}
	}
	return pt, ok
}

// Size returns the base image dimensions in pixels.
func (s *Session) Size() (w, h int) {
	b := s.base.Bounds()
	return b.Dx(), b.Dy()
}

// Scene exposes the parsed scene.
func (s *Session) Scene() *script.Scene { return s.scene }

// Diagnostics lists the instructions dropped while parsing.
func (s *Session) Diagnostics() []script.Diagnostic { return s.diags }

// ImagePath returns the base image path.
func (s *Session) ImagePath() string { return s.imagePath }

// ScriptPath returns the drawing script path.
func (s *Session) ScriptPath() string { return s.scriptPath }
