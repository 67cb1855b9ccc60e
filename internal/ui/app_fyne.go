//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"

	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"vdview/internal/config"
	"vdview/internal/crash"
	applog "vdview/internal/log"
	"vdview/internal/viewer"
)

// frameWidget shows the annotated frame and reports pointer activity in image
// pixel coordinates.
type frameWidget struct {
	widget.BaseWidget
	img     *canvas.Image
	imgW    int
	imgH    int
	onMove  func(x, y int)
	onClick func(x, y int)
}

var _ fyne.Tappable = (*frameWidget)(nil)
var _ desktop.Hoverable = (*frameWidget)(nil)

func newFrameWidget(imgW, imgH int) *frameWidget {
	f := &frameWidget{img: canvas.NewImageFromImage(nil), imgW: imgW, imgH: imgH}
	f.img.FillMode = canvas.ImageFillContain
	f.img.ScaleMode = canvas.ImageScalePixels
	f.ExtendBaseWidget(f)
	return f
}

func (f *frameWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(f.img)
}

func (f *frameWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(f.imgW), float32(f.imgH))
}

// toImage maps a widget-local position onto image pixels, accounting for the
// contain-fit letterboxing.
func (f *frameWidget) toImage(pos fyne.Position) (int, int, bool) {
	sz := f.Size()
	if sz.Width <= 0 || sz.Height <= 0 || f.imgW == 0 || f.imgH == 0 {
		return 0, 0, false
	}
	scaleX := sz.Width / float32(f.imgW)
	scaleY := sz.Height / float32(f.imgH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	drawnW := float32(f.imgW) * scale
	drawnH := float32(f.imgH) * scale
	offX := (sz.Width - drawnW) / 2
	offY := (sz.Height - drawnH) / 2
	x := int((pos.X - offX) / scale)
	y := int((pos.Y - offY) / scale)
	if x < 0 || y < 0 || x >= f.imgW || y >= f.imgH {
		return 0, 0, false
	}
	return x, y, true
}

func (f *frameWidget) Tapped(ev *fyne.PointEvent) {
	if x, y, ok := f.toImage(ev.Position); ok && f.onClick != nil {
		f.onClick(x, y)
	}
}

func (f *frameWidget) MouseIn(ev *desktop.MouseEvent) { f.MouseMoved(ev) }
func (f *frameWidget) MouseOut()                      {}

func (f *frameWidget) MouseMoved(ev *desktop.MouseEvent) {
	if x, y, ok := f.toImage(ev.Position); ok && f.onMove != nil {
		f.onMove(x, y)
	}
}

// Run opens the annotated frame in a window. Keys: s saves a snapshot next to
// the image, r re-reads the script, q closes the window.
func Run(imagePath, scriptPath string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting viewer window")

	reportDir, _ := config.DataDir()
	defer crash.Recover(reportDir, nil)

	s, err := viewer.Open(imagePath, scriptPath, cfg)
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID("vdview")
	imgW, imgH := s.Size()
	w := fyneApp.NewWindow(fmt.Sprintf("vdview — %s", imagePath))

	status := widget.NewLabel("Ready")
	frame := newFrameWidget(imgW, imgH)
	frame.img.Image = s.Render()

	frame.onMove = func(x, y int) {
		status.SetText(fmt.Sprintf("(%d, %d)", x, y))
	}
	frame.onClick = func(x, y int) {
		l.Info("click", slog.Int("x", x), slog.Int("y", y))
		if pt, ok := s.NearestPoint(x, y); ok {
			status.SetText(fmt.Sprintf("(%d, %d) — nearest point %q at (%d, %d)", x, y, pt.Label, pt.X, pt.Y))
		}
	}

	w.SetContent(container.NewBorder(nil, status, nil, nil, frame))
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyQ, fyne.KeyEscape:
			w.Close()
		case fyne.KeyS:
			path := s.SnapshotPath()
			if err := s.SaveSnapshot(path); err != nil {
				l.Error("snapshot failed", slog.Any("err", err))
				status.SetText(fmt.Sprintf("snapshot failed: %v", err))
				return
			}
			status.SetText(fmt.Sprintf("saved %s", path))
		case fyne.KeyR:
			s.Reload()
			frame.img.Image = s.Render()
			frame.img.Refresh()
			status.SetText(fmt.Sprintf("reloaded: %d points, %d lines, %d dropped",
				len(s.Scene().Points), len(s.Scene().Lines), len(s.Diagnostics())))
		}
	})

	w.Resize(fyne.NewSize(float32(imgW), float32(imgH)+40))
	w.ShowAndRun()
	return nil
}
