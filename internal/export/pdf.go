/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF places the annotated frame on a single PDF page sized to the
// image (1px = 1pt, i.e. 72 DPI). Useful for passing annotated frames into
// print/review pipelines.
func WritePDF(img image.Image, path, title string) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	b := img.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())
	if w == 0 || h == 0 {
		return fmt.Errorf("empty image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	pdf.SetTitle(title, false)
	pdf.SetAuthor("vdview", false)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("frame", opts, &buf)
	pdf.ImageOptions("frame", 0, 0, w, h, false, opts, 0, "")
	if pdf.Err() {
		return fmt.Errorf("build pdf: %v", pdf.Error())
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
