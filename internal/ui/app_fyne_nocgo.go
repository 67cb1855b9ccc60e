//go:build fyne && !cgo

package ui

import (
	"fmt"

	"vdview/internal/config"
)

// Run informs the user that the Fyne window needs cgo (OpenGL) and a C
// toolchain. Compiled when the build uses -tags fyne but CGO is disabled.
func Run(_, _ string, _ config.AppConfig) error {
	return fmt.Errorf("the viewer window requires cgo (OpenGL). Enable cgo and install a C toolchain, then run: CGO_ENABLED=1 go run -tags fyne ./cmd/vdview view <image> <script>")
}
