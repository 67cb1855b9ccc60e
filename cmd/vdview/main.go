/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"vdview/internal/backend"
	"vdview/internal/catalog"
	"vdview/internal/config"
	"vdview/internal/crash"
	"vdview/internal/export"
	applog "vdview/internal/log"
	"vdview/internal/script"
	"vdview/internal/stylepack"
	"vdview/internal/ui"
	"vdview/internal/version"
	"vdview/internal/viewer"
)

func usage() {
	fmt.Println("vdview — annotated raster viewer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vdview version|-v|--version                 Show version")
	fmt.Println("  vdview view <image> <script> [preset.json]  Open the annotated image in a window (build with -tags fyne)")
	fmt.Println("  vdview render <image> <script> <out>        Render to <out>; .png and .pdf are supported")
	fmt.Println("  vdview check <script>                       Parse the script and report dropped instructions")
	fmt.Println("  vdview recent                               List recently viewed image/script pairs")
	fmt.Println("  vdview forget <image> <script>              Drop a pair from the recent list")
	fmt.Println("  vdview publish <name> <script>              Upload a script to the shared store")
	fmt.Println("  vdview fetch <name> <out>                   Download a script from the shared store")
	fmt.Println("  vdview scripts                              List scripts in the shared store")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	reportDir, _ := config.DataDir()
	defer crash.Recover(reportDir, nil)

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("vdview — annotated raster viewer")
		fmt.Println(version.String())

	case "view":
		if len(args) < 4 {
			fmt.Println("view requires <image> and <script>")
			usage()
			os.Exit(2)
		}
		img, scr := absPath(args[2]), absPath(args[3])
		if len(args) >= 5 {
			mustApplyPreset(&cfg, args[4])
		}
		rememberSession(cfg, img, scr)
		if err := ui.Run(img, scr, cfg); err != nil {
			fail(err)
		}

	case "render":
		if len(args) < 5 {
			fmt.Println("render requires <image>, <script> and <out>")
			usage()
			os.Exit(2)
		}
		img, scr, out := absPath(args[2]), absPath(args[3]), args[4]
		if len(args) >= 6 {
			mustApplyPreset(&cfg, args[5])
		}
		s, err := viewer.Open(img, scr, cfg)
		if err != nil {
			fail(err)
		}
		frame := s.Render()
		switch strings.ToLower(filepath.Ext(out)) {
		case ".png":
			err = export.WritePNG(frame, out)
		case ".pdf":
			err = export.WritePDF(frame, out, filepath.Base(img))
		default:
			err = fmt.Errorf("unsupported output format %q (want .png or .pdf)", filepath.Ext(out))
		}
		if err != nil {
			fail(err)
		}
		rememberSession(cfg, img, scr)
		fmt.Println("Wrote", out)

	case "check":
		if len(args) < 3 {
			fmt.Println("check requires <script>")
			usage()
			os.Exit(2)
		}
		lim := script.Limits{MaxPoints: cfg.Limits.MaxPoints, MaxLines: cfg.Limits.MaxLines}
		scene, diags, err := script.LoadFile(args[2], lim)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%d points, %d lines\n", len(scene.Points), len(scene.Lines))
		for _, d := range diags {
			fmt.Printf("line %d: %s: %s\n", d.LineNo, d.Message, d.Text)
		}
		if len(diags) > 0 {
			os.Exit(1)
		}

	case "recent":
		c := openCatalog(cfg)
		defer c.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := c.Recent(ctx, 15)
		if err != nil {
			fail(err)
		}
		if len(entries) == 0 {
			fmt.Println("No recent sessions.")
			return
		}
		for _, e := range entries {
			fmt.Printf("%s  %s + %s  (opened %d times)\n",
				e.LastOpened.Local().Format("2006-01-02 15:04"), e.ImagePath, e.ScriptPath, e.OpenCount)
		}

	case "forget":
		if len(args) < 4 {
			fmt.Println("forget requires <image> and <script>")
			usage()
			os.Exit(2)
		}
		c := openCatalog(cfg)
		defer c.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Forget(ctx, absPath(args[2]), absPath(args[3])); err != nil {
			fail(err)
		}
		fmt.Println("Forgotten.")

	case "publish":
		if len(args) < 4 {
			fmt.Println("publish requires <name> and <script>")
			usage()
			os.Exit(2)
		}
		body, err := os.ReadFile(args[3])
		if err != nil {
			fail(fmt.Errorf("read script %s: %w", args[3], err))
		}
		store, ctx, cancel := dialBackend(cfg)
		defer cancel()
		defer store.Close()
		if err := store.Publish(ctx, args[2], string(body)); err != nil {
			fail(err)
		}
		fmt.Println("Published", args[2])

	case "fetch":
		if len(args) < 4 {
			fmt.Println("fetch requires <name> and <out>")
			usage()
			os.Exit(2)
		}
		store, ctx, cancel := dialBackend(cfg)
		defer cancel()
		defer store.Close()
		body, err := store.Fetch(ctx, args[2])
		if err != nil {
			fail(err)
		}
		if err := os.WriteFile(args[3], []byte(body), 0o644); err != nil {
			fail(fmt.Errorf("write %s: %w", args[3], err))
		}
		fmt.Println("Wrote", args[3])

	case "scripts":
		store, ctx, cancel := dialBackend(cfg)
		defer cancel()
		defer store.Close()
		infos, err := store.List(ctx)
		if err != nil {
			fail(err)
		}
		if len(infos) == 0 {
			fmt.Println("No shared scripts.")
			return
		}
		for _, info := range infos {
			fmt.Printf("%s  %s\n", info.UpdatedAt.Local().Format("2006-01-02 15:04"), info.Name)
		}

	default:
		fmt.Println("Unknown command:", args[1])
		usage()
		os.Exit(2)
	}
}

func fail(err error) {
	applog.WithComponent("cli").Error("command failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func mustApplyPreset(cfg *config.AppConfig, path string) {
	p, err := stylepack.Load(path)
	if err != nil {
		fail(err)
	}
	p.Apply(&cfg.Style)
	applog.WithComponent("cli").Info("style preset applied", slog.String("preset", p.Name))
}

func openCatalog(cfg config.AppConfig) *catalog.Catalog {
	if cfg.Catalog.Disabled {
		fail(fmt.Errorf("the session catalog is disabled in the config"))
	}
	path, err := catalog.DefaultPath()
	if err != nil {
		fail(err)
	}
	c, err := catalog.Open(path)
	if err != nil {
		fail(err)
	}
	return c
}

// rememberSession records the pair in the catalog; failures only warn since
// history is a convenience, not part of the render.
func rememberSession(cfg config.AppConfig, imagePath, scriptPath string) {
	if cfg.Catalog.Disabled {
		return
	}
	path, err := catalog.DefaultPath()
	if err != nil {
		return
	}
	c, err := catalog.Open(path)
	if err != nil {
		applog.WithComponent("cli").Warn("catalog unavailable", slog.Any("err", err))
		return
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Touch(ctx, imagePath, scriptPath); err != nil {
		applog.WithComponent("cli").Warn("catalog update failed", slog.Any("err", err))
	}
}

func dialBackend(cfg config.AppConfig) (*backend.Store, context.Context, context.CancelFunc) {
	if !cfg.Backend.Enabled {
		fail(fmt.Errorf("the shared script store is disabled; enable it in the config or set %s", config.EnvBackendEnabled))
	}
	dsn, err := config.BackendDSN()
	if err != nil {
		fail(err)
	}
	if dsn == "" {
		fail(fmt.Errorf("no backend DSN configured; set %s or store one in the OS keychain", config.EnvBackendDSN))
	}
	timeout := time.Duration(cfg.Backend.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	store, err := backend.Dial(ctx, dsn)
	if err != nil {
		cancel()
		fail(err)
	}
	return store, ctx, cancel
}
