/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Style.Thickness != 5 || cfg.Style.Radius != 4 || cfg.Style.FontSizePt != 12 {
		t.Fatalf("unexpected style defaults: %+v", cfg.Style)
	}
	if cfg.Limits.MaxPoints != 500 || cfg.Limits.MaxLines != 500 {
		t.Fatalf("unexpected limit defaults: %+v", cfg.Limits)
	}
	if cfg.Backend.Enabled {
		t.Fatalf("backend must be disabled by default")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME-based config path")
	}
	t.Setenv("HOME", t.TempDir())

	cfg := Defaults()
	cfg.Style.Thickness = 9
	cfg.Limits.MaxPoints = 42
	cfg.Backend.Enabled = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Style.Thickness != 9 || got.Limits.MaxPoints != 42 || !got.Backend.Enabled {
		t.Fatalf("round trip lost values: %+v", got)
	}
	// Untouched fields keep their defaults.
	if got.Style.Radius != 4 {
		t.Fatalf("default radius lost: %+v", got.Style)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME-based config path")
	}
	t.Setenv("HOME", t.TempDir())
	got, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Style.Thickness != Defaults().Style.Thickness {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME-based config path")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvMaxPoints, "77")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvFontPath, filepath.Join(os.TempDir(), "f.ttf"))
	t.Setenv(EnvBackendEnabled, "yes")

	got, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Limits.MaxPoints != 77 {
		t.Fatalf("max points override ignored: %+v", got.Limits)
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("log level override ignored: %+v", got.Logging)
	}
	if got.Style.FontPath == "" {
		t.Fatalf("font path override ignored")
	}
	if !got.Backend.Enabled {
		t.Fatalf("backend enable override ignored")
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"#000000", color.RGBA{A: 255}},
		{"#FFFFFF", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"#ff8000", color.RGBA{R: 255, G: 128, A: 255}},
		{"#F00", color.RGBA{R: 255, A: 255}},
		{" #0f0 ", color.RGBA{G: 255, A: 255}},
	}
	for _, c := range cases {
		got, err := ParseHexColor(c.in)
		if err != nil {
			t.Fatalf("ParseHexColor(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseHexColor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "000000", "#12345", "#GGGGGG"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("ParseHexColor(%q) should fail", bad)
		}
	}
}

// memStore stubs the OS keyring for DSN tests.
type memStore struct {
	vals map[string]string
}

func (m *memStore) Get(service, key string) (string, error) {
	v, ok := m.vals[service+"/"+key]
	if !ok {
		return "", errors.New("secret not found in keyring")
	}
	return v, nil
}
func (m *memStore) Set(service, key, value string) error {
	m.vals[service+"/"+key] = value
	return nil
}
func (m *memStore) Delete(service, key string) error {
	delete(m.vals, service+"/"+key)
	return nil
}

func TestBackendDSNPrefersEnv(t *testing.T) {
	old := tokenStore
	defer func() { tokenStore = old }()
	tokenStore = &memStore{vals: map[string]string{}}

	t.Setenv(EnvBackendDSN, "postgres://env/db")
	dsn, err := BackendDSN()
	if err != nil {
		t.Fatalf("BackendDSN error: %v", err)
	}
	if dsn != "postgres://env/db" {
		t.Fatalf("env DSN not preferred: %q", dsn)
	}
}

func TestBackendDSNKeyringRoundTrip(t *testing.T) {
	old := tokenStore
	defer func() { tokenStore = old }()
	tokenStore = &memStore{vals: map[string]string{}}
	t.Setenv(EnvBackendDSN, "")

	if err := SaveBackendDSN("postgres://stored/db"); err != nil {
		t.Fatalf("SaveBackendDSN error: %v", err)
	}
	dsn, err := BackendDSN()
	if err != nil {
		t.Fatalf("BackendDSN error: %v", err)
	}
	if dsn != "postgres://stored/db" {
		t.Fatalf("unexpected DSN: %q", dsn)
	}
	if err := DeleteBackendDSN(); err != nil {
		t.Fatalf("DeleteBackendDSN error: %v", err)
	}
	if err := SaveBackendDSN("  "); err == nil {
		t.Fatalf("empty DSN should be rejected")
	}
}
