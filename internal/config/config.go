/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads and saves the user-editable vdview configuration.
// The config lives as YAML in the user scope; environment variables act as
// read-only overrides at runtime. The backend DSN is never written to disk;
// it lives in the OS keychain.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// StyleConfig holds the drawing parameters applied when rendering a scene.
// Colors are hex strings ("#RGB" or "#RRGGBB").
type StyleConfig struct {
	LineColor       string  `yaml:"line_color"`
	PointColor      string  `yaml:"point_color"`
	TextColor       string  `yaml:"text_color"`
	LabelBackground string  `yaml:"label_background"`
	Thickness       int     `yaml:"thickness"`
	Radius          int     `yaml:"radius"`
	FontSizePt      float64 `yaml:"font_size_pt"`
	FontPath        string  `yaml:"font_path"` // empty: built-in bitmap face
}

// LimitsConfig bounds scene size per element category.
type LimitsConfig struct {
	MaxPoints int `yaml:"max_points"`
	MaxLines  int `yaml:"max_lines"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// BackendConfig controls the optional shared script store.
// The DSN is not stored on disk; it lives in the OS keychain.
type BackendConfig struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMs int  `yaml:"timeout_ms"`
}

type CatalogConfig struct {
	Disabled bool `yaml:"disabled"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Style         StyleConfig   `yaml:"style"`
	Limits        LimitsConfig  `yaml:"limits"`
	Logging       LoggingConfig `yaml:"logging"`
	Backend       BackendConfig `yaml:"backend"`
	Catalog       CatalogConfig `yaml:"catalog"`
}

// Defaults returns the application defaults: black ink, white label
// background, 5px strokes, 4px markers, 12pt labels, 500 elements per
// category.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Style: StyleConfig{
			LineColor:       "#000000",
			PointColor:      "#000000",
			TextColor:       "#000000",
			LabelBackground: "#FFFFFF",
			Thickness:       5,
			Radius:          4,
			FontSizePt:      12,
		},
		Limits:  LimitsConfig{MaxPoints: 500, MaxLines: 500},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Backend: BackendConfig{Enabled: false, TimeoutMs: 15000},
	}
}

// Env var names used as overrides.
const (
	EnvFontPath       = "VDV_FONT_PATH"
	EnvMaxPoints      = "VDV_MAX_POINTS"
	EnvMaxLines       = "VDV_MAX_LINES"
	EnvBackendEnabled = "VDV_BACKEND_ENABLED"
	EnvBackendDSN     = "VDV_BACKEND_DSN"
	EnvLogLevel       = "VDV_LOG_LEVEL"
	EnvLogFormat      = "VDV_LOG_FORMAT"
	EnvLogSource      = "VDV_LOG_SOURCE"
	EnvLogFile        = "VDV_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "vdview"
	keyringDSN     = "backend_dsn"
)

// TokenStore abstracts the keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// BackendDSN resolves the shared-store DSN: env override first, then the OS
// keychain. An empty string with nil error means "not configured".
func BackendDSN() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendDSN)); v != "" {
		return v, nil
	}
	dsn, err := tokenStore.Get(keyringService, keyringDSN)
	if err != nil && errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return dsn, err
}

// SaveBackendDSN stores the DSN in the OS keychain.
func SaveBackendDSN(dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("empty DSN")
	}
	return tokenStore.Set(keyringService, keyringDSN, dsn)
}

// DeleteBackendDSN removes the stored DSN.
func DeleteBackendDSN() error { return tokenStore.Delete(keyringService, keyringDSN) }

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "vdview")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "vdview")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "vdview")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the per-user data directory (catalog database, snapshots).
func DataDir() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// style
	if strings.TrimSpace(src.Style.LineColor) != "" {
		dst.Style.LineColor = src.Style.LineColor
	}
	if strings.TrimSpace(src.Style.PointColor) != "" {
		dst.Style.PointColor = src.Style.PointColor
	}
	if strings.TrimSpace(src.Style.TextColor) != "" {
		dst.Style.TextColor = src.Style.TextColor
	}
	if strings.TrimSpace(src.Style.LabelBackground) != "" {
		dst.Style.LabelBackground = src.Style.LabelBackground
	}
	if src.Style.Thickness > 0 {
		dst.Style.Thickness = src.Style.Thickness
	}
	if src.Style.Radius > 0 {
		dst.Style.Radius = src.Style.Radius
	}
	if src.Style.FontSizePt > 0 {
		dst.Style.FontSizePt = src.Style.FontSizePt
	}
	if strings.TrimSpace(src.Style.FontPath) != "" {
		dst.Style.FontPath = strings.TrimSpace(src.Style.FontPath)
	}
	// limits
	if src.Limits.MaxPoints > 0 {
		dst.Limits.MaxPoints = src.Limits.MaxPoints
	}
	if src.Limits.MaxLines > 0 {
		dst.Limits.MaxLines = src.Limits.MaxLines
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// backend: booleans copy directly so user preferences persist
	dst.Backend.Enabled = src.Backend.Enabled
	if src.Backend.TimeoutMs > 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Catalog.Disabled = src.Catalog.Disabled
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFontPath)); v != "" {
		cfg.Style.FontPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxPoints)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxPoints = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxLines)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.MaxLines = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendEnabled)); v != "" {
		lv := strings.ToLower(v)
		cfg.Backend.Enabled = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// ParseHexColor parses "#RGB" or "#RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color %q: missing '#'", s)
	}
	hex := s[1:]
	parse := func(sub string) (uint8, error) {
		v, err := strconv.ParseUint(sub, 16, 8)
		return uint8(v), err
	}
	switch len(hex) {
	case 3:
		r, errR := parse(strings.Repeat(string(hex[0]), 2))
		g, errG := parse(strings.Repeat(string(hex[1]), 2))
		b, errB := parse(strings.Repeat(string(hex[2]), 2))
		if errR != nil || errG != nil || errB != nil {
			return color.RGBA{}, fmt.Errorf("color %q: bad hex digit", s)
		}
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	case 6:
		r, errR := parse(hex[0:2])
		g, errG := parse(hex[2:4])
		b, errB := parse(hex[4:6])
		if errR != nil || errG != nil || errB != nil {
			return color.RGBA{}, fmt.Errorf("color %q: bad hex digit", s)
		}
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	default:
		return color.RGBA{}, fmt.Errorf("color %q: want #RGB or #RRGGBB", s)
	}
}
