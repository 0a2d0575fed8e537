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
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes incompatibly.

type PageConfig struct {
	WidthIn         float64 `yaml:"width_in"`
	HeightIn        float64 `yaml:"height_in"`
	TopMarginIn     float64 `yaml:"top_margin_in"`
	BottomMarginIn  float64 `yaml:"bottom_margin_in"`
	FontSizePt      float64 `yaml:"font_size_pt"`
	TransitionRight float64 `yaml:"transition_right_in"`
	FontPath        string  `yaml:"font_path"`
}

type ExportConfig struct {
	WordsPerMinute int `yaml:"words_per_minute"`
	FPS            int `yaml:"fps"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Page          PageConfig    `yaml:"page"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults: US Letter, 12pt, screenwriter
// timing heuristics matching the PDF layout defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Page: PageConfig{
			WidthIn:         8.5,
			HeightIn:        11,
			TopMarginIn:     1,
			BottomMarginIn:  1,
			FontSizePt:      12,
			TransitionRight: 1,
		},
		Export:  ExportConfig{WordsPerMinute: 160, FPS: 25},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvFontPath  = "SMD_FONT_PATH"
	EnvFontSize  = "SMD_FONT_SIZE"
	EnvWPM       = "SMD_WPM"
	EnvFPS       = "SMD_FPS"
	EnvLogLevel  = "SMD_LOG_LEVEL"
	EnvLogFormat = "SMD_LOG_FORMAT"
	EnvLogFile   = "SMD_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "scriptmd")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "scriptmd")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "scriptmd")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. A missing or unparsable file silently yields the
// defaults; env overrides still apply.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	loadFile(&cfg, path)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadFrom behaves like Load with an explicit file path, for tests and the
// -config flag.
func LoadFrom(path string) AppConfig {
	cfg := Defaults()
	loadFile(&cfg, path)
	applyEnvOverrides(&cfg)
	return cfg
}

// Save writes the config YAML, creating the parent directory.
func Save(cfg AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadFile(cfg *AppConfig, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return
	}
	mergeInto(cfg, &fileCfg)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Page.WidthIn > 0 {
		dst.Page.WidthIn = src.Page.WidthIn
	}
	if src.Page.HeightIn > 0 {
		dst.Page.HeightIn = src.Page.HeightIn
	}
	if src.Page.TopMarginIn > 0 {
		dst.Page.TopMarginIn = src.Page.TopMarginIn
	}
	if src.Page.BottomMarginIn > 0 {
		dst.Page.BottomMarginIn = src.Page.BottomMarginIn
	}
	if src.Page.FontSizePt > 0 {
		dst.Page.FontSizePt = src.Page.FontSizePt
	}
	if src.Page.TransitionRight > 0 {
		dst.Page.TransitionRight = src.Page.TransitionRight
	}
	if strings.TrimSpace(src.Page.FontPath) != "" {
		dst.Page.FontPath = strings.TrimSpace(src.Page.FontPath)
	}
	if src.Export.WordsPerMinute > 0 {
		dst.Export.WordsPerMinute = src.Export.WordsPerMinute
	}
	if src.Export.FPS > 0 {
		dst.Export.FPS = src.Export.FPS
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFontPath)); v != "" {
		cfg.Page.FontPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Page.FontSizePt = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWPM)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Export.WordsPerMinute = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFPS)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Export.FPS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}
