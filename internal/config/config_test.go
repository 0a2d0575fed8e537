/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Page.WidthIn != 8.5 || cfg.Page.HeightIn != 11 {
		t.Fatalf("unexpected page defaults: %+v", cfg.Page)
	}
	if cfg.Export.WordsPerMinute != 160 || cfg.Export.FPS != 25 {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFromMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "page:\n  font_size_pt: 10\n  font_path: /tmp/Mono.ttf\nexport:\n  fps: 30\nlogging:\n  level: DEBUG\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadFrom(path)
	if cfg.Page.FontSizePt != 10 {
		t.Fatalf("font size not merged: %+v", cfg.Page)
	}
	if cfg.Page.FontPath != "/tmp/Mono.ttf" {
		t.Fatalf("font path not merged: %+v", cfg.Page)
	}
	if cfg.Export.FPS != 30 {
		t.Fatalf("fps not merged: %+v", cfg.Export)
	}
	if cfg.Export.WordsPerMinute != 160 {
		t.Fatalf("wpm default lost: %+v", cfg.Export)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level not normalized: %+v", cfg.Logging)
	}
	// Unset page values keep defaults.
	if cfg.Page.WidthIn != 8.5 {
		t.Fatalf("page width default lost: %+v", cfg.Page)
	}
}

func TestLoadFromMissingFileYieldsDefaults(t *testing.T) {
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvFontSize, "14")
	t.Setenv(EnvWPM, "120")
	t.Setenv(EnvLogLevel, "WARN")
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Page.FontSizePt != 14 {
		t.Fatalf("font size env override missing: %+v", cfg.Page)
	}
	if cfg.Export.WordsPerMinute != 120 {
		t.Fatalf("wpm env override missing: %+v", cfg.Export)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level env override missing: %+v", cfg.Logging)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv(EnvFontSize, "not-a-number")
	t.Setenv(EnvFPS, "-5")
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Page.FontSizePt != 12 || cfg.Export.FPS != 25 {
		t.Fatalf("garbage env values must be ignored: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")
	want := Defaults()
	want.Page.FontSizePt = 11
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := LoadFrom(path)
	if got.Page.FontSizePt != 11 {
		t.Fatalf("round trip lost font size: %+v", got.Page)
	}
}
