/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout isolates text measurement and line breaking behind
// deterministic interfaces. Measurement degrades through explicit tiers:
// exact glyph advances from a loaded face, bounding-box widths, and a fixed
// per-rune monospace approximation that can never fail.
package textlayout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Style selects a face variant for measurement and drawing.
type Style struct {
	Bold bool
}

// Measurer reports the rendered width of text in points.
// Implementations are pure: the same text and style always yield the same
// width within one instance.
type Measurer interface {
	Width(text string, style Style) (float64, error)
}

// ErrNoFace indicates a measurer has no face for the requested style.
var ErrNoFace = errors.New("textlayout: no face for style")

// courierAdvance is the width/em ratio of Courier, the fallback ratio used
// when no real metrics are available.
const courierAdvance = 0.6

// FaceMeasurer measures with exact glyph advances of loaded faces.
// Bold falls back to the regular face when no bold variant was found, which
// is the right answer for monospace screenplay fonts.
type FaceMeasurer struct {
	Regular font.Face
	Bold    font.Face
}

func (m *FaceMeasurer) face(style Style) font.Face {
	if style.Bold && m.Bold != nil {
		return m.Bold
	}
	return m.Regular
}

// Width returns the advance width of text in points.
func (m *FaceMeasurer) Width(text string, style Style) (float64, error) {
	f := m.face(style)
	if f == nil {
		return 0, ErrNoFace
	}
	d := font.Drawer{Face: f}
	return fixedToPt(d.MeasureString(text)), nil
}

// BoundsMeasurer measures via glyph bounding boxes. Coarser than advance
// widths (trailing whitespace collapses to nothing) but still font-derived.
type BoundsMeasurer struct {
	Regular font.Face
	Bold    font.Face
}

func (m *BoundsMeasurer) Width(text string, style Style) (float64, error) {
	f := m.Regular
	if style.Bold && m.Bold != nil {
		f = m.Bold
	}
	if f == nil {
		return 0, ErrNoFace
	}
	bounds, _ := font.BoundString(f, text)
	w := bounds.Max.X - bounds.Min.X
	if w < 0 {
		w = 0
	}
	return fixedToPt(w), nil
}

// FixedMeasurer approximates every rune at a constant monospace advance.
// It is the tier of last resort and never fails.
type FixedMeasurer struct {
	SizePt float64
}

func (m FixedMeasurer) Width(text string, _ Style) (float64, error) {
	size := m.SizePt
	if size <= 0 {
		size = 12
	}
	return float64(utf8.RuneCountInString(text)) * size * courierAdvance, nil
}

// Fallback tries each tier in order and returns the first successful width.
// Construct it so that the final tier cannot fail; NewMeasurer guarantees
// this by always appending a FixedMeasurer.
type Fallback struct {
	Tiers []Measurer
}

func (f Fallback) Width(text string, style Style) (float64, error) {
	var lastErr error
	for _, t := range f.Tiers {
		w, err := t.Width(text, style)
		if err == nil {
			return w, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoFace
	}
	return 0, lastErr
}

// NewMeasurer builds the standard fallback chain for the given font size.
// When fontPath names a readable TTF/OTF it contributes face-based tiers,
// with a bold variant resolved by filename heuristics. The fixed tier is
// always present, so Width on the result never fails.
func NewMeasurer(fontPath string, sizePt float64) (Measurer, error) {
	fixedTier := FixedMeasurer{SizePt: sizePt}
	if strings.TrimSpace(fontPath) == "" {
		return Fallback{Tiers: []Measurer{fixedTier}}, nil
	}
	regular, err := loadFace(fontPath, sizePt)
	if err != nil {
		return Fallback{Tiers: []Measurer{fixedTier}}, fmt.Errorf("load font %s: %w", fontPath, err)
	}
	var bold font.Face
	if boldPath := BoldVariantPath(fontPath); boldPath != "" {
		// best effort; absence of a bold face is not an error
		bold, _ = loadFace(boldPath, sizePt)
	}
	return Fallback{Tiers: []Measurer{
		&FaceMeasurer{Regular: regular, Bold: bold},
		&BoundsMeasurer{Regular: regular, Bold: bold},
		fixedTier,
	}}, nil
}

// BoldVariantPath guesses the filename of the bold variant next to a regular
// font file. Returns "" when no candidate exists on disk.
func BoldVariantPath(path string) string {
	ext := filepath.Ext(path)
	root := strings.TrimSuffix(path, ext)
	var candidates []string
	if strings.Contains(root, "Regular") {
		candidates = append(candidates, strings.Replace(root, "Regular", "Bold", 1)+ext)
	}
	candidates = append(candidates,
		root+"Bold"+ext,
		root+"-Bold"+ext,
		strings.Replace(root, "-Regular", "-Bold", 1)+ext,
	)
	seen := map[string]bool{}
	for _, c := range candidates {
		if c == path || seen[c] {
			continue
		}
		seen[c] = true
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func loadFace(path string, sizePt float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: sizePt, DPI: 72, Hinting: font.HintingFull})
}

// fixedToPt converts a 26.6 fixed-point length to points.
func fixedToPt(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
