/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout paginates a screenplay element sequence onto fixed-size
// pages. Coordinates are in points with the origin at the top-left corner;
// y grows downward.
package layout

import "fmt"

// Geometry carries the page dimensions and the per-element-kind margins, all
// in points. The zero value is not usable; start from DefaultGeometry.
type Geometry struct {
	PageWidth  float64
	PageHeight float64

	MarginTop    float64
	MarginBottom float64

	LeftScene         float64
	LeftAction        float64
	LeftCharacter     float64
	LeftDialogue      float64
	LeftParenthetical float64

	RightAction        float64
	RightDialogue      float64
	RightParenthetical float64
	RightTransition    float64

	FontSizePt float64

	// Title, when non-empty, is drawn centered near the top of every page.
	Title string
}

// DefaultGeometry is the standard screenwriter layout on US Letter.
func DefaultGeometry() Geometry {
	const inch = 72.0
	return Geometry{
		PageWidth:  8.5 * inch,
		PageHeight: 11 * inch,

		MarginTop:    1.0 * inch,
		MarginBottom: 1.0 * inch,

		LeftScene:         1.5 * inch,
		LeftAction:        1.5 * inch,
		LeftCharacter:     3.5 * inch,
		LeftDialogue:      2.5 * inch,
		LeftParenthetical: 3.0 * inch,

		RightAction:        1.0 * inch,
		RightDialogue:      2.5 * inch,
		RightParenthetical: 2.5 * inch,
		RightTransition:    1.0 * inch,

		FontSizePt: 12,
	}
}

// LineHeight derives the vertical advance per wrapped line.
func (g Geometry) LineHeight() float64 { return g.FontSizePt * 1.2 }

// titleY is the vertical offset of the per-page title baseline area.
func (g Geometry) titleY() float64 { return 0.5 * 72 }

// Validate rejects geometry that cannot host any content. These are
// configuration errors, distinct from anything content-driven.
func (g Geometry) Validate() error {
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("layout: page dimensions must be positive, got %gx%g", g.PageWidth, g.PageHeight)
	}
	if g.FontSizePt <= 0 {
		return fmt.Errorf("layout: font size must be positive, got %g", g.FontSizePt)
	}
	if g.MarginTop < 0 || g.MarginBottom < 0 {
		return fmt.Errorf("layout: margins must be nonnegative")
	}
	if g.PageHeight-g.MarginTop-g.MarginBottom < g.LineHeight() {
		return fmt.Errorf("layout: margins leave no writable area on a %gpt page", g.PageHeight)
	}
	return nil
}
