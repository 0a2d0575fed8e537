/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"strings"

	"scriptmd/internal/screenplay"
	"scriptmd/internal/textlayout"
)

// ErrNoContent reports that the element sequence classified to nothing, so
// there is nothing to lay out. Callers decide whether that is fatal.
var ErrNoContent = errors.New("layout: no elements to lay out")

// Line is one placed, wrapped physical line.
type Line struct {
	X, Y float64
	Text string
	Bold bool
}

// Page is an ordered sequence of placed lines. Pages are never revisited
// once closed; consumers may rely on top-to-bottom line order.
type Page struct {
	Number int // 1-based
	Lines  []Line
}

// paginator is the accumulator for one Paginate call: the open page, the
// vertical cursor, and the closed pages. It is never shared.
type paginator struct {
	geom  Geometry
	m     textlayout.Measurer
	pages []Page
	cur   Page
	y     float64
}

// Paginate lays out elements onto pages. The element slice is read-only
// input; the returned pages are immutable output. ErrNoContent is returned
// for an empty sequence, and geometry problems surface as validation errors
// before any layout work happens.
func Paginate(elements []screenplay.Element, geom Geometry, m textlayout.Measurer) ([]Page, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, ErrNoContent
	}
	if m == nil {
		m = textlayout.FixedMeasurer{SizePt: geom.FontSizePt}
	}

	p := &paginator{geom: geom, m: m}
	p.openPage()

	lh := geom.LineHeight()
	for _, el := range elements {
		switch el.Kind {
		case screenplay.KindPageBreak:
			p.newPage()
		case screenplay.KindScene:
			p.drawBlock(strings.ToUpper(el.Text), geom.LeftScene, geom.RightAction,
				0.25*lh, 0.25*lh, false, true)
		case screenplay.KindShot:
			p.drawBlock(strings.ToUpper(el.Text), geom.LeftAction, geom.RightAction,
				0.1*lh, 0.1*lh, false, false)
		case screenplay.KindAction:
			p.drawBlock(el.Text, geom.LeftAction, geom.RightAction,
				0.2*lh, 0.2*lh, false, false)
		case screenplay.KindTransition:
			p.drawBlock(el.Text, geom.LeftAction, geom.RightTransition,
				0.3*lh, 0.1*lh, true, false)
		case screenplay.KindDialogue:
			// Three sub-draws, each checking overflow on its own; a dialogue
			// block may legitimately split across a page boundary.
			p.drawBlock(strings.ToUpper(el.Character), geom.LeftCharacter, geom.RightDialogue,
				0.3*lh, 0, false, false)
			for _, paren := range el.Parentheticals {
				p.drawBlock(paren, geom.LeftParenthetical, geom.RightParenthetical,
					0, 0, false, false)
			}
			p.drawBlock(el.DialogueText(), geom.LeftDialogue, geom.RightDialogue,
				0, 0.3*lh, false, false)
		}
	}
	p.closePage()
	return p.pages, nil
}

func (p *paginator) openPage() {
	p.cur = Page{Number: len(p.pages) + 1}
	p.y = p.geom.MarginTop
	if p.geom.Title != "" {
		tw := p.width(p.geom.Title, textlayout.Style{})
		p.cur.Lines = append(p.cur.Lines, Line{
			X:    (p.geom.PageWidth - tw) / 2,
			Y:    p.geom.titleY(),
			Text: p.geom.Title,
		})
	}
}

func (p *paginator) closePage() {
	p.pages = append(p.pages, p.cur)
}

func (p *paginator) newPage() {
	p.closePage()
	p.openPage()
}

// ensureSpace opens a fresh page when the required extent would run past the
// bottom margin.
func (p *paginator) ensureSpace(required float64) {
	if p.y+required > p.geom.PageHeight-p.geom.MarginBottom {
		p.newPage()
	}
}

func (p *paginator) width(text string, style textlayout.Style) float64 {
	w, err := p.m.Width(text, style)
	if err != nil {
		// absorbed: approximate rather than fail layout
		w, _ = textlayout.FixedMeasurer{SizePt: p.geom.FontSizePt}.Width(text, style)
	}
	return w
}

// drawBlock wraps text at the given margins and places it, advancing the
// cursor. A non-empty block always advances by at least one line height, so
// pagination cannot loop without making progress.
func (p *paginator) drawBlock(text string, left, rightMargin, before, after float64, alignRight, bold bool) {
	style := textlayout.Style{Bold: bold}
	maxWidth := p.geom.PageWidth - left - rightMargin
	wrapped := []string{""}
	if text != "" {
		wrapped = textlayout.Wrap(p.m, text, style, maxWidth)
	}
	lh := p.geom.LineHeight()
	p.ensureSpace(before + float64(len(wrapped))*lh + after)

	p.y += before
	for _, ln := range wrapped {
		x := left
		if alignRight {
			x = p.geom.PageWidth - rightMargin - p.width(ln, style)
		}
		if ln != "" {
			p.cur.Lines = append(p.cur.Lines, Line{X: x, Y: p.y, Text: ln, Bold: bold})
		}
		p.y += lh
	}
	p.y += after
}
