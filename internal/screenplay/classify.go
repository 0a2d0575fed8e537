/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import "strings"

// classifyRule maps a block to an element. match reports whether the rule
// applies; build produces the element and whether one was produced at all
// (note blocks classify to nothing).
type classifyRule struct {
	name  string
	match func(block string) bool
	build func(block string) (Element, bool)
}

// rules is evaluated in order, first match wins. Prefixes overlap, so the
// ordering is load-bearing: longer heading markers before shorter ones, the
// ">> " transition before the ">" note discard.
var rules = []classifyRule{
	{name: "scene-h3", match: hasPrefix("### "), build: sceneFrom("### ")},
	{name: "scene-h2", match: hasPrefix("## "), build: sceneFrom("## ")},
	{name: "scene-h1", match: hasPrefix("# "), build: sceneFrom("# ")},
	{name: "transition", match: hasPrefix(">> "), build: buildTransition},
	{name: "note", match: hasPrefix(">"), build: buildNothing},
	{name: "shot", match: hasPrefix("! "), build: buildShot},
	{name: "dialogue", match: hasPrefix("@"), build: buildDialogue},
	{name: "action", match: func(string) bool { return true }, build: buildAction},
}

func hasPrefix(p string) func(string) bool {
	return func(block string) bool {
		return strings.HasPrefix(strings.TrimSpace(block), p)
	}
}

func sceneFrom(marker string) func(string) (Element, bool) {
	return func(block string) (Element, bool) {
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(block), marker))
		return Element{Kind: KindScene, Text: text}, true
	}
}

func buildTransition(block string) (Element, bool) {
	text := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(block), ">> ")))
	if !strings.HasSuffix(text, ":") {
		text += ":"
	}
	return Element{Kind: KindTransition, Text: text}, true
}

func buildNothing(string) (Element, bool) { return Element{}, false }

func buildShot(block string) (Element, bool) {
	text := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(block), "! ")))
	return Element{Kind: KindShot, Text: text}, true
}

func buildDialogue(block string) (Element, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	cue := strings.TrimLeft(lines[0], " \t")
	cue = strings.TrimPrefix(cue, "@")
	el := Element{
		Kind:      KindDialogue,
		Character: strings.ToUpper(strings.TrimSpace(cue)),
	}
	for _, ln := range lines[1:] {
		st := strings.TrimSpace(ln)
		if strings.HasPrefix(st, "(") && strings.HasSuffix(st, ")") {
			el.Parentheticals = append(el.Parentheticals, st)
		} else {
			el.Lines = append(el.Lines, st)
		}
	}
	return el, true
}

// buildAction is the fallthrough case. Stray markers that survived
// segmentation are stripped before the text becomes an action paragraph, and
// a block that cleans down to the break literal produces nothing.
func buildAction(block string) (Element, bool) {
	cleaned := strings.TrimSpace(block)
	for _, prefix := range []string{"# ", "## ", "### ", "! ", ">> ", "> "} {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
		}
	}
	if strings.TrimSpace(cleaned) == breakLiteral {
		return Element{}, false
	}
	return Element{Kind: KindAction, Text: cleaned}, true
}

// Classify maps one logical block to a typed element. The second return is
// false when the block classifies to nothing (notes, break residue). A block
// exactly equal to the break literal short-circuits to a PageBreak.
func Classify(block string) (Element, bool) {
	if strings.TrimSpace(block) == breakLiteral {
		return Element{Kind: KindPageBreak}, true
	}
	for _, r := range rules {
		if r.match(block) {
			return r.build(block)
		}
	}
	return Element{}, false // unreachable: the action rule always matches
}

// Parse runs the full pipeline: segmentation, classification, and the
// break-extraction post-pass over action paragraphs.
func Parse(raw string) []Element {
	var elements []Element
	for _, block := range Segment(raw) {
		if el, ok := Classify(block); ok {
			elements = append(elements, el)
		}
	}
	return extractEmbeddedBreaks(elements)
}

// extractEmbeddedBreaks splits action elements on internal lines consisting
// solely of one to three hyphens, interleaving page breaks at the split
// points, then drops action residue that is only hyphens and whitespace.
// This covers forced breaks that ended up inside a merged paragraph instead
// of isolated between blank lines.
func extractEmbeddedBreaks(elements []Element) []Element {
	var out []Element
	for _, el := range elements {
		if el.Kind != KindAction {
			out = append(out, el)
			continue
		}
		var buf []string
		flush := func() {
			if len(buf) == 0 {
				return
			}
			if joined := strings.TrimSpace(strings.Join(buf, "\n")); joined != "" {
				out = append(out, Element{Kind: KindAction, Text: joined})
			}
			buf = buf[:0]
		}
		for _, ln := range strings.Split(el.Text, "\n") {
			switch strings.TrimSpace(ln) {
			case "-", "--", "---":
				flush()
				out = append(out, Element{Kind: KindPageBreak})
			default:
				buf = append(buf, ln)
			}
		}
		flush()
	}

	// Final sanitation: drop any action whose text is hyphens and whitespace only.
	sanitized := out[:0]
	for _, el := range out {
		if el.Kind == KindAction && strings.Trim(el.Text, " -\t") == "" {
			continue
		}
		sanitized = append(sanitized, el)
	}
	return sanitized
}
