/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package screenplay turns screenplay-flavored Markdown into an ordered
// sequence of typed elements.
//
// Supported syntax:
//   - Scene heading (slugline): "### INT. KITCHEN - DAY" ("##" and "#" also accepted)
//   - Action: plain paragraphs
//   - Character cue: "@ALEX" starts a dialogue block; following lines are the
//     dialogue, with "(...)"-wrapped lines captured as parentheticals
//   - Transition: ">> CUT TO:"
//   - Shot heading: "! CLOSE ON"
//   - Forced page break: a line with just "---"
//   - Comments: lines starting with "//" are dropped
//   - Notes/blockquotes: lines starting with ">" (but not ">>") are dropped
package screenplay

// Kind identifies the type of a screenplay element.
type Kind int

const (
	KindAction Kind = iota
	KindScene
	KindDialogue
	KindTransition
	KindShot
	KindPageBreak
)

// String returns the lower-case name used in JSON manifests and logs.
func (k Kind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindDialogue:
		return "dialogue"
	case KindTransition:
		return "transition"
	case KindShot:
		return "shot"
	case KindPageBreak:
		return "pagebreak"
	default:
		return "action"
	}
}

// KindFromString is the inverse of Kind.String. Unknown names map to action.
func KindFromString(s string) Kind {
	switch s {
	case "scene":
		return KindScene
	case "dialogue":
		return KindDialogue
	case "transition":
		return KindTransition
	case "shot":
		return KindShot
	case "pagebreak":
		return KindPageBreak
	default:
		return KindAction
	}
}

// Element is one typed unit of the screenplay. Which fields are meaningful
// depends on Kind:
//
//   - KindScene, KindShot, KindTransition, KindAction use Text.
//   - KindDialogue uses Character, Parentheticals, and Lines.
//   - KindPageBreak carries no payload.
//
// Scene text is stored as parsed (case preserved); renderers upper-case it.
// Transition and Shot text is upper-cased at parse time, and a transition is
// guaranteed to end with a colon. Character is upper-cased at parse time.
// Lines never contains a string fully wrapped in parentheses; those are always
// routed to Parentheticals. The classifier's output is treated as immutable by
// every downstream consumer.
type Element struct {
	Kind           Kind
	Text           string
	Character      string
	Parentheticals []string
	Lines          []string
}

// DialogueText joins the dialogue lines with newlines, the form a renderer
// wraps as a single block.
func (e Element) DialogueText() string {
	out := ""
	for i, ln := range e.Lines {
		if i > 0 {
			out += "\n"
		}
		out += ln
	}
	return out
}
