/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"reflect"
	"testing"
)

func TestParseKitchenScenario(t *testing.T) {
	input := "### INT. KITCHEN - DAY\n\nShe cooks.\n\n@ALEX\n(quietly)\nDinner's ready.\n\n>> CUT TO:"
	els := Parse(input)
	if len(els) != 4 {
		t.Fatalf("expected 4 elements, got %d: %+v", len(els), els)
	}
	if els[0].Kind != KindScene || els[0].Text != "INT. KITCHEN - DAY" {
		t.Fatalf("unexpected scene: %+v", els[0])
	}
	if els[1].Kind != KindAction || els[1].Text != "She cooks." {
		t.Fatalf("unexpected action: %+v", els[1])
	}
	d := els[2]
	if d.Kind != KindDialogue || d.Character != "ALEX" {
		t.Fatalf("unexpected dialogue: %+v", d)
	}
	if !reflect.DeepEqual(d.Parentheticals, []string{"(quietly)"}) {
		t.Fatalf("unexpected parentheticals: %+v", d.Parentheticals)
	}
	if !reflect.DeepEqual(d.Lines, []string{"Dinner's ready."}) {
		t.Fatalf("unexpected dialogue lines: %+v", d.Lines)
	}
	if els[3].Kind != KindTransition || els[3].Text != "CUT TO:" {
		t.Fatalf("unexpected transition: %+v", els[3])
	}
}

func TestParseOneOfEachConstruct(t *testing.T) {
	input := "### X\n\nplain paragraph\n\n@NAME\nline\n\n>> go\n\n! shot\n\n---"
	els := Parse(input)
	wantKinds := []Kind{KindScene, KindAction, KindDialogue, KindTransition, KindShot, KindPageBreak}
	if len(els) != len(wantKinds) {
		t.Fatalf("expected %d elements, got %d: %+v", len(wantKinds), len(els), els)
	}
	for i, k := range wantKinds {
		if els[i].Kind != k {
			t.Errorf("element %d: kind %v, want %v", i, els[i].Kind, k)
		}
	}
}

func TestClassifyTransitionUppercasesAndAppendsColon(t *testing.T) {
	el, ok := Classify(">> fade out")
	if !ok || el.Kind != KindTransition {
		t.Fatalf("expected transition, got %+v ok=%v", el, ok)
	}
	if el.Text != "FADE OUT:" {
		t.Fatalf("transition text = %q, want %q", el.Text, "FADE OUT:")
	}
	// Already colon-terminated input must not gain a second colon.
	el, _ = Classify(">> CUT TO:")
	if el.Text != "CUT TO:" {
		t.Fatalf("transition text = %q, want %q", el.Text, "CUT TO:")
	}
}

func TestClassifyHeadingTiers(t *testing.T) {
	for _, marker := range []string{"# ", "## ", "### "} {
		el, ok := Classify(marker + "INT. LAB - NIGHT")
		if !ok || el.Kind != KindScene || el.Text != "INT. LAB - NIGHT" {
			t.Fatalf("marker %q: got %+v ok=%v", marker, el, ok)
		}
	}
}

func TestClassifyShotUppercases(t *testing.T) {
	el, ok := Classify("! close on the knife")
	if !ok || el.Kind != KindShot || el.Text != "CLOSE ON THE KNIFE" {
		t.Fatalf("got %+v ok=%v", el, ok)
	}
}

func TestClassifyNoteProducesNothing(t *testing.T) {
	if el, ok := Classify("> remember to fix this scene"); ok {
		t.Fatalf("expected no element for note, got %+v", el)
	}
}

func TestClassifyDialogueRoutesParentheticals(t *testing.T) {
	el, ok := Classify("@MARGOT\n(beat)\nYou came back.\n(smiling)\nOf course.")
	if !ok || el.Kind != KindDialogue {
		t.Fatalf("got %+v ok=%v", el, ok)
	}
	if el.Character != "MARGOT" {
		t.Fatalf("character = %q", el.Character)
	}
	if !reflect.DeepEqual(el.Parentheticals, []string{"(beat)", "(smiling)"}) {
		t.Fatalf("parentheticals = %+v", el.Parentheticals)
	}
	if !reflect.DeepEqual(el.Lines, []string{"You came back.", "Of course."}) {
		t.Fatalf("lines = %+v", el.Lines)
	}
}

func TestClassifyDialogueCueOnly(t *testing.T) {
	el, ok := Classify("@voice")
	if !ok || el.Kind != KindDialogue || el.Character != "VOICE" {
		t.Fatalf("got %+v ok=%v", el, ok)
	}
	if len(el.Parentheticals) != 0 || len(el.Lines) != 0 {
		t.Fatalf("expected empty body, got %+v", el)
	}
}

func TestClassifyIdempotentOnNormalizedText(t *testing.T) {
	// Re-classifying already-normalized output through the same path must not
	// change it.
	cases := []struct {
		block string
		want  string
	}{
		{"### INT. KITCHEN - DAY", "INT. KITCHEN - DAY"},
		{">> CUT TO:", "CUT TO:"},
		{"! CLOSE ON", "CLOSE ON"},
	}
	for _, c := range cases {
		first, ok := Classify(c.block)
		if !ok {
			t.Fatalf("Classify(%q) produced nothing", c.block)
		}
		if first.Text != c.want {
			t.Fatalf("Classify(%q).Text = %q, want %q", c.block, first.Text, c.want)
		}
	}
}

func TestParseConsecutiveBreaks(t *testing.T) {
	els := Parse("---\n\n---")
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d: %+v", len(els), els)
	}
	for i, el := range els {
		if el.Kind != KindPageBreak {
			t.Errorf("element %d: %+v, want page break", i, el)
		}
	}
}

func TestParseEmbeddedBreakInsideActionParagraph(t *testing.T) {
	// A bare hyphen line merged into a paragraph must still split into
	// actions around a synthesized page break.
	els := Parse("First part.\n--\nSecond part.")
	if len(els) != 3 {
		t.Fatalf("expected 3 elements, got %d: %+v", len(els), els)
	}
	if els[0].Kind != KindAction || els[0].Text != "First part." {
		t.Fatalf("unexpected first element: %+v", els[0])
	}
	if els[1].Kind != KindPageBreak {
		t.Fatalf("unexpected middle element: %+v", els[1])
	}
	if els[2].Kind != KindAction || els[2].Text != "Second part." {
		t.Fatalf("unexpected last element: %+v", els[2])
	}
}

func TestParseDropsHyphenOnlyActionResidue(t *testing.T) {
	els := Parse("- -\n\nReal action.")
	if len(els) != 1 || els[0].Kind != KindAction || els[0].Text != "Real action." {
		t.Fatalf("unexpected elements: %+v", els)
	}
}

func TestParseKeepsInteriorMarkersInAction(t *testing.T) {
	els := Parse("She stares at the # symbol on the wall.")
	if len(els) != 1 || els[0].Kind != KindAction {
		t.Fatalf("unexpected elements: %+v", els)
	}
	if els[0].Text != "She stares at the # symbol on the wall." {
		t.Fatalf("interior markers must be preserved: %q", els[0].Text)
	}
}

func TestParseOrderIsSourceOrder(t *testing.T) {
	input := "! WIDE\n\n### INT. A - DAY\n\n@B\nline\n\naction"
	els := Parse(input)
	wantKinds := []Kind{KindShot, KindScene, KindDialogue, KindAction}
	if len(els) != len(wantKinds) {
		t.Fatalf("expected %d elements, got %+v", len(wantKinds), els)
	}
	for i, k := range wantKinds {
		if els[i].Kind != k {
			t.Errorf("element %d: kind %v, want %v", i, els[i].Kind, k)
		}
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	kinds := []Kind{KindAction, KindScene, KindDialogue, KindTransition, KindShot, KindPageBreak}
	for _, k := range kinds {
		if got := KindFromString(k.String()); got != k {
			t.Errorf("KindFromString(%q) = %v, want %v", k.String(), got, k)
		}
	}
}
