/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"scriptmd/internal/screenplay"
)

func TestExtractEntitiesCharacters(t *testing.T) {
	elements := []screenplay.Element{
		{Kind: screenplay.KindDialogue, Character: "Bob", Lines: []string{"Hi."}},
		{Kind: screenplay.KindDialogue, Character: "ALICE", Lines: []string{"Hello."}},
		{Kind: screenplay.KindDialogue, Character: "bob", Lines: []string{"Again."}},
	}
	inv := ExtractEntities(elements)
	if got := inv.Characters["BOB"]; got.Count != 2 || got.FirstIndex != 0 {
		t.Fatalf("BOB = %+v, want count 2 first 0", got)
	}
	if got := inv.Characters["ALICE"]; got.Count != 1 || got.FirstIndex != 1 {
		t.Fatalf("ALICE = %+v, want count 1 first 1", got)
	}
}

func TestExtractEntitiesLocations(t *testing.T) {
	cases := []struct {
		slug string
		want string
	}{
		{"INT. KITCHEN - DAY", "KITCHEN"},
		{"EXT. CITY STREET - NIGHT", "CITY STREET"},
		{"INT/EXT. CAR - MOVING - DAY", "CAR - MOVING"},
		{"INT. BASEMENT", "BASEMENT"},
		{"ROOFTOP - DUSK", "ROOFTOP"},
	}
	for _, c := range cases {
		elements := []screenplay.Element{{Kind: screenplay.KindScene, Text: c.slug}}
		inv := ExtractEntities(elements)
		if _, ok := inv.Locations[c.want]; !ok {
			t.Errorf("slug %q: want location %q, got %v", c.slug, c.want, inv.Locations)
		}
		if len(inv.Locations) != 1 {
			t.Errorf("slug %q: want exactly one location, got %v", c.slug, inv.Locations)
		}
	}
}

func TestExtractEntitiesObjects(t *testing.T) {
	elements := []screenplay.Element{
		{Kind: screenplay.KindScene, Text: "INT. KITCHEN - DAY"},
		{Kind: screenplay.KindDialogue, Character: "BOB", Lines: []string{"Careful."}},
		{Kind: screenplay.KindAction, Text: "BOB grabs the REVOLVER. The REVOLVER gleams. A clock reads 1234."},
		{Kind: screenplay.KindShot, Text: "CLOSE ON KNIFE"},
	}
	inv := ExtractEntities(elements)
	if got := inv.Objects["REVOLVER"]; got.Count != 2 || got.FirstIndex != 2 {
		t.Fatalf("REVOLVER = %+v, want count 2 first 2", got)
	}
	if _, ok := inv.Objects["KNIFE"]; !ok {
		t.Errorf("KNIFE missing from objects: %v", inv.Objects)
	}
	// Known characters, locations, camera words, and numbers are excluded.
	for _, banned := range []string{"BOB", "KITCHEN", "CLOSE", "1234", "THE"} {
		if _, ok := inv.Objects[banned]; ok {
			t.Errorf("%s should not be an object candidate", banned)
		}
	}
}

func TestExtractEntitiesDirectionWordsNotObjects(t *testing.T) {
	// Uppercasing the prose turns every "out" into a token candidate, so
	// direction words must stay on the exclusion list.
	elements := []screenplay.Element{
		{Kind: screenplay.KindAction, Text: "He walks out and the lights fade out."},
	}
	inv := ExtractEntities(elements)
	for _, banned := range []string{"OUT", "FADE", "AND", "THE"} {
		if _, ok := inv.Objects[banned]; ok {
			t.Errorf("%s should not be an object candidate: %v", banned, inv.Objects)
		}
	}
	if _, ok := inv.Objects["LIGHTS"]; !ok {
		t.Errorf("LIGHTS missing from objects: %v", inv.Objects)
	}
}

func TestExtractEntitiesUppercasesActionText(t *testing.T) {
	// The whole paragraph is scanned uppercased, so lowercase prose still
	// yields candidates.
	elements := []screenplay.Element{
		{Kind: screenplay.KindAction, Text: "She lifts the revolver slowly."},
	}
	inv := ExtractEntities(elements)
	if _, ok := inv.Objects["REVOLVER"]; !ok {
		t.Fatalf("want REVOLVER from lowercase action text, got %v", inv.Objects)
	}
}

func TestLocationFromSluglineTimeWordFirst(t *testing.T) {
	// A heading that is nothing but a time segment keeps its first part so
	// the inventory never records an empty name.
	if got := locationFromSlugline("INT. NIGHT"); got != "NIGHT" {
		t.Fatalf("locationFromSlugline = %q, want NIGHT", got)
	}
}

func TestSortedEntriesOrder(t *testing.T) {
	m := map[string]Entry{
		"ZETA":  {Count: 1, FirstIndex: 5},
		"ALPHA": {Count: 3, FirstIndex: 9},
		"BETA":  {Count: 1, FirstIndex: 2},
		"GAMMA": {Count: 1, FirstIndex: 5},
	}
	got := sortedEntries(m)
	want := []string{"ALPHA", "BETA", "GAMMA", "ZETA"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("entry %d = %s, want %s", i, got[i].Name, name)
		}
	}
}
