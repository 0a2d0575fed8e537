/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"regexp"
	"strings"

	"scriptmd/internal/screenplay"
)

// Entry records how often an entity occurred and the element index of its
// first mention.
type Entry struct {
	Count      int
	FirstIndex int
}

// Inventory holds the heuristically extracted entities of a screenplay:
// characters from dialogue cues, locations from scene headings, and object
// candidates from action/shot text.
type Inventory struct {
	Characters map[string]Entry
	Locations  map[string]Entry
	Objects    map[string]Entry
}

func (inv *Inventory) byCategory(key string) map[string]Entry {
	switch key {
	case "characters":
		return inv.Characters
	case "locations":
		return inv.Locations
	default:
		return inv.Objects
	}
}

var inventoryCategories = []struct {
	key, title, singular string
}{
	{"characters", "Characters", "Character"},
	{"locations", "Locations", "Location"},
	{"objects", "Objects / Props", "Object"},
}

var timeWords = map[string]bool{
	"DAY": true, "NIGHT": true, "MORNING": true, "EVENING": true,
	"LATER": true, "CONTINUOUS": true, "SAMETIME": true, "MOMENTSLATER": true,
	"DAWN": true, "DUSK": true,
}

// stopwords excluded from object candidates, including slugline and camera
// vocabulary that is uppercase by convention rather than a prop.
var stopwords = func() map[string]bool {
	m := map[string]bool{
		"INT": true, "EXT": true, "INT/EXT": true, "AND": true, "THE": true,
		"CUT": true, "FADE": true, "OUT": true, "ANGLE": true, "CLOSE": true,
		"POV": true, "WIDE": true, "TRACKING": true, "SHOT": true,
	}
	for _, w := range []string{"DAY", "NIGHT", "MORNING", "EVENING", "LATER", "CONTINUOUS", "DAWN", "DUSK"} {
		m[w] = true
	}
	return m
}()

var (
	slugPrefixRe  = regexp.MustCompile(`^(INT\.?/EXT\.?|INT\.?|EXT\.?)\s+`)
	objectTokenRe = regexp.MustCompile(`[A-Z][A-Z0-9'&]{2,}`)
	digitsRe      = regexp.MustCompile(`^[0-9]+$`)
)

// ExtractEntities walks the element sequence (read-only) and tallies
// characters, locations, and object candidates.
//
// Locations come from scene text by stripping the INT./EXT./INT/EXT. prefix
// and cutting everything from the first hyphen-separated time-of-day segment
// on. Objects are uppercase tokens of length >= 3 in action/shot text that
// are not known characters, locations, stopwords, or pure numbers.
func ExtractEntities(elements []screenplay.Element) *Inventory {
	inv := &Inventory{
		Characters: map[string]Entry{},
		Locations:  map[string]Entry{},
		Objects:    map[string]Entry{},
	}

	for idx, el := range elements {
		switch el.Kind {
		case screenplay.KindDialogue:
			if name := strings.ToUpper(el.Character); name != "" {
				bump(inv.Characters, name, idx)
			}
		case screenplay.KindScene:
			if loc := locationFromSlugline(el.Text); loc != "" {
				bump(inv.Locations, loc, idx)
			}
		}
	}

	known := map[string]bool{}
	for name := range inv.Characters {
		known[name] = true
	}
	for name := range inv.Locations {
		known[name] = true
	}
	for w := range stopwords {
		known[w] = true
	}

	for idx, el := range elements {
		if el.Kind != screenplay.KindAction && el.Kind != screenplay.KindShot {
			continue
		}
		for _, token := range objectTokenRe.FindAllString(strings.ToUpper(el.Text), -1) {
			if known[token] || digitsRe.MatchString(token) {
				continue
			}
			bump(inv.Objects, token, idx)
		}
	}
	return inv
}

// locationFromSlugline extracts the location part of a scene heading.
func locationFromSlugline(text string) string {
	raw := strings.ToUpper(text)
	loc := strings.TrimSpace(slugPrefixRe.ReplaceAllString(raw, ""))
	parts := strings.Split(loc, "-")
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if timeWords[strings.ReplaceAll(p, " ", "")] {
			break
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		if len(parts) == 0 {
			return ""
		}
		return strings.TrimSpace(parts[0])
	}
	return strings.Join(kept, " - ")
}

func bump(m map[string]Entry, name string, idx int) {
	e, ok := m[name]
	if !ok {
		e = Entry{FirstIndex: idx}
	}
	e.Count++
	m[name] = e
}
