/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"scriptmd/internal/screenplay"
)

// ShotRow is one shot-list entry: a scene heading or an explicit shot, with
// the scene context current at that point and a short action summary.
type ShotRow struct {
	No      int
	Type    string // "SCENE" or "SHOT"
	Scene   string
	Shot    string
	Summary string
}

// snippetMaxLen caps the action summary in shot-list rows.
const snippetMaxLen = 120

// BuildShotList walks the elements once, in order, tracking the most recent
// scene. Each Scene and Shot yields a row with a snippet of the next
// following action (the search stops at the next heading).
func BuildShotList(elements []screenplay.Element) []ShotRow {
	var rows []ShotRow
	currentScene := ""
	for idx, el := range elements {
		switch el.Kind {
		case screenplay.KindScene:
			currentScene = strings.ToUpper(el.Text)
			rows = append(rows, ShotRow{
				No:      len(rows) + 1,
				Type:    "SCENE",
				Scene:   currentScene,
				Summary: nextActionSnippet(elements, idx),
			})
		case screenplay.KindShot:
			rows = append(rows, ShotRow{
				No:      len(rows) + 1,
				Type:    "SHOT",
				Scene:   currentScene,
				Shot:    strings.ToUpper(el.Text),
				Summary: nextActionSnippet(elements, idx),
			})
		}
	}
	return rows
}

// nextActionSnippet returns a whitespace-collapsed excerpt of the first
// action element after start, or "" when a heading arrives first.
func nextActionSnippet(elements []screenplay.Element, start int) string {
	for _, el := range elements[start+1:] {
		switch el.Kind {
		case screenplay.KindAction:
			txt := strings.Join(strings.Fields(el.Text), " ")
			if r := []rune(txt); len(r) > snippetMaxLen {
				return string(r[:snippetMaxLen-1]) + "…"
			}
			return txt
		case screenplay.KindScene, screenplay.KindShot:
			return ""
		}
	}
	return ""
}

// WriteShotList writes rows as CSV or a Markdown table depending on the
// output extension, optionally followed by the entity inventory.
func WriteShotList(rows []ShotRow, inv *Inventory, outPath string) error {
	if strings.HasSuffix(strings.ToLower(outPath), ".csv") {
		return writeShotListCSV(rows, inv, outPath)
	}
	return writeShotListMarkdown(rows, inv, outPath)
}

func writeShotListCSV(rows []ShotRow, inv *Inventory, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create shot list: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"#", "Type", "Scene", "Shot", "Summary"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{strconv.Itoa(r.No), r.Type, r.Scene, r.Shot, r.Summary}); err != nil {
			return err
		}
	}
	if inv != nil {
		_ = w.Write(nil)
		_ = w.Write([]string{"Inventory", "Category", "Name", "Count", "First Mention"})
		for _, cat := range inventoryCategories {
			for _, e := range sortedEntries(inv.byCategory(cat.key)) {
				_ = w.Write([]string{"", cat.singular, e.Name, strconv.Itoa(e.Count), strconv.Itoa(e.FirstIndex)})
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeShotListMarkdown(rows []ShotRow, inv *Inventory, outPath string) error {
	var b strings.Builder
	b.WriteString("| # | Type | Scene | Shot | Summary |\n")
	b.WriteString("|---|------|-------|------|---------|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", r.No, r.Type, r.Scene, r.Shot, r.Summary)
	}
	if inv != nil {
		b.WriteString("\n## Entity Inventory\n\n")
		for _, cat := range inventoryCategories {
			entries := sortedEntries(inv.byCategory(cat.key))
			if len(entries) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", cat.title)
			b.WriteString("| Name | Count | First Mention (element index) |\n")
			b.WriteString("|------|-------|------------------------------|\n")
			for _, e := range entries {
				fmt.Fprintf(&b, "| %s | %d | %d |\n", e.Name, e.Count, e.FirstIndex)
			}
			b.WriteString("\n")
		}
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write shot list: %w", err)
	}
	return nil
}

// namedEntry is an inventory entry paired with its name for ordered output.
type namedEntry struct {
	Name string
	Entry
}

// sortedEntries orders by descending count, then first mention, then name.
func sortedEntries(m map[string]Entry) []namedEntry {
	out := make([]namedEntry, 0, len(m))
	for name, e := range m {
		out = append(out, namedEntry{Name: name, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].FirstIndex != out[j].FirstIndex {
			return out[i].FirstIndex < out[j].FirstIndex
		}
		return out[i].Name < out[j].Name
	})
	return out
}
