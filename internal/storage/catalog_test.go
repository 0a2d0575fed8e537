/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"scriptmd/internal/screenplay"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog", "scripts.sqlite"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenCatalogTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scripts.sqlite")
	c, err := OpenCatalog(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Second open must see the existing schema and succeed.
	c2, err := OpenCatalog(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = c2.Close()
}

func TestIndexAndSearch(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	if err := c.IndexScript(ctx, sampleDoc()); err != nil {
		t.Fatalf("IndexScript: %v", err)
	}

	hits, err := c.Search(ctx, CatalogQuery{Text: "kettle"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v, want 1", hits)
	}
	h := hits[0]
	if h.Script != "Kettle" || h.Kind != "action" {
		t.Errorf("hit = %+v", h)
	}
	if !strings.Contains(h.Snippet, "[kettle]") {
		t.Errorf("snippet = %q, want match markers", h.Snippet)
	}
	// Dialogue rows carry the scene current at that point.
	hits, err = c.Search(ctx, CatalogQuery{Text: "minute"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Scene != "INT. KITCHEN - DAY" || hits[0].Character != "BOB" {
		t.Fatalf("dialogue hit = %+v", hits)
	}
}

func TestSearchSnippetsAlwaysPopulated(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	doc := ScriptDoc{
		Title: "Rounds",
		Elements: []screenplay.Element{
			{Kind: screenplay.KindAction, Text: "The kettle whistles."},
			{Kind: screenplay.KindAction, Text: "She lifts the kettle off the stove."},
			{Kind: screenplay.KindDialogue, Character: "BOB", Lines: []string{"Mind the kettle."}},
		},
	}
	if err := c.IndexScript(ctx, doc); err != nil {
		t.Fatalf("IndexScript: %v", err)
	}
	hits, err := c.Search(ctx, CatalogQuery{Text: "kettle"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("hits = %+v, want 3", hits)
	}
	for _, h := range hits {
		if !strings.Contains(h.Snippet, "[kettle]") {
			t.Errorf("seq %d snippet = %q, want highlighted text", h.Seq, h.Snippet)
		}
	}
}

func TestSearchFilters(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	if err := c.IndexScript(ctx, sampleDoc()); err != nil {
		t.Fatalf("IndexScript: %v", err)
	}
	other := ScriptDoc{
		Title: "Garden",
		Elements: []screenplay.Element{
			{Kind: screenplay.KindDialogue, Character: "ALICE", Lines: []string{"The kettle is mine."}},
		},
	}
	if err := c.IndexScript(ctx, other); err != nil {
		t.Fatalf("IndexScript: %v", err)
	}

	hits, err := c.Search(ctx, CatalogQuery{Text: "kettle", Script: "Garden"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Script != "Garden" {
		t.Fatalf("script filter hits = %+v", hits)
	}

	hits, err = c.Search(ctx, CatalogQuery{Text: "kettle", Character: "alice"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Character != "ALICE" {
		t.Fatalf("character filter hits = %+v", hits)
	}

	// Non-FTS scan with kind filter.
	hits, err = c.Search(ctx, CatalogQuery{Kinds: []string{"scene"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Kind != "scene" {
		t.Fatalf("kind filter hits = %+v", hits)
	}
}

func TestReindexReplaces(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	if err := c.IndexScript(ctx, sampleDoc()); err != nil {
		t.Fatalf("IndexScript: %v", err)
	}
	updated := ScriptDoc{
		Title: "Kettle",
		Elements: []screenplay.Element{
			{Kind: screenplay.KindAction, Text: "Bob fills the teapot."},
		},
	}
	if err := c.IndexScript(ctx, updated); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	hits, err := c.Search(ctx, CatalogQuery{Text: "kettle"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("stale hits after reindex: %+v", hits)
	}
	hits, err = c.Search(ctx, CatalogQuery{Text: "teapot"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v, want 1", hits)
	}
	titles, err := c.Scripts(ctx)
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Kettle" {
		t.Fatalf("titles = %v", titles)
	}
}

func TestIndexScriptRequiresTitle(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.IndexScript(context.Background(), ScriptDoc{}); err == nil {
		t.Fatal("want error for empty title")
	}
}
