/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"scriptmd/internal/config"
	"scriptmd/internal/crash"
	"scriptmd/internal/export"
	"scriptmd/internal/layout"
	applog "scriptmd/internal/log"
	"scriptmd/internal/screenplay"
	"scriptmd/internal/storage"
	"scriptmd/internal/textlayout"
	"scriptmd/internal/version"
)

func usage() {
	fmt.Println("scriptmd - screenplay Markdown to PDF")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scriptmd [flags] <input.md> <output.pdf>")
	fmt.Println("  scriptmd -catalog <file> -search <query>   Search previously indexed scripts")
	fmt.Println("  scriptmd version | -version                Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func main() {
	var (
		title           = flag.String("title", "", "title shown on each page (default: derived from input filename)")
		fontPath        = flag.String("font", "", "path to a .ttf monospace font")
		fontSize        = flag.Float64("size", 0, "font size in points")
		transitionRight = flag.Float64("transition-right", 0, "right margin in inches for right-aligned transitions")
		shotList        = flag.String("shot-list", "", "optional path to write a shot list (.csv or Markdown)")
		entities        = flag.Bool("entities", false, "include extracted characters, locations, and objects in the shot list")
		fcpxmlPath      = flag.String("fcpxml", "", "optional path to write an FCPXML timeline with scene markers and shot keywords")
		wpm             = flag.Int("wpm", 0, "estimated words per minute for FCPXML timing")
		fps             = flag.Int("fps", 0, "frame rate for FCPXML timecode (e.g. 24, 25, 30)")
		saveJSON        = flag.String("save-json", "", "optional path to write the parsed script as script.json")
		catalogPath     = flag.String("catalog", "", "path to the SQLite script catalog for indexing or search")
		search          = flag.String("search", "", "full-text query against the catalog (skips conversion)")
		showVersion     = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion || (flag.NArg() == 1 && flag.Arg(0) == "version") {
		fmt.Println(version.String())
		return
	}

	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}

	if *search != "" {
		if *catalogPath == "" {
			fmt.Println("-search requires -catalog")
			os.Exit(2)
		}
		defer crash.Recover(*catalogPath)
		if err := runSearch(*catalogPath, *search); err != nil {
			l.Error("search failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() < 2 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	output := flag.Arg(1)
	defer crash.Recover(input)

	// Flags override config; config overrides defaults.
	if *fontPath != "" {
		cfg.Page.FontPath = *fontPath
	}
	if *fontSize > 0 {
		cfg.Page.FontSizePt = *fontSize
	}
	if *transitionRight > 0 {
		cfg.Page.TransitionRight = *transitionRight
	}
	if *wpm > 0 {
		cfg.Export.WordsPerMinute = *wpm
	}
	if *fps > 0 {
		cfg.Export.FPS = *fps
	}
	if *title == "" {
		*title = titleFromFilename(input)
	}

	src, err := os.ReadFile(input)
	if err != nil {
		l.Error("read input failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	elements := screenplay.Parse(string(src))
	l.Info("parsed script", slog.String("input", input), slog.Int("elements", len(elements)))

	geom := geometryFrom(cfg.Page, *title)
	measurer, merr := textlayout.NewMeasurer(cfg.Page.FontPath, geom.FontSizePt)
	if merr != nil {
		l.Warn("font metrics unavailable, using fixed-advance estimates", slog.Any("err", merr))
	}

	pages, err := layout.Paginate(elements, geom, measurer)
	if err != nil {
		l.Error("layout failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if err := export.WritePDF(pages, geom, output, export.PDFOptions{
		FontPath: cfg.Page.FontPath,
		Title:    *title,
	}); err != nil {
		l.Error("pdf export failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d pages)\n", output, len(pages))

	if *shotList != "" {
		rows := export.BuildShotList(elements)
		var inv *export.Inventory
		if *entities {
			inv = export.ExtractEntities(elements)
		}
		if err := export.WriteShotList(rows, inv, *shotList); err != nil {
			l.Error("shot list failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d rows)\n", *shotList, len(rows))
	}

	if *fcpxmlPath != "" {
		sum, err := export.WriteFCPXML(elements, *fcpxmlPath, export.TimelineOptions{
			Title:          *title,
			WordsPerMinute: cfg.Export.WordsPerMinute,
			FPS:            cfg.Export.FPS,
		})
		if err != nil {
			l.Error("fcpxml export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%.1fs, %d scenes, %d shots)\n", *fcpxmlPath, sum.TotalSeconds, sum.SceneMarkers, sum.ShotKeywords)
	}

	doc := storage.ScriptDoc{Title: *title, Source: input, Elements: elements}
	if *saveJSON != "" {
		if err := storage.SaveScript(*saveJSON, doc); err != nil {
			l.Error("save manifest failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *saveJSON)
	}
	if *catalogPath != "" {
		if err := indexIntoCatalog(*catalogPath, doc); err != nil {
			l.Error("catalog index failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %q into %s\n", doc.Title, *catalogPath)
	}
}

func runSearch(catalogPath, query string) error {
	c, err := storage.OpenCatalog(catalogPath)
	if err != nil {
		return err
	}
	defer c.Close()
	hits, err := c.Search(context.Background(), storage.CatalogQuery{Text: query})
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, h := range hits {
		loc := h.Scene
		if h.Character != "" {
			loc = h.Character
		}
		if loc != "" {
			loc = " [" + loc + "]"
		}
		fmt.Printf("%s #%d (%s)%s: %s\n", h.Script, h.Seq, h.Kind, loc, h.Snippet)
	}
	return nil
}

func indexIntoCatalog(catalogPath string, doc storage.ScriptDoc) error {
	c, err := storage.OpenCatalog(catalogPath)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.IndexScript(context.Background(), doc)
}

// geometryFrom converts the inch-based page config into point geometry.
func geometryFrom(pc config.PageConfig, title string) layout.Geometry {
	const inch = 72.0
	g := layout.DefaultGeometry()
	if pc.WidthIn > 0 {
		g.PageWidth = pc.WidthIn * inch
	}
	if pc.HeightIn > 0 {
		g.PageHeight = pc.HeightIn * inch
	}
	if pc.TopMarginIn > 0 {
		g.MarginTop = pc.TopMarginIn * inch
	}
	if pc.BottomMarginIn > 0 {
		g.MarginBottom = pc.BottomMarginIn * inch
	}
	if pc.FontSizePt > 0 {
		g.FontSizePt = pc.FontSizePt
	}
	if pc.TransitionRight > 0 {
		g.RightTransition = pc.TransitionRight * inch
	}
	g.Title = title
	return g
}

// titleFromFilename derives a display title: basename without extension,
// underscores to spaces, each word capitalized.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
