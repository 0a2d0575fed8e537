/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns parsed screenplay elements and laid-out pages into
// files: the screenplay PDF, shot lists, entity inventories, and FCPXML
// timelines.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"scriptmd/internal/layout"
	"scriptmd/internal/textlayout"
)

// baselineRatio approximates the ascent of the screenplay face; layout
// y-coordinates address the top of a line, gofpdf draws from the baseline.
const baselineRatio = 0.8

// PDFOptions controls screenplay PDF output. Units are points.
// Text stays vector; without a font path the built-in Courier is used so no
// embedding is required.
type PDFOptions struct {
	FontPath string // optional TTF; bold variant resolved by filename heuristics
	Author   string
	Title    string
}

// WritePDF renders laid-out pages into a PDF at outPath. Pages are painted
// strictly in order; the renderer adds no layout decisions of its own.
func WritePDF(pages []layout.Page, geom layout.Geometry, outPath string, opt PDFOptions) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to render")
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: geom.PageWidth, Ht: geom.PageHeight},
	})
	pdf.SetTitle(opt.Title, true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetAutoPageBreak(false, 0)

	family := "Courier"
	if opt.FontPath != "" {
		family = "ScriptMono"
		pdf.AddUTF8Font(family, "", opt.FontPath)
		boldPath := textlayout.BoldVariantPath(opt.FontPath)
		if boldPath == "" {
			boldPath = opt.FontPath
		}
		pdf.AddUTF8Font(family, "B", boldPath)
	}

	ascent := geom.FontSizePt * baselineRatio
	for _, pg := range pages {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: geom.PageWidth, Ht: geom.PageHeight})
		for _, ln := range pg.Lines {
			style := ""
			if ln.Bold {
				style = "B"
			}
			pdf.SetFont(family, style, geom.FontSizePt)
			pdf.Text(ln.X, ln.Y+ascent, ln.Text)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
