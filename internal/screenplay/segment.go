/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package screenplay

import "strings"

const (
	commentMarker    = "//"
	noteMarker       = ">"
	transitionMarker = ">>"
	breakLiteral     = "---"
)

// Segment splits raw input into logical blocks: blank-line-delimited
// paragraphs, with comment and note lines dropped and forced-break markers
// isolated as standalone "---" blocks.
//
// Line endings are normalized first (CRLF and lone CR both count as one line
// break). Lines keep their left indentation but lose trailing whitespace.
// Consecutive "---" lines each yield their own block; an all-whitespace
// document yields no blocks.
func Segment(raw string) []string {
	norm := strings.ReplaceAll(raw, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")

	var blocks []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			blocks = append(blocks, strings.Trim(strings.Join(buf, "\n"), "\n"))
			buf = buf[:0]
		}
	}

	for _, rawLine := range strings.Split(norm, "\n") {
		line := strings.TrimRight(rawLine, " \t")
		stripped := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(stripped, commentMarker):
			// dropped entirely
		case strings.HasPrefix(stripped, noteMarker) && !strings.HasPrefix(stripped, transitionMarker):
			// note/blockquote line; ">>" is the longer marker and wins
		case stripped == breakLiteral:
			flush()
			blocks = append(blocks, breakLiteral)
		case stripped == "":
			flush()
		default:
			buf = append(buf, line)
		}
	}
	flush()

	// Second pass: buffered blocks may still contain internal blank-line runs
	// (for example when blank lines were swallowed around dropped note lines),
	// so re-split each non-break block on double newlines.
	resplit := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b == breakLiteral {
			resplit = append(resplit, b)
			continue
		}
		resplit = append(resplit, strings.Split(b, "\n\n")...)
	}
	return resplit
}
