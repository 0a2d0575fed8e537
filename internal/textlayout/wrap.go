/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "strings"

// Wrap breaks text into physical lines no wider than maxWidth.
//
// Explicit newlines are honored first: each source line wraps independently
// and is never merged with its neighbors. A source line that already fits is
// emitted unchanged, including true empty lines (kept as empty output lines
// for vertical spacing). Overlong lines wrap greedily at word boundaries; a
// single word wider than maxWidth is hard-wrapped rune by rune, so the only
// lines that may exceed maxWidth are single unsplittable runes.
//
// Wrap holds no state between calls. Measurement failures are absorbed by a
// fixed-advance estimate so the function always makes progress.
func Wrap(m Measurer, text string, style Style, maxWidth float64) []string {
	width := func(s string) float64 {
		w, err := m.Width(s, style)
		if err != nil {
			w, _ = FixedMeasurer{}.Width(s, style)
		}
		return w
	}

	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if width(raw) <= maxWidth {
			out = append(out, raw)
			continue
		}
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			test := w
			if line != "" {
				test = line + " " + w
			}
			if width(test) <= maxWidth {
				line = test
				continue
			}
			if line != "" {
				out = append(out, line)
			}
			if width(w) > maxWidth {
				line = hardWrap(&out, w, width, maxWidth)
			} else {
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// hardWrap splits an overlong word rune by rune, appending full chunks to out
// and returning the unfinished remainder as the new current line.
func hardWrap(out *[]string, word string, width func(string) float64, maxWidth float64) string {
	chunk := ""
	for _, ch := range word {
		test := chunk + string(ch)
		if width(test) <= maxWidth {
			chunk = test
			continue
		}
		if chunk != "" {
			*out = append(*out, chunk)
		}
		chunk = string(ch)
	}
	return chunk
}
