/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strings"

	"scriptmd/internal/screenplay"
)

// TimelineOptions controls FCPXML export.
type TimelineOptions struct {
	Title          string
	WordsPerMinute int // default 160
	FPS            int // default 25
}

// TimelineSummary reports what was written.
type TimelineSummary struct {
	TotalSeconds float64
	SceneMarkers int
	ShotKeywords int
}

// minBlockSeconds floors the duration of any element carrying words.
const minBlockSeconds = 1.0

// headerlessSeconds is the token duration of word-less elements (page breaks).
const headerlessSeconds = 0.2

// sceneMarkerEmojis cycle over scene chapter markers for visual
// differentiation in the editor.
var sceneMarkerEmojis = []string{"🟥", "🟧", "🟨", "🟩", "🟦", "🟪"}

// WriteFCPXML exports a minimal FCPXML 1.10 document: one gap clip per
// scene, a chapter marker at each scene start, and a keyword range
// (SHOT:<text>) for each shot heading within its scene's span. Element
// durations are estimated from word counts at the given words-per-minute
// rate with a one-second floor.
func WriteFCPXML(elements []screenplay.Element, outPath string, opt TimelineOptions) (TimelineSummary, error) {
	wpm := opt.WordsPerMinute
	if wpm <= 0 {
		wpm = 160
	}
	fps := opt.FPS
	if fps <= 0 {
		fps = 25
	}
	wps := float64(wpm) / 60.0

	// Cumulative start time per element.
	starts := make([]float64, len(elements))
	cursor := 0.0
	for i, el := range elements {
		starts[i] = cursor
		cursor += elementSeconds(el, wps)
	}
	total := cursor

	type sceneSpan struct {
		name       string
		start, end float64
	}
	var scenes []sceneSpan
	for i, el := range elements {
		if el.Kind == screenplay.KindScene {
			scenes = append(scenes, sceneSpan{name: el.Text, start: starts[i]})
		}
	}
	for i := range scenes {
		if i < len(scenes)-1 {
			scenes[i].end = scenes[i+1].start
		} else {
			scenes[i].end = total
		}
	}

	type shotSpan struct {
		name       string
		start, dur float64
	}
	var shots []shotSpan
	for i, el := range elements {
		if el.Kind == screenplay.KindShot {
			shots = append(shots, shotSpan{
				name:  strings.ToUpper(el.Text),
				start: starts[i],
				dur:   elementSeconds(el, wps),
			})
		}
	}

	rational := func(seconds float64) string {
		frames := int(math.Round(seconds * float64(fps)))
		return fmt.Sprintf("%d/%ds", frames, fps)
	}

	doc := fcpDocument{
		Version: "1.10",
		Resources: fcpResources{
			Format: fcpFormat{
				ID:            "r1",
				FrameDuration: fmt.Sprintf("1/%ds", fps),
				Width:         "1920",
				Height:        "1080",
				ColorSpace:    "1-1-1 (Rec. 709)",
			},
		},
	}
	project := fcpProject{
		Name: opt.Title,
		Sequence: fcpSequence{
			Duration: rational(total),
			Format:   "r1",
			TCStart:  "0s",
			TCFormat: "NDF",
		},
	}

	summary := TimelineSummary{
		TotalSeconds: total,
		SceneMarkers: len(scenes),
		ShotKeywords: len(shots),
	}
	for i, sc := range scenes {
		dur := sc.end - sc.start
		if dur < 0.1 {
			dur = 0.1
		}
		gap := fcpGap{
			Name:     sc.name,
			Offset:   rational(sc.start),
			Start:    "0s",
			Duration: rational(dur),
		}
		label := sceneMarkerEmojis[i%len(sceneMarkerEmojis)] + " " + sc.name
		gap.Markers = append(gap.Markers, fcpMarker{
			Start:     "0s",
			Duration:  "0s",
			Value:     truncateRunes(label, 255),
			Completed: "0",
		})
		for _, sh := range shots {
			if sh.start >= sc.start && sh.start < sc.end {
				rel := sh.start - sc.start
				gap.Keywords = append(gap.Keywords, fcpKeyword{
					Start:    rational(rel),
					Duration: rational(sh.dur),
					Value:    truncateRunes("SHOT:"+sh.name, 255),
				})
			}
		}
		project.Sequence.Spine.Gaps = append(project.Sequence.Spine.Gaps, gap)
	}
	doc.Library.Event = fcpEvent{Name: opt.Title, Project: project}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return summary, fmt.Errorf("marshal fcpxml: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	out = append(out, '\n')
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return summary, fmt.Errorf("write fcpxml: %w", err)
	}
	return summary, nil
}

// elementSeconds estimates an element's screen time from its word count.
func elementSeconds(el screenplay.Element, wps float64) float64 {
	var words int
	switch el.Kind {
	case screenplay.KindAction:
		words = len(strings.Fields(el.Text))
	case screenplay.KindDialogue:
		words = len(strings.Fields(strings.Join(el.Lines, " "))) + len(strings.Fields(el.Character))
	case screenplay.KindScene, screenplay.KindShot:
		words = len(strings.Fields(el.Text))
		if words < 1 {
			words = 1
		}
	}
	if words == 0 {
		return headerlessSeconds
	}
	d := float64(words) / wps
	if d < minBlockSeconds {
		return minBlockSeconds
	}
	return d
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FCPXML document structure (the subset needed for markers and keyword
// ranges).

type fcpDocument struct {
	XMLName   xml.Name     `xml:"fcpxml"`
	Version   string       `xml:"version,attr"`
	Resources fcpResources `xml:"resources"`
	Library   fcpLibrary   `xml:"library"`
}

type fcpResources struct {
	Format fcpFormat `xml:"format"`
}

type fcpFormat struct {
	ID            string `xml:"id,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
	Width         string `xml:"width,attr"`
	Height        string `xml:"height,attr"`
	ColorSpace    string `xml:"colorSpace,attr"`
}

type fcpLibrary struct {
	Event fcpEvent `xml:"event"`
}

type fcpEvent struct {
	Name    string     `xml:"name,attr"`
	Project fcpProject `xml:"project"`
}

type fcpProject struct {
	Name     string      `xml:"name,attr"`
	Sequence fcpSequence `xml:"sequence"`
}

type fcpSequence struct {
	Duration string   `xml:"duration,attr"`
	Format   string   `xml:"format,attr"`
	TCStart  string   `xml:"tcStart,attr"`
	TCFormat string   `xml:"tcFormat,attr"`
	Spine    fcpSpine `xml:"spine"`
}

type fcpSpine struct {
	Gaps []fcpGap `xml:"gap"`
}

type fcpGap struct {
	Name     string       `xml:"name,attr"`
	Offset   string       `xml:"offset,attr"`
	Start    string       `xml:"start,attr"`
	Duration string       `xml:"duration,attr"`
	Markers  []fcpMarker  `xml:"marker"`
	Keywords []fcpKeyword `xml:"keyword"`
}

type fcpMarker struct {
	Start     string `xml:"start,attr"`
	Duration  string `xml:"duration,attr"`
	Value     string `xml:"value,attr"`
	Completed string `xml:"completed,attr"`
}

type fcpKeyword struct {
	Start    string `xml:"start,attr"`
	Duration string `xml:"duration,attr"`
	Value    string `xml:"value,attr"`
}
