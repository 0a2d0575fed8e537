/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"scriptmd/internal/screenplay"
)

// manifestVersion is bumped on breaking changes to the script.json layout.
const manifestVersion = 1

//go:embed script.schema.json
var scriptSchema []byte

// ScriptDoc is the persisted form of a parsed screenplay: a titled,
// timestamped element sequence that round-trips through script.json.
type ScriptDoc struct {
	Title    string
	Source   string
	SavedAt  time.Time
	Elements []screenplay.Element
}

// Wire types. Kinds travel as their lower-case names so the manifest stays
// readable and stable across Kind renumbering.
type scriptManifest struct {
	Version  int           `json:"version"`
	Title    string        `json:"title"`
	Source   string        `json:"source,omitempty"`
	SavedAt  string        `json:"saved_at"`
	Elements []wireElement `json:"elements"`
}

type wireElement struct {
	Type           string   `json:"type"`
	Text           string   `json:"text,omitempty"`
	Character      string   `json:"character,omitempty"`
	Parentheticals []string `json:"parentheticals,omitempty"`
	Lines          []string `json:"lines,omitempty"`
}

// SaveScript writes the manifest with transactional semantics: marshal to a
// temp file in the target directory, fsync, then rename over the target.
func SaveScript(path string, doc ScriptDoc) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("manifest path is required")
	}
	m := scriptManifest{
		Version: manifestVersion,
		Title:   doc.Title,
		Source:  doc.Source,
		SavedAt: doc.SavedAt.UTC().Format(time.RFC3339),
	}
	if doc.SavedAt.IsZero() {
		m.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}
	for _, el := range doc.Elements {
		m.Elements = append(m.Elements, wireElement{
			Type:           el.Kind.String(),
			Text:           el.Text,
			Character:      el.Character,
			Parentheticals: el.Parentheticals,
			Lines:          el.Lines,
		})
	}
	if m.Elements == nil {
		m.Elements = []wireElement{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// LoadScript reads and validates a script.json manifest. Validation failures
// report the first few schema errors rather than a bare "invalid".
func LoadScript(path string) (ScriptDoc, error) {
	var doc ScriptDoc
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("open manifest: %w", err)
	}
	if err := validateManifest(b); err != nil {
		return doc, err
	}
	var m scriptManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return doc, fmt.Errorf("parse manifest: %w", err)
	}
	doc.Title = m.Title
	doc.Source = m.Source
	if m.SavedAt != "" {
		if ts, terr := time.Parse(time.RFC3339, m.SavedAt); terr == nil {
			doc.SavedAt = ts
		}
	}
	for _, w := range m.Elements {
		doc.Elements = append(doc.Elements, screenplay.Element{
			Kind:           screenplay.KindFromString(w.Type),
			Text:           w.Text,
			Character:      w.Character,
			Parentheticals: w.Parentheticals,
			Lines:          w.Lines,
		})
	}
	return doc, nil
}

func validateManifest(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(scriptSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for i, e := range result.Errors() {
		if i == 3 {
			msgs = append(msgs, "...")
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("manifest does not conform to schema: %s", strings.Join(msgs, "; "))
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}
