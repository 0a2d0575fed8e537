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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "scriptmd/internal/log"
	"scriptmd/internal/screenplay"
	"scriptmd/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// catalogSchemaVersion tracks the local SQLite schema of the script catalog.
// Bump this when you perform breaking schema changes and add migrations.
const catalogSchemaVersion = 1

// Catalog is a small embedded database of indexed screenplays for full-text
// search across scripts. One file can hold many scripts, keyed by title.
type Catalog struct {
	db   *sql.DB
	path string
}

// OpenCatalog opens (or creates) the catalog database at path, enables WAL
// mode, and ensures the meta/version tables and the FTS schema exist.
func OpenCatalog(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	// URI with shared cache and busy timeout. Forward slashes for SQLite.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: one writer connection is plenty.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureCatalogMeta(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureCatalogSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure catalog schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("catalog ready", slog.String("path", path))
	return &Catalog{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the catalog file location.
func (c *Catalog) Path() string { return c.path }

func ensureCatalogMeta(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, catalogSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep existing schema number for future migrations.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureCatalogSchema creates the scripts/lines tables and the
// external-content FTS5 index kept in sync through triggers. The FTS table
// reads its text column out of lines, so snippet() can highlight matches.
func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scripts (
			script_id   INTEGER PRIMARY KEY,
			title       TEXT NOT NULL UNIQUE,
			source      TEXT,
			indexed_at  TEXT NOT NULL
		);`,
		// One row per element: sluglines, action paragraphs, cue+dialogue.
		`CREATE TABLE IF NOT EXISTS lines (
			line_id    INTEGER PRIMARY KEY,
			script_id  INTEGER NOT NULL,
			seq        INTEGER NOT NULL,
			kind       TEXT    NOT NULL,
			scene      TEXT,
			character  TEXT,
			text       TEXT,
			FOREIGN KEY(script_id) REFERENCES scripts(script_id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lines_script_seq ON lines(script_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_lines_kind ON lines(kind);`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_lines USING fts5(
			text,
			content='lines',
			content_rowid='line_id',
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS lines_ai AFTER INSERT ON lines BEGIN
			INSERT INTO fts_lines(rowid, text) VALUES (new.line_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS lines_ad AFTER DELETE ON lines BEGIN
			INSERT INTO fts_lines(fts_lines, rowid, text) VALUES ('delete', old.line_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS lines_au AFTER UPDATE OF text ON lines BEGIN
			INSERT INTO fts_lines(fts_lines, rowid, text) VALUES ('delete', old.line_id, old.text);
			INSERT INTO fts_lines(rowid, text) VALUES (new.line_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// IndexScript replaces the catalog content for doc.Title with the given
// element sequence. Re-indexing the same title is an upsert: the old rows go
// away inside the same transaction.
func (c *Catalog) IndexScript(ctx context.Context, doc ScriptDoc) error {
	if strings.TrimSpace(doc.Title) == "" {
		return errors.New("script title is required")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	var scriptID int64
	err = tx.QueryRowContext(ctx, `SELECT script_id FROM scripts WHERE title=?`, doc.Title).Scan(&scriptID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT INTO scripts (title, source, indexed_at) VALUES (?, ?, ?)`, doc.Title, doc.Source, now)
		if err != nil {
			return fmt.Errorf("insert script: %w", err)
		}
		scriptID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("script id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("find script: %w", err)
	default:
		if _, err = tx.ExecContext(ctx, `UPDATE scripts SET source=?, indexed_at=? WHERE script_id=?`, doc.Source, now, scriptID); err != nil {
			return fmt.Errorf("update script: %w", err)
		}
		// Delete goes through the trigger so the FTS rows follow.
		if _, err = tx.ExecContext(ctx, `DELETE FROM lines WHERE script_id=?`, scriptID); err != nil {
			return fmt.Errorf("clear old lines: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lines (script_id, seq, kind, scene, character, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	scene := ""
	for seq, el := range doc.Elements {
		text := el.Text
		character := ""
		switch el.Kind {
		case screenplay.KindScene:
			scene = strings.ToUpper(el.Text)
		case screenplay.KindDialogue:
			character = el.Character
			parts := append([]string{}, el.Parentheticals...)
			parts = append(parts, el.Lines...)
			text = strings.Join(parts, "\n")
		case screenplay.KindPageBreak:
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, err = stmt.ExecContext(ctx, scriptID, seq, el.Kind.String(), nullable(scene), nullable(character), text); err != nil {
			return fmt.Errorf("insert line %d: %w", seq, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit index tx: %w", err)
	}
	return nil
}

// CatalogQuery describes a search request. Text uses SQLite FTS5 syntax
// (simple terms, phrases in quotes, AND/OR/NOT). Filters are optional.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type CatalogQuery struct {
	Text      string
	Script    string // restrict to one script title
	Character string
	Kinds     []string
	Limit     int
	Offset    int
}

// CatalogHit is a single match row. Snippet highlights the match with
// [ ] markers when FTS text is used.
type CatalogHit struct {
	Script    string
	Seq       int
	Kind      string
	Scene     string
	Character string
	Snippet   string
}

// Search performs full-text search with optional filters over the catalog.
// When q.Text is empty, it falls back to a filtered scan over lines.
func (c *Catalog) Search(ctx context.Context, q CatalogQuery) ([]CatalogHit, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT s.title, l.seq, l.kind, COALESCE(l.scene,''), COALESCE(l.character,''), snippet(fts_lines, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_lines JOIN lines l ON fts_lines.rowid = l.line_id JOIN scripts s ON s.script_id = l.script_id\n")
		sb.WriteString("WHERE fts_lines MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT s.title, l.seq, l.kind, COALESCE(l.scene,''), COALESCE(l.character,''), COALESCE(l.text,'')\n")
		sb.WriteString("FROM lines l JOIN scripts s ON s.script_id = l.script_id\nWHERE 1=1\n")
	}
	if s := strings.TrimSpace(q.Script); s != "" {
		sb.WriteString(" AND s.title = ?\n")
		args = append(args, s)
	}
	if s := strings.TrimSpace(q.Character); s != "" {
		sb.WriteString(" AND lower(l.character) = ?\n")
		args = append(args, strings.ToLower(s))
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND l.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString("ORDER BY s.title, l.seq\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []CatalogHit
	for rows.Next() {
		var h CatalogHit
		if err := rows.Scan(&h.Script, &h.Seq, &h.Kind, &h.Scene, &h.Character, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Scripts lists the indexed script titles, newest first.
func (c *Catalog) Scripts(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT title FROM scripts ORDER BY indexed_at DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
