/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog stores validated scene sources in a per-user SQLite
// database, so scenes can be named, listed, and searched without keeping
// loose files around. The database is embedded (pure-Go driver, WAL mode)
// and the source text is indexed with FTS5.
package catalog

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

	"github.com/google/uuid"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"

	applog "keyframe/internal/log"
	"keyframe/internal/version"
)

// schemaVersion tracks the local SQLite schema. Bump it when making
// breaking schema changes and add a migration step.
const schemaVersion = 1

// ErrNotFound is returned when no scene with the requested name exists.
var ErrNotFound = errors.New("scene not found")

// Record is one stored scene.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Transitions int       `json:"transitions"`
	Subjects    int       `json:"subjects"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Catalog is an open scene catalog database.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the catalog database at path, enables WAL mode,
// and ensures the schema exists.
func Open(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: keep a single connection.
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

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("catalog ready")
	return &Catalog{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// Path returns the database file path.
func (c *Catalog) Path() string { return c.path }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scenes (
			rowid       INTEGER PRIMARY KEY,
			id          TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL UNIQUE,
			source      TEXT NOT NULL,
			transitions INTEGER NOT NULL,
			subjects    INTEGER NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_name ON scenes(name);`,

		// Contentless FTS5 index fed from scenes via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_scenes USING fts5(
			name,
			source,
			content='',
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS scenes_ai AFTER INSERT ON scenes BEGIN
			INSERT INTO fts_scenes(rowid, name, source) VALUES (new.rowid, new.name, new.source);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS scenes_ad AFTER DELETE ON scenes BEGIN
			INSERT INTO fts_scenes(fts_scenes, rowid, name, source) VALUES ('delete', old.rowid, old.name, old.source);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS scenes_au AFTER UPDATE OF name, source ON scenes BEGIN
			INSERT INTO fts_scenes(fts_scenes, rowid, name, source) VALUES ('delete', old.rowid, old.name, old.source);
			INSERT INTO fts_scenes(rowid, name, source) VALUES (new.rowid, new.name, new.source);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}

	// Seed or refresh the single-row version info.
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Put stores a scene under name, replacing any previous source stored under
// the same name. The stable id survives updates.
func (c *Catalog) Put(ctx context.Context, name, source string, transitions, subjects int) (Record, error) {
	if strings.TrimSpace(name) == "" {
		return Record{}, errors.New("scene name is required")
	}
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	existing, err := c.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		rec := Record{
			ID:          uuid.NewString(),
			Name:        name,
			Source:      source,
			Transitions: transitions,
			Subjects:    subjects,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err = c.db.ExecContext(ctx,
			`INSERT INTO scenes (id, name, source, transitions, subjects, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Source, rec.Transitions, rec.Subjects, ts, ts)
		if err != nil {
			return Record{}, fmt.Errorf("insert scene: %w", err)
		}
		return rec, nil
	case err != nil:
		return Record{}, err
	default:
		existing.Source = source
		existing.Transitions = transitions
		existing.Subjects = subjects
		existing.UpdatedAt = now
		_, err = c.db.ExecContext(ctx,
			`UPDATE scenes SET source=?, transitions=?, subjects=?, updated_at=? WHERE name=?`,
			source, transitions, subjects, ts, name)
		if err != nil {
			return Record{}, fmt.Errorf("update scene: %w", err)
		}
		return existing, nil
	}
}

// Get returns the scene stored under name, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, name string) (Record, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, name, source, transitions, subjects, created_at, updated_at FROM scenes WHERE name=?`, name)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read scene: %w", err)
	}
	return rec, nil
}

// List returns all scenes ordered by name.
func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, source, transitions, subjects, created_at, updated_at FROM scenes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the scene stored under name, or returns ErrNotFound.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM scenes WHERE name=?`, name)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search runs an FTS5 query over scene names and source text. The query
// uses FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
func (c *Catalog) Search(ctx context.Context, query string) ([]Record, error) {
	if strings.TrimSpace(query) == "" {
		return c.List(ctx)
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.source, s.transitions, s.subjects, s.created_at, s.updated_at
		 FROM fts_scenes JOIN scenes s ON fts_scenes.rowid = s.rowid
		 WHERE fts_scenes MATCH ?
		 ORDER BY s.name`, query)
	if err != nil {
		return nil, fmt.Errorf("search scenes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var created, updated string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Source, &rec.Transitions, &rec.Subjects, &created, &updated); err != nil {
		return Record{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return rec, nil
}
