/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog keeps a small local history of viewed image/script pairs
// in an embedded SQLite database, so the CLI can list recently opened
// sessions.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"vdview/internal/config"
	applog "vdview/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CatalogFileName is the database file kept under the user data dir.
	CatalogFileName = "catalog.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump on breaking changes.
	schemaVersion = 1
)

// Entry is one remembered viewing session.
type Entry struct {
	ImagePath  string
	ScriptPath string
	LastOpened time.Time
	OpenCount  int
}

// Catalog wraps the embedded session-history database.
type Catalog struct {
	db *sql.DB
}

// DefaultPath returns the catalog database path under the user data dir.
func DefaultPath() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CatalogFileName), nil
}

// Open opens (creating if necessary) the catalog database at path, enables
// WAL mode, and ensures the schema exists.
func Open(path string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create data dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// URI with shared cache and busy timeout; forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("catalog ready")
	return &Catalog{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			image_path  TEXT NOT NULL,
			script_path TEXT NOT NULL,
			last_opened TIMESTAMP NOT NULL,
			open_count  INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (image_path, script_path)
		);`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('schema', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprintf("%d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Touch records that the image/script pair was opened now, bumping its open
// count if it was seen before.
func (c *Catalog) Touch(ctx context.Context, imagePath, scriptPath string) error {
	if c == nil || c.db == nil {
		return errors.New("catalog not open")
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO sessions(image_path, script_path, last_opened, open_count)
		 VALUES(?, ?, ?, 1)
		 ON CONFLICT(image_path, script_path) DO UPDATE SET
			last_opened = excluded.last_opened,
			open_count  = sessions.open_count + 1`,
		imagePath, scriptPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, most recently opened first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if c == nil || c.db == nil {
		return nil, errors.New("catalog not open")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT image_path, script_path, last_opened, open_count
		 FROM sessions ORDER BY last_opened DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ImagePath, &e.ScriptPath, &e.LastOpened, &e.OpenCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Forget removes a remembered pair. Unknown pairs are a no-op.
func (c *Catalog) Forget(ctx context.Context, imagePath, scriptPath string) error {
	if c == nil || c.db == nil {
		return errors.New("catalog not open")
	}
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE image_path = ? AND script_path = ?`,
		imagePath, scriptPath); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
