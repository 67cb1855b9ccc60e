/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend shares drawing scripts between workstations through a
// Postgres database. It is optional: the viewer works fully offline and only
// dials the backend when a DSN is configured.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	applog "vdview/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned when a named script does not exist upstream.
var ErrNotFound = errors.New("script not found")

// ScriptInfo describes one shared script without its body.
type ScriptInfo struct {
	Name      string
	UpdatedAt time.Time
}

// Store is a handle to the shared script table.
type Store struct {
	db *sql.DB
}

// Dial opens and pings the backend database, then ensures the script table
// exists. The context bounds the whole handshake.
func Dial(ctx context.Context, dsn string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("backend"), "dial")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("backend DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS drawing_scripts (
			name       text PRIMARY KEY,
			body       text NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure script table: %w", err)
	}
	l.Info("backend connected")
	return &Store{db: db}, nil
}

// Publish uploads a script body under name, replacing any previous version.
func (s *Store) Publish(ctx context.Context, name, body string) error {
	if s == nil || s.db == nil {
		return errors.New("backend not connected")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("script name is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drawing_scripts(name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = now()`, name, body)
	if err != nil {
		return fmt.Errorf("publish script %q: %w", name, err)
	}
	applog.WithComponent("backend").Info("script published", slog.String("name", name))
	return nil
}

// Fetch downloads the body of the named script.
func (s *Store) Fetch(ctx context.Context, name string) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("backend not connected")
	}
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM drawing_scripts WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("fetch script %q: %w", name, err)
	}
	return body, nil
}

// List returns all shared scripts, most recently updated first.
func (s *Store) List(ctx context.Context) ([]ScriptInfo, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("backend not connected")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, updated_at FROM drawing_scripts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var out []ScriptInfo
	for rows.Next() {
		var info ScriptInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan script row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scripts: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
