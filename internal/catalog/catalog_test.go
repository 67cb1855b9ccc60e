/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTouchAndRecentOrdering(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.Touch(ctx, "a.png", "a.vd"); err != nil {
		t.Fatalf("Touch error: %v", err)
	}
	if err := c.Touch(ctx, "b.png", "b.vd"); err != nil {
		t.Fatalf("Touch error: %v", err)
	}
	// Re-open the first pair; it should move to the front and bump its count.
	if err := c.Touch(ctx, "a.png", "a.vd"); err != nil {
		t.Fatalf("Touch error: %v", err)
	}

	got, err := c.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ImagePath != "a.png" || got[0].OpenCount != 2 {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].ImagePath != "b.png" || got[1].OpenCount != 1 {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := c.Touch(ctx, name+".png", name+".vd"); err != nil {
			t.Fatalf("Touch error: %v", err)
		}
	}
	got, err := c.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit ignored: got %d entries", len(got))
	}
}

func TestForget(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	if err := c.Touch(ctx, "a.png", "a.vd"); err != nil {
		t.Fatalf("Touch error: %v", err)
	}
	if err := c.Forget(ctx, "a.png", "a.vd"); err != nil {
		t.Fatalf("Forget error: %v", err)
	}
	got, err := c.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("entry not forgotten: %+v", got)
	}
	// Forgetting an unknown pair is not an error.
	if err := c.Forget(ctx, "nope.png", "nope.vd"); err != nil {
		t.Fatalf("Forget unknown pair: %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	ctx := context.Background()

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := c.Touch(ctx, "a.png", "a.vd"); err != nil {
		t.Fatalf("Touch error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer c2.Close()
	got, err := c2.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 1 || got[0].ImagePath != "a.png" {
		t.Fatalf("entries lost across reopen: %+v", got)
	}
}
