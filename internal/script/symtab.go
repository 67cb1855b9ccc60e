/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
)

// ErrDuplicateLabel is returned by Insert when the label already resolves.
var ErrDuplicateLabel = errors.New("duplicate label")

// SymbolTable maps labels to points. It is a fixed-capacity open-addressed
// hash table with linear probing: capacity is set at construction and never
// changes, entries are write-once, there is no deletion and no resizing.
// The load-then-query usage (parse once, resolve every frame) makes anything
// fancier unnecessary.
//
// Construction-time invariant: capacity must strictly exceed the number of
// insertions the caller will ever perform. Insert enforces this loudly by
// panicking on a full table instead of probing forever.
type SymbolTable struct {
	slots []slot
	used  int
}

type slot struct {
	occupied bool
	label    string
	point    Point
}

// NewSymbolTable creates a table with the given fixed capacity.
func NewSymbolTable(capacity int) *SymbolTable {
	if capacity < 1 {
		panic(fmt.Sprintf("script: symbol table capacity %d < 1", capacity))
	}
	return &SymbolTable{slots: make([]slot, capacity)}
}

// Len reports the number of live entries.
func (t *SymbolTable) Len() int { return t.used }

// Cap reports the fixed capacity.
func (t *SymbolTable) Cap() int { return len(t.slots) }

// hash is the polynomial string hash h = 31*h + byte, reduced mod capacity.
// Insert and Lookup share it, so both walk the same probe sequence.
func (t *SymbolTable) hash(label string) int {
	var h uint32
	for i := 0; i < len(label); i++ {
		h = 31*h + uint32(label[i])
	}
	return int(h % uint32(len(t.slots)))
}

// Insert stores a copy of pt under label. A label that already resolves is
// rejected with ErrDuplicateLabel; a silently shadowed duplicate would be
// unreachable by lookup forever. Inserting into a full table violates the
// capacity precondition and panics.
func (t *SymbolTable) Insert(label string, pt Point) error {
	if t.used >= len(t.slots) {
		panic(fmt.Sprintf("script: symbol table full (capacity %d); capacity must exceed insertions", len(t.slots)))
	}
	i := t.hash(label)
	for {
		s := &t.slots[i]
		if !s.occupied {
			s.occupied = true
			s.label = label
			s.point = pt
			t.used++
			return nil
		}
		if s.label == label {
			return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		i = (i + 1) % len(t.slots)
	}
}

// Lookup resolves label to its point. Probing is bounded by the capacity, so
// a miss terminates even on a pathologically full table.
func (t *SymbolTable) Lookup(label string) (Point, bool) {
	i := t.hash(label)
	for probes := 0; probes < len(t.slots); probes++ {
		s := &t.slots[i]
		if !s.occupied {
			return Point{}, false
		}
		if s.label == label {
			return s.point, true
		}
		i = (i + 1) % len(t.slots)
	}
	return Point{}, false
}
