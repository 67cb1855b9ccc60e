/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Point is a labeled coordinate parsed from a point(x,y,label) instruction.
// Coordinates are signed and may lie outside the target surface; clipping is
// the surface's concern, not the parser's.
type Point struct {
	X, Y  int
	Label string
}

// Line is a reference to two labeled points. It never carries resolved
// coordinates; resolution happens against the scene's symbol table when the
// line is drawn. This is what allows a line() instruction to appear before
// the point() instructions it references.
type Line struct {
	From string
	To   string
}

// Limits bounds how many points and lines a scene will accept. Instructions
// beyond a limit are dropped with a diagnostic, never an error.
type Limits struct {
	MaxPoints int
	MaxLines  int
}

// DefaultLimits caps each element category at 500.
func DefaultLimits() Limits { return Limits{MaxPoints: 500, MaxLines: 500} }

// Diagnostic describes one skipped instruction. Diagnostics are advisory:
// parsing always continues and the scene keeps everything that did parse.
type Diagnostic struct {
	LineNo  int    // 1-based line number in the source text
	Text    string // the offending instruction text
	Message string
}

// Scene is the fully parsed drawing: points in file order, accepted line
// references in file order, and the symbol table used to resolve them.
type Scene struct {
	Points []Point
	Lines  []Line

	symbols *SymbolTable
}

// Lookup resolves a label to its point.
func (s *Scene) Lookup(label string) (Point, bool) {
	if s == nil || s.symbols == nil {
		return Point{}, false
	}
	return s.symbols.Lookup(label)
}

// Resolve resolves both endpoints of a line reference. Lines stored in the
// scene were validated at parse time, so ok is false only for references
// that were never produced by the parser.
func (s *Scene) Resolve(l Line) (p1, p2 Point, ok bool) {
	p1, ok1 := s.Lookup(l.From)
	p2, ok2 := s.Lookup(l.To)
	return p1, p2, ok1 && ok2
}
