/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Parse parses .vd drawing-script text into a Scene.
// Supported syntax:
//
//	# comment (first non-blank character '#')
//	point(<int>,<int>,<label>)
//	line(<label1>,<label2>)
//
// Point labels run from the second comma to the closing parenthesis and are
// trimmed of surrounding whitespace; they must be non-empty. Lines reference
// points by label and may appear anywhere in the text relative to the points
// they name: the parser makes two passes over the same text, collecting all
// points first and resolving line references only once every point is known.
//
// No instruction failure is fatal. Malformed instructions, empty labels,
// duplicate labels, unresolved references and instructions beyond the
// configured limits are each dropped with a Diagnostic; the returned Scene
// holds everything that survived.
func Parse(input string, lim Limits) (*Scene, []Diagnostic) {
	if lim.MaxPoints <= 0 {
		lim.MaxPoints = DefaultLimits().MaxPoints
	}
	if lim.MaxLines <= 0 {
		lim.MaxLines = DefaultLimits().MaxLines
	}

	// Table capacity strictly exceeds the point limit so Insert can never
	// hit a full table (its panic is a programming-contract check, not a
	// reachable state).
	sc := &Scene{symbols: NewSymbolTable(2*lim.MaxPoints + 1)}
	var diags []Diagnostic

	// Pass 1: points (and diagnostics for anything that is neither kind).
	forEachInstruction(input, func(lineNo int, text string) {
		switch classify(text) {
		case instPoint:
			diags = appendDiag(diags, parsePoint(sc, lim, lineNo, text))
		case instLine:
			// handled in pass 2
		default:
			diags = append(diags, Diagnostic{LineNo: lineNo, Text: text, Message: "unrecognized instruction"})
		}
	})

	// Pass 2: lines, against the now-fully-populated symbol table. The pass
	// re-scans the text from the top, so source order of points vs. lines
	// does not matter.
	forEachInstruction(input, func(lineNo int, text string) {
		if classify(text) == instLine {
			diags = appendDiag(diags, parseLine(sc, lim, lineNo, text))
		}
	})

	return sc, diags
}

// LoadFile reads and parses a script file. A file that cannot be read is the
// only error case; callers are expected to treat it as "no script data" and
// carry on with an empty scene.
func LoadFile(path string, lim Limits) (*Scene, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open script %s: %w", path, err)
	}
	sc, diags := Parse(string(data), lim)
	return sc, diags, nil
}

type instructionKind int

const (
	instUnknown instructionKind = iota
	instPoint
	instLine
)

// classify decides which instruction family a non-comment line belongs to.
// point( wins over line( when both occur on one line.
func classify(text string) instructionKind {
	if strings.Contains(text, "point(") {
		return instPoint
	}
	if strings.Contains(text, "line(") {
		return instLine
	}
	return instUnknown
}

// forEachInstruction walks input line by line, skipping blank lines and
// comments, and hands every instruction line to fn with its 1-based number.
func forEachInstruction(input string, fn func(lineNo int, text string)) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		trim := strings.TrimSpace(text)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		fn(lineNo, trim)
	}
}

var (
	rePoint = regexp.MustCompile(`point\(\s*(-?\d+)\s*,\s*(-?\d+)\s*,([^)]*)\)`)
	reLine  = regexp.MustCompile(`line\(([^,)]*),([^)]*)\)`)
)

func parsePoint(sc *Scene, lim Limits, lineNo int, text string) *Diagnostic {
	m := rePoint.FindStringSubmatch(text)
	if m == nil {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: "malformed point instruction"}
	}
	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: "coordinate out of range"}
	}
	label := strings.TrimSpace(m[3])
	if label == "" {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: "empty point label"}
	}
	if len(sc.Points) >= lim.MaxPoints {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: fmt.Sprintf("point limit %d reached", lim.MaxPoints)}
	}
	if err := sc.symbols.Insert(label, Point{X: x, Y: y, Label: label}); err != nil {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: err.Error()}
	}
	sc.Points = append(sc.Points, Point{X: x, Y: y, Label: label})
	return nil
}

func parseLine(sc *Scene, lim Limits, lineNo int, text string) *Diagnostic {
	m := reLine.FindStringSubmatch(text)
	if m == nil {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: "malformed line instruction"}
	}
	from := strings.TrimSpace(m[1])
	to := strings.TrimSpace(m[2])
	if from == "" || to == "" {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: "empty line label"}
	}
	if _, ok := sc.symbols.Lookup(from); !ok {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: fmt.Sprintf("unresolved label %q", from)}
	}
	if _, ok := sc.symbols.Lookup(to); !ok {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: fmt.Sprintf("unresolved label %q", to)}
	}
	if len(sc.Lines) >= lim.MaxLines {
		return &Diagnostic{LineNo: lineNo, Text: text, Message: fmt.Sprintf("line limit %d reached", lim.MaxLines)}
	}
	sc.Lines = append(sc.Lines, Line{From: from, To: to})
	return nil
}

func appendDiag(diags []Diagnostic, d *Diagnostic) []Diagnostic {
	if d == nil {
		return diags
	}
	return append(diags, *d)
}
