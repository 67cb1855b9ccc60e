/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseBasicPointsAndLines(t *testing.T) {
	input := `# sample drawing
point(10,10,A)
point(50,10,B)
line(A,B)
line(A,C)`

	sc, diags := Parse(input, Limits{})
	if len(sc.Points) != 2 {
		t.Fatalf("expected 2 points, got %d: %+v", len(sc.Points), sc.Points)
	}
	if sc.Points[0] != (Point{X: 10, Y: 10, Label: "A"}) {
		t.Fatalf("unexpected first point: %+v", sc.Points[0])
	}
	if sc.Points[1] != (Point{X: 50, Y: 10, Label: "B"}) {
		t.Fatalf("unexpected second point: %+v", sc.Points[1])
	}
	if len(sc.Lines) != 1 {
		t.Fatalf("expected exactly 1 line, got %d: %+v", len(sc.Lines), sc.Lines)
	}
	if sc.Lines[0] != (Line{From: "A", To: "B"}) {
		t.Fatalf("unexpected line: %+v", sc.Lines[0])
	}
	// The dangling A-C reference is diagnosed, not resolved to a default.
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", diags)
	}
	if !strings.Contains(diags[0].Message, `"C"`) {
		t.Fatalf("diagnostic should name the unresolved label: %+v", diags[0])
	}
	if diags[0].Text != "line(A,C)" {
		t.Fatalf("diagnostic should carry the instruction text: %+v", diags[0])
	}
}

func TestParseLineBeforePoints(t *testing.T) {
	// Line references resolve in a second pass, so source order is free.
	input := `line(start,end)
point(0,0,start)
point(100,200,end)`

	sc, diags := Parse(input, Limits{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(sc.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(sc.Lines))
	}
	p1, p2, ok := sc.Resolve(sc.Lines[0])
	if !ok {
		t.Fatalf("line did not resolve")
	}
	if p1.X != 0 || p1.Y != 0 || p2.X != 100 || p2.Y != 200 {
		t.Fatalf("unexpected resolution: %+v %+v", p1, p2)
	}
}

func TestParseNegativeCoordinatesAndTrimming(t *testing.T) {
	sc, diags := Parse("point( -10 , -20 ,  corner point  )", Limits{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	p, ok := sc.Lookup("corner point")
	if !ok {
		t.Fatalf("trimmed label did not resolve; points: %+v", sc.Points)
	}
	if p.X != -10 || p.Y != -20 {
		t.Fatalf("unexpected coordinates: %+v", p)
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	input := "\n# comment\n   # indented comment\n\npoint(1,2,A)\n"
	sc, diags := Parse(input, Limits{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(sc.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(sc.Points))
	}
}

func TestParseMalformedInstructions(t *testing.T) {
	cases := []struct {
		in      string
		wantMsg string
	}{
		{"point(a,b,C)", "malformed point"},
		{"point(1,2)", "malformed point"},
		{"point(1,2,   )", "empty point label"},
		{"line(A)", "malformed line"},
		{"line( ,B)", "empty line label"},
		{"circle(1,2,3)", "unrecognized"},
		{"just some text", "unrecognized"},
	}
	for _, c := range cases {
		sc, diags := Parse(c.in, Limits{})
		if len(sc.Points) != 0 || len(sc.Lines) != 0 {
			t.Fatalf("%q: expected empty scene, got %+v", c.in, sc)
		}
		if len(diags) != 1 {
			t.Fatalf("%q: expected 1 diagnostic, got %+v", c.in, diags)
		}
		if !strings.Contains(diags[0].Message, c.wantMsg) {
			t.Fatalf("%q: diagnostic %q does not contain %q", c.in, diags[0].Message, c.wantMsg)
		}
	}
}

func TestParseDuplicateLabelSkipped(t *testing.T) {
	input := `point(1,1,A)
point(2,2,A)
line(A,A)`
	sc, diags := Parse(input, Limits{})
	if len(sc.Points) != 1 {
		t.Fatalf("duplicate point should be skipped, got %+v", sc.Points)
	}
	p, _ := sc.Lookup("A")
	if p.X != 1 {
		t.Fatalf("first binding must win, got %+v", p)
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "duplicate label") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate-label diagnostic, got %+v", diags)
	}
	// The degenerate A-A line is still valid.
	if len(sc.Lines) != 1 {
		t.Fatalf("expected self-line to survive, got %+v", sc.Lines)
	}
}

func TestParseCapacityLimits(t *testing.T) {
	input := `point(1,1,A)
point(2,2,B)
point(3,3,C)
line(A,B)
line(B,C)
line(A,C)`
	sc, diags := Parse(input, Limits{MaxPoints: 2, MaxLines: 10})
	if len(sc.Points) != 2 {
		t.Fatalf("expected point limit to hold, got %+v", sc.Points)
	}
	// C never entered the table, so both lines naming it are unresolved.
	if len(sc.Lines) != 1 {
		t.Fatalf("expected only line(A,B) to survive, got %+v", sc.Lines)
	}
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics (dropped point, two unresolved lines), got %+v", diags)
	}
}

func TestParseLineCapacityLimit(t *testing.T) {
	input := `point(1,1,A)
point(2,2,B)
point(3,3,C)
line(A,B)
line(B,C)
line(A,C)`
	sc, diags := Parse(input, Limits{MaxPoints: 10, MaxLines: 2})
	if len(sc.Lines) != 2 {
		t.Fatalf("expected line limit to hold, got %+v", sc.Lines)
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "line limit") {
		t.Fatalf("expected a line-limit diagnostic, got %+v", diags)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := `point(10,10,A)
point(50,10,B)
point(30,40,C)
line(C,A)
line(A,B)`
	first, _ := Parse(input, Limits{})
	second, _ := Parse(input, Limits{})
	if !reflect.DeepEqual(first.Points, second.Points) {
		t.Fatalf("point order differs between parses")
	}
	if !reflect.DeepEqual(first.Lines, second.Lines) {
		t.Fatalf("line order differs between parses")
	}
}

func TestParseEveryLabelResolvesToItsCoordinates(t *testing.T) {
	input := `point(0,0,origin)
point(-3,7,west)
point(640,480,corner)`
	sc, diags := Parse(input, Limits{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	for _, want := range sc.Points {
		got, ok := sc.Lookup(want.Label)
		if !ok {
			t.Fatalf("label %q did not resolve", want.Label)
		}
		if got != want {
			t.Fatalf("lookup(%q) = %+v, want %+v", want.Label, got, want)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.vd"), Limits{})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.vd")
	if err := os.WriteFile(path, []byte("point(5,6,A)\npoint(7,8,B)\nline(A,B)\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	sc, diags, err := LoadFile(path, Limits{})
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(sc.Points) != 2 || len(sc.Lines) != 1 {
		t.Fatalf("unexpected scene: %+v", sc)
	}
}
