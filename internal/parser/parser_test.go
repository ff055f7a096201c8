/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyframe/internal/scene"
)

func parseDoc(t *testing.T, source string) *Document {
	t.Helper()
	doc, err := ParseDocument(scene.NewRegistry(), "test", source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func parseErr(t *testing.T, source string) *Error {
	t.Helper()
	_, err := ParseDocument(scene.NewRegistry(), "test", source)
	if err == nil {
		t.Fatalf("parse of %q should fail", source)
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return perr
}

func TestParseAnonymousRectangle(t *testing.T) {
	doc := parseDoc(t, "Rectangle\n\tfill-color := '#ff0000'\n")
	if len(doc.Transitions) != 0 {
		t.Fatalf("no transitions expected, got %d", len(doc.Transitions))
	}
	if len(doc.Subjects) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(doc.Subjects))
	}
	rect := doc.Subjects[0]
	if rect.Kind() != "Rectangle" || rect.Name() != "" {
		t.Fatalf("unexpected subject %s %q", rect.Kind(), rect.Name())
	}
	v, err := rect.Get("fill-color")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want, _ := scene.ParseColor("#ff0000")
	if v != want {
		t.Fatalf("fill-color = %v, want %v", v, want)
	}
}

func TestParseColorLiteralUnquoted(t *testing.T) {
	doc := parseDoc(t, "Rectangle\n\tfill-color := #ff0000\n")
	v, _ := doc.Subjects[0].Get("fill-color")
	want, _ := scene.ParseColor("#ff0000")
	if v != want {
		t.Fatalf("fill-color = %v, want %v", v, want)
	}
}

func TestParseNestedAndTriggeredTransitions(t *testing.T) {
	doc := parseDoc(t, "box: Rectangle\n\tappears\n\t\tduration @ 2 s\nbox appears\n")
	if len(doc.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(doc.Transitions))
	}
	box, ok := doc.Subject("box")
	if !ok {
		t.Fatalf("box must be referenceable")
	}
	first, second := doc.Transitions[0], doc.Transitions[1]
	if first.Target() != box || second.Target() != box {
		t.Fatalf("both transitions must target box")
	}
	if v, err := first.Get("duration"); err != nil || v != 2000.0 {
		t.Fatalf("duration = %v, %v; want 2000ms", v, err)
	}
	if second.Auto() {
		t.Fatalf("a triggered transition is not auto")
	}
	if v, err := second.Get("duration"); err != nil || v != nil {
		t.Fatalf("the second transition has no duration, got %v, %v", v, err)
	}
}

func TestParseInlineTransitionAndAuto(t *testing.T) {
	doc := parseDoc(t, "title: Rectangle appears auto\n\ttext := 'hello'\n\tduration @ 500 ms\n")
	if len(doc.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(doc.Transitions))
	}
	tr := doc.Transitions[0]
	if !tr.Auto() || tr.Kind() != "appears" {
		t.Fatalf("inline transition wrong: auto=%v kind=%s", tr.Auto(), tr.Kind())
	}
	if v, _ := tr.Get("duration"); v != 500.0 {
		t.Fatalf("duration = %v, want 500ms", v)
	}
	// ':=' under the new target line set the subject, not the transition.
	if v, _ := tr.Target().Get("text"); v != "hello" {
		t.Fatalf("text = %v", v)
	}
}

func TestParsePresetCascade(t *testing.T) {
	source := strings.Join([]string{
		"warm: EntityPreset",
		"\tfill-color := #aa0000",
		"\tline-width := 3",
		"bold: EntityPreset [warm]",
		"\tline-width := 5",
		"box: Rectangle [warm bold]",
		"box appears",
	}, "\n")
	doc := parseDoc(t, source)
	box, _ := doc.Subject("box")
	wantColor, _ := scene.ParseColor("#aa0000")
	if v, _ := box.Get("fill-color"); v != wantColor {
		t.Fatalf("fill-color = %v", v)
	}
	// bold is listed later and defines line-width closer than warm via bold.
	if v, _ := box.Get("line-width"); v != 5.0 {
		t.Fatalf("line-width = %v, want bold's 5", v)
	}
	if p, ok := doc.Preset("warm"); !ok || p.Family() != scene.FamilyEntity {
		t.Fatalf("warm preset missing")
	}
}

func TestParseDefaultPreset(t *testing.T) {
	source := strings.Join([]string{
		"default: EntityPreset",
		"\tline-width := 2.5",
		"Rectangle",
	}, "\n")
	doc := parseDoc(t, source)
	if v, _ := doc.Subjects[0].Get("line-width"); v != 2.5 {
		t.Fatalf("subjects with no bases must inherit the default preset, got %v", v)
	}

	perr := parseErr(t, "default: EntityPreset\ndefault: EntityPreset\n")
	if !strings.Contains(perr.Message, "already defined") {
		t.Fatalf("redefinition message: %q", perr.Message)
	}
	perr = parseErr(t, "warm: EntityPreset\ndefault: EntityPreset [warm]\n")
	if !strings.Contains(perr.Message, "may not inherit") {
		t.Fatalf("inherit message: %q", perr.Message)
	}
}

func TestParseTransitionPreset(t *testing.T) {
	source := strings.Join([]string{
		"slow: TransitionPreset",
		"\tduration @ 4 s",
		"box: Rectangle",
		"box appears [slow]",
	}, "\n")
	doc := parseDoc(t, source)
	if v, _ := doc.Transitions[0].Get("duration"); v != 4000.0 {
		t.Fatalf("duration = %v, want 4000ms via the preset", v)
	}

	perr := parseErr(t, "slow: TransitionPreset\n\tduration := 4 s\n")
	if !strings.Contains(perr.Message, "':='") {
		t.Fatalf("expected ':=' rejection in a transition preset, got %q", perr.Message)
	}
}

func TestParseAliases(t *testing.T) {
	source := strings.Join([]string{
		"rect := Rectangle",
		"pop := appears",
		"box: rect",
		"box pop",
	}, "\n")
	doc := parseDoc(t, source)
	if doc.Transitions[0].Kind() != "appears" {
		t.Fatalf("alias must resolve to appears")
	}
	if box, _ := doc.Subject("box"); box.Kind() != "Rectangle" {
		t.Fatalf("alias must resolve to Rectangle")
	}
	if a, ok := doc.Alias("rect"); !ok || a != "Rectangle" {
		t.Fatalf("alias table entry = %q, %v", a, ok)
	}

	parseErr(t, "rect := Rectangle\nrect := Screen\n")
	parseErr(t, "appears := Rectangle\n")
	parseErr(t, "true := Rectangle\n")
	parseErr(t, "rect := 'Rectangle'\n")
	parseErr(t, "rect := Rectangle Screen\n")
}

func TestParseSpaceIndentationIsFatal(t *testing.T) {
	perr := parseErr(t, "box: Rectangle\n  fill-color := #fff\n")
	if perr.Line != 1 || perr.Column != 0 {
		t.Fatalf("error at %d:%d, want 1:0", perr.Line, perr.Column)
	}
	if !strings.Contains(perr.Message, "space indentation") {
		t.Fatalf("message: %q", perr.Message)
	}
	// A space after the tab run is just as illegal.
	perr = parseErr(t, "box: Rectangle\n\t fill-color := #fff\n")
	if perr.Line != 1 || perr.Column != 1 {
		t.Fatalf("error at %d:%d, want 1:1", perr.Line, perr.Column)
	}
	// Indentation beats a lexical error on the same line.
	perr = parseErr(t, "box: Rectangle\n\t fill-color := !\n")
	if !strings.Contains(perr.Message, "space indentation") {
		t.Fatalf("message: %q", perr.Message)
	}
	// A space-indented comment line is still skipped.
	doc := parseDoc(t, "box: Rectangle\n  # note\n\tfill-color := #fff\n")
	if _, ok := doc.Subject("box"); !ok {
		t.Fatalf("subject not defined")
	}
}

func TestParseWrongIndentationJump(t *testing.T) {
	perr := parseErr(t, "box: Rectangle\n\t\t\tfill-color := #fff\n")
	if perr.Line != 1 {
		t.Fatalf("error line = %d", perr.Line)
	}
	if !strings.Contains(perr.Message, "indentation") {
		t.Fatalf("message: %q", perr.Message)
	}
	parseErr(t, "\tfill-color := #fff\n")
}

func TestParseBlankAndCommentLines(t *testing.T) {
	source := strings.Join([]string{
		"# scene with gaps",
		"",
		"box: Rectangle",
		"",
		"# comment between block lines",
		"\tfill-color := #00ff00",
		"   ",
		"box appears",
	}, "\n")
	doc := parseDoc(t, source)
	if len(doc.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(doc.Transitions))
	}
	want, _ := scene.ParseColor("#00ff00")
	if v, _ := doc.Transitions[0].Target().Get("fill-color"); v != want {
		t.Fatalf("fill-color = %v", v)
	}
}

func TestParseUnknownNames(t *testing.T) {
	perr := parseErr(t, "Rectangle\n\tglow-color := #fff\n")
	if !strings.Contains(perr.Message, `unknown property "glow-color"`) {
		t.Fatalf("message: %q", perr.Message)
	}
	perr = parseErr(t, "box: Rectangle appears\n\tspeed = 3\n")
	if !strings.Contains(perr.Message, `unknown parameter "speed"`) {
		t.Fatalf("message: %q", perr.Message)
	}
	perr = parseErr(t, "box: Wobble\n")
	if !strings.Contains(perr.Message, `unknown type "Wobble"`) {
		t.Fatalf("message: %q", perr.Message)
	}
	perr = parseErr(t, "box: Rectangle\nbox vanishes\n")
	if !strings.Contains(perr.Message, `unknown transition "vanishes"`) {
		t.Fatalf("message: %q", perr.Message)
	}
}

func TestParseSemanticErrors(t *testing.T) {
	// id collision
	parseErr(t, "box: Rectangle\nbox: Screen\n")
	// undefined id in a triggered transition
	parseErr(t, "ghost appears\n")
	// preset of the wrong family in a base list
	parseErr(t, "cam: ViewPreset\nbox: Rectangle [cam]\n")
	// subject used as a base
	parseErr(t, "box: Rectangle\nother: Rectangle [box]\n")
	// transitions cannot target presets
	parseErr(t, "warm: EntityPreset\nwarm appears\n")
	// presets are self-contained blocks
	parseErr(t, "warm: EntityPreset appears\n")
	// ':=' outside a new target block
	perr := parseErr(t, "box: Rectangle\nbox appears\n\tfill-color := #fff\n")
	if !strings.Contains(perr.Message, "':='") {
		t.Fatalf("message: %q", perr.Message)
	}
	// '@' without a transition in scope
	perr = parseErr(t, "box: Rectangle\n\tduration @ 1 s\n")
	if !strings.Contains(perr.Message, "'@'") {
		t.Fatalf("message: %q", perr.Message)
	}
	// '=' without a transition in scope
	parseErr(t, "Rectangle\n\topacity = 1\n")
	// unterminated base list
	perr = parseErr(t, "box: Rectangle [\n")
	if !strings.Contains(perr.Message, "unterminated") {
		t.Fatalf("message: %q", perr.Message)
	}
	// reserved words as ids
	parseErr(t, "true: Rectangle\n")
	parseErr(t, "default: Rectangle\n")
}

func TestParseValueErrors(t *testing.T) {
	// negative line width
	parseErr(t, "Rectangle\n\tline-width := -2\n")
	// missing duration unit
	perr := parseErr(t, "box: Rectangle appears\n\tduration @ 2\n")
	if !strings.Contains(perr.Message, "unit") {
		t.Fatalf("message: %q", perr.Message)
	}
	// negative duration
	parseErr(t, "box: Rectangle appears\n\tduration @ -1 s\n")
	// enum membership
	parseErr(t, "Rectangle\n\tline-style := 'wavy'\n")
	// malformed quoted color
	parseErr(t, "Rectangle\n\tfill-color := 'red'\n")
	// wrong literal kind
	parseErr(t, "Rectangle\n\ttext := 7\n")
	// compound types have no literal syntax
	perr = parseErr(t, "Rectangle\n\tsize := 2\n")
	if !strings.Contains(perr.Message, "literal") {
		t.Fatalf("message: %q", perr.Message)
	}
	// trailing tokens after the value
	parseErr(t, "Rectangle\n\tline-width := 2 3\n")
}

func TestParseEnumAndScalars(t *testing.T) {
	source := strings.Join([]string{
		"Rectangle",
		"\tline-style := 'dashed'",
		"\tline-width := 0.5",
		"\trotation := -45",
		"\ttext := 'a \\'quoted\\' label'",
		"cam: Screen",
		"\tprojection := 'perspective'",
		"\tfocal-length := 35",
		"\tbackground-color := #202020",
	}, "\n")
	doc := parseDoc(t, source)
	rect := doc.Subjects[0]
	if v, _ := rect.Get("line-style"); v != "dashed" {
		t.Fatalf("line-style = %v", v)
	}
	if v, _ := rect.Get("rotation"); v != -45.0 {
		t.Fatalf("rotation = %v", v)
	}
	if v, _ := rect.Get("text"); v != "a 'quoted' label" {
		t.Fatalf("text = %v", v)
	}
	cam, _ := doc.Subject("cam")
	if cam.Family() != scene.FamilyView {
		t.Fatalf("cam family = %v", cam.Family())
	}
	if v, _ := cam.Get("projection"); v != "perspective" {
		t.Fatalf("projection = %v", v)
	}
}

func TestParseWithConfiguredRegistry(t *testing.T) {
	reg := scene.NewRegistry()
	glow, _ := scene.NewSpace(scene.Binding{Name: "glow-color", Type: scene.ColorType})
	if err := reg.AddEntityProperties(glow); err != nil {
		t.Fatalf("AddEntityProperties: %v", err)
	}
	if err := reg.RegisterSubjectKind("Circle", scene.ClassEntity); err != nil {
		t.Fatalf("RegisterSubjectKind: %v", err)
	}
	fades := scene.NewTransitionKind("fades", scene.ParamDef{Name: "opacity", Type: scene.Float})
	if err := reg.RegisterTransitionKind(fades); err != nil {
		t.Fatalf("RegisterTransitionKind: %v", err)
	}

	source := strings.Join([]string{
		"dot: Circle",
		"\tglow-color := #ffaa00",
		"dot fades auto",
		"\topacity = 0.25",
		"\tduration @ 1.5 s",
	}, "\n")
	doc, err := ParseDocument(reg, "test", source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tr := doc.Transitions[0]
	if v, ok := tr.Parameter("opacity"); !ok || v != 0.25 {
		t.Fatalf("opacity parameter = %v, %v", v, ok)
	}
	if v, _ := tr.Get("duration"); v != 1500.0 {
		t.Fatalf("duration = %v", v)
	}
	want, _ := scene.ParseColor("#ffaa00")
	if v, _ := tr.Target().Get("glow-color"); v != want {
		t.Fatalf("glow-color = %v", v)
	}
}

func TestParseBooleanLiteralOnRegisteredProperty(t *testing.T) {
	reg := scene.NewRegistry()
	extra, _ := scene.NewSpace(scene.Binding{Name: "visible", Type: scene.Boolean})
	if err := reg.AddEntityProperties(extra); err != nil {
		t.Fatalf("AddEntityProperties: %v", err)
	}
	doc, err := ParseDocument(reg, "", "Rectangle\n\tvisible := false\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, _ := doc.Subjects[0].Get("visible"); v != false {
		t.Fatalf("visible = %v", v)
	}
	if _, err := ParseDocument(reg, "", "Rectangle\n\tvisible := maybe\n"); err == nil {
		t.Fatalf("non-boolean literal must fail")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.kf")
	if err := os.WriteFile(path, []byte("box: Rectangle\nbox appears\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	transitions, err := ParseFile(scene.NewRegistry(), path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(transitions))
	}

	_, err = ParseFile(scene.NewRegistry(), filepath.Join(dir, "missing.kf"))
	if err == nil {
		t.Fatalf("missing file must error")
	}
}

func TestParseErrorPositions(t *testing.T) {
	perr := parseErr(t, "box: Rectangle\n\tfill-color := 'nope'\n")
	if perr.Source != "test" || perr.Line != 1 {
		t.Fatalf("error at %s:%d", perr.Source, perr.Line)
	}
	if perr.Column != 15 {
		t.Fatalf("error column = %d, want the literal column 15", perr.Column)
	}
}
