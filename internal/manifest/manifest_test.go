/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyframe/internal/parser"
	"keyframe/internal/scene"
)

const sampleManifest = `
name: shapes
manifest_version: 1
version: 1.2.0
subject_kinds:
  - name: Circle
    family: entity
properties:
  - name: glow-color
    family: entity
    type:
      kind: color
  - name: easing
    family: transition
    type:
      kind: enum
      name: easing
      values: [linear, ease-in, ease-out]
transition_kinds:
  - name: fades
    parameters:
      - name: opacity
        type:
          kind: float
`

func TestParseAndApply(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if m.Name != "shapes" || m.Version != "1.2.0" || m.ManifestVersion != 1 {
		t.Fatalf("header mismatch: %+v", m)
	}

	reg := scene.NewRegistry()
	if err := m.Apply(reg); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, ok := reg.SubjectKind("Circle"); !ok {
		t.Fatalf("Circle not registered")
	}
	if _, ok := reg.TransitionKindNamed("fades"); !ok {
		t.Fatalf("fades not registered")
	}

	// The contributed vocabulary must be usable end to end.
	source := strings.Join([]string{
		"dot: Circle",
		"\tglow-color := #ffaa00",
		"dot fades",
		"\topacity = 0.5",
		"\teasing @ 'ease-in'",
	}, "\n")
	transitions, err := parser.Parse(reg, source)
	if err != nil {
		t.Fatalf("parse with manifest vocabulary: %v", err)
	}
	if len(transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(transitions))
	}
	if v, ok := transitions[0].Parameter("opacity"); !ok || v != 0.5 {
		t.Fatalf("opacity = %v, %v", v, ok)
	}
	if v, err := transitions[0].Get("easing"); err != nil || v != "ease-in" {
		t.Fatalf("easing = %v, %v", v, err)
	}
}

func TestApplyPresetKinds(t *testing.T) {
	src := strings.Join([]string{
		"name: styles",
		"manifest_version: 1",
		"subject_kinds:",
		"  - name: StylePreset",
		"    family: entity-preset",
		"  - name: TimingPreset",
		"    family: transition-preset",
	}, "\n")
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	reg := scene.NewRegistry()
	if err := m.Apply(reg); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	// The contributed preset kinds declare presets like the built-in ones.
	scene1 := strings.Join([]string{
		"warm: StylePreset",
		"\tfill-color := #aa0000",
		"box: Rectangle [warm]",
		"slow: TimingPreset",
		"\tduration @ 4 s",
		"box appears [slow]",
	}, "\n")
	doc, err := parser.ParseDocument(reg, "styles", scene1)
	if err != nil {
		t.Fatalf("parse with preset kinds: %v", err)
	}
	box, ok := doc.Subject("box")
	if !ok {
		t.Fatalf("box not defined")
	}
	v, err := box.Get("fill-color")
	if err != nil {
		t.Fatalf("Get fill-color: %v", err)
	}
	if c, ok := v.(scene.Color); !ok || c.String() != "#aa0000" {
		t.Fatalf("fill-color = %v", v)
	}
	if len(doc.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(doc.Transitions))
	}
	if v, err := doc.Transitions[0].Get("duration"); err != nil || v != 4000.0 {
		t.Fatalf("duration = %v, %v", v, err)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing name":      "manifest_version: 1\n",
		"bad family":        "name: x\nmanifest_version: 1\nproperties:\n  - name: p\n    family: plasma\n    type: {kind: float}\n",
		"bad kind name":     "name: x\nmanifest_version: 1\nsubject_kinds:\n  - name: circle\n    family: entity\n",
		"bad kind family":   "name: x\nmanifest_version: 1\nsubject_kinds:\n  - name: Circle\n    family: transition\n",
		"bad type kind":     "name: x\nmanifest_version: 1\nproperties:\n  - name: p\n    family: entity\n    type: {kind: quaternion}\n",
		"unknown field":     "name: x\nmanifest_version: 1\nextra: true\n",
		"bad property name": "name: x\nmanifest_version: 1\nproperties:\n  - name: BadName\n    family: entity\n    type: {kind: float}\n",
		"empty enum values": "name: x\nmanifest_version: 1\nproperties:\n  - name: p\n    family: entity\n    type: {kind: enum, values: []}\n",
		"missing version":   "name: x\n",
	}
	for label, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: expected validation error", label)
		}
	}
}

func TestApplyRejectsCollisions(t *testing.T) {
	reg := scene.NewRegistry()
	m := &Manifest{
		Name:            "clash",
		ManifestVersion: 1,
		Properties: []PropertyDef{
			{Name: "fill-color", Family: "entity", Type: TypeDef{Kind: "color"}},
		},
	}
	if err := m.Apply(reg); err == nil {
		t.Fatalf("collision with built-in property must fail")
	}

	reg = scene.NewRegistry()
	m = &Manifest{
		Name:            "clash",
		ManifestVersion: 1,
		SubjectKinds:    []SubjectKindDef{{Name: "Rectangle", Family: "entity"}},
	}
	if err := m.Apply(reg); err == nil {
		t.Fatalf("collision with built-in subject kind must fail")
	}
}

func TestBuildTypeCompounds(t *testing.T) {
	tt, err := buildType(TypeDef{
		Kind:  "tuple",
		Elems: []TypeDef{{Kind: "float"}, {Kind: "float"}},
	})
	if err != nil {
		t.Fatalf("tuple: %v", err)
	}
	if _, err := tt.Validate([]any{1.0, 2.0}); err != nil {
		t.Fatalf("tuple validate: %v", err)
	}

	lt, err := buildType(TypeDef{Kind: "list", Elem: &TypeDef{Kind: "string"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := lt.Validate([]any{"a", "b"}); err != nil {
		t.Fatalf("list validate: %v", err)
	}

	dt, err := buildType(TypeDef{Kind: "dictionary", Elem: &TypeDef{Kind: "float"}})
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	if _, err := dt.Validate(map[string]any{"x": 1.0}); err != nil {
		t.Fatalf("dictionary validate: %v", err)
	}

	if _, err := buildType(TypeDef{Kind: "list"}); err == nil {
		t.Fatalf("list without elem must fail")
	}
	if _, err := buildType(TypeDef{Kind: "tuple"}); err == nil {
		t.Fatalf("tuple without elems must fail")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("b.yaml", "name: second\nmanifest_version: 1\n")
	write("a.yml", "name: first\nmanifest_version: 1\n")
	write("notes.txt", "not a manifest")

	ms, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir error: %v", err)
	}
	if len(ms) != 2 || ms[0].Name != "first" || ms[1].Name != "second" {
		t.Fatalf("unexpected manifests: %+v", ms)
	}

	// A missing directory is not an error.
	ms, err = LoadDir(filepath.Join(dir, "missing"))
	if err != nil || ms != nil {
		t.Fatalf("missing dir: %v %v", ms, err)
	}

	write("broken.yaml", "name: [\n")
	if _, err := LoadDir(dir); err == nil {
		t.Fatalf("broken manifest must fail the load")
	}
}
