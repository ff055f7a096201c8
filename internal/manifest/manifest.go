/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package manifest loads extension manifests: YAML files that contribute
// subject kinds, properties, and transition kinds to a scene registry.
// Manifests are validated against an embedded JSON schema before any of
// their content is applied, so a malformed manifest is rejected as a whole.
package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	applog "keyframe/internal/log"
	"keyframe/internal/scene"
)

//go:embed manifest.schema.json
var schemaBytes []byte

// TypeDef is the YAML form of a property or parameter type.
type TypeDef struct {
	Kind   string    `yaml:"kind" json:"kind"`
	Name   string    `yaml:"name,omitempty" json:"name,omitempty"`
	Values []string  `yaml:"values,omitempty" json:"values,omitempty"`
	Elems  []TypeDef `yaml:"elems,omitempty" json:"elems,omitempty"`
	Elem   *TypeDef  `yaml:"elem,omitempty" json:"elem,omitempty"`
}

// SubjectKindDef declares a new subject kind. Family is one of view, entity,
// view-preset, entity-preset, or transition-preset.
type SubjectKindDef struct {
	Name   string `yaml:"name" json:"name"`
	Family string `yaml:"family" json:"family"`
}

// PropertyDef declares a new property in one family's space.
type PropertyDef struct {
	Name   string  `yaml:"name" json:"name"`
	Family string  `yaml:"family" json:"family"`
	Type   TypeDef `yaml:"type" json:"type"`
}

// ParameterDef declares one parameter of a transition kind.
type ParameterDef struct {
	Name string  `yaml:"name" json:"name"`
	Type TypeDef `yaml:"type" json:"type"`
}

// TransitionKindDef declares a new transition kind with its parameters.
type TransitionKindDef struct {
	Name       string         `yaml:"name" json:"name"`
	Parameters []ParameterDef `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Manifest is one validated extension manifest.
type Manifest struct {
	Name            string              `yaml:"name" json:"name"`
	ManifestVersion int                 `yaml:"manifest_version" json:"manifest_version"`
	Version         string              `yaml:"version,omitempty" json:"version,omitempty"`
	SubjectKinds    []SubjectKindDef    `yaml:"subject_kinds,omitempty" json:"subject_kinds,omitempty"`
	Properties      []PropertyDef       `yaml:"properties,omitempty" json:"properties,omitempty"`
	TransitionKinds []TransitionKindDef `yaml:"transition_kinds,omitempty" json:"transition_kinds,omitempty"`
}

// Parse validates data against the manifest schema and decodes it.
func Parse(data []byte) (*Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert manifest to json: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(jsonBytes)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile reads and parses one manifest file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadDir loads every *.yaml and *.yml manifest in dir, in name order. A
// missing directory yields no manifests and no error.
func LoadDir(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []*Manifest
	for _, name := range names {
		m, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Apply registers the manifest's contributions on reg. Collisions with
// built-ins or previously applied manifests are errors.
func (m *Manifest) Apply(reg *scene.Registry) error {
	l := applog.WithOperation(applog.WithComponent("manifest"), "apply").With(slog.String("manifest", m.Name))

	grouped := map[scene.Family][]scene.Binding{}
	for _, p := range m.Properties {
		f, err := parseFamily(p.Family)
		if err != nil {
			return fmt.Errorf("manifest %q: property %q: %w", m.Name, p.Name, err)
		}
		t, err := buildType(p.Type)
		if err != nil {
			return fmt.Errorf("manifest %q: property %q: %w", m.Name, p.Name, err)
		}
		grouped[f] = append(grouped[f], scene.Binding{Name: p.Name, Type: t})
	}
	for _, f := range []scene.Family{scene.FamilyView, scene.FamilyEntity, scene.FamilyTransition} {
		bindings := grouped[f]
		if len(bindings) == 0 {
			continue
		}
		defs := make([]scene.SpaceDef, len(bindings))
		for i, b := range bindings {
			defs[i] = b
		}
		space, err := scene.NewSpace(defs...)
		if err != nil {
			return fmt.Errorf("manifest %q: %w", m.Name, err)
		}
		switch f {
		case scene.FamilyView:
			err = reg.AddViewProperties(space)
		case scene.FamilyEntity:
			err = reg.AddEntityProperties(space)
		default:
			err = reg.AddTransitionProperties(space)
		}
		if err != nil {
			return fmt.Errorf("manifest %q: %w", m.Name, err)
		}
	}

	for _, sk := range m.SubjectKinds {
		class, err := parseClass(sk.Family)
		if err != nil {
			return fmt.Errorf("manifest %q: subject kind %q: %w", m.Name, sk.Name, err)
		}
		if err := reg.RegisterSubjectKind(sk.Name, class); err != nil {
			return fmt.Errorf("manifest %q: %w", m.Name, err)
		}
	}

	for _, tk := range m.TransitionKinds {
		params := make([]scene.ParamDef, len(tk.Parameters))
		for i, p := range tk.Parameters {
			t, err := buildType(p.Type)
			if err != nil {
				return fmt.Errorf("manifest %q: transition %q parameter %q: %w", m.Name, tk.Name, p.Name, err)
			}
			params[i] = scene.ParamDef{Name: p.Name, Type: t}
		}
		if err := reg.RegisterTransitionKind(scene.NewTransitionKind(tk.Name, params...)); err != nil {
			return fmt.Errorf("manifest %q: %w", m.Name, err)
		}
	}

	l.Info("manifest applied",
		slog.Int("subject_kinds", len(m.SubjectKinds)),
		slog.Int("properties", len(m.Properties)),
		slog.Int("transition_kinds", len(m.TransitionKinds)))
	return nil
}

// ApplyAll applies the manifests in order, stopping at the first error.
func ApplyAll(reg *scene.Registry, manifests []*Manifest) error {
	for _, m := range manifests {
		if err := m.Apply(reg); err != nil {
			return err
		}
	}
	return nil
}

func parseFamily(s string) (scene.Family, error) {
	switch s {
	case "view":
		return scene.FamilyView, nil
	case "entity":
		return scene.FamilyEntity, nil
	case "transition":
		return scene.FamilyTransition, nil
	}
	return 0, fmt.Errorf("unknown family %q", s)
}

func parseClass(s string) (scene.Class, error) {
	switch s {
	case "view":
		return scene.ClassView, nil
	case "entity":
		return scene.ClassEntity, nil
	case "view-preset":
		return scene.ClassViewPreset, nil
	case "entity-preset":
		return scene.ClassEntityPreset, nil
	case "transition-preset":
		return scene.ClassTransitionPreset, nil
	}
	return 0, fmt.Errorf("unknown subject family %q", s)
}

// buildType turns a TypeDef into a scene type. The schema restricts the
// kind names, so the default branch only fires on schema drift.
func buildType(d TypeDef) (*scene.Type, error) {
	switch d.Kind {
	case "boolean":
		return scene.Boolean, nil
	case "float":
		return scene.Float, nil
	case "positive-float":
		return scene.PositiveFloat, nil
	case "duration":
		return scene.Duration, nil
	case "string":
		return scene.String, nil
	case "color":
		return scene.ColorType, nil
	case "enum":
		if len(d.Values) == 0 {
			return nil, fmt.Errorf("enum type needs values")
		}
		name := d.Name
		if name == "" {
			name = strings.Join(d.Values, "|")
		}
		return scene.EnumOf(name, d.Values...), nil
	case "tuple":
		if len(d.Elems) == 0 {
			return nil, fmt.Errorf("tuple type needs elems")
		}
		elems := make([]*scene.Type, len(d.Elems))
		for i, e := range d.Elems {
			t, err := buildType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return scene.TupleOf(elems...), nil
	case "list":
		if d.Elem == nil {
			return nil, fmt.Errorf("list type needs elem")
		}
		elem, err := buildType(*d.Elem)
		if err != nil {
			return nil, err
		}
		return scene.ListOf(elem), nil
	case "dictionary":
		if d.Elem == nil {
			return nil, fmt.Errorf("dictionary type needs elem")
		}
		elem, err := buildType(*d.Elem)
		if err != nil {
			return nil, err
		}
		return scene.DictOf(elem), nil
	}
	return nil, fmt.Errorf("unknown type kind %q", d.Kind)
}
