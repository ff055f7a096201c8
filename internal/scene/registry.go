/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"regexp"
)

// Class is the variant a registered subject kind belongs to: a preset of one
// of the three families, a view, or an entity.
type Class int

const (
	ClassViewPreset Class = iota
	ClassEntityPreset
	ClassTransitionPreset
	ClassView
	ClassEntity
)

// Family returns the cascade family the class participates in.
func (c Class) Family() Family {
	switch c {
	case ClassViewPreset, ClassView:
		return FamilyView
	case ClassEntityPreset, ClassEntity:
		return FamilyEntity
	}
	return FamilyTransition
}

// IsPreset reports whether the class declares presets rather than placeable
// subjects.
func (c Class) IsPreset() bool {
	return c == ClassViewPreset || c == ClassEntityPreset || c == ClassTransitionPreset
}

var (
	typeNameRe   = regexp.MustCompile(`^[A-Z][0-9A-Za-z]*$`)
	identifierRe = regexp.MustCompile(`^[a-z][0-9a-z]*(-[0-9a-z]+)*$`)
)

// Registry is the pre-parse configuration surface. A host configures it once
// (additional property spaces, subject kinds, transition kinds) and then
// hands it to the parser; it is read-only during parsing, so one configured
// registry can serve any number of sequential or concurrent parses.
type Registry struct {
	spaces          map[Family][]*Space
	subjectKinds    map[string]Class
	transitionKinds map[string]*TransitionKind
}

// NewRegistry returns a registry with the built-ins pre-registered:
// ViewPreset, EntityPreset, TransitionPreset, Screen, Rectangle, and the
// transition kind "appears".
func NewRegistry() *Registry {
	return &Registry{
		spaces: map[Family][]*Space{
			FamilyView:       {screenSpace},
			FamilyEntity:     {rectangleSpace},
			FamilyTransition: {transitionSpace},
		},
		subjectKinds: map[string]Class{
			"ViewPreset":       ClassViewPreset,
			"EntityPreset":     ClassEntityPreset,
			"TransitionPreset": ClassTransitionPreset,
			"Screen":           ClassView,
			"Rectangle":        ClassEntity,
		},
		transitionKinds: map[string]*TransitionKind{
			"appears": NewTransitionKind("appears"),
		},
	}
}

// AddViewProperties registers additional view properties. The space is
// rejected when any of its names already exists in the view domain.
func (r *Registry) AddViewProperties(s *Space) error {
	return r.addProperties(FamilyView, s)
}

// AddEntityProperties registers additional entity properties.
func (r *Registry) AddEntityProperties(s *Space) error {
	return r.addProperties(FamilyEntity, s)
}

// AddTransitionProperties registers additional transition properties.
func (r *Registry) AddTransitionProperties(s *Space) error {
	return r.addProperties(FamilyTransition, s)
}

func (r *Registry) addProperties(f Family, s *Space) error {
	if s == nil {
		return fmt.Errorf("nil property space")
	}
	for _, existing := range r.spaces[f] {
		for _, name := range s.Names() {
			if existing.Contains(name) {
				return fmt.Errorf("%s property %q already exists", f, name)
			}
		}
	}
	r.spaces[f] = append(r.spaces[f], s)
	return nil
}

// RegisterSubjectKind registers an additional subject kind under a
// capitalized type name.
func (r *Registry) RegisterSubjectKind(name string, class Class) error {
	if !typeNameRe.MatchString(name) {
		return fmt.Errorf("subject kind name %q is not a valid type name", name)
	}
	switch class {
	case ClassViewPreset, ClassEntityPreset, ClassTransitionPreset, ClassView, ClassEntity:
	default:
		return fmt.Errorf("subject kind %q has an invalid class", name)
	}
	if _, dup := r.subjectKinds[name]; dup {
		return fmt.Errorf("subject kind %q already registered", name)
	}
	r.subjectKinds[name] = class
	return nil
}

// RegisterTransitionKind registers an additional transition kind under a
// lowercase identifier name.
func (r *Registry) RegisterTransitionKind(k *TransitionKind) error {
	if k == nil {
		return fmt.Errorf("nil transition kind")
	}
	if !identifierRe.MatchString(k.name) {
		return fmt.Errorf("transition kind name %q is not a valid identifier", k.name)
	}
	if _, dup := r.transitionKinds[k.name]; dup {
		return fmt.Errorf("transition kind %q already registered", k.name)
	}
	for _, p := range k.params {
		if !propertyNameRe.MatchString(p.Name) {
			return fmt.Errorf("transition kind %q: malformed parameter name %q", k.name, p.Name)
		}
		if p.Type == nil {
			return fmt.Errorf("transition kind %q: parameter %q has no type", k.name, p.Name)
		}
	}
	r.transitionKinds[k.name] = k
	return nil
}

// SubjectKind looks up a registered subject kind by type name.
func (r *Registry) SubjectKind(name string) (Class, bool) {
	c, ok := r.subjectKinds[name]
	return c, ok
}

// HasSubjectKind reports whether name is a registered subject kind.
func (r *Registry) HasSubjectKind(name string) bool {
	_, ok := r.subjectKinds[name]
	return ok
}

// TransitionKindNamed looks up a registered transition kind.
func (r *Registry) TransitionKindNamed(name string) (*TransitionKind, bool) {
	k, ok := r.transitionKinds[name]
	return k, ok
}

// MergedSpace builds a fresh flattened space for the family from the
// registry's declared list. The parser calls this once per family per
// document. Collisions cannot occur here: addProperties rejects them when
// spaces are registered.
func (r *Registry) MergedSpace(f Family) (*Space, error) {
	defs := make([]SpaceDef, len(r.spaces[f]))
	for i, s := range r.spaces[f] {
		defs[i] = s
	}
	return NewSpace(defs...)
}
