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

// propertyNameRe is the lexical grammar for property names: dotted
// lowercase-hyphen identifiers such as "fill-color" or "text.font".
var propertyNameRe = regexp.MustCompile(
	`^[a-z][0-9a-z]*(-[0-9a-z]+)*(\.[a-z][0-9a-z]*(-[0-9a-z]+)*)*$`)

// SpaceDef is either a single Binding or a whole *Space to merge in.
type SpaceDef interface {
	bindings() []Binding
}

// Binding pairs a property name with its type.
type Binding struct {
	Name string
	Type *Type
}

func (b Binding) bindings() []Binding { return []Binding{b} }

// Space is an immutable namespace mapping property names to types. It is
// built once from bindings and subspaces; subspace merging is transitive
// because a Space exposes its own flattened bindings. Spaces are compared by
// identity after construction.
type Space struct {
	names []string
	types map[string]*Type
}

func (s *Space) bindings() []Binding {
	out := make([]Binding, len(s.names))
	for i, n := range s.names {
		out[i] = Binding{Name: n, Type: s.types[n]}
	}
	return out
}

// NewSpace flattens the definitions into a single namespace. It fails on a
// malformed name, a nil type, or a name bound twice across the merged set.
func NewSpace(defs ...SpaceDef) (*Space, error) {
	s := &Space{types: map[string]*Type{}}
	for _, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("nil space definition")
		}
		for _, b := range def.bindings() {
			if !propertyNameRe.MatchString(b.Name) {
				return nil, fmt.Errorf("malformed property name %q", b.Name)
			}
			if b.Type == nil {
				return nil, fmt.Errorf("property %q has no type", b.Name)
			}
			if _, dup := s.types[b.Name]; dup {
				return nil, fmt.Errorf("property %q bound twice", b.Name)
			}
			s.names = append(s.names, b.Name)
			s.types[b.Name] = b.Type
		}
	}
	return s, nil
}

// mustSpace builds the built-in spaces at package init; definitions there are
// static and cannot collide.
func mustSpace(defs ...SpaceDef) *Space {
	s, err := NewSpace(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the flat property names in insertion order.
func (s *Space) Names() []string { return append([]string(nil), s.names...) }

// TypeOf returns the type bound to name, or false when the name is not part
// of the space.
func (s *Space) TypeOf(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Contains reports whether name is bound in the space.
func (s *Space) Contains(name string) bool {
	_, ok := s.types[name]
	return ok
}
