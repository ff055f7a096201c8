/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "fmt"

// Family identifies which cascade domain an object belongs to. Presets may
// only be inherited by objects of the same family.
type Family int

const (
	FamilyView Family = iota
	FamilyEntity
	FamilyTransition
)

func (f Family) String() string {
	switch f {
	case FamilyView:
		return "view"
	case FamilyEntity:
		return "entity"
	case FamilyTransition:
		return "transition"
	}
	return "unknown"
}

// Object is the sparse, inheritance-aware property container shared by
// presets, subjects, and transitions. It holds the governing space, an
// ordered list of base objects, and the locally set values. A property that
// is set nowhere along the inheritance chain resolves to absence (nil).
type Object struct {
	space *Space
	bases []*Object
	local map[string]any
}

func newObject(space *Space, bases []*Object) Object {
	return Object{space: space, bases: bases, local: map[string]any{}}
}

// Space returns the property space governing legal names and value types.
func (o *Object) Space() *Space { return o.space }

// Set validates v against the property's declared type and stores it locally.
func (o *Object) Set(name string, v any) error {
	t, ok := o.space.TypeOf(name)
	if !ok {
		return fmt.Errorf("unknown property %q", name)
	}
	vv, err := t.Validate(v)
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}
	o.local[name] = vv
	return nil
}

// Unset removes the local value so the property reverts to its inherited
// default.
func (o *Object) Unset(name string) error {
	if !o.space.Contains(name) {
		return fmt.Errorf("unknown property %q", name)
	}
	delete(o.local, name)
	return nil
}

// Get returns the effective value of name, walking the inheritance chain
// when no local value is set. A space-valid name that is set nowhere yields
// nil; a name outside the space is an error.
func (o *Object) Get(name string) (any, error) {
	if !o.space.Contains(name) {
		return nil, fmt.Errorf("unknown property %q", name)
	}
	v, _, ok := o.Resolve(name)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Resolve finds the effective value of name together with its distance: the
// number of inheritance hops between this object and the object that defines
// the value. A local value wins at distance 0. Bases are consulted in
// reverse declaration order and distances compose additively (one hop to
// reach the base plus the distance inside the base's own chain); a later
// candidate replaces the current best only when strictly closer, so ties
// between sibling bases go to the last-listed base.
func (o *Object) Resolve(name string) (any, int, bool) {
	if v, ok := o.local[name]; ok {
		return v, 0, true
	}
	best := -1
	var bestVal any
	for i := len(o.bases) - 1; i >= 0; i-- {
		v, d, ok := o.bases[i].Resolve(name)
		if !ok {
			continue
		}
		d++
		if best < 0 || d < best {
			best = d
			bestVal = v
		}
	}
	if best < 0 {
		return nil, 0, false
	}
	return bestVal, best, true
}

// Preset is a named, reusable bundle of default property values for one
// cascade family.
type Preset struct {
	Object
	name   string
	family Family
}

// NewPreset builds a preset inheriting from the given bases, all of which
// must belong to the same family.
func NewPreset(name string, family Family, space *Space, bases []*Preset) (*Preset, error) {
	objs, err := presetBases(family, bases)
	if err != nil {
		return nil, err
	}
	return &Preset{Object: newObject(space, objs), name: name, family: family}, nil
}

func (p *Preset) Name() string   { return p.name }
func (p *Preset) Family() Family { return p.family }

func presetBases(family Family, bases []*Preset) ([]*Object, error) {
	objs := make([]*Object, len(bases))
	for i, b := range bases {
		if b.family != family {
			return nil, fmt.Errorf("preset %q is a %s preset, not a %s preset", b.name, b.family, family)
		}
		objs[i] = &b.Object
	}
	return objs, nil
}

// Subject is a view or entity placed in the scene, optionally named for
// later reference. Its property space is fixed at construction by its
// concrete kind.
type Subject struct {
	Object
	name   string
	kind   string
	family Family
}

// NewSubject builds a view or entity of the given concrete kind. Bases must
// be presets of the subject's family.
func NewSubject(name, kind string, family Family, space *Space, bases []*Preset) (*Subject, error) {
	if family != FamilyView && family != FamilyEntity {
		return nil, fmt.Errorf("subject family must be view or entity, got %s", family)
	}
	objs, err := presetBases(family, bases)
	if err != nil {
		return nil, err
	}
	return &Subject{Object: newObject(space, objs), name: name, kind: kind, family: family}, nil
}

// Name returns the reference id, or "" for an anonymous subject.
func (s *Subject) Name() string   { return s.name }
func (s *Subject) Kind() string   { return s.kind }
func (s *Subject) Family() Family { return s.family }

// ParamDef declares one transition parameter: a kind-specific animation
// argument, distinct from the cascading properties.
type ParamDef struct {
	Name string
	Type *Type
}

// TransitionKind describes a registered transition type: its lowercase name
// and its ordered parameter declarations. The built-in kind "appears"
// declares no parameters.
type TransitionKind struct {
	name   string
	params []ParamDef
}

func NewTransitionKind(name string, params ...ParamDef) *TransitionKind {
	return &TransitionKind{name: name, params: append([]ParamDef(nil), params...)}
}

func (k *TransitionKind) Name() string { return k.name }

// Transition is a timed change applied to a target subject. It cascades its
// properties (duration) like any sparse object and additionally carries
// non-cascading parameters declared by its kind.
type Transition struct {
	Object
	kind   *TransitionKind
	target *Subject
	auto   bool
	params map[string]any
}

// NewTransition builds a transition of the given kind on target. Bases must
// be transition presets. An auto transition fires immediately; otherwise it
// waits for an external trigger.
func NewTransition(kind *TransitionKind, target *Subject, space *Space, bases []*Preset, auto bool) (*Transition, error) {
	if target == nil {
		return nil, fmt.Errorf("transition %q has no target", kind.name)
	}
	objs, err := presetBases(FamilyTransition, bases)
	if err != nil {
		return nil, err
	}
	return &Transition{
		Object: newObject(space, objs),
		kind:   kind,
		target: target,
		auto:   auto,
		params: map[string]any{},
	}, nil
}

func (t *Transition) Kind() string     { return t.kind.name }
func (t *Transition) Target() *Subject { return t.target }
func (t *Transition) Auto() bool       { return t.auto }

// ParameterType returns the declared type of a kind parameter.
func (t *Transition) ParameterType(name string) (*Type, bool) {
	for _, p := range t.kind.params {
		if p.Name == name {
			return p.Type, true
		}
	}
	return nil, false
}

// Parameter returns the parameter value, or false when unset.
func (t *Transition) Parameter(name string) (any, bool) {
	v, ok := t.params[name]
	return v, ok
}

// Parameters returns a copy of all set parameters.
func (t *Transition) Parameters() map[string]any {
	out := make(map[string]any, len(t.params))
	for k, v := range t.params {
		out[k] = v
	}
	return out
}

// SetParameter validates v against the declared parameter type and stores it.
func (t *Transition) SetParameter(name string, v any) error {
	pt, ok := t.ParameterType(name)
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	vv, err := pt.Validate(v)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", name, err)
	}
	t.params[name] = vv
	return nil
}
