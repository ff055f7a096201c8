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
	"math"
	"strings"
)

// Type describes the value domain of a single scene property. The set of
// kinds is closed: the scalar kinds exist as package singletons and the only
// extension axis is composition via EnumOf/TupleOf/ListOf/DictOf. The struct
// fields are unexported, so no new kind can be introduced from outside.
//
// Values validated by each kind:
//
//	Boolean       bool
//	Float         float64 (finite)
//	PositiveFloat float64 (finite, > 0)
//	Duration      float64 milliseconds (finite, >= 0)
//	String        string
//	Color         Color
//	Enum          string drawn from the declared value set
//	Tuple         []any, exact arity, element-wise typed
//	List          []any, element typed
//	Dictionary    map[string]any, element typed
type Type struct {
	kind       kind
	enumName   string
	enumValues []string
	tupleElems []*Type
	elem       *Type
}

type kind int

const (
	kindBoolean kind = iota
	kindFloat
	kindPositiveFloat
	kindDuration
	kindString
	kindColor
	kindEnum
	kindTuple
	kindList
	kindDictionary
)

// Kind discriminates the closed set of type kinds. It only describes
// existing types; it is not a constructor surface.
type Kind int

const (
	KindBoolean Kind = iota
	KindFloat
	KindPositiveFloat
	KindDuration
	KindString
	KindColor
	KindEnum
	KindTuple
	KindList
	KindDictionary
)

// Kind returns the discriminator for the type, letting callers such as the
// parser's literal table switch exhaustively over the closed set.
func (t *Type) Kind() Kind { return Kind(t.kind) }

// Scalar kind singletons. Equality for these is pointer identity.
var (
	Boolean       = &Type{kind: kindBoolean}
	Float         = &Type{kind: kindFloat}
	PositiveFloat = &Type{kind: kindPositiveFloat}
	Duration      = &Type{kind: kindDuration}
	String        = &Type{kind: kindString}
	ColorType     = &Type{kind: kindColor}
)

// EnumOf builds an enum type over the given value set. Duplicate values are
// permitted; membership is all that is ever tested.
func EnumOf(name string, values ...string) *Type {
	return &Type{kind: kindEnum, enumName: name, enumValues: append([]string(nil), values...)}
}

// TupleOf builds a fixed-arity tuple type from the element types.
func TupleOf(elems ...*Type) *Type {
	return &Type{kind: kindTuple, tupleElems: append([]*Type(nil), elems...)}
}

// ListOf builds a homogeneous list type.
func ListOf(elem *Type) *Type { return &Type{kind: kindList, elem: elem} }

// DictOf builds a string-keyed dictionary type.
func DictOf(elem *Type) *Type { return &Type{kind: kindDictionary, elem: elem} }

// ValueError reports a value that failed validation against a type.
type ValueError struct {
	Expected string
	Actual   any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value: expected %s, got %v", e.Expected, e.Actual)
}

func invalid(t *Type, actual any) error {
	return &ValueError{Expected: t.String(), Actual: actual}
}

// String renders a readable name for the type, used in error messages.
func (t *Type) String() string {
	switch t.kind {
	case kindBoolean:
		return "boolean"
	case kindFloat:
		return "float"
	case kindPositiveFloat:
		return "positive float"
	case kindDuration:
		return "duration"
	case kindString:
		return "string"
	case kindColor:
		return "color"
	case kindEnum:
		return fmt.Sprintf("enum %s (%s)", t.enumName, strings.Join(t.enumValues, "|"))
	case kindTuple:
		parts := make([]string, len(t.tupleElems))
		for i, e := range t.tupleElems {
			parts[i] = e.String()
		}
		return "tuple(" + strings.Join(parts, ", ") + ")"
	case kindList:
		return "list of " + t.elem.String()
	case kindDictionary:
		return "dictionary of " + t.elem.String()
	}
	return "unknown"
}

// Validate checks v against the type and returns the (possibly normalized)
// value, or a *ValueError. It is pure and total over any input. Compound
// kinds validate recursively and surface the first failing element.
func (t *Type) Validate(v any) (any, error) {
	switch t.kind {
	case kindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case kindFloat:
		if f, ok := asFloat(v); ok && isFinite(f) {
			return f, nil
		}
	case kindPositiveFloat:
		if f, ok := asFloat(v); ok && isFinite(f) && f > 0 {
			return f, nil
		}
	case kindDuration:
		if f, ok := asFloat(v); ok && isFinite(f) && f >= 0 {
			return f, nil
		}
	case kindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case kindColor:
		if c, ok := v.(Color); ok {
			return c, nil
		}
	case kindEnum:
		if s, ok := v.(string); ok {
			for _, candidate := range t.enumValues {
				if candidate == s {
					return s, nil
				}
			}
		}
	case kindTuple:
		elems, ok := v.([]any)
		if !ok || len(elems) != len(t.tupleElems) {
			break
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			ve, err := t.tupleElems[i].Validate(e)
			if err != nil {
				return nil, err
			}
			out[i] = ve
		}
		return out, nil
	case kindList:
		elems, ok := v.([]any)
		if !ok {
			break
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			ve, err := t.elem.Validate(e)
			if err != nil {
				return nil, err
			}
			out[i] = ve
		}
		return out, nil
	case kindDictionary:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(m))
		for k, e := range m {
			ve, err := t.elem.Validate(e)
			if err != nil {
				return nil, err
			}
			out[k] = ve
		}
		return out, nil
	}
	return nil, invalid(t, v)
}

// Equals compares two types. Scalar kinds compare by singleton identity,
// compound kinds structurally by component.
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	}
	if other == nil || t.kind != other.kind {
		return false
	}
	switch t.kind {
	case kindEnum:
		if t.enumName != other.enumName || len(t.enumValues) != len(other.enumValues) {
			return false
		}
		for i, v := range t.enumValues {
			if other.enumValues[i] != v {
				return false
			}
		}
		return true
	case kindTuple:
		if len(t.tupleElems) != len(other.tupleElems) {
			return false
		}
		for i, e := range t.tupleElems {
			if !e.Equals(other.tupleElems[i]) {
				return false
			}
		}
		return true
	case kindList, kindDictionary:
		return t.elem.Equals(other.elem)
	}
	// Distinct instances of a scalar kind cannot be built from outside the
	// package, only the singletons exist.
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isFinite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }
