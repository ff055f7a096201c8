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
	"strings"

	"keyframe/internal/scene"
)

// Document is the result of a successful parse: the transitions created at
// any nesting depth, in creation order, plus the reference tables that make
// the rest of the object graph reachable.
type Document struct {
	Transitions []*scene.Transition
	Subjects    []*scene.Subject

	subjects map[string]*scene.Subject
	presets  map[string]*scene.Preset
	aliases  map[string]string
}

// Subject returns the subject bound to id.
func (d *Document) Subject(id string) (*scene.Subject, bool) {
	s, ok := d.subjects[id]
	return s, ok
}

// Preset returns the preset bound to id.
func (d *Document) Preset(id string) (*scene.Preset, bool) {
	p, ok := d.presets[id]
	return p, ok
}

// Alias returns the name an alias was bound to.
func (d *Document) Alias(name string) (string, bool) {
	a, ok := d.aliases[name]
	return a, ok
}

// Parse compiles scene source text against the given registry and returns
// the ordered list of transitions created at any nesting depth. Views,
// entities, and presets are reachable through the transition targets.
// Parsing stops at the first error; errors are *Error values.
func Parse(reg *scene.Registry, source string) ([]*scene.Transition, error) {
	return ParseNamed(reg, "", source)
}

// ParseNamed parses source text; name labels error messages only.
func ParseNamed(reg *scene.Registry, name, source string) ([]*scene.Transition, error) {
	doc, err := ParseDocument(reg, name, source)
	if err != nil {
		return nil, err
	}
	return doc.Transitions, nil
}

// ParseDocument parses source text and returns the full document, for hosts
// that want to reach subjects and presets by id.
func ParseDocument(reg *scene.Registry, name, source string) (*Document, error) {
	doc, err := newDocument(reg, name)
	if err != nil {
		return nil, err
	}
	stack := []blockParser{&rootParser{doc: doc}}

	for lineNo, raw := range strings.Split(source, "\n") {
		text := strings.TrimSuffix(raw, "\r")

		indent := 0
		spaceCol := -1
		cut := 0
	lead:
		for ; cut < len(text); cut++ {
			switch text[cut] {
			case '\t':
				indent++
			case ' ':
				if spaceCol < 0 {
					spaceCol = cut
				}
			default:
				break lead
			}
		}
		if cut == len(text) {
			continue // blank line
		}
		if text[cut] == '#' && (cut+1 == len(text) || text[cut+1] == ' ') {
			continue // comment-only line
		}
		// Indentation errors win over lexical errors on the same line.
		if spaceCol >= 0 {
			return nil, errAt(doc.label, lineNo, spaceCol, "space indentation is illegal, indent with tabs")
		}
		toks, terr := tokenizeLine(text[cut:], lineNo, cut, doc.label)
		if terr != nil {
			return nil, terr
		}
		if len(toks) == 0 {
			continue // comment-only line
		}
		if indent > len(stack)-1 {
			return nil, errAt(doc.label, lineNo, 0, "wrong indentation: expected at most %d tabs", len(stack)-1)
		}
		for len(stack)-1 > indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := top.end(); err != nil {
				return nil, err
			}
		}
		child, err := stack[len(stack)-1].parseLine(toks)
		if err != nil {
			return nil, err
		}
		if child != nil {
			stack = append(stack, child)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := top.end(); err != nil {
			return nil, err
		}
	}
	return &Document{
		Transitions: doc.transitions,
		Subjects:    doc.allSubjects,
		subjects:    doc.subjects,
		presets:     doc.presets,
		aliases:     doc.aliases,
	}, nil
}

// ParseFile reads the file at path and parses it, labeling errors with the
// path.
func ParseFile(reg *scene.Registry, path string) ([]*scene.Transition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseNamed(reg, path, string(data))
}

// ParseDocumentFile is ParseDocument over a file's contents.
func ParseDocumentFile(reg *scene.Registry, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(reg, path, string(data))
}

// blockParser consumes the lines of one indentation block and is finalized
// when the block is dedented past or the input ends.
type blockParser interface {
	parseLine(toks []Token) (blockParser, error)
	end() error
}

// defaultName is the reserved id of the implicit per-family default preset.
const defaultName = "default"

// document holds all per-parse state: the merged spaces, the alias and
// reference tables, the implicit default presets, and the transitions in
// creation order. Nothing survives across parse calls.
type document struct {
	reg         *scene.Registry
	label       string
	spaces      map[scene.Family]*scene.Space
	aliases     map[string]string
	presets     map[string]*scene.Preset
	subjects    map[string]*scene.Subject
	allSubjects []*scene.Subject
	defaults    map[scene.Family]*scene.Preset
	defaultSeen map[scene.Family]bool
	transitions []*scene.Transition
}

func newDocument(reg *scene.Registry, label string) (*document, error) {
	d := &document{
		reg:         reg,
		label:       label,
		spaces:      map[scene.Family]*scene.Space{},
		aliases:     map[string]string{},
		presets:     map[string]*scene.Preset{},
		subjects:    map[string]*scene.Subject{},
		defaults:    map[scene.Family]*scene.Preset{},
		defaultSeen: map[scene.Family]bool{},
	}
	for _, f := range []scene.Family{scene.FamilyView, scene.FamilyEntity, scene.FamilyTransition} {
		space, err := reg.MergedSpace(f)
		if err != nil {
			return nil, err
		}
		d.spaces[f] = space
		def, err := scene.NewPreset(defaultName, f, space, nil)
		if err != nil {
			return nil, err
		}
		d.defaults[f] = def
	}
	return d, nil
}

func (d *document) errTok(tok Token, format string, args ...any) *Error {
	return errAt(d.label, tok.Line, tok.Col, format, args...)
}

// errEnd positions an error just past the last token of a line.
func (d *document) errEnd(toks []Token, format string, args ...any) *Error {
	last := toks[len(toks)-1]
	return errAt(d.label, last.Line, last.Col+len(last.Text), format, args...)
}

// resolveTypeName resolves a name in type position: the alias table first,
// then the registry's subject kinds.
func (d *document) resolveTypeName(tok Token) (string, scene.Class, *Error) {
	name := tok.Text
	if target, ok := d.aliases[name]; ok {
		name = target
	}
	class, ok := d.reg.SubjectKind(name)
	if !ok {
		return "", 0, d.errTok(tok, "unknown type %q", tok.Text)
	}
	return name, class, nil
}

// resolveTransitionKind resolves a transition kind name through the alias
// table and the registry.
func (d *document) resolveTransitionKind(tok Token) (*scene.TransitionKind, *Error) {
	name := tok.Text
	if target, ok := d.aliases[name]; ok {
		name = target
	}
	kind, ok := d.reg.TransitionKindNamed(name)
	if !ok {
		return nil, d.errTok(tok, "unknown transition %q", tok.Text)
	}
	return kind, nil
}

// parseBases consumes an optional bracketed base list starting at toks[i]
// and resolves it to presets of the wanted family. An absent or empty list
// yields the family's default preset.
func (d *document) parseBases(toks []Token, i int, family scene.Family) ([]*scene.Preset, int, *Error) {
	if i >= len(toks) || toks[i].Kind != TokLBracket {
		return []*scene.Preset{d.defaults[family]}, i, nil
	}
	open := toks[i]
	i++
	var bases []*scene.Preset
	for {
		if i >= len(toks) {
			return nil, 0, d.errTok(open, "unterminated base list")
		}
		if toks[i].Kind == TokRBracket {
			i++
			break
		}
		if toks[i].Kind != TokIdent {
			return nil, 0, d.errTok(toks[i], "expected a preset id in base list, got %s", toks[i].Kind)
		}
		base, err := d.lookupPreset(toks[i], family)
		if err != nil {
			return nil, 0, err
		}
		bases = append(bases, base)
		i++
	}
	if len(bases) == 0 {
		bases = []*scene.Preset{d.defaults[family]}
	}
	return bases, i, nil
}

func (d *document) lookupPreset(tok Token, family scene.Family) (*scene.Preset, *Error) {
	if tok.Text == defaultName {
		return d.defaults[family], nil
	}
	p, ok := d.presets[tok.Text]
	if !ok {
		if _, isSubject := d.subjects[tok.Text]; isSubject {
			return nil, d.errTok(tok, "%q is not a preset", tok.Text)
		}
		return nil, d.errTok(tok, "undefined id %q", tok.Text)
	}
	if p.Family() != family {
		return nil, d.errTok(tok, "%q is a %s preset, not a %s preset", tok.Text, p.Family(), family)
	}
	return p, nil
}

// bindID records a named target, rejecting collisions across both id kinds.
func (d *document) bindID(tok Token) *Error {
	name := tok.Text
	if name == "true" || name == "false" || name == defaultName {
		return d.errTok(tok, "%q is a reserved name", name)
	}
	if _, dup := d.presets[name]; dup {
		return d.errTok(tok, "id %q is already defined", name)
	}
	if _, dup := d.subjects[name]; dup {
		return d.errTok(tok, "id %q is already defined", name)
	}
	return nil
}

// newTransition creates a transition and appends it to the document's
// ordered list.
func (d *document) newTransition(kindTok Token, target *scene.Subject, toks []Token, i int) (*scene.Transition, int, *Error) {
	kind, perr := d.resolveTransitionKind(kindTok)
	if perr != nil {
		return nil, 0, perr
	}
	bases, i, perr := d.parseBases(toks, i, scene.FamilyTransition)
	if perr != nil {
		return nil, 0, perr
	}
	auto := false
	if i < len(toks) && toks[i].Kind == TokIdent && toks[i].Text == "auto" {
		auto = true
		i++
	}
	t, err := scene.NewTransition(kind, target, d.spaces[scene.FamilyTransition], bases, auto)
	if err != nil {
		return nil, 0, d.errTok(kindTok, "%s", err.Error())
	}
	d.transitions = append(d.transitions, t)
	return t, i, nil
}
