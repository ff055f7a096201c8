/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package parser

import "keyframe/internal/scene"

// rootParser interprets block-start lines: alias definitions, named and
// anonymous target definitions, and triggered transitions on existing ids.
type rootParser struct {
	doc *document
}

func (p *rootParser) end() error { return nil }

func (p *rootParser) parseLine(toks []Token) (blockParser, error) {
	d := p.doc
	first := toks[0]
	switch first.Kind {
	case TokTypeName:
		return p.target(toks, nil, 0)
	case TokIdent:
		if len(toks) < 2 {
			return nil, d.errEnd(toks, "expected ':', ':=' or a transition name after %q", first.Text)
		}
		switch toks[1].Kind {
		case TokDefine:
			return nil, p.alias(toks)
		case TokColon:
			if len(toks) < 3 {
				return nil, d.errEnd(toks, "expected a type name after ':'")
			}
			if toks[2].Kind != TokTypeName && toks[2].Kind != TokIdent {
				return nil, d.errTok(toks[2], "expected a type name, got %s", toks[2].Kind)
			}
			return p.target(toks, &first, 2)
		case TokIdent:
			return p.triggered(toks)
		default:
			return nil, d.errTok(toks[1], "expected ':', ':=' or a transition name, got %s", toks[1].Kind)
		}
	default:
		return nil, d.errTok(first, "expected an identifier or a type name, got %s", first.Kind)
	}
}

// alias handles `<id> := <Name>`: binding a short name to a type name or a
// transition kind name.
func (p *rootParser) alias(toks []Token) error {
	d := p.doc
	nameTok := toks[0]
	name := nameTok.Text
	if name == "true" || name == "false" {
		return d.errTok(nameTok, "%q is a reserved name", name)
	}
	if _, dup := d.aliases[name]; dup {
		return d.errTok(nameTok, "alias %q is already defined", name)
	}
	if d.reg.HasSubjectKind(name) {
		return d.errTok(nameTok, "%q is a registered type name", name)
	}
	if _, isKind := d.reg.TransitionKindNamed(name); isKind {
		return d.errTok(nameTok, "%q is a registered transition name", name)
	}
	if len(toks) < 3 {
		return d.errEnd(toks, "expected a type or transition name after ':='")
	}
	value := toks[2]
	if value.Kind != TokIdent && value.Kind != TokTypeName {
		return d.errTok(value, "expected a type or transition name, got %s", value.Kind)
	}
	if len(toks) > 3 {
		return d.errTok(toks[3], "unexpected token after alias definition")
	}
	d.aliases[name] = value.Text
	return nil
}

// target handles named and anonymous target definitions. nameTok is nil for
// the anonymous form; typeIdx is the index of the type-name token.
func (p *rootParser) target(toks []Token, nameTok *Token, typeIdx int) (blockParser, error) {
	d := p.doc
	typeTok := toks[typeIdx]
	resolved, class, perr := d.resolveTypeName(typeTok)
	if perr != nil {
		return nil, perr
	}
	family := class.Family()

	if class.IsPreset() {
		if nameTok != nil && nameTok.Text == defaultName {
			return p.defaultPreset(toks, *nameTok, typeIdx, family)
		}
		bases, i, perr := d.parseBases(toks, typeIdx+1, family)
		if perr != nil {
			return nil, perr
		}
		if i != len(toks) {
			return nil, d.errTok(toks[i], "unexpected token after preset definition")
		}
		name := ""
		if nameTok != nil {
			if perr := d.bindID(*nameTok); perr != nil {
				return nil, perr
			}
			name = nameTok.Text
		}
		preset, err := scene.NewPreset(name, family, d.spaces[family], bases)
		if err != nil {
			return nil, d.errTok(typeTok, "%s", err.Error())
		}
		if name != "" {
			d.presets[name] = preset
		}
		return &parameterParser{doc: d, preset: preset, allowDefaults: true}, nil
	}

	bases, i, perr := d.parseBases(toks, typeIdx+1, family)
	if perr != nil {
		return nil, perr
	}
	name := ""
	if nameTok != nil {
		if perr := d.bindID(*nameTok); perr != nil {
			return nil, perr
		}
		name = nameTok.Text
	}
	subject, err := scene.NewSubject(name, resolved, family, d.spaces[family], bases)
	if err != nil {
		return nil, d.errTok(typeTok, "%s", err.Error())
	}
	d.allSubjects = append(d.allSubjects, subject)
	if name != "" {
		d.subjects[name] = subject
	}

	var transition *scene.Transition
	if i < len(toks) {
		if toks[i].Kind != TokIdent {
			return nil, d.errTok(toks[i], "expected a transition name, got %s", toks[i].Kind)
		}
		transition, i, perr = d.newTransition(toks[i], subject, toks, i+1)
		if perr != nil {
			return nil, perr
		}
		if i != len(toks) {
			return nil, d.errTok(toks[i], "unexpected token after transition")
		}
	}
	return &parameterParser{doc: d, subject: subject, transition: transition, allowDefaults: true}, nil
}

// defaultPreset handles `default : <XPreset>`: populating the implicit
// default preset of the family. It may not inherit and may be defined only
// once per document.
func (p *rootParser) defaultPreset(toks []Token, nameTok Token, typeIdx int, family scene.Family) (blockParser, error) {
	d := p.doc
	if d.defaultSeen[family] {
		return nil, d.errTok(nameTok, "the %s default preset is already defined", family)
	}
	i := typeIdx + 1
	if i < len(toks) && toks[i].Kind == TokLBracket {
		if i+1 >= len(toks) || toks[i+1].Kind != TokRBracket {
			return nil, d.errTok(toks[i], "the default preset may not inherit")
		}
		i += 2
	}
	if i != len(toks) {
		return nil, d.errTok(toks[i], "unexpected token after preset definition")
	}
	d.defaultSeen[family] = true
	return &parameterParser{doc: d, preset: d.defaults[family], allowDefaults: true}, nil
}

// triggered handles `<id> <transition> [bases] [auto]` on a previously
// declared subject.
func (p *rootParser) triggered(toks []Token) (blockParser, error) {
	d := p.doc
	idTok := toks[0]
	subject, ok := d.subjects[idTok.Text]
	if !ok {
		if _, isPreset := d.presets[idTok.Text]; isPreset {
			return nil, d.errTok(idTok, "transitions cannot target the preset %q", idTok.Text)
		}
		return nil, d.errTok(idTok, "undefined id %q", idTok.Text)
	}
	transition, i, perr := d.newTransition(toks[1], subject, toks, 2)
	if perr != nil {
		return nil, perr
	}
	if i != len(toks) {
		return nil, d.errTok(toks[i], "unexpected token after transition")
	}
	return &parameterParser{doc: d, subject: subject, transition: transition}, nil
}

// parameterParser consumes the indented block under a target or transition
// line: property defaults (:=), transition parameters (=), transition
// properties (@), and nested transition declarations on the block's subject.
type parameterParser struct {
	doc           *document
	subject       *scene.Subject
	preset        *scene.Preset
	transition    *scene.Transition
	allowDefaults bool
}

func (p *parameterParser) end() error { return nil }

func (p *parameterParser) parseLine(toks []Token) (blockParser, error) {
	d := p.doc
	first := toks[0]
	if first.Kind != TokIdent {
		return nil, d.errTok(first, "expected a property name, got %s", first.Kind)
	}

	// A lone identifier, or one followed by a base list or the auto flag,
	// declares another transition on the block's subject.
	if len(toks) == 1 || toks[1].Kind == TokLBracket || toks[1].Kind == TokIdent {
		if p.subject == nil {
			return nil, d.errTok(first, "transitions cannot be declared inside a preset")
		}
		transition, i, perr := d.newTransition(first, p.subject, toks, 1)
		if perr != nil {
			return nil, perr
		}
		if i != len(toks) {
			return nil, d.errTok(toks[i], "unexpected token after transition")
		}
		return &parameterParser{doc: d, subject: p.subject, transition: transition}, nil
	}

	name, i, perr := p.dottedName(toks)
	if perr != nil {
		return nil, perr
	}
	if i >= len(toks) {
		return nil, d.errEnd(toks, "expected ':=', '=' or '@' after %q", name)
	}
	op := toks[i]
	switch op.Kind {
	case TokDefine:
		return nil, p.setDefault(name, first, op, toks, i+1)
	case TokAssign:
		return nil, p.setParameter(name, first, op, toks, i+1)
	case TokAt:
		return nil, p.setTransitionProperty(name, first, op, toks, i+1)
	default:
		return nil, d.errTok(op, "expected ':=', '=' or '@', got %s", op.Kind)
	}
}

// dottedName assembles a property name from id ('.' id)* tokens.
func (p *parameterParser) dottedName(toks []Token) (string, int, *Error) {
	name := toks[0].Text
	i := 1
	for i < len(toks) && toks[i].Kind == TokDot {
		if i+1 >= len(toks) || toks[i+1].Kind != TokIdent {
			return "", 0, p.doc.errTok(toks[i], "expected an identifier after '.'")
		}
		name += "." + toks[i+1].Text
		i += 2
	}
	return name, i, nil
}

// setDefault handles `name := value`: a cascading default on the block's
// target.
func (p *parameterParser) setDefault(name string, nameTok, op Token, toks []Token, i int) error {
	d := p.doc
	if !p.allowDefaults {
		return d.errTok(op, "':=' is only allowed under a newly defined target")
	}
	if p.preset != nil && p.preset.Family() == scene.FamilyTransition {
		return d.errTok(op, "':=' is not allowed in a transition preset, use '@'")
	}
	obj := p.targetObject()
	return p.assign(obj, name, nameTok, toks, i)
}

// setParameter handles `name = value`: a non-cascading parameter of the
// active transition.
func (p *parameterParser) setParameter(name string, nameTok, op Token, toks []Token, i int) error {
	d := p.doc
	if p.transition == nil {
		return d.errTok(op, "'=' requires an active transition")
	}
	paramType, ok := p.transition.ParameterType(name)
	if !ok {
		return d.errTok(nameTok, "unknown parameter %q", name)
	}
	value, next, perr := p.literal(paramType, toks, i)
	if perr != nil {
		return perr
	}
	if next != len(toks) {
		return d.errTok(toks[next], "unexpected token after value")
	}
	if err := p.transition.SetParameter(name, value); err != nil {
		return d.errTok(nameTok, "%s", err.Error())
	}
	return nil
}

// setTransitionProperty handles `name @ value`: a cascading property of the
// active transition, or of the transition preset the block is scoped to.
func (p *parameterParser) setTransitionProperty(name string, nameTok, op Token, toks []Token, i int) error {
	d := p.doc
	var obj *scene.Object
	switch {
	case p.transition != nil:
		obj = &p.transition.Object
	case p.preset != nil && p.preset.Family() == scene.FamilyTransition:
		obj = &p.preset.Object
	default:
		return d.errTok(op, "'@' requires an active transition or a transition preset")
	}
	return p.assign(obj, name, nameTok, toks, i)
}

func (p *parameterParser) targetObject() *scene.Object {
	if p.subject != nil {
		return &p.subject.Object
	}
	return &p.preset.Object
}

// assign parses the literal for the property's declared type and stores it
// on obj.
func (p *parameterParser) assign(obj *scene.Object, name string, nameTok Token, toks []Token, i int) error {
	d := p.doc
	propType, ok := obj.Space().TypeOf(name)
	if !ok {
		return d.errTok(nameTok, "unknown property %q", name)
	}
	value, next, perr := p.literal(propType, toks, i)
	if perr != nil {
		return perr
	}
	if next != len(toks) {
		return d.errTok(toks[next], "unexpected token after value")
	}
	if err := obj.Set(name, value); err != nil {
		return d.errTok(nameTok, "%s", err.Error())
	}
	return nil
}

// literal parses a scalar literal for the declared type. Compound types
// have no literal syntax in this grammar version.
func (p *parameterParser) literal(t *scene.Type, toks []Token, i int) (any, int, *Error) {
	d := p.doc
	if i >= len(toks) {
		return nil, 0, d.errEnd(toks, "expected a %s value", t)
	}
	tok := toks[i]
	var value any
	next := i + 1
	switch t.Kind() {
	case scene.KindBoolean:
		switch {
		case tok.Kind == TokIdent && tok.Text == "true":
			value = true
		case tok.Kind == TokIdent && tok.Text == "false":
			value = false
		default:
			return nil, 0, d.errTok(tok, "expected 'true' or 'false'")
		}
	case scene.KindFloat, scene.KindPositiveFloat:
		if tok.Kind != TokNumber {
			return nil, 0, d.errTok(tok, "expected a number, got %s", tok.Kind)
		}
		value = tok.Number
	case scene.KindDuration:
		if tok.Kind != TokNumber {
			return nil, 0, d.errTok(tok, "expected a number, got %s", tok.Kind)
		}
		if next >= len(toks) || toks[next].Kind != TokIdent || (toks[next].Text != "s" && toks[next].Text != "ms") {
			return nil, 0, d.errTok(tok, "a duration needs a unit, 's' or 'ms'")
		}
		if toks[next].Text == "s" {
			value = tok.Number * 1000
		} else {
			value = tok.Number
		}
		next++
	case scene.KindString:
		if tok.Kind != TokString {
			return nil, 0, d.errTok(tok, "expected a quoted string, got %s", tok.Kind)
		}
		value = tok.Str
	case scene.KindColor:
		switch tok.Kind {
		case TokColor:
			value = tok.Color
		case TokString:
			c, err := scene.ParseColor(tok.Str)
			if err != nil {
				return nil, 0, d.errTok(tok, "%s", err.Error())
			}
			value = c
		default:
			return nil, 0, d.errTok(tok, "expected a color, got %s", tok.Kind)
		}
	case scene.KindEnum:
		if tok.Kind != TokString {
			return nil, 0, d.errTok(tok, "expected a quoted %s value, got %s", t, tok.Kind)
		}
		value = tok.Str
	default:
		return nil, 0, d.errTok(tok, "%s values have no literal syntax", t)
	}
	validated, err := t.Validate(value)
	if err != nil {
		return nil, 0, d.errTok(tok, "%s", err.Error())
	}
	return validated, next, nil
}
