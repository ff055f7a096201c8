/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package parser

import (
	"regexp"
	"strconv"

	"keyframe/internal/scene"
)

// TokenKind enumerates the lexical token kinds of one scene line.
type TokenKind int

const (
	TokColon    TokenKind = iota // ":"
	TokDefine                    // ":="
	TokAssign                    // "="
	TokAt                        // "@"
	TokLBracket                  // "["
	TokRBracket                  // "]"
	TokDot                       // "."
	TokNumber
	TokColor
	TokString
	TokIdent
	TokTypeName
)

func (k TokenKind) String() string {
	switch k {
	case TokColon:
		return "':'"
	case TokDefine:
		return "':='"
	case TokAssign:
		return "'='"
	case TokAt:
		return "'@'"
	case TokLBracket:
		return "'['"
	case TokRBracket:
		return "']'"
	case TokDot:
		return "'.'"
	case TokNumber:
		return "number"
	case TokColor:
		return "color"
	case TokString:
		return "string"
	case TokIdent:
		return "identifier"
	case TokTypeName:
		return "type name"
	}
	return "token"
}

// Token is one lexical token with its zero-based source position. Number,
// Str, and Color carry the parsed literal value for the matching kinds.
type Token struct {
	Kind   TokenKind
	Text   string
	Number float64
	Str    string
	Color  scene.Color
	Line   int
	Col    int
}

var (
	numberRe   = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?`)
	identRe    = regexp.MustCompile(`^[a-z][0-9a-z]*(-[0-9a-z]+)*`)
	typeNameRe = regexp.MustCompile(`^[A-Z][0-9A-Za-z]*`)
	colorRe    = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})`)
)

// tokenizeLine scans one line of text already stripped of its leading
// indentation. base is the column of the first scanned character within the
// physical line, so reported positions match the original source. A comment
// truncates the line; an unrecognized character is fatal.
func tokenizeLine(text string, line, base int, source string) ([]Token, *Error) {
	var toks []Token
	i := 0
	emit := func(kind TokenKind, start, end int) *Token {
		toks = append(toks, Token{Kind: kind, Text: text[start:end], Line: line, Col: base + start})
		i = end
		return &toks[len(toks)-1]
	}
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '#':
			if m := colorRe.FindString(text[i:]); m != "" && !followedByAlnum(text, i+len(m)) {
				col, err := scene.ParseColor(m)
				if err != nil {
					return nil, errAt(source, line, base+i, "%s", err.Error())
				}
				emit(TokColor, i, i+len(m)).Color = col
				continue
			}
			if i+1 == len(text) || text[i+1] == ' ' {
				return toks, nil // comment truncates the line
			}
			return nil, errAt(source, line, base+i, "unrecognized character '#'")
		case c == ':':
			if i+1 < len(text) && text[i+1] == '=' {
				emit(TokDefine, i, i+2)
			} else {
				emit(TokColon, i, i+1)
			}
		case c == '=':
			emit(TokAssign, i, i+1)
		case c == '@':
			emit(TokAt, i, i+1)
		case c == '[':
			emit(TokLBracket, i, i+1)
		case c == ']':
			emit(TokRBracket, i, i+1)
		case c == '.':
			emit(TokDot, i, i+1)
		case c == '-' || (c >= '0' && c <= '9'):
			m := numberRe.FindString(text[i:])
			if m == "" {
				return nil, errAt(source, line, base+i, "unrecognized character %q", string(c))
			}
			n, err := strconv.ParseFloat(m, 64)
			if err != nil {
				return nil, errAt(source, line, base+i, "malformed number %q", m)
			}
			emit(TokNumber, i, i+len(m)).Number = n
		case c == '\'':
			str, end, serr := scanString(text, i)
			if serr != "" {
				return nil, errAt(source, line, base+i, "%s", serr)
			}
			emit(TokString, i, end).Str = str
		case c >= 'a' && c <= 'z':
			m := identRe.FindString(text[i:])
			emit(TokIdent, i, i+len(m))
		case c >= 'A' && c <= 'Z':
			m := typeNameRe.FindString(text[i:])
			emit(TokTypeName, i, i+len(m))
		default:
			return nil, errAt(source, line, base+i, "unrecognized character %q", string(c))
		}
	}
	return toks, nil
}

func followedByAlnum(text string, pos int) bool {
	if pos >= len(text) {
		return false
	}
	c := text[pos]
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// scanString reads a single-quoted literal starting at pos. Supported
// escapes: \\ \' \n \r \t. Returns the decoded value and the index one past
// the closing quote, or a non-empty error message.
func scanString(text string, pos int) (string, int, string) {
	var b []byte
	i := pos + 1
	for i < len(text) {
		switch text[i] {
		case '\'':
			return string(b), i + 1, ""
		case '\\':
			if i+1 >= len(text) {
				return "", 0, "unterminated string literal"
			}
			switch text[i+1] {
			case '\\':
				b = append(b, '\\')
			case '\'':
				b = append(b, '\'')
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			default:
				return "", 0, "illegal string escape '\\" + string(text[i+1]) + "'"
			}
			i += 2
		default:
			b = append(b, text[i])
			i++
		}
	}
	return "", 0, "unterminated string literal"
}
