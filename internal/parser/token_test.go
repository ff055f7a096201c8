/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package parser

import "testing"

func lex(t *testing.T, text string) []Token {
	t.Helper()
	toks, err := tokenizeLine(text, 0, 0, "test")
	if err != nil {
		t.Fatalf("tokenizeLine(%q) error: %v", text, err)
	}
	return toks
}

func lexErr(t *testing.T, text string) *Error {
	t.Helper()
	_, err := tokenizeLine(text, 0, 0, "test")
	if err == nil {
		t.Fatalf("tokenizeLine(%q) should fail", text)
	}
	return err
}

func TestTokenizeKinds(t *testing.T) {
	toks := lex(t, "box : Rectangle [a b] fill-color := -1.5 'hi' #0f0 @ = . 2")
	want := []TokenKind{
		TokIdent, TokColon, TokTypeName, TokLBracket, TokIdent, TokIdent,
		TokRBracket, TokIdent, TokDefine, TokNumber, TokString, TokColor,
		TokAt, TokAssign, TokDot, TokNumber,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d = %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[9].Number != -1.5 {
		t.Fatalf("number value = %v", toks[9].Number)
	}
	if toks[10].Str != "hi" {
		t.Fatalf("string value = %q", toks[10].Str)
	}
	if toks[11].Color.String() != "#00ff00" {
		t.Fatalf("color value = %s", toks[11].Color)
	}
}

func TestTokenizeColumns(t *testing.T) {
	toks, err := tokenizeLine("fill-color := 2", 4, 2, "test")
	if err != nil {
		t.Fatalf("tokenizeLine: %v", err)
	}
	if toks[0].Line != 4 || toks[0].Col != 2 {
		t.Fatalf("first token at %d:%d", toks[0].Line, toks[0].Col)
	}
	if toks[1].Col != 2+11 {
		t.Fatalf("operator column = %d", toks[1].Col)
	}
}

func TestTokenizeCommentsAndColors(t *testing.T) {
	if toks := lex(t, "# just a comment"); len(toks) != 0 {
		t.Fatalf("comment-only line must yield no tokens: %+v", toks)
	}
	toks := lex(t, "x := Screen # trailing")
	if len(toks) != 3 {
		t.Fatalf("comment must truncate the line: %+v", toks)
	}
	if toks := lex(t, "#"); len(toks) != 0 {
		t.Fatalf("bare '#' at end of line is an empty comment: %+v", toks)
	}

	toks = lex(t, "#abc #a1B2c3")
	if len(toks) != 2 || toks[0].Kind != TokColor || toks[1].Kind != TokColor {
		t.Fatalf("color literals: %+v", toks)
	}
	// Four hex digits fit neither color form and '#' is not a comment
	// without the space.
	err := lexErr(t, "#abcd")
	if err.Column != 0 {
		t.Fatalf("error column = %d", err.Column)
	}
	lexErr(t, "#nothex")
}

func TestTokenizeStrings(t *testing.T) {
	toks := lex(t, `'a\'b\\c\nd\te\rf'`)
	if toks[0].Str != "a'b\\c\nd\te\rf" {
		t.Fatalf("escapes decoded to %q", toks[0].Str)
	}
	lexErr(t, "'unterminated")
	lexErr(t, `'bad \q escape'`)
	lexErr(t, `'trailing \`)
}

func TestTokenizeNumbers(t *testing.T) {
	toks := lex(t, "0 -0 12 -3.25 0.5")
	values := []float64{0, 0, 12, -3.25, 0.5}
	for i, v := range values {
		if toks[i].Kind != TokNumber || toks[i].Number != v {
			t.Fatalf("token %d = %+v, want %v", i, toks[i], v)
		}
	}
	lexErr(t, "- 1")
}

func TestTokenizeIdentifiers(t *testing.T) {
	toks := lex(t, "box2 fade-in-2 Screen R2d2")
	if toks[0].Kind != TokIdent || toks[1].Kind != TokIdent {
		t.Fatalf("identifiers: %+v", toks)
	}
	if toks[2].Kind != TokTypeName || toks[3].Kind != TokTypeName {
		t.Fatalf("type names: %+v", toks)
	}
}

func TestTokenizeRejectsUnknownCharacters(t *testing.T) {
	for _, text := range []string{"a & b", "«box»", "a, b", "x; y"} {
		lexErr(t, text)
	}
	err := lexErr(t, "box & thing")
	if err.Column != 4 {
		t.Fatalf("error column = %d, want 4", err.Column)
	}
}
