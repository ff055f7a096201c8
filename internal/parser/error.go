/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package parser

import (
	"fmt"
	"strings"
)

// contextPadding is the number of source lines rendered on each side of the
// offending line.
const contextPadding = 3

// Error is a positioned parse failure. Line and Column are zero-based;
// Source is the optional label given at the parse entry point (a file path
// or document name) and appears only in messages.
type Error struct {
	Source  string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line+1, e.Column+1, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line+1, e.Column+1, e.Message)
}

// Render formats the error with source context: the surrounding lines, a
// ruler pointing at the offending column, and the problem message.
func (e *Error) Render(source string) string {
	lines := strings.Split(source, "\n")
	first := e.Line - contextPadding
	if first < 0 {
		first = 0
	}
	last := e.Line + contextPadding
	if last > len(lines)-1 {
		last = len(lines) - 1
	}
	gutter := len(fmt.Sprintf("%d", last+1))

	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\n")
	for n := first; n <= last; n++ {
		line := strings.TrimSuffix(lines[n], "\r")
		fmt.Fprintf(&b, " %*d | %s\n", gutter, n+1, expandTabs(line))
		if n == e.Line {
			fmt.Fprintf(&b, " %s | %s^\n", strings.Repeat(" ", gutter), ruler(line, e.Column))
		}
	}
	return b.String()
}

// ruler builds the spacing that places the caret under the given column,
// accounting for tab expansion in the printed line.
func ruler(line string, column int) string {
	width := 0
	for i := 0; i < column && i < len(line); i++ {
		if line[i] == '\t' {
			width += tabWidth
		} else {
			width++
		}
	}
	if column > len(line) {
		width += column - len(line)
	}
	return strings.Repeat(" ", width)
}

const tabWidth = 4

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
}

func errAt(source string, line, column int, format string, args ...any) *Error {
	return &Error{Source: source, Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}
