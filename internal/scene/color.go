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
	"strings"
)

// Color is a 24-bit RGB color.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// ParseColor parses "#RGB" or "#RRGGBB" hex notation, case-insensitive.
// A 3-digit channel c expands to c*17 ("#0f0" is the same as "#00ff00").
func ParseColor(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("color must start with '#': %q", s)
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if !okR || !okG || !okB {
			return Color{}, fmt.Errorf("invalid color literal %q", s)
		}
		return Color{R: r * 17, G: g * 17, B: b * 17}, nil
	case 6:
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			hi, okHi := hexNibble(hex[2*i])
			lo, okLo := hexNibble(hex[2*i+1])
			if !okHi || !okLo {
				return Color{}, fmt.Errorf("invalid color literal %q", s)
			}
			ch[i] = hi<<4 | lo
		}
		return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
	}
	return Color{}, fmt.Errorf("color literal must have 3 or 6 hex digits: %q", s)
}

// String renders the canonical lowercase 6-digit form, e.g. "#00ff00".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
