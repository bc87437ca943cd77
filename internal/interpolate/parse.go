// Copyright (c) 2025 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package interpolate

import (
	"fmt"
	"strings"
)

// Parse parses s. A backslash before "$" produces a literal "$". Variable
// names are letters, digits and underscores, optionally joined by single
// dashes; everything after the first ":" is the default.
func Parse(s string) (String, error) {
	var (
		out String
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, literal(lit.String()))
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '$':
			lit.WriteByte('$')
			i++
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated variable reference at offset %d in %q", i, s)
			}
			v, err := parseVariable(s[i+2 : i+2+end])
			if err != nil {
				return nil, err
			}
			flush()
			out = append(out, v)
			i += end + 2
		default:
			lit.WriteByte(s[i])
		}
	}
	flush()
	return out, nil
}

func parseVariable(body string) (variable, error) {
	v := variable{Name: body}
	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		v = variable{Name: body[:idx], Default: body[idx+1:], HasDefault: true}
	}
	if !validName(v.Name) {
		return variable{}, fmt.Errorf("invalid variable name %q", v.Name)
	}
	return v, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-':
			// Dashes only join two word characters.
			if i == 0 || i == len(name)-1 || name[i-1] == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}
