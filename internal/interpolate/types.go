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

// Package interpolate renders ${NAME} and ${NAME:default} references in
// configuration strings.
package interpolate

import (
	"fmt"
	"strings"
)

type (
	term interface {
		render(VariableResolver) (string, error)
	}

	literal string

	variable struct {
		Name       string
		Default    string
		HasDefault bool
	}
)

func (l literal) render(VariableResolver) (string, error) { return string(l), nil }

func (v variable) render(resolve VariableResolver) (string, error) {
	if val, ok := resolve(v.Name); ok {
		return val, nil
	}
	if v.HasDefault {
		return v.Default, nil
	}
	return "", fmt.Errorf("variable %q does not have a value or a default", v.Name)
}

// VariableResolver returns the value of a variable and whether it is set.
type VariableResolver func(name string) (value string, ok bool)

// String is a parsed string. Obtain one with Parse.
type String []term

// Render resolves every variable of s. A variable with neither a value nor
// a default is an error.
func (s String) Render(resolve VariableResolver) (string, error) {
	var sb strings.Builder
	for _, t := range s {
		v, err := t.render(resolve)
		if err != nil {
			return "", err
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}
