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

// Package config decodes loosely typed configuration into structs.
package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/uber-go/mapdecode"
	"go.uber.org/cloudcall/internal/interpolate"
)

const (
	_tagName           = "config"
	_interpolateOption = "interpolate"
)

// DecodeInto decodes src into dst, reading field names from `config`
// tags.
func DecodeInto(dst interface{}, src interface{}, opts ...mapdecode.Option) error {
	opts = append(opts, mapdecode.TagName(_tagName))
	return mapdecode.Decode(dst, src, opts...)
}

// InterpolateWith renders ${VAR} references in string values decoded into
// fields tagged with the "interpolate" option, e.g.
//
//	Secret string `config:"secret,interpolate"`
//
// Lists and maps are not interpolated.
func InterpolateWith(resolver interpolate.VariableResolver) mapdecode.Option {
	return mapdecode.FieldHook(func(dest reflect.StructField, srcData reflect.Value) (reflect.Value, error) {
		if !hasOption(dest.Tag.Get(_tagName), _interpolateOption) {
			return srcData, nil
		}

		// Non-string sources, e.g. an integer for an integer field, are
		// decoded as they are.
		v, ok := srcData.Interface().(string)
		if !ok {
			return srcData, nil
		}

		s, err := interpolate.Parse(v)
		if err != nil {
			return srcData, fmt.Errorf("failed to parse %q for interpolation: %v", v, err)
		}
		out, err := s.Render(resolver)
		if err != nil {
			return srcData, fmt.Errorf("failed to render %q: %v", v, err)
		}
		return reflect.ValueOf(out), nil
	})
}

func hasOption(tag, option string) bool {
	parts := strings.Split(tag, ",")
	for _, o := range parts[1:] {
		if o == option {
			return true
		}
	}
	return false
}

// Map is a configuration section whose shape is only known to its
// consumer.
type Map map[string]interface{}

// Names returns the keys of m, sorted.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode decodes m into dst.
func (m Map) Decode(dst interface{}, opts ...mapdecode.Option) error {
	return DecodeInto(dst, map[string]interface{}(m), opts...)
}
