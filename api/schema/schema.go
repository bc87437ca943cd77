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

// Package schema describes the field tables that drive marshalling.
//
// Generated model types implement Object and return their fields in
// declaration order. Field descriptors are built once per type and are never
// modified afterwards.
package schema

import (
	"fmt"
	"reflect"
)

// Kind is the declared wire-encoding category of a field.
type Kind int

const (
	// KindNull is used for absent values regardless of the declared kind.
	KindNull Kind = iota
	KindString
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindTimestamp
	KindBinary
	KindList
	KindMap
	KindStruct
)

// Kinds lists every kind a complete marshaller registry must handle.
var Kinds = []Kind{
	KindNull, KindString, KindInteger, KindLong, KindFloat, KindDouble,
	KindBoolean, KindTimestamp, KindBinary, KindList, KindMap, KindStruct,
}

var _kindNames = map[Kind]string{
	KindNull:      "null",
	KindString:    "string",
	KindInteger:   "integer",
	KindLong:      "long",
	KindFloat:     "float",
	KindDouble:    "double",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
	KindBinary:    "binary",
	KindList:      "list",
	KindMap:       "map",
	KindStruct:    "struct",
}

func (k Kind) String() string {
	if s, ok := _kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Object is a structured value with a field table.
type Object interface {
	SchemaFields() []Field
}

// Field describes one field of an Object.
type Field struct {
	// Name of the field on the wire.
	LocationName string

	// Name used by the EC2 dialect. Defaults to LocationName with its first
	// letter upper-cased.
	EC2LocationName string

	Kind Kind

	// Get reads the field from its Object. It must not modify the object.
	Get func(obj interface{}) interface{}

	// Default supplies a value when Get returns nil. Optional.
	Default func() interface{}

	// Member describes list elements. Required for KindList.
	Member *Field

	// Key and Value describe map entries. Required for KindMap.
	Key, Value *Field

	// Flattened lists and maps omit the "member"/"entry" path segment.
	Flattened bool
}

// ValueOrDefault returns the field's value on obj, falling back to Default
// when the value is nil.
func (f *Field) ValueOrDefault(obj interface{}) interface{} {
	v := f.Get(obj)
	if IsNil(v) && f.Default != nil {
		return f.Default()
	}
	return v
}

// IsNil reports whether v is nil or a typed nil pointer, slice, map or
// interface.
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// Getter adapts a typed accessor into Field.Get.
func Getter[O, V any](get func(O) V) func(interface{}) interface{} {
	return func(obj interface{}) interface{} {
		return get(obj.(O))
	}
}

// Scalar returns a field of the given scalar kind.
func Scalar[O, V any](name string, kind Kind, get func(O) V) Field {
	return Field{LocationName: name, Kind: kind, Get: Getter(get)}
}

// List returns a list field whose elements are described by member.
func List[O, V any](name string, member Field, get func(O) V) Field {
	return Field{LocationName: name, Kind: KindList, Get: Getter(get), Member: &member}
}

// Struct returns a nested-object field.
func Struct[O, V any](name string, get func(O) V) Field {
	return Field{LocationName: name, Kind: KindStruct, Get: Getter(get)}
}

// Member returns an element descriptor for lists. name may be empty to use
// the dialect's default member name.
func Member(name string, kind Kind) Field {
	return Field{LocationName: name, Kind: kind, Get: func(v interface{}) interface{} { return v }}
}

// Validate checks that a field table is well formed: every field has a
// location name and accessor, and list and map fields describe their
// elements.
func Validate(fields []Field) error {
	for i := range fields {
		if err := validateField(&fields[i], true); err != nil {
			return err
		}
	}
	return nil
}

func validateField(f *Field, top bool) error {
	if top && f.LocationName == "" {
		return fmt.Errorf("field of kind %v has no location name", f.Kind)
	}
	if f.Get == nil {
		return fmt.Errorf("field %q has no accessor", f.LocationName)
	}
	if _, ok := _kindNames[f.Kind]; !ok {
		return fmt.Errorf("field %q has unknown kind %v", f.LocationName, f.Kind)
	}
	switch f.Kind {
	case KindList:
		if f.Member == nil {
			return fmt.Errorf("list field %q has no member descriptor", f.LocationName)
		}
		return validateField(f.Member, false)
	case KindMap:
		if f.Key == nil || f.Value == nil {
			return fmt.Errorf("map field %q has no key or value descriptor", f.LocationName)
		}
		if err := validateField(f.Key, false); err != nil {
			return err
		}
		return validateField(f.Value, false)
	}
	return nil
}
