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

// Package query implements the word-delimited query protocol used by the
// aws-query and ec2 service families.
//
// A request object is flattened into "Action=<op>&Version=<version>&..."
// parameters by walking its schema fields. POST requests carry the
// parameters as a form body.
package query

import (
	"fmt"

	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/multierr"
)

// MarshalFunc appends val, found at path, to the request being built.
type MarshalFunc func(mc *MarshalContext, path string, val interface{}, f *schema.Field) error

// Registry maps field kinds to marshal functions. A Registry is immutable
// and safe for concurrent use.
type Registry struct {
	dialect     Dialect
	marshallers map[schema.Kind]MarshalFunc
}

// NewRegistry builds a Registry. Every kind in schema.Kinds must have a
// marshal function.
func NewRegistry(d Dialect, marshallers map[schema.Kind]MarshalFunc) (*Registry, error) {
	r := &Registry{
		dialect:     d,
		marshallers: make(map[schema.Kind]MarshalFunc, len(marshallers)),
	}
	for k, fn := range marshallers {
		r.marshallers[k] = fn
	}
	var err error
	for _, k := range schema.Kinds {
		if r.marshallers[k] == nil {
			err = multierr.Append(err, fmt.Errorf("no marshaller registered for kind %v", k))
		}
	}
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInternal, err, "invalid %v marshaller registry", d)
	}
	return r, nil
}

// MustRegistry is NewRegistry but panics on error.
func MustRegistry(d Dialect, marshallers map[schema.Kind]MarshalFunc) *Registry {
	r, err := NewRegistry(d, marshallers)
	if err != nil {
		panic(err)
	}
	return r
}

// With returns a copy of r using fn for kind.
func (r *Registry) With(kind schema.Kind, fn MarshalFunc) (*Registry, error) {
	m := make(map[schema.Kind]MarshalFunc, len(r.marshallers))
	for k, v := range r.marshallers {
		m[k] = v
	}
	m[kind] = fn
	return NewRegistry(r.dialect, m)
}

// Dialect returns the dialect the registry was built for.
func (r *Registry) Dialect() Dialect { return r.dialect }

// Lookup returns the marshal function for a value of the given kind. nil
// values always use the KindNull marshaller.
func (r *Registry) Lookup(kind schema.Kind, val interface{}) MarshalFunc {
	if schema.IsNil(val) {
		return r.marshallers[schema.KindNull]
	}
	return r.marshallers[kind]
}

func commonMarshallers() map[schema.Kind]MarshalFunc {
	return map[schema.Kind]MarshalFunc{
		schema.KindNull:      marshalNull,
		schema.KindString:    marshalString,
		schema.KindInteger:   marshalInteger,
		schema.KindLong:      marshalInteger,
		schema.KindFloat:     marshalFloat(32),
		schema.KindDouble:    marshalFloat(64),
		schema.KindBoolean:   marshalBoolean,
		schema.KindTimestamp: marshalTimestamp,
		schema.KindBinary:    marshalBinary,
		schema.KindMap:       marshalMap,
		schema.KindStruct:    marshalStruct,
	}
}

var (
	_awsQueryRegistry = newDialectRegistry(AWSQuery, marshalAWSQueryList)
	_ec2Registry      = newDialectRegistry(EC2, marshalEC2List)
)

func newDialectRegistry(d Dialect, list MarshalFunc) *Registry {
	m := commonMarshallers()
	m[schema.KindList] = list
	return MustRegistry(d, m)
}

// RegistryFor returns the shared registry of a dialect.
func RegistryFor(d Dialect) *Registry {
	if d == EC2 {
		return _ec2Registry
	}
	return _awsQueryRegistry
}

// MarshalContext is the state of one marshalling pass. It is owned by that
// pass and is not safe for concurrent use.
type MarshalContext struct {
	registry *Registry
	builder  *transport.RequestBuilder
}

// PutParam sets a query parameter on the request being built.
func (mc *MarshalContext) PutParam(k, v string) {
	mc.builder.PutQuery(k, v)
}

// Dialect returns the dialect being marshalled.
func (mc *MarshalContext) Dialect() Dialect { return mc.registry.dialect }

// Marshal dispatches val through the registry.
func (mc *MarshalContext) Marshal(path string, val interface{}, f *schema.Field) error {
	fn := mc.registry.Lookup(f.Kind, val)
	if fn == nil {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInternal, "no marshaller for kind %v at %q", f.Kind, path)
	}
	return fn(mc, path, val, f)
}

// MarshalObject marshals every field of obj below path. An empty path
// marshals obj at the root.
func (mc *MarshalContext) MarshalObject(path string, obj schema.Object) error {
	fields := obj.SchemaFields()
	for i := range fields {
		f := &fields[i]
		if err := mc.Marshal(mc.resolvePath(path, f), f.ValueOrDefault(obj), f); err != nil {
			return err
		}
	}
	return nil
}

func (mc *MarshalContext) resolvePath(path string, f *schema.Field) string {
	name := mc.registry.dialect.locationName(f)
	if path == "" {
		return name
	}
	return path + "." + name
}
