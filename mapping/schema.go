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

package mapping

import (
	"sort"

	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/multierr"
)

// Attribute binds one field of T to a named attribute.
type Attribute[T any] struct {
	name string
	get  func(T) (AttributeValue, error)
	set  func(*T, AttributeValue) error
}

// NewAttribute builds an Attribute that reads the field with get, writes
// it with set, and converts it with conv.
func NewAttribute[T, V any](name string, conv Converter[V], get func(T) V, set func(*T, V)) Attribute[T] {
	return Attribute[T]{
		name: name,
		get: func(item T) (AttributeValue, error) {
			return conv.ToAttributeValue(get(item))
		},
		set: func(item *T, v AttributeValue) error {
			val, err := conv.FromAttributeValue(v)
			if err != nil {
				return err
			}
			set(item, val)
			return nil
		},
	}
}

// Name is the name of the attribute.
func (a Attribute[T]) Name() string { return a.name }

// Index names the key attributes of an index. SortKey is empty for an
// index without a sort key.
type Index struct {
	PartitionKey string
	SortKey      string
}

// Key identifies items of an index. Sort stays null for an index without
// a sort key.
type Key struct {
	Partition AttributeValue
	Sort      AttributeValue
}

// TableSchema maps values of T to items.
type TableSchema[T any] struct {
	primary   Index
	secondary map[string]Index
	attrs     []Attribute[T]
	byName    map[string]int
}

// SchemaOption customizes a TableSchema.
type SchemaOption func(*schemaOptions)

type schemaOptions struct {
	secondary map[string]Index
}

// WithSecondaryIndex declares a secondary index named name.
func WithSecondaryIndex(name string, idx Index) SchemaOption {
	return func(o *schemaOptions) {
		o.secondary[name] = idx
	}
}

// NewTableSchema builds a schema whose primary index is keyed by primary.
// Every key attribute must be one of attrs.
func NewTableSchema[T any](primary Index, attrs []Attribute[T], opts ...SchemaOption) (*TableSchema[T], error) {
	o := schemaOptions{secondary: make(map[string]Index)}
	for _, opt := range opts {
		opt(&o)
	}

	s := &TableSchema[T]{
		primary:   primary,
		secondary: o.secondary,
		attrs:     attrs,
		byName:    make(map[string]int, len(attrs)),
	}

	var err error
	for i, a := range attrs {
		if a.name == "" {
			err = multierr.Append(err, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"attribute %d has no name", i))
			continue
		}
		if _, dup := s.byName[a.name]; dup {
			err = multierr.Append(err, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"attribute %q is declared twice", a.name))
			continue
		}
		s.byName[a.name] = i
	}

	err = multierr.Append(err, s.checkIndex("primary index", primary))
	for _, name := range s.IndexNames() {
		if name == "" {
			err = multierr.Append(err, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"secondary index needs a name"))
			continue
		}
		err = multierr.Append(err, s.checkIndex("index "+name, s.secondary[name]))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TableSchema[T]) checkIndex(what string, idx Index) error {
	if idx.PartitionKey == "" {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"%s needs a partition key", what)
	}
	var err error
	for _, name := range []string{idx.PartitionKey, idx.SortKey} {
		if name == "" {
			continue
		}
		if _, ok := s.byName[name]; !ok {
			err = multierr.Append(err, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"%s uses undeclared attribute %q", what, name))
		}
	}
	return err
}

// PrimaryIndex returns the keys of the primary index.
func (s *TableSchema[T]) PrimaryIndex() Index { return s.primary }

// IndexNames lists the secondary indexes in sorted order.
func (s *TableSchema[T]) IndexNames() []string {
	names := make([]string, 0, len(s.secondary))
	for name := range s.secondary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Index returns the keys of the named index. The empty name is the
// primary index.
func (s *TableSchema[T]) Index(name string) (Index, error) {
	if name == "" {
		return s.primary, nil
	}
	idx, ok := s.secondary[name]
	if !ok {
		return Index{}, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"unknown index %q", name)
	}
	return idx, nil
}

// AttributeNames lists the attributes in declaration order.
func (s *TableSchema[T]) AttributeNames() []string {
	names := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		names[i] = a.name
	}
	return names
}

// ItemToMap converts v to an item. Null values are left out.
func (s *TableSchema[T]) ItemToMap(v T) (Item, error) {
	item := make(Item, len(s.attrs))
	for _, a := range s.attrs {
		av, err := a.get(v)
		if err != nil {
			return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err,
				"attribute %q", a.name)
		}
		if av.IsNull() {
			continue
		}
		item[a.name] = av
	}
	return item, nil
}

// MapToItem converts an item to a T. Attributes the schema does not
// declare are ignored and missing or null ones keep their zero value.
func (s *TableSchema[T]) MapToItem(item Item) (T, error) {
	var v T
	for _, a := range s.attrs {
		av, ok := item[a.name]
		if !ok || av.IsNull() {
			continue
		}
		if err := a.set(&v, av); err != nil {
			var zero T
			return zero, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err,
				"attribute %q", a.name)
		}
	}
	return v, nil
}

// keyItem builds the key attributes of idx from k.
func keyItem(idx Index, k Key) (Item, error) {
	if k.Partition.IsNull() {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"key is missing partition attribute %q", idx.PartitionKey)
	}
	item := Item{idx.PartitionKey: k.Partition}
	switch {
	case idx.SortKey == "" && !k.Sort.IsNull():
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"index keyed by %q has no sort key", idx.PartitionKey)
	case idx.SortKey != "" && k.Sort.IsNull():
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"key is missing sort attribute %q", idx.SortKey)
	case idx.SortKey != "":
		item[idx.SortKey] = k.Sort
	}
	return item, nil
}
