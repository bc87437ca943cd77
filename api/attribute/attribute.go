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

// Package attribute provides the typed attribute bag carried through a
// single execution.
//
// Keys are process-wide values created once with NewKey and carry the type of
// the value they store:
//
//	var Attempt = attribute.NewKey[int]("ExecutionAttempt")
//
//	bag := attribute.NewBag()
//	Attempt.Put(bag, 1)
//	n, ok := Attempt.Get(bag)
//
// A Bag is owned by one execution and is not safe for concurrent use.
package attribute

import (
	"fmt"
	"reflect"
	"sync"
)

var _registry = struct {
	sync.Mutex
	byName map[string]keyInfo
}{byName: make(map[string]keyInfo)}

type keyInfo struct {
	id  *keyID
	typ reflect.Type
}

// keyID is the identity shared by every Key created with the same name.
type keyID struct {
	name string
}

// Key identifies a value of type T in a Bag.
type Key[T any] struct {
	id *keyID
}

// NewKey returns the key registered under name, registering it if needed.
//
// NewKey panics if name is already registered with a different value type.
// Keys are expected to be package-level variables, so this surfaces at
// program start rather than during a call.
func NewKey[T any](name string) *Key[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	_registry.Lock()
	defer _registry.Unlock()

	if info, ok := _registry.byName[name]; ok {
		if info.typ != typ {
			panic(fmt.Sprintf(
				"attribute %q is already registered with type %v, cannot register it with type %v",
				name, info.typ, typ))
		}
		return &Key[T]{id: info.id}
	}

	id := &keyID{name: name}
	_registry.byName[name] = keyInfo{id: id, typ: typ}
	return &Key[T]{id: id}
}

// Name returns the name the key was registered with.
func (k *Key[T]) Name() string { return k.id.name }

// String returns the name of the key.
func (k *Key[T]) String() string { return k.id.name }

// Get returns the value stored under this key and whether it was present.
func (k *Key[T]) Get(b *Bag) (T, bool) {
	var zero T
	if b == nil {
		return zero, false
	}
	v, ok := b.values[k.id]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// GetOrDefault returns the stored value or def if the key is absent.
func (k *Key[T]) GetOrDefault(b *Bag, def T) T {
	if v, ok := k.Get(b); ok {
		return v
	}
	return def
}

// Put stores v under this key, replacing any previous value.
func (k *Key[T]) Put(b *Bag, v T) {
	b.put(k.id, v)
}

// PutIfAbsent stores v only if the key has no value yet.
func (k *Key[T]) PutIfAbsent(b *Bag, v T) {
	if _, ok := b.values[k.id]; !ok {
		b.put(k.id, v)
	}
}

// Delete removes the value stored under this key.
func (k *Key[T]) Delete(b *Bag) {
	if _, ok := b.values[k.id]; !ok {
		return
	}
	delete(b.values, k.id)
}

// Bag is a typed, keyed store of cross-cutting values for one execution.
//
// The zero value is not usable; use NewBag.
type Bag struct {
	values map[*keyID]interface{}
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{values: make(map[*keyID]interface{})}
}

// Len returns the number of attributes in the bag.
func (b *Bag) Len() int { return len(b.values) }

// Clone returns a Bag with the same attributes. Writes to either Bag after
// the call are not visible in the other. Clone only reads b, so concurrent
// Clones of a Bag nobody writes to are safe.
func (b *Bag) Clone() *Bag {
	values := make(map[*keyID]interface{}, len(b.values)+2)
	for id, v := range b.values {
		values[id] = v
	}
	return &Bag{values: values}
}

// Merge copies every attribute of other into b, replacing values present in
// both.
func (b *Bag) Merge(other *Bag) {
	if other == nil || len(other.values) == 0 {
		return
	}
	for id, v := range other.values {
		b.values[id] = v
	}
}

// SetNamed stores v under the key registered as name.
//
// It fails if no key is registered with that name or if v does not have the
// key's declared type.
func (b *Bag) SetNamed(name string, v interface{}) error {
	_registry.Lock()
	info, ok := _registry.byName[name]
	_registry.Unlock()

	if !ok {
		return fmt.Errorf("unknown attribute %q", name)
	}
	if v == nil || !reflect.TypeOf(v).AssignableTo(info.typ) {
		return fmt.Errorf("attribute %q requires a value of type %v, got %T", name, info.typ, v)
	}
	b.put(info.id, reflect.ValueOf(v).Convert(info.typ).Interface())
	return nil
}

// Names returns the names of the attributes present in the bag.
func (b *Bag) Names() []string {
	names := make([]string, 0, len(b.values))
	for id := range b.values {
		names = append(names, id.name)
	}
	return names
}

func (b *Bag) put(id *keyID, v interface{}) {
	b.values[id] = v
}
