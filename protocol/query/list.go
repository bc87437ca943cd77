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

package query

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"go.uber.org/cloudcall/api/schema"
)

const (
	_defaultMemberName = "member"
	_mapEntryName      = "entry"
	_defaultKeyName    = "key"
	_defaultValueName  = "value"
)

// marshalAWSQueryList renders lists as Path.member.N, or Path.N when
// flattened. An empty list is sent as "Path=" so the service can tell it
// apart from an absent one.
func marshalAWSQueryList(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv, err := listValue(path, val, f)
	if err != nil {
		return err
	}
	if rv.Len() == 0 {
		mc.PutParam(path, "")
		return nil
	}
	prefix := path
	if !f.Flattened {
		name := _defaultMemberName
		if f.Member.LocationName != "" {
			name = f.Member.LocationName
		}
		prefix = path + "." + name
	}
	return marshalElements(mc, prefix, rv, f.Member)
}

// marshalEC2List renders lists as Path.N. Empty lists are omitted.
func marshalEC2List(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv, err := listValue(path, val, f)
	if err != nil {
		return err
	}
	return marshalElements(mc, path, rv, f.Member)
}

func marshalElements(mc *MarshalContext, prefix string, rv reflect.Value, member *schema.Field) error {
	for i := 0; i < rv.Len(); i++ {
		p := prefix + "." + strconv.Itoa(i+1)
		if err := mc.Marshal(p, member.Get(rv.Index(i).Interface()), member); err != nil {
			return err
		}
	}
	return nil
}

func listValue(path string, val interface{}, f *schema.Field) (reflect.Value, error) {
	rv := indirect(val)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || f.Member == nil {
		return reflect.Value{}, shapeError(path, val, f)
	}
	return rv, nil
}

// marshalMap renders maps as Path.entry.N.key and Path.entry.N.value
// (Path.N.key when flattened). Entries are ordered by key so output does
// not depend on map iteration order.
func marshalMap(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv := indirect(val)
	if rv.Kind() != reflect.Map || f.Key == nil || f.Value == nil {
		return shapeError(path, val, f)
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	prefix := path
	if !f.Flattened {
		prefix = path + "." + _mapEntryName
	}
	keyName := nameOr(f.Key.LocationName, _defaultKeyName)
	valueName := nameOr(f.Value.LocationName, _defaultValueName)
	for i, k := range keys {
		entry := prefix + "." + strconv.Itoa(i+1)
		if err := mc.Marshal(entry+"."+keyName, f.Key.Get(k.Interface()), f.Key); err != nil {
			return err
		}
		v := rv.MapIndex(k).Interface()
		if err := mc.Marshal(entry+"."+valueName, f.Value.Get(v), f.Value); err != nil {
			return err
		}
	}
	return nil
}

func nameOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
