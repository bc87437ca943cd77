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
	"encoding/base64"
	"reflect"
	"strconv"
	"time"

	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// TimestampFormat is the wire format of timestamp fields.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

func marshalNull(*MarshalContext, string, interface{}, *schema.Field) error {
	return nil
}

func marshalString(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv := indirect(val)
	if rv.Kind() != reflect.String {
		return shapeError(path, val, f)
	}
	mc.PutParam(path, rv.String())
	return nil
}

func marshalInteger(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv := indirect(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		mc.PutParam(path, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		mc.PutParam(path, strconv.FormatUint(rv.Uint(), 10))
	default:
		return shapeError(path, val, f)
	}
	return nil
}

func marshalFloat(bits int) MarshalFunc {
	return func(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
		rv := indirect(val)
		if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
			return shapeError(path, val, f)
		}
		mc.PutParam(path, strconv.FormatFloat(rv.Float(), 'f', -1, bits))
		return nil
	}
}

func marshalBoolean(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	rv := indirect(val)
	if rv.Kind() != reflect.Bool {
		return shapeError(path, val, f)
	}
	mc.PutParam(path, strconv.FormatBool(rv.Bool()))
	return nil
}

func marshalTimestamp(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	var t time.Time
	switch v := val.(type) {
	case time.Time:
		t = v
	case *time.Time:
		t = *v
	default:
		return shapeError(path, val, f)
	}
	mc.PutParam(path, t.UTC().Format(TimestampFormat))
	return nil
}

func marshalBinary(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	b, ok := val.([]byte)
	if !ok {
		return shapeError(path, val, f)
	}
	mc.PutParam(path, base64.StdEncoding.EncodeToString(b))
	return nil
}

func marshalStruct(mc *MarshalContext, path string, val interface{}, f *schema.Field) error {
	obj, ok := val.(schema.Object)
	if !ok {
		return shapeError(path, val, f)
	}
	return mc.MarshalObject(path, obj)
}

// indirect dereferences pointers. The result is invalid for nil pointers.
func indirect(val interface{}) reflect.Value {
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func shapeError(path string, val interface{}, f *schema.Field) error {
	return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
		"cannot marshal %T at %q as %v", val, path, f.Kind)
}
