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

// Package mapping maps Go values onto items of a key-value table and runs
// the item operations against an ItemStore.
//
// A TableSchema describes how the fields of T convert to attribute values
// and which attributes form the keys of the primary and secondary indexes.
// Operations target an index through operation.Context: GetItem and PutItem
// only work on the primary index, Query works on any index.
package mapping

import (
	"fmt"
	"strconv"
)

// ValueType is the type of an AttributeValue.
type ValueType int

const (
	// TypeNull is the type of the zero AttributeValue.
	TypeNull ValueType = iota
	TypeString
	TypeNumber
	TypeBool
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// AttributeValue is a single stored value. The zero value is null.
type AttributeValue struct {
	typ ValueType
	s   string
	b   bool
}

// StringValue builds a string attribute value.
func StringValue(s string) AttributeValue { return AttributeValue{typ: TypeString, s: s} }

// NumberValue builds a number attribute value from its decimal text.
func NumberValue(n string) AttributeValue { return AttributeValue{typ: TypeNumber, s: n} }

// IntValue builds a number attribute value.
func IntValue(n int64) AttributeValue { return NumberValue(strconv.FormatInt(n, 10)) }

// BoolValue builds a boolean attribute value.
func BoolValue(b bool) AttributeValue { return AttributeValue{typ: TypeBool, b: b} }

// NullValue returns the null attribute value.
func NullValue() AttributeValue { return AttributeValue{} }

// Type returns the type of v.
func (v AttributeValue) Type() ValueType { return v.typ }

// IsNull reports whether v is null.
func (v AttributeValue) IsNull() bool { return v.typ == TypeNull }

// AsString returns the string held by v.
func (v AttributeValue) AsString() (string, bool) { return v.s, v.typ == TypeString }

// AsNumber returns the decimal text of the number held by v.
func (v AttributeValue) AsNumber() (string, bool) { return v.s, v.typ == TypeNumber }

// AsBool returns the boolean held by v.
func (v AttributeValue) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

func (v AttributeValue) String() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.s)
	case TypeNumber:
		return v.s
	case TypeBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// Item is a stored item keyed by attribute name.
type Item map[string]AttributeValue

// Clone returns a copy of the item that shares nothing with it.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// compareValues orders two values of the same type. Numbers compare by
// value, strings and booleans lexically.
func compareValues(a, b AttributeValue) int {
	if a.typ != b.typ {
		return int(a.typ) - int(b.typ)
	}
	switch a.typ {
	case TypeNumber:
		x, errX := strconv.ParseFloat(a.s, 64)
		y, errY := strconv.ParseFloat(b.s, 64)
		if errX == nil && errY == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
		return compareStrings(a.s, b.s)
	case TypeBool:
		return compareStrings(strconv.FormatBool(a.b), strconv.FormatBool(b.b))
	default:
		return compareStrings(a.s, b.s)
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
