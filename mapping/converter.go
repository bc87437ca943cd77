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
	"strconv"

	"go.uber.org/cloudcall/cloudcallerrors"
)

// Converter converts values of type V to and from attribute values.
type Converter[V any] interface {
	ToAttributeValue(V) (AttributeValue, error)
	FromAttributeValue(AttributeValue) (V, error)
}

func conversionError(v AttributeValue, target string) error {
	return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
		"cannot convert %v attribute value %v to %s", v.Type(), v, target)
}

type boolConverter struct{}

// BoolConverter stores booleans as boolean values. Reading also accepts
// the strings "true" and "false".
func BoolConverter() Converter[bool] { return boolConverter{} }

func (boolConverter) ToAttributeValue(b bool) (AttributeValue, error) {
	return BoolValue(b), nil
}

func (boolConverter) FromAttributeValue(v AttributeValue) (bool, error) {
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	if s, ok := v.AsString(); ok {
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, conversionError(v, "bool")
}

type stringConverter struct{}

// StringConverter stores strings as string values.
func StringConverter() Converter[string] { return stringConverter{} }

func (stringConverter) ToAttributeValue(s string) (AttributeValue, error) {
	return StringValue(s), nil
}

func (stringConverter) FromAttributeValue(v AttributeValue) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	return "", conversionError(v, "string")
}

type intConverter struct{}

// IntConverter stores integers as number values. Reading also accepts
// strings holding a decimal integer.
func IntConverter() Converter[int64] { return intConverter{} }

func (intConverter) ToAttributeValue(n int64) (AttributeValue, error) {
	return IntValue(n), nil
}

func (intConverter) FromAttributeValue(v AttributeValue) (int64, error) {
	s, ok := v.AsNumber()
	if !ok {
		s, ok = v.AsString()
	}
	if ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, conversionError(v, "int64")
}

type periodConverter struct{}

// PeriodConverter stores periods as strings in ISO-8601 form, for example
// "P1Y2M3D".
func PeriodConverter() Converter[Period] { return periodConverter{} }

func (periodConverter) ToAttributeValue(p Period) (AttributeValue, error) {
	return StringValue(p.String()), nil
}

func (periodConverter) FromAttributeValue(v AttributeValue) (Period, error) {
	s, ok := v.AsString()
	if !ok {
		return Period{}, conversionError(v, "period")
	}
	p, err := ParsePeriod(s)
	if err != nil {
		return Period{}, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err,
			"cannot convert %v to period", v)
	}
	return p, nil
}
