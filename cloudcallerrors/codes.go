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

package cloudcallerrors

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CodeOK means no error.
	CodeOK Code = 0

	// CodeCancelled means the execution was cancelled by the caller before it
	// produced a result.
	CodeCancelled Code = 1

	// CodeUnknown means the error carried no classification.
	CodeUnknown Code = 2

	// CodeInvalidArgument means a request could not be marshalled because a
	// field value did not have the shape its declared kind requires, or the
	// execution parameters were malformed.
	CodeInvalidArgument Code = 3

	// CodeClient means the client is misconfigured for this call, for example
	// a region that cannot be resolved to an endpoint.
	CodeClient Code = 4

	// CodeUnimplemented means the operation is not supported against the
	// requested target.
	CodeUnimplemented Code = 5

	// CodeTransport means the transport failed after transmission began.
	CodeTransport Code = 6

	// CodeService means the service answered with an error document.
	CodeService Code = 7

	// CodeInternal means an invariant of the engine itself was broken.
	CodeInternal Code = 8
)

var (
	_codeToString = map[Code]string{
		CodeOK:              "ok",
		CodeCancelled:       "cancelled",
		CodeUnknown:         "unknown",
		CodeInvalidArgument: "invalid-argument",
		CodeClient:          "client",
		CodeUnimplemented:   "unimplemented",
		CodeTransport:       "transport",
		CodeService:         "service",
		CodeInternal:        "internal",
	}
	_stringToCode = make(map[string]Code, len(_codeToString))
)

func init() {
	for c, s := range _codeToString {
		_stringToCode[s] = c
	}
}

// Code classifies an execution failure.
type Code int

// String returns the lower-case, dash-separated name of the code.
func (c Code) String() string {
	if s, ok := _codeToString[c]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	if s, ok := _codeToString[c]; ok {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("unknown code: %d", int(c))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	i, ok := _stringToCode[strings.ToLower(string(text))]
	if !ok {
		return fmt.Errorf("unknown code string: %s", string(text))
	}
	*c = i
	return nil
}

// Retryable reports whether failures with this code may succeed on a fresh
// attempt.
func (c Code) Retryable() bool {
	switch c {
	case CodeTransport, CodeUnknown:
		return true
	default:
		return false
	}
}
