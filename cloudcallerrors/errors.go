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
	"bytes"
	"errors"
	"fmt"
)

// Newf returns a new Status.
//
// The Code should never be CodeOK, if it is, this will return nil.
func Newf(code Code, format string, args ...interface{}) *Status {
	if code == CodeOK {
		return nil
	}

	var err error
	if len(args) == 0 {
		err = errors.New(format)
	} else {
		err = fmt.Errorf(format, args...)
	}
	return &Status{code: code, err: err}
}

// Wrap returns a Status with the given code whose message is prefixed by the
// formatted text and whose cause is err. errors.Is and errors.As see through
// the returned Status to err.
//
// Wrap returns nil if err is nil.
func Wrap(code Code, err error, format string, args ...interface{}) *Status {
	if err == nil || code == CodeOK {
		return nil
	}
	prefix := format
	if len(args) > 0 {
		prefix = fmt.Sprintf(format, args...)
	}
	return &Status{
		code: code,
		err:  &causeError{prefix: prefix, cause: err},
	}
}

type statusError interface {
	CloudcallError() *Status
}

// FromError returns the Status for the provided error.
//
// If the error:
//   - is nil, return nil
//   - is a 'Status', return the 'Status'
//   - has a 'CloudcallError() *Status' method, returns the 'Status'
//
// Otherwise, return a wrapped error with code 'CodeUnknown'.
func FromError(err error) *Status {
	if err == nil {
		return nil
	}
	if st, ok := fromError(err); ok {
		return st
	}
	return &Status{
		code: CodeUnknown,
		err:  &causeError{cause: err},
	}
}

func fromError(err error) (st *Status, ok bool) {
	if errors.As(err, &st) {
		return st, true
	}
	var serr statusError
	if errors.As(err, &serr) {
		return serr.CloudcallError(), true
	}
	return nil, false
}

// IsStatus returns whether the provided error is a Status, or can represent
// itself as one. This includes wrapped errors.
//
// This is false if the error is nil.
func IsStatus(err error) bool {
	_, ok := fromError(err)
	return ok
}

// ErrorCode returns the Code of the error, CodeOK for nil and CodeUnknown for
// errors that are not statuses.
func ErrorCode(err error) Code {
	return FromError(err).Code()
}

// Status represents an execution failure.
type Status struct {
	code Code
	err  error
}

// Code returns the error code for this Status.
func (s *Status) Code() Code {
	if s == nil {
		return CodeOK
	}
	return s.code
}

// Message returns the error message for this Status.
func (s *Status) Message() string {
	if s == nil || s.err == nil {
		return ""
	}
	return s.err.Error()
}

// Unwrap supports errors.Unwrap.
func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return errors.Unwrap(s.err)
}

// Error implements the error interface.
func (s *Status) Error() string {
	buffer := bytes.NewBuffer(nil)
	_, _ = buffer.WriteString(`code:`)
	_, _ = buffer.WriteString(s.code.String())
	if msg := s.Message(); msg != "" {
		_, _ = buffer.WriteString(` message:`)
		_, _ = buffer.WriteString(msg)
	}
	return buffer.String()
}

type causeError struct {
	prefix string
	cause  error
}

func (e *causeError) Error() string {
	if e.prefix == "" {
		return e.cause.Error()
	}
	return e.prefix + ": " + e.cause.Error()
}

func (e *causeError) Unwrap() error { return e.cause }
