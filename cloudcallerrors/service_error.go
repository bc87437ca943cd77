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
	"net/http"
)

var _throttlingCodes = map[string]struct{}{
	"Throttling":                             {},
	"ThrottlingException":                    {},
	"ThrottledException":                     {},
	"RequestThrottledException":              {},
	"TooManyRequestsException":               {},
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"SlowDown":                               {},
}

// ServiceError is an error document returned by a service, either with a
// failure status or embedded in a nominally successful reply.
type ServiceError struct {
	// HTTP status of the reply that carried the error.
	StatusCode int

	// Service-defined error code, e.g. "NoSuchKey".
	ErrorCode string

	// Human readable message from the error document.
	Message string

	// Request id reported by the service, if any.
	RequestID string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("service error %s (status %d)", e.ErrorCode, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += ", request id: " + e.RequestID
	}
	return msg
}

// CloudcallError represents the service error as a Status with CodeService.
func (e *ServiceError) CloudcallError() *Status {
	return &Status{code: CodeService, err: &causeError{cause: e}}
}

// Throttled reports whether the service asked the caller to slow down.
func (e *ServiceError) Throttled() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	_, ok := _throttlingCodes[e.ErrorCode]
	return ok
}

// Retryable reports whether the same request may succeed on a new attempt.
func (e *ServiceError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.Throttled()
}
