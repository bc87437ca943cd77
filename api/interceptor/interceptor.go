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

// Package interceptor defines the hook points an execution passes through.
//
// An interceptor is any value implementing one or more of the hook
// interfaces below; hooks it does not implement are skipped. Hooks fire in
// this order for every execution:
//
//	BeforeExecution
//	ModifyRequest
//	BeforeMarshalling
//	AfterMarshalling
//	ModifyHTTPRequest
//	ModifyHTTPContent
//	BeforeTransmission
//	AfterTransmission
//	ModifyHTTPResponse
//	AfterUnmarshalling
//	ModifyResponse
//	AfterExecution      (success)
//	OnExecutionFailure  (failure)
//
// Interceptors are registered once per client and shared by concurrent
// executions, so they MUST be safe for concurrent use. The Context they
// receive and the attribute bag belong to one execution.
package interceptor

import (
	"context"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/transport"
)

// Interceptor is a value implementing at least one of the hook interfaces
// in this package.
type Interceptor interface{}

// Context is a snapshot of the artifacts of one execution at a hook point.
// Fields not yet produced at that point are nil.
type Context struct {
	// Request is the typed request.
	Request interface{}

	// HTTPRequest is the marshalled wire request.
	HTTPRequest *transport.Request

	// RequestBody overrides the content of HTTPRequest when set by a
	// ModifyHTTPContent hook.
	RequestBody transport.ContentProvider

	// HTTPResponse is the wire response.
	HTTPResponse *transport.Response

	// Response is the typed result.
	Response interface{}
}

// BeforeExecution observes the typed request before anything else happens.
type BeforeExecution interface {
	BeforeExecution(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// ModifyRequest may replace the typed request. Returning ic.Request leaves
// it unchanged.
type ModifyRequest interface {
	ModifyRequest(ctx context.Context, ic Context, attrs *attribute.Bag) (interface{}, error)
}

// BeforeMarshalling observes the final typed request.
type BeforeMarshalling interface {
	BeforeMarshalling(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// AfterMarshalling observes the freshly marshalled wire request.
type AfterMarshalling interface {
	AfterMarshalling(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// ModifyHTTPRequest may replace the wire request.
type ModifyHTTPRequest interface {
	ModifyHTTPRequest(ctx context.Context, ic Context, attrs *attribute.Bag) (*transport.Request, error)
}

// ModifyHTTPContent may replace the request body. Returning ic.RequestBody
// leaves it unchanged.
type ModifyHTTPContent interface {
	ModifyHTTPContent(ctx context.Context, ic Context, attrs *attribute.Bag) (transport.ContentProvider, error)
}

// BeforeTransmission observes the signed wire request of each attempt.
type BeforeTransmission interface {
	BeforeTransmission(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// AfterTransmission observes the wire response of each attempt.
type AfterTransmission interface {
	AfterTransmission(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// ModifyHTTPResponse may replace the wire response before it is
// unmarshalled.
type ModifyHTTPResponse interface {
	ModifyHTTPResponse(ctx context.Context, ic Context, attrs *attribute.Bag) (*transport.Response, error)
}

// AfterUnmarshalling observes the typed result.
type AfterUnmarshalling interface {
	AfterUnmarshalling(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// ModifyResponse may replace the typed result.
type ModifyResponse interface {
	ModifyResponse(ctx context.Context, ic Context, attrs *attribute.Bag) (interface{}, error)
}

// AfterExecution observes a successful execution.
type AfterExecution interface {
	AfterExecution(ctx context.Context, ic Context, attrs *attribute.Bag)
}

// OnExecutionFailure observes a failed execution.
type OnExecutionFailure interface {
	OnExecutionFailure(ctx context.Context, ic Context, err error, attrs *attribute.Bag)
}

// Implements reports whether i implements at least one hook.
func Implements(i Interceptor) bool {
	switch i.(type) {
	case BeforeExecution, ModifyRequest, BeforeMarshalling, AfterMarshalling,
		ModifyHTTPRequest, ModifyHTTPContent, BeforeTransmission,
		AfterTransmission, ModifyHTTPResponse, AfterUnmarshalling,
		ModifyResponse, AfterExecution, OnExecutionFailure:
		return true
	default:
		return false
	}
}
