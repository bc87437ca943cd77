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

package transport

import (
	"context"
	"io"
)

// Response is the wire-level representation of a reply.
type Response struct {
	StatusCode int
	Headers    Headers

	// Body is owned by whoever receives the Response and must be closed.
	Body io.ReadCloser
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UnaryOutbound transmits a request and blocks until the reply arrives.
type UnaryOutbound interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// UnaryOutboundFunc adapts a function into a UnaryOutbound.
type UnaryOutboundFunc func(context.Context, *Request) (*Response, error)

// Call for UnaryOutboundFunc.
func (f UnaryOutboundFunc) Call(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// ResponseHandler receives the outcome of an asynchronous call.
//
// For every CallAsync the outbound invokes exactly one of OnResponse or
// OnError. Cancelling the context passed to CallAsync results in OnError if
// the response has not been delivered yet.
type ResponseHandler interface {
	OnResponse(res *Response)
	OnError(err error)
}

// AsyncOutbound transmits a request without blocking the caller.
type AsyncOutbound interface {
	CallAsync(ctx context.Context, req *Request, h ResponseHandler)
}

// AsyncOutboundFunc adapts a function into an AsyncOutbound.
type AsyncOutboundFunc func(context.Context, *Request, ResponseHandler)

// CallAsync for AsyncOutboundFunc.
func (f AsyncOutboundFunc) CallAsync(ctx context.Context, req *Request, h ResponseHandler) {
	f(ctx, req, h)
}
