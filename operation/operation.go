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

// Package operation defines the three-step contract of a high-level
// operation: generate a low-level request, make the call, and transform
// the response into a result.
//
// Execute strictly sequences the steps. Caching, retries and concurrency
// belong to the layers below.
package operation

import "context"

// Context identifies the target of an operation.
type Context struct {
	TableName string

	// IndexName names a secondary index. It is empty for the primary
	// index.
	IndexName string
}

// IsPrimary reports whether the operation targets the primary index.
func (c Context) IsPrimary() bool { return c.IndexName == "" }

// Call performs one low-level call.
type Call[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Operation is implemented by every high-level operation.
//
// S is the schema of the target, E the optional extension modifying
// requests and results, and C the low-level client. A nil extension
// leaves requests and results unchanged.
type Operation[S, E, C, Req, Resp, Result any] interface {
	GenerateRequest(schema S, octx Context, ext E) (Req, error)
	ServiceCall(client C) Call[Req, Resp]
	TransformResponse(resp Resp, schema S, octx Context, ext E) (Result, error)
}

// Execute generates the request, calls client with it and transforms the
// response. The first error stops the sequence.
func Execute[S, E, C, Req, Resp, Result any](
	ctx context.Context,
	op Operation[S, E, C, Req, Resp, Result],
	schema S,
	octx Context,
	ext E,
	client C,
) (Result, error) {
	var zero Result
	req, err := op.GenerateRequest(schema, octx, ext)
	if err != nil {
		return zero, err
	}
	resp, err := op.ServiceCall(client)(ctx, req)
	if err != nil {
		return zero, err
	}
	return op.TransformResponse(resp, schema, octx, ext)
}
