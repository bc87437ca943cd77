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

// Package handler drives one operation from typed request to typed result.
//
// An execution runs the request-side interceptor hooks, marshals the
// request, then transmits it once per attempt. Each attempt is signed just
// before transmission. The response-side hooks run on whichever goroutine
// the transport delivers the response on. The caller gets a Future that
// resolves exactly once.
package handler

import (
	"context"
	"io"

	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// AsyncHandler executes operations over an AsyncOutbound. It holds no
// per-call state and is safe for concurrent use.
type AsyncHandler struct {
	outbound transport.AsyncOutbound
	opts     *options
}

// NewAsyncHandler builds an AsyncHandler. It fails if an interceptor
// implements no hook.
func NewAsyncHandler(out transport.AsyncOutbound, opts ...Option) (*AsyncHandler, error) {
	if out == nil {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "async handler needs an outbound")
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &AsyncHandler{outbound: out, opts: o}, nil
}

// Execute runs a buffered execution: the whole response body is read
// before it is decoded.
func Execute[Req, Resp any](ctx context.Context, h *AsyncHandler, p ExecutionParams[Req, Resp]) *Future[Resp] {
	future := NewFuture[Resp]()

	combined := p.CombinedHandler
	if combined == nil {
		if p.ResponseHandler == nil || p.ErrorHandler == nil {
			future.Fail(cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
				"%s needs a combined handler or both a response and an error handler", p.OperationName))
			return future
		}
		combined = Combine(p.ResponseHandler, p.ErrorHandler)
	}

	e, ok := start(ctx, h, p, future)
	if !ok {
		return future
	}
	e.decode = func(res *transport.Response) (interface{}, error) {
		body, err := readBody(res)
		if err != nil {
			return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeTransport, err, "reading %s response", p.OperationName)
		}
		return combined.Handle(res, body)
	}
	e.deliver = func(_ *transport.Response, resp interface{}) {
		v, ok := asType[Resp](resp)
		if !ok {
			e.fail(replacedError(p.OperationName, "response", resp))
			return
		}
		e.complete(v)
	}
	e.transmit(1)
	return future
}

// ExecuteStreaming runs a streaming execution: the response body is handed
// to t instead of being read. t is prepared once per attempt.
func ExecuteStreaming[Req, Resp, R any](ctx context.Context, h *AsyncHandler, p ExecutionParams[Req, Resp], t ResponseTransformer[Resp, R]) *Future[R] {
	future := NewFuture[R]()
	switch {
	case p.CombinedHandler != nil:
		future.Fail(cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"%s: a combined response handler cannot be used with a streaming response", p.OperationName))
		return future
	case p.ResponseHandler == nil || p.ErrorHandler == nil:
		future.Fail(cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"%s needs a response and an error handler", p.OperationName))
		return future
	case t == nil:
		future.Fail(cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"%s needs a response transformer", p.OperationName))
		return future
	}

	e, ok := start(ctx, h, p, future)
	if !ok {
		return future
	}
	idem := NewIdempotentResponseHandler(t, func() int {
		return ExecutionAttempt.GetOrDefault(e.attrs, 0)
	})

	e.beforeAttempt = func(int) { idem.Prepare() }
	e.forward = idem.OnError
	e.decode = func(res *transport.Response) (interface{}, error) {
		if !res.IsSuccess() {
			body, err := readBody(res)
			if err != nil {
				return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeTransport, err, "reading %s error response", p.OperationName)
			}
			return nil, p.ErrorHandler.HandleError(res, body)
		}
		resp, err := p.ResponseHandler.HandleResponse(res, nil)
		if err != nil {
			closeBody(res)
			return nil, err
		}
		return resp, nil
	}
	e.deliver = func(res *transport.Response, resp interface{}) {
		v, ok := asType[Resp](resp)
		if !ok {
			closeBody(res)
			e.abort(replacedError(p.OperationName, "response", resp))
			return
		}
		prepared := idem.Prepare()
		idem.OnResponse(v)
		body := res.Body
		if body == nil {
			body = io.NopCloser(eofReader{})
		}
		idem.OnStream(body)
		prepared.OnComplete(func(r R, err error) {
			if err != nil {
				e.fail(err)
				return
			}
			e.complete(r)
		})
	}
	e.transmit(1)
	return future
}

// start builds the execution and runs everything up to transmission. It
// reports false if the future was already failed.
func start[Req, Resp, T any](ctx context.Context, h *AsyncHandler, p ExecutionParams[Req, Resp], future *Future[T]) (*execution, bool) {
	ctx, cancel := context.WithCancel(ctx)
	future.setOnCancel(cancel)
	future.OnComplete(func(T, error) { cancel() })

	e := newExecution(ctx, h.opts, p.OperationName, p.Attributes, p.FullDuplex)
	e.send = h.outbound
	e.resolve = func(v interface{}, err error) {
		if err != nil {
			future.Fail(err)
			return
		}
		out, _ := asType[T](v)
		future.Resolve(out)
	}

	if p.Marshal == nil {
		e.fail(cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "%s has no marshaller", p.OperationName))
		return nil, false
	}
	marshal := func(v interface{}) (*transport.Request, error) {
		in, ok := asType[Req](v)
		if !ok {
			return nil, replacedError(p.OperationName, "request", v)
		}
		return p.Marshal(in)
	}
	if err := e.build(p.Input, marshal); err != nil {
		e.fail(err)
		return nil, false
	}
	return e, true
}

// asType converts v to T. A nil v converts to the zero T.
func asType[T any](v interface{}) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	out, ok := v.(T)
	return out, ok
}

func replacedError(op, what string, v interface{}) error {
	return cloudcallerrors.Newf(cloudcallerrors.CodeInternal, "%s %s was replaced with a value of type %T", op, what, v)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
