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

package handler

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/zap"
)

// execution is the state of one in-flight call. It is owned by that call;
// attempts run one after another, never concurrently.
type execution struct {
	opts  *options
	ctx   context.Context
	send  transport.AsyncOutbound
	op    string
	attrs *attribute.Bag
	ic    interceptor.Context

	// req is the finalized, unsigned wire request.
	req     *transport.Request
	attempt int

	// beforeAttempt runs after the attempt number is updated and before
	// the attempt is transmitted.
	beforeAttempt func(attempt int)
	// decode turns a wire response into the unmarshalled response.
	decode func(res *transport.Response) (interface{}, error)
	// deliver completes the execution with the final response by calling
	// complete or fail, possibly later.
	deliver func(res *transport.Response, resp interface{})
	// forward reports an attempt failure to the response handler.
	forward func(err error) error
	// resolve settles the completion handle.
	resolve func(v interface{}, err error)
}

func newExecution(ctx context.Context, opts *options, op string, seed *attribute.Bag, fullDuplex bool) *execution {
	attrs := attribute.NewBag()
	if seed != nil {
		attrs = seed.Clone()
	}
	OperationName.Put(attrs, op)
	IsFullDuplex.Put(attrs, fullDuplex)
	return &execution{opts: opts, ctx: ctx, op: op, attrs: attrs}
}

// build runs the request-side hooks and marshals the request. Nothing is
// transmitted if it fails.
func (e *execution) build(input interface{}, marshal func(interface{}) (*transport.Request, error)) error {
	chain := e.opts.chain
	e.ic.Request = input

	chain.BeforeExecution(e.ctx, &e.ic, e.attrs)
	if err := chain.ModifyRequest(e.ctx, &e.ic, e.attrs); err != nil {
		return err
	}
	chain.BeforeMarshalling(e.ctx, &e.ic, e.attrs)

	req, err := marshal(e.ic.Request)
	if err != nil {
		if !cloudcallerrors.IsStatus(err) {
			err = cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "marshalling %s request", e.op)
		}
		return err
	}
	e.ic.HTTPRequest = req

	chain.AfterMarshalling(e.ctx, &e.ic, e.attrs)
	if err := chain.ModifyHTTPRequest(e.ctx, &e.ic, e.attrs); err != nil {
		return err
	}
	if err := chain.ModifyHTTPContent(e.ctx, &e.ic, e.attrs); err != nil {
		return err
	}
	if e.ic.RequestBody != nil {
		e.ic.HTTPRequest = e.ic.HTTPRequest.ToBuilder().Content(e.ic.RequestBody).Build()
	}
	if err := transport.ValidateRequest(e.ic.HTTPRequest); err != nil {
		return err
	}
	e.req = e.ic.HTTPRequest
	return nil
}

func (e *execution) transmit(attempt int) {
	if err := e.ctx.Err(); err != nil {
		e.fail(cloudcallerrors.Wrap(cloudcallerrors.CodeCancelled, err, "%s cancelled", e.op))
		return
	}
	e.attempt = attempt
	ExecutionAttempt.Put(e.attrs, attempt)
	if e.beforeAttempt != nil {
		e.beforeAttempt(attempt)
	}

	req := e.req
	if e.opts.signer != nil {
		params, err := auth.ParamsFromAttributes(e.attrs, e.opts.clock)
		if err != nil {
			e.abort(err)
			return
		}
		if req, err = e.opts.signer.Sign(e.ctx, req, params); err != nil {
			e.abort(err)
			return
		}
	}
	e.ic.HTTPRequest = req
	e.ic.HTTPResponse = nil
	e.ic.Response = nil
	e.opts.chain.BeforeTransmission(e.ctx, &e.ic, e.attrs)

	e.send.CallAsync(e.ctx, req, &attemptHandler{e: e, attempt: attempt})
}

func (e *execution) onResponse(res *transport.Response) {
	chain := e.opts.chain
	e.ic.HTTPResponse = res
	chain.AfterTransmission(e.ctx, &e.ic, e.attrs)
	if err := chain.ModifyHTTPResponse(e.ctx, &e.ic, e.attrs); err != nil {
		closeBody(res)
		e.abort(err)
		return
	}
	res = e.ic.HTTPResponse

	resp, err := e.decode(res)
	if err != nil {
		e.attemptFailed(err)
		return
	}
	e.ic.Response = resp
	chain.AfterUnmarshalling(e.ctx, &e.ic, e.attrs)
	if err := chain.ModifyResponse(e.ctx, &e.ic, e.attrs); err != nil {
		closeBody(res)
		e.abort(err)
		return
	}
	e.deliver(res, e.ic.Response)
}

func (e *execution) onTransportError(err error) {
	if e.ctx.Err() != nil {
		err = cloudcallerrors.Wrap(cloudcallerrors.CodeCancelled, err, "%s cancelled", e.op)
	} else {
		err = cloudcallerrors.Wrap(cloudcallerrors.CodeTransport, err, "executing %s", e.op)
	}
	e.attemptFailed(err)
}

func (e *execution) attemptFailed(err error) {
	e.forwardFailure(err)

	if e.ctx.Err() == nil {
		if delay, ok := e.opts.retry.Retry(e.attempt, err); ok {
			next := e.attempt + 1
			e.opts.logger.Debug("retrying failed attempt",
				zap.String("operation", e.op),
				zap.Int("attempt", e.attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			e.opts.clock.AfterFunc(delay, func() { e.transmit(next) })
			return
		}
	}
	e.fail(err)
}

// forwardFailure reports err to the response handler. A failure while doing
// so is logged and never replaces err.
func (e *execution) forwardFailure(err error) {
	if e.forward == nil {
		return
	}
	secondary := func() (serr error) {
		defer func() {
			if r := recover(); r != nil {
				serr = fmt.Errorf("panic: %v", r)
			}
		}()
		return e.forward(err)
	}()
	if secondary != nil {
		e.opts.logger.Warn("response handler failed while reporting an execution failure",
			zap.String("operation", e.op),
			zap.Int("attempt", e.attempt),
			zap.NamedError("cause", err),
			zap.Error(secondary))
	}
}

func (e *execution) complete(v interface{}) {
	e.opts.chain.AfterExecution(e.ctx, &e.ic, e.attrs)
	e.resolve(v, nil)
}

// abort ends the execution after an attempt was started without retrying
// it. The response handler still hears about err so it can release what it
// prepared for the attempt.
func (e *execution) abort(err error) {
	e.forwardFailure(err)
	e.fail(err)
}

func (e *execution) fail(err error) {
	e.opts.chain.OnExecutionFailure(e.ctx, &e.ic, err, e.attrs)
	e.resolve(nil, err)
}

// attemptHandler receives the outcome of one attempt. Only the first
// outcome counts.
type attemptHandler struct {
	e         *execution
	attempt   int
	delivered atomic.Bool
}

var _ transport.ResponseHandler = (*attemptHandler)(nil)

func (h *attemptHandler) OnResponse(res *transport.Response) {
	if !h.delivered.CompareAndSwap(false, true) {
		h.e.opts.logger.Warn("dropping duplicate response", zap.String("operation", h.e.op), zap.Int("attempt", h.attempt))
		closeBody(res)
		return
	}
	h.e.onResponse(res)
}

func (h *attemptHandler) OnError(err error) {
	if !h.delivered.CompareAndSwap(false, true) {
		h.e.opts.logger.Warn("dropping error after outcome", zap.String("operation", h.e.op),
			zap.Int("attempt", h.attempt), zap.Error(err))
		return
	}
	h.e.onTransportError(err)
}

func readBody(res *transport.Response) ([]byte, error) {
	if res.Body == nil {
		return nil, nil
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

func closeBody(res *transport.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}
