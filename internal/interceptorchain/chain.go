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

// Package interceptorchain runs an ordered list of interceptors through the
// hook points of one execution.
package interceptorchain

import (
	"context"
	"fmt"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/multierr"
)

// Chain is an immutable, ordered list of interceptors. Request-side hooks run
// in registration order and response-side hooks in reverse registration
// order, so the first interceptor registered is the outermost one.
//
// A Chain is safe for concurrent use by many executions.
type Chain struct {
	all []interceptor.Interceptor

	beforeExecution    []interceptor.BeforeExecution
	modifyRequest      []interceptor.ModifyRequest
	beforeMarshalling  []interceptor.BeforeMarshalling
	afterMarshalling   []interceptor.AfterMarshalling
	modifyHTTPRequest  []interceptor.ModifyHTTPRequest
	modifyHTTPContent  []interceptor.ModifyHTTPContent
	beforeTransmission []interceptor.BeforeTransmission
	afterTransmission  []interceptor.AfterTransmission
	modifyHTTPResponse []interceptor.ModifyHTTPResponse
	afterUnmarshalling []interceptor.AfterUnmarshalling
	modifyResponse     []interceptor.ModifyResponse
	afterExecution     []interceptor.AfterExecution
	onFailure          []interceptor.OnExecutionFailure
}

// New builds a Chain. nil entries are skipped and nested Chains are
// flattened. An entry implementing no hook is an error.
func New(is ...interceptor.Interceptor) (*Chain, error) {
	c := &Chain{}
	var errs error
	for _, i := range is {
		if i == nil {
			continue
		}
		if nested, ok := i.(*Chain); ok {
			c.all = append(c.all, nested.all...)
			continue
		}
		if !interceptor.Implements(i) {
			errs = multierr.Append(errs, fmt.Errorf("%T does not implement any interceptor hook", i))
			continue
		}
		c.all = append(c.all, i)
	}
	if errs != nil {
		return nil, errs
	}
	c.index()
	return c, nil
}

// MustNew is New but panics on error.
func MustNew(is ...interceptor.Interceptor) *Chain {
	c, err := New(is...)
	if err != nil {
		panic(err)
	}
	return c
}

// Interceptors returns the interceptors in registration order.
func (c *Chain) Interceptors() []interceptor.Interceptor {
	return append([]interceptor.Interceptor(nil), c.all...)
}

// Len returns the number of interceptors.
func (c *Chain) Len() int { return len(c.all) }

func (c *Chain) index() {
	for _, i := range c.all {
		if h, ok := i.(interceptor.BeforeExecution); ok {
			c.beforeExecution = append(c.beforeExecution, h)
		}
		if h, ok := i.(interceptor.ModifyRequest); ok {
			c.modifyRequest = append(c.modifyRequest, h)
		}
		if h, ok := i.(interceptor.BeforeMarshalling); ok {
			c.beforeMarshalling = append(c.beforeMarshalling, h)
		}
		if h, ok := i.(interceptor.AfterMarshalling); ok {
			c.afterMarshalling = append(c.afterMarshalling, h)
		}
		if h, ok := i.(interceptor.ModifyHTTPRequest); ok {
			c.modifyHTTPRequest = append(c.modifyHTTPRequest, h)
		}
		if h, ok := i.(interceptor.ModifyHTTPContent); ok {
			c.modifyHTTPContent = append(c.modifyHTTPContent, h)
		}
		if h, ok := i.(interceptor.BeforeTransmission); ok {
			c.beforeTransmission = append(c.beforeTransmission, h)
		}
		if h, ok := i.(interceptor.AfterTransmission); ok {
			c.afterTransmission = append(c.afterTransmission, h)
		}
		if h, ok := i.(interceptor.ModifyHTTPResponse); ok {
			c.modifyHTTPResponse = append(c.modifyHTTPResponse, h)
		}
		if h, ok := i.(interceptor.AfterUnmarshalling); ok {
			c.afterUnmarshalling = append(c.afterUnmarshalling, h)
		}
		if h, ok := i.(interceptor.ModifyResponse); ok {
			c.modifyResponse = append(c.modifyResponse, h)
		}
		if h, ok := i.(interceptor.AfterExecution); ok {
			c.afterExecution = append(c.afterExecution, h)
		}
		if h, ok := i.(interceptor.OnExecutionFailure); ok {
			c.onFailure = append(c.onFailure, h)
		}
	}
}

// BeforeExecution runs the BeforeExecution hooks.
func (c *Chain) BeforeExecution(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for _, h := range c.beforeExecution {
		h.BeforeExecution(ctx, *ic, attrs)
	}
}

// ModifyRequest runs the ModifyRequest hooks, feeding each replacement to
// the next hook and storing the final one in ic.
func (c *Chain) ModifyRequest(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) error {
	for _, h := range c.modifyRequest {
		req, err := h.ModifyRequest(ctx, *ic, attrs)
		if err != nil {
			return err
		}
		if req == nil {
			return nilArtifact(h, "request")
		}
		ic.Request = req
	}
	return nil
}

// BeforeMarshalling runs the BeforeMarshalling hooks.
func (c *Chain) BeforeMarshalling(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for _, h := range c.beforeMarshalling {
		h.BeforeMarshalling(ctx, *ic, attrs)
	}
}

// AfterMarshalling runs the AfterMarshalling hooks.
func (c *Chain) AfterMarshalling(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for _, h := range c.afterMarshalling {
		h.AfterMarshalling(ctx, *ic, attrs)
	}
}

// ModifyHTTPRequest runs the ModifyHTTPRequest hooks.
func (c *Chain) ModifyHTTPRequest(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) error {
	for _, h := range c.modifyHTTPRequest {
		req, err := h.ModifyHTTPRequest(ctx, *ic, attrs)
		if err != nil {
			return err
		}
		if req == nil {
			return nilArtifact(h, "http request")
		}
		ic.HTTPRequest = req
	}
	return nil
}

// ModifyHTTPContent runs the ModifyHTTPContent hooks. A hook may return nil
// to drop a previous override.
func (c *Chain) ModifyHTTPContent(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) error {
	for _, h := range c.modifyHTTPContent {
		body, err := h.ModifyHTTPContent(ctx, *ic, attrs)
		if err != nil {
			return err
		}
		ic.RequestBody = body
	}
	return nil
}

// BeforeTransmission runs the BeforeTransmission hooks.
func (c *Chain) BeforeTransmission(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for _, h := range c.beforeTransmission {
		h.BeforeTransmission(ctx, *ic, attrs)
	}
}

// AfterTransmission runs the AfterTransmission hooks in reverse order.
func (c *Chain) AfterTransmission(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for i := len(c.afterTransmission) - 1; i >= 0; i-- {
		c.afterTransmission[i].AfterTransmission(ctx, *ic, attrs)
	}
}

// ModifyHTTPResponse runs the ModifyHTTPResponse hooks in reverse order.
func (c *Chain) ModifyHTTPResponse(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) error {
	for i := len(c.modifyHTTPResponse) - 1; i >= 0; i-- {
		h := c.modifyHTTPResponse[i]
		res, err := h.ModifyHTTPResponse(ctx, *ic, attrs)
		if err != nil {
			return err
		}
		if res == nil {
			return nilArtifact(h, "http response")
		}
		ic.HTTPResponse = res
	}
	return nil
}

// AfterUnmarshalling runs the AfterUnmarshalling hooks in reverse order.
func (c *Chain) AfterUnmarshalling(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for i := len(c.afterUnmarshalling) - 1; i >= 0; i-- {
		c.afterUnmarshalling[i].AfterUnmarshalling(ctx, *ic, attrs)
	}
}

// ModifyResponse runs the ModifyResponse hooks in reverse order.
func (c *Chain) ModifyResponse(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) error {
	for i := len(c.modifyResponse) - 1; i >= 0; i-- {
		h := c.modifyResponse[i]
		res, err := h.ModifyResponse(ctx, *ic, attrs)
		if err != nil {
			return err
		}
		ic.Response = res
	}
	return nil
}

// AfterExecution runs the AfterExecution hooks in reverse order.
func (c *Chain) AfterExecution(ctx context.Context, ic *interceptor.Context, attrs *attribute.Bag) {
	for i := len(c.afterExecution) - 1; i >= 0; i-- {
		c.afterExecution[i].AfterExecution(ctx, *ic, attrs)
	}
}

// OnExecutionFailure runs the OnExecutionFailure hooks in reverse order.
func (c *Chain) OnExecutionFailure(ctx context.Context, ic *interceptor.Context, err error, attrs *attribute.Bag) {
	for i := len(c.onFailure) - 1; i >= 0; i-- {
		c.onFailure[i].OnExecutionFailure(ctx, *ic, err, attrs)
	}
}

func nilArtifact(h interface{}, what string) error {
	return cloudcallerrors.Newf(cloudcallerrors.CodeInternal, "interceptor %T returned a nil %s", h, what)
}
