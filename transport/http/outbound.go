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

// Package http sends wire requests over net/http.
package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/zap"
)

// Outbound sends requests over HTTP. It implements both
// transport.UnaryOutbound and transport.AsyncOutbound.
type Outbound struct {
	client *http.Client
	logger *zap.Logger

	stopped  atomic.Bool
	inflight sync.WaitGroup
}

var (
	_ transport.UnaryOutbound = (*Outbound)(nil)
	_ transport.AsyncOutbound = (*Outbound)(nil)
)

// NewOutbound builds an Outbound.
func NewOutbound(opts ...OutboundOption) (*Outbound, error) {
	o := defaultOutboundOptions
	for _, opt := range opts {
		opt(&o)
	}
	client, err := buildClient(&o)
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "configuring HTTP client")
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Outbound{client: client, logger: logger}, nil
}

// Call sends req and waits for the response headers. The caller owns the
// response body.
func (o *Outbound) Call(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if o.stopped.Load() {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "outbound is stopped")
	}
	hreq, err := toHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := o.client.Do(hreq)
	if err != nil {
		// The client may report a cancelled context as a URL error.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return &transport.Response{
		StatusCode: res.StatusCode,
		Headers:    transport.HeadersFromHTTP(res.Header),
		Body:       res.Body,
	}, nil
}

// CallAsync sends req on its own goroutine and reports the outcome to h.
func (o *Outbound) CallAsync(ctx context.Context, req *transport.Request, h transport.ResponseHandler) {
	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		res, err := o.Call(ctx, req)
		if err != nil {
			h.OnError(err)
			return
		}
		h.OnResponse(res)
	}()
}

// Start is a no-op; the outbound is ready once built.
func (o *Outbound) Start() error { return nil }

// Stop rejects new calls, waits for asynchronous calls in flight and closes
// idle connections.
func (o *Outbound) Stop() error {
	if !o.stopped.CompareAndSwap(false, true) {
		return nil
	}
	o.inflight.Wait()
	o.client.CloseIdleConnections()
	o.logger.Debug("HTTP outbound stopped.")
	return nil
}

func toHTTPRequest(ctx context.Context, req *transport.Request) (*http.Request, error) {
	if err := transport.ValidateRequest(req); err != nil {
		return nil, err
	}
	body, err := req.ReadContent()
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "reading request body")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL().String(), reader)
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "building HTTP request")
	}
	hreq.Header = req.Headers().ToHTTP()
	// Content-Length travels in the request itself, not as a header.
	hreq.Header.Del("Content-Length")
	return hreq, nil
}
