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

	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// SyncHandler executes operations over a UnaryOutbound and blocks until
// they complete. It runs the same pipeline as AsyncHandler.
type SyncHandler struct {
	async *AsyncHandler
}

// NewSyncHandler builds a SyncHandler.
func NewSyncHandler(out transport.UnaryOutbound, opts ...Option) (*SyncHandler, error) {
	if out == nil {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "sync handler needs an outbound")
	}
	async, err := NewAsyncHandler(blockingOutbound{out}, opts...)
	if err != nil {
		return nil, err
	}
	return &SyncHandler{async: async}, nil
}

// Call runs a buffered execution and waits for its result.
func Call[Req, Resp any](ctx context.Context, h *SyncHandler, p ExecutionParams[Req, Resp]) (Resp, error) {
	return Execute(ctx, h.async, p).Get(ctx)
}

// blockingOutbound runs a unary call on the calling goroutine.
type blockingOutbound struct {
	out transport.UnaryOutbound
}

func (b blockingOutbound) CallAsync(ctx context.Context, req *transport.Request, h transport.ResponseHandler) {
	res, err := b.out.Call(ctx, req)
	if err != nil {
		h.OnError(err)
		return
	}
	h.OnResponse(res)
}
