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

package transporttest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"go.uber.org/cloudcall/api/transport"
)

// Reply is one canned outcome of a FakeOutbound.
type Reply struct {
	StatusCode int
	Headers    map[string]string
	Body       string

	// Err, if set, is reported instead of a response.
	Err error
}

// FakeOutbound replays canned replies in order and records the requests it
// received. It implements both UnaryOutbound and AsyncOutbound; async calls
// are answered synchronously on the calling goroutine.
type FakeOutbound struct {
	mu       sync.Mutex
	replies  []Reply
	requests []*transport.Request
}

var (
	_ transport.UnaryOutbound = (*FakeOutbound)(nil)
	_ transport.AsyncOutbound = (*FakeOutbound)(nil)
)

// NewFakeOutbound returns a FakeOutbound answering with the given replies.
// Once the replies are used up the last one is repeated.
func NewFakeOutbound(replies ...Reply) *FakeOutbound {
	return &FakeOutbound{replies: replies}
}

// Requests returns the requests received so far.
func (o *FakeOutbound) Requests() []*transport.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*transport.Request(nil), o.requests...)
}

// Call implements transport.UnaryOutbound.
func (o *FakeOutbound) Call(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	reply := o.next(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &transport.Response{
		StatusCode: reply.StatusCode,
		Headers:    transport.HeadersFromMap(reply.Headers),
		Body:       io.NopCloser(bytes.NewReader([]byte(reply.Body))),
	}, nil
}

// CallAsync implements transport.AsyncOutbound.
func (o *FakeOutbound) CallAsync(ctx context.Context, req *transport.Request, h transport.ResponseHandler) {
	res, err := o.Call(ctx, req)
	if err != nil {
		h.OnError(err)
		return
	}
	h.OnResponse(res)
}

func (o *FakeOutbound) next(req *transport.Request) Reply {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := len(o.requests)
	o.requests = append(o.requests, req)
	if len(o.replies) == 0 {
		return Reply{StatusCode: 200}
	}
	if idx >= len(o.replies) {
		idx = len(o.replies) - 1
	}
	return o.replies[idx]
}
