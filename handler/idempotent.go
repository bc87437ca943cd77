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
	"sync"

	"go.uber.org/atomic"
)

// IdempotentResponseHandler prepares its wrapped transformer at most once
// per key. Keyed on the execution attempt, repeated Prepare calls within an
// attempt share one handle while a new attempt prepares afresh.
type IdempotentResponseHandler[Resp, R any, K comparable] struct {
	ResponseTransformer[Resp, R]

	key func() K

	mu       sync.Mutex
	prepared *Future[R]
	last     K
	prepares atomic.Int32
}

// NewIdempotentResponseHandler wraps t. key returns the current cache key.
func NewIdempotentResponseHandler[Resp, R any, K comparable](t ResponseTransformer[Resp, R], key func() K) *IdempotentResponseHandler[Resp, R, K] {
	return &IdempotentResponseHandler[Resp, R, K]{ResponseTransformer: t, key: key}
}

// Prepare returns the handle prepared for the current key, preparing the
// wrapped transformer if the key changed since the last call.
func (h *IdempotentResponseHandler[Resp, R, K]) Prepare() *Future[R] {
	k := h.key()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.prepared != nil && h.last == k {
		return h.prepared
	}
	h.prepared = h.ResponseTransformer.Prepare()
	h.last = k
	h.prepares.Inc()
	return h.prepared
}

// Prepares returns how many times the wrapped transformer was prepared.
func (h *IdempotentResponseHandler[Resp, R, K]) Prepares() int {
	return int(h.prepares.Load())
}
