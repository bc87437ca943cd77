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
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// Future is the completion handle of one execution. It resolves exactly
// once, with either a value or an error.
type Future[T any] struct {
	resolved atomic.Bool
	done     chan struct{}

	mu        sync.Mutex
	value     T
	err       error
	callbacks []func(T, error)
	onCancel  func()
}

// NewFuture returns an unresolved Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes f with v. It reports whether this call resolved f.
func (f *Future[T]) Resolve(v T) bool {
	return f.complete(v, nil)
}

// Fail completes f with err. It reports whether this call resolved f.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	return f.complete(zero, err)
}

func (f *Future[T]) complete(v T, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.mu.Lock()
	f.value, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Done is closed once f resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until f resolves or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, cloudcallerrors.Wrap(cloudcallerrors.CodeCancelled, ctx.Err(), "waiting for execution")
	}
}

// OnComplete calls fn with the outcome once f resolves. If f is already
// resolved, fn runs immediately on the calling goroutine.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		v, err := f.value, f.err
		f.mu.Unlock()
		fn(v, err)
	default:
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
	}
}

// Cancel fails f with a CodeCancelled error and stops the in-flight
// transmission, if any. It reports whether f was still unresolved.
func (f *Future[T]) Cancel() bool {
	won := f.Fail(cloudcallerrors.Newf(cloudcallerrors.CodeCancelled, "execution cancelled"))
	f.mu.Lock()
	cancel := f.onCancel
	f.mu.Unlock()
	if won && cancel != nil {
		cancel()
	}
	return won
}

func (f *Future[T]) setOnCancel(fn func()) {
	f.mu.Lock()
	f.onCancel = fn
	f.mu.Unlock()
}
