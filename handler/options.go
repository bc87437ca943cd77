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
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/cloudcall/internal/interceptorchain"
	"go.uber.org/zap"
)

// Option customizes an AsyncHandler or a SyncHandler.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

type options struct {
	interceptors []interceptor.Interceptor
	chain        *interceptorchain.Chain
	signer       auth.Signer
	retry        RetryPolicy
	clock        clock.Clock
	logger       *zap.Logger
}

// WithInterceptors registers interceptors in order. Request-side hooks run
// in this order and response-side hooks in the reverse order.
func WithInterceptors(is ...interceptor.Interceptor) Option {
	return optionFunc(func(o *options) {
		o.interceptors = append(o.interceptors, is...)
	})
}

// WithSigner signs every attempt just before it is transmitted.
func WithSigner(s auth.Signer) Option {
	return optionFunc(func(o *options) { o.signer = s })
}

// WithRetryPolicy sets the retry policy. Defaults to NoRetry.
func WithRetryPolicy(p RetryPolicy) Option {
	return optionFunc(func(o *options) { o.retry = p })
}

// WithClock sets the clock used for signing time and retry delays.
func WithClock(c clock.Clock) Option {
	return optionFunc(func(o *options) { o.clock = c })
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		retry:  NoRetry(),
		clock:  clock.NewReal(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(o)
	}
	if o.retry == nil {
		o.retry = NoRetry()
	}
	chain, err := interceptorchain.New(o.interceptors...)
	if err != nil {
		return nil, err
	}
	o.chain = chain
	return o, nil
}
