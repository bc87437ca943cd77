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

package cloudcall

import (
	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/zap"
)

// Option customizes a Client.
type Option interface {
	apply(*clientOptions)
}

type optionFunc func(*clientOptions)

func (f optionFunc) apply(o *clientOptions) { f(o) }

type clientOptions struct {
	outbound     transport.AsyncOutbound
	interceptors []interceptor.Interceptor
	signer       auth.Signer
	clock        clock.Clock
	logger       *zap.Logger
	scope        tally.Scope
	tracer       opentracing.Tracer
}

// WithOutbound sends requests through out instead of an HTTP outbound
// built from the configuration. The Client does not stop out.
func WithOutbound(out transport.AsyncOutbound) Option {
	return optionFunc(func(o *clientOptions) {
		o.outbound = out
	})
}

// WithInterceptors registers interceptors on every handler the Client
// builds. They run after the Client's own interceptors.
func WithInterceptors(is ...interceptor.Interceptor) Option {
	return optionFunc(func(o *clientOptions) {
		o.interceptors = append(o.interceptors, is...)
	})
}

// WithSigner replaces the SigV4 signer.
func WithSigner(s auth.Signer) Option {
	return optionFunc(func(o *clientOptions) {
		o.signer = s
	})
}

// WithClock sets the clock used for signing, retry delays and latency
// measurements.
func WithClock(c clock.Clock) Option {
	return optionFunc(func(o *clientOptions) {
		o.clock = c
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *clientOptions) {
		o.logger = l
	})
}

// WithMetrics reports call metrics to scope.
func WithMetrics(scope tally.Scope) Option {
	return optionFunc(func(o *clientOptions) {
		o.scope = scope
	})
}

// WithTracer wraps every execution in a span of tracer.
func WithTracer(t opentracing.Tracer) Option {
	return optionFunc(func(o *clientOptions) {
		o.tracer = t
	})
}
