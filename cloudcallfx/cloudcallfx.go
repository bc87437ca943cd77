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

// Package cloudcallfx provides a *cloudcall.Client to fx applications and
// ties its outbound to the application lifecycle.
package cloudcallfx

import (
	"context"
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally"
	"go.uber.org/cloudcall"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// InterceptorGroup is the value group whose interceptors NewClient installs
// on the client, after its own.
const InterceptorGroup = "cloudcall.interceptors"

// Module provides a *cloudcall.Client built from the cloudcall.Config in
// the container.
var Module = fx.Options(
	fx.Provide(NewClient),
)

// ConfigFromYAML provides a cloudcall.Config read from r.
func ConfigFromYAML(r io.Reader, opts ...cloudcall.LoadOption) fx.Option {
	return fx.Provide(func() (cloudcall.Config, error) {
		return cloudcall.LoadConfigFromYAML(r, opts...)
	})
}

// ClientParams defines the dependencies of this module.
type ClientParams struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Config       cloudcall.Config
	Outbound     transport.AsyncOutbound   `optional:"true"`
	Logger       *zap.Logger               `optional:"true"`
	Scope        tally.Scope               `optional:"true"`
	Tracer       opentracing.Tracer        `optional:"true"`
	Interceptors []interceptor.Interceptor `group:"cloudcall.interceptors"`
}

// ClientResult defines the values produced by this module.
type ClientResult struct {
	fx.Out

	Client *cloudcall.Client
}

// NewClient produces a *cloudcall.Client and starts and stops it with the
// application.
func NewClient(p ClientParams) (ClientResult, error) {
	var opts []cloudcall.Option
	if p.Outbound != nil {
		opts = append(opts, cloudcall.WithOutbound(p.Outbound))
	}
	if p.Logger != nil {
		opts = append(opts, cloudcall.WithLogger(p.Logger))
	}
	if p.Scope != nil {
		opts = append(opts, cloudcall.WithMetrics(p.Scope))
	}
	if p.Tracer != nil {
		opts = append(opts, cloudcall.WithTracer(p.Tracer))
	}
	if len(p.Interceptors) > 0 {
		opts = append(opts, cloudcall.WithInterceptors(p.Interceptors...))
	}

	client, err := cloudcall.New(p.Config, opts...)
	if err != nil {
		return ClientResult{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return client.Start()
		},
		OnStop: func(context.Context) error {
			return client.Stop()
		},
	})
	return ClientResult{Client: client}, nil
}
