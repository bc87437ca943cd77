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
	"net/url"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/cloudcall/internal/endpoint"
	"go.uber.org/cloudcall/internal/observability"
	"go.uber.org/cloudcall/protocol/query"
	"go.uber.org/cloudcall/transport/http"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Client holds everything the operations of one service share: the
// endpoint, the seed attributes, the outbound and the handler options.
// It is safe for concurrent use.
type Client struct {
	cfg      Config
	endpoint *url.URL
	attrs    *attribute.Bag
	outbound transport.AsyncOutbound
	logger   *zap.Logger

	// owned is the HTTP outbound built from the configuration, if any.
	owned *http.Outbound

	interceptors []interceptor.Interceptor
	handlerOpts  []handler.Option
}

// New builds a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "invalid %s client configuration", cfg.Service)
	}

	o := clientOptions{signer: auth.NewV4Signer()}
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.clock == nil {
		o.clock = clock.NewReal()
	}
	logger := o.logger.With(zap.String("service", cfg.Service))

	ep, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	attrs, err := seedAttributes(cfg)
	if err != nil {
		return nil, err
	}
	retry, err := retryPolicy(cfg.Retry)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		endpoint: ep,
		attrs:    attrs,
		outbound: o.outbound,
		logger:   logger,
	}
	if c.outbound == nil {
		out, err := http.NewOutbound(httpOptions(cfg.HTTP, logger)...)
		if err != nil {
			return nil, err
		}
		c.owned = out
		c.outbound = out
	}

	c.interceptors = append(c.interceptors, observability.NewInterceptor(observability.Config{
		Logger: logger,
		Scope:  o.scope,
		Tracer: o.tracer,
		Clock:  o.clock,
	}))
	if cfg.Protocol == handler.ProtocolQuery || cfg.Protocol == handler.ProtocolEC2 {
		c.interceptors = append(c.interceptors, query.ParamsToBodyInterceptor{})
	}
	c.interceptors = append(c.interceptors, o.interceptors...)

	c.handlerOpts = []handler.Option{
		handler.WithRetryPolicy(retry),
		handler.WithClock(o.clock),
		handler.WithLogger(logger),
	}
	// Clients without credentials send anonymous requests.
	if cfg.Credentials.AccessKeyID != "" && o.signer != nil {
		c.handlerOpts = append(c.handlerOpts, handler.WithSigner(o.signer))
	}
	return c, nil
}

func resolveEndpoint(cfg Config) (*url.URL, error) {
	if cfg.Endpoint == "" {
		return endpoint.Resolve(cfg.Service, cfg.Region)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "invalid endpoint %q", cfg.Endpoint)
	}
	return u, nil
}

func seedAttributes(cfg Config) (*attribute.Bag, error) {
	attrs := attribute.NewBag()
	if cfg.Credentials.AccessKeyID != "" {
		auth.Credentials.Put(attrs, cfg.Credentials.AWS())
	}
	if cfg.Region != "" {
		auth.SigningRegion.Put(attrs, cfg.Region)
	}
	auth.SigningName.Put(attrs, cfg.signingName())
	handler.ServiceName.Put(attrs, cfg.Service)
	handler.Protocol.Put(attrs, cfg.Protocol)

	var err error
	for _, name := range cfg.Attributes.Names() {
		err = multierr.Append(err, attrs.SetNamed(name, cfg.Attributes[name]))
	}
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "invalid attributes")
	}
	return attrs, nil
}

func retryPolicy(cfg RetryConfig) (handler.RetryPolicy, error) {
	if cfg.MaxAttempts <= 1 {
		return handler.NoRetry(), nil
	}
	var opts []handler.RetryOption
	if cfg.Backoff.Base > 0 {
		max := cfg.Backoff.Max
		if max == 0 {
			max = cfg.Backoff.Base
		}
		opts = append(opts, handler.RetryBackoff(cfg.Backoff.Base, max))
	}
	return handler.MaxAttempts(cfg.MaxAttempts, opts...)
}

func httpOptions(cfg HTTPConfig, logger *zap.Logger) []http.OutboundOption {
	opts := []http.OutboundOption{http.Logger(logger)}
	if cfg.KeepAlive > 0 {
		opts = append(opts, http.KeepAlive(cfg.KeepAlive))
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		opts = append(opts, http.MaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost))
	}
	if cfg.ResponseHeaderTimeout > 0 {
		opts = append(opts, http.ResponseHeaderTimeout(cfg.ResponseHeaderTimeout))
	}
	if cfg.ConnTimeout > 0 {
		opts = append(opts, http.ConnTimeout(cfg.ConnTimeout))
	}
	if cfg.EnableHTTP2 {
		opts = append(opts, http.EnableHTTP2())
	}
	return opts
}

// Config returns the configuration the Client was built with.
func (c *Client) Config() Config { return c.cfg }

// Endpoint returns the endpoint requests are sent to.
func (c *Client) Endpoint() *url.URL {
	u := *c.endpoint
	return &u
}

// Attributes returns a copy of the attributes every execution starts with.
func (c *Client) Attributes() *attribute.Bag { return c.attrs.Clone() }

// Logger returns the Client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

// NewHandler builds an asynchronous handler running the Client's
// interceptors followed by extra.
func (c *Client) NewHandler(extra ...interceptor.Interceptor) (*handler.AsyncHandler, error) {
	return handler.NewAsyncHandler(c.outbound, c.options(extra)...)
}

// NewSyncHandler builds a blocking handler. The outbound must implement
// transport.UnaryOutbound.
func (c *Client) NewSyncHandler(extra ...interceptor.Interceptor) (*handler.SyncHandler, error) {
	unary, ok := c.outbound.(transport.UnaryOutbound)
	if !ok {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "outbound %T cannot make blocking calls", c.outbound)
	}
	return handler.NewSyncHandler(unary, c.options(extra)...)
}

func (c *Client) options(extra []interceptor.Interceptor) []handler.Option {
	is := make([]interceptor.Interceptor, 0, len(c.interceptors)+len(extra))
	is = append(is, c.interceptors...)
	is = append(is, extra...)

	opts := make([]handler.Option, 0, len(c.handlerOpts)+1)
	opts = append(opts, c.handlerOpts...)
	return append(opts, handler.WithInterceptors(is...))
}

// Start starts the Client's outbound.
func (c *Client) Start() error {
	if c.owned != nil {
		return c.owned.Start()
	}
	return nil
}

// Stop waits for asynchronous calls in flight and releases idle
// connections. Outbounds passed with WithOutbound are left alone.
func (c *Client) Stop() error {
	if c.owned != nil {
		return c.owned.Stop()
	}
	return nil
}
