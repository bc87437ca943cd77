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

// Package presign attaches presigned cross-region URLs to requests.
//
// Some operations copy a resource from a source region into the region
// the client talks to. The destination cannot read the source on the
// caller's behalf unless the request carries a URL, presigned in the
// source region, that authorizes the same operation there. The
// Interceptor builds that URL from the request itself and stores it in the
// request before the request is marshalled and signed.
package presign

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/cloudcall/internal/endpoint"
	"go.uber.org/cloudcall/protocol/query"
)

const (
	// SourceRegionParam names the source region. It is removed from the
	// presigned request.
	SourceRegionParam = "SourceRegion"
	// DestinationRegionParam names the region the primary request is sent
	// to.
	DestinationRegionParam = "DestinationRegion"

	// DefaultExpiry is how long presigned URLs stay valid.
	DefaultExpiry = 7 * 24 * time.Hour
)

// Placeholder is the query factory presigned requests are marshalled
// with. Its endpoint is replaced by the source region's endpoint before
// signing.
var Placeholder = query.MustFactory("http://localhost")

// Presignable is the presign view of one request.
type Presignable struct {
	// PresignedURL is the URL already attached to the request, if any.
	PresignedURL *string
	// SourceRegion is the region to presign in, if any.
	SourceRegion *string
	// MarshalQuery marshals the request with every parameter in the query
	// string, typically through Placeholder.
	MarshalQuery func() (*transport.Request, error)
}

// Option customizes an Interceptor.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

type options struct {
	clock    clock.Clock
	signer   auth.Signer
	resolver *endpoint.Resolver
	expiry   time.Duration
}

// WithClock signs presigned URLs at the time reported by c. Without it the
// auth.ClockOverride attribute or the system clock is used.
func WithClock(c clock.Clock) Option {
	return optionFunc(func(o *options) {
		o.clock = c
	})
}

// WithSigner replaces the SigV4 signer.
func WithSigner(s auth.Signer) Option {
	return optionFunc(func(o *options) {
		o.signer = s
	})
}

// WithResolver resolves source region endpoints with r.
func WithResolver(r *endpoint.Resolver) Option {
	return optionFunc(func(o *options) {
		o.resolver = r
	})
}

// WithExpiry changes how long presigned URLs stay valid.
func WithExpiry(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.expiry = d
	})
}

// Interceptor presigns requests of type T in its ModifyRequest hook.
// Requests of other types pass through untouched.
type Interceptor[T any] struct {
	service string
	adapt   func(T) Presignable
	rewrite func(T, string) T
	opts    options
}

var _ interceptor.ModifyRequest = (*Interceptor[struct{}])(nil)

// NewInterceptor builds an Interceptor for service, the signing name of
// the presigned request. adapt exposes the presign view of a request and
// rewrite returns a copy of a request carrying the presigned URL, with its
// source region cleared.
func NewInterceptor[T any](service string, adapt func(T) Presignable, rewrite func(req T, presignedURL string) T, opts ...Option) *Interceptor[T] {
	o := options{
		signer:   auth.NewV4Signer(),
		resolver: endpoint.Default,
		expiry:   DefaultExpiry,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &Interceptor[T]{service: service, adapt: adapt, rewrite: rewrite, opts: o}
}

// ModifyRequest implements interceptor.ModifyRequest.
func (i *Interceptor[T]) ModifyRequest(ctx context.Context, ic interceptor.Context, attrs *attribute.Bag) (interface{}, error) {
	req, ok := ic.Request.(T)
	if !ok || schema.IsNil(ic.Request) {
		return ic.Request, nil
	}
	p := i.adapt(req)
	if p.PresignedURL != nil {
		return ic.Request, nil
	}
	if p.SourceRegion == nil || *p.SourceRegion == "" {
		return ic.Request, nil
	}

	url, err := i.presign(ctx, p, *p.SourceRegion, attrs)
	if err != nil {
		return nil, err
	}
	return i.rewrite(req, url), nil
}

func (i *Interceptor[T]) presign(ctx context.Context, p Presignable, source string, attrs *attribute.Bag) (string, error) {
	creds, ok := auth.Credentials.Get(attrs)
	if !ok || !creds.HasKeys() {
		return "", cloudcallerrors.Newf(cloudcallerrors.CodeClient, "no credentials to presign %s request with", i.service)
	}
	destination, ok := auth.SigningRegion.Get(attrs)
	if !ok || destination == "" {
		return "", cloudcallerrors.Newf(cloudcallerrors.CodeClient, "no destination region to presign %s request for", i.service)
	}
	ep, err := i.opts.resolver.Resolve(i.service, source)
	if err != nil {
		return "", err
	}

	wire, err := p.MarshalQuery()
	if err != nil {
		return "", err
	}
	wire = wire.ToBuilder().
		Endpoint(ep).
		Method(http.MethodGet).
		PutQuery(DestinationRegionParam, destination).
		RemoveQuery(SourceRegionParam).
		Build()

	return i.opts.signer.Presign(ctx, wire, auth.Params{
		Credentials: creds,
		Region:      source,
		Name:        i.service,
		Time:        i.now(attrs),
	}, i.opts.expiry)
}

func (i *Interceptor[T]) now(attrs *attribute.Bag) time.Time {
	if i.opts.clock != nil {
		return i.opts.clock.Now()
	}
	if c, ok := auth.ClockOverride.Get(attrs); ok && c != nil {
		return c.Now()
	}
	return time.Now()
}
