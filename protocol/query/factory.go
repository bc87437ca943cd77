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

package query

import (
	"net/url"

	"go.uber.org/cloudcall/cloudcallerrors"
)

// Factory builds marshallers bound to one endpoint and one registry. It is
// immutable after construction.
type Factory struct {
	endpoint *url.URL
	registry *Registry
}

// FactoryOption customizes a Factory.
type FactoryOption interface {
	apply(*Factory)
}

type factoryOptionFunc func(*Factory)

func (f factoryOptionFunc) apply(fac *Factory) { f(fac) }

// WithDialect selects the shared registry of a dialect. The default is
// AWSQuery.
func WithDialect(d Dialect) FactoryOption {
	return factoryOptionFunc(func(f *Factory) {
		f.registry = RegistryFor(d)
	})
}

// WithRegistry uses a custom registry.
func WithRegistry(r *Registry) FactoryOption {
	return factoryOptionFunc(func(f *Factory) {
		f.registry = r
	})
}

// NewFactory returns a Factory for the given endpoint, e.g.
// "https://rds.us-east-1.amazonaws.com".
func NewFactory(endpoint string, opts ...FactoryOption) (*Factory, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "invalid endpoint %q", endpoint)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeClient, "endpoint %q must have a scheme and host", endpoint)
	}
	f := &Factory{endpoint: u, registry: RegistryFor(AWSQuery)}
	for _, o := range opts {
		o.apply(f)
	}
	return f, nil
}

// MustFactory is NewFactory but panics on error.
func MustFactory(endpoint string, opts ...FactoryOption) *Factory {
	f, err := NewFactory(endpoint, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Marshaller returns a marshaller for one operation.
func (f *Factory) Marshaller(op OperationInfo) *Marshaller {
	return &Marshaller{endpoint: f.endpoint, registry: f.registry, op: op}
}

// Endpoint returns a copy of the factory endpoint.
func (f *Factory) Endpoint() *url.URL {
	u := *f.endpoint
	return &u
}

// Dialect returns the dialect of the factory's registry.
func (f *Factory) Dialect() Dialect {
	return f.registry.Dialect()
}
