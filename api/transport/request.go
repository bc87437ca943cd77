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

package transport

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"go.uber.org/cloudcall/cloudcallerrors"
)

// ContentProvider returns a fresh reader over a request body. It may be
// called once per attempt, so every call must start from the beginning of
// the content.
type ContentProvider func() io.Reader

// BytesContent returns a ContentProvider over b.
func BytesContent(b []byte) ContentProvider {
	return func() io.Reader { return bytes.NewReader(b) }
}

// Request is the wire-level representation of an outbound call.
//
// A Request is immutable once built. Use ToBuilder to derive a modified
// copy.
type Request struct {
	method   string
	endpoint *url.URL
	path     string
	query    QueryParams
	headers  Headers
	content  ContentProvider
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Endpoint returns a copy of the endpoint the request is addressed to.
func (r *Request) Endpoint() *url.URL { return cloneURL(r.endpoint) }

// EncodedPath returns the already-encoded path appended to the endpoint.
func (r *Request) EncodedPath() string { return r.path }

// Query returns a copy of the query parameters.
func (r *Request) Query() QueryParams { return r.query.Clone() }

// Headers returns a copy of the headers.
func (r *Request) Headers() Headers { return r.headers.Clone() }

// Header returns a single header value.
func (r *Request) Header(k string) (string, bool) { return r.headers.Get(k) }

// Content returns the content provider, or nil if the request has no body.
func (r *Request) Content() ContentProvider { return r.content }

// ReadContent reads the whole body. It returns nil for requests without a
// content provider.
func (r *Request) ReadContent() ([]byte, error) {
	if r.content == nil {
		return nil, nil
	}
	return io.ReadAll(r.content())
}

// URL returns the full request URL: endpoint, path and the encoded query in
// insertion order.
func (r *Request) URL() *url.URL {
	u := cloneURL(r.endpoint)
	if u == nil {
		u = &url.URL{}
	}
	if r.path != "" {
		base := strings.TrimSuffix(u.EscapedPath(), "/")
		p := r.path
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if unescaped, err := url.PathUnescape(base + p); err == nil {
			u.Path = unescaped
			u.RawPath = base + p
		}
	}
	u.RawQuery = r.query.Encode()
	return u
}

// ToBuilder returns a builder initialized with a copy of this request.
func (r *Request) ToBuilder() *RequestBuilder {
	return &RequestBuilder{
		method:   r.method,
		endpoint: cloneURL(r.endpoint),
		path:     r.path,
		query:    r.query.Clone(),
		headers:  r.headers.Clone(),
		content:  r.content,
	}
}

// RequestBuilder accumulates the parts of a Request. It is owned by one
// execution and is not safe for concurrent use.
type RequestBuilder struct {
	method   string
	endpoint *url.URL
	path     string
	query    QueryParams
	headers  Headers
	content  ContentProvider
}

// NewRequestBuilder returns an empty builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// Method sets the HTTP method.
func (b *RequestBuilder) Method(m string) *RequestBuilder {
	b.method = m
	return b
}

// Endpoint sets the endpoint. Any query on the endpoint URL is ignored.
func (b *RequestBuilder) Endpoint(u *url.URL) *RequestBuilder {
	b.endpoint = cloneURL(u)
	if b.endpoint != nil {
		b.endpoint.RawQuery = ""
	}
	return b
}

// EncodedPath sets the already-encoded path.
func (b *RequestBuilder) EncodedPath(p string) *RequestBuilder {
	b.path = p
	return b
}

// PutQuery replaces the values of a query parameter.
func (b *RequestBuilder) PutQuery(k string, vs ...string) *RequestBuilder {
	b.query.Put(k, vs...)
	return b
}

// AppendQuery adds a value to a query parameter.
func (b *RequestBuilder) AppendQuery(k, v string) *RequestBuilder {
	b.query.Append(k, v)
	return b
}

// RemoveQuery removes a query parameter.
func (b *RequestBuilder) RemoveQuery(k string) *RequestBuilder {
	b.query.Remove(k)
	return b
}

// ClearQuery removes every query parameter.
func (b *RequestBuilder) ClearQuery() *RequestBuilder {
	b.query.Clear()
	return b
}

// PutHeader sets a header, replacing any previous value.
func (b *RequestBuilder) PutHeader(k, v string) *RequestBuilder {
	b.headers = b.headers.With(k, v)
	return b
}

// RemoveHeader removes a header.
func (b *RequestBuilder) RemoveHeader(k string) *RequestBuilder {
	b.headers.Del(k)
	return b
}

// Content sets the body provider. nil removes the body.
func (b *RequestBuilder) Content(c ContentProvider) *RequestBuilder {
	b.content = c
	return b
}

// GetMethod returns the method set so far.
func (b *RequestBuilder) GetMethod() string { return b.method }

// GetQuery returns a copy of the query parameters set so far.
func (b *RequestBuilder) GetQuery() QueryParams { return b.query.Clone() }

// GetContent returns the body provider set so far.
func (b *RequestBuilder) GetContent() ContentProvider { return b.content }

// Build returns an immutable Request. The builder may be reused afterwards;
// later changes do not affect the returned Request.
func (b *RequestBuilder) Build() *Request {
	return &Request{
		method:   b.method,
		endpoint: cloneURL(b.endpoint),
		path:     b.path,
		query:    b.query.Clone(),
		headers:  b.headers.Clone(),
		content:  b.content,
	}
}

// ValidateRequest validates the given request. An error is returned if the
// request is missing parts required for transmission.
func ValidateRequest(req *Request) error {
	if req == nil {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "request is nil")
	}
	var missingParams []string
	if req.method == "" {
		missingParams = append(missingParams, "method")
	}
	if req.endpoint == nil || req.endpoint.Host == "" {
		missingParams = append(missingParams, "endpoint host")
	}
	if req.endpoint != nil && req.endpoint.Scheme == "" {
		missingParams = append(missingParams, "endpoint scheme")
	}
	if len(missingParams) > 0 {
		return cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument,
			"missing %s", joinParams(missingParams))
	}
	return nil
}

func joinParams(params []string) string {
	switch len(params) {
	case 1:
		return params[0]
	case 2:
		return params[0] + " and " + params[1]
	default:
		return strings.Join(params[:len(params)-1], ", ") + ", and " + params[len(params)-1]
	}
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
