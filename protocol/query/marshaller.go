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
	"net/http"
	"net/url"
	"unicode"
	"unicode/utf8"

	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// Dialect selects how repeated values and location names are rendered.
type Dialect int

const (
	// AWSQuery is the dialect of the aws-query services.
	AWSQuery Dialect = iota
	// EC2 is the dialect of the ec2 service.
	EC2
)

func (d Dialect) String() string {
	if d == EC2 {
		return "ec2"
	}
	return "aws-query"
}

func (d Dialect) locationName(f *schema.Field) string {
	if d != EC2 {
		return f.LocationName
	}
	if f.EC2LocationName != "" {
		return f.EC2LocationName
	}
	r, n := utf8.DecodeRuneInString(f.LocationName)
	return string(unicode.ToUpper(r)) + f.LocationName[n:]
}

// OperationInfo identifies the operation being marshalled.
type OperationInfo struct {
	// Name is sent as the Action parameter.
	Name string
	// APIVersion is sent as the Version parameter.
	APIVersion string
	// Method defaults to POST.
	Method string
}

// Marshaller turns request objects of one operation into wire requests. A
// Marshaller holds no per-call state and may be shared.
type Marshaller struct {
	endpoint *url.URL
	registry *Registry
	op       OperationInfo
}

// Marshal produces the wire request for obj. POST requests carry their
// parameters as a form body.
func (m *Marshaller) Marshal(obj schema.Object) (*transport.Request, error) {
	req, err := m.MarshalQueryParams(obj)
	if err != nil {
		return nil, err
	}
	return MoveParamsToBody(req), nil
}

// MarshalQueryParams produces the wire request for obj with every
// parameter left in the query string.
func (m *Marshaller) MarshalQueryParams(obj schema.Object) (*transport.Request, error) {
	if schema.IsNil(obj) {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "cannot marshal nil %s request", m.op.Name)
	}
	b := m.basicRequest()
	mc := &MarshalContext{registry: m.registry, builder: b}
	if err := mc.MarshalObject("", obj); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func (m *Marshaller) basicRequest() *transport.RequestBuilder {
	method := m.op.Method
	if method == "" {
		method = http.MethodPost
	}
	return transport.NewRequestBuilder().
		Method(method).
		Endpoint(m.endpoint).
		EncodedPath("").
		PutQuery("Action", m.op.Name).
		PutQuery("Version", m.op.APIVersion)
}
