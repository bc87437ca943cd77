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

package awsxml

import (
	"net/http"

	"github.com/beevik/etree"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
)

var _requestIDHeaders = []string{"x-amz-request-id", "x-amzn-requestid"}

// Option customizes a Factory.
type Option interface {
	apply(*Factory)
}

type optionFunc func(*Factory)

func (f optionFunc) apply(fa *Factory) { f(fa) }

// WithErrorPath locates the error element below the document root, e.g.
// "Error" for documents shaped ErrorResponse/Error. Without it the root
// itself is the error element.
func WithErrorPath(path string) Option {
	return optionFunc(func(f *Factory) {
		f.errorPath = path
	})
}

// WithErrorInSuccessBody makes combined handlers inspect successful replies
// for an embedded error document.
func WithErrorInSuccessBody() Option {
	return optionFunc(func(f *Factory) {
		f.errorInSuccessBody = true
	})
}

// Factory builds response handlers for one XML-speaking service. It is
// immutable and safe for concurrent use.
type Factory struct {
	errorPath          string
	errorInSuccessBody bool
}

// NewFactory builds a Factory.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{}
	for _, o := range opts {
		o.apply(f)
	}
	return f
}

// NewS3Factory returns the factory of the object storage service: error
// fields live at the top of the document and may arrive with status 200.
func NewS3Factory() *Factory {
	return NewFactory(WithErrorInSuccessBody())
}

// Classify classifies a reply using the factory's rules.
func (f *Factory) Classify(status int, root *etree.Element) Classification {
	c := Classify(status, root)
	if c.Success || f.errorInSuccessBody || status < 200 || status >= 300 {
		return c
	}
	return Classification{Success: true}
}

// ServiceError turns an error document into a *cloudcallerrors.ServiceError.
// doc is the parsed root; nil is allowed.
func (f *Factory) ServiceError(res *transport.Response, doc *etree.Element) *cloudcallerrors.ServiceError {
	se := &cloudcallerrors.ServiceError{StatusCode: res.StatusCode}
	errEl := doc
	if doc != nil && f.errorPath != "" && doc.Tag != ErrorInSuccessBodyTag {
		if el := doc.FindElement(f.errorPath); el != nil {
			errEl = el
		}
	}
	if errEl != nil {
		se.ErrorCode, _ = ChildText(errEl, "Code")
		se.Message, _ = ChildText(errEl, "Message")
		se.RequestID = requestID(doc, errEl)
	}
	if se.RequestID == "" {
		for _, h := range _requestIDHeaders {
			if v, ok := res.Headers.Get(h); ok {
				se.RequestID = v
				break
			}
		}
	}
	if se.ErrorCode == "" && se.Message == "" {
		se.Message = http.StatusText(res.StatusCode)
	}
	return se
}

func requestID(doc, errEl *etree.Element) string {
	for _, candidate := range []struct {
		el   *etree.Element
		path string
	}{
		{errEl, "RequestId"},
		{doc, "RequestId"},
		{doc, "RequestID"},
		{doc, "ResponseMetadata/RequestId"},
	} {
		if v, ok := ChildText(candidate.el, candidate.path); ok && v != "" {
			return v
		}
	}
	return ""
}

// ErrorHandler returns a handler that parses failure bodies into service
// errors.
func (f *Factory) ErrorHandler() handler.ErrorHandler {
	return handler.ErrorHandlerFunc(func(res *transport.Response, body []byte) error {
		root, err := Parse(body)
		if err != nil {
			// An unparsable error body still describes a failed call.
			root = nil
		}
		return f.ServiceError(res, root)
	})
}

// ResponseHandler returns a handler decoding successful replies with fn.
// root is nil when the body was empty.
func ResponseHandler[T any](fn func(res *transport.Response, root *etree.Element) (T, error)) handler.ResponseHandler[T] {
	return handler.ResponseHandlerFunc[T](func(res *transport.Response, body []byte) (T, error) {
		root, err := Parse(body)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(res, root)
	})
}

// CombinedHandler returns a handler that parses the body once, classifies
// the reply with f and either decodes it with fn or turns it into a
// service error.
func CombinedHandler[T any](f *Factory, fn func(res *transport.Response, root *etree.Element) (T, error)) handler.CombinedHandler[T] {
	return handler.CombinedHandlerFunc[T](func(res *transport.Response, body []byte) (T, error) {
		var zero T
		root, err := Parse(body)
		if err != nil {
			if !res.IsSuccess() {
				return zero, f.ServiceError(res, nil)
			}
			return zero, err
		}
		c := f.Classify(res.StatusCode, root)
		if !c.Success {
			return zero, f.ServiceError(res, c.ErrorDocument)
		}
		return fn(res, root)
	})
}
