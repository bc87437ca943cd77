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
	"io"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/transport"
)

// ResponseHandler decodes a successful response. Buffered executions pass
// the whole body; streaming executions pass a nil body so only status and
// headers are decoded.
type ResponseHandler[T any] interface {
	HandleResponse(res *transport.Response, body []byte) (T, error)
}

// ResponseHandlerFunc adapts a function into a ResponseHandler.
type ResponseHandlerFunc[T any] func(res *transport.Response, body []byte) (T, error)

// HandleResponse for ResponseHandlerFunc.
func (f ResponseHandlerFunc[T]) HandleResponse(res *transport.Response, body []byte) (T, error) {
	return f(res, body)
}

// ErrorHandler decodes an error response into the error it describes.
type ErrorHandler interface {
	HandleError(res *transport.Response, body []byte) error
}

// ErrorHandlerFunc adapts a function into an ErrorHandler.
type ErrorHandlerFunc func(res *transport.Response, body []byte) error

// HandleError for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(res *transport.Response, body []byte) error {
	return f(res, body)
}

// CombinedHandler classifies a buffered response and decodes it as either a
// result or an error. Protocol factories supply one when the status code
// alone cannot tell the two apart.
type CombinedHandler[T any] interface {
	Handle(res *transport.Response, body []byte) (T, error)
}

// CombinedHandlerFunc adapts a function into a CombinedHandler.
type CombinedHandlerFunc[T any] func(res *transport.Response, body []byte) (T, error)

// Handle for CombinedHandlerFunc.
func (f CombinedHandlerFunc[T]) Handle(res *transport.Response, body []byte) (T, error) {
	return f(res, body)
}

// Combine routes 2xx responses to success and everything else to failure.
func Combine[T any](success ResponseHandler[T], failure ErrorHandler) CombinedHandler[T] {
	return CombinedHandlerFunc[T](func(res *transport.Response, body []byte) (T, error) {
		if res.IsSuccess() {
			return success.HandleResponse(res, body)
		}
		var zero T
		return zero, failure.HandleError(res, body)
	})
}

// ExecutionParams describe one call.
//
// Buffered executions need either CombinedHandler or both ResponseHandler
// and ErrorHandler. Streaming executions need ResponseHandler and
// ErrorHandler and reject a CombinedHandler.
type ExecutionParams[Req, Resp any] struct {
	// OperationName names the operation in attributes, errors and logs.
	OperationName string

	// Input is the typed request.
	Input Req

	// Marshal turns the final typed request into a wire request.
	Marshal func(Req) (*transport.Request, error)

	ResponseHandler ResponseHandler[Resp]
	ErrorHandler    ErrorHandler
	CombinedHandler CombinedHandler[Resp]

	// Attributes seeds the execution's attribute bag. The bag is cloned,
	// so the caller's copy is never modified.
	Attributes *attribute.Bag

	// FullDuplex marks operations that stream the request body while the
	// response is received.
	FullDuplex bool
}

// ResponseTransformer consumes a streamed response body and produces R.
type ResponseTransformer[Resp, R any] interface {
	// Prepare starts a new attempt and returns the handle the transformer
	// resolves once it has consumed that attempt's stream.
	Prepare() *Future[R]

	// OnResponse delivers the decoded response metadata.
	OnResponse(resp Resp)

	// OnStream hands over the response body. The transformer owns it and
	// must close it.
	OnStream(body io.ReadCloser)

	// OnError reports that the current attempt failed. An error returned
	// from here is logged and otherwise ignored.
	OnError(err error) error
}
