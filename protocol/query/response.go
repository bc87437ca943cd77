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
	"github.com/beevik/etree"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/protocol/awsxml"
)

// Query services answer with <Op>Response documents and report failures as
// ErrorResponse/Error.
var _responses = awsxml.NewFactory(awsxml.WithErrorPath("Error"))

// ResponseMetadata is the metadata every query response carries.
type ResponseMetadata struct {
	RequestID string
}

// ErrorHandler returns the error handler shared by query-family services.
func ErrorHandler() handler.ErrorHandler {
	return _responses.ErrorHandler()
}

// ResultHandler returns a response handler for op. decode receives the
// <op>Result element, which is nil for operations without a result.
func ResultHandler[T any](op string, decode func(result *etree.Element, meta ResponseMetadata) (T, error)) handler.ResponseHandler[T] {
	return awsxml.ResponseHandler(func(_ *transport.Response, root *etree.Element) (T, error) {
		var zero T
		if root == nil {
			return zero, cloudcallerrors.Newf(cloudcallerrors.CodeService, "%s returned an empty response", op)
		}
		if root.Tag != op+"Response" {
			return zero, cloudcallerrors.Newf(cloudcallerrors.CodeService, "%s returned an unexpected %s document", op, root.Tag)
		}
		meta := ResponseMetadata{}
		meta.RequestID, _ = awsxml.ChildText(root, "ResponseMetadata/RequestId")
		return decode(root.SelectElement(op+"Result"), meta)
	})
}
