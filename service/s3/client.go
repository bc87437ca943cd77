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

// Package s3 is a client for a subset of the Amazon S3 REST API.
//
// S3 may report a failure with status 200 and an error document in the
// body. Operations whose replies are buffered classify the body before
// decoding it, so such replies surface as *cloudcallerrors.ServiceError.
package s3

import (
	"context"
	"net/url"

	"go.uber.org/cloudcall"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/protocol/awsxml"
)

var _responses = awsxml.NewS3Factory()

// Client calls S3 with path-style addressing. It is safe for concurrent
// use.
type Client struct {
	cc       *cloudcall.Client
	handler  *handler.AsyncHandler
	endpoint *url.URL
}

// New builds a Client on top of cc, which should be configured for the
// rest-xml protocol.
func New(cc *cloudcall.Client) (*Client, error) {
	h, err := cc.NewHandler()
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, handler: h, endpoint: cc.Endpoint()}, nil
}

// CompleteMultipartUpload assembles the parts of a multipart upload.
func (c *Client) CompleteMultipartUpload(ctx context.Context, in *CompleteMultipartUploadInput) *handler.Future[*CompleteMultipartUploadOutput] {
	return handler.Execute(ctx, c.handler, handler.ExecutionParams[*CompleteMultipartUploadInput, *CompleteMultipartUploadOutput]{
		OperationName: "CompleteMultipartUpload",
		Input:         in,
		Marshal: func(in *CompleteMultipartUploadInput) (*transport.Request, error) {
			return marshalCompleteMultipartUpload(c.endpoint, in)
		},
		CombinedHandler: awsxml.CombinedHandler(_responses, decodeCompleteMultipartUpload),
		Attributes:      c.cc.Attributes(),
	})
}

// GetObject streams an object to t.
func GetObject[R any](ctx context.Context, c *Client, in *GetObjectInput, t handler.ResponseTransformer[*GetObjectOutput, R]) *handler.Future[R] {
	return handler.ExecuteStreaming(ctx, c.handler, handler.ExecutionParams[*GetObjectInput, *GetObjectOutput]{
		OperationName: "GetObject",
		Input:         in,
		Marshal: func(in *GetObjectInput) (*transport.Request, error) {
			return marshalGetObject(c.endpoint, in)
		},
		ResponseHandler: handler.ResponseHandlerFunc[*GetObjectOutput](decodeGetObject),
		ErrorHandler:    _responses.ErrorHandler(),
		Attributes:      c.cc.Attributes(),
	}, t)
}

// GetObjectBytes reads a whole object into memory.
func (c *Client) GetObjectBytes(ctx context.Context, in *GetObjectInput) *handler.Future[*Object] {
	return GetObject[*Object](ctx, c, in, NewBytesTransformer())
}
