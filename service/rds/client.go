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

// Package rds is a client for a subset of the Amazon RDS query API.
//
// Operations that copy data across regions are presigned automatically:
// setting SourceRegion on CopyDBSnapshotInput or CreateDBClusterInput
// makes the client attach a PreSignedUrl authorizing the same request in
// the source region.
package rds

import (
	"context"

	"go.uber.org/cloudcall"
	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/presign"
	"go.uber.org/cloudcall/protocol/query"
)

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	presign []presign.Option
}

// WithPresignOptions customizes presigning, e.g. to pin the signing time
// with presign.WithClock.
func WithPresignOptions(opts ...presign.Option) Option {
	return func(o *clientOptions) {
		o.presign = append(o.presign, opts...)
	}
}

// Client calls RDS. It is safe for concurrent use.
type Client struct {
	cc      *cloudcall.Client
	handler *handler.AsyncHandler
	factory *query.Factory
}

// New builds a Client on top of cc, which must be configured for the
// query protocol.
func New(cc *cloudcall.Client, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	factory, err := query.NewFactory(cc.Endpoint().String())
	if err != nil {
		return nil, err
	}
	h, err := cc.NewHandler(Presigners(o.presign...)...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, handler: h, factory: factory}, nil
}

// CopyDBSnapshot copies a snapshot into the client's region.
func (c *Client) CopyDBSnapshot(ctx context.Context, in *CopyDBSnapshotInput) *handler.Future[*CopyDBSnapshotOutput] {
	return handler.Execute(ctx, c.handler, handler.ExecutionParams[*CopyDBSnapshotInput, *CopyDBSnapshotOutput]{
		OperationName:   _copyDBSnapshot.Name,
		Input:           in,
		Marshal:         marshaller[*CopyDBSnapshotInput](c.factory, _copyDBSnapshot),
		ResponseHandler: query.ResultHandler(_copyDBSnapshot.Name, decodeCopyDBSnapshot),
		ErrorHandler:    query.ErrorHandler(),
		Attributes:      c.cc.Attributes(),
	})
}

// CreateDBCluster creates a cluster in the client's region.
func (c *Client) CreateDBCluster(ctx context.Context, in *CreateDBClusterInput) *handler.Future[*CreateDBClusterOutput] {
	return handler.Execute(ctx, c.handler, handler.ExecutionParams[*CreateDBClusterInput, *CreateDBClusterOutput]{
		OperationName:   _createDBCluster.Name,
		Input:           in,
		Marshal:         marshaller[*CreateDBClusterInput](c.factory, _createDBCluster),
		ResponseHandler: query.ResultHandler(_createDBCluster.Name, decodeCreateDBCluster),
		ErrorHandler:    query.ErrorHandler(),
		Attributes:      c.cc.Attributes(),
	})
}

func marshaller[T schema.Object](f *query.Factory, op query.OperationInfo) func(T) (*transport.Request, error) {
	m := f.Marshaller(op)
	return func(in T) (*transport.Request, error) {
		return m.Marshal(in)
	}
}
