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

package rds

import (
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/presign"
)

// SigningName is the name RDS requests are signed for.
const SigningName = "rds"

// CopyDBSnapshotPresigner presigns cross-region CopyDBSnapshot requests.
func CopyDBSnapshotPresigner(opts ...presign.Option) *presign.Interceptor[*CopyDBSnapshotInput] {
	return presign.NewInterceptor(SigningName, adaptCopyDBSnapshot, rewriteCopyDBSnapshot, opts...)
}

// CreateDBClusterPresigner presigns cross-region CreateDBCluster requests.
func CreateDBClusterPresigner(opts ...presign.Option) *presign.Interceptor[*CreateDBClusterInput] {
	return presign.NewInterceptor(SigningName, adaptCreateDBCluster, rewriteCreateDBCluster, opts...)
}

// Presigners returns an interceptor for every presign-eligible operation.
func Presigners(opts ...presign.Option) []interceptor.Interceptor {
	return []interceptor.Interceptor{
		CopyDBSnapshotPresigner(opts...),
		CreateDBClusterPresigner(opts...),
	}
}

func adaptCopyDBSnapshot(in *CopyDBSnapshotInput) presign.Presignable {
	return presign.Presignable{
		PresignedURL: in.PreSignedUrl,
		SourceRegion: in.SourceRegion,
		MarshalQuery: func() (*transport.Request, error) {
			return presign.Placeholder.Marshaller(_copyDBSnapshot).MarshalQueryParams(in)
		},
	}
}

func rewriteCopyDBSnapshot(in *CopyDBSnapshotInput, url string) *CopyDBSnapshotInput {
	out := *in
	out.PreSignedUrl = &url
	out.SourceRegion = nil
	return &out
}

func adaptCreateDBCluster(in *CreateDBClusterInput) presign.Presignable {
	return presign.Presignable{
		PresignedURL: in.PreSignedUrl,
		SourceRegion: in.SourceRegion,
		MarshalQuery: func() (*transport.Request, error) {
			return presign.Placeholder.Marshaller(_createDBCluster).MarshalQueryParams(in)
		},
	}
}

func rewriteCreateDBCluster(in *CreateDBClusterInput, url string) *CreateDBClusterInput {
	out := *in
	out.PreSignedUrl = &url
	out.SourceRegion = nil
	return &out
}
