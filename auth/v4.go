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

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// ExpiresParam is the query parameter carrying a presigned URL's lifetime.
const ExpiresParam = "X-Amz-Expires"

// V4Signer signs with AWS Signature Version 4.
type V4Signer struct {
	signer *v4.Signer
}

var _ Signer = (*V4Signer)(nil)

// NewV4Signer returns a SigV4 signer.
func NewV4Signer() *V4Signer {
	return &V4Signer{signer: v4.NewSigner()}
}

// Sign implements Signer.
func (s *V4Signer) Sign(ctx context.Context, req *transport.Request, p Params) (*transport.Request, error) {
	hreq, hash, err := toHTTP(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.signer.SignHTTP(ctx, p.Credentials, hreq, hash, p.Name, p.Region, p.Time); err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "signing %s request", p.Name)
	}

	b := req.ToBuilder()
	original := req.Headers()
	for k, vs := range hreq.Header {
		if _, ok := original.Get(k); ok || len(vs) == 0 {
			continue
		}
		b.PutHeader(k, vs[0])
	}
	return b.Build(), nil
}

// Presign implements Signer. The lifetime is added to the signed query as
// X-Amz-Expires.
func (s *V4Signer) Presign(ctx context.Context, req *transport.Request, p Params, expires time.Duration) (string, error) {
	req = req.ToBuilder().
		PutQuery(ExpiresParam, strconv.FormatInt(int64(expires/time.Second), 10)).
		Build()
	hreq, hash, err := toHTTP(ctx, req)
	if err != nil {
		return "", err
	}
	uri, _, err := s.signer.PresignHTTP(ctx, p.Credentials, hreq, hash, p.Name, p.Region, p.Time)
	if err != nil {
		return "", cloudcallerrors.Wrap(cloudcallerrors.CodeClient, err, "presigning %s request", p.Name)
	}
	return uri, nil
}

func toHTTP(ctx context.Context, req *transport.Request) (*http.Request, string, error) {
	if err := transport.ValidateRequest(req); err != nil {
		return nil, "", err
	}
	body, err := req.ReadContent()
	if err != nil {
		return nil, "", cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "reading request body")
	}
	sum := sha256.Sum256(body)

	hreq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL().String(), nil)
	if err != nil {
		return nil, "", cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "building request to sign")
	}
	hreq.Header = req.Headers().ToHTTP()
	return hreq, hex.EncodeToString(sum[:]), nil
}
