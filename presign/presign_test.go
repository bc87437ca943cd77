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

package presign

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/schema"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/cloudcall/internal/endpoint"
	"go.uber.org/cloudcall/protocol/query"
)

type copyWidget struct {
	Name         *string
	PresignedURL *string
	SourceRegion *string
}

func (*copyWidget) SchemaFields() []schema.Field {
	return []schema.Field{
		schema.Scalar("Name", schema.KindString, func(c *copyWidget) *string { return c.Name }),
		schema.Scalar("PreSignedUrl", schema.KindString, func(c *copyWidget) *string { return c.PresignedURL }),
		schema.Scalar("SourceRegion", schema.KindString, func(c *copyWidget) *string { return c.SourceRegion }),
	}
}

var _copyWidget = query.OperationInfo{Name: "CopyWidget", APIVersion: "2020-01-01"}

func adaptCopyWidget(c *copyWidget) Presignable {
	return Presignable{
		PresignedURL: c.PresignedURL,
		SourceRegion: c.SourceRegion,
		MarshalQuery: func() (*transport.Request, error) {
			return Placeholder.Marshaller(_copyWidget).MarshalQueryParams(c)
		},
	}
}

func rewriteCopyWidget(c *copyWidget, url string) *copyWidget {
	out := *c
	out.PresignedURL = &url
	out.SourceRegion = nil
	return &out
}

type recordingSigner struct {
	req     *transport.Request
	params  auth.Params
	expires time.Duration
}

func (s *recordingSigner) Sign(_ context.Context, req *transport.Request, _ auth.Params) (*transport.Request, error) {
	return req, nil
}

func (s *recordingSigner) Presign(_ context.Context, req *transport.Request, p auth.Params, expires time.Duration) (string, error) {
	s.req, s.params, s.expires = req, p, expires
	return "https://presigned.example/", nil
}

func str(s string) *string { return &s }

func presignAttrs() *attribute.Bag {
	attrs := attribute.NewBag()
	auth.Credentials.Put(attrs, aws.Credentials{AccessKeyID: "foo", SecretAccessKey: "bar"})
	auth.SigningRegion.Put(attrs, "us-west-2")
	return attrs
}

func TestInterceptorPresigns(t *testing.T) {
	signer := &recordingSigner{}
	at := time.Date(2016, 12, 21, 18, 7, 35, 0, time.UTC)
	i := NewInterceptor("rds", adaptCopyWidget, rewriteCopyWidget,
		WithSigner(signer), WithClock(clock.NewFakeAt(at)), WithExpiry(time.Hour))

	give := &copyWidget{Name: str("w"), SourceRegion: str("us-east-1")}
	got, err := i.ModifyRequest(context.Background(), interceptor.Context{Request: give}, presignAttrs())
	require.NoError(t, err)

	out, ok := got.(*copyWidget)
	require.True(t, ok)
	assert.Equal(t, "https://presigned.example/", *out.PresignedURL)
	assert.Nil(t, out.SourceRegion)
	assert.Nil(t, give.PresignedURL, "original request must not change")

	require.NotNil(t, signer.req)
	assert.Equal(t, http.MethodGet, signer.req.Method())
	assert.Equal(t, "rds.us-east-1.amazonaws.com", signer.req.Endpoint().Host)
	q := signer.req.Query()
	dest, _ := q.Get(DestinationRegionParam)
	assert.Equal(t, "us-west-2", dest)
	assert.False(t, q.Has(SourceRegionParam))
	action, _ := q.Get("Action")
	assert.Equal(t, "CopyWidget", action)
	name, _ := q.Get("Name")
	assert.Equal(t, "w", name)
	assert.Nil(t, signer.req.Content(), "presigned requests carry no body")

	assert.Equal(t, "us-east-1", signer.params.Region)
	assert.Equal(t, "rds", signer.params.Name)
	assert.Equal(t, at, signer.params.Time)
	assert.Equal(t, time.Hour, signer.expires)
}

func TestInterceptorSkips(t *testing.T) {
	tests := []struct {
		desc string
		give interface{}
	}{
		{desc: "other request type", give: "not a copy"},
		{desc: "nil request", give: (*copyWidget)(nil)},
		{desc: "already presigned", give: &copyWidget{SourceRegion: str("us-east-1"), PresignedURL: str("https://x")}},
		{desc: "no source region", give: &copyWidget{}},
		{desc: "empty source region", give: &copyWidget{SourceRegion: str("")}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			signer := &recordingSigner{}
			i := NewInterceptor("rds", adaptCopyWidget, rewriteCopyWidget, WithSigner(signer))
			got, err := i.ModifyRequest(context.Background(), interceptor.Context{Request: tt.give}, presignAttrs())
			require.NoError(t, err)
			assert.Equal(t, tt.give, got)
			assert.Nil(t, signer.req)
		})
	}
}

func TestInterceptorErrors(t *testing.T) {
	tests := []struct {
		desc    string
		attrs   func() *attribute.Bag
		region  string
		wantErr string
	}{
		{
			desc:    "no credentials",
			attrs:   func() *attribute.Bag { b := presignAttrs(); auth.Credentials.Delete(b); return b },
			region:  "us-east-1",
			wantErr: "no credentials to presign rds request with",
		},
		{
			desc:    "no destination",
			attrs:   func() *attribute.Bag { b := presignAttrs(); auth.SigningRegion.Delete(b); return b },
			region:  "us-east-1",
			wantErr: "no destination region to presign rds request for",
		},
		{
			desc:    "unknown source region",
			attrs:   presignAttrs,
			region:  "mars-north-1",
			wantErr: `cannot resolve rds endpoint for unknown region "mars-north-1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			i := NewInterceptor("rds", adaptCopyWidget, rewriteCopyWidget, WithSigner(&recordingSigner{}))
			give := &copyWidget{SourceRegion: str(tt.region)}
			_, err := i.ModifyRequest(context.Background(), interceptor.Context{Request: give}, tt.attrs())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, cloudcallerrors.CodeClient, cloudcallerrors.FromError(err).Code())
		})
	}
}

func TestInterceptorCustomResolver(t *testing.T) {
	signer := &recordingSigner{}
	r := endpoint.NewResolver(map[string]string{"local-1": "example.test"})
	i := NewInterceptor("rds", adaptCopyWidget, rewriteCopyWidget, WithSigner(signer), WithResolver(r))

	_, err := i.ModifyRequest(context.Background(),
		interceptor.Context{Request: &copyWidget{SourceRegion: str("local-1")}}, presignAttrs())
	require.NoError(t, err)
	assert.Equal(t, "rds.local-1.example.test", signer.req.Endpoint().Host)
	assert.Equal(t, DefaultExpiry, signer.expires)
}

func TestInterceptorClockOverrideAttribute(t *testing.T) {
	signer := &recordingSigner{}
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	i := NewInterceptor("rds", adaptCopyWidget, rewriteCopyWidget, WithSigner(signer))

	attrs := presignAttrs()
	auth.ClockOverride.Put(attrs, clock.NewFakeAt(at))
	_, err := i.ModifyRequest(context.Background(),
		interceptor.Context{Request: &copyWidget{SourceRegion: str("eu-west-1")}}, attrs)
	require.NoError(t, err)
	assert.Equal(t, at, signer.params.Time)
}
