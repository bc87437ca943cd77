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

package s3

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/protocol/awsxml"
)

const _metadataPrefix = "x-amz-meta-"

func header(res *transport.Response, k string) string {
	v, _ := res.Headers.Get(k)
	return v
}

func requestID(res *transport.Response) string {
	return header(res, "x-amz-request-id")
}

func decodeCompleteMultipartUpload(res *transport.Response, root *etree.Element) (*CompleteMultipartUploadOutput, error) {
	if root == nil || root.Tag != "CompleteMultipartUploadResult" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeService, "CompleteMultipartUpload returned an unexpected response")
	}
	out := &CompleteMultipartUploadOutput{
		VersionID: header(res, "x-amz-version-id"),
		RequestID: requestID(res),
	}
	out.Location, _ = awsxml.ChildText(root, "Location")
	out.Bucket, _ = awsxml.ChildText(root, "Bucket")
	out.Key, _ = awsxml.ChildText(root, "Key")
	out.ETag, _ = awsxml.ChildText(root, "ETag")
	return out, nil
}

// decodeGetObject reads object metadata from the response headers. The
// body is left to the transformer.
func decodeGetObject(res *transport.Response, _ []byte) (*GetObjectOutput, error) {
	out := &GetObjectOutput{
		ContentType:  header(res, "Content-Type"),
		ContentRange: header(res, "Content-Range"),
		ETag:         header(res, "ETag"),
		VersionID:    header(res, "x-amz-version-id"),
		RequestID:    requestID(res),
	}
	if v := header(res, "Content-Length"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeService, err, "invalid Content-Length %q", v)
		}
		out.ContentLength = n
	}
	if v := header(res, "Last-Modified"); v != "" {
		t, err := http.ParseTime(v)
		if err != nil {
			return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeService, err, "invalid Last-Modified %q", v)
		}
		out.LastModified = t
	}
	for k, v := range res.Headers.Items() {
		if strings.HasPrefix(k, _metadataPrefix) {
			if out.Metadata == nil {
				out.Metadata = make(map[string]string)
			}
			out.Metadata[strings.TrimPrefix(k, _metadataPrefix)] = v
		}
	}
	return out, nil
}

// BytesTransformer reads an object into memory. Use one per call.
type BytesTransformer struct {
	mu      sync.Mutex
	current *handler.Future[*Object]
	output  *GetObjectOutput
}

var _ handler.ResponseTransformer[*GetObjectOutput, *Object] = (*BytesTransformer)(nil)

// NewBytesTransformer returns a BytesTransformer.
func NewBytesTransformer() *BytesTransformer {
	return &BytesTransformer{}
}

// Prepare implements handler.ResponseTransformer.
func (t *BytesTransformer) Prepare() *handler.Future[*Object] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = handler.NewFuture[*Object]()
	t.output = nil
	return t.current
}

// OnResponse implements handler.ResponseTransformer.
func (t *BytesTransformer) OnResponse(out *GetObjectOutput) {
	t.mu.Lock()
	t.output = out
	t.mu.Unlock()
}

// OnStream implements handler.ResponseTransformer.
func (t *BytesTransformer) OnStream(body io.ReadCloser) {
	defer body.Close()

	t.mu.Lock()
	f, out := t.current, t.output
	t.mu.Unlock()

	b, err := io.ReadAll(body)
	if err != nil {
		f.Fail(cloudcallerrors.Wrap(cloudcallerrors.CodeTransport, err, "reading object"))
		return
	}
	obj := &Object{Body: b}
	if out != nil {
		obj.GetObjectOutput = *out
	}
	f.Resolve(obj)
}

// OnError implements handler.ResponseTransformer.
func (t *BytesTransformer) OnError(err error) error {
	t.mu.Lock()
	f := t.current
	t.mu.Unlock()
	if f != nil {
		f.Fail(err)
	}
	return nil
}
