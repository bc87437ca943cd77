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
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// ContentSHA256Header carries the payload hash S3 requires on signed
// requests.
const ContentSHA256Header = "X-Amz-Content-Sha256"

// objectRequest starts a path-style request for bucket/key.
func objectRequest(endpoint *url.URL, method, bucket, key string) (*transport.RequestBuilder, error) {
	if bucket == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "bucket is required")
	}
	if key == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "key is required")
	}
	return transport.NewRequestBuilder().
		Method(method).
		Endpoint(endpoint).
		EncodedPath("/" + url.PathEscape(bucket) + "/" + escapeKey(key)), nil
}

// escapeKey escapes every segment of key and keeps the slashes.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// withPayload sets body and the headers describing it.
func withPayload(b *transport.RequestBuilder, contentType string, body []byte) *transport.RequestBuilder {
	sum := sha256.Sum256(body)
	b.PutHeader(ContentSHA256Header, hex.EncodeToString(sum[:]))
	if len(body) == 0 {
		return b
	}
	return b.
		PutHeader("Content-Type", contentType).
		PutHeader("Content-Length", strconv.Itoa(len(body))).
		Content(transport.BytesContent(body))
}

func marshalCompleteMultipartUpload(endpoint *url.URL, in *CompleteMultipartUploadInput) (*transport.Request, error) {
	if in == nil {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "cannot marshal nil CompleteMultipartUpload request")
	}
	if in.UploadID == "" {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "upload id is required")
	}
	b, err := objectRequest(endpoint, http.MethodPost, in.Bucket, in.Key)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("CompleteMultipartUpload")
	root.CreateAttr("xmlns", Namespace)
	for _, p := range in.Parts {
		part := root.CreateElement("Part")
		part.CreateElement("ETag").SetText(p.ETag)
		part.CreateElement("PartNumber").SetText(strconv.Itoa(p.PartNumber))
	}
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "writing CompleteMultipartUpload body")
	}

	b.PutQuery("uploadId", in.UploadID)
	return withPayload(b, "application/xml", body).Build(), nil
}

func marshalGetObject(endpoint *url.URL, in *GetObjectInput) (*transport.Request, error) {
	if in == nil {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "cannot marshal nil GetObject request")
	}
	b, err := objectRequest(endpoint, http.MethodGet, in.Bucket, in.Key)
	if err != nil {
		return nil, err
	}
	if in.VersionID != "" {
		b.PutQuery("versionId", in.VersionID)
	}
	if in.Range != "" {
		b.PutHeader("Range", in.Range)
	}
	return withPayload(b, "", nil).Build(), nil
}
