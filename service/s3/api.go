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
	"time"
)

// Namespace is the XML namespace of S3 documents.
const Namespace = "http://s3.amazonaws.com/doc/2006-03-01/"

// CompletedPart identifies one uploaded part.
type CompletedPart struct {
	ETag       string
	PartNumber int
}

// CompleteMultipartUploadInput assembles previously uploaded parts into an
// object.
type CompleteMultipartUploadInput struct {
	Bucket   string
	Key      string
	UploadID string
	Parts    []CompletedPart
}

// CompleteMultipartUploadOutput describes the assembled object.
type CompleteMultipartUploadOutput struct {
	Location  string
	Bucket    string
	Key       string
	ETag      string
	VersionID string
	RequestID string
}

// GetObjectInput reads an object.
type GetObjectInput struct {
	Bucket    string
	Key       string
	VersionID string
	// Range is an HTTP range, e.g. "bytes=0-99".
	Range string
}

// GetObjectOutput is the metadata of a read object. The content is
// delivered to a response transformer.
type GetObjectOutput struct {
	ContentLength int64
	ContentType   string
	ContentRange  string
	ETag          string
	LastModified  time.Time
	VersionID     string
	Metadata      map[string]string
	RequestID     string
}

// Object is a fully read object.
type Object struct {
	GetObjectOutput

	Body []byte
}
