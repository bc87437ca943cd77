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

// Package awsxml implements the tag-based markup dialect: response
// documents are XML and error documents may arrive with a success status.
package awsxml

import (
	"bytes"

	"github.com/beevik/etree"
	"go.uber.org/cloudcall/cloudcallerrors"
)

// Parse reads body and returns its root element. An empty body has no
// root and is not an error.
func Parse(body []byte) (*etree.Element, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeService, err, "malformed XML response")
	}
	root := doc.Root()
	if root == nil {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeService, "XML response has no root element")
	}
	return root, nil
}

// ChildText returns the text of the element at path below el, and whether
// it exists.
func ChildText(el *etree.Element, path string) (string, bool) {
	if el == nil {
		return "", false
	}
	child := el.FindElement(path)
	if child == nil {
		return "", false
	}
	return child.Text(), true
}
