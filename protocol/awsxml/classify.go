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

package awsxml

import "github.com/beevik/etree"

// ErrorInSuccessBodyTag is the root tag of an error document returned with
// a success status.
const ErrorInSuccessBodyTag = "Error"

// Classification is the outcome of Classify.
type Classification struct {
	Success bool

	// ErrorDocument is the element holding the error, if any. It may be nil
	// for failures without a body.
	ErrorDocument *etree.Element
}

// Classify decides whether a reply is a success. A failure status makes the
// whole root the error document. A success status whose root is tagged
// ErrorInSuccessBodyTag is a failure too. Anything else is a success.
func Classify(status int, root *etree.Element) Classification {
	if status < 200 || status >= 300 {
		return Classification{ErrorDocument: root}
	}
	if root != nil && root.Tag == ErrorInSuccessBodyTag {
		return Classification{ErrorDocument: root}
	}
	return Classification{Success: true}
}
