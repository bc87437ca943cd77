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

package mapping

import "go.uber.org/cloudcall/operation"

// Extension rewrites items on their way to and from the store. Either
// hook may be nil. A nil *Extension changes nothing.
type Extension struct {
	BeforeWrite func(item Item, octx operation.Context) (Item, error)
	AfterRead   func(item Item, octx operation.Context) (Item, error)
}

// ChainExtensions combines extensions. BeforeWrite hooks run in the given
// order and AfterRead hooks in reverse order.
func ChainExtensions(exts ...*Extension) *Extension {
	var kept []*Extension
	for _, e := range exts {
		if e != nil {
			kept = append(kept, e)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Extension{
		BeforeWrite: func(item Item, octx operation.Context) (Item, error) {
			var err error
			for _, e := range kept {
				if item, err = e.beforeWrite(item, octx); err != nil {
					return nil, err
				}
			}
			return item, nil
		},
		AfterRead: func(item Item, octx operation.Context) (Item, error) {
			var err error
			for i := len(kept) - 1; i >= 0; i-- {
				if item, err = kept[i].afterRead(item, octx); err != nil {
					return nil, err
				}
			}
			return item, nil
		},
	}
}

func (e *Extension) beforeWrite(item Item, octx operation.Context) (Item, error) {
	if e == nil || e.BeforeWrite == nil {
		return item, nil
	}
	return e.BeforeWrite(item, octx)
}

func (e *Extension) afterRead(item Item, octx operation.Context) (Item, error) {
	if e == nil || e.AfterRead == nil {
		return item, nil
	}
	return e.AfterRead(item, octx)
}
