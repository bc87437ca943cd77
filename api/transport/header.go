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

package transport

import (
	"net/http"
	"strings"
)

// CanonicalizeHeaderKey canonicalizes the given header key for storage into
// Headers.
func CanonicalizeHeaderKey(k string) string {
	return strings.ToLower(k)
}

// Headers is the transport-level representation of request and response
// headers.
//
//	var headers transport.Headers
//	headers = headers.With("Content-Type", "text/xml")
//	headers = headers.With("Content-Length", "42")
type Headers struct {
	// This representation allows us to make zero-value valid
	items map[string]string
	// original spelling of each key, used when writing to the wire
	originalItems map[string]string
}

// NewHeaders builds a new Headers object.
func NewHeaders() Headers {
	return Headers{}
}

// HeadersFromMap builds a new Headers object from the given map of header
// key-value pairs.
func HeadersFromMap(m map[string]string) Headers {
	var headers Headers
	for k, v := range m {
		headers = headers.With(k, v)
	}
	return headers
}

// HeadersFromHTTP builds Headers from net/http headers, keeping the first
// value of each key.
func HeadersFromHTTP(h http.Header) Headers {
	var headers Headers
	for k, vs := range h {
		if len(vs) > 0 {
			headers = headers.With(k, vs[0])
		}
	}
	return headers
}

// With returns a Headers object with the given key-value pair added to it.
//
// The returned object MAY not point to the same Headers underlying data store
// as the original Headers so the returned Headers MUST always be used instead
// of the original object.
func (h Headers) With(k, v string) Headers {
	if h.items == nil {
		h.items = make(map[string]string)
		h.originalItems = make(map[string]string)
	}
	ck := CanonicalizeHeaderKey(k)
	for ok := range h.originalItems {
		if CanonicalizeHeaderKey(ok) == ck {
			delete(h.originalItems, ok)
		}
	}
	h.items[ck] = v
	h.originalItems[k] = v
	return h
}

// Del deletes the header with the given name.
//
// This is a no-op if the key does not exist.
func (h Headers) Del(k string) {
	ck := CanonicalizeHeaderKey(k)
	delete(h.items, ck)
	for ok := range h.originalItems {
		if CanonicalizeHeaderKey(ok) == ck {
			delete(h.originalItems, ok)
		}
	}
}

// Get retrieves the value associated with the given header name.
func (h Headers) Get(k string) (string, bool) {
	v, ok := h.items[CanonicalizeHeaderKey(k)]
	return v, ok
}

// Len returns the number of headers defined on this object.
func (h Headers) Len() int {
	return len(h.items)
}

// Items returns the underlying map for this Headers object. The returned map
// MUST NOT be changed.
//
// Keys in the map are normalized using CanonicalizeHeaderKey.
func (h Headers) Items() map[string]string {
	return h.items
}

// OriginalItems returns the headers with the spelling they were added with.
// The returned map MUST NOT be changed.
func (h Headers) OriginalItems() map[string]string {
	return h.originalItems
}

// Clone returns a copy of h that does not share storage with it.
func (h Headers) Clone() Headers {
	if h.items == nil {
		return Headers{}
	}
	c := Headers{
		items:         make(map[string]string, len(h.items)),
		originalItems: make(map[string]string, len(h.originalItems)),
	}
	for k, v := range h.items {
		c.items[k] = v
	}
	for k, v := range h.originalItems {
		c.originalItems[k] = v
	}
	return c
}

// ToHTTP converts the headers into net/http headers.
func (h Headers) ToHTTP() http.Header {
	out := make(http.Header, len(h.originalItems))
	for k, v := range h.originalItems {
		out.Set(k, v)
	}
	return out
}
