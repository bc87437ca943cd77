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
	"net/url"
	"strings"
)

// QueryParams is an ordered, multi-valued set of query parameters.
//
// Keys keep the position of their first insertion. The zero value is an
// empty set ready to use.
type QueryParams struct {
	keys   []string
	values map[string][]string
}

// Len returns the number of distinct keys.
func (q QueryParams) Len() int {
	return len(q.keys)
}

// Keys returns the keys in insertion order.
func (q QueryParams) Keys() []string {
	return append([]string(nil), q.keys...)
}

// Get returns the first value for k.
func (q QueryParams) Get(k string) (string, bool) {
	vs, ok := q.values[k]
	if !ok || len(vs) == 0 {
		return "", ok
	}
	return vs[0], true
}

// Values returns every value for k.
func (q QueryParams) Values(k string) []string {
	return append([]string(nil), q.values[k]...)
}

// Has reports whether k is present.
func (q QueryParams) Has(k string) bool {
	_, ok := q.values[k]
	return ok
}

// Put replaces the values of k. A new key is appended at the end. Put with
// no values removes k.
func (q *QueryParams) Put(k string, vs ...string) {
	if len(vs) == 0 {
		q.Remove(k)
		return
	}
	if q.values == nil {
		q.values = make(map[string][]string)
	}
	if _, ok := q.values[k]; !ok {
		q.keys = append(q.keys, k)
	}
	q.values[k] = append([]string(nil), vs...)
}

// Append adds v to the values of k.
func (q *QueryParams) Append(k, v string) {
	if q.values == nil {
		q.values = make(map[string][]string)
	}
	if _, ok := q.values[k]; !ok {
		q.keys = append(q.keys, k)
	}
	q.values[k] = append(q.values[k], v)
}

// Remove deletes k and its values.
func (q *QueryParams) Remove(k string) {
	if _, ok := q.values[k]; !ok {
		return
	}
	delete(q.values, k)
	for i, key := range q.keys {
		if key == k {
			q.keys = append(q.keys[:i:i], q.keys[i+1:]...)
			break
		}
	}
}

// Clear removes every parameter.
func (q *QueryParams) Clear() {
	q.keys = nil
	q.values = nil
}

// Clone returns a copy of q that does not share storage with it.
func (q QueryParams) Clone() QueryParams {
	if len(q.keys) == 0 {
		return QueryParams{}
	}
	c := QueryParams{
		keys:   append([]string(nil), q.keys...),
		values: make(map[string][]string, len(q.values)),
	}
	for k, vs := range q.values {
		c.values[k] = append([]string(nil), vs...)
	}
	return c
}

// Encode renders the parameters as "k1=v1&k1=v2&k2=v3" in insertion order.
// Keys and values are percent-encoded, spaces as %20.
func (q QueryParams) Encode() string {
	var sb strings.Builder
	for _, k := range q.keys {
		ek := EscapeQuery(k)
		for _, v := range q.values[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(ek)
			sb.WriteByte('=')
			sb.WriteString(EscapeQuery(v))
		}
	}
	return sb.String()
}

// EscapeQuery percent-encodes s leaving only unreserved characters
// (A-Z a-z 0-9 - _ . ~) as is.
func EscapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
