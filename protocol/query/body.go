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

package query

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/handler"
)

// FormContentType is the content type of relocated parameters.
const FormContentType = "application/x-www-form-urlencoded; charset=utf-8"

// MoveParamsToBody moves the query parameters of a POST request without a
// body into a form-encoded body. Any other request is returned unchanged,
// so applying it twice is the same as applying it once.
func MoveParamsToBody(req *transport.Request) *transport.Request {
	if !shouldMoveParams(req) {
		return req
	}
	body := []byte(encodeForm(req.Query()))
	return req.ToBuilder().
		ClearQuery().
		Content(transport.BytesContent(body)).
		PutHeader("Content-Length", strconv.Itoa(len(body))).
		PutHeader("Content-Type", FormContentType).
		Build()
}

func shouldMoveParams(req *transport.Request) bool {
	return req != nil &&
		req.Method() == http.MethodPost &&
		req.Content() == nil &&
		req.Query().Len() > 0
}

func encodeForm(q transport.QueryParams) string {
	var sb strings.Builder
	for _, k := range q.Keys() {
		for _, v := range q.Values(k) {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

// ParamsToBodyInterceptor applies MoveParamsToBody to the wire request of
// query-family calls. Calls whose handler.Protocol attribute names another
// protocol are left alone.
type ParamsToBodyInterceptor struct{}

var _ interceptor.ModifyHTTPRequest = ParamsToBodyInterceptor{}

// ModifyHTTPRequest implements interceptor.ModifyHTTPRequest.
func (ParamsToBodyInterceptor) ModifyHTTPRequest(_ context.Context, ic interceptor.Context, attrs *attribute.Bag) (*transport.Request, error) {
	if p, ok := handler.Protocol.Get(attrs); ok && p != handler.ProtocolQuery && p != handler.ProtocolEC2 {
		return ic.HTTPRequest, nil
	}
	return MoveParamsToBody(ic.HTTPRequest), nil
}
