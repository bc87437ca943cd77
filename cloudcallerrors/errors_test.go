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

package cloudcallerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewf(t *testing.T) {
	assert.Nil(t, Newf(CodeOK, "ok"))

	st := Newf(CodeClient, "region %q not found", "mars-1")
	require.NotNil(t, st)
	assert.Equal(t, CodeClient, st.Code())
	assert.Equal(t, `region "mars-1" not found`, st.Message())
	assert.Equal(t, `code:client message:region "mars-1" not found`, st.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	st := Wrap(CodeTransport, cause, "execution of %s failed", "CopyDBSnapshot")
	require.NotNil(t, st)
	assert.Equal(t, CodeTransport, st.Code())
	assert.True(t, errors.Is(st, cause))
	assert.Equal(t, "execution of CopyDBSnapshot failed: connection reset", st.Message())

	assert.Nil(t, Wrap(CodeTransport, nil, "nothing"))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		desc     string
		give     error
		wantCode Code
	}{
		{desc: "nil", give: nil, wantCode: CodeOK},
		{desc: "plain", give: errors.New("great sadness"), wantCode: CodeUnknown},
		{desc: "status", give: Newf(CodeInternal, "broken"), wantCode: CodeInternal},
		{
			desc:     "wrapped status",
			give:     fmt.Errorf("outer: %w", Newf(CodeUnimplemented, "no")),
			wantCode: CodeUnimplemented,
		},
		{
			desc:     "service error",
			give:     &ServiceError{StatusCode: 404, ErrorCode: "NoSuchKey"},
			wantCode: CodeService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ErrorCode(tt.give))
		})
	}
}

func TestServiceErrorAs(t *testing.T) {
	serr := &ServiceError{StatusCode: 200, ErrorCode: "InternalError", Message: "boom", RequestID: "abc"}
	st := FromError(serr)

	var got *ServiceError
	require.True(t, errors.As(st, &got))
	assert.Equal(t, serr, got)
	assert.Equal(t, "service error InternalError (status 200): boom, request id: abc", serr.Error())
}

func TestServiceErrorRetryable(t *testing.T) {
	assert.True(t, (&ServiceError{StatusCode: 503}).Retryable())
	assert.True(t, (&ServiceError{StatusCode: 400, ErrorCode: "Throttling"}).Retryable())
	assert.True(t, (&ServiceError{StatusCode: 429}).Throttled())
	assert.False(t, (&ServiceError{StatusCode: 404, ErrorCode: "NoSuchKey"}).Retryable())
}

func TestCodeText(t *testing.T) {
	for c, s := range _codeToString {
		text, err := c.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, s, string(text))

		var got Code
		require.NoError(t, got.UnmarshalText([]byte(s)))
		assert.Equal(t, c, got)
	}

	var c Code
	assert.Error(t, c.UnmarshalText([]byte("nope")))
	assert.Equal(t, "42", Code(42).String())
}
