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

package handler

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/api/transport/transporttest"
	"go.uber.org/cloudcall/auth"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

type echoRequest struct {
	Name string
}

func marshalEcho(r echoRequest) (*transport.Request, error) {
	if r.Name == "" {
		return nil, errors.New("name is required")
	}
	return transport.NewRequestBuilder().
		Method("GET").
		Endpoint(&url.URL{Scheme: "https", Host: "echo.us-east-1.amazonaws.com"}).
		PutQuery("Name", r.Name).
		Build(), nil
}

var bodyHandler = ResponseHandlerFunc[string](func(_ *transport.Response, body []byte) (string, error) {
	return string(body), nil
})

var statusErrorHandler = ErrorHandlerFunc(func(res *transport.Response, body []byte) error {
	return &cloudcallerrors.ServiceError{StatusCode: res.StatusCode, ErrorCode: "Boom", Message: string(body)}
})

func echoParams(name string) ExecutionParams[echoRequest, string] {
	return ExecutionParams[echoRequest, string]{
		OperationName:   "Echo",
		Input:           echoRequest{Name: name},
		Marshal:         marshalEcho,
		ResponseHandler: bodyHandler,
		ErrorHandler:    statusErrorHandler,
	}
}

func newTestHandler(t *testing.T, out transport.AsyncOutbound, opts ...Option) *AsyncHandler {
	h, err := NewAsyncHandler(out, opts...)
	require.NoError(t, err)
	return h
}

type hookRecorder struct {
	mu  sync.Mutex
	log []string
}

func (r *hookRecorder) add(s string) {
	r.mu.Lock()
	r.log = append(r.log, s)
	r.mu.Unlock()
}

func (r *hookRecorder) BeforeExecution(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("beforeExecution")
}

func (r *hookRecorder) ModifyRequest(_ context.Context, ic interceptor.Context, _ *attribute.Bag) (interface{}, error) {
	r.add("modifyRequest")
	return ic.Request, nil
}

func (r *hookRecorder) BeforeMarshalling(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("beforeMarshalling")
}

func (r *hookRecorder) AfterMarshalling(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("afterMarshalling")
}

func (r *hookRecorder) ModifyHTTPRequest(_ context.Context, ic interceptor.Context, _ *attribute.Bag) (*transport.Request, error) {
	r.add("modifyHTTPRequest")
	return ic.HTTPRequest, nil
}

func (r *hookRecorder) ModifyHTTPContent(_ context.Context, ic interceptor.Context, _ *attribute.Bag) (transport.ContentProvider, error) {
	r.add("modifyHTTPContent")
	return ic.RequestBody, nil
}

func (r *hookRecorder) BeforeTransmission(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("beforeTransmission")
}

func (r *hookRecorder) AfterTransmission(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("afterTransmission")
}

func (r *hookRecorder) ModifyHTTPResponse(_ context.Context, ic interceptor.Context, _ *attribute.Bag) (*transport.Response, error) {
	r.add("modifyHTTPResponse")
	return ic.HTTPResponse, nil
}

func (r *hookRecorder) AfterUnmarshalling(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("afterUnmarshalling")
}

func (r *hookRecorder) ModifyResponse(_ context.Context, ic interceptor.Context, _ *attribute.Bag) (interface{}, error) {
	r.add("modifyResponse")
	return ic.Response, nil
}

func (r *hookRecorder) AfterExecution(context.Context, interceptor.Context, *attribute.Bag) {
	r.add("afterExecution")
}

func (r *hookRecorder) OnExecutionFailure(context.Context, interceptor.Context, error, *attribute.Bag) {
	r.add("onExecutionFailure")
}

func TestExecuteHookOrder(t *testing.T) {
	rec := &hookRecorder{}
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 200, Body: "hi"})
	h := newTestHandler(t, out, WithInterceptors(rec))

	got, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, []string{
		"beforeExecution",
		"modifyRequest",
		"beforeMarshalling",
		"afterMarshalling",
		"modifyHTTPRequest",
		"modifyHTTPContent",
		"beforeTransmission",
		"afterTransmission",
		"modifyHTTPResponse",
		"afterUnmarshalling",
		"modifyResponse",
		"afterExecution",
	}, rec.log)

	reqs := out.Requests()
	require.Len(t, reqs, 1)
	name, _ := reqs[0].Query().Get("Name")
	assert.Equal(t, "bob", name)
}

func TestExecuteErrorResponse(t *testing.T) {
	rec := &hookRecorder{}
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 400, Body: "bad"})
	h := newTestHandler(t, out, WithInterceptors(rec))

	_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
	require.Error(t, err)

	var se *cloudcallerrors.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.StatusCode)
	assert.Equal(t, "bad", se.Message)
	assert.Equal(t, cloudcallerrors.CodeService, cloudcallerrors.ErrorCode(err))
	assert.Equal(t, "onExecutionFailure", rec.log[len(rec.log)-1])
	assert.NotContains(t, rec.log, "afterUnmarshalling")
}

func TestExecuteCombinedHandler(t *testing.T) {
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 200, Body: "<Error/>"})
	h := newTestHandler(t, out)

	p := echoParams("bob")
	p.ResponseHandler, p.ErrorHandler = nil, nil
	p.CombinedHandler = CombinedHandlerFunc[string](func(res *transport.Response, body []byte) (string, error) {
		if string(body) == "<Error/>" {
			return "", &cloudcallerrors.ServiceError{StatusCode: res.StatusCode, ErrorCode: "InternalError"}
		}
		return string(body), nil
	})

	_, err := Execute(context.Background(), h, p).Get(context.Background())
	var se *cloudcallerrors.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "InternalError", se.ErrorCode)
}

func TestExecuteMarshalFailureDoesNotTransmit(t *testing.T) {
	rec := &hookRecorder{}
	out := transporttest.NewFakeOutbound()
	h := newTestHandler(t, out, WithInterceptors(rec))

	f := Execute(context.Background(), h, echoParams(""))
	select {
	case <-f.Done():
	default:
		t.Fatal("marshalling failure must resolve the future immediately")
	}
	_, err := f.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeInvalidArgument, cloudcallerrors.ErrorCode(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Empty(t, out.Requests())
	assert.NotContains(t, rec.log, "beforeTransmission")
	assert.Contains(t, rec.log, "onExecutionFailure")
}

func TestExecuteParamValidation(t *testing.T) {
	h := newTestHandler(t, transporttest.NewFakeOutbound())

	tests := []struct {
		desc    string
		give    func(p *ExecutionParams[echoRequest, string])
		wantErr string
	}{
		{
			desc:    "no handlers",
			give:    func(p *ExecutionParams[echoRequest, string]) { p.ResponseHandler = nil },
			wantErr: "needs a combined handler or both a response and an error handler",
		},
		{
			desc:    "no marshaller",
			give:    func(p *ExecutionParams[echoRequest, string]) { p.Marshal = nil },
			wantErr: "has no marshaller",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := echoParams("bob")
			tt.give(&p)
			_, err := Execute(context.Background(), h, p).Get(context.Background())
			require.Error(t, err)
			assert.Equal(t, cloudcallerrors.CodeInvalidArgument, cloudcallerrors.ErrorCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAsyncHandlerRejectsNonInterceptor(t *testing.T) {
	_, err := NewAsyncHandler(transporttest.NewFakeOutbound(), WithInterceptors("not an interceptor"))
	require.Error(t, err)

	_, err = NewAsyncHandler(nil)
	require.Error(t, err)
}

type requestReplacer struct{ with interface{} }

func (r requestReplacer) ModifyRequest(context.Context, interceptor.Context, *attribute.Bag) (interface{}, error) {
	return r.with, nil
}

func TestExecuteModifyRequest(t *testing.T) {
	t.Run("replacement is marshalled", func(t *testing.T) {
		out := transporttest.NewFakeOutbound()
		h := newTestHandler(t, out, WithInterceptors(requestReplacer{echoRequest{Name: "alice"}}))
		_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
		require.NoError(t, err)
		name, _ := out.Requests()[0].Query().Get("Name")
		assert.Equal(t, "alice", name)
	})

	t.Run("wrong type", func(t *testing.T) {
		out := transporttest.NewFakeOutbound()
		h := newTestHandler(t, out, WithInterceptors(requestReplacer{42}))
		_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
		require.Error(t, err)
		assert.Equal(t, cloudcallerrors.CodeInternal, cloudcallerrors.ErrorCode(err))
		assert.Empty(t, out.Requests())
	})
}

type bodyOverride string

func (b bodyOverride) ModifyHTTPContent(context.Context, interceptor.Context, *attribute.Bag) (transport.ContentProvider, error) {
	return transport.BytesContent([]byte(b)), nil
}

func TestExecuteFoldsBodyOverride(t *testing.T) {
	out := transporttest.NewFakeOutbound()
	h := newTestHandler(t, out, WithInterceptors(bodyOverride("override")))
	_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
	require.NoError(t, err)

	body, err := out.Requests()[0].ReadContent()
	require.NoError(t, err)
	assert.Equal(t, "override", string(body))
}

func TestExecuteSetsAttributes(t *testing.T) {
	var seen *attribute.Bag
	capture := beforeTransmissionFunc(func(attrs *attribute.Bag) { seen = attrs })
	h := newTestHandler(t, transporttest.NewFakeOutbound(), WithInterceptors(capture))

	seed := attribute.NewBag()
	ServiceName.Put(seed, "echo")
	p := echoParams("bob")
	p.Attributes = seed
	p.FullDuplex = true

	_, err := Execute(context.Background(), h, p).Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, seen)

	op, _ := OperationName.Get(seen)
	assert.Equal(t, "Echo", op)
	svc, _ := ServiceName.Get(seen)
	assert.Equal(t, "echo", svc)
	attempt, _ := ExecutionAttempt.Get(seen)
	assert.Equal(t, 1, attempt)
	duplex, _ := IsFullDuplex.Get(seen)
	assert.True(t, duplex)

	_, ok := OperationName.Get(seed)
	assert.False(t, ok, "seed bag must not be modified")
}

type beforeTransmissionFunc func(*attribute.Bag)

func (f beforeTransmissionFunc) BeforeTransmission(_ context.Context, _ interceptor.Context, attrs *attribute.Bag) {
	f(attrs)
}

func TestExecuteSignsEachAttempt(t *testing.T) {
	out := transporttest.NewFakeOutbound(
		transporttest.Reply{Err: errors.New("connection reset")},
		transporttest.Reply{StatusCode: 200},
	)
	clk := clock.NewFakeAt(time.Date(2016, 12, 21, 18, 7, 35, 0, time.UTC))
	policy, err := MaxAttempts(2)
	require.NoError(t, err)
	h := newTestHandler(t, out,
		WithSigner(auth.NewV4Signer()),
		WithRetryPolicy(policy),
		WithClock(clk),
	)

	attrs := attribute.NewBag()
	auth.Credentials.Put(attrs, aws.Credentials{AccessKeyID: "foo", SecretAccessKey: "bar"})
	auth.SigningRegion.Put(attrs, "us-east-1")
	auth.SigningName.Put(attrs, "echo")
	p := echoParams("bob")
	p.Attributes = attrs

	f := Execute(context.Background(), h, p)
	clk.Add(0)
	_, err = f.Get(context.Background())
	require.NoError(t, err)

	reqs := out.Requests()
	require.Len(t, reqs, 2)
	for _, req := range reqs {
		authz, ok := req.Header("Authorization")
		require.True(t, ok)
		assert.Contains(t, authz, "Credential=foo/20161221/us-east-1/echo/aws4_request")
	}
}

func TestExecuteSigningNeedsCredentials(t *testing.T) {
	out := transporttest.NewFakeOutbound()
	h := newTestHandler(t, out, WithSigner(auth.NewV4Signer()))
	_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeClient, cloudcallerrors.ErrorCode(err))
	assert.Empty(t, out.Requests())
}

func TestExecuteRetries(t *testing.T) {
	tests := []struct {
		desc         string
		replies      []transporttest.Reply
		attempts     int
		wantRequests int
		want         string
		wantCode     cloudcallerrors.Code
	}{
		{
			desc: "throttled then ok",
			replies: []transporttest.Reply{
				{StatusCode: 429, Body: "slow down"},
				{StatusCode: 200, Body: "ok"},
			},
			attempts:     3,
			wantRequests: 2,
			want:         "ok",
		},
		{
			desc: "server errors exhaust attempts",
			replies: []transporttest.Reply{
				{StatusCode: 503},
			},
			attempts:     3,
			wantRequests: 3,
			wantCode:     cloudcallerrors.CodeService,
		},
		{
			desc: "client errors are not retried",
			replies: []transporttest.Reply{
				{StatusCode: 400},
			},
			attempts:     3,
			wantRequests: 1,
			wantCode:     cloudcallerrors.CodeService,
		},
		{
			desc: "transport errors are retried",
			replies: []transporttest.Reply{
				{Err: errors.New("connection refused")},
				{StatusCode: 200, Body: "ok"},
			},
			attempts:     2,
			wantRequests: 2,
			want:         "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			clk := clock.NewFake()
			policy, err := MaxAttempts(tt.attempts, RetryDelay(time.Second))
			require.NoError(t, err)
			out := transporttest.NewFakeOutbound(tt.replies...)
			h := newTestHandler(t, out, WithRetryPolicy(policy), WithClock(clk))

			f := Execute(context.Background(), h, echoParams("bob"))
			for i := 0; i < tt.attempts; i++ {
				clk.Add(time.Second)
			}

			got, err := f.Get(context.Background())
			assert.Len(t, out.Requests(), tt.wantRequests)
			if tt.wantCode != cloudcallerrors.CodeOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, cloudcallerrors.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	cause := errors.New("connection reset by peer")
	out := transporttest.NewFakeOutbound(transporttest.Reply{Err: cause})
	h := newTestHandler(t, out)

	_, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeTransport, cloudcallerrors.ErrorCode(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "executing Echo")
}

func TestExecuteConcurrent(t *testing.T) {
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 200, Body: "ok"})
	rec := &hookRecorder{}
	h := newTestHandler(t, out, WithInterceptors(rec))

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			got, err := Execute(context.Background(), h, echoParams("bob")).Get(context.Background())
			if err != nil {
				return err
			}
			if got != "ok" {
				return errors.New("unexpected result " + got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, out.Requests(), 50)
}

// streamCollector is a ResponseTransformer that reads the stream into a
// string.
type streamCollector struct {
	mu        sync.Mutex
	prepares  int
	responses []string
	errs      []error
	current   *Future[string]
	onError   error
}

func (c *streamCollector) Prepare() *Future[string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepares++
	c.current = NewFuture[string]()
	return c.current
}

func (c *streamCollector) OnResponse(resp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
}

func (c *streamCollector) OnStream(body io.ReadCloser) {
	defer body.Close()
	b, err := io.ReadAll(body)
	c.mu.Lock()
	f := c.current
	c.mu.Unlock()
	if err != nil {
		f.Fail(err)
		return
	}
	f.Resolve(string(b))
}

func (c *streamCollector) OnError(err error) error {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	f := c.current
	c.mu.Unlock()
	f.Fail(err)
	return c.onError
}

func (c *streamCollector) errCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

var statusHandler = ResponseHandlerFunc[string](func(res *transport.Response, body []byte) (string, error) {
	if body != nil {
		return "", errors.New("streaming responses must not be buffered")
	}
	v, _ := res.Headers.Get("x-object-type")
	return v, nil
})

func streamParams() ExecutionParams[echoRequest, string] {
	p := echoParams("bob")
	p.ResponseHandler = statusHandler
	return p
}

func TestExecuteStreaming(t *testing.T) {
	out := transporttest.NewFakeOutbound(transporttest.Reply{
		StatusCode: 200,
		Headers:    map[string]string{"X-Object-Type": "text"},
		Body:       "streamed payload",
	})
	h := newTestHandler(t, out)
	c := &streamCollector{}

	got, err := ExecuteStreaming(context.Background(), h, streamParams(), c).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "streamed payload", got)
	assert.Equal(t, []string{"text"}, c.responses)
	assert.Equal(t, 1, c.prepares)
}

func TestExecuteStreamingRejectsCombinedHandler(t *testing.T) {
	out := transporttest.NewFakeOutbound()
	h := newTestHandler(t, out)
	p := streamParams()
	p.CombinedHandler = Combine[string](bodyHandler, statusErrorHandler)

	c := &streamCollector{}
	_, err := ExecuteStreaming(context.Background(), h, p, c).Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeInvalidArgument, cloudcallerrors.ErrorCode(err))
	assert.Empty(t, out.Requests())
	assert.Equal(t, 0, c.prepares)
}

func TestExecuteStreamingPreparesOncePerAttempt(t *testing.T) {
	out := transporttest.NewFakeOutbound(
		transporttest.Reply{Err: errors.New("connection reset")},
		transporttest.Reply{StatusCode: 200, Body: "second time lucky"},
	)
	clk := clock.NewFake()
	policy, err := MaxAttempts(2)
	require.NoError(t, err)
	h := newTestHandler(t, out, WithRetryPolicy(policy), WithClock(clk))
	c := &streamCollector{}

	f := ExecuteStreaming(context.Background(), h, streamParams(), c)
	clk.Add(0)

	got, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", got)
	assert.Equal(t, 2, c.prepares)
	assert.Equal(t, 1, c.errCount())
}

func TestExecuteStreamingErrorResponse(t *testing.T) {
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 404, Body: "no such key"})
	h := newTestHandler(t, out)
	c := &streamCollector{}

	_, err := ExecuteStreaming(context.Background(), h, streamParams(), c).Get(context.Background())
	var se *cloudcallerrors.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "no such key", se.Message)
	assert.Equal(t, 1, c.errCount(), "prepared resources must be released")
}

func TestExecuteStreamingForwardsTransportFailureOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cause := errors.New("connection reset by peer")
	out := transporttest.NewFakeOutbound(transporttest.Reply{Err: cause})
	h := newTestHandler(t, out, WithLogger(zap.New(core)))
	c := &streamCollector{onError: errors.New("handler cleanup failed")}

	f := ExecuteStreaming(context.Background(), h, streamParams(), c)
	_, err := f.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, cloudcallerrors.CodeTransport, cloudcallerrors.ErrorCode(err))
	assert.True(t, errors.Is(err, cause))
	assert.NotContains(t, err.Error(), "handler cleanup failed")

	assert.Equal(t, 1, c.errCount())
	entries := logs.FilterMessage("response handler failed while reporting an execution failure").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "handler cleanup failed", entries[0].ContextMap()["error"])

	assert.False(t, f.Fail(errors.New("late")), "the future resolves exactly once")
	_, err = f.Get(context.Background())
	assert.True(t, errors.Is(err, cause))
}

type httpResponseRejecter struct{ err error }

func (r httpResponseRejecter) ModifyHTTPResponse(context.Context, interceptor.Context, *attribute.Bag) (*transport.Response, error) {
	return nil, r.err
}

type failingSigner struct{ err error }

func (s failingSigner) Sign(context.Context, *transport.Request, auth.Params) (*transport.Request, error) {
	return nil, s.err
}

func (s failingSigner) Presign(context.Context, *transport.Request, auth.Params, time.Duration) (string, error) {
	return "", s.err
}

func TestExecuteStreamingReleasesHandlerOnAttemptFailure(t *testing.T) {
	cause := errors.New("rejected")
	tests := []struct {
		desc  string
		opts  []Option
		reply transporttest.Reply
		sent  int
	}{
		{
			desc:  "response hook",
			opts:  []Option{WithInterceptors(httpResponseRejecter{cause})},
			reply: transporttest.Reply{StatusCode: 200, Body: "never read"},
			sent:  1,
		},
		{
			desc:  "signer",
			opts:  []Option{WithSigner(failingSigner{cause})},
			reply: transporttest.Reply{StatusCode: 200},
			sent:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			out := transporttest.NewFakeOutbound(tt.reply)
			h := newTestHandler(t, out, tt.opts...)
			c := &streamCollector{}

			p := streamParams()
			p.Attributes = attribute.NewBag()
			auth.Credentials.Put(p.Attributes, aws.Credentials{AccessKeyID: "foo", SecretAccessKey: "bar"})
			auth.SigningRegion.Put(p.Attributes, "us-east-1")
			auth.SigningName.Put(p.Attributes, "echo")

			_, err := ExecuteStreaming(context.Background(), h, p, c).Get(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, cause))
			assert.Len(t, out.Requests(), tt.sent)
			assert.Equal(t, 1, c.prepares)
			assert.Equal(t, 1, c.errCount(), "prepared resources must be released")
		})
	}
}

func TestExecuteCancelledDuringRetryDelay(t *testing.T) {
	out := transporttest.NewFakeOutbound(
		transporttest.Reply{Err: errors.New("connection reset")},
		transporttest.Reply{StatusCode: 200, Body: "too late"},
	)
	clk := clock.NewFake()
	policy, err := MaxAttempts(2, RetryDelay(time.Second))
	require.NoError(t, err)
	rec := &hookRecorder{}
	h := newTestHandler(t, out, WithRetryPolicy(policy), WithClock(clk), WithInterceptors(rec))
	c := &streamCollector{}

	f := ExecuteStreaming(context.Background(), h, streamParams(), c)
	require.Equal(t, 1, clk.Pending(), "retry must be scheduled")
	assert.True(t, f.Cancel())
	clk.Add(time.Second)

	_, err = f.Get(context.Background())
	assert.Equal(t, cloudcallerrors.CodeCancelled, cloudcallerrors.ErrorCode(err))
	assert.Len(t, out.Requests(), 1, "a cancelled execution must not transmit again")
	assert.Equal(t, 0, clk.Pending())
	assert.Equal(t, 1, c.prepares)
	assert.Equal(t, 1, c.errCount())
	assert.Equal(t, "onExecutionFailure", rec.log[len(rec.log)-1])
	assert.Equal(t, 1, countOf(rec.log, "beforeTransmission"))
}

func countOf(log []string, s string) int {
	n := 0
	for _, l := range log {
		if l == s {
			n++
		}
	}
	return n
}

// hangingOutbound never answers until the call is cancelled.
type hangingOutbound struct {
	called chan struct{}
}

func (o hangingOutbound) CallAsync(ctx context.Context, _ *transport.Request, h transport.ResponseHandler) {
	close(o.called)
	go func() {
		<-ctx.Done()
		h.OnError(ctx.Err())
	}()
}

func TestFutureCancelReleasesHandler(t *testing.T) {
	out := hangingOutbound{called: make(chan struct{})}
	h := newTestHandler(t, out)
	c := &streamCollector{}

	f := ExecuteStreaming(context.Background(), h, streamParams(), c)
	<-out.called
	assert.True(t, f.Cancel())
	assert.False(t, f.Cancel())

	_, err := f.Get(context.Background())
	assert.Equal(t, cloudcallerrors.CodeCancelled, cloudcallerrors.ErrorCode(err))

	assert.Eventually(t, func() bool { return c.errCount() == 1 }, time.Second, time.Millisecond)
}

func TestSyncCall(t *testing.T) {
	out := transporttest.NewFakeOutbound(transporttest.Reply{StatusCode: 200, Body: "sync"})
	h, err := NewSyncHandler(out)
	require.NoError(t, err)

	got, err := Call(context.Background(), h, echoParams("bob"))
	require.NoError(t, err)
	assert.Equal(t, "sync", got)

	_, err = NewSyncHandler(nil)
	require.Error(t, err)
}
