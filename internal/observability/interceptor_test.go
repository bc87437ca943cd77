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

package observability

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/api/transport/transporttest"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type observed struct {
	logs   *observer.ObservedLogs
	scope  tally.TestScope
	tracer *mocktracer.MockTracer
	clock  *clock.FakeClock
}

func newObserved() (*Interceptor, observed) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := observed{
		logs:   logs,
		scope:  tally.NewTestScope("", nil),
		tracer: mocktracer.New(),
		clock:  clock.NewFake(),
	}
	i := NewInterceptor(Config{
		Logger: zap.New(core),
		Scope:  o.scope,
		Tracer: o.tracer,
		Clock:  o.clock,
	})
	return i, o
}

// slowOutbound advances the clock before answering.
type slowOutbound struct {
	*transporttest.FakeOutbound
	clock *clock.FakeClock
}

func (o slowOutbound) CallAsync(ctx context.Context, req *transport.Request, h transport.ResponseHandler) {
	o.clock.Add(250 * time.Millisecond)
	o.FakeOutbound.CallAsync(ctx, req, h)
}

func run(t *testing.T, i *Interceptor, o observed, reply transporttest.Reply) (*transporttest.FakeOutbound, error) {
	fake := transporttest.NewFakeOutbound(reply)
	h, err := handler.NewAsyncHandler(slowOutbound{FakeOutbound: fake, clock: o.clock}, handler.WithInterceptors(i))
	require.NoError(t, err)

	attrs := attribute.NewBag()
	handler.ServiceName.Put(attrs, "rds")
	p := handler.ExecutionParams[string, string]{
		OperationName: "DescribeDBInstances",
		Input:         "in",
		Attributes:    attrs,
		Marshal: func(string) (*transport.Request, error) {
			return transport.NewRequestBuilder().
				Method("POST").
				Endpoint(&url.URL{Scheme: "https", Host: "rds.us-east-1.amazonaws.com"}).
				PutHeader("Content-Length", "2048").
				Content(transport.BytesContent(make([]byte, 2048))).
				Build(), nil
		},
		ResponseHandler: handler.ResponseHandlerFunc[string](func(_ *transport.Response, body []byte) (string, error) {
			return string(body), nil
		}),
		ErrorHandler: handler.ErrorHandlerFunc(func(*transport.Response, []byte) error {
			return errors.New("request failed")
		}),
	}
	_, err = handler.Execute(context.Background(), h, p).Get(context.Background())
	return fake, err
}

func counter(t *testing.T, s tally.TestScope, name string, tags map[string]string) int64 {
	for _, c := range s.Snapshot().Counters() {
		if c.Name() != name {
			continue
		}
		match := true
		for k, v := range tags {
			if c.Tags()[k] != v {
				match = false
			}
		}
		if match {
			return c.Value()
		}
	}
	t.Fatalf("counter %q with tags %v not found", name, tags)
	return 0
}

func TestInterceptorSuccess(t *testing.T) {
	i, o := newObserved()
	fake, err := run(t, i, o, transporttest.Reply{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Length": "1500000"},
		Body:       "ok",
	})
	require.NoError(t, err)

	edge := map[string]string{"service": "rds", "operation": "DescribeDBInstances"}
	assert.Equal(t, int64(1), counter(t, o.scope, "calls", edge))
	assert.Equal(t, int64(1), counter(t, o.scope, "attempts", edge))
	assert.Equal(t, int64(1), counter(t, o.scope, "successes", edge))

	sent := o.logs.FilterMessage(_sendingAttempt).AllUntimed()
	require.Len(t, sent, 1)
	assert.Equal(t, "2.0 kB", sent[0].ContextMap()["requestSize"])
	assert.Equal(t, int64(1), sent[0].ContextMap()["attempt"])

	received := o.logs.FilterMessage(_receivedResponse).AllUntimed()
	require.Len(t, received, 1)
	assert.Equal(t, "1.5 MB", received[0].ContextMap()["responseSize"])

	done := o.logs.FilterMessage(_successfulOutbound).AllUntimed()
	require.Len(t, done, 1)
	assert.Equal(t, 250*time.Millisecond, done[0].ContextMap()["latency"])

	spans := o.tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "DescribeDBInstances", spans[0].OperationName)
	assert.Equal(t, "rds", spans[0].Tag("peer.service"))
	assert.Equal(t, uint16(200), spans[0].Tag("http.status_code"))
	assert.Nil(t, spans[0].Tag("error"))

	traceID, ok := fake.Requests()[0].Header("mockpfx-ids-traceid")
	assert.True(t, ok, "span context is propagated")
	assert.NotEmpty(t, traceID)
}

func TestInterceptorFailure(t *testing.T) {
	i, o := newObserved()
	_, err := run(t, i, o, transporttest.Reply{StatusCode: 500})
	require.Error(t, err)

	assert.Equal(t, int64(1), counter(t, o.scope, "failures", map[string]string{
		"operation": "DescribeDBInstances",
		"code":      "unknown",
	}))

	failed := o.logs.FilterMessage(_errorOutbound).AllUntimed()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "request failed", failed[0].ContextMap()["error"])

	spans := o.tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, true, spans[0].Tag("error"))
}

func TestInterceptorDefaults(t *testing.T) {
	i := NewInterceptor(Config{})
	attrs := attribute.NewBag()
	req := transport.NewRequestBuilder().
		Method("GET").
		Endpoint(&url.URL{Scheme: "https", Host: "example.com"}).
		Build()

	assert.NotPanics(t, func() {
		i.BeforeExecution(context.Background(), interceptor.Context{}, attrs)
		got, err := i.ModifyHTTPRequest(context.Background(), interceptor.Context{HTTPRequest: req}, attrs)
		require.NoError(t, err)
		assert.Same(t, req, got, "the no-op tracer injects nothing")
		i.AfterExecution(context.Background(), interceptor.Context{}, attrs)
	})
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, "unknown", sizeOf("", false))
	assert.Equal(t, "unknown", sizeOf("lots", true))
	assert.Equal(t, "42 B", sizeOf("42", true))
}
