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

// Package observability logs, counts and traces executions.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/uber-go/tally"
	"go.uber.org/cloudcall/api/attribute"
	"go.uber.org/cloudcall/api/interceptor"
	"go.uber.org/cloudcall/api/transport"
	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/handler"
	"go.uber.org/cloudcall/internal/clock"
	"go.uber.org/zap"
)

const (
	_successfulOutbound = "Made outbound call."
	_errorOutbound      = "Error making outbound call."
	_sendingAttempt     = "Sending attempt."
	_receivedResponse   = "Received response."

	_errorCodeLogKey = "errorCode"
)

var (
	_spanKey  = attribute.NewKey[opentracing.Span]("cloudcall.observability.span")
	_startKey = attribute.NewKey[time.Time]("cloudcall.observability.start")
)

// Config configures an Interceptor. Zero fields fall back to no-op
// implementations.
type Config struct {
	Logger *zap.Logger
	Scope  tally.Scope
	Tracer opentracing.Tracer
	Clock  clock.Clock
}

// Interceptor logs every execution, counts calls, successes and failures
// per operation, and wraps each execution in a client span whose context
// is propagated in the request headers.
type Interceptor struct {
	logger *zap.Logger
	scope  tally.Scope
	tracer opentracing.Tracer
	clock  clock.Clock
}

var (
	_ interceptor.BeforeExecution    = (*Interceptor)(nil)
	_ interceptor.ModifyHTTPRequest  = (*Interceptor)(nil)
	_ interceptor.BeforeTransmission = (*Interceptor)(nil)
	_ interceptor.AfterTransmission  = (*Interceptor)(nil)
	_ interceptor.AfterExecution     = (*Interceptor)(nil)
	_ interceptor.OnExecutionFailure = (*Interceptor)(nil)
)

// NewInterceptor builds an Interceptor.
func NewInterceptor(cfg Config) *Interceptor {
	i := &Interceptor{
		logger: cfg.Logger,
		scope:  cfg.Scope,
		tracer: cfg.Tracer,
		clock:  cfg.Clock,
	}
	if i.logger == nil {
		i.logger = zap.NewNop()
	}
	if i.scope == nil {
		i.scope = tally.NoopScope
	}
	if i.tracer == nil {
		i.tracer = opentracing.NoopTracer{}
	}
	if i.clock == nil {
		i.clock = clock.NewReal()
	}
	return i
}

// BeforeExecution starts the span and the latency measurement.
func (i *Interceptor) BeforeExecution(ctx context.Context, _ interceptor.Context, attrs *attribute.Bag) {
	_startKey.Put(attrs, i.clock.Now())
	i.edge(attrs).Counter("calls").Inc(1)

	op := handler.OperationName.GetOrDefault(attrs, "")
	opts := []opentracing.StartSpanOption{
		ext.SpanKindRPCClient,
		opentracing.Tag{Key: "cloudcall.operation", Value: op},
	}
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	if svc, ok := handler.ServiceName.Get(attrs); ok {
		opts = append(opts, opentracing.Tag{Key: string(ext.PeerService), Value: svc})
	}
	_spanKey.Put(attrs, i.tracer.StartSpan(op, opts...))
}

// ModifyHTTPRequest injects the span context into the request headers.
func (i *Interceptor) ModifyHTTPRequest(_ context.Context, ic interceptor.Context, attrs *attribute.Bag) (*transport.Request, error) {
	span, ok := _spanKey.Get(attrs)
	if !ok {
		return ic.HTTPRequest, nil
	}
	carrier := http.Header{}
	if err := i.tracer.Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(carrier)); err != nil {
		i.logger.Debug("Failed to inject span context.", zap.Error(err))
		return ic.HTTPRequest, nil
	}
	if len(carrier) == 0 {
		return ic.HTTPRequest, nil
	}
	b := ic.HTTPRequest.ToBuilder()
	for k := range carrier {
		b.PutHeader(k, carrier.Get(k))
	}
	return b.Build(), nil
}

// BeforeTransmission counts the attempt.
func (i *Interceptor) BeforeTransmission(_ context.Context, ic interceptor.Context, attrs *attribute.Bag) {
	i.edge(attrs).Counter("attempts").Inc(1)
	attempt := handler.ExecutionAttempt.GetOrDefault(attrs, 0)
	if span, ok := _spanKey.Get(attrs); ok {
		span.LogFields(otlog.Int("attempt", attempt))
	}
	if ce := i.logger.Check(zap.DebugLevel, _sendingAttempt); ce != nil {
		req := ic.HTTPRequest
		ce.Write(append(i.fields(attrs),
			zap.Int("attempt", attempt),
			zap.String("method", req.Method()),
			zap.String("host", req.Endpoint().Host),
			zap.String("requestSize", sizeOf(req.Header("Content-Length"))),
		)...)
	}
}

// AfterTransmission logs the response status.
func (i *Interceptor) AfterTransmission(_ context.Context, ic interceptor.Context, attrs *attribute.Bag) {
	res := ic.HTTPResponse
	if res == nil {
		return
	}
	if span, ok := _spanKey.Get(attrs); ok {
		ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))
	}
	if ce := i.logger.Check(zap.DebugLevel, _receivedResponse); ce != nil {
		ce.Write(append(i.fields(attrs),
			zap.Int("status", res.StatusCode),
			zap.String("responseSize", sizeOf(res.Headers.Get("content-length"))),
		)...)
	}
}

// AfterExecution records a success.
func (i *Interceptor) AfterExecution(_ context.Context, _ interceptor.Context, attrs *attribute.Bag) {
	elapsed := i.elapsed(attrs)
	edge := i.edge(attrs)
	edge.Counter("successes").Inc(1)
	edge.Timer("latency").Record(elapsed)

	i.logger.Debug(_successfulOutbound, append(i.fields(attrs), zap.Duration("latency", elapsed))...)
	if span, ok := _spanKey.Get(attrs); ok {
		span.Finish()
	}
}

// OnExecutionFailure records a failure.
func (i *Interceptor) OnExecutionFailure(_ context.Context, _ interceptor.Context, err error, attrs *attribute.Bag) {
	elapsed := i.elapsed(attrs)
	code := cloudcallerrors.ErrorCode(err)
	edge := i.edge(attrs)
	edge.Tagged(map[string]string{"code": code.String()}).Counter("failures").Inc(1)
	edge.Timer("latency").Record(elapsed)

	i.logger.Error(_errorOutbound, append(i.fields(attrs),
		zap.Duration("latency", elapsed),
		zap.String(_errorCodeLogKey, code.String()),
		zap.Error(err),
	)...)
	if span, ok := _spanKey.Get(attrs); ok {
		ext.Error.Set(span, true)
		span.LogFields(otlog.Error(err))
		span.Finish()
	}
}

func (i *Interceptor) edge(attrs *attribute.Bag) tally.Scope {
	return i.scope.Tagged(map[string]string{
		"service":   handler.ServiceName.GetOrDefault(attrs, "unknown"),
		"operation": handler.OperationName.GetOrDefault(attrs, "unknown"),
	})
}

func (i *Interceptor) fields(attrs *attribute.Bag) []zap.Field {
	return []zap.Field{
		zap.String("service", handler.ServiceName.GetOrDefault(attrs, "")),
		zap.String("operation", handler.OperationName.GetOrDefault(attrs, "")),
	}
}

func (i *Interceptor) elapsed(attrs *attribute.Bag) time.Duration {
	start, ok := _startKey.Get(attrs)
	if !ok {
		return 0
	}
	return i.clock.Now().Sub(start)
}

func sizeOf(contentLength string, ok bool) string {
	if !ok {
		return "unknown"
	}
	n, err := strconv.ParseUint(contentLength, 10, 64)
	if err != nil {
		return "unknown"
	}
	return humanize.Bytes(n)
}
