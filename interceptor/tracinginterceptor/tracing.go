// Copyright (c) 2021 Uber Technologies, Inc.
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

// Package tracinginterceptor provides a client interceptor that wraps every
// attempt in an opentracing span.
package tracinginterceptor

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/arpc/api/transport"
)

// Option customizes the tracing interceptor.
type Option func(*Interceptor)

// WithTracer sets the tracer to start spans from. Defaults to the
// opentracing global tracer.
func WithTracer(tracer opentracing.Tracer) Option {
	return func(i *Interceptor) {
		i.tracer = tracer
	}
}

// Interceptor is a unary-unary client interceptor that starts a client
// span per call, awaits the outcome, and annotates the span with the
// terminal status code before passing the handle through unchanged.
type Interceptor struct {
	tracer opentracing.Tracer
}

// New builds a tracing interceptor.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{tracer: opentracing.GlobalTracer()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InterceptUnaryUnary implements interceptor.UnaryUnary.
func (t *Interceptor) InterceptUnaryUnary(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
	var parent opentracing.SpanContext // ok to be nil
	if parentSpan := opentracing.SpanFromContext(ctx); parentSpan != nil {
		parent = parentSpan.Context()
	}
	span := t.tracer.StartSpan(
		details.Method,
		opentracing.ChildOf(parent),
		opentracing.Tags{
			"rpc.method": details.Method,
		},
	)
	ext.SpanKindRPCClient.Set(span)
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	handle, err := next(ctx, details, request)
	if err != nil {
		updateSpanWithErr(span, err)
		return transport.UnaryResult{}, err
	}

	if _, err := handle.Await(ctx); err != nil {
		updateSpanWithErr(span, err)
	}
	if code, err := handle.Code(ctx); err == nil {
		span.SetTag("rpc.status", code.String())
	}
	return transport.FromCall(handle), nil
}

func updateSpanWithErr(span opentracing.Span, err error) {
	if err != nil {
		span.SetTag("error", true)
		span.LogEvent(err.Error())
	}
}
