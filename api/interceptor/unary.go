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

// Package interceptor defines the per-call-shape client interceptor
// capabilities.
//
// The capability set is closed: unary-unary is the only call shape this
// layer supports. An interceptor registered on a channel must present the
// capability matching the call shape it will see; channel construction
// fails otherwise.
package interceptor

import (
	"context"

	"go.uber.org/arpc/api/transport"
)

// ClientInterceptor marks a value registered as a client interceptor.
//
// The marker is intentionally broad so a channel can accept a mixed,
// ordered sequence of interceptors; each element is validated against the
// capability interfaces (UnaryUnary) eagerly at channel construction, never
// lazily at call time.
type ClientInterceptor interface{}

// UnaryUnary is the unary-unary interception capability.
//
// InterceptUnaryUnary MAY do zero or more of the following: rewrite the
// call details (as a modified copy, never in place), rewrite the request,
// invoke next zero, one, or several times, await or cancel the handles it
// obtains, and return either a handle from next or a raw response value.
//
// An error returned by next or by an awaited handle that the interceptor
// does not handle should be returned unchanged; the chain performs no
// implicit recovery.
//
// Implementations are re-used across calls and MUST be safe for
// concurrent use.
type UnaryUnary interface {
	InterceptUnaryUnary(
		ctx context.Context,
		details *transport.CallDetails,
		request interface{},
		next transport.UnaryContinuation,
	) (transport.UnaryResult, error)
}

// UnaryUnaryFunc adapts a function into a UnaryUnary interceptor.
type UnaryUnaryFunc func(context.Context, *transport.CallDetails, interface{}, transport.UnaryContinuation) (transport.UnaryResult, error)

// InterceptUnaryUnary for UnaryUnaryFunc.
func (f UnaryUnaryFunc) InterceptUnaryUnary(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
	return f(ctx, details, request, next)
}
