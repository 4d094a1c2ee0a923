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

package arpc

import (
	"context"
	"time"

	"go.uber.org/arpc/api/transport"
)

// CallOption defines per-call overrides that may be passed in at call
// sites.
type CallOption interface {
	apply(*callOptions)
}

type callOptionFunc func(*callOptions)

func (f callOptionFunc) apply(opts *callOptions) { f(opts) }

type callOptions struct {
	timeout     *time.Duration
	metadata    transport.Metadata
	credentials transport.CallCredentials
}

// WithTimeout sets the local deadline for the call, enforced by the
// executor. Interceptors may shorten or remove it for individual attempts.
func WithTimeout(timeout time.Duration) CallOption {
	return callOptionFunc(func(opts *callOptions) {
		opts.timeout = &timeout
	})
}

// WithMetadata attaches outbound metadata to the call.
func WithMetadata(md transport.Metadata) CallOption {
	return callOptionFunc(func(opts *callOptions) {
		opts.metadata = md
	})
}

// WithCredentials attaches per-call credentials, carried through the chain
// opaquely and consumed by the executor.
func WithCredentials(creds transport.CallCredentials) CallOption {
	return callOptionFunc(func(opts *callOptions) {
		opts.credentials = creds
	})
}

// UnaryMulticallable issues unary calls for a single method through its
// channel's interceptor chain.
type UnaryMulticallable struct {
	channel *Channel
	method  string
}

// Call starts a unary call and returns its handle immediately; the attempt
// proceeds in the background.
//
// The given context parents the whole call: cancelling it cancels the call
// the same way CallHandle.Cancel does. The handle's own accessor methods
// take their own context to bound each wait independently.
func (m *UnaryMulticallable) Call(ctx context.Context, request interface{}, opts ...CallOption) transport.CallHandle {
	var options callOptions
	for _, opt := range opts {
		opt.apply(&options)
	}

	details := transport.NewCallDetails(m.method)
	if options.timeout != nil {
		details = details.WithTimeout(*options.timeout)
	}
	if options.metadata != nil {
		details = details.WithMetadata(options.metadata)
	}
	if options.credentials != nil {
		details = details.WithCredentials(options.credentials)
	}

	return newInterceptedCall(ctx, m.channel, details, request)
}
