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

// Package arpc provides the client-side call-interception layer of an
// asynchronous RPC client.
//
// A Channel composes an ordered sequence of client interceptors around a
// unary executor, the transport collaborator that performs the actual
// network attempt. Each interceptor receives the rest of the chain as a
// continuation and may rewrite call details, observe or substitute results,
// retry by invoking the continuation again, or short-circuit the network
// entirely by returning a raw response value.
//
// Whatever the chain does, the application sees a single CallHandle whose
// observable state behaves identically whether zero, one, or many
// interceptors are installed:
//
//	channel, err := arpc.NewChannel(executor,
//		arpc.WithUnaryInterceptors(authInterceptor, retryInterceptor),
//	)
//	if err != nil {
//		return err
//	}
//	call := channel.Unary("/acme.search.Search/Query").Call(ctx, req)
//	response, err := call.Await(ctx)
//
// Interceptor validity is a channel-construction property: registering a
// value that does not present the unary-unary interception capability fails
// NewChannel immediately and is never deferred into a live call.
//
// Streaming call shapes, load balancing and retry policy enforcement are
// outside this layer; retry mechanics (invoking a continuation several
// times, each invocation an independent attempt) are supported so that
// user-supplied interceptors such as retryinterceptor can implement policy.
package arpc
