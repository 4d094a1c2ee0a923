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

package transport

import "context"

// UnaryExecutor performs the actual network attempt for a unary call.
//
// Execute returns a live CallHandle promptly; the attempt proceeds in the
// background and the handle eventually reaches a terminal status. The
// executor owns deadline enforcement: when CallDetails.Timeout is set it
// must produce a CodeDeadlineExceeded terminal status if the attempt does
// not complete in time.
//
// Executors MUST be safe for concurrent use; a single executor backs every
// attempt issued through a channel, including concurrent retries.
type UnaryExecutor interface {
	Execute(ctx context.Context, details *CallDetails, request interface{}) (CallHandle, error)
}

// UnaryContinuation is the rest of an interceptor chain, exposed to each
// interceptor as a callable: either the next interceptor's entry point or,
// for the last interceptor, the executor's entry point.
//
// A continuation may be invoked zero times (the interceptor fabricates a
// result), once (normal pass-through), or more than once (retry); each
// invocation starts an independent attempt with its own CallHandle.
type UnaryContinuation func(ctx context.Context, details *CallDetails, request interface{}) (CallHandle, error)

// UnaryResult is the tagged outcome of one interceptor frame: either a live
// CallHandle obtained from the continuation, or a raw response value
// fabricated without touching the network.
//
// The chain normalizes a raw response into a value-backed CallHandle
// immediately, so upstream frames never branch on which variant occurred.
type UnaryResult struct {
	call     CallHandle
	response interface{}
	raw      bool
}

// FromCall builds a UnaryResult from a live CallHandle.
func FromCall(call CallHandle) UnaryResult {
	return UnaryResult{call: call}
}

// FromResponse builds a UnaryResult from a raw response value.
func FromResponse(response interface{}) UnaryResult {
	return UnaryResult{response: response, raw: true}
}

// Call returns the live CallHandle and whether the result holds one.
func (r UnaryResult) Call() (CallHandle, bool) {
	return r.call, !r.raw && r.call != nil
}

// Response returns the raw response value and whether the result holds one.
func (r UnaryResult) Response() (interface{}, bool) {
	return r.response, r.raw
}
