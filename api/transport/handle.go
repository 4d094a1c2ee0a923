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

import (
	"context"

	"go.uber.org/arpc/arpcerrors"
)

// Code is the terminal status code of a call.
type Code = arpcerrors.Code

// LocalCancelDetails is the details string reported by a call whose
// terminal cause is local cancellation.
const LocalCancelDetails = "Locally cancelled by application!"

// CallHandle is the awaitable representation of one unary call attempt.
//
// A handle transitions monotonically from pending to a terminal state and
// is never reset. Once terminal, its code, details and metadata are fixed
// and repeated reads return identical values.
//
// All methods are safe for concurrent use.
type CallHandle interface {
	// Await blocks until the call is terminal and returns the response
	// value on success. On a non-OK terminal status it returns the
	// *arpcerrors.Status describing the outcome, except when the terminal
	// cause is cancellation, in which case it returns
	// arpcerrors.ErrCancelled.
	//
	// The context bounds the wait only; its expiry returns ctx.Err()
	// without affecting the call.
	Await(ctx context.Context) (interface{}, error)

	// Done reports whether the call is terminal. Monotonic.
	Done() bool

	// Cancel requests cancellation and reports whether cancellation was
	// newly initiated. Cancelling a call that is already terminal is a
	// no-op returning false. Safe to call before any Await.
	Cancel() bool

	// Cancelled reports whether the terminal cause is cancellation. A call
	// that completed with an error unrelated to cancellation is done but
	// not cancelled.
	Cancelled() bool

	// Code blocks until the call is terminal and returns the terminal
	// status code. Unlike Await, it never reports the call outcome as an
	// error; the error is non-nil only when the bounding context expires.
	Code(ctx context.Context) (Code, error)

	// Details blocks until the call is terminal and returns the terminal
	// details string. Empty for successful calls.
	Details(ctx context.Context) (string, error)

	// InitialMetadata returns the initial metadata produced by the call,
	// blocking until it is known. A nil Metadata means the call never
	// reached a state where initial metadata could exist.
	InitialMetadata(ctx context.Context) (Metadata, error)

	// TrailingMetadata returns the trailing metadata produced by the call,
	// blocking until the call is terminal. A nil Metadata means the call
	// never reached a state where trailing metadata could exist.
	TrailingMetadata(ctx context.Context) (Metadata, error)
}
