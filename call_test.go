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

package arpc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/arpc"
	"go.uber.org/arpc/api/interceptor"
	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/api/transport/transporttest"
	"go.uber.org/arpc/arpcerrors"
	"go.uber.org/arpc/internal/testtime"
)

const (
	_echoMethod  = "/test.Service/UnaryCall"
	_sleepMethod = "/test.Service/UnaryCallWithSleep"
)

var _sleepLatency = testtime.Scale(200 * time.Millisecond)

func newTestChannel(t *testing.T, opts ...arpc.ChannelOption) *arpc.Channel {
	t.Helper()
	executor := transporttest.NewFakeExecutor()
	executor.Register(_echoMethod, transporttest.EchoHandler)
	executor.Register(_sleepMethod, transporttest.EchoHandler, transporttest.WithLatency(_sleepLatency))
	channel, err := arpc.NewChannel(executor, opts...)
	require.NoError(t, err)
	return channel
}

func TestZeroInterceptorsPassThrough(t *testing.T) {
	ctx := context.Background()
	channel := newTestChannel(t)

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	response, err := call.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", response)

	assert.True(t, call.Done())
	assert.False(t, call.Cancelled())
	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeOK, code)
}

func TestInterceptorsExecuteInRegistrationOrder(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var order []string
	record := func(event string) {
		mu.Lock()
		order = append(order, event)
		mu.Unlock()
	}
	named := func(name string) interceptor.UnaryUnaryFunc {
		return func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
			record("in:" + name)
			handle, err := next(ctx, details, request)
			if err != nil {
				return transport.UnaryResult{}, err
			}
			record("out:" + name)
			return transport.FromCall(handle), nil
		}
	}

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(named("first"), named("second")))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	response, err := call.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", response)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"in:first", "in:second", "out:second", "out:first"}, order)
}

func TestInterceptorObservesStatusCodeOK(t *testing.T) {
	ctx := context.Background()

	var observedOK bool
	observer := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		code, err := handle.Code(ctx)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		if code == arpcerrors.CodeOK {
			observedOK = true
		}
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(observer))

	_, err := channel.Unary(_echoMethod).Call(ctx, "ping").Await(ctx)
	require.NoError(t, err)
	assert.True(t, observedOK)
}

func TestInterceptorAddsTimeout(t *testing.T) {
	ctx := context.Background()

	timeouter := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details.WithTimeout(_sleepLatency/2), request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(timeouter))

	call := channel.Unary(_sleepMethod).Call(ctx, "ping")
	_, err := call.Await(ctx)
	require.Error(t, err)
	assert.True(t, arpcerrors.IsDeadlineExceeded(err))

	assert.True(t, call.Done())
	assert.False(t, call.Cancelled())
	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeDeadlineExceeded, code)
}

func TestRetryingInterceptorInspectsBothAttempts(t *testing.T) {
	ctx := context.Background()

	var attempts []transport.CallHandle
	retrier := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		// First attempt with a deadline too short for the method.
		handle, err := next(ctx, details.WithTimeout(_sleepLatency/2), request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		if _, err := handle.Await(ctx); err != nil && !arpcerrors.IsStatus(err) {
			return transport.UnaryResult{}, err
		}
		attempts = append(attempts, handle)

		// Retry with the deadline removed.
		handle, err = next(ctx, details.WithoutTimeout(), request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		attempts = append(attempts, handle)
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(retrier))

	call := channel.Unary(_sleepMethod).Call(ctx, "ping")
	response, err := call.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", response)

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeOK, code)

	require.Len(t, attempts, 2)
	code, err = attempts[0].Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeDeadlineExceeded, code)
	code, err = attempts[1].Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeOK, code)
}

func TestRawResponseInterceptor(t *testing.T) {
	ctx := context.Background()

	fabricated := &struct{ body string }{body: "fabricated"}
	passthrough := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		if _, err := handle.Await(ctx); err != nil {
			return transport.UnaryResult{}, err
		}
		return transport.FromCall(handle), nil
	})
	responder := interceptor.UnaryUnaryFunc(func(context.Context, *transport.CallDetails, interface{}, transport.UnaryContinuation) (transport.UnaryResult, error) {
		return transport.FromResponse(fabricated), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(passthrough, responder))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	response, err := call.Await(ctx)
	require.NoError(t, err)
	assert.Same(t, fabricated, response.(*struct{ body string }))

	assert.True(t, call.Done())
	assert.False(t, call.Cancel())
	assert.False(t, call.Cancelled())

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeOK, code)

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Empty(t, details)

	initialMD, err := call.InitialMetadata(ctx)
	require.NoError(t, err)
	assert.False(t, initialMD.Present())

	trailingMD, err := call.TrailingMetadata(ctx)
	require.NoError(t, err)
	assert.False(t, trailingMD.Present())
}

func TestCallOKMetadataPresentButEmpty(t *testing.T) {
	tests := []struct {
		name  string
		await bool
	}{
		{name: "handle returned without awaiting", await: false},
		{name: "handle awaited before returning", await: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			passthrough := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
				handle, err := next(ctx, details, request)
				if err != nil {
					return transport.UnaryResult{}, err
				}
				if tt.await {
					if _, err := handle.Await(ctx); err != nil {
						return transport.UnaryResult{}, err
					}
				}
				return transport.FromCall(handle), nil
			})

			channel := newTestChannel(t, arpc.WithUnaryInterceptors(passthrough))

			call := channel.Unary(_echoMethod).Call(ctx, "ping")
			response, err := call.Await(ctx)
			require.NoError(t, err)
			assert.Equal(t, "ping", response)

			assert.True(t, call.Done())
			assert.False(t, call.Cancelled())

			code, err := call.Code(ctx)
			require.NoError(t, err)
			assert.Equal(t, arpc.CodeOK, code)

			details, err := call.Details(ctx)
			require.NoError(t, err)
			assert.Empty(t, details)

			// A call that really happened reports present-but-empty
			// metadata, unlike a synthesized raw response.
			initialMD, err := call.InitialMetadata(ctx)
			require.NoError(t, err)
			assert.True(t, initialMD.Present())
			assert.Zero(t, initialMD.Len())

			trailingMD, err := call.TrailingMetadata(ctx)
			require.NoError(t, err)
			assert.True(t, trailingMD.Present())
			assert.Zero(t, trailingMD.Len())
		})
	}
}

func TestCallRPCErrorMetadataPresentButEmpty(t *testing.T) {
	ctx := context.Background()

	passthrough := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(passthrough))

	call := channel.Unary(_sleepMethod).Call(ctx, "ping", arpc.WithTimeout(_sleepLatency/2))
	_, err := call.Await(ctx)
	require.Error(t, err)
	assert.True(t, arpcerrors.IsDeadlineExceeded(err))

	assert.True(t, call.Done())
	assert.False(t, call.Cancelled())

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Deadline Exceeded", details)

	initialMD, err := call.InitialMetadata(ctx)
	require.NoError(t, err)
	assert.True(t, initialMD.Present())
	assert.Zero(t, initialMD.Len())

	trailingMD, err := call.TrailingMetadata(ctx)
	require.NoError(t, err)
	assert.True(t, trailingMD.Present())
	assert.Zero(t, trailingMD.Len())
}

// requireLocallyCancelled asserts the fixed observable state of a call
// whose terminal cause is local cancellation before the chain handed over
// a live handle: CANCELLED, the local details text, and absent metadata
// regardless of anything any attempt produced earlier.
func requireLocallyCancelled(t *testing.T, call transport.CallHandle) {
	t.Helper()
	ctx := context.Background()

	_, err := call.Await(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, arpcerrors.ErrCancelled))

	assert.True(t, call.Cancelled())
	assert.True(t, call.Done())

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeCancelled, code)

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Equal(t, transport.LocalCancelDetails, details)

	initialMD, err := call.InitialMetadata(ctx)
	require.NoError(t, err)
	assert.False(t, initialMD.Present())

	trailingMD, err := call.TrailingMetadata(ctx)
	require.NoError(t, err)
	assert.False(t, trailingMD.Present())
}

func TestCancelBeforeExecutorPhase(t *testing.T) {
	ctx := context.Background()

	reached := make(chan struct{})
	blocking := interceptor.UnaryUnaryFunc(func(ctx context.Context, _ *transport.CallDetails, _ interface{}, _ transport.UnaryContinuation) (transport.UnaryResult, error) {
		close(reached)
		<-ctx.Done()
		return transport.UnaryResult{}, ctx.Err()
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(blocking))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	assert.False(t, call.Cancelled())
	assert.False(t, call.Done())

	<-reached
	assert.True(t, call.Cancel())
	assert.False(t, call.Cancel(), "second cancel must be a no-op")

	requireLocallyCancelled(t, call)
}

func TestCancelAfterExecutorPhase(t *testing.T) {
	ctx := context.Background()

	reached := make(chan struct{})
	blocking := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		if _, err := handle.Await(ctx); err != nil {
			return transport.UnaryResult{}, err
		}
		// The attempt completed; the cancel that follows must still win
		// and discard everything it produced.
		close(reached)
		<-ctx.Done()
		return transport.UnaryResult{}, ctx.Err()
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(blocking))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	assert.False(t, call.Cancelled())
	assert.False(t, call.Done())

	<-reached
	assert.True(t, call.Cancel())

	requireLocallyCancelled(t, call)
}

func TestInterceptorCancelsInnerCallAndAwaits(t *testing.T) {
	ctx := context.Background()

	cancelling := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		handle.Cancel()
		// The cancellation must be observable at this await point.
		if _, err := handle.Await(ctx); err != nil {
			return transport.UnaryResult{}, err
		}
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(cancelling))

	call := channel.Unary(_sleepMethod).Call(ctx, "ping")
	requireLocallyCancelled(t, call)
}

func TestInterceptorCancelsInnerCallWithoutAwaiting(t *testing.T) {
	ctx := context.Background()

	cancelling := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		handle, err := next(ctx, details, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}
		handle.Cancel()
		return transport.FromCall(handle), nil
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(cancelling))

	call := channel.Unary(_sleepMethod).Call(ctx, "ping")
	_, err := call.Await(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, arpcerrors.ErrCancelled))

	assert.True(t, call.Cancelled())
	assert.True(t, call.Done())

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeCancelled, code)

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Equal(t, transport.LocalCancelDetails, details)

	// The cancelled handle was returned as the call's result, so the
	// application observes the phase it actually reached: the attempt had
	// started (initial metadata present) but never completed (trailing
	// metadata absent).
	initialMD, err := call.InitialMetadata(ctx)
	require.NoError(t, err)
	assert.True(t, initialMD.Present())
	assert.Zero(t, initialMD.Len())

	trailingMD, err := call.TrailingMetadata(ctx)
	require.NoError(t, err)
	assert.False(t, trailingMD.Present())
}

func TestInterceptorErrorPropagatesUnchanged(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("interceptor exploded")
	failing := interceptor.UnaryUnaryFunc(func(context.Context, *transport.CallDetails, interface{}, transport.UnaryContinuation) (transport.UnaryResult, error) {
		return transport.UnaryResult{}, boom
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(failing))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	_, err := call.Await(ctx)
	assert.True(t, errors.Is(err, boom))

	assert.True(t, call.Done())
	assert.False(t, call.Cancelled())

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeUnknown, code)

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Equal(t, "interceptor exploded", details)
}

func TestAwaitBoundedByContext(t *testing.T) {
	ctx := context.Background()

	reached := make(chan struct{})
	blocking := interceptor.UnaryUnaryFunc(func(ctx context.Context, _ *transport.CallDetails, _ interface{}, _ transport.UnaryContinuation) (transport.UnaryResult, error) {
		close(reached)
		<-ctx.Done()
		return transport.UnaryResult{}, ctx.Err()
	})

	channel := newTestChannel(t, arpc.WithUnaryInterceptors(blocking))

	call := channel.Unary(_echoMethod).Call(ctx, "ping")
	<-reached

	waitCtx, cancel := context.WithTimeout(ctx, testtime.Scale(20*time.Millisecond))
	defer cancel()
	_, err := call.Await(waitCtx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The expired wait did not affect the call itself.
	assert.False(t, call.Done())
	assert.True(t, call.Cancel())
	requireLocallyCancelled(t, call)
}
