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
	"errors"
	"sync"

	"go.uber.org/arpc/api/interceptor"
	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/arpcerrors"
	"go.uber.org/zap"
)

// callState is the coordinator state of an intercepted call.
//
// The call starts in callRunning, with the interceptor chain executing in
// its own goroutine, and makes exactly one transition out of it:
//
//   - callDelegated: the chain produced a live handle; every observation is
//     forwarded to it (the handle itself may still be pending).
//   - callCancelled: the call was cancelled before the chain produced its
//     handle, or the chain unwound with a cancellation signal.
//   - callFailed: interceptor logic returned an error, propagated unchanged.
//
// The transition is guarded by the mutex; whichever cause reaches it first
// wins and the loser's effect is discarded.
type callState int

const (
	callRunning callState = iota
	callDelegated
	callCancelled
	callFailed
)

// interceptedCall runs one unary call through the interceptor chain and is
// the CallHandle the application observes.
type interceptedCall struct {
	logger *zap.Logger

	// ctx is the call's own context; cancelling it is how local
	// cancellation reaches interceptor logic suspended at an await point.
	ctx    context.Context
	cancel context.CancelFunc

	executor transport.UnaryExecutor

	mu       sync.Mutex
	state    callState
	delegate transport.CallHandle
	err      error
	// attempts holds the live executor-backed handles produced so far, so
	// cancellation can propagate inward to whichever attempt is pending.
	attempts []transport.CallHandle
	done     chan struct{}
}

var _ transport.CallHandle = (*interceptedCall)(nil)

func newInterceptedCall(ctx context.Context, channel *Channel, details *transport.CallDetails, request interface{}) *interceptedCall {
	callCtx, cancel := context.WithCancel(ctx)
	c := &interceptedCall{
		logger:   channel.logger,
		ctx:      callCtx,
		cancel:   cancel,
		executor: channel.executor,
		done:     make(chan struct{}),
	}

	// Composition is a reverse fold: the continuation seen by
	// interceptor[i] is the frame of interceptor[i+1], and the last
	// interceptor sees the executor's entry point.
	next := transport.UnaryContinuation(c.execute)
	for i := len(channel.interceptors) - 1; i >= 0; i-- {
		next = c.frame(channel.interceptors[i], next)
	}

	c.logger.Debug("starting intercepted call",
		zap.String("method", details.Method),
		zap.Int("numInterceptors", len(channel.interceptors)))

	go c.run(next, details, request)
	return c
}

// run drives the whole chain for this call and records its outcome.
func (c *interceptedCall) run(chain transport.UnaryContinuation, details *transport.CallDetails, request interface{}) {
	handle, err := chain(c.ctx, details, request)
	c.finish(handle, err)
}

// frame wraps a single interceptor into a continuation, normalizing its
// tagged result so the caller frame always sees a CallHandle.
func (c *interceptedCall) frame(i interceptor.UnaryUnary, next transport.UnaryContinuation) transport.UnaryContinuation {
	return func(ctx context.Context, details *transport.CallDetails, request interface{}) (transport.CallHandle, error) {
		result, err := i.InterceptUnaryUnary(ctx, details, request, next)
		if err != nil {
			return nil, err
		}
		if response, ok := result.Response(); ok {
			return newResponseHandle(response), nil
		}
		call, ok := result.Call()
		if !ok {
			return nil, arpcerrors.InternalErrorf("interceptor %T returned neither a call nor a response", i)
		}
		return call, nil
	}
}

// execute is the innermost continuation: it starts an independent network
// attempt and registers the live handle for cancellation propagation.
func (c *interceptedCall) execute(ctx context.Context, details *transport.CallDetails, request interface{}) (transport.CallHandle, error) {
	handle, err := c.executor.Execute(ctx, details, request)
	if err != nil {
		return nil, err
	}
	c.track(handle)
	return handle, nil
}

func (c *interceptedCall) track(handle transport.CallHandle) {
	c.mu.Lock()
	cancelled := c.state == callCancelled
	if !cancelled {
		c.attempts = append(c.attempts, handle)
	}
	c.mu.Unlock()

	// The attempt raced a local cancel; it must not survive it.
	if cancelled {
		handle.Cancel()
	}
}

// finish records the chain outcome. A call already cancelled keeps its
// cancelled terminal state; the late outcome is discarded.
func (c *interceptedCall) finish(handle transport.CallHandle, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != callRunning {
		return
	}

	switch {
	case err == nil:
		c.state = callDelegated
		c.delegate = handle
	case errors.Is(err, arpcerrors.ErrCancelled) || errors.Is(err, context.Canceled):
		// A cancellation signal unwound the chain, either from a local
		// cancel of this call or from an interceptor cancelling the handle
		// it obtained from its continuation.
		c.state = callCancelled
	default:
		c.state = callFailed
		c.err = err
	}
	close(c.done)
}

// Cancel requests cancellation of the call.
//
// While the chain is still running this transitions the call to its
// cancelled terminal state immediately, wakes interceptor logic suspended
// on the call context, and cancels every pending attempt so that an
// interceptor awaiting one observes the cancellation at that await point.
// Once the chain has handed over a live handle, cancellation is the
// handle's to decide.
func (c *interceptedCall) Cancel() bool {
	c.mu.Lock()
	if c.state == callDelegated {
		delegate := c.delegate
		c.mu.Unlock()
		return delegate.Cancel()
	}
	if c.state != callRunning {
		c.mu.Unlock()
		return false
	}
	c.state = callCancelled
	attempts := c.attempts
	c.attempts = nil
	close(c.done)
	c.mu.Unlock()

	c.logger.Debug("call cancelled locally")
	c.cancel()
	for _, attempt := range attempts {
		attempt.Cancel()
	}
	return true
}

// Done implements transport.CallHandle.
func (c *interceptedCall) Done() bool {
	c.mu.Lock()
	state, delegate := c.state, c.delegate
	c.mu.Unlock()

	switch state {
	case callRunning:
		return false
	case callDelegated:
		return delegate.Done()
	default:
		return true
	}
}

// Cancelled implements transport.CallHandle.
func (c *interceptedCall) Cancelled() bool {
	c.mu.Lock()
	state, delegate := c.state, c.delegate
	c.mu.Unlock()

	switch state {
	case callDelegated:
		return delegate.Cancelled()
	case callCancelled:
		return true
	default:
		return false
	}
}

// Await implements transport.CallHandle.
func (c *interceptedCall) Await(ctx context.Context) (interface{}, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	state, delegate, err := c.snapshot()
	switch state {
	case callDelegated:
		return delegate.Await(ctx)
	case callCancelled:
		return nil, arpcerrors.ErrCancelled
	default:
		return nil, err
	}
}

// Code implements transport.CallHandle.
func (c *interceptedCall) Code(ctx context.Context) (transport.Code, error) {
	if err := c.wait(ctx); err != nil {
		return arpcerrors.CodeOK, err
	}

	state, delegate, err := c.snapshot()
	switch state {
	case callDelegated:
		return delegate.Code(ctx)
	case callCancelled:
		return arpcerrors.CodeCancelled, nil
	default:
		return arpcerrors.FromError(err).Code(), nil
	}
}

// Details implements transport.CallHandle.
func (c *interceptedCall) Details(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	state, delegate, err := c.snapshot()
	switch state {
	case callDelegated:
		return delegate.Details(ctx)
	case callCancelled:
		return transport.LocalCancelDetails, nil
	default:
		return arpcerrors.FromError(err).Message(), nil
	}
}

// InitialMetadata implements transport.CallHandle.
//
// A locally cancelled call reports absent metadata even when an attempt had
// already produced some: cancellation discards previously observed state
// from the application's perspective.
func (c *interceptedCall) InitialMetadata(ctx context.Context) (transport.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	state, delegate, _ := c.snapshot()
	if state == callDelegated {
		return delegate.InitialMetadata(ctx)
	}
	return nil, nil
}

// TrailingMetadata implements transport.CallHandle.
func (c *interceptedCall) TrailingMetadata(ctx context.Context) (transport.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	state, delegate, _ := c.snapshot()
	if state == callDelegated {
		return delegate.TrailingMetadata(ctx)
	}
	return nil, nil
}

// wait blocks until the coordinator has left callRunning, or the bounding
// context expires.
func (c *interceptedCall) wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *interceptedCall) snapshot() (callState, transport.CallHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.delegate, c.err
}
