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

// Package transporttest provides executors for testing the interception
// layer without a network: an in-process FakeExecutor with registered
// procedures, and a gomock MockUnaryExecutor.
package transporttest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/arpcerrors"
	"go.uber.org/atomic"
)

// Handler implements a fake procedure body.
type Handler func(ctx context.Context, request interface{}) (interface{}, error)

// EchoHandler returns the request as the response.
func EchoHandler(_ context.Context, request interface{}) (interface{}, error) {
	return request, nil
}

type procedure struct {
	handler    Handler
	latency    time.Duration
	initialMD  transport.Metadata
	trailingMD transport.Metadata
}

// ProcedureOption customizes a registered fake procedure.
type ProcedureOption func(*procedure)

// WithLatency makes the procedure wait the given duration before running
// its handler, honoring the attempt deadline while waiting.
func WithLatency(latency time.Duration) ProcedureOption {
	return func(p *procedure) {
		p.latency = latency
	}
}

// WithInitialMetadata sets the initial metadata the procedure produces as
// soon as an attempt starts. Defaults to present-but-empty.
func WithInitialMetadata(md transport.Metadata) ProcedureOption {
	return func(p *procedure) {
		p.initialMD = md
	}
}

// WithTrailingMetadata sets the trailing metadata the procedure produces on
// successful completion. Defaults to present-but-empty.
func WithTrailingMetadata(md transport.Metadata) ProcedureOption {
	return func(p *procedure) {
		p.trailingMD = md
	}
}

// FakeExecutor is an in-process transport.UnaryExecutor serving registered
// procedures. Every attempt gets an independent call handle with the same
// terminal-state semantics a network-backed executor exhibits: deadline
// enforcement from CallDetails.Timeout, CANCELLED with the local details
// string on cancellation, initial metadata available once the attempt
// starts and trailing metadata only at successful completion.
type FakeExecutor struct {
	mu         sync.RWMutex
	procedures map[string]procedure
	numCalls   atomic.Int64
}

var _ transport.UnaryExecutor = (*FakeExecutor)(nil)

// NewFakeExecutor builds an empty FakeExecutor.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{procedures: make(map[string]procedure)}
}

// Register registers a procedure under the given full method string,
// replacing any previous registration.
func (e *FakeExecutor) Register(method string, handler Handler, opts ...ProcedureOption) {
	p := procedure{
		handler:    handler,
		initialMD:  transport.NewMetadata(),
		trailingMD: transport.NewMetadata(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	e.mu.Lock()
	e.procedures[method] = p
	e.mu.Unlock()
}

// NumCalls returns how many attempts have been started, across all
// procedures.
func (e *FakeExecutor) NumCalls() int64 {
	return e.numCalls.Load()
}

// Execute implements transport.UnaryExecutor.
func (e *FakeExecutor) Execute(ctx context.Context, details *transport.CallDetails, request interface{}) (transport.CallHandle, error) {
	e.mu.RLock()
	p, ok := e.procedures[details.Method]
	e.mu.RUnlock()
	if !ok {
		return nil, arpcerrors.Newf(arpcerrors.CodeUnimplemented, "no procedure registered for %q", details.Method)
	}

	e.numCalls.Inc()

	var runCtx context.Context
	var cancelRun context.CancelFunc
	if details.Timeout != nil {
		runCtx, cancelRun = context.WithTimeout(ctx, *details.Timeout)
	} else {
		runCtx, cancelRun = context.WithCancel(ctx)
	}

	call := &fakeCall{
		initialMD: p.initialMD,
		done:      make(chan struct{}),
		cancelRun: cancelRun,
	}
	go call.run(runCtx, p, request)
	return call, nil
}

// fakeCall is the executor-backed realization of a CallHandle for one fake
// attempt.
type fakeCall struct {
	initialMD transport.Metadata
	cancelRun context.CancelFunc
	done      chan struct{}

	mu         sync.Mutex
	terminal   bool
	cancelled  bool
	code       transport.Code
	details    string
	response   interface{}
	trailingMD transport.Metadata
}

var _ transport.CallHandle = (*fakeCall)(nil)

func (c *fakeCall) run(ctx context.Context, p procedure, request interface{}) {
	defer c.cancelRun()

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.completeFromContext(ctx)
			return
		}
	}

	response, err := p.handler(ctx, request)
	if ctx.Err() != nil {
		c.completeFromContext(ctx)
		return
	}
	if err != nil {
		st := arpcerrors.FromError(err)
		c.complete(st.Code(), st.Message(), nil, transport.NewMetadata(), false)
		return
	}
	c.complete(arpcerrors.CodeOK, "", response, p.trailingMD, false)
}

func (c *fakeCall) completeFromContext(ctx context.Context) {
	if ctx.Err() == context.DeadlineExceeded {
		// The executor owns deadline enforcement; an expired attempt
		// reports present-but-empty trailing metadata, unlike a cancelled
		// one.
		c.complete(arpcerrors.CodeDeadlineExceeded, "Deadline Exceeded", nil, transport.NewMetadata(), false)
		return
	}
	c.complete(arpcerrors.CodeCancelled, transport.LocalCancelDetails, nil, nil, true)
}

// complete performs the single terminal transition. First cause wins; a
// late completion is discarded.
func (c *fakeCall) complete(code transport.Code, details string, response interface{}, trailingMD transport.Metadata, cancelled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return false
	}
	c.terminal = true
	c.cancelled = cancelled
	c.code = code
	c.details = details
	c.response = response
	c.trailingMD = trailingMD
	close(c.done)
	return true
}

// Cancel implements transport.CallHandle.
func (c *fakeCall) Cancel() bool {
	if !c.complete(arpcerrors.CodeCancelled, transport.LocalCancelDetails, nil, nil, true) {
		return false
	}
	c.cancelRun()
	return true
}

// Done implements transport.CallHandle.
func (c *fakeCall) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Cancelled implements transport.CallHandle.
func (c *fakeCall) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal && c.cancelled
}

// Await implements transport.CallHandle.
func (c *fakeCall) Await(ctx context.Context) (interface{}, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return nil, arpcerrors.ErrCancelled
	}
	if c.code != arpcerrors.CodeOK {
		return nil, arpcerrors.Newf(c.code, "%s", c.details)
	}
	return c.response, nil
}

// Code implements transport.CallHandle.
func (c *fakeCall) Code(ctx context.Context) (transport.Code, error) {
	if err := c.wait(ctx); err != nil {
		return arpcerrors.CodeOK, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code, nil
}

// Details implements transport.CallHandle.
func (c *fakeCall) Details(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.details, nil
}

// InitialMetadata implements transport.CallHandle. Initial metadata is
// known as soon as the attempt starts, before the call is terminal.
func (c *fakeCall) InitialMetadata(context.Context) (transport.Metadata, error) {
	return c.initialMD, nil
}

// TrailingMetadata implements transport.CallHandle.
func (c *fakeCall) TrailingMetadata(ctx context.Context) (transport.Metadata, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trailingMD, nil
}

func (c *fakeCall) wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
