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

// Package retryinterceptor provides a client interceptor that retries
// failed unary attempts.
//
// The interception layer itself never retries; this interceptor supplies
// the policy, built on the chain's support for invoking a continuation
// multiple times, each invocation an independent attempt.
package retryinterceptor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/arpc/api/backoff"
	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/arpcerrors"
	internalbackoff "go.uber.org/arpc/internal/backoff"
	"go.uber.org/zap"
)

// Option customizes the behavior of a retry interceptor.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) { f(opts) }

type options struct {
	retries           uint
	perAttemptTimeout *time.Duration
	backoffStrategy   backoff.Strategy
	retryableCodes    map[transport.Code]struct{}
	logger            *zap.Logger
}

var defaultOptions = options{
	retries:         1,
	backoffStrategy: internalbackoff.DefaultExponential,
	retryableCodes: map[transport.Code]struct{}{
		arpcerrors.CodeDeadlineExceeded: {},
		arpcerrors.CodeUnavailable:      {},
	},
	logger: zap.NewNop(),
}

// Retries sets how many times a failed attempt is retried. The total
// number of attempts is retries+1.
func Retries(retries uint) Option {
	return optionFunc(func(opts *options) {
		opts.retries = retries
	})
}

// PerAttemptTimeout rewrites the deadline of every attempt to the given
// duration, regardless of the timeout the call was issued with.
func PerAttemptTimeout(timeout time.Duration) Option {
	return optionFunc(func(opts *options) {
		opts.perAttemptTimeout = &timeout
	})
}

// BackoffStrategy sets the strategy that paces retried attempts. Defaults
// to full-jitter exponential backoff.
func BackoffStrategy(strategy backoff.Strategy) Option {
	return optionFunc(func(opts *options) {
		opts.backoffStrategy = strategy
	})
}

// RetryableCodes replaces the set of status codes considered retryable.
// Defaults to deadline-exceeded and unavailable.
func RetryableCodes(codes ...transport.Code) Option {
	return optionFunc(func(opts *options) {
		opts.retryableCodes = make(map[transport.Code]struct{}, len(codes))
		for _, code := range codes {
			opts.retryableCodes[code] = struct{}{}
		}
	})
}

// Logger sets a zap Logger that records retried attempts.
func Logger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// Interceptor is a unary-unary client interceptor implementing a retry
// policy.
type Interceptor struct {
	opts options
}

// New builds a retry interceptor.
func New(opts ...Option) *Interceptor {
	options := defaultOptions
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &Interceptor{opts: options}
}

// InterceptUnaryUnary implements interceptor.UnaryUnary.
//
// Every attempt is awaited in place. The handle of the last attempt is
// passed through whether it succeeded or exhausted the policy, so the
// caller observes the final attempt's terminal status; earlier attempts
// remain independently queryable by whoever retained them. A cancellation
// signal is never retried and propagates unchanged.
func (r *Interceptor) InterceptUnaryUnary(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
	boff := r.opts.backoffStrategy.Backoff()

	for attempt := uint(0); ; attempt++ {
		attemptDetails := details
		if r.opts.perAttemptTimeout != nil {
			attemptDetails = details.WithTimeout(*r.opts.perAttemptTimeout)
		}

		handle, err := next(ctx, attemptDetails, request)
		if err != nil {
			return transport.UnaryResult{}, err
		}

		_, awaitErr := handle.Await(ctx)
		if awaitErr == nil {
			return transport.FromCall(handle), nil
		}
		if errors.Is(awaitErr, arpcerrors.ErrCancelled) || errors.Is(awaitErr, context.Canceled) {
			return transport.UnaryResult{}, awaitErr
		}
		code := arpcerrors.FromError(awaitErr).Code()
		if _, retryable := r.opts.retryableCodes[code]; !retryable || attempt >= r.opts.retries {
			return transport.FromCall(handle), nil
		}

		r.opts.logger.Debug("retrying call",
			zap.String("method", details.Method),
			zap.Uint("attempt", attempt+1),
			zap.String("code", code.String()))

		if d := boff.Duration(attempt); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return transport.UnaryResult{}, ctx.Err()
			}
		}
	}
}
