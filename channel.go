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
	"go.uber.org/arpc/api/interceptor"
	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/arpcerrors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ChannelOption customizes the behavior of a Channel.
type ChannelOption interface {
	apply(*channelOptions)
}

type channelOptionFunc func(*channelOptions)

func (f channelOptionFunc) apply(opts *channelOptions) { f(opts) }

type channelOptions struct {
	interceptors []interceptor.ClientInterceptor
	logger       *zap.Logger
}

var defaultChannelOptions = channelOptions{
	logger: zap.NewNop(),
}

// WithUnaryInterceptors registers the given client interceptors on the
// channel, in invocation order: the first interceptor is the outermost one.
//
// The order is fixed for the lifetime of the channel. Every registered
// interceptor must present the unary-unary interception capability
// (interceptor.UnaryUnary); NewChannel fails otherwise.
func WithUnaryInterceptors(interceptors ...interceptor.ClientInterceptor) ChannelOption {
	return channelOptionFunc(func(opts *channelOptions) {
		opts.interceptors = append(opts.interceptors, interceptors...)
	})
}

// WithLogger sets a zap Logger used to record call lifecycle logs.
func WithLogger(logger *zap.Logger) ChannelOption {
	return channelOptionFunc(func(opts *channelOptions) {
		opts.logger = logger
	})
}

// Channel issues unary calls through a fixed, ordered interceptor chain
// terminated by a unary executor.
//
// A Channel is immutable after construction and safe for concurrent use.
type Channel struct {
	executor     transport.UnaryExecutor
	interceptors []interceptor.UnaryUnary
	logger       *zap.Logger
}

// NewChannel builds a Channel around the given executor.
//
// Construction validates the registered interceptors eagerly: if any of
// them lacks the unary-unary interception capability, NewChannel returns a
// configuration error naming every offender and no channel is produced.
// Misconfiguration is never deferred into a live call.
//
// Building the channel performs no network activity; activity begins only
// when a multicallable is invoked.
func NewChannel(executor transport.UnaryExecutor, opts ...ChannelOption) (*Channel, error) {
	if executor == nil {
		return nil, arpcerrors.InvalidArgumentErrorf("channel requires a unary executor")
	}

	options := defaultChannelOptions
	for _, opt := range opts {
		opt.apply(&options)
	}

	var err error
	unary := make([]interceptor.UnaryUnary, 0, len(options.interceptors))
	for i, registered := range options.interceptors {
		uu, ok := registered.(interceptor.UnaryUnary)
		if !ok {
			err = multierr.Append(err, arpcerrors.InvalidArgumentErrorf(
				"interceptor %d of type %T does not implement unary-unary interception", i, registered))
			continue
		}
		unary = append(unary, uu)
	}
	if err != nil {
		return nil, err
	}

	options.logger.Debug("built client channel",
		zap.Int("numInterceptors", len(unary)))

	return &Channel{
		executor:     executor,
		interceptors: unary,
		logger:       options.logger,
	}, nil
}

// Unary returns a multicallable for the given full method string, e.g.
// "/acme.search.Search/Query". The multicallable may be retained and
// invoked any number of times.
func (c *Channel) Unary(method string) *UnaryMulticallable {
	return &UnaryMulticallable{
		channel: c,
		method:  method,
	}
}
