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

// Package backoff implements the exponential backoff strategy retrying
// interceptors use by default.
package backoff

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/arpc/api/backoff"
	"go.uber.org/multierr"
)

// ExponentialOption defines options that can be applied to an exponential
// backoff strategy.
type ExponentialOption func(*exponentialOptions)

type exponentialOptions struct {
	first, max time.Duration
	newRand    func() *rand.Rand
}

func (e exponentialOptions) validate() (err error) {
	if e.first <= 0 {
		err = multierr.Append(err, errors.New("invalid first duration for exponential backoff, need greater than zero"))
	}
	if e.max < 0 {
		err = multierr.Append(err, errors.New("invalid max for exponential backoff, need greater than or equal to zero"))
	}
	return err
}

func newDefaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

var defaultExponentialOpts = exponentialOptions{
	first:   10 * time.Millisecond,
	max:     time.Minute,
	newRand: newDefaultRand,
}

// FirstBackoff sets the initial range of durations that the first backoff
// duration will be selected from.
func FirstBackoff(t time.Duration) ExponentialOption {
	return func(options *exponentialOptions) {
		options.first = t
	}
}

// MaxBackoff sets the absolute max duration that will ever be returned for
// a backoff.
func MaxBackoff(t time.Duration) ExponentialOption {
	return func(options *exponentialOptions) {
		options.max = t
	}
}

// randGenerator overrides the random number generator, for tests.
func randGenerator(newRand func() *rand.Rand) ExponentialOption {
	return func(options *exponentialOptions) {
		options.newRand = newRand
	}
}

// ExponentialStrategy is an exponential backoff strategy with full jitter:
// the range of possible durations doubles with each attempt up to the
// maximum, and the returned duration is selected uniformly from that range.
// https://www.awsarchitectureblog.com/2015/03/backoff.html
//
// The strategy hands out referentially independent backoff instances, each
// with its own random number generator, so individual retry loops never
// contend on a lock.
type ExponentialStrategy struct {
	opts exponentialOptions
}

var _ backoff.Strategy = (*ExponentialStrategy)(nil)

// NewExponential returns an exponential backoff strategy, which in turn
// returns backoff instances.
func NewExponential(opts ...ExponentialOption) (*ExponentialStrategy, error) {
	options := defaultExponentialOpts
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	return &ExponentialStrategy{opts: options}, nil
}

// Backoff returns an instance of the exponential backoff strategy with its
// own random number generator.
func (e *ExponentialStrategy) Backoff() backoff.Backoff {
	return &exponentialBackoff{
		first: e.opts.first.Nanoseconds(),
		max:   e.opts.max.Nanoseconds(),
		rand:  e.opts.newRand(),
	}
}

// IsEqual returns whether this strategy is equivalent to another, for
// tests.
func (e *ExponentialStrategy) IsEqual(other *ExponentialStrategy) bool {
	return e.opts.first == other.opts.first && e.opts.max == other.opts.max
}

type exponentialBackoff struct {
	first int64
	max   int64
	rand  *rand.Rand
}

// Duration returns a duration selected from the full-jitter range for the
// given attempt number.
func (e *exponentialBackoff) Duration(attempts uint) time.Duration {
	spread := (1 << attempts) * e.first
	if spread <= 0 || spread > e.max {
		// Attempts sufficient to overflow effectively produce the max.
		spread = e.max
	}
	if spread == 0 {
		return 0
	}
	return time.Duration(e.rand.Int63n(spread + 1))
}

// None is a strategy that always returns a zero backoff, so retry loops
// proceed immediately.
var None backoff.Strategy = noneStrategy{}

type noneStrategy struct{}

func (noneStrategy) Backoff() backoff.Backoff { return noneBackoff{} }

type noneBackoff struct{}

func (noneBackoff) Duration(uint) time.Duration { return 0 }

// DefaultExponential is an exponential backoff strategy with the default
// range, shared through a thread-safe random source.
var DefaultExponential = &ExponentialStrategy{
	opts: exponentialOptions{
		first:   defaultExponentialOpts.first,
		max:     defaultExponentialOpts.max,
		newRand: lockedRand,
	},
}

var (
	defaultRandMu sync.Mutex
	defaultRand   = newDefaultRand()
)

func lockedRand() *rand.Rand {
	defaultRandMu.Lock()
	defer defaultRandMu.Unlock()
	return rand.New(rand.NewSource(defaultRand.Int63()))
}
