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
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/arpc"
	"go.uber.org/arpc/api/interceptor"
	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/api/transport/transporttest"
	"go.uber.org/arpc/arpcerrors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

func TestNewChannelRequiresExecutor(t *testing.T) {
	_, err := arpc.NewChannel(nil)
	require.Error(t, err)
	assert.True(t, arpcerrors.IsInvalidArgument(err))
}

func TestNewChannelRejectsInvalidInterceptors(t *testing.T) {
	noop := interceptor.UnaryUnaryFunc(func(ctx context.Context, details *transport.CallDetails, request interface{}, next transport.UnaryContinuation) (transport.UnaryResult, error) {
		return transport.UnaryResult{}, nil
	})

	tests := []struct {
		name         string
		interceptors []interceptor.ClientInterceptor
		wantErrs     int
	}{
		{
			name:         "single invalid",
			interceptors: []interceptor.ClientInterceptor{"not an interceptor"},
			wantErrs:     1,
		},
		{
			name:         "invalid among valid",
			interceptors: []interceptor.ClientInterceptor{noop, 42, noop, struct{}{}},
			wantErrs:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := arpc.NewChannel(
				transporttest.NewFakeExecutor(),
				arpc.WithUnaryInterceptors(tt.interceptors...),
			)
			require.Error(t, err)
			errs := multierr.Errors(err)
			assert.Len(t, errs, tt.wantErrs)
			for _, e := range errs {
				assert.True(t, arpcerrors.IsInvalidArgument(e))
			}
		})
	}
}

func TestNewChannelWithLogger(t *testing.T) {
	channel, err := arpc.NewChannel(
		transporttest.NewFakeExecutor(),
		arpc.WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	require.NotNil(t, channel)
}

func TestExecutorErrorSurfacesThroughHandle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	executor := transporttest.NewMockUnaryExecutor(mockCtrl)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, arpcerrors.UnavailableErrorf("all peers down"))

	channel, err := arpc.NewChannel(executor)
	require.NoError(t, err)

	ctx := context.Background()
	call := channel.Unary("/test.Service/UnaryCall").Call(ctx, "ping")
	_, err = call.Await(ctx)
	require.Error(t, err)
	assert.True(t, arpcerrors.IsUnavailable(err))

	code, err := call.Code(ctx)
	require.NoError(t, err)
	assert.Equal(t, arpc.CodeUnavailable, code)

	details, err := call.Details(ctx)
	require.NoError(t, err)
	assert.Equal(t, "all peers down", details)
}

func TestCallOptionsReachExecutor(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	timeout := 100 * time.Millisecond
	md := transport.NewMetadata().With("rpc-caller", "channel-test")
	creds := struct{ token string }{token: "t0ken"}

	executor := transporttest.NewMockUnaryExecutor(mockCtrl)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "ping").
		DoAndReturn(func(_ context.Context, details *transport.CallDetails, _ interface{}) (transport.CallHandle, error) {
			assert.Equal(t, "/test.Service/UnaryCall", details.Method)
			require.NotNil(t, details.Timeout)
			assert.Equal(t, timeout, *details.Timeout)
			value, ok := details.Metadata.Get("rpc-caller")
			assert.True(t, ok)
			assert.Equal(t, "channel-test", value)
			assert.Equal(t, creds, details.Credentials)
			return nil, arpcerrors.UnavailableErrorf("stop here")
		})

	channel, err := arpc.NewChannel(executor)
	require.NoError(t, err)

	ctx := context.Background()
	call := channel.Unary("/test.Service/UnaryCall").Call(ctx, "ping",
		arpc.WithTimeout(timeout),
		arpc.WithMetadata(md),
		arpc.WithCredentials(creds),
	)
	_, err = call.Await(ctx)
	require.Error(t, err)
}
