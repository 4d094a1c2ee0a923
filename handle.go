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

	"go.uber.org/arpc/api/transport"
	"go.uber.org/arpc/arpcerrors"
)

// responseHandle is the value-backed realization of a CallHandle: it wraps
// a raw response fabricated by an interceptor without touching the network.
//
// It is born terminal with status OK, empty details, and absent (not
// empty) metadata, which distinguishes "no call ever happened" from "a call
// happened and returned empty metadata". It is uncancellable in effect:
// Cancel always reports false.
type responseHandle struct {
	response interface{}
}

var _ transport.CallHandle = (*responseHandle)(nil)

func newResponseHandle(response interface{}) *responseHandle {
	return &responseHandle{response: response}
}

func (h *responseHandle) Await(context.Context) (interface{}, error) {
	return h.response, nil
}

func (h *responseHandle) Done() bool {
	return true
}

func (h *responseHandle) Cancel() bool {
	return false
}

func (h *responseHandle) Cancelled() bool {
	return false
}

func (h *responseHandle) Code(context.Context) (transport.Code, error) {
	return arpcerrors.CodeOK, nil
}

func (h *responseHandle) Details(context.Context) (string, error) {
	return "", nil
}

func (h *responseHandle) InitialMetadata(context.Context) (transport.Metadata, error) {
	return nil, nil
}

func (h *responseHandle) TrailingMetadata(context.Context) (transport.Metadata, error) {
	return nil, nil
}
