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

import "time"

// CallCredentials is an opaque per-call credential handle. It is carried
// through the interceptor chain untouched and consumed by the executor.
type CallCredentials interface{}

// CallDetails describes one attempt of a unary call.
//
// CallDetails is immutable once constructed; it is never mutated in place.
// Interceptors that need different parameters for the rest of the chain
// construct a modified copy with the With methods and pass that copy to the
// continuation.
type CallDetails struct {
	// Method is the full RPC method string, e.g.
	// "/acme.search.Search/Query".
	Method string

	// Timeout is the optional local deadline for the attempt, enforced by
	// the executor. A nil Timeout means no local deadline is enforced.
	Timeout *time.Duration

	// Metadata is the ordered outbound call metadata.
	Metadata Metadata

	// Credentials is the optional per-call credential handle.
	Credentials CallCredentials
}

// NewCallDetails builds CallDetails for the given method with no timeout,
// no metadata and no credentials.
func NewCallDetails(method string) *CallDetails {
	return &CallDetails{Method: method}
}

// WithTimeout returns a copy of the details with the given timeout.
func (d *CallDetails) WithTimeout(timeout time.Duration) *CallDetails {
	details := *d
	details.Timeout = &timeout
	return &details
}

// WithoutTimeout returns a copy of the details with the timeout removed,
// meaning no local deadline is enforced for the attempt.
func (d *CallDetails) WithoutTimeout() *CallDetails {
	details := *d
	details.Timeout = nil
	return &details
}

// WithMetadata returns a copy of the details carrying the given metadata.
func (d *CallDetails) WithMetadata(md Metadata) *CallDetails {
	details := *d
	details.Metadata = md
	return &details
}

// WithCredentials returns a copy of the details carrying the given per-call
// credentials.
func (d *CallDetails) WithCredentials(creds CallCredentials) *CallDetails {
	details := *d
	details.Credentials = creds
	return &details
}
