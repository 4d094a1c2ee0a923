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

import "go.uber.org/arpc/arpcerrors"

const (
	// CodeOK means no error; returned on success.
	CodeOK = arpcerrors.CodeOK

	// CodeCancelled means the call was cancelled, typically by the caller.
	CodeCancelled = arpcerrors.CodeCancelled

	// CodeUnknown means an unknown error.
	CodeUnknown = arpcerrors.CodeUnknown

	// CodeInvalidArgument means the client specified an invalid argument.
	CodeInvalidArgument = arpcerrors.CodeInvalidArgument

	// CodeDeadlineExceeded means the deadline expired before the call could
	// complete.
	CodeDeadlineExceeded = arpcerrors.CodeDeadlineExceeded

	// CodeNotFound means some requested entity was not found.
	CodeNotFound = arpcerrors.CodeNotFound

	// CodeAlreadyExists means the entity that a client attempted to create
	// already exists.
	CodeAlreadyExists = arpcerrors.CodeAlreadyExists

	// CodePermissionDenied means the caller does not have permission to
	// execute the specified call.
	CodePermissionDenied = arpcerrors.CodePermissionDenied

	// CodeResourceExhausted means some resource has been exhausted.
	CodeResourceExhausted = arpcerrors.CodeResourceExhausted

	// CodeFailedPrecondition means the call was rejected because the system
	// is not in a state required for the call's execution.
	CodeFailedPrecondition = arpcerrors.CodeFailedPrecondition

	// CodeAborted means the call was aborted.
	CodeAborted = arpcerrors.CodeAborted

	// CodeOutOfRange means the call was attempted past the valid range.
	CodeOutOfRange = arpcerrors.CodeOutOfRange

	// CodeUnimplemented means the called procedure is not implemented by
	// the remote service.
	CodeUnimplemented = arpcerrors.CodeUnimplemented

	// CodeInternal means an internal error.
	CodeInternal = arpcerrors.CodeInternal

	// CodeUnavailable means the service is currently unavailable.
	CodeUnavailable = arpcerrors.CodeUnavailable

	// CodeDataLoss means unrecoverable data loss or corruption.
	CodeDataLoss = arpcerrors.CodeDataLoss

	// CodeUnauthenticated means the request does not have valid
	// authentication credentials for the call.
	CodeUnauthenticated = arpcerrors.CodeUnauthenticated
)
