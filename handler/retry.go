// Copyright (c) 2025 Uber Technologies, Inc.
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

package handler

import (
	"errors"
	"time"

	"go.uber.org/cloudcall/cloudcallerrors"
	"go.uber.org/cloudcall/internal/backoff"
)

// RetryPolicy decides whether a failed attempt is tried again.
type RetryPolicy interface {
	// Retry is called after attempt failed with err. It returns the delay
	// before the next attempt and whether there should be one.
	Retry(attempt int, err error) (time.Duration, bool)
}

// NoRetry never retries. It is the default.
func NoRetry() RetryPolicy { return noRetry{} }

type noRetry struct{}

func (noRetry) Retry(int, error) (time.Duration, bool) { return 0, false }

// RetryOption customizes MaxAttempts.
type RetryOption func(*maxAttempts) error

// RetryBackoff spaces retries with full-jitter exponential backoff.
func RetryBackoff(base, max time.Duration) RetryOption {
	return func(m *maxAttempts) error {
		e, err := backoff.NewExponential(backoff.BaseJump(base), backoff.MaxBackoff(max))
		if err != nil {
			return err
		}
		m.backoff = e
		return nil
	}
}

// RetryDelay waits a fixed d between attempts.
func RetryDelay(d time.Duration) RetryOption {
	return func(m *maxAttempts) error {
		m.backoff = backoff.Constant(d)
		return nil
	}
}

// MaxAttempts retries retryable failures until n attempts were made.
// Transport failures and server-side or throttling service errors are
// retryable.
func MaxAttempts(n int, opts ...RetryOption) (RetryPolicy, error) {
	if n < 1 {
		return nil, cloudcallerrors.Newf(cloudcallerrors.CodeInvalidArgument, "max attempts must be at least 1, got %d", n)
	}
	m := &maxAttempts{n: n, backoff: backoff.None}
	for _, o := range opts {
		if err := o(m); err != nil {
			return nil, cloudcallerrors.Wrap(cloudcallerrors.CodeInvalidArgument, err, "invalid retry backoff")
		}
	}
	return m, nil
}

type maxAttempts struct {
	n       int
	backoff backoff.Strategy
}

func (m *maxAttempts) Retry(attempt int, err error) (time.Duration, bool) {
	if attempt >= m.n || !IsRetryable(err) {
		return 0, false
	}
	return m.backoff.Duration(attempt), true
}

// IsRetryable reports whether err describes a failure worth retrying.
func IsRetryable(err error) bool {
	var se *cloudcallerrors.ServiceError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return cloudcallerrors.ErrorCode(err).Retryable()
}
