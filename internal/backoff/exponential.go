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

// Package backoff computes delays between attempts of a retried call.
package backoff

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Strategy returns the delay before the given 1-based retry.
type Strategy interface {
	Duration(retry int) time.Duration
}

// None never waits.
var None Strategy = constant(0)

// Constant always waits d.
func Constant(d time.Duration) Strategy { return constant(d) }

type constant time.Duration

func (c constant) Duration(int) time.Duration { return time.Duration(c) }

// ExponentialOption customizes an Exponential strategy.
type ExponentialOption func(*exponentialOptions)

type exponentialOptions struct {
	base, min, max time.Duration

	// jitter returns a value in [0, n].
	jitter func(n int64) int64
}

func (o exponentialOptions) validate() (err error) {
	if o.base <= 0 {
		err = multierr.Append(err, errors.New("backoff base must be positive"))
	}
	if o.min < 0 {
		err = multierr.Append(err, errors.New("backoff min must not be negative"))
	}
	if o.max < o.min {
		err = multierr.Append(err, errors.New("backoff max must not be less than min"))
	}
	return err
}

// BaseJump sets the delay unit doubled on every retry. Defaults to 100ms.
func BaseJump(d time.Duration) ExponentialOption {
	return func(o *exponentialOptions) { o.base = d }
}

// MinBackoff sets the lower bound of every delay.
func MinBackoff(d time.Duration) ExponentialOption {
	return func(o *exponentialOptions) { o.min = d }
}

// MaxBackoff sets the upper bound of every delay. Defaults to 20s.
func MaxBackoff(d time.Duration) ExponentialOption {
	return func(o *exponentialOptions) { o.max = d }
}

func withJitter(f func(int64) int64) ExponentialOption {
	return func(o *exponentialOptions) { o.jitter = f }
}

// Exponential is a full-jitter exponential strategy: the delay before retry
// n is drawn uniformly from [min, min+base*2^n], capped at max. It is safe
// for concurrent use.
type Exponential struct {
	opts exponentialOptions
}

var _ Strategy = (*Exponential)(nil)

// NewExponential builds an Exponential strategy.
func NewExponential(opts ...ExponentialOption) (*Exponential, error) {
	o := exponentialOptions{base: 100 * time.Millisecond, max: 20 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.jitter == nil {
		o.jitter = lockedRand(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return &Exponential{opts: o}, nil
}

// Duration implements Strategy.
func (e *Exponential) Duration(retry int) time.Duration {
	spread := e.opts.max.Nanoseconds() - e.opts.min.Nanoseconds()
	if retry < 0 {
		retry = 0
	}
	if retry < 62 {
		// Overflow shows up as a non-positive product.
		if jump := (int64(1) << uint(retry)) * e.opts.base.Nanoseconds(); jump > 0 && jump < spread {
			spread = jump
		}
	}

	return e.opts.min + time.Duration(e.opts.jitter(spread))
}

func lockedRand(r *rand.Rand) func(int64) int64 {
	var mu sync.Mutex
	return func(n int64) int64 {
		mu.Lock()
		defer mu.Unlock()
		return r.Int63n(n + 1)
	}
}
