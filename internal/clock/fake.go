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

package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock only moves when told to. Callbacks scheduled with AfterFunc run
// synchronously, in due order, on the goroutine that advances the clock.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*FakeTimer
}

var _ Clock = (*FakeClock)(nil)

// NewFake returns a fake clock set to the Unix epoch.
func NewFake() *FakeClock {
	return NewFakeAt(time.Unix(0, 0))
}

// NewFakeAt returns a fake clock set to t.
func NewFakeAt(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the fake time.
func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

// AfterFunc schedules f to run once the clock has advanced by d. A
// non-positive d fires on the next Add or Set.
func (fc *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.seq++
	t := &FakeTimer{clock: fc, when: fc.now.Add(d), seq: fc.seq, f: f}
	fc.pending = append(fc.pending, t)
	return t
}

// Pending returns the number of scheduled callbacks that have not fired.
func (fc *FakeClock) Pending() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.pending)
}

// Add advances the clock by d.
func (fc *FakeClock) Add(d time.Duration) {
	fc.Set(fc.Now().Add(d))
}

// Set moves the clock to end, firing every callback due at or before it.
// Moving backwards only fires callbacks that are already due.
func (fc *FakeClock) Set(end time.Time) {
	for {
		fc.mu.Lock()
		t := fc.nextDue(end)
		if t == nil {
			if fc.now.Before(end) {
				fc.now = end
			}
			fc.mu.Unlock()
			return
		}
		if fc.now.Before(t.when) {
			fc.now = t.when
		}
		fc.mu.Unlock()
		t.f()
	}
}

// nextDue pops the earliest callback due at or before end. fc.mu must be
// held.
func (fc *FakeClock) nextDue(end time.Time) *FakeTimer {
	if len(fc.pending) == 0 {
		return nil
	}
	sort.SliceStable(fc.pending, func(i, j int) bool {
		a, b := fc.pending[i], fc.pending[j]
		if a.when.Equal(b.when) {
			return a.seq < b.seq
		}
		return a.when.Before(b.when)
	})
	t := fc.pending[0]
	if t.when.After(end) && t.when.After(fc.now) {
		return nil
	}
	fc.pending = fc.pending[1:]
	return t
}

// FakeTimer is a callback scheduled on a FakeClock.
type FakeTimer struct {
	clock *FakeClock
	when  time.Time
	seq   int
	f     func()
}

// Stop unschedules the callback.
func (t *FakeTimer) Stop() bool {
	fc := t.clock
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for i, p := range fc.pending {
		if p == t {
			fc.pending = append(fc.pending[:i], fc.pending[i+1:]...)
			return true
		}
	}
	return false
}
