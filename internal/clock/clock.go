// Package clock provides a testable abstraction over the timers the game uses.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the subset of time operations the game needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for the duration to elapse and then calls f in its
	// own goroutine (real clock) or inline from Advance (mock clock).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from happening. It reports whether the call
	// was still pending.
	Stop() bool
}

// Real implements Clock using the standard time package.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Mock is a manually controlled clock for testing. Pending calls run
// synchronously from Advance, in deadline order.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*mockTimer
}

// NewMock creates a Mock set to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the mocked current time.
func (c *Mock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the mock time passes now+d.
func (c *Mock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &mockTimer{deadline: c.now.Add(d), f: f}
	c.pending = append(c.pending, t)
	return t
}

// Pending returns the number of calls that have not yet fired or been stopped.
func (c *Mock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.pending {
		if t.active() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and fires every call whose deadline has
// passed. Calls scheduled by fired callbacks are honored if they also fall
// inside the advanced window.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.pending, func(i, j int) bool {
			return c.pending[i].deadline.Before(c.pending[j].deadline)
		})

		var next *mockTimer
		for _, t := range c.pending {
			if t.active() && !t.deadline.After(target) {
				next = t
				break
			}
		}
		if next == nil {
			c.now = target
			c.compact()
			c.mu.Unlock()
			return
		}
		c.now = next.deadline
		c.mu.Unlock()

		next.fire()
	}
}

// compact drops fired and stopped timers. Caller holds c.mu.
func (c *Mock) compact() {
	live := c.pending[:0]
	for _, t := range c.pending {
		if t.active() {
			live = append(live, t)
		}
	}
	c.pending = live
}

type mockTimer struct {
	mu       sync.Mutex
	deadline time.Time
	f        func()
	done     bool
}

func (t *mockTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.done
}

func (t *mockTimer) fire() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	f := t.f
	t.mu.Unlock()

	f()
}

// Stop prevents the timer from firing.
func (t *mockTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.done
	t.done = true
	return wasActive
}
