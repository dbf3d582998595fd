package clock

import (
	"testing"
	"time"
)

func TestReal_Now(t *testing.T) {
	c := Real{}
	before := time.Now()
	now := c.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestReal_AfterFunc(t *testing.T) {
	c := Real{}
	done := make(chan struct{})

	c.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("AfterFunc did not fire")
	}
}

func TestReal_AfterFuncStop(t *testing.T) {
	c := Real{}
	fired := make(chan struct{}, 1)

	timer := c.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })
	if !timer.Stop() {
		t.Fatal("expected Stop to report a pending call")
	}

	select {
	case <-fired:
		t.Error("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMock(start)

	var order []int
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	c.AfterFunc(time.Second, func() { order = append(order, 1) })

	c.Advance(500 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("expected nothing fired yet, got %v", order)
	}

	c.Advance(2 * time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected [1 2], got %v", order)
	}
	if got := c.Now(); !got.Equal(start.Add(2500 * time.Millisecond)) {
		t.Errorf("Now() = %v", got)
	}
	if c.Pending() != 0 {
		t.Errorf("expected no pending calls, got %d", c.Pending())
	}
}

func TestMock_ChainedCallbacks(t *testing.T) {
	c := NewMock(time.Time{})

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	if count != 3 {
		t.Errorf("expected 3 chained calls, got %d", count)
	}
}

func TestMock_Stop(t *testing.T) {
	c := NewMock(time.Time{})

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("expected Stop to report pending call")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}

	c.Advance(5 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}
