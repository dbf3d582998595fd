package game

import (
	"sync"
	"time"

	"github.com/ayusman/janken/internal/clock"
)

// Countdown ticks once per second from a starting value down to zero.
//
// At most one run is live at a time. Each run carries a generation number;
// Cancel bumps it, so a tick already queued behind the cancel is dropped
// instead of being delivered.
type Countdown struct {
	clock    clock.Clock
	dispatch func(func())
	interval time.Duration

	mu         sync.Mutex
	gen        uint64
	running    bool
	remaining  int
	timer      clock.Timer
	onTick     func(remaining int)
	onComplete func()
}

// NewCountdown creates a Countdown. Tick callbacks are handed to dispatch,
// which lets an owner run them on its own goroutine; nil runs them inline on
// the timer goroutine.
func NewCountdown(c clock.Clock, dispatch func(func())) *Countdown {
	if c == nil {
		c = clock.Real{}
	}
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Countdown{
		clock:    c,
		dispatch: dispatch,
		interval: time.Second,
	}
}

// Start begins counting down from seconds. onTick receives the starting
// value immediately and each remaining value above zero; onComplete runs when
// zero is reached. Start returns false and does nothing if a run is live.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onComplete func()) bool {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return false
	}
	if seconds < 1 {
		seconds = 1
	}
	c.gen++
	c.running = true
	c.remaining = seconds
	c.onTick = onTick
	c.onComplete = onComplete
	c.schedule(c.gen)
	c.mu.Unlock()

	if onTick != nil {
		onTick(seconds)
	}
	return true
}

// schedule arms the next tick. Caller holds c.mu.
func (c *Countdown) schedule(gen uint64) {
	c.timer = c.clock.AfterFunc(c.interval, func() {
		c.dispatch(func() { c.step(gen) })
	})
}

func (c *Countdown) step(gen uint64) {
	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}

	c.remaining--
	remaining := c.remaining
	onTick, onComplete := c.onTick, c.onComplete

	if remaining > 0 {
		c.schedule(gen)
		c.mu.Unlock()
		if onTick != nil {
			onTick(remaining)
		}
		return
	}

	c.running = false
	c.timer = nil
	c.mu.Unlock()

	if onComplete != nil {
		onComplete()
	}
}

// Cancel stops a live run. No tick or completion from it is delivered
// afterwards. Cancel is idempotent.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.running = false
	c.remaining = 0
}

// Running reports whether a run is live.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Remaining returns the seconds left in the live run, or 0.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
