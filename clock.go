package touchflow

import (
	"sort"
	"time"
)

// Scheduler runs a function once after a delay. The recognizer uses it for
// the long-press timer.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock is a virtual clock implementing Scheduler. Time only moves when the
// host calls Advance, typically once per frame with the frame delta, so all
// timers fire on the caller's goroutine in deadline order.
//
// There is no global clock. Each host owns one and advances it itself.
type Clock struct {
	now     time.Duration
	pending []*clockTimer
	seq     uint64
}

type clockTimer struct {
	clock    *Clock
	deadline time.Duration
	seq      uint64
	fn       func()
	done     bool
}

// NewClock creates a clock starting at the given offset.
func NewClock(start time.Duration) *Clock {
	return &Clock{now: start}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// AfterFunc schedules fn to run once the clock has advanced by d. A
// non-positive d fires on the next Advance call.
func (c *Clock) AfterFunc(d time.Duration, fn func()) Timer {
	c.seq++
	t := &clockTimer{clock: c, deadline: c.now + max(d, 0), seq: c.seq, fn: fn}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the clock forward by d and runs every timer whose deadline
// has been reached, earliest first. Timers scheduled by a firing callback run
// within the same call if they fall inside the window.
func (c *Clock) Advance(d time.Duration) {
	c.AdvanceTo(c.now + max(d, 0))
}

// AdvanceTo moves the clock to t. Moving backwards is ignored.
func (c *Clock) AdvanceTo(t time.Duration) {
	if t < c.now {
		return
	}
	for {
		next := c.nextDue(t)
		if next == nil {
			break
		}
		c.now = next.deadline
		next.done = true
		c.drop(next)
		next.fn()
	}
	c.now = t
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *Clock) Pending() int {
	return len(c.pending)
}

func (c *Clock) nextDue(limit time.Duration) *clockTimer {
	if len(c.pending) == 0 {
		return nil
	}
	sort.SliceStable(c.pending, func(i, j int) bool {
		a, b := c.pending[i], c.pending[j]
		if a.deadline != b.deadline {
			return a.deadline < b.deadline
		}
		return a.seq < b.seq
	})
	if c.pending[0].deadline > limit {
		return nil
	}
	return c.pending[0]
}

func (c *Clock) drop(t *clockTimer) {
	for i, p := range c.pending {
		if p == t {
			copy(c.pending[i:], c.pending[i+1:])
			c.pending[len(c.pending)-1] = nil
			c.pending = c.pending[:len(c.pending)-1]
			return
		}
	}
}

// Stop implements Timer.
func (t *clockTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.drop(t)
	return true
}
