// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timing

import (
	"sort"
	"sync"
	"time"
)

// ManualClock is a Clock whose time only moves when Advance or Set is called.
// Due callbacks run synchronously on the goroutine calling Advance, in
// deadline order, which makes timer-driven code deterministic in tests.
// It is safe for concurrent use.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  uint64
	pending map[uint64]*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	id       uint64
	at       time.Time
	interval time.Duration // zero for one-shot timers
	f        func()
}

// NewManualClock creates a clock frozen at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{
		now:     start,
		pending: make(map[uint64]*manualTimer),
	}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, 0, f)
}

func (c *ManualClock) Tick(d time.Duration, f func()) Timer {
	return c.schedule(d, d, f)
}

func (c *ManualClock) schedule(d, interval time.Duration, f func()) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &manualTimer{
		clock:    c,
		id:       c.nextID,
		at:       c.now.Add(d),
		interval: interval,
		f:        f,
	}
	c.pending[t.id] = t
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.pending[t.id]; !ok {
		return false
	}
	delete(t.clock.pending, t.id)
	return true
}

// Pending returns the number of scheduled timers
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Set moves the clock to t without firing anything
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d, firing every timer that becomes due.
// Recurring timers fire once per elapsed interval.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t, ok := c.nextDue(target)
		if !ok {
			break
		}
		t.f()
	}

	c.mu.Lock()
	if c.now.Before(target) {
		c.now = target
	}
	c.mu.Unlock()
}

// nextDue pops the earliest timer due at or before target and moves the
// clock to its deadline. Ties fire in scheduling order.
func (c *ManualClock) nextDue(target time.Time) (*manualTimer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	due := make([]*manualTimer, 0, len(c.pending))
	for _, t := range c.pending {
		if !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil, false
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].at.Equal(due[j].at) {
			return due[i].at.Before(due[j].at)
		}
		return due[i].id < due[j].id
	})

	t := due[0]
	c.now = t.at
	if t.interval > 0 {
		t.at = t.at.Add(t.interval)
	} else {
		delete(c.pending, t.id)
	}
	return t, true
}
