// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timing

import (
	"sync"
	"time"
)

// Timer is a cancellable schedule.
// Stop reports whether the call stopped a pending schedule.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and scheduling so rounds can be tested
// without sleeping.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once in its own goroutine after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Tick calls f every d until stopped.
	Tick(d time.Duration, f func()) Timer
}

// RealClock is the Clock backed by the time package
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (RealClock) Tick(d time.Duration, f func()) Timer {
	t := &ticker{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.ticker.C:
			f()
		case <-t.stop:
			return
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stop)
		stopped = true
	})
	return stopped
}
