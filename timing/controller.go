// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timing

import "time"

// FireKind identifies which schedule produced a Fire
type FireKind uint8

const (
	FireDeadline FireKind = iota + 1
	FireReminder
)

func (k FireKind) String() string {
	switch k {
	case FireDeadline:
		return "deadline"
	case FireReminder:
		return "reminder"
	default:
		return "unknown"
	}
}

// Fire is a timer expiry, tagged with the epoch of the Arm call that
// scheduled it.
type Fire struct {
	Epoch uint64
	Kind  FireKind
}

// Controller owns the deadline and reminder schedules of one round at a time.
//
// Timer goroutines never run round logic. They hand a Fire to post, which
// must enqueue it on the owner's event sequence; the owner then calls Handle
// from that sequence. Arm, Disarm and Handle must only be called from the
// owner's sequence. It is NOT THREAD SAFE to use otherwise.
type Controller struct {
	clock Clock
	post  func(Fire)

	epoch      uint64
	armed      bool
	deadline   Timer
	reminder   Timer
	deadlineAt time.Time

	onDeadline func()
	onReminder func()
}

// NewController creates a disarmed controller
func NewController(clock Clock, post func(Fire)) *Controller {
	return &Controller{
		clock: clock,
		post:  post,
	}
}

// Arm schedules the deadline and reminders described by cfg from now.
// Any previous schedule is disarmed first.
func (c *Controller) Arm(cfg Config, onDeadline, onReminder func()) {
	c.Disarm()

	c.armed = true
	c.onDeadline = onDeadline
	c.onReminder = onReminder
	epoch := c.epoch

	if cfg.ActiveDuration > 0 {
		c.deadlineAt = c.clock.Now().Add(cfg.ActiveDuration)
		c.deadline = c.clock.AfterFunc(cfg.ActiveDuration, func() {
			c.post(Fire{Epoch: epoch, Kind: FireDeadline})
		})
	}

	if cfg.ReminderInterval > 0 {
		c.reminder = c.clock.Tick(cfg.ReminderInterval, func() {
			c.post(Fire{Epoch: epoch, Kind: FireReminder})
		})
	}
}

// Disarm cancels both schedules. It is idempotent. Once it returns, Handle
// ignores every Fire produced by earlier Arm calls, including ones already
// queued.
func (c *Controller) Disarm() {
	c.epoch++
	c.armed = false
	c.onDeadline = nil
	c.onReminder = nil
	c.deadlineAt = time.Time{}

	if c.deadline != nil {
		c.deadline.Stop()
		c.deadline = nil
	}
	if c.reminder != nil {
		c.reminder.Stop()
		c.reminder = nil
	}
}

// Handle runs the callback for f if it belongs to the current schedule.
// It reports whether a callback ran.
func (c *Controller) Handle(f Fire) bool {
	if !c.armed || f.Epoch != c.epoch {
		return false
	}

	switch f.Kind {
	case FireDeadline:
		cb := c.onDeadline
		if cb == nil {
			return false
		}
		// The deadline fires exactly once.
		c.onDeadline = nil
		c.deadline = nil
		cb()
		return true
	case FireReminder:
		if c.onReminder == nil {
			return false
		}
		c.onReminder()
		return true
	default:
		return false
	}
}

// Armed reports whether a schedule is live
func (c *Controller) Armed() bool {
	return c.armed
}

// DeadlineAt returns when the deadline fires, or zero when none is armed
func (c *Controller) DeadlineAt() time.Time {
	return c.deadlineAt
}
