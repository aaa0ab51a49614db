// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package timing implements the time windows of a voting round.

# Start Gates

CheckStart decides whether a new round may open:

	err := timing.CheckStart(now, activityStartedAt, lastDecidedAt, cfg)

  - StartLockout: TooEarly until the lockout has elapsed since the activity began
  - EligibilityCutoff: TooLate once the cutoff has elapsed since the activity began
  - Cooldown: CooldownActive until the cooldown has elapsed since the last decision

Rejections are *models.RejectionError values carrying the remaining duration.

# Schedules

Controller arms a one-shot deadline and a recurring reminder:

	c := timing.NewController(clock, post)
	c.Arm(cfg, onDeadline, onReminder)
	...
	c.Handle(fire) // from the owner's event loop
	c.Disarm()

Expiries are epoch-tagged Fire values delivered through post. Handle drops
any Fire whose epoch predates the last Arm or Disarm, so a restart or reset
can never be followed by a stale reminder.

# Clocks

RealClock wraps the time package. ManualClock only moves on Advance and
fires due timers synchronously, for tests.
*/
package timing
