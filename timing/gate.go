// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timing

import (
	"time"

	"github.com/danielhkuo/roundvote/models"
)

// Config holds the timing windows of a round.
// A zero duration disables that window.
type Config struct {
	// StartLockout rejects starts until this long after the activity began.
	StartLockout time.Duration
	// EligibilityCutoff rejects starts once this long has passed since the
	// activity began.
	EligibilityCutoff time.Duration
	// ActiveDuration forces evaluation this long after the round opens.
	ActiveDuration time.Duration
	// ReminderInterval is the period of tally reminders while collecting.
	ReminderInterval time.Duration
	// Cooldown rejects starts until this long after the last decision.
	Cooldown time.Duration
}

// CheckStart applies the start gates in order: lockout, cutoff, cooldown.
// Lockout and cutoff are measured from activityStartedAt and skipped when it
// is zero. A future activityStartedAt counts as now. Cooldown is measured
// from lastDecidedAt and skipped when it is zero. The cooldown window is
// closed at the decision, so a start in that same instant reports the full
// cooldown as remaining.
func CheckStart(now, activityStartedAt, lastDecidedAt time.Time, cfg Config) error {
	if !activityStartedAt.IsZero() {
		elapsed := now.Sub(activityStartedAt)
		if elapsed < 0 {
			elapsed = 0
		}

		if cfg.StartLockout > 0 && elapsed < cfg.StartLockout {
			return models.Reject(models.ErrTooEarly, cfg.StartLockout-elapsed)
		}

		if cfg.EligibilityCutoff > 0 && elapsed > cfg.EligibilityCutoff {
			return models.Reject(models.ErrTooLate, 0)
		}
	}

	if cfg.Cooldown > 0 && !lastDecidedAt.IsZero() {
		remaining := lastDecidedAt.Add(cfg.Cooldown).Sub(now)
		if remaining > 0 {
			return models.Reject(models.ErrCooldownActive, remaining)
		}
	}

	return nil
}
