// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package verdict evaluates a round's tally.

Evaluate is a pure function of a snapshot, the mode and the quorum:

	outcome := verdict.Evaluate(models.ModeRanked, ledger.Snapshot(), quorum)

# Ranked Mode

NoQuorum when nobody voted or fewer than quorum votes were cast. Otherwise
the candidate with the most votes wins; when several share the top count the
outcome is a Tie listing them in ordinal order. A tie never produces a winner.

# Binary Mode

NoQuorum when skip+keep is below the minimum, Tie when skip == keep, and
otherwise the majority side wins. Skips reports whether the outer system
should change the activity.
*/
package verdict
