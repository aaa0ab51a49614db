// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger keeps the ballots of a single round.

Each participant has at most one current ballot. Casting again overwrites
the old ballot and moves exactly one count from the old choice to the new:

	l := ledger.New(models.NumberCandidates([]string{"Narva", "Gorodok"}))
	prev, had, err := l.CastVote("steam-123", 2)

Snapshot orders candidates by count, then by ordinal, so early voters never
decide ties.
*/
package ledger
