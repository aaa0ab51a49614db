// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verdict

import (
	"sort"

	"github.com/danielhkuo/roundvote/models"
)

// Evaluate turns a tally snapshot into an outcome.
//
// quorum is the minimum number of votes for a decision; zero means no
// quorum, but an empty tally is never a decision. The snapshot may be in
// any order; it is re-ranked by count, then ordinal.
func Evaluate(mode models.Mode, snapshot []models.Count, quorum int) models.Outcome {
	counts := rank(snapshot)

	total := 0
	for _, c := range counts {
		total += c.Votes
	}

	outcome := models.Outcome{
		Counts:     counts,
		TotalVotes: total,
	}

	if total == 0 || (quorum > 0 && total < quorum) {
		outcome.Kind = models.OutcomeNoQuorum
		return outcome
	}

	if mode == models.ModeBinary {
		return evaluateBinary(outcome)
	}
	return evaluateRanked(outcome)
}

// evaluateRanked picks the single top candidate, or reports every candidate
// sharing the top count as tied.
func evaluateRanked(outcome models.Outcome) models.Outcome {
	top := outcome.Counts[0].Votes

	var tied []models.Candidate
	for _, c := range outcome.Counts {
		if c.Votes != top {
			break
		}
		tied = append(tied, c.Candidate)
	}

	if len(tied) > 1 {
		outcome.Kind = models.OutcomeTie
		outcome.Tied = tied
		return outcome
	}

	winner := tied[0]
	outcome.Kind = models.OutcomeDecided
	outcome.Winner = &winner
	return outcome
}

// evaluateBinary applies the skip/keep majority rule. Equal counts are a tie;
// otherwise the majority side is the winner and only a skip winner asks the
// outer system to act.
func evaluateBinary(outcome models.Outcome) models.Outcome {
	var skip, keep models.Count
	for _, c := range outcome.Counts {
		switch c.Candidate.Number {
		case models.ChoiceSkip:
			skip = c
		case models.ChoiceKeep:
			keep = c
		}
	}

	switch {
	case skip.Votes == keep.Votes:
		outcome.Kind = models.OutcomeTie
		outcome.Tied = []models.Candidate{skip.Candidate, keep.Candidate}
	case skip.Votes > keep.Votes:
		winner := skip.Candidate
		outcome.Kind = models.OutcomeDecided
		outcome.Winner = &winner
	default:
		winner := keep.Candidate
		outcome.Kind = models.OutcomeDecided
		outcome.Winner = &winner
	}
	return outcome
}

// Skips reports whether a binary outcome asks to change the activity
func Skips(outcome models.Outcome) bool {
	return outcome.Kind == models.OutcomeDecided &&
		outcome.Winner != nil &&
		outcome.Winner.Number == models.ChoiceSkip
}

// Leader returns the candidate holding the top count alone. A tally that is
// empty or tied at the top has no leader.
func Leader(snapshot []models.Count) (models.Candidate, bool) {
	counts := rank(snapshot)
	if len(counts) == 0 || counts[0].Votes == 0 {
		return models.Candidate{}, false
	}
	if len(counts) > 1 && counts[1].Votes == counts[0].Votes {
		return models.Candidate{}, false
	}
	return counts[0].Candidate, true
}

func rank(snapshot []models.Count) []models.Count {
	counts := append([]models.Count(nil), snapshot...)

	sort.SliceStable(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]

		// 1. Higher count wins
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}

		// 2. Stable tie-breaking by ordinal (ascending)
		return a.Candidate.Number < b.Candidate.Number
	})

	return counts
}
