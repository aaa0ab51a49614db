// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"fmt"
	"sort"

	"github.com/danielhkuo/roundvote/models"
)

// Ledger records at most one current ballot per participant and keeps
// per-candidate counts consistent with those ballots.
// It is NOT THREAD SAFE to use; the owning session serializes access.
type Ledger struct {
	candidates []models.Candidate
	index      map[models.Choice]int // choice -> position in candidates
	ballots    map[models.ParticipantID]models.Choice
	counts     map[models.Choice]int
}

// New creates an empty ledger for the given candidates
func New(candidates []models.Candidate) *Ledger {
	l := &Ledger{
		candidates: append([]models.Candidate(nil), candidates...),
		index:      make(map[models.Choice]int, len(candidates)),
		ballots:    make(map[models.ParticipantID]models.Choice),
		counts:     make(map[models.Choice]int, len(candidates)),
	}
	for i, c := range l.candidates {
		l.index[c.Number] = i
	}
	return l
}

// CastVote records or overwrites the voter's ballot.
// It returns the voter's previous choice when there was one.
func (l *Ledger) CastVote(voter models.ParticipantID, choice models.Choice) (
	previous models.Choice, hadPrevious bool, err error) {
	if _, known := l.index[choice]; !known {
		return 0, false, fmt.Errorf("%w: %d", models.ErrInvalidChoice, choice)
	}

	previous, hadPrevious = l.ballots[voter]
	if hadPrevious {
		if previous == choice {
			return previous, true, nil
		}
		l.counts[previous]--
	}

	l.ballots[voter] = choice
	l.counts[choice]++
	return previous, hadPrevious, nil
}

// TotalVotes returns the number of voters with a current ballot
func (l *Ledger) TotalVotes() int {
	return len(l.ballots)
}

// CountFor returns the votes for a choice
func (l *Ledger) CountFor(choice models.Choice) int {
	return l.counts[choice]
}

// BallotOf returns the voter's current choice
func (l *Ledger) BallotOf(voter models.ParticipantID) (models.Choice, bool) {
	choice, ok := l.ballots[voter]
	return choice, ok
}

// Candidate looks up a candidate by ordinal
func (l *Ledger) Candidate(choice models.Choice) (models.Candidate, bool) {
	i, ok := l.index[choice]
	if !ok {
		return models.Candidate{}, false
	}
	return l.candidates[i], true
}

// Candidates returns a copy of the candidate list in definition order
func (l *Ledger) Candidates() []models.Candidate {
	return append([]models.Candidate(nil), l.candidates...)
}

// Snapshot returns every candidate's count sorted by count descending.
// Equal counts keep definition order, never vote arrival order.
func (l *Ledger) Snapshot() []models.Count {
	counts := make([]models.Count, len(l.candidates))
	for i, c := range l.candidates {
		counts[i] = models.Count{Candidate: c, Votes: l.counts[c.Number]}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]

		// 1. Higher count first
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}

		// 2. Lower ordinal first
		return a.Candidate.Number < b.Candidate.Number
	})

	return counts
}
