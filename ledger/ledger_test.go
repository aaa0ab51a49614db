// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danielhkuo/roundvote/models"
)

func threeMaps() []models.Candidate {
	return models.NumberCandidates([]string{"Narva", "Gorodok", "Mutaha"})
}

// assertConsistent checks that the sum of counts equals the number of ballots
func assertConsistent(t *testing.T, l *Ledger) {
	t.Helper()

	sum := 0
	for _, c := range l.Snapshot() {
		if c.Votes < 0 {
			t.Fatalf("negative count for %s: %d", c.Candidate.Name, c.Votes)
		}
		sum += c.Votes
	}
	if sum != l.TotalVotes() {
		t.Fatalf("tally diverged from ballots: sum %d, total %d", sum, l.TotalVotes())
	}
}

func TestCastVote_FirstVote(t *testing.T) {
	l := New(threeMaps())

	prev, had, err := l.CastVote("steam-1", 2)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if had {
		t.Errorf("Expected no previous vote, got %d", prev)
	}
	if l.TotalVotes() != 1 {
		t.Errorf("Expected 1 vote, got %d", l.TotalVotes())
	}
	if l.CountFor(2) != 1 {
		t.Errorf("Expected 1 vote for choice 2, got %d", l.CountFor(2))
	}
	assertConsistent(t, l)
}

func TestCastVote_OverwriteShiftsOneCount(t *testing.T) {
	l := New(threeMaps())

	if _, _, err := l.CastVote("steam-1", 1); err != nil {
		t.Fatal(err)
	}
	if _, _, err := l.CastVote("steam-2", 1); err != nil {
		t.Fatal(err)
	}

	prev, had, err := l.CastVote("steam-1", 3)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if !had || prev != 1 {
		t.Errorf("Expected previous choice 1, got %d (had=%v)", prev, had)
	}
	if l.TotalVotes() != 2 {
		t.Errorf("Overwrite should keep total at 2, got %d", l.TotalVotes())
	}
	if l.CountFor(1) != 1 || l.CountFor(3) != 1 {
		t.Errorf("Expected counts 1:1 3:1, got 1:%d 3:%d", l.CountFor(1), l.CountFor(3))
	}
	assertConsistent(t, l)
}

func TestCastVote_SameChoiceAgain(t *testing.T) {
	l := New(threeMaps())

	l.CastVote("steam-1", 2)
	prev, had, err := l.CastVote("steam-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !had || prev != 2 {
		t.Errorf("Expected previous choice 2, got %d (had=%v)", prev, had)
	}
	if l.CountFor(2) != 1 || l.TotalVotes() != 1 {
		t.Errorf("Repeat vote must not add: count %d total %d", l.CountFor(2), l.TotalVotes())
	}
}

func TestCastVote_InvalidChoice(t *testing.T) {
	l := New(threeMaps())
	l.CastVote("steam-1", 1)

	for _, choice := range []models.Choice{0, 4, -1, 99} {
		_, _, err := l.CastVote("steam-1", choice)
		if !errors.Is(err, models.ErrInvalidChoice) {
			t.Errorf("choice %d: expected ErrInvalidChoice, got %v", choice, err)
		}
	}

	// State must be untouched
	if got, _ := l.BallotOf("steam-1"); got != 1 {
		t.Errorf("Expected ballot to stay on 1, got %d", got)
	}
	if l.TotalVotes() != 1 || l.CountFor(1) != 1 {
		t.Errorf("Invalid vote changed the tally")
	}
	assertConsistent(t, l)
}

func TestSnapshot_OrderAndZeroCounts(t *testing.T) {
	l := New(threeMaps())

	// Early voters for candidate 3 must not win the tie against 2
	l.CastVote("a", 3)
	l.CastVote("b", 2)

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(snap))
	}

	expected := []struct {
		number models.Choice
		votes  int
	}{
		{2, 1},
		{3, 1},
		{1, 0},
	}
	for i, want := range expected {
		if snap[i].Candidate.Number != want.number || snap[i].Votes != want.votes {
			t.Errorf("position %d: expected %d(%d), got %d(%d)",
				i, want.number, want.votes, snap[i].Candidate.Number, snap[i].Votes)
		}
	}
}

func TestLedger_RandomSequencesStayConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := New(threeMaps())
	voters := []models.ParticipantID{"a", "b", "c", "d", "e"}
	seen := map[models.ParticipantID]bool{}

	for i := 0; i < 500; i++ {
		voter := voters[rng.Intn(len(voters))]
		choice := models.Choice(rng.Intn(5)) // includes invalid 0 and 4

		before := l.TotalVotes()
		_, had, err := l.CastVote(voter, choice)
		if err == nil {
			seen[voter] = true
			if had && l.TotalVotes() != before {
				t.Fatalf("overwrite changed total from %d to %d", before, l.TotalVotes())
			}
		}

		if l.TotalVotes() > len(seen) {
			t.Fatalf("total %d exceeds distinct voters %d", l.TotalVotes(), len(seen))
		}
		assertConsistent(t, l)
	}
}

func TestCandidates_ReturnsCopy(t *testing.T) {
	l := New(threeMaps())

	c := l.Candidates()
	c[0].Name = "changed"

	if got, _ := l.Candidate(1); got.Name != "Narva" {
		t.Errorf("Candidates() leaked internal slice, got %q", got.Name)
	}
}
