// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/verdict"
)

// Remaining renders d the way chat messages show it, e.g. "3 minutes"
func Remaining(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	var base time.Time
	return strings.TrimSpace(humanize.RelTime(base, base.Add(d), "", ""))
}

// Render formats n as the line a participant would see
func Render(n models.Notification) string {
	switch n.Kind {
	case models.KindRoundStarted:
		prefix := "Vote started"
		if n.Restarted {
			prefix = "Vote restarted"
		}
		if n.Mode == models.ModeBinary {
			return fmt.Sprintf(`%s. Type "%s" to skip the map or "%s" to keep it.`,
				prefix, models.SymbolSkip, models.SymbolKeep)
		}
		return fmt.Sprintf("%s. Type a number to vote: %s", prefix, candidateList(n.Candidates))

	case models.KindVoteAcknowledged:
		if n.Choice == nil {
			return "Vote recorded"
		}
		if n.Previous != nil && n.Previous.Number != n.Choice.Number {
			return fmt.Sprintf("Vote changed from %s to %s", n.Previous.Name, n.Choice.Name)
		}
		return fmt.Sprintf("You voted for %s", n.Choice.Name)

	case models.KindVoteRejected:
		return "Invalid vote: " + n.Reason

	case models.KindReminder:
		return "Vote in progress. " + tallyLine(n.Tally)

	case models.KindLeaderChanged:
		if n.Choice == nil {
			return "Vote in progress. " + tallyLine(n.Tally)
		}
		return fmt.Sprintf("%s is now leading. %s", n.Choice.Name, tallyLine(n.Tally))

	case models.KindRoundDecided:
		return outcomeLine(n.Mode, n.Outcome)

	case models.KindRoundRejected:
		if n.Remaining > 0 {
			return fmt.Sprintf("Cannot start a vote (%s), try again in %s", n.Reason, Remaining(n.Remaining))
		}
		return fmt.Sprintf("Cannot start a vote (%s)", n.Reason)

	default:
		return string(n.Kind)
	}
}

func candidateList(candidates []models.Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("%d - %s", c.Number, c.Name)
	}
	return strings.Join(parts, ", ")
}

func tallyLine(tally []models.Count) string {
	parts := make([]string, len(tally))
	for i, c := range tally {
		parts[i] = fmt.Sprintf("%s: %d", c.Candidate.Name, c.Votes)
	}
	return strings.Join(parts, ", ")
}

func outcomeLine(mode models.Mode, outcome *models.Outcome) string {
	if outcome == nil {
		return "Vote ended"
	}
	switch outcome.Kind {
	case models.OutcomeNoQuorum:
		return fmt.Sprintf("Not enough people voted (%d votes)", outcome.TotalVotes)
	case models.OutcomeTie:
		names := make([]string, len(outcome.Tied))
		for i, c := range outcome.Tied {
			names[i] = c.Name
		}
		return fmt.Sprintf("Vote tied between %s. %s", strings.Join(names, ", "), tallyLine(outcome.Counts))
	default:
		if outcome.Winner == nil {
			return "Vote ended"
		}
		if mode == models.ModeBinary {
			// Only a skip majority changes anything
			if verdict.Skips(*outcome) {
				return "Vote passed, the map will be skipped. " + tallyLine(outcome.Counts)
			}
			return "Vote failed, the map stays. " + tallyLine(outcome.Counts)
		}
		return fmt.Sprintf("%s won the vote. %s", outcome.Winner.Name, tallyLine(outcome.Counts))
	}
}
