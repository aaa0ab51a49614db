// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Mode: ranked (numbered candidates) or binary (skip/keep)
  - RoundState: idle, collecting, decided, destroyed
  - Candidate, Choice: a named option and its 1-based ordinal
  - Count, Outcome: tallies and the verdict of a round
  - Notification: an outbound broadcast or whisper
  - OutcomeRecord: one journaled decision

Binary rounds always use BinaryCandidates: skip is 1, keep is 2. Chat input
maps "+" to skip and "-" to keep.

# Request Types

  - CreateSessionRequest: mode
  - StartRoundRequest: candidates, initiator
  - CastVoteRequest: voter, input
  - ResetRequest: activity_started_at

# Response Types

  - CreateSessionResponse: session_id, admin_key, mode
  - RoundResponse, EndRoundResponse, CastVoteResponse, BallotResponse
  - SessionStatus: live state, tally, deadline and last outcome
  - EventsResponse, HistoryResponse
  - ErrorResponse: error, message, reason, remaining_ms

# Errors

Sentinel errors cover the rejection taxonomy. Start gates wrap theirs with
Reject so callers can read the remaining time:

	if errors.Is(err, models.ErrCooldownActive) {
		wait := models.RemainingOf(err)
	}

ReasonOf maps an error to its wire reason code.
*/
package models
