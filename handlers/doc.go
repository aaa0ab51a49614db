// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the roundvote API.

# Handler Types

Each handler is a struct over the running engine:

  - SessionHandler: create, inspect and delete sessions
  - VotingHandler: cast votes and read a voter's ballot
  - AdminHandler: start, restart, end, destroy and reset
  - ResultsHandler: notification feed and journal history

	sessionHandler := handlers.NewSessionHandler(registry, feed, cfg)

# Votes

Votes arrive as chat-style input and are parsed with ParseVoteInput:

	"+" / "-"    binary skip / keep
	"2", "2 gg"  ranked candidate 2

Input that is not a vote is a 400 and never reaches the session. A number
outside the candidate list is rejected by the round (400, and the voter is
whispered a rejection).

# Errors

Rejected commands are 409 with a reason code and, for timing gates, the
remaining time:

	{"error":"Conflict","message":"cooldown since last vote is active, try again in 3 minutes",
	 "reason":"cooldown_active","remaining_ms":180000}

An unknown session is 404. Admin routes require the X-Admin-Key header.
*/
package handlers
