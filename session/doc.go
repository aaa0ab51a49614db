// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session implements the round state machine of a voting session.

A Session moves between idle, collecting, decided and destroyed:

	idle ──start──▶ collecting ──end / deadline / instant win──▶ decided
	                   │  ▲
	                   │  └── restart (same candidates, fresh ledger)
	                   └────── destroy ──▶ destroyed

A start from decided or destroyed opens a new round once the timing gates
allow it. Reset returns the session to idle from any state, forgets the
cooldown baseline and records when the new activity began.

A ranked start without candidates draws Policy.PoolSize distinct names from
Policy.CandidatePool. Binary rounds always offer skip and keep, and a named
initiator casts the first skip vote.

Ranked rounds broadcast leader_changed whenever a vote gives the tally a new
sole leader. A tie at the top announces nothing.

# Concurrency

Each session has one loop goroutine (Run). Votes, admin commands, status
queries and timer fires are all events on that loop, so the ledger and the
timing controller are never shared. Notifications leave through a Publisher
that must not block, typically notify.Dispatcher.

A Registry creates sessions, runs their loops and stops them on Close.
*/
package session
