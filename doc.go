// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the roundvote server.

roundvote coordinates timed chat votes for game servers: numbered map votes
and skip/keep votes, with start lockouts, cooldowns, reminders, quorum and an
early win threshold.

# Starting the Server

	ADMIN_KEY_SALT=secret go run .

With a journal:

	go run . -admin-salt secret -d roundvote.db
	go run . -admin-salt secret -t postgres -d "postgres://..."

# Configuration

Required settings:

  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d), DATABASE_TYPE (-t): outcome journal
  - LOG_LEVEL (-log-level)
  - per-mode timing, quorum and map pool, see package cliparse

# Architecture

  - ledger, timing, verdict: ballots, timers and evaluation
  - session: per-session round loop and the registry
  - notify: non-blocking dispatcher, log/feed/journal sinks
  - db: optional outcome journal (sqlite or postgres)
  - metrics: Prometheus collectors
  - handlers, router, middleware, auth: HTTP surface
  - cliparse: configuration parsing

The server exits on SIGINT or SIGTERM after draining HTTP requests, stopping
every session and flushing queued notifications.
*/
package main
