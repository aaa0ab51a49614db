// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the roundvote API.

	mux := router.NewRouter(router.Deps{Registry: registry, Feed: feed, Journal: journal, Config: cfg})

# Endpoints

Infra:

	GET /health
	GET /metrics

Sessions:

	POST   /sessions       - Create session (returns admin_key)
	GET    /sessions/{id}  - Status and live tally
	DELETE /sessions/{id}  - Stop and forget (admin)

Voting (public):

	POST /sessions/{id}/votes            - Cast or change a vote
	GET  /sessions/{id}/ballots/{voter}  - Voter's current choice

Round commands (admin, requires X-Admin-Key):

	POST /sessions/{id}/start
	POST /sessions/{id}/restart
	POST /sessions/{id}/end
	POST /sessions/{id}/destroy
	POST /sessions/{id}/reset

Feed and journal:

	GET /sessions/{id}/events?after=N
	GET /sessions/{id}/history?limit=N  - 404 when no database is configured
*/
package router
