// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/roundvote/cliparse"
	"github.com/danielhkuo/roundvote/db"
	"github.com/danielhkuo/roundvote/handlers"
	"github.com/danielhkuo/roundvote/metrics"
	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/session"
)

// Deps are the running components the routes serve
type Deps struct {
	Registry *session.Registry
	Feed     *notify.Feed
	// Journal is nil when no database is configured
	Journal *db.Journal
	Config  cliparse.Config
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	var history handlers.HistoryReader
	if deps.Journal != nil {
		history = deps.Journal
	}

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(deps.Registry, deps.Feed, deps.Config)
	votingHandler := handlers.NewVotingHandler(deps.Registry)
	adminHandler := handlers.NewAdminHandler(deps.Registry)
	resultsHandler := handlers.NewResultsHandler(deps.Registry, deps.Feed, history)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(deps.Config.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Sessions
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /sessions/{id}", admin(sessionHandler.DeleteSession))

	// Voting (public, voter named in the body)
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /sessions/{id}/ballots/{voter}", middleware.WithLogging(votingHandler.GetBallot))

	// Round commands (admin)
	mux.HandleFunc("POST /sessions/{id}/start", admin(adminHandler.StartRound))
	mux.HandleFunc("POST /sessions/{id}/restart", admin(adminHandler.RestartRound))
	mux.HandleFunc("POST /sessions/{id}/end", admin(adminHandler.EndRound))
	mux.HandleFunc("POST /sessions/{id}/destroy", admin(adminHandler.DestroyRound))
	mux.HandleFunc("POST /sessions/{id}/reset", admin(adminHandler.ResetSession))

	// Notification feed and journal
	mux.HandleFunc("GET /sessions/{id}/events", middleware.WithLogging(resultsHandler.GetEvents))
	mux.HandleFunc("GET /sessions/{id}/history", middleware.WithLogging(resultsHandler.GetHistory))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("roundvote API v1"))
	})

	return mux
}
