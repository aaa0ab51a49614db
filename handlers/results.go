// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/session"
)

// HistoryReader lists journaled outcomes, newest first
type HistoryReader interface {
	ListOutcomes(ctx context.Context, sessionID string, limit int) ([]models.OutcomeRecord, error)
}

type ResultsHandler struct {
	registry *session.Registry
	feed     *notify.Feed
	history  HistoryReader
}

// NewResultsHandler creates the feed and history handler.
// A nil history disables GET /sessions/{id}/history.
func NewResultsHandler(registry *session.Registry, feed *notify.Feed, history HistoryReader) *ResultsHandler {
	return &ResultsHandler{registry: registry, feed: feed, history: history}
}

// GetEvents handles GET /sessions/{id}/events?after=N
func (h *ResultsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := h.registry.Get(sessionID); err != nil {
		writeSessionError(w, r, err)
		return
	}

	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "after must be a sequence number")
			return
		}
		after = n
	}

	events, last := h.feed.Since(sessionID, after)
	middleware.JSONResponse(w, http.StatusOK, models.EventsResponse{
		Events: events,
		Last:   last,
	})
}

// GetHistory handles GET /sessions/{id}/history?limit=N
func (h *ResultsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "History is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	sessionID := r.PathValue("id")
	results, err := h.history.ListOutcomes(r.Context(), sessionID, limit)
	if err != nil {
		slog.Error("failed to list outcomes", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Results: results})
}
