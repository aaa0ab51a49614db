// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/roundvote/auth"
	"github.com/danielhkuo/roundvote/cliparse"
	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/session"
)

type SessionHandler struct {
	registry *session.Registry
	feed     *notify.Feed
	cfg      cliparse.Config
}

func NewSessionHandler(registry *session.Registry, feed *notify.Feed, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{registry: registry, feed: feed, cfg: cfg}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mode := models.Mode(req.Mode)
	if !mode.Valid() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mode must be ranked or binary")
		return
	}

	s, err := h.registry.Create(mode)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	slog.Info("session opened over http", "session_id", s.ID(), "mode", mode)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: s.ID(),
		AdminKey:  auth.GenerateAdminKey(s.ID(), h.cfg.AdminKeySalt),
		Mode:      mode,
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	status, err := s.Status(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, status)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if err := h.registry.Remove(sessionID); err != nil {
		writeSessionError(w, r, err)
		return
	}
	h.feed.Forget(sessionID)

	w.WriteHeader(http.StatusNoContent)
}
