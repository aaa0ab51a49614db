// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/session"
)

// AdminHandler serves the round commands. Routes are expected to sit
// behind middleware.RequireAdmin.
type AdminHandler struct {
	registry *session.Registry
}

func NewAdminHandler(registry *session.Registry) *AdminHandler {
	return &AdminHandler{registry: registry}
}

func (h *AdminHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return nil, false
	}
	return s, true
}

// parseOptionalBody decodes a JSON body when one was sent
func parseOptionalBody(r *http.Request, v any) error {
	err := middleware.ParseJSONBody(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// StartRound handles POST /sessions/{id}/start
func (h *AdminHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req models.StartRoundRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := s.Start(r.Context(), session.StartRequest{
		Candidates: req.Candidates,
		Initiator:  models.ParticipantID(req.Initiator),
	})
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// RestartRound handles POST /sessions/{id}/restart
func (h *AdminHandler) RestartRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp, err := s.Restart(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// EndRound handles POST /sessions/{id}/end
func (h *AdminHandler) EndRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp, err := s.End(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DestroyRound handles POST /sessions/{id}/destroy
func (h *AdminHandler) DestroyRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := s.Destroy(r.Context()); err != nil {
		writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession handles POST /sessions/{id}/reset
func (h *AdminHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req models.ResetRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var startedAt time.Time
	if req.ActivityStartedAt != nil {
		startedAt = *req.ActivityStartedAt
	}
	if err := s.Reset(r.Context(), startedAt); err != nil {
		writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
