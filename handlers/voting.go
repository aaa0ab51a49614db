// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/session"
)

type VotingHandler struct {
	registry *session.Registry
}

func NewVotingHandler(registry *session.Registry) *VotingHandler {
	return &VotingHandler{registry: registry}
}

// CastVote handles POST /sessions/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Voter == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter is required")
		return
	}

	choice, err := ParseVoteInput(s.Mode(), req.Input)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.CastVote(r.Context(), models.ParticipantID(req.Voter), choice)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetBallot handles GET /sessions/{id}/ballots/{voter}
func (h *VotingHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	voter := models.ParticipantID(r.PathValue("voter"))
	candidate, err := s.BallotOf(r.Context(), voter)
	if errors.Is(err, models.ErrNoBallot) || errors.Is(err, models.ErrNotActive) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No ballot found")
		return
	}
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Voter:  voter,
		Choice: candidate,
	})
}
