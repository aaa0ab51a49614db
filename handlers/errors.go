// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/danielhkuo/roundvote/middleware"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
)

var errUnrecognizedVote = errors.New("unrecognized vote input")

// ParseVoteInput turns chat-style input into a choice.
// Binary sessions take exactly "+" (skip) or "-" (keep). Ranked sessions
// take the leading run of digits, so "2", "2 please" and "02" all vote 2. A
// number too large to parse votes 0, which no candidate has.
// Input that is not a vote at all returns an error without a choice.
func ParseVoteInput(mode models.Mode, input string) (models.Choice, error) {
	input = strings.TrimSpace(input)

	if mode == models.ModeBinary {
		switch input {
		case models.SymbolSkip:
			return models.ChoiceSkip, nil
		case models.SymbolKeep:
			return models.ChoiceKeep, nil
		}
		return 0, errUnrecognizedVote
	}

	end := strings.IndexFunc(input, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(input)
	}
	if end == 0 {
		return 0, errUnrecognizedVote
	}
	n, err := strconv.Atoi(input[:end])
	if errors.Is(err, strconv.ErrRange) {
		// Still a number, just not one on the ballot
		return 0, nil
	}
	if err != nil {
		return 0, errUnrecognizedVote
	}
	return models.Choice(n), nil
}

// writeSessionError maps engine errors onto HTTP responses
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")

	case errors.Is(err, models.ErrSessionClosed):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Session is closed")

	case errors.Is(err, models.ErrInvalidChoice), errors.Is(err, models.ErrNoCandidates):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())

	case models.ReasonOf(err) != "":
		remaining := models.RemainingOf(err)
		middleware.JSONResponse(w, http.StatusConflict, models.ErrorResponse{
			Error:       http.StatusText(http.StatusConflict),
			Message:     rejectionMessage(err),
			Reason:      models.ReasonOf(err),
			RemainingMS: remaining.Milliseconds(),
		})

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Request cancelled")

	default:
		slog.Error("session operation failed", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// rejectionMessage is the refusal text, e.g.
// "cooldown since last vote is active, try again in 3 minutes"
func rejectionMessage(err error) string {
	remaining := models.RemainingOf(err)
	if remaining <= 0 {
		return err.Error()
	}
	var rejection *models.RejectionError
	if !errors.As(err, &rejection) {
		return err.Error()
	}
	return rejection.Err.Error() + ", try again in " + notify.Remaining(remaining)
}
