// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrNoCandidates    = errors.New("round needs at least one candidate")
	ErrTooEarly        = errors.New("too early to start a vote")
	ErrTooLate         = errors.New("too late to start a vote")
	ErrCooldownActive  = errors.New("cooldown since last vote is active")
	ErrAlreadyActive   = errors.New("a vote is already active")
	ErrNotActive       = errors.New("no vote is active")
	ErrNoBallot        = errors.New("no ballot recorded")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
)

// Rejection reason codes
const (
	ReasonTooEarly       = "too_early"
	ReasonTooLate        = "too_late"
	ReasonCooldownActive = "cooldown_active"
	ReasonAlreadyActive  = "already_active"
	ReasonNotActive      = "not_active"
	ReasonInvalidChoice  = "invalid_choice"
)

// RejectionError carries the time left before a rejected request could succeed
type RejectionError struct {
	Err       error
	Remaining time.Duration
}

func (e *RejectionError) Error() string {
	if e.Remaining <= 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s remaining", e.Err, e.Remaining.Round(time.Second))
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Reject wraps err with the remaining duration
func Reject(err error, remaining time.Duration) error {
	return &RejectionError{Err: err, Remaining: remaining}
}

// RemainingOf returns the remaining duration carried by err, or zero
func RemainingOf(err error) time.Duration {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Remaining
	}
	return 0
}

// ReasonOf maps a rejection to its reason code.
// It returns "" for errors outside the rejection taxonomy.
func ReasonOf(err error) string {
	switch {
	case errors.Is(err, ErrTooEarly):
		return ReasonTooEarly
	case errors.Is(err, ErrTooLate):
		return ReasonTooLate
	case errors.Is(err, ErrCooldownActive):
		return ReasonCooldownActive
	case errors.Is(err, ErrAlreadyActive):
		return ReasonAlreadyActive
	case errors.Is(err, ErrNotActive):
		return ReasonNotActive
	case errors.Is(err, ErrInvalidChoice):
		return ReasonInvalidChoice
	default:
		return ""
	}
}
