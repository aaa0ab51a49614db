// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Mode selects how a session's rounds are tallied
type Mode string

// Voting mode constants
const (
	ModeRanked Mode = "ranked"
	ModeBinary Mode = "binary"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeRanked || m == ModeBinary
}

// RoundState is the lifecycle state of a session's current round
type RoundState string

// Round state constants
const (
	StateIdle       RoundState = "idle"
	StateCollecting RoundState = "collecting"
	StateDecided    RoundState = "decided"
	StateDestroyed  RoundState = "destroyed"
)

// CanAcceptVotes reports whether ballots are recorded in this state
func (s RoundState) CanAcceptVotes() bool {
	return s == StateCollecting
}

// ParticipantID is an opaque per-account key.
type ParticipantID string

// Choice is a candidate ordinal, starting at 1
type Choice int

// Candidate is one option of a round
type Candidate struct {
	Name   string `json:"name"`
	Number Choice `json:"number"`
}

// Binary mode candidates, in definition order
const (
	ChoiceSkip Choice = 1
	ChoiceKeep Choice = 2
)

// Chat symbols accepted for binary votes
const (
	SymbolSkip = "+"
	SymbolKeep = "-"
)

// BinaryCandidates returns the fixed skip/keep pair used by binary rounds
func BinaryCandidates() []Candidate {
	return []Candidate{
		{Name: "skip", Number: ChoiceSkip},
		{Name: "keep", Number: ChoiceKeep},
	}
}

// NumberCandidates assigns ordinals 1..N in list order
func NumberCandidates(names []string) []Candidate {
	candidates := make([]Candidate, len(names))
	for i, name := range names {
		candidates[i] = Candidate{Name: name, Number: Choice(i + 1)}
	}
	return candidates
}

// Count is the tally for one candidate
type Count struct {
	Candidate Candidate `json:"candidate"`
	Votes     int       `json:"votes"`
}

// OutcomeKind distinguishes the terminal results of an evaluation
type OutcomeKind string

// Outcome kind constants
const (
	OutcomeDecided  OutcomeKind = "decided"
	OutcomeNoQuorum OutcomeKind = "no_quorum"
	OutcomeTie      OutcomeKind = "tie"
)

// Outcome is the verdict for a round.
// Winner is set only for OutcomeDecided, Tied only for OutcomeTie.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Winner     *Candidate  `json:"winner,omitempty"`
	Tied       []Candidate `json:"tied,omitempty"`
	Counts     []Count     `json:"counts"`
	TotalVotes int         `json:"total_votes"`
}

// NotificationKind names an outbound message variant
type NotificationKind string

// Notification kind constants
const (
	KindRoundStarted     NotificationKind = "round_started"
	KindVoteAcknowledged NotificationKind = "vote_acknowledged"
	KindVoteRejected     NotificationKind = "vote_rejected"
	KindReminder         NotificationKind = "reminder"
	KindRoundDecided     NotificationKind = "round_decided"
	KindRoundRejected    NotificationKind = "round_rejected"
	KindLeaderChanged    NotificationKind = "leader_changed"
)

// Notification is an outbound lifecycle message.
// An empty Recipient means broadcast; otherwise it is a whisper.
type Notification struct {
	ID         string           `json:"id"`
	Seq        uint64           `json:"seq,omitempty"`
	SessionID  string           `json:"session_id"`
	RoundID    string           `json:"round_id,omitempty"`
	Mode       Mode             `json:"mode"`
	Kind       NotificationKind `json:"kind"`
	At         time.Time        `json:"at"`
	Recipient  ParticipantID    `json:"recipient,omitempty"`
	Restarted  bool             `json:"restarted,omitempty"`
	Candidates []Candidate      `json:"candidates,omitempty"`
	Choice     *Candidate       `json:"choice,omitempty"`
	Previous   *Candidate       `json:"previous,omitempty"`
	Tally      []Count          `json:"tally,omitempty"`
	Outcome    *Outcome         `json:"outcome,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Remaining  time.Duration    `json:"remaining,omitempty"`
}

// Broadcast reports whether the notification goes to every participant
func (n Notification) Broadcast() bool {
	return n.Recipient == ""
}

// Request types

type CreateSessionRequest struct {
	Mode string `json:"mode"`
}

type CastVoteRequest struct {
	Voter string `json:"voter"`
	Input string `json:"input"`
}

type StartRoundRequest struct {
	Candidates []string `json:"candidates"`
	Initiator  string   `json:"initiator"`
}

type ResetRequest struct {
	ActivityStartedAt *time.Time `json:"activity_started_at,omitempty"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	AdminKey  string `json:"admin_key"`
	Mode      Mode   `json:"mode"`
}

type CastVoteResponse struct {
	Choice   Candidate  `json:"choice"`
	Previous *Candidate `json:"previous,omitempty"`
}

type RoundResponse struct {
	RoundID    string      `json:"round_id"`
	Candidates []Candidate `json:"candidates"`
}

type EndRoundResponse struct {
	RoundID string  `json:"round_id"`
	Outcome Outcome `json:"outcome"`
}

type BallotResponse struct {
	Voter  ParticipantID `json:"voter"`
	Choice Candidate     `json:"choice"`
}

// SessionStatus is the live view of a session, used for status and results
type SessionStatus struct {
	SessionID     string      `json:"session_id"`
	Mode          Mode        `json:"mode"`
	State         RoundState  `json:"state"`
	RoundID       string      `json:"round_id,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty"`
	Tally         []Count     `json:"tally,omitempty"`
	TotalVotes    int         `json:"total_votes"`
	Quorum        int         `json:"quorum,omitempty"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	DeadlineAt    *time.Time  `json:"deadline_at,omitempty"`
	LastDecidedAt *time.Time  `json:"last_decided_at,omitempty"`
	LastOutcome   *Outcome    `json:"last_outcome,omitempty"`
}

type EventsResponse struct {
	Events []Notification `json:"events"`
	Last   uint64         `json:"last"`
}

// OutcomeRecord is one journal row
type OutcomeRecord struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	RoundID    string      `json:"round_id"`
	Mode       Mode        `json:"mode"`
	Kind       OutcomeKind `json:"kind"`
	Winner     *string     `json:"winner,omitempty"`
	TotalVotes int         `json:"total_votes"`
	Outcome    Outcome     `json:"outcome"`
	DecidedAt  time.Time   `json:"decided_at"`
}

type HistoryResponse struct {
	Results []OutcomeRecord `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RemainingMS int64  `json:"remaining_ms,omitempty"`
}
