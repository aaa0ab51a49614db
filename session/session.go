// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/roundvote/ledger"
	"github.com/danielhkuo/roundvote/metrics"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/timing"
	"github.com/danielhkuo/roundvote/verdict"
)

// Publisher accepts outbound notifications. Publish must not block.
type Publisher interface {
	Publish(n models.Notification) bool
}

// Policy is the per-session rule set
type Policy struct {
	Timing timing.Config
	// Quorum is the minimum number of votes for a decision. Zero disables it.
	Quorum int
	// InstantWin ends a binary round early once this many skip votes are in.
	// Zero disables it.
	InstantWin int
	// CandidatePool supplies ranked candidates when a start names none.
	// PoolSize of them are drawn at random, without repeats.
	CandidatePool []string
	PoolSize      int
}

// Config describes a new session
type Config struct {
	ID        string
	Mode      models.Mode
	Policy    Policy
	Clock     timing.Clock
	Publisher Publisher
	Logger    *slog.Logger
	// Rand draws pool candidates. Nil means a randomly seeded source.
	Rand *rand.Rand
	// ActivityStartedAt seeds the lockout and cutoff reference.
	ActivityStartedAt time.Time
}

// StartRequest carries the arguments of an admin start
type StartRequest struct {
	// Candidates names the ranked options in ordinal order. Ignored in
	// binary mode.
	Candidates []string
	// Initiator, when set in binary mode, casts the first skip vote.
	Initiator models.ParticipantID
}

type event func()

type round struct {
	id        string
	ledger    *ledger.Ledger
	startedAt time.Time

	// leader is the last announced sole leader of a ranked round
	leader models.Choice
}

// Session is the round controller of one session.
//
// Every exported method enqueues an event and waits for the loop started by
// Run to apply it. Timer fires travel through the same queue, so round
// state is only ever touched by the loop goroutine.
type Session struct {
	id        string
	mode      models.Mode
	policy    Policy
	clock     timing.Clock
	publisher Publisher
	logger    *slog.Logger
	rand      *rand.Rand

	events chan event
	done   chan struct{}

	// Owned by the loop
	state             models.RoundState
	round             *round
	timers            *timing.Controller
	activityStartedAt time.Time
	lastDecidedAt     time.Time
	lastOutcome       *models.Outcome
}

// New creates an idle session. Call Run to start processing.
func New(cfg Config) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Clock == nil {
		cfg.Clock = timing.RealClock{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Session{
		id:                cfg.ID,
		mode:              cfg.Mode,
		policy:            cfg.Policy,
		clock:             cfg.Clock,
		publisher:         cfg.Publisher,
		rand:              cfg.Rand,
		logger:            notify.ResolveLogger(cfg.Logger).With("session_id", cfg.ID, "mode", cfg.Mode),
		events:            make(chan event, 64),
		done:              make(chan struct{}),
		state:             models.StateIdle,
		activityStartedAt: cfg.ActivityStartedAt,
	}
	s.timers = timing.NewController(cfg.Clock, s.postFire)
	return s
}

func (s *Session) ID() string        { return s.id }
func (s *Session) Mode() models.Mode { return s.mode }

// Run applies events until ctx is done. Timers are disarmed on return.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.shutdown()

	for {
		select {
		case ev := <-s.events:
			ev()
		case <-ctx.Done():
			return nil
		}
	}
}

// Done is closed once Run has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) shutdown() {
	s.timers.Disarm()
	if s.state == models.StateCollecting {
		metrics.RoundClosed()
	}
}

// postFire runs on timer goroutines.
func (s *Session) postFire(f timing.Fire) {
	select {
	case s.events <- func() { s.timers.Handle(f) }:
	case <-s.done:
	}
}

// do runs fn on the loop and waits for it to finish
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	ev := func() {
		defer close(finished)
		fn()
	}

	select {
	case s.events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return models.ErrSessionClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return models.ErrSessionClosed
	}
}

// Start opens a new round
func (s *Session) Start(ctx context.Context, req StartRequest) (models.RoundResponse, error) {
	var (
		resp   models.RoundResponse
		result error
	)
	err := s.do(ctx, func() {
		resp, result = s.start(req)
	})
	if err != nil {
		return models.RoundResponse{}, err
	}
	return resp, result
}

// Restart reopens the active round with the same candidates and a fresh
// ledger and schedule
func (s *Session) Restart(ctx context.Context) (models.RoundResponse, error) {
	var (
		resp   models.RoundResponse
		result error
	)
	err := s.do(ctx, func() {
		resp, result = s.restart()
	})
	if err != nil {
		return models.RoundResponse{}, err
	}
	return resp, result
}

// End evaluates the active round now
func (s *Session) End(ctx context.Context) (models.EndRoundResponse, error) {
	var (
		resp   models.EndRoundResponse
		result error
	)
	err := s.do(ctx, func() {
		resp, result = s.end()
	})
	if err != nil {
		return models.EndRoundResponse{}, err
	}
	return resp, result
}

// Destroy discards the active round without a result
func (s *Session) Destroy(ctx context.Context) error {
	var result error
	if err := s.do(ctx, func() { result = s.destroy() }); err != nil {
		return err
	}
	return result
}

// CastVote records or overwrites the ballot of voter
func (s *Session) CastVote(ctx context.Context, voter models.ParticipantID, choice models.Choice) (models.CastVoteResponse, error) {
	var (
		resp   models.CastVoteResponse
		result error
	)
	err := s.do(ctx, func() {
		resp, result = s.castVote(voter, choice)
	})
	if err != nil {
		return models.CastVoteResponse{}, err
	}
	return resp, result
}

// Reset handles the external new-activity signal. A zero activityStartedAt
// means the activity started now.
func (s *Session) Reset(ctx context.Context, activityStartedAt time.Time) error {
	return s.do(ctx, func() { s.reset(activityStartedAt) })
}

// Status returns the live view of the session
func (s *Session) Status(ctx context.Context) (models.SessionStatus, error) {
	var status models.SessionStatus
	if err := s.do(ctx, func() { status = s.status() }); err != nil {
		return models.SessionStatus{}, err
	}
	return status, nil
}

// BallotOf returns the current choice of voter in the latest round
func (s *Session) BallotOf(ctx context.Context, voter models.ParticipantID) (models.Candidate, error) {
	var (
		candidate models.Candidate
		result    error
	)
	err := s.do(ctx, func() {
		candidate, result = s.ballotOf(voter)
	})
	if err != nil {
		return models.Candidate{}, err
	}
	return candidate, result
}

// Loop-side handlers

func (s *Session) start(req StartRequest) (models.RoundResponse, error) {
	if s.state == models.StateCollecting {
		return models.RoundResponse{}, s.rejectStart(models.Reject(models.ErrAlreadyActive, 0), req.Initiator)
	}

	now := s.clock.Now()
	if err := timing.CheckStart(now, s.activityStartedAt, s.lastDecidedAt, s.policy.Timing); err != nil {
		return models.RoundResponse{}, s.rejectStart(err, req.Initiator)
	}

	var candidates []models.Candidate
	if s.mode == models.ModeBinary {
		candidates = models.BinaryCandidates()
	} else {
		names := req.Candidates
		if len(names) == 0 {
			names = s.drawFromPool()
		}
		if len(names) == 0 {
			return models.RoundResponse{}, models.ErrNoCandidates
		}
		candidates = models.NumberCandidates(names)
	}

	s.open(candidates, false)
	s.logger.Info("round started", "round_id", s.round.id, "candidates", len(candidates))

	if s.mode == models.ModeBinary && req.Initiator != "" {
		if _, err := s.castVote(req.Initiator, models.ChoiceSkip); err != nil {
			s.logger.Error("initiator vote failed", "error", err)
		}
	}

	return models.RoundResponse{RoundID: s.round.id, Candidates: candidates}, nil
}

// drawFromPool picks up to PoolSize distinct names from the configured pool
func (s *Session) drawFromPool() []string {
	pool := s.policy.CandidatePool
	n := s.policy.PoolSize
	if n <= 0 || n > len(pool) {
		n = len(pool)
	}

	names := append([]string(nil), pool...)
	s.rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	return names[:n]
}

func (s *Session) restart() (models.RoundResponse, error) {
	if s.state != models.StateCollecting {
		return models.RoundResponse{}, s.rejectStart(models.Reject(models.ErrNotActive, 0), "")
	}

	previous := s.round.id
	candidates := s.round.ledger.Candidates()
	s.open(candidates, true)
	s.logger.Info("round restarted", "round_id", s.round.id, "previous_round_id", previous)

	return models.RoundResponse{RoundID: s.round.id, Candidates: candidates}, nil
}

// open replaces the current round and arms its schedule
func (s *Session) open(candidates []models.Candidate, restarted bool) {
	if s.state != models.StateCollecting {
		metrics.RoundOpened()
	}

	s.round = &round{
		id:        uuid.NewString(),
		ledger:    ledger.New(candidates),
		startedAt: s.clock.Now(),
	}
	s.state = models.StateCollecting
	s.timers.Arm(s.policy.Timing, func() { s.decide() }, s.remind)
	metrics.RoundStarted(string(s.mode))

	s.publish(models.Notification{
		Kind:       models.KindRoundStarted,
		Restarted:  restarted,
		Candidates: candidates,
	})
}

func (s *Session) end() (models.EndRoundResponse, error) {
	if s.state != models.StateCollecting {
		return models.EndRoundResponse{}, s.rejectStart(models.Reject(models.ErrNotActive, 0), "")
	}

	id := s.round.id
	outcome := s.decide()
	return models.EndRoundResponse{RoundID: id, Outcome: outcome}, nil
}

func (s *Session) destroy() error {
	if s.state != models.StateCollecting {
		return s.rejectStart(models.Reject(models.ErrNotActive, 0), "")
	}

	s.timers.Disarm()
	metrics.RoundClosed()
	s.logger.Info("round destroyed", "round_id", s.round.id)
	s.round = nil
	s.state = models.StateDestroyed
	return nil
}

func (s *Session) castVote(voter models.ParticipantID, choice models.Choice) (models.CastVoteResponse, error) {
	if !s.state.CanAcceptVotes() {
		return models.CastVoteResponse{}, models.ErrNotActive
	}

	l := s.round.ledger
	previous, hadPrevious, err := l.CastVote(voter, choice)
	if err != nil {
		metrics.Rejected(models.ReasonInvalidChoice)
		s.publish(models.Notification{
			Kind:      models.KindVoteRejected,
			Recipient: voter,
			Reason:    models.ReasonInvalidChoice,
		})
		return models.CastVoteResponse{}, err
	}
	metrics.VoteCast(string(s.mode))

	chosen, _ := l.Candidate(choice)
	resp := models.CastVoteResponse{Choice: chosen}
	if hadPrevious {
		if prev, ok := l.Candidate(previous); ok {
			resp.Previous = &prev
		}
	}

	s.publish(models.Notification{
		Kind:      models.KindVoteAcknowledged,
		Recipient: voter,
		Choice:    &chosen,
		Previous:  resp.Previous,
	})
	s.logger.Debug("vote recorded", "round_id", s.round.id, "voter", voter, "choice", choice, "total", l.TotalVotes())

	s.trackLeader()
	s.checkInstantWin()
	return resp, nil
}

// trackLeader broadcasts when a ranked round gets a new sole leader. A tie
// at the top keeps the last announced leader.
func (s *Session) trackLeader() {
	if s.mode != models.ModeRanked {
		return
	}

	tally := s.round.ledger.Snapshot()
	leader, ok := verdict.Leader(tally)
	if !ok || leader.Number == s.round.leader {
		return
	}

	s.round.leader = leader.Number
	s.publish(models.Notification{
		Kind:   models.KindLeaderChanged,
		Choice: &leader,
		Tally:  tally,
	})
}

// checkInstantWin ends a binary round early when the skip side reaches the
// threshold and the evaluation agrees
func (s *Session) checkInstantWin() {
	if s.mode != models.ModeBinary || s.policy.InstantWin <= 0 {
		return
	}
	if s.round.ledger.CountFor(models.ChoiceSkip) < s.policy.InstantWin {
		return
	}

	outcome := verdict.Evaluate(s.mode, s.round.ledger.Snapshot(), s.policy.Quorum)
	if verdict.Skips(outcome) {
		s.logger.Info("instant win reached", "round_id", s.round.id, "threshold", s.policy.InstantWin)
		s.finish(outcome)
	}
}

// decide evaluates the current round and closes it
func (s *Session) decide() models.Outcome {
	outcome := verdict.Evaluate(s.mode, s.round.ledger.Snapshot(), s.policy.Quorum)
	s.finish(outcome)
	return outcome
}

func (s *Session) finish(outcome models.Outcome) {
	s.timers.Disarm()
	s.state = models.StateDecided
	s.lastDecidedAt = s.clock.Now()
	s.lastOutcome = &outcome

	metrics.RoundClosed()
	metrics.RoundDecided(string(s.mode), string(outcome.Kind))

	s.publish(models.Notification{
		Kind:    models.KindRoundDecided,
		Tally:   outcome.Counts,
		Outcome: &outcome,
	})
	s.logger.Info("round decided",
		"round_id", s.round.id,
		"outcome", outcome.Kind,
		"total_votes", outcome.TotalVotes)
}

func (s *Session) remind() {
	s.publish(models.Notification{
		Kind:  models.KindReminder,
		Tally: s.round.ledger.Snapshot(),
	})
}

// reset takes a fresh activity start. A zero or future time means now, so
// the lockout never outlasts its configured duration.
func (s *Session) reset(activityStartedAt time.Time) {
	if now := s.clock.Now(); activityStartedAt.IsZero() || activityStartedAt.After(now) {
		activityStartedAt = now
	}

	s.timers.Disarm()
	if s.state == models.StateCollecting {
		metrics.RoundClosed()
	}

	s.state = models.StateIdle
	s.round = nil
	s.lastDecidedAt = time.Time{}
	s.activityStartedAt = activityStartedAt
	s.logger.Info("session reset", "activity_started_at", activityStartedAt)
}

func (s *Session) status() models.SessionStatus {
	status := models.SessionStatus{
		SessionID:   s.id,
		Mode:        s.mode,
		State:       s.state,
		Quorum:      s.policy.Quorum,
		LastOutcome: s.lastOutcome,
	}
	if !s.lastDecidedAt.IsZero() {
		t := s.lastDecidedAt
		status.LastDecidedAt = &t
	}
	if s.round != nil {
		status.RoundID = s.round.id
		status.Candidates = s.round.ledger.Candidates()
		status.Tally = s.round.ledger.Snapshot()
		status.TotalVotes = s.round.ledger.TotalVotes()
		started := s.round.startedAt
		status.StartedAt = &started
	}
	if deadline := s.timers.DeadlineAt(); !deadline.IsZero() {
		status.DeadlineAt = &deadline
	}
	return status
}

func (s *Session) ballotOf(voter models.ParticipantID) (models.Candidate, error) {
	if s.round == nil {
		return models.Candidate{}, models.ErrNotActive
	}
	choice, ok := s.round.ledger.BallotOf(voter)
	if !ok {
		return models.Candidate{}, models.ErrNoBallot
	}
	candidate, _ := s.round.ledger.Candidate(choice)
	return candidate, nil
}

// rejectStart reports a refused admin command and returns err unchanged
func (s *Session) rejectStart(err error, recipient models.ParticipantID) error {
	reason := models.ReasonOf(err)
	metrics.Rejected(reason)
	s.publish(models.Notification{
		Kind:      models.KindRoundRejected,
		Recipient: recipient,
		Reason:    reason,
		Remaining: models.RemainingOf(err),
	})
	s.logger.Debug("command rejected", "reason", reason, "error", err)
	return err
}

func (s *Session) publish(n models.Notification) {
	if s.publisher == nil {
		return
	}
	n.SessionID = s.id
	n.Mode = s.mode
	n.At = s.clock.Now()
	if s.round != nil {
		n.RoundID = s.round.id
	}
	s.publisher.Publish(n)
}
