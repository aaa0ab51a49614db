// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/session"
	"github.com/danielhkuo/roundvote/testutil"
)

// serve runs h with the given path values set
func serve(h http.HandlerFunc, req *http.Request, pathValues ...string) *httptest.ResponseRecorder {
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func createSession(t *testing.T, env *testutil.Env, mode models.Mode) *session.Session {
	t.Helper()
	s, err := env.Registry.Create(mode)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return s
}

func startRound(t *testing.T, s *session.Session, candidates ...string) models.RoundResponse {
	t.Helper()
	resp, err := s.Start(context.Background(), session.StartRequest{Candidates: candidates})
	if err != nil {
		t.Fatalf("Failed to start round: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestParseVoteInput(t *testing.T) {
	testCases := []struct {
		name     string
		mode     models.Mode
		input    string
		expected models.Choice
		wantErr  bool
	}{
		{"binary skip", models.ModeBinary, "+", models.ChoiceSkip, false},
		{"binary keep", models.ModeBinary, "-", models.ChoiceKeep, false},
		{"binary padded", models.ModeBinary, "  +  ", models.ChoiceSkip, false},
		{"binary chatter", models.ModeBinary, "+1", 0, true},
		{"binary digit", models.ModeBinary, "1", 0, true},
		{"binary empty", models.ModeBinary, "", 0, true},
		{"ranked digit", models.ModeRanked, "2", 2, false},
		{"ranked trailing text", models.ModeRanked, "3 gorodok pls", 3, false},
		{"ranked multi digit", models.ModeRanked, "12", 12, false},
		{"ranked leading zero", models.ModeRanked, "02", 2, false},
		{"ranked zero", models.ModeRanked, "0", 0, false},
		{"ranked text first", models.ModeRanked, "map 2", 0, true},
		{"ranked sign", models.ModeRanked, "-1", 0, true},
		{"ranked empty", models.ModeRanked, "", 0, true},
		{"ranked overflow", models.ModeRanked, strings.Repeat("9", 40), 0, false},
		{"ranked overflow with text", models.ModeRanked, "99999999999999999999 narva", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			choice, err := ParseVoteInput(tc.mode, tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got choice %d", tc.input, choice)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tc.input, err)
			}
			if choice != tc.expected {
				t.Errorf("Expected choice %d, got %d", tc.expected, choice)
			}
		})
	}
}

func TestWriteSessionError(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		status      int
		reason      string
		remainingMS int64
	}{
		{"not found", models.ErrSessionNotFound, http.StatusNotFound, "", 0},
		{"closed", models.ErrSessionClosed, http.StatusServiceUnavailable, "", 0},
		{"invalid choice", models.ErrInvalidChoice, http.StatusBadRequest, "", 0},
		{"no candidates", models.ErrNoCandidates, http.StatusBadRequest, "", 0},
		{"cooldown", models.Reject(models.ErrCooldownActive, 90*time.Second), http.StatusConflict, models.ReasonCooldownActive, 90000},
		{"too early", models.Reject(models.ErrTooEarly, time.Minute), http.StatusConflict, models.ReasonTooEarly, 60000},
		{"too late", models.Reject(models.ErrTooLate, 0), http.StatusConflict, models.ReasonTooLate, 0},
		{"already active", models.Reject(models.ErrAlreadyActive, 0), http.StatusConflict, models.ReasonAlreadyActive, 0},
		{"not active", models.ErrNotActive, http.StatusConflict, models.ReasonNotActive, 0},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, "", 0},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeSessionError(w, httptest.NewRequest("GET", "/", nil), tc.err)

			testutil.AssertStatus(t, w, tc.status)
			resp := decodeError(t, w)
			if resp.Reason != tc.reason {
				t.Errorf("Expected reason %q, got %q", tc.reason, resp.Reason)
			}
			if resp.RemainingMS != tc.remainingMS {
				t.Errorf("Expected remaining_ms %d, got %d", tc.remainingMS, resp.RemainingMS)
			}
		})
	}
}

func TestRejectionMessage(t *testing.T) {
	msg := rejectionMessage(models.Reject(models.ErrCooldownActive, 3*time.Minute))
	expected := "cooldown since last vote is active, try again in 3 minutes"
	if msg != expected {
		t.Errorf("Expected %q, got %q", expected, msg)
	}

	if msg := rejectionMessage(models.Reject(models.ErrTooLate, 0)); msg != models.ErrTooLate.Error() {
		t.Errorf("Expected plain error text, got %q", msg)
	}
}

func TestCreateSession(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewSessionHandler(env.Registry, env.Feed, env.Config)

	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"ranked", models.CreateSessionRequest{Mode: "ranked"}, http.StatusCreated},
		{"binary", models.CreateSessionRequest{Mode: "binary"}, http.StatusCreated},
		{"unknown mode", models.CreateSessionRequest{Mode: "approval"}, http.StatusBadRequest},
		{"missing mode", map[string]string{}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(handler.CreateSession, testutil.MakeRequest("POST", "/sessions", tc.body, nil))
			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.CreateSessionResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.SessionID == "" {
				t.Error("Expected non-empty session_id")
			}
			if resp.AdminKey != env.AdminKey(resp.SessionID) {
				t.Error("Admin key does not match the session")
			}
			if _, err := env.Registry.Get(resp.SessionID); err != nil {
				t.Errorf("Session was not registered: %v", err)
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/sessions", strings.NewReader("{nope"))
		w := serve(handler.CreateSession, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestGetSession(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewSessionHandler(env.Registry, env.Feed, env.Config)
	s := createSession(t, env, models.ModeRanked)
	round := startRound(t, s, "Narva", "Kohat")

	w := serve(handler.GetSession, testutil.MakeRequest("GET", "/sessions/"+s.ID(), nil, nil), "id", s.ID())
	testutil.AssertStatus(t, w, http.StatusOK)

	var status models.SessionStatus
	testutil.AssertJSON(t, w, &status)
	if status.State != models.StateCollecting {
		t.Errorf("Expected state collecting, got %s", status.State)
	}
	if status.RoundID != round.RoundID || len(status.Candidates) != 2 {
		t.Errorf("Unexpected round in status: %+v", status)
	}
	if status.DeadlineAt == nil || !status.DeadlineAt.Equal(testutil.Epoch.Add(5*time.Minute)) {
		t.Errorf("Expected deadline 5m after start, got %v", status.DeadlineAt)
	}

	t.Run("unknown session", func(t *testing.T) {
		w := serve(handler.GetSession, testutil.MakeRequest("GET", "/sessions/nope", nil, nil), "id", "nope")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestDeleteSession(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewSessionHandler(env.Registry, env.Feed, env.Config)
	s := createSession(t, env, models.ModeBinary)
	startRound(t, s)

	if events, _ := env.Feed.Since(s.ID(), 0); len(events) == 0 {
		t.Fatal("Expected the start to reach the feed")
	}

	w := serve(handler.DeleteSession, testutil.MakeRequest("DELETE", "/sessions/"+s.ID(), nil, nil), "id", s.ID())
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if _, err := env.Registry.Get(s.ID()); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Expected session to be gone, got %v", err)
	}
	if events, last := env.Feed.Since(s.ID(), 0); len(events) != 0 || last != 0 {
		t.Errorf("Expected feed to be forgotten, got %d events", len(events))
	}
	if _, err := s.Status(context.Background()); !errors.Is(err, models.ErrSessionClosed) {
		t.Errorf("Expected closed session, got %v", err)
	}

	w = serve(handler.DeleteSession, testutil.MakeRequest("DELETE", "/sessions/"+s.ID(), nil, nil), "id", s.ID())
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCastVote(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Registry)

	binary := createSession(t, env, models.ModeBinary)
	ranked := createSession(t, env, models.ModeRanked)

	vote := func(s *session.Session, voter, input string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/votes",
			models.CastVoteRequest{Voter: voter, Input: input}, nil)
		return serve(handler.CastVote, req, "id", s.ID())
	}

	t.Run("no active round", func(t *testing.T) {
		w := vote(binary, "alice", "+")
		testutil.AssertStatus(t, w, http.StatusConflict)
		if resp := decodeError(t, w); resp.Reason != models.ReasonNotActive {
			t.Errorf("Expected reason not_active, got %q", resp.Reason)
		}
	})

	startRound(t, binary)
	startRound(t, ranked, "Narva", "Gorodok", "Kohat")

	t.Run("binary vote then change", func(t *testing.T) {
		w := vote(binary, "alice", "+")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CastVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Choice.Name != "skip" || resp.Previous != nil {
			t.Errorf("Expected first skip vote, got %+v", resp)
		}

		w = vote(binary, "alice", "-")
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &resp)
		if resp.Choice.Name != "keep" || resp.Previous == nil || resp.Previous.Name != "skip" {
			t.Errorf("Expected change from skip to keep, got %+v", resp)
		}
	})

	t.Run("ranked vote", func(t *testing.T) {
		w := vote(ranked, "bob", "3")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CastVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Choice.Name != "Kohat" {
			t.Errorf("Expected Kohat, got %+v", resp.Choice)
		}
	})

	t.Run("ranked choice out of range", func(t *testing.T) {
		w := vote(ranked, "carol", "4")
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		rejected := env.Recorder.OfKind(models.KindVoteRejected)
		if len(rejected) != 1 || rejected[0].Recipient != "carol" {
			t.Errorf("Expected a rejection whisper to carol, got %+v", rejected)
		}
	})

	t.Run("ranked choice too large to parse", func(t *testing.T) {
		w := vote(ranked, "erin", "99999999999999999999")
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		var whispered bool
		for _, n := range env.Recorder.OfKind(models.KindVoteRejected) {
			if n.Recipient == "erin" && n.Reason == models.ReasonInvalidChoice {
				whispered = true
			}
		}
		if !whispered {
			t.Error("Expected an invalid_choice whisper to erin")
		}
	})

	t.Run("unrecognized input is not a vote", func(t *testing.T) {
		w := vote(binary, "dave", "gg")
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		status, _ := binary.Status(context.Background())
		if status.TotalVotes != 1 {
			t.Errorf("Expected 1 vote, got %d", status.TotalVotes)
		}
	})

	t.Run("missing voter", func(t *testing.T) {
		w := vote(binary, "", "+")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown session", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/sessions/nope/votes", models.CastVoteRequest{Voter: "a", Input: "+"}, nil)
		w := serve(handler.CastVote, req, "id", "nope")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestCastVote_InstantWin(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Registry)
	s := createSession(t, env, models.ModeBinary)
	startRound(t, s)

	for i := 1; i <= env.Config.Binary.InstantWin; i++ {
		req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/votes",
			models.CastVoteRequest{Voter: fmt.Sprintf("p%d", i), Input: "+"}, nil)
		testutil.AssertStatus(t, serve(handler.CastVote, req, "id", s.ID()), http.StatusOK)
	}

	status, err := s.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status.State != models.StateDecided {
		t.Fatalf("Expected decided after instant win, got %s", status.State)
	}
	if status.LastOutcome.Winner == nil || status.LastOutcome.Winner.Number != models.ChoiceSkip {
		t.Errorf("Expected skip to win, got %+v", status.LastOutcome)
	}
}

func TestGetBallot(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewVotingHandler(env.Registry)
	s := createSession(t, env, models.ModeRanked)

	get := func(voter string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/sessions/"+s.ID()+"/ballots/"+voter, nil, nil)
		return serve(handler.GetBallot, req, "id", s.ID(), "voter", voter)
	}

	testutil.AssertStatus(t, get("alice"), http.StatusNotFound)

	startRound(t, s, "Narva", "Gorodok")
	if _, err := s.CastVote(context.Background(), "alice", 2); err != nil {
		t.Fatal(err)
	}

	w := get("alice")
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.BallotResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Voter != "alice" || resp.Choice.Name != "Gorodok" {
		t.Errorf("Expected alice on Gorodok, got %+v", resp)
	}

	testutil.AssertStatus(t, get("bob"), http.StatusNotFound)
}

func TestStartRound(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewAdminHandler(env.Registry)

	start := func(s *session.Session, body interface{}) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/start", body, nil)
		return serve(handler.StartRound, req, "id", s.ID())
	}

	t.Run("ranked from pool", func(t *testing.T) {
		s := createSession(t, env, models.ModeRanked)
		w := start(s, nil)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.RoundResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Candidates) != env.Config.Ranked.PoolSize {
			t.Errorf("Expected %d pool candidates, got %+v", env.Config.Ranked.PoolSize, resp.Candidates)
		}
	})

	t.Run("binary with initiator", func(t *testing.T) {
		s := createSession(t, env, models.ModeBinary)
		w := start(s, models.StartRoundRequest{Initiator: "alice"})
		testutil.AssertStatus(t, w, http.StatusCreated)

		candidate, err := s.BallotOf(context.Background(), "alice")
		if err != nil || candidate.Number != models.ChoiceSkip {
			t.Errorf("Expected initiator skip vote, got %+v, %v", candidate, err)
		}
	})

	t.Run("already active", func(t *testing.T) {
		s := createSession(t, env, models.ModeBinary)
		testutil.AssertStatus(t, start(s, nil), http.StatusCreated)

		w := start(s, nil)
		testutil.AssertStatus(t, w, http.StatusConflict)
		if resp := decodeError(t, w); resp.Reason != models.ReasonAlreadyActive {
			t.Errorf("Expected reason already_active, got %q", resp.Reason)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		s := createSession(t, env, models.ModeBinary)
		startRound(t, s)
		if _, err := s.End(context.Background()); err != nil {
			t.Fatal(err)
		}

		env.Clock.Advance(4 * time.Minute)

		w := start(s, nil)
		testutil.AssertStatus(t, w, http.StatusConflict)
		resp := decodeError(t, w)
		if resp.Reason != models.ReasonCooldownActive {
			t.Errorf("Expected reason cooldown_active, got %q", resp.Reason)
		}
		if resp.RemainingMS != (6 * time.Minute).Milliseconds() {
			t.Errorf("Expected 6m remaining, got %dms", resp.RemainingMS)
		}
		if !strings.Contains(resp.Message, "6 minutes") {
			t.Errorf("Expected humanized remaining time, got %q", resp.Message)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		s := createSession(t, env, models.ModeRanked)
		req := httptest.NewRequest("POST", "/sessions/"+s.ID()+"/start", strings.NewReader("[1,"))
		w := serve(handler.StartRound, req, "id", s.ID())
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestRoundCommands_NotActive(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewAdminHandler(env.Registry)
	s := createSession(t, env, models.ModeRanked)

	commands := map[string]http.HandlerFunc{
		"restart": handler.RestartRound,
		"end":     handler.EndRound,
		"destroy": handler.DestroyRound,
	}

	for name, h := range commands {
		t.Run(name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/"+name, nil, nil)
			w := serve(h, req, "id", s.ID())
			testutil.AssertStatus(t, w, http.StatusConflict)
			if resp := decodeError(t, w); resp.Reason != models.ReasonNotActive {
				t.Errorf("Expected reason not_active, got %q", resp.Reason)
			}
		})
	}
}

func TestRoundCommands(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewAdminHandler(env.Registry)
	s := createSession(t, env, models.ModeRanked)
	first := startRound(t, s, "Narva", "Gorodok")

	post := func(h http.HandlerFunc, name string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/"+name, nil, nil)
		return serve(h, req, "id", s.ID())
	}

	if _, err := s.CastVote(context.Background(), "alice", 1); err != nil {
		t.Fatal(err)
	}

	// Restart keeps candidates and clears the ballots
	w := post(handler.RestartRound, "restart")
	testutil.AssertStatus(t, w, http.StatusOK)
	var restarted models.RoundResponse
	testutil.AssertJSON(t, w, &restarted)
	if restarted.RoundID == first.RoundID || len(restarted.Candidates) != 2 {
		t.Errorf("Expected a new round with the same candidates, got %+v", restarted)
	}
	if status, _ := s.Status(context.Background()); status.TotalVotes != 0 {
		t.Errorf("Expected empty ledger after restart, got %d votes", status.TotalVotes)
	}

	// End with no votes is never a decision
	w = post(handler.EndRound, "end")
	testutil.AssertStatus(t, w, http.StatusOK)
	var ended models.EndRoundResponse
	testutil.AssertJSON(t, w, &ended)
	if ended.RoundID != restarted.RoundID {
		t.Errorf("Expected end of round %s, got %s", restarted.RoundID, ended.RoundID)
	}
	if ended.Outcome.Kind == models.OutcomeDecided {
		t.Errorf("Expected no decision from an empty tally, got %+v", ended.Outcome)
	}

	// Destroy is silent
	startRound(t, s, "Narva")
	before := len(env.Recorder.Events())
	testutil.AssertStatus(t, post(handler.DestroyRound, "destroy"), http.StatusNoContent)
	if after := len(env.Recorder.Events()); after != before {
		t.Errorf("Expected no notifications from destroy, got %d", after-before)
	}
	if status, _ := s.Status(context.Background()); status.State != models.StateDestroyed {
		t.Errorf("Expected destroyed state, got %s", status.State)
	}
}

func TestResetSession(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewAdminHandler(env.Registry)
	s := createSession(t, env, models.ModeBinary)

	startRound(t, s)
	if _, err := s.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start(context.Background(), session.StartRequest{}); !errors.Is(err, models.ErrCooldownActive) {
		t.Fatalf("Expected cooldown before reset, got %v", err)
	}

	activity := testutil.Epoch.Add(-time.Minute)
	req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/reset",
		models.ResetRequest{ActivityStartedAt: &activity}, nil)
	testutil.AssertStatus(t, serve(handler.ResetSession, req, "id", s.ID()), http.StatusNoContent)

	status, _ := s.Status(context.Background())
	if status.State != models.StateIdle || status.LastDecidedAt != nil {
		t.Errorf("Expected idle session without cooldown, got %+v", status)
	}
	if _, err := s.Start(context.Background(), session.StartRequest{}); err != nil {
		t.Errorf("Expected start after reset, got %v", err)
	}

	t.Run("empty body", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/sessions/"+s.ID()+"/reset", nil, nil)
		testutil.AssertStatus(t, serve(handler.ResetSession, req, "id", s.ID()), http.StatusNoContent)
	})
}

func TestGetEvents(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewResultsHandler(env.Registry, env.Feed, env.Journal)
	s := createSession(t, env, models.ModeBinary)

	startRound(t, s)
	if _, err := s.CastVote(context.Background(), "alice", models.ChoiceSkip); err != nil {
		t.Fatal(err)
	}

	// Two reminders, then the deadline
	env.Clock.Advance(5 * time.Minute)
	if status, _ := s.Status(context.Background()); status.State != models.StateDecided {
		t.Fatalf("Expected the deadline to decide the round, got %s", status.State)
	}

	get := func(query string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/sessions/"+s.ID()+"/events"+query, nil, nil)
		return serve(handler.GetEvents, req, "id", s.ID())
	}

	w := get("")
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.EventsResponse
	testutil.AssertJSON(t, w, &resp)

	kinds := make([]models.NotificationKind, len(resp.Events))
	for i, n := range resp.Events {
		kinds[i] = n.Kind
	}
	expected := []models.NotificationKind{
		models.KindRoundStarted,
		models.KindVoteAcknowledged,
		models.KindReminder,
		models.KindReminder,
		models.KindRoundDecided,
	}
	if fmt.Sprint(kinds) != fmt.Sprint(expected) {
		t.Fatalf("Expected events %v, got %v", expected, kinds)
	}
	if resp.Last != 5 {
		t.Errorf("Expected last seq 5, got %d", resp.Last)
	}
	if outcome := resp.Events[4].Outcome; outcome == nil || outcome.Kind != models.OutcomeNoQuorum {
		t.Errorf("Expected no quorum with one vote, got %+v", outcome)
	}

	w = get("?after=3")
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Events) != 2 || resp.Events[0].Seq != 4 {
		t.Errorf("Expected events after seq 3, got %+v", resp.Events)
	}

	testutil.AssertStatus(t, get("?after=soon"), http.StatusBadRequest)

	req := testutil.MakeRequest("GET", "/sessions/nope/events", nil, nil)
	testutil.AssertStatus(t, serve(handler.GetEvents, req, "id", "nope"), http.StatusNotFound)
}

func TestGetHistory(t *testing.T) {
	env := testutil.NewEnv(t)
	handler := NewResultsHandler(env.Registry, env.Feed, env.Journal)
	s := createSession(t, env, models.ModeRanked)

	for _, winner := range []models.Choice{1, 2} {
		startRound(t, s, "Narva", "Gorodok")
		if _, err := s.CastVote(context.Background(), "alice", winner); err != nil {
			t.Fatal(err)
		}
		if _, err := s.End(context.Background()); err != nil {
			t.Fatal(err)
		}
		env.Clock.Advance(time.Minute)
	}

	get := func(query string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/sessions/"+s.ID()+"/history"+query, nil, nil)
		return serve(handler.GetHistory, req, "id", s.ID())
	}

	w := get("")
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.HistoryResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if *resp.Results[0].Winner != "Gorodok" || *resp.Results[1].Winner != "Narva" {
		t.Errorf("Expected newest first, got %s then %s", *resp.Results[0].Winner, *resp.Results[1].Winner)
	}

	w = get("?limit=1")
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Results) != 1 {
		t.Errorf("Expected 1 result with limit, got %d", len(resp.Results))
	}

	testutil.AssertStatus(t, get("?limit=-2"), http.StatusBadRequest)

	t.Run("disabled", func(t *testing.T) {
		disabled := NewResultsHandler(env.Registry, env.Feed, nil)
		req := testutil.MakeRequest("GET", "/sessions/"+s.ID()+"/history", nil, nil)
		testutil.AssertStatus(t, serve(disabled.GetHistory, req, "id", s.ID()), http.StatusNotFound)
	})
}
