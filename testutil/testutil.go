// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/roundvote/auth"
	"github.com/danielhkuo/roundvote/cliparse"
	"github.com/danielhkuo/roundvote/db"
	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/session"
	"github.com/danielhkuo/roundvote/timing"
)

// Epoch is the start time of every test clock
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// SetupTestDB opens a fresh in-memory sqlite journal with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration.
// Skip rounds last 5m with 2m reminders, need 3 votes and end early at 4
// skips. Map rounds last 5m and draw 3 of 4 pool maps.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		AdminKeySalt: "test-admin-salt",
		QueueSize:    notify.DefaultQueueSize,
		FeedSize:     notify.DefaultFeedCapacity,
		Binary: session.Policy{
			Timing: timing.Config{
				ActiveDuration:   5 * time.Minute,
				ReminderInterval: 2 * time.Minute,
				Cooldown:         10 * time.Minute,
			},
			Quorum:     3,
			InstantWin: 4,
		},
		Ranked: session.Policy{
			Timing: timing.Config{
				ActiveDuration: 5 * time.Minute,
			},
			CandidatePool: []string{"Narva", "Gorodok", "Mestia", "Kohat"},
			PoolSize:      3,
		},
	}
}

// Recorder is a notify.Sink that keeps everything delivered to it
type Recorder struct {
	mu     sync.Mutex
	events []models.Notification
}

func (r *Recorder) Deliver(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
	return nil
}

// Events returns a copy of the recorded notifications
func (r *Recorder) Events() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.events...)
}

// OfKind returns the recorded notifications of one kind
func (r *Recorder) OfKind(kind models.NotificationKind) []models.Notification {
	var out []models.Notification
	for _, n := range r.Events() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// SyncPublisher delivers to every sink on the publishing goroutine, so a
// session call has reached the sinks by the time it returns. IDs are
// assigned the way the dispatcher does.
type SyncPublisher struct {
	Sinks []notify.Sink
}

func (p SyncPublisher) Publish(n models.Notification) bool {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	for _, sink := range p.Sinks {
		_ = sink.Deliver(context.Background(), n)
	}
	return true
}

// Env is a wired engine for handler and router tests
type Env struct {
	Config   cliparse.Config
	Clock    *timing.ManualClock
	Registry *session.Registry
	Feed     *notify.Feed
	Journal  *db.Journal
	Recorder *Recorder
}

// NewEnv builds a registry on a manual clock whose notifications reach a
// feed, the journal and a recorder
func NewEnv(t *testing.T) *Env {
	t.Helper()

	cfg := GetTestConfig()
	env := &Env{
		Config:   cfg,
		Clock:    timing.NewManualClock(Epoch),
		Feed:     notify.NewFeed(cfg.FeedSize),
		Journal:  db.NewJournal(SetupTestDB(t)),
		Recorder: &Recorder{},
	}

	publisher := SyncPublisher{Sinks: []notify.Sink{
		env.Feed,
		notify.NewJournalSink(env.Journal),
		env.Recorder,
	}}
	env.Registry = session.NewRegistry(context.Background(), session.RegistryConfig{
		Policies:  cfg.Policies(),
		Clock:     env.Clock,
		Publisher: publisher,
	})
	t.Cleanup(func() { env.Registry.Close() })

	return env
}

// AdminKey returns the admin key for a session under the test salt
func (e *Env) AdminKey(sessionID string) string {
	return auth.GenerateAdminKey(sessionID, e.Config.AdminKeySalt)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
