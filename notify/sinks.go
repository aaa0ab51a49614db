// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/roundvote/models"
)

// LogSink writes every notification as a structured log line
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: ResolveLogger(logger)}
}

func (s *LogSink) Deliver(ctx context.Context, n models.Notification) error {
	attrs := []any{
		"session_id", n.SessionID,
		"round_id", n.RoundID,
		"kind", n.Kind,
	}
	if n.Broadcast() {
		s.logger.InfoContext(ctx, "broadcast", append(attrs, "message", Render(n))...)
	} else {
		s.logger.InfoContext(ctx, "whisper", append(attrs, "recipient", n.Recipient, "message", Render(n))...)
	}
	return nil
}

// DefaultFeedCapacity is the number of notifications kept per session
const DefaultFeedCapacity = 128

// Feed keeps the most recent notifications of each session so that a
// polling bridge can relay them. Sequence numbers start at 1 and increase
// by one per notification within a session.
type Feed struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*feedRing

	// forgotten sessions stay closed to deliveries still in flight
	forgotten map[string]struct{}
}

type feedRing struct {
	last  uint64
	items []models.Notification
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{
		capacity:  capacity,
		sessions:  make(map[string]*feedRing),
		forgotten: make(map[string]struct{}),
	}
}

func (f *Feed) Deliver(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, gone := f.forgotten[n.SessionID]; gone {
		return nil
	}

	ring, ok := f.sessions[n.SessionID]
	if !ok {
		ring = &feedRing{}
		f.sessions[n.SessionID] = ring
	}

	ring.last++
	n.Seq = ring.last
	ring.items = append(ring.items, n)
	if over := len(ring.items) - f.capacity; over > 0 {
		ring.items = append(ring.items[:0], ring.items[over:]...)
	}
	return nil
}

// Since returns the retained notifications of a session with Seq > after,
// oldest first, and the highest sequence number issued so far.
func (f *Feed) Since(sessionID string, after uint64) ([]models.Notification, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ring, ok := f.sessions[sessionID]
	if !ok {
		return []models.Notification{}, 0
	}

	events := make([]models.Notification, 0, len(ring.items))
	for _, n := range ring.items {
		if n.Seq > after {
			events = append(events, n)
		}
	}
	return events, ring.last
}

// Forget drops everything retained for a session and ignores its later
// deliveries. Session IDs are never reused.
func (f *Feed) Forget(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.forgotten[sessionID] = struct{}{}
}

// OutcomeWriter persists decided rounds
type OutcomeWriter interface {
	RecordOutcome(ctx context.Context, record models.OutcomeRecord) error
}

// JournalSink records round_decided notifications and ignores the rest
type JournalSink struct {
	writer OutcomeWriter
}

func NewJournalSink(writer OutcomeWriter) *JournalSink {
	return &JournalSink{writer: writer}
}

func (s *JournalSink) Deliver(ctx context.Context, n models.Notification) error {
	if n.Kind != models.KindRoundDecided || n.Outcome == nil {
		return nil
	}

	record := models.OutcomeRecord{
		ID:         n.ID,
		SessionID:  n.SessionID,
		RoundID:    n.RoundID,
		Mode:       n.Mode,
		Kind:       n.Outcome.Kind,
		TotalVotes: n.Outcome.TotalVotes,
		Outcome:    *n.Outcome,
		DecidedAt:  n.At,
	}
	if n.Outcome.Winner != nil {
		name := n.Outcome.Winner.Name
		record.Winner = &name
	}
	return s.writer.RecordOutcome(ctx, record)
}
