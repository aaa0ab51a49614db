// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/danielhkuo/roundvote/metrics"
	"github.com/danielhkuo/roundvote/models"
)

// DefaultQueueSize is used when NewDispatcher is given a non-positive size
const DefaultQueueSize = 256

// Sink receives delivered notifications
type Sink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) Deliver(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Dispatcher decouples the session loops from delivery.
//
// Publish only enqueues; a single Run goroutine hands every notification to
// each sink in turn, so sinks observe a FIFO order per dispatcher.
//
// Round decisions are never dropped. When the queue is full they wait in an
// overflow list instead, and may then reach the sinks ahead of older queued
// notifications.
type Dispatcher struct {
	queue  chan models.Notification
	sinks  []Sink
	logger *slog.Logger

	mu       sync.Mutex
	overflow []models.Notification
	wake     chan struct{}
}

// NewDispatcher creates a dispatcher delivering to sinks in the given order
func NewDispatcher(size int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		queue:  make(chan models.Notification, size),
		sinks:  sinks,
		logger: ResolveLogger(logger),
		wake:   make(chan struct{}, 1),
	}
}

// Publish enqueues n without blocking. It reports false when the queue is
// full and the notification was dropped. A round decision is held instead.
func (d *Dispatcher) Publish(n models.Notification) bool {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	select {
	case d.queue <- n:
		return true
	default:
		if n.Kind == models.KindRoundDecided {
			d.hold(n)
			return true
		}
		metrics.NotificationDropped()
		d.logger.Warn("notification dropped, queue full",
			"session_id", n.SessionID,
			"kind", n.Kind,
			"capacity", cap(d.queue))
		return false
	}
}

// Run delivers queued notifications until ctx is done, then flushes what is
// already queued and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		case <-d.wake:
			d.deliverHeld(ctx)
		case <-ctx.Done():
			d.flush()
			return nil
		}
	}
}

// hold parks a decision that found the queue full
func (d *Dispatcher) hold(n models.Notification) {
	d.mu.Lock()
	d.overflow = append(d.overflow, n)
	held := len(d.overflow)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	d.logger.Warn("queue full, decision held for delivery",
		"session_id", n.SessionID,
		"round_id", n.RoundID,
		"held", held)
}

func (d *Dispatcher) deliverHeld(ctx context.Context) {
	d.mu.Lock()
	held := d.overflow
	d.overflow = nil
	d.mu.Unlock()

	for _, n := range held {
		d.deliver(ctx, n)
	}
}

func (d *Dispatcher) flush() {
	// Sinks still get a usable context while draining
	ctx := context.Background()
	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		default:
			d.deliverHeld(ctx)
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) {
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, n); err != nil {
			d.logger.Error("notification delivery failed",
				"session_id", n.SessionID,
				"kind", n.Kind,
				"error", err)
		}
	}
}
